package app_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"suraksha-sathi/internal/app"
	"suraksha-sathi/internal/domain"
	"suraksha-sathi/internal/infra/memory"
)

func newDrillFixture(t *testing.T) (*app.DrillService, *memory.UserStore) {
	t.Helper()
	users := memory.NewUserStore()
	progress := memory.NewProgressStore()
	drillLog := memory.NewDrillLog()
	modules := memory.NewModuleRepository(memory.NewStaticModuleLoader(gradingModules()), time.Minute)
	catalog := memory.NewDrillCatalog([]domain.DrillScenario{
		{ID: "eq-1", Title: "Classroom Earthquake Drill", Type: "earthquake", Region: "all"},
		{ID: "flood-pb", Title: "Flood Response Drill", Type: "flood", Region: "punjab"},
		{ID: "fire-dl", Title: "Fire Evacuation Drill", Type: "fire", Region: "delhi"},
	})

	id := 0
	service := app.NewDrillService(catalog, drillLog, users, progress, modules).WithClock(
		func() time.Time { return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC) },
		func() string { id++; return fmt.Sprintf("rec-%d", id) },
	)
	return service, users
}

func TestScenariosRegionFilter(t *testing.T) {
	ctx := context.Background()
	service, _ := newDrillFixture(t)

	all, err := service.Scenarios(ctx, "")
	if err != nil {
		t.Fatalf("scenarios failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 drills unfiltered, got %d", len(all))
	}

	punjab, err := service.Scenarios(ctx, "punjab")
	if err != nil {
		t.Fatalf("scenarios failed: %v", err)
	}
	if len(punjab) != 2 {
		t.Fatalf("region filter must include region-wide drills, got %d", len(punjab))
	}
	for _, d := range punjab {
		if d.Region != "punjab" && d.Region != "all" {
			t.Fatalf("unexpected drill %s in punjab filter", d.ID)
		}
	}
}

func TestScenarioUnknownDrill(t *testing.T) {
	ctx := context.Background()
	service, _ := newDrillFixture(t)

	if _, err := service.Scenario(ctx, "nope"); err != domain.ErrDrillNotFound {
		t.Fatalf("expected drill not found, got %v", err)
	}
}

func TestRecordParticipationCountsAndAwards(t *testing.T) {
	ctx := context.Background()
	service, users := newDrillFixture(t)
	_ = users.Save(ctx, domain.User{ID: "u1", Name: "Asha", Badges: []string{}})

	for i := 1; i <= 4; i++ {
		result, err := service.RecordParticipation(ctx, "u1", "eq-1")
		if err != nil {
			t.Fatalf("participation %d failed: %v", i, err)
		}
		if result.DrillsParticipated != i {
			t.Fatalf("expected count %d, got %d", i, result.DrillsParticipated)
		}
		if len(result.NewBadges) != 0 {
			t.Fatalf("no badge expected before the fifth drill, got %v", result.NewBadges)
		}
	}

	result, err := service.RecordParticipation(ctx, "u1", "eq-1")
	if err != nil {
		t.Fatalf("fifth participation failed: %v", err)
	}
	if !sameBadges(result.NewBadges, []string{app.BadgeDrillChamp5}) {
		t.Fatalf("expected drill-champion-5 on fifth drill, got %v", result.NewBadges)
	}

	user, _ := users.ByID(ctx, "u1")
	if !user.HasBadge(app.BadgeDrillChamp5) {
		t.Fatalf("badge not persisted, user holds %v", user.Badges)
	}
}

func TestRecordParticipationValidatesUserAndDrill(t *testing.T) {
	ctx := context.Background()
	service, users := newDrillFixture(t)
	_ = users.Save(ctx, domain.User{ID: "u1", Name: "Asha", Badges: []string{}})

	if _, err := service.RecordParticipation(ctx, "ghost", "eq-1"); err != domain.ErrUserNotFound {
		t.Fatalf("expected user not found, got %v", err)
	}
	if _, err := service.RecordParticipation(ctx, "u1", "nope"); err != domain.ErrDrillNotFound {
		t.Fatalf("expected drill not found, got %v", err)
	}
}
