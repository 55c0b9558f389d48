package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"suraksha-sathi/internal/domain"
)

func TestUserStoreLookups(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()

	if _, err := store.ByID(ctx, "u1"); err != domain.ErrUserNotFound {
		t.Fatalf("expected user not found, got %v", err)
	}

	user := domain.User{ID: "u1", Name: "Asha", Email: "asha@example.com"}
	if err := store.Save(ctx, user); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := store.ByEmail(ctx, "asha@example.com")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if got.ID != "u1" {
		t.Fatalf("unexpected user %+v", got)
	}

	// Save is an upsert.
	user.Name = "Asha K"
	_ = store.Save(ctx, user)
	got, _ = store.ByID(ctx, "u1")
	if got.Name != "Asha K" {
		t.Fatalf("expected updated name, got %q", got.Name)
	}

	all, _ := store.All(ctx)
	if len(all) != 1 {
		t.Fatalf("expected one user, got %d", len(all))
	}
}

func TestUserStoreAllSortedByID(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()
	_ = store.Save(ctx, domain.User{ID: "u3"})
	_ = store.Save(ctx, domain.User{ID: "u1"})
	_ = store.Save(ctx, domain.User{ID: "u2"})

	all, _ := store.All(ctx)
	for i := 1; i < len(all); i++ {
		if all[i-1].ID > all[i].ID {
			t.Fatalf("users not sorted by id: %+v", all)
		}
	}
}

func TestProgressStoreTotals(t *testing.T) {
	ctx := context.Background()
	store := NewProgressStore()

	_ = store.Append(ctx, domain.QuizAttempt{ID: "a1", UserID: "u1", ModuleID: "m1", Score: 3})
	_ = store.Append(ctx, domain.QuizAttempt{ID: "a2", UserID: "u1", ModuleID: "m2", Score: 2})
	_ = store.Append(ctx, domain.QuizAttempt{ID: "a3", UserID: "u2", ModuleID: "m1", Score: 4})

	total, err := store.TotalScore(ctx, "u1")
	if err != nil {
		t.Fatalf("total failed: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected total 5, got %d", total)
	}

	total, _ = store.TotalScore(ctx, "nobody")
	if total != 0 {
		t.Fatalf("expected 0 for unknown user, got %d", total)
	}

	count, _ := store.Count(ctx)
	if count != 3 {
		t.Fatalf("expected 3 attempts, got %d", count)
	}
}

func TestDrillLogByUser(t *testing.T) {
	ctx := context.Background()
	store := NewDrillLog()

	_ = store.Append(ctx, domain.DrillRecord{ID: "d1", UserID: "u1", DrillID: "eq-1"})
	_ = store.Append(ctx, domain.DrillRecord{ID: "d2", UserID: "u2", DrillID: "eq-1"})
	_ = store.Append(ctx, domain.DrillRecord{ID: "d3", UserID: "u1", DrillID: "fl-1"})

	records, err := store.ByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("byUser failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records for u1, got %d", len(records))
	}
}

func TestAlertStoreNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewAlertStore()

	_ = store.Append(ctx, domain.Alert{ID: "al1", Region: "punjab", Time: 100})
	_ = store.Append(ctx, domain.Alert{ID: "al2", Region: "delhi", Time: 300})
	_ = store.Append(ctx, domain.Alert{ID: "al3", Region: "assam", Time: 200})

	alerts, err := store.All(ctx)
	if err != nil {
		t.Fatalf("all failed: %v", err)
	}
	if alerts[0].ID != "al2" || alerts[1].ID != "al3" || alerts[2].ID != "al1" {
		t.Fatalf("expected newest first, got %+v", alerts)
	}
}

func TestStoresAreSafeForConcurrentUse(t *testing.T) {
	ctx := context.Background()
	users := NewUserStore()
	progress := NewProgressStore()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := "u" + string(rune('0'+n))
			_ = users.Save(ctx, domain.User{ID: id})
			_ = progress.Append(ctx, domain.QuizAttempt{ID: id, UserID: id, Score: 1, Timestamp: time.Now()})
			_, _ = users.All(ctx)
			_, _ = progress.TotalScore(ctx, id)
		}(i)
	}
	wg.Wait()

	count, _ := progress.Count(ctx)
	if count != 8 {
		t.Fatalf("expected 8 attempts, got %d", count)
	}
}
