package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"suraksha-sathi/internal/domain"
)

// ParticipationResult reports the outcome of recording drill attendance.
type ParticipationResult struct {
	DrillID            string   `json:"drillId"`
	DrillsParticipated int      `json:"drillsParticipated"`
	NewBadges          []string `json:"newBadges"`
}

// DrillService serves the drill catalog and records participation. Recording
// runs the badge evaluator so drill-champion tiers are awarded immediately
// rather than on the next quiz submission.
type DrillService struct {
	catalog  DrillCatalog
	log      DrillLog
	users    UserStore
	progress ProgressStore
	modules  ModuleCatalog

	now   func() time.Time
	newID func() string
}

func NewDrillService(catalog DrillCatalog, drillLog DrillLog, users UserStore, progress ProgressStore, modules ModuleCatalog) *DrillService {
	return &DrillService{
		catalog:  catalog,
		log:      drillLog,
		users:    users,
		progress: progress,
		modules:  modules,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// WithClock is test-only for deterministic timestamps and identifiers.
func (s *DrillService) WithClock(now func() time.Time, newID func() string) *DrillService {
	s.now = now
	s.newID = newID
	return s
}

// Scenarios lists drills, optionally filtered by region. Entries with region
// "all" match every region.
func (s *DrillService) Scenarios(ctx context.Context, region string) ([]domain.DrillScenario, error) {
	drills, err := s.catalog.Drills(ctx)
	if err != nil {
		return nil, err
	}
	if region == "" {
		return drills, nil
	}
	filtered := make([]domain.DrillScenario, 0, len(drills))
	for _, d := range drills {
		if d.Region == region || d.Region == "all" {
			filtered = append(filtered, d)
		}
	}
	return filtered, nil
}

// Scenario looks up a single drill by id.
func (s *DrillService) Scenario(ctx context.Context, id string) (domain.DrillScenario, error) {
	return s.catalog.Drill(ctx, id)
}

// RecordParticipation appends an attendance record and evaluates badges
// against the updated log.
func (s *DrillService) RecordParticipation(ctx context.Context, userID, drillID string) (ParticipationResult, error) {
	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return ParticipationResult{}, err
	}
	drill, err := s.catalog.Drill(ctx, drillID)
	if err != nil {
		return ParticipationResult{}, err
	}

	record := domain.DrillRecord{
		ID:        s.newID(),
		UserID:    userID,
		DrillID:   drill.ID,
		Timestamp: s.now(),
	}
	if err := s.log.Append(ctx, record); err != nil {
		return ParticipationResult{}, err
	}

	attempts, err := s.progress.All(ctx)
	if err != nil {
		return ParticipationResult{}, err
	}
	drillRecords, err := s.log.All(ctx)
	if err != nil {
		return ParticipationResult{}, err
	}
	modules, err := s.modules.Modules(ctx)
	if err != nil {
		return ParticipationResult{}, err
	}

	newBadges := EvaluateBadges(user, attempts, drillRecords, modules)
	if len(newBadges) > 0 {
		user.Badges = append(user.Badges, newBadges...)
		if err := s.users.Save(ctx, user); err != nil {
			return ParticipationResult{}, err
		}
	} else {
		newBadges = []string{}
	}

	count := 0
	for _, r := range drillRecords {
		if r.UserID == userID {
			count++
		}
	}

	return ParticipationResult{
		DrillID:            drill.ID,
		DrillsParticipated: count,
		NewBadges:          newBadges,
	}, nil
}
