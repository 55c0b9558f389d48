package app

import (
	"context"

	"suraksha-sathi/internal/domain"
)

// UserStore holds mutable user records (in-memory, Postgres, etc).
type UserStore interface {
	ByID(ctx context.Context, id string) (domain.User, error)
	ByEmail(ctx context.Context, email string) (domain.User, error)
	All(ctx context.Context) ([]domain.User, error)
	// Save inserts or replaces the record keyed by user ID.
	Save(ctx context.Context, user domain.User) error
}

// ProgressStore is the append-only quiz-attempt log.
type ProgressStore interface {
	Append(ctx context.Context, attempt domain.QuizAttempt) error
	// TotalScore sums the score of every attempt by the user, repeats
	// included. Zero for users with no attempts.
	TotalScore(ctx context.Context, userID string) (int, error)
	All(ctx context.Context) ([]domain.QuizAttempt, error)
	Count(ctx context.Context) (int, error)
}

// DrillLog is the append-only drill-participation log.
type DrillLog interface {
	Append(ctx context.Context, record domain.DrillRecord) error
	ByUser(ctx context.Context, userID string) ([]domain.DrillRecord, error)
	All(ctx context.Context) ([]domain.DrillRecord, error)
	Count(ctx context.Context) (int, error)
}

// AlertStore persists broadcast alerts.
type AlertStore interface {
	Append(ctx context.Context, alert domain.Alert) error
	// All returns alerts newest first.
	All(ctx context.Context) ([]domain.Alert, error)
	Count(ctx context.Context) (int, error)
}

// ModuleCatalog loads read-only learning modules (from cache/backing store).
type ModuleCatalog interface {
	Module(ctx context.Context, id string) (domain.Module, error)
	Modules(ctx context.Context) ([]domain.Module, error)
}

// DrillCatalog lists the static drill scenarios.
type DrillCatalog interface {
	Drill(ctx context.Context, id string) (domain.DrillScenario, error)
	Drills(ctx context.Context) ([]domain.DrillScenario, error)
}
