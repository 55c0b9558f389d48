package app

import "context"

// Metrics are platform-wide counts for the admin dashboard.
type Metrics struct {
	TotalUsers          int `json:"totalUsers"`
	QuizAttempts        int `json:"totalQuizzes"`
	DrillParticipations int `json:"totalDrills"`
	AlertsSent          int `json:"alertsSent"`
}

// MetricsService reads live counts from the stores.
type MetricsService struct {
	users    UserStore
	progress ProgressStore
	drills   DrillLog
	alerts   AlertStore
}

func NewMetricsService(users UserStore, progress ProgressStore, drills DrillLog, alerts AlertStore) *MetricsService {
	return &MetricsService{users: users, progress: progress, drills: drills, alerts: alerts}
}

func (s *MetricsService) Snapshot(ctx context.Context) (Metrics, error) {
	users, err := s.users.All(ctx)
	if err != nil {
		return Metrics{}, err
	}
	attempts, err := s.progress.Count(ctx)
	if err != nil {
		return Metrics{}, err
	}
	drills, err := s.drills.Count(ctx)
	if err != nil {
		return Metrics{}, err
	}
	alerts, err := s.alerts.Count(ctx)
	if err != nil {
		return Metrics{}, err
	}
	return Metrics{
		TotalUsers:          len(users),
		QuizAttempts:        attempts,
		DrillParticipations: drills,
		AlertsSent:          alerts,
	}, nil
}
