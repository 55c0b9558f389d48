package memory

import (
	"context"
	"sort"
	"sync"

	"suraksha-sathi/internal/domain"
)

// UserStore is an in-memory implementation of app.UserStore. All mutations go
// through a single lock.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]domain.User)}
}

func (s *UserStore) ByID(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *UserStore) ByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *UserStore) All(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]domain.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *UserStore) Save(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

// ProgressStore is the in-memory append-only quiz-attempt log.
type ProgressStore struct {
	mu       sync.RWMutex
	attempts []domain.QuizAttempt
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{}
}

func (s *ProgressStore) Append(_ context.Context, attempt domain.QuizAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, attempt)
	return nil
}

func (s *ProgressStore) TotalScore(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, a := range s.attempts {
		if a.UserID == userID {
			total += a.Score
		}
	}
	return total, nil
}

func (s *ProgressStore) All(_ context.Context) ([]domain.QuizAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.QuizAttempt, len(s.attempts))
	copy(out, s.attempts)
	return out, nil
}

func (s *ProgressStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.attempts), nil
}

// DrillLog is the in-memory append-only drill-participation log.
type DrillLog struct {
	mu      sync.RWMutex
	records []domain.DrillRecord
}

func NewDrillLog() *DrillLog {
	return &DrillLog{}
}

func (s *DrillLog) Append(_ context.Context, record domain.DrillRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

func (s *DrillLog) ByUser(_ context.Context, userID string) ([]domain.DrillRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.DrillRecord
	for _, r := range s.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *DrillLog) All(_ context.Context) ([]domain.DrillRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.DrillRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *DrillLog) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// AlertStore keeps published alerts in memory, newest first on read.
type AlertStore struct {
	mu     sync.RWMutex
	alerts []domain.Alert
}

func NewAlertStore() *AlertStore {
	return &AlertStore{}
}

func (s *AlertStore) Append(_ context.Context, alert domain.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, alert)
	return nil
}

func (s *AlertStore) All(_ context.Context) ([]domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Alert, len(s.alerts))
	copy(out, s.alerts)
	sort.Slice(out, func(i, j int) bool { return out[i].Time > out[j].Time })
	return out, nil
}

func (s *AlertStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alerts), nil
}
