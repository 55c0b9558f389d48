package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"suraksha-sathi/internal/domain"
)

// ErrMissingAlertFields rejects alert submissions missing region, level or
// message.
var ErrMissingAlertFields = errors.New("region, level and message are required")

// AlertService persists alerts and fans them out to in-process subscribers
// (the websocket stream). Subscribers that fall behind lose the oldest
// pending alert rather than blocking the publisher.
type AlertService struct {
	store AlertStore

	mu   sync.Mutex
	subs map[chan domain.Alert]struct{}

	now   func() time.Time
	newID func() string
}

func NewAlertService(store AlertStore) *AlertService {
	return &AlertService{
		store: store,
		subs:  make(map[chan domain.Alert]struct{}),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// WithClock is test-only for deterministic timestamps and identifiers.
func (s *AlertService) WithClock(now func() time.Time, newID func() string) *AlertService {
	s.now = now
	s.newID = newID
	return s
}

// Publish validates, persists and broadcasts a new alert.
func (s *AlertService) Publish(ctx context.Context, region, level, message string) (domain.Alert, error) {
	if region == "" || level == "" || message == "" {
		return domain.Alert{}, ErrMissingAlertFields
	}

	alert := domain.Alert{
		ID:      s.newID(),
		Region:  region,
		Level:   level,
		Message: message,
		Time:    s.now().UnixMilli(),
	}
	if err := s.store.Append(ctx, alert); err != nil {
		return domain.Alert{}, err
	}

	s.mu.Lock()
	for ch := range s.subs {
		select {
		case ch <- alert:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- alert
		}
	}
	s.mu.Unlock()

	return alert, nil
}

// Recent lists stored alerts newest first.
func (s *AlertService) Recent(ctx context.Context) ([]domain.Alert, error) {
	return s.store.All(ctx)
}

// Subscribe registers a live alert feed. The caller must invoke the returned
// cancel function to avoid leaks.
func (s *AlertService) Subscribe() (<-chan domain.Alert, func()) {
	ch := make(chan domain.Alert, 8)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}
