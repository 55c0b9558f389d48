package app

import (
	"context"
	"log"
	"sort"

	"suraksha-sathi/internal/domain"
)

// LeaderboardCache is an optional read-through cache over the computed
// ranking (Redis sorted set in production). Implementations are best-effort:
// the service falls back to direct computation on any cache failure.
type LeaderboardCache interface {
	// Top returns the cached ranking, empty when the cache is cold.
	Top(ctx context.Context) ([]domain.LeaderboardEntry, error)
	// Fill replaces the cached ranking with a fresh snapshot.
	Fill(ctx context.Context, entries []domain.LeaderboardEntry) error
	// AddScore bumps one user's cached total. No-op while the cache is cold
	// so a partial board is never served.
	AddScore(ctx context.Context, userID, name string, delta int) error
}

// LeaderboardService derives the ranked snapshot from the user and progress
// stores. The output is a snapshot, not a live view.
type LeaderboardService struct {
	users    UserStore
	progress ProgressStore
	cache    LeaderboardCache
}

// NewLeaderboardService builds the service; cache may be nil.
func NewLeaderboardService(users UserStore, progress ProgressStore, cache LeaderboardCache) *LeaderboardService {
	return &LeaderboardService{users: users, progress: progress, cache: cache}
}

// Snapshot returns every user with their summed quiz score, sorted by score
// descending and userId ascending on ties.
func (s *LeaderboardService) Snapshot(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	if s.cache != nil {
		if entries, err := s.cache.Top(ctx); err == nil && len(entries) > 0 {
			return entries, nil
		}
	}

	entries, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Fill(ctx, entries); err != nil {
			log.Printf("leaderboard cache fill failed: %v", err)
		}
	}
	return entries, nil
}

func (s *LeaderboardService) compute(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	users, err := s.users.All(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.LeaderboardEntry, 0, len(users))
	for _, user := range users {
		total, err := s.progress.TotalScore(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, domain.LeaderboardEntry{
			UserID: user.ID,
			Name:   user.Name,
			Score:  total,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].UserID < entries[j].UserID
	})
	return entries, nil
}

// recordScore write-through updates the cached total after a graded attempt.
func (s *LeaderboardService) recordScore(ctx context.Context, user domain.User, delta int) {
	if s.cache == nil || delta == 0 {
		return
	}
	if err := s.cache.AddScore(ctx, user.ID, user.Name, delta); err != nil {
		log.Printf("leaderboard cache update failed: %v", err)
	}
}
