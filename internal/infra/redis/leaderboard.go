package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"suraksha-sathi/internal/domain"
)

const (
	scoreKey = "leaderboard:score"
	nameKey  = "leaderboard:name"
)

// LeaderboardCache keeps the ranking in a Redis sorted set
// (ZSET leaderboard:score member=userID) with display names in a companion
// hash. It implements app.LeaderboardCache.
type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLeaderboardCache(client *redis.Client, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{client: client, ttl: ttl}
}

// Top returns the cached ranking highest-score first, or an empty slice when
// the cache is cold.
func (c *LeaderboardCache) Top(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, scoreKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	names, err := c.client.HGetAll(ctx, nameKey).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]domain.LeaderboardEntry, len(results))
	for i, z := range results {
		userID := z.Member.(string)
		entries[i] = domain.LeaderboardEntry{
			UserID: userID,
			Name:   names[userID],
			Score:  int(z.Score),
		}
	}
	return entries, nil
}

// Fill replaces the cached ranking with a fresh snapshot.
func (c *LeaderboardCache) Fill(ctx context.Context, entries []domain.LeaderboardEntry) error {
	pipe := c.client.Pipeline()
	pipe.Del(ctx, scoreKey, nameKey)
	for _, entry := range entries {
		pipe.ZAdd(ctx, scoreKey, redis.Z{
			Score:  float64(entry.Score),
			Member: entry.UserID,
		})
		pipe.HSet(ctx, nameKey, entry.UserID, entry.Name)
	}
	if c.ttl > 0 {
		pipe.Expire(ctx, scoreKey, c.ttl)
		pipe.Expire(ctx, nameKey, c.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// AddScore bumps one user's cached total. While the board key is absent the
// call is a no-op: incrementing a cold cache would build a one-member board
// and serve it as complete.
func (c *LeaderboardCache) AddScore(ctx context.Context, userID, name string, delta int) error {
	exists, err := c.client.Exists(ctx, scoreKey).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	pipe.ZIncrBy(ctx, scoreKey, float64(delta), userID)
	pipe.HSet(ctx, nameKey, userID, name)
	_, err = pipe.Exec(ctx)
	return err
}
