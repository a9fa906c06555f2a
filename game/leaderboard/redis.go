package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/wricardo/tmge/game/service"
)

// DefaultKeyPrefix namespaces leaderboard keys
const DefaultKeyPrefix = "tmge:leaderboard:"

// RedisStore keeps the best scores per variant in a Redis sorted set.
// Members are JSON-encoded entries scored by points.
type RedisStore struct {
	client   *redis.Client
	prefix   string
	capacity int64
}

// NewRedisStore wraps an existing client
func NewRedisStore(client *redis.Client, capacity int) *RedisStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &RedisStore{
		client:   client,
		prefix:   DefaultKeyPrefix,
		capacity: int64(capacity),
	}
}

// Connect parses a redis:// URL, dials it and verifies the connection
func Connect(ctx context.Context, url string, capacity int) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewRedisStore(client, capacity), nil
}

func (s *RedisStore) key(variant string) string {
	return s.prefix + variant
}

// Submit records a final score and trims the set to capacity
func (s *RedisStore) Submit(ctx context.Context, entry service.LeaderboardEntry) error {
	member, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode entry: %w", err)
	}

	key := s.key(entry.Variant)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(entry.Score), Member: string(member)})
		// Lowest ranks hold the lowest scores
		pipe.ZRemRangeByRank(ctx, key, 0, -s.capacity-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to submit score: %w", err)
	}
	return nil
}

// Top returns up to limit entries for a variant, best first
func (s *RedisStore) Top(ctx context.Context, variant string, limit int) ([]service.LeaderboardEntry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	members, err := s.client.ZRevRangeWithScores(ctx, s.key(variant), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}

	entries := make([]service.LeaderboardEntry, 0, len(members))
	for _, z := range members {
		raw, ok := z.Member.(string)
		if !ok {
			continue
		}
		var entry service.LeaderboardEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Close releases the underlying client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
