package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/wicket/internal/store"
)

// latestTTL bounds how long a cached snapshot outlives its last write.
const latestTTL = 6 * time.Hour

// RedisCache holds the latest extracted state per match for fast reads.
// The REST match-data handler reads through it before touching Postgres.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache connection
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{
		client: client,
	}, nil
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Client returns the underlying Redis client
func (rc *RedisCache) Client() *redis.Client {
	return rc.client
}

// HealthCheck pings Redis to verify connection
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

func snapshotKey(matchID string, kind store.SnapshotKind) string {
	return fmt.Sprintf("wicket:match:%s:%s:latest", matchID, kind)
}

func statusKey(matchID string) string {
	return fmt.Sprintf("wicket:match:%s:status", matchID)
}

// PublishSnapshot caches the latest payload for (match, kind). It satisfies
// the scheduler's publisher fan-out.
func (rc *RedisCache) PublishSnapshot(ctx context.Context, matchID string, kind store.SnapshotKind, payload json.RawMessage) error {
	return rc.client.Set(ctx, snapshotKey(matchID, kind), []byte(payload), latestTTL).Err()
}

// PublishStatusChange caches the current lifecycle status for a match.
func (rc *RedisCache) PublishStatusChange(ctx context.Context, matchID string, status store.MatchStatus) error {
	return rc.client.Set(ctx, statusKey(matchID), string(status), latestTTL).Err()
}

// GetLatestSnapshot returns the cached payload for (match, kind), or nil on
// a cache miss.
func (rc *RedisCache) GetLatestSnapshot(ctx context.Context, matchID string, kind store.SnapshotKind) (json.RawMessage, error) {
	data, err := rc.client.Get(ctx, snapshotKey(matchID, kind)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// GetMatchStatus returns the cached lifecycle status, or "" on a miss.
func (rc *RedisCache) GetMatchStatus(ctx context.Context, matchID string) (store.MatchStatus, error) {
	val, err := rc.client.Get(ctx, statusKey(matchID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return store.MatchStatus(val), nil
}

// Delete removes keys
func (rc *RedisCache) Delete(ctx context.Context, keys ...string) error {
	return rc.client.Del(ctx, keys...).Err()
}
