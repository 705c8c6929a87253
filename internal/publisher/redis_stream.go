package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/wicket/internal/store"
)

const (
	snapshotStream = "matches.live.cricket"
	statusStream   = "matches.status.cricket"
)

// RedisStreamPublisher publishes snapshot and lifecycle events to Redis
// streams for downstream consumers.
type RedisStreamPublisher struct {
	client *redis.Client
}

// NewRedisStreamPublisher creates a stream publisher from an existing client
func NewRedisStreamPublisher(client *redis.Client) *RedisStreamPublisher {
	return &RedisStreamPublisher{
		client: client,
	}
}

type snapshotEvent struct {
	MatchID string             `json:"match_id"`
	Kind    store.SnapshotKind `json:"kind"`
	Payload json.RawMessage    `json:"payload"`
}

type statusEvent struct {
	MatchID string            `json:"match_id"`
	Status  store.MatchStatus `json:"status"`
}

// PublishSnapshot publishes one extracted payload to the snapshot stream
func (rsp *RedisStreamPublisher) PublishSnapshot(ctx context.Context, matchID string, kind store.SnapshotKind, payload json.RawMessage) error {
	data, err := json.Marshal(snapshotEvent{MatchID: matchID, Kind: kind, Payload: payload})
	if err != nil {
		return err
	}

	return rsp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: snapshotStream,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}

// PublishStatusChange publishes a lifecycle transition to the status stream
func (rsp *RedisStreamPublisher) PublishStatusChange(ctx context.Context, matchID string, status store.MatchStatus) error {
	data, err := json.Marshal(statusEvent{MatchID: matchID, Status: status})
	if err != nil {
		return err
	}

	return rsp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: statusStream,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}
