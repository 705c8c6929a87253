package publisher

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/fortuna/wicket/internal/store"
)

// Sink is anything snapshots and status changes fan out to: the stream
// publisher, the latest-state cache, the WebSocket hub.
type Sink interface {
	PublishSnapshot(ctx context.Context, matchID string, kind store.SnapshotKind, payload json.RawMessage) error
	PublishStatusChange(ctx context.Context, matchID string, status store.MatchStatus) error
}

// Fanout forwards every event to each configured sink. One failing sink
// never stops the others; the joined error is returned for logging.
type Fanout struct {
	sinks []Sink
}

// NewFanout builds a fan-out over the given sinks
func NewFanout(sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks}
}

// PublishSnapshot forwards a snapshot to every sink
func (f *Fanout) PublishSnapshot(ctx context.Context, matchID string, kind store.SnapshotKind, payload json.RawMessage) error {
	var errs []error
	for _, sink := range f.sinks {
		if err := sink.PublishSnapshot(ctx, matchID, kind, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PublishStatusChange forwards a lifecycle transition to every sink
func (f *Fanout) PublishStatusChange(ctx context.Context, matchID string, status store.MatchStatus) error {
	var errs []error
	for _, sink := range f.sinks {
		if err := sink.PublishStatusChange(ctx, matchID, status); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
