package store

import (
	"encoding/json"
	"fmt"
	"time"
)

// MatchStatus represents the lifecycle state of a match.
type MatchStatus string

const (
	StatusUpcoming  MatchStatus = "upcoming"
	StatusLive      MatchStatus = "live"
	StatusCompleted MatchStatus = "completed"
)

// SnapshotKind enumerates the extracted payload types.
type SnapshotKind string

const (
	KindInfo      SnapshotKind = "info"
	KindSquads    SnapshotKind = "squads"
	KindLive      SnapshotKind = "live"
	KindScorecard SnapshotKind = "scorecard"
)

// Kinds lists every snapshot kind in a stable order.
var Kinds = []SnapshotKind{KindInfo, KindSquads, KindLive, KindScorecard}

// ParseKind validates a snapshot kind string from an external caller.
func ParseKind(s string) (SnapshotKind, error) {
	switch SnapshotKind(s) {
	case KindInfo, KindSquads, KindLive, KindScorecard:
		return SnapshotKind(s), nil
	}
	return "", fmt.Errorf("unknown snapshot kind: %q", s)
}

// Match represents one discoverable cricket match.
type Match struct {
	ID             string      `json:"id" db:"id"`
	Teams          string      `json:"teams" db:"teams"`
	Format         string      `json:"format" db:"format"`
	URL            string      `json:"url" db:"url"`
	ScheduledStart time.Time   `json:"scheduled_start" db:"scheduled_start"`
	Status         MatchStatus `json:"status" db:"status"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}

// Copy returns a shallow copy to prevent external mutation.
func (m *Match) Copy() *Match {
	if m == nil {
		return nil
	}
	cpy := *m
	return &cpy
}

// Snapshot is one extracted payload, routed by match id and kind. The
// payload is opaque to everything above the extractor.
type Snapshot struct {
	ID         int64           `json:"id,omitempty" db:"id"`
	MatchID    string          `json:"match_id" db:"match_id"`
	Kind       SnapshotKind    `json:"kind" db:"kind"`
	Payload    json.RawMessage `json:"payload" db:"payload"`
	RecordedAt time.Time       `json:"recorded_at" db:"recorded_at"`
}

// MatchData bundles a match with the latest snapshot of each kind.
// Kinds never captured are null.
type MatchData struct {
	Match     *Match          `json:"match"`
	Info      json.RawMessage `json:"info"`
	Squads    json.RawMessage `json:"squads"`
	Live      json.RawMessage `json:"live"`
	Scorecard json.RawMessage `json:"scorecard"`
}

// StorageStats summarizes persisted state for the status surface.
type StorageStats struct {
	TotalMatches   int                  `json:"total_matches"`
	CountsByStatus map[MatchStatus]int  `json:"counts_by_status"`
	SnapshotCounts map[SnapshotKind]int `json:"snapshot_counts"`
}
