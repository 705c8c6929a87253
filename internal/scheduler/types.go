package scheduler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fortuna/wicket/internal/extract"
	"github.com/fortuna/wicket/internal/store"
)

// Session is one exclusively owned browser session pinned to a match page.
// It is only ever driven by the tracker that owns it.
type Session interface {
	Fetch(ctx context.Context, kind store.SnapshotKind) (json.RawMessage, error)
	IsEnded(ctx context.Context) (bool, error)
	Close() error
}

// Extractor is the browser capability the scheduler consumes: the fixtures
// listing fetch for discovery, plus per-match sessions.
type Extractor interface {
	DiscoverMatches(ctx context.Context) ([]extract.DiscoveredMatch, error)
	Open(ctx context.Context, url string) (Session, error)
}

// Store is the persistence boundary. Snapshot writes for live and scorecard
// retain both a timestamped historical copy and an overwritten latest copy.
type Store interface {
	PutMatchList(ctx context.Context, matches []*store.Match) error
	GetMatchList(ctx context.Context) ([]*store.Match, error)
	PutMatchStatus(ctx context.Context, matchID string, status store.MatchStatus) error
	PutSnapshot(ctx context.Context, matchID string, kind store.SnapshotKind, payload json.RawMessage) error
}

// Publisher fans extracted snapshots and lifecycle changes out to downstream
// consumers. Publish failures are logged and swallowed by the callers; they
// never affect tracking.
type Publisher interface {
	PublishSnapshot(ctx context.Context, matchID string, kind store.SnapshotKind, payload json.RawMessage) error
	PublishStatusChange(ctx context.Context, matchID string, status store.MatchStatus) error
}

// Status is a point-in-time scheduler summary, derived purely from in-memory
// state.
type Status struct {
	Running        bool                      `json:"running"`
	MatchCount     int                       `json:"match_count"`
	ActiveTrackers []string                  `json:"active_trackers"`
	CountsByStatus map[store.MatchStatus]int `json:"counts_by_status"`
	LastRefresh    time.Time                 `json:"last_refresh,omitzero"`
}

// BrowserExtractor adapts the chromedp client to the Extractor boundary.
type BrowserExtractor struct {
	client *extract.Client
}

// NewBrowserExtractor wraps a browser client for use by the scheduler.
func NewBrowserExtractor(client *extract.Client) *BrowserExtractor {
	return &BrowserExtractor{client: client}
}

// DiscoverMatches fetches the fixtures listing.
func (b *BrowserExtractor) DiscoverMatches(ctx context.Context) ([]extract.DiscoveredMatch, error) {
	return b.client.DiscoverMatches(ctx)
}

// Open starts a new session bound to one match page.
func (b *BrowserExtractor) Open(ctx context.Context, url string) (Session, error) {
	session, err := b.client.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	return session, nil
}
