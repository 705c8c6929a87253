package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/itbasis/go-clock"

	"github.com/fortuna/wicket/internal/store"
)

// Tracker is the per-match lifecycle agent. It owns exactly one extractor
// session and, once its match goes live, an independent polling goroutine.
// The scheduler talks to it only through Provision, StartLiveTracking,
// CheckIfEnded and Stop; the session is never touched directly.
type Tracker struct {
	matchID string
	url     string

	extractor Extractor
	store     Store
	publisher Publisher
	clk       clock.Clock

	pollInterval time.Duration
	maxAttempts  int
	retryDelay   time.Duration
	stopWait     time.Duration

	// sessionMu serializes extraction operations: the polling loop and the
	// scheduler's end checks never hit the session concurrently.
	sessionMu sync.Mutex

	mu      sync.Mutex
	session Session
	polling bool
	cancel  context.CancelFunc
	done    chan struct{}

	stopOnce sync.Once
}

func newTracker(matchID, url string, extractor Extractor, st Store, pub Publisher, clk clock.Clock, cfg *Config) *Tracker {
	return &Tracker{
		matchID:      matchID,
		url:          url,
		extractor:    extractor,
		store:        st,
		publisher:    pub,
		clk:          clk,
		pollInterval: cfg.PollInterval,
		maxAttempts:  cfg.ProvisionAttempts,
		retryDelay:   cfg.RetryDelay,
		stopWait:     cfg.TrackerStopWait,
	}
}

// MatchID returns the match this tracker manages.
func (t *Tracker) MatchID() string {
	return t.matchID
}

// PollingActive reports whether the live-polling loop is running. It never
// blocks on extraction I/O.
func (t *Tracker) PollingActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.polling
}

// Provision acquires a session bound to the match page and pulls the static
// content (match info and squads). Each attempt re-runs full session
// initialization; a failed attempt releases its session before the retry
// delay. Exhausting all attempts returns an error and leaves the tracker
// without a session, so the caller never registers a half-initialized handle.
func (t *Tracker) Provision(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= t.maxAttempts; attempt++ {
		lastErr = t.initialize(ctx)
		if lastErr == nil {
			return nil
		}

		log.Printf("  ⚠️  Tracker init attempt %d/%d for %s failed: %v", attempt, t.maxAttempts, t.matchID, lastErr)
		if attempt < t.maxAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.clk.After(t.retryDelay):
			}
		}
	}
	return fmt.Errorf("provisioning tracker for %s after %d attempts: %w", t.matchID, t.maxAttempts, lastErr)
}

// initialize opens a fresh session and performs the initial static pull.
func (t *Tracker) initialize(ctx context.Context) error {
	session, err := t.extractor.Open(ctx, t.url)
	if err != nil {
		return fmt.Errorf("opening session: %w", err)
	}

	for _, kind := range []store.SnapshotKind{store.KindInfo, store.KindSquads} {
		payload, err := session.Fetch(ctx, kind)
		if err != nil {
			session.Close()
			return fmt.Errorf("initial %s pull: %w", kind, err)
		}
		if err := t.store.PutSnapshot(ctx, t.matchID, kind, payload); err != nil {
			session.Close()
			return fmt.Errorf("persisting initial %s: %w", kind, err)
		}
		t.publish(ctx, kind, payload)
	}

	t.mu.Lock()
	t.session = session
	t.mu.Unlock()
	return nil
}

// StartLiveTracking launches the independent polling loop. Calling it on an
// unprovisioned tracker or one already polling is a no-op.
func (t *Tracker) StartLiveTracking() {
	t.mu.Lock()
	if t.polling || t.session == nil {
		t.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.done = make(chan struct{})
	t.polling = true
	t.mu.Unlock()

	go t.pollLoop(ctx)
}

func (t *Tracker) pollLoop(ctx context.Context) {
	defer close(t.done)
	log.Printf("→ Live polling started for %s (interval: %v)", t.matchID, t.pollInterval)

	ticker := t.clk.Ticker(t.pollInterval)
	defer ticker.Stop()

	// First pull immediately, then on the interval.
	t.pollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Printf("→ Live polling stopped for %s", t.matchID)
			return
		case <-ticker.C:
			t.pollOnce(ctx)
		}
	}
}

// pollOnce pulls and persists the live view and scorecard. Every failure is
// logged and swallowed so one bad pull never kills the loop.
func (t *Tracker) pollOnce(ctx context.Context) {
	t.mu.Lock()
	session := t.session
	t.mu.Unlock()
	if session == nil {
		return
	}

	t.sessionMu.Lock()
	defer t.sessionMu.Unlock()

	for _, kind := range []store.SnapshotKind{store.KindLive, store.KindScorecard} {
		if ctx.Err() != nil {
			return
		}
		payload, err := session.Fetch(ctx, kind)
		if err != nil {
			log.Printf("  ⚠️  %s pull for %s failed: %v", kind, t.matchID, err)
			continue
		}
		if err := t.store.PutSnapshot(ctx, t.matchID, kind, payload); err != nil {
			log.Printf("  ⚠️  Persisting %s for %s failed: %v", kind, t.matchID, err)
			continue
		}
		t.publish(ctx, kind, payload)
	}
}

func (t *Tracker) publish(ctx context.Context, kind store.SnapshotKind, payload []byte) {
	if t.publisher == nil {
		return
	}
	if err := t.publisher.PublishSnapshot(ctx, t.matchID, kind, payload); err != nil {
		log.Printf("  ⚠️  Publishing %s for %s failed: %v", kind, t.matchID, err)
	}
}

// CheckIfEnded asks the session whether the page shows a terminal status.
// Extraction errors read as "not ended" so a flaky page never completes a
// match early.
func (t *Tracker) CheckIfEnded(ctx context.Context) bool {
	t.mu.Lock()
	session := t.session
	t.mu.Unlock()
	if session == nil {
		return false
	}

	t.sessionMu.Lock()
	defer t.sessionMu.Unlock()

	ended, err := session.IsEnded(ctx)
	if err != nil {
		log.Printf("  ⚠️  End check for %s failed: %v", t.matchID, err)
		return false
	}
	return ended
}

// Stop signals the polling loop, waits briefly for it to observe the signal,
// then releases the session unconditionally. Safe to call repeatedly and on
// a tracker that never started polling.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() {
		t.mu.Lock()
		cancel := t.cancel
		done := t.done
		session := t.session
		t.session = nil
		t.polling = false
		t.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		if done != nil {
			select {
			case <-done:
			case <-t.clk.After(t.stopWait):
				log.Printf("  ⚠️  Polling loop for %s did not stop within %v", t.matchID, t.stopWait)
			}
		}
		if session != nil {
			session.Close()
		}
	})
}
