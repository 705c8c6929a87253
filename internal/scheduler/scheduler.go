package scheduler

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/itbasis/go-clock"

	"github.com/fortuna/wicket/internal/store"
)

// StartTimeLayout parses the listing's human-readable start text
// (e.g. "24 Aug 2026, 14:30 GMT").
const StartTimeLayout = "02 Jan 2006, 15:04 MST"

// Config holds scheduler configuration
type Config struct {
	DiscoveryInterval time.Duration // Default: 15m
	TickInterval      time.Duration // Default: 1m
	PollInterval      time.Duration // Default: 30s
	PreRollWindow     time.Duration // Default: 5m
	ProvisionAttempts int           // Default: 3
	RetryDelay        time.Duration // Default: 5s
	TrackerStopWait   time.Duration // Default: 5s
	ShutdownTimeout   time.Duration // Default: 30s
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() *Config {
	return &Config{
		DiscoveryInterval: 15 * time.Minute,
		TickInterval:      1 * time.Minute,
		PollInterval:      30 * time.Second,
		PreRollWindow:     5 * time.Minute,
		ProvisionAttempts: 3,
		RetryDelay:        5 * time.Second,
		TrackerStopWait:   5 * time.Second,
		ShutdownTimeout:   30 * time.Second,
	}
}

// Scheduler is the match lifecycle core. It owns the authoritative in-memory
// match list and the active-tracker map, refreshes discovery on one cadence,
// evaluates lifecycle transitions on another, and provisions or tears down
// one tracker per match as it moves through upcoming → live → completed.
//
// One mutex guards the match list and tracker map; a second serializes ticks
// so two evaluation passes never mutate shared state concurrently.
type Scheduler struct {
	cfg       *Config
	extractor Extractor
	store     Store
	publisher Publisher
	clk       clock.Clock

	mu          sync.Mutex
	matches     map[string]*store.Match
	trackers    map[string]*Tracker
	running     bool
	lastRefresh time.Time

	tickMu sync.Mutex

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates a match scheduler. The publisher may be nil.
func New(clk clock.Clock, extractor Extractor, st Store, pub Publisher, cfg *Config) *Scheduler {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	return &Scheduler{
		cfg:       cfg,
		extractor: extractor,
		store:     st,
		publisher: pub,
		clk:       clk,
		matches:   make(map[string]*store.Match),
		trackers:  make(map[string]*Tracker),
	}
}

// Start seeds the match list with one immediate discovery refresh, then
// launches the discovery and tick loops. It returns once the loops are
// running; a failed first refresh is logged, not fatal — the discovery
// timer retries.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	log.Println("→ Match scheduler starting")
	log.Printf("  Discovery interval: %v, tick interval: %v, poll interval: %v",
		s.cfg.DiscoveryInterval, s.cfg.TickInterval, s.cfg.PollInterval)

	if err := s.RefreshMatchList(ctx); err != nil {
		log.Printf("  ⚠️  Initial discovery refresh failed: %v", err)
	}

	s.wg.Add(2)
	go s.runDiscoveryLoop(ctx)
	go s.runTickLoop(ctx)
}

func (s *Scheduler) runDiscoveryLoop(ctx context.Context) {
	defer s.wg.Done()
	log.Printf("→ Discovery refresh loop started (interval: %v)", s.cfg.DiscoveryInterval)

	ticker := s.clk.Ticker(s.cfg.DiscoveryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("→ Discovery refresh loop stopped")
			return
		case <-ticker.C:
			if err := s.RefreshMatchList(ctx); err != nil {
				log.Printf("  ⚠️  Discovery refresh failed: %v", err)
			}
		}
	}
}

func (s *Scheduler) runTickLoop(ctx context.Context) {
	defer s.wg.Done()
	log.Printf("→ Transition evaluation loop started (interval: %v)", s.cfg.TickInterval)

	ticker := s.clk.Ticker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("→ Transition evaluation loop stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// RefreshMatchList fetches the fixtures listing, rebuilds the in-memory
// match list and persists it. Records whose start time cannot be parsed are
// dropped with a warning and never abort the refresh. A match that fell out
// of the listing while still actively tracked is carried forward with its
// current state so its handle is never orphaned.
func (s *Scheduler) RefreshMatchList(ctx context.Context) error {
	discovered, err := s.extractor.DiscoverMatches(ctx)
	if err != nil {
		return fmt.Errorf("discovery fetch: %w", err)
	}

	now := s.clk.Now()
	fresh := make(map[string]*store.Match, len(discovered))
	for _, d := range discovered {
		start, err := time.Parse(StartTimeLayout, d.StartText)
		if err != nil {
			log.Printf("  ⚠️  Dropping match %s: unparseable start time %q", d.ID, d.StartText)
			continue
		}
		fresh[d.ID] = &store.Match{
			ID:             d.ID,
			Teams:          d.Teams,
			Format:         d.Format,
			URL:            d.URL,
			ScheduledStart: start,
			Status:         store.StatusUpcoming,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
	}

	s.mu.Lock()
	for id, incoming := range fresh {
		if existing, ok := s.matches[id]; ok {
			// Known match: keep the record so its status and any in-flight
			// transition survive the refresh, but take the listing's
			// descriptive fields so a rescheduled fixture moves with it.
			existing.Teams = incoming.Teams
			existing.Format = incoming.Format
			existing.URL = incoming.URL
			existing.ScheduledStart = incoming.ScheduledStart
			existing.UpdatedAt = now
			fresh[id] = existing
		}
	}
	for id, m := range s.matches {
		if _, ok := fresh[id]; ok {
			continue
		}
		if _, tracked := s.trackers[id]; tracked {
			log.Printf("  ⚠️  Match %s missing from listing while tracked, carrying forward", id)
			fresh[id] = m
		}
	}
	s.matches = fresh
	s.lastRefresh = now

	list := make([]*store.Match, 0, len(fresh))
	for _, m := range fresh {
		list = append(list, m.Copy())
	}
	s.mu.Unlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].ScheduledStart.Before(list[j].ScheduledStart)
	})

	if err := s.store.PutMatchList(ctx, list); err != nil {
		return fmt.Errorf("persisting match list: %w", err)
	}

	log.Printf("✓ Match list refreshed: %d matches", len(list))
	return nil
}

// Tick runs one transition-evaluation pass over every known match. Ticks
// never overlap: if one is still running when the next fires, the new one
// is skipped and its work happens at most one interval later.
func (s *Scheduler) Tick(ctx context.Context) {
	if !s.tickMu.TryLock() {
		log.Println("  ⚠️  Previous tick still in progress, skipping")
		return
	}
	defer s.tickMu.Unlock()

	now := s.clk.Now()

	s.mu.Lock()
	pending := make([]*store.Match, 0, len(s.matches))
	for _, m := range s.matches {
		if m.Status != store.StatusCompleted {
			pending = append(pending, m)
		}
	}
	s.mu.Unlock()

	for _, m := range pending {
		if ctx.Err() != nil {
			return
		}
		s.evaluateMatch(ctx, m, now)
	}
}

// evaluateMatch applies the state machine to one match. The transition
// decision itself is pure; the blocking I/O (end check, provisioning)
// happens outside the scheduler lock.
func (s *Scheduler) evaluateMatch(ctx context.Context, m *store.Match, now time.Time) {
	s.mu.Lock()
	status := m.Status
	start := m.ScheduledStart
	tracker := s.trackers[m.ID]
	s.mu.Unlock()

	ended := false
	if status == store.StatusLive && tracker != nil {
		ended = tracker.CheckIfEnded(ctx)
	}

	switch evaluateTransition(status, now, start, tracker != nil, ended, s.cfg.PreRollWindow) {
	case actionProvision:
		s.provisionMatch(ctx, m)
	case actionGoLive:
		s.goLive(ctx, m, tracker)
	case actionComplete:
		s.completeMatch(ctx, m, tracker)
	}
}

func (s *Scheduler) provisionMatch(ctx context.Context, m *store.Match) {
	log.Printf("→ Provisioning tracker for %s (%s)", m.ID, m.Teams)

	tracker := newTracker(m.ID, m.URL, s.extractor, s.store, s.publisher, s.clk, s.cfg)
	if err := tracker.Provision(ctx); err != nil {
		// The match stays upcoming with no handle; the next tick retries.
		log.Printf("  ❌ Provisioning %s failed: %v", m.ID, err)
		return
	}

	s.mu.Lock()
	if _, known := s.matches[m.ID]; !known {
		// The match fell out of discovery while the session was being
		// provisioned; a handle must never outlive its backing match.
		s.mu.Unlock()
		log.Printf("  ⚠️  Match %s dropped from list during provisioning, releasing tracker", m.ID)
		tracker.Stop()
		return
	}
	s.trackers[m.ID] = tracker
	s.mu.Unlock()
	log.Printf("✓ Tracker provisioned for %s", m.ID)
}

func (s *Scheduler) goLive(ctx context.Context, m *store.Match, tracker *Tracker) {
	s.mu.Lock()
	m.Status = store.StatusLive
	m.UpdatedAt = s.clk.Now()
	s.mu.Unlock()

	tracker.StartLiveTracking()
	s.persistStatus(ctx, m.ID, store.StatusLive)
	log.Printf("✓ Match %s is live", m.ID)
}

func (s *Scheduler) completeMatch(ctx context.Context, m *store.Match, tracker *Tracker) {
	tracker.Stop()

	s.mu.Lock()
	delete(s.trackers, m.ID)
	m.Status = store.StatusCompleted
	m.UpdatedAt = s.clk.Now()
	s.mu.Unlock()

	s.persistStatus(ctx, m.ID, store.StatusCompleted)
	log.Printf("✓ Match %s completed", m.ID)
}

func (s *Scheduler) persistStatus(ctx context.Context, matchID string, status store.MatchStatus) {
	if err := s.store.PutMatchStatus(ctx, matchID, status); err != nil {
		log.Printf("  ⚠️  Persisting status %s for %s failed: %v", status, matchID, err)
	}
	if s.publisher != nil {
		if err := s.publisher.PublishStatusChange(ctx, matchID, status); err != nil {
			log.Printf("  ⚠️  Publishing status %s for %s failed: %v", status, matchID, err)
		}
	}
}

// Status reports the point-in-time summary. It reads only scheduler state
// under the scheduler mutex and never blocks on any tracker's session.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := map[store.MatchStatus]int{
		store.StatusUpcoming:  0,
		store.StatusLive:      0,
		store.StatusCompleted: 0,
	}
	for _, m := range s.matches {
		counts[m.Status]++
	}

	active := make([]string, 0, len(s.trackers))
	for id := range s.trackers {
		active = append(active, id)
	}
	sort.Strings(active)

	return Status{
		Running:        s.running,
		MatchCount:     len(s.matches),
		ActiveTrackers: active,
		CountsByStatus: counts,
		LastRefresh:    s.lastRefresh,
	}
}

// Stop cancels both loops and stops every active tracker concurrently,
// waiting a bounded time for all sessions to be released. Safe to call
// more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		log.Println("Stopping match scheduler...")

		if s.cancel != nil {
			s.cancel()
		}
		s.wg.Wait()

		s.mu.Lock()
		trackers := make([]*Tracker, 0, len(s.trackers))
		for _, t := range s.trackers {
			trackers = append(trackers, t)
		}
		s.trackers = make(map[string]*Tracker)
		s.running = false
		s.mu.Unlock()

		var wg sync.WaitGroup
		for _, t := range trackers {
			wg.Add(1)
			go func(t *Tracker) {
				defer wg.Done()
				t.Stop()
			}(t)
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			wg.Wait()
		}()

		select {
		case <-done:
			log.Printf("✓ Match scheduler stopped (%d trackers released)", len(trackers))
		case <-s.clk.After(s.cfg.ShutdownTimeout):
			log.Printf("  ⚠️  Scheduler shutdown timed out after %v", s.cfg.ShutdownTimeout)
		}
	})
}
