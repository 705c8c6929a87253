package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fortuna/wicket/internal/store"
	"github.com/fortuna/wicket/internal/store/repository"
)

// MatchService is the persistence surface for match lifecycle data. The
// scheduler writes through it (match list, status transitions, snapshots)
// and the REST layer reads through it.
type MatchService struct {
	matchRepo    *repository.MatchRepository
	snapshotRepo *repository.SnapshotRepository
}

// NewMatchService creates a new match service
func NewMatchService(db *store.Database) *MatchService {
	return &MatchService{
		matchRepo:    repository.NewMatchRepository(db),
		snapshotRepo: repository.NewSnapshotRepository(db),
	}
}

// PutMatchList persists a full discovery result
func (s *MatchService) PutMatchList(ctx context.Context, matches []*store.Match) error {
	if err := s.matchRepo.ReplaceAll(ctx, matches); err != nil {
		return fmt.Errorf("persisting match list: %w", err)
	}
	return nil
}

// GetMatchList returns every persisted match
func (s *MatchService) GetMatchList(ctx context.Context) ([]*store.Match, error) {
	matches, err := s.matchRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching match list: %w", err)
	}
	return matches, nil
}

// PutMatchStatus persists a lifecycle transition
func (s *MatchService) PutMatchStatus(ctx context.Context, matchID string, status store.MatchStatus) error {
	if err := s.matchRepo.UpdateStatus(ctx, matchID, status); err != nil {
		return fmt.Errorf("persisting match status: %w", err)
	}
	return nil
}

// PutSnapshot persists one extracted payload, stamped at write time
func (s *MatchService) PutSnapshot(ctx context.Context, matchID string, kind store.SnapshotKind, payload json.RawMessage) error {
	if err := s.snapshotRepo.Save(ctx, matchID, kind, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("persisting %s snapshot: %w", kind, err)
	}
	return nil
}

// GetMatch returns a single persisted match
func (s *MatchService) GetMatch(ctx context.Context, matchID string) (*store.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("fetching match: %w", err)
	}
	return match, nil
}

// GetMatchData returns a match with the latest snapshot of each kind.
// Kinds never captured come back null.
func (s *MatchService) GetMatchData(ctx context.Context, matchID string) (*store.MatchData, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("fetching match: %w", err)
	}

	latest, err := s.snapshotRepo.GetAllLatest(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("fetching latest snapshots: %w", err)
	}

	data := &store.MatchData{Match: match}
	if snap, ok := latest[store.KindInfo]; ok {
		data.Info = snap.Payload
	}
	if snap, ok := latest[store.KindSquads]; ok {
		data.Squads = snap.Payload
	}
	if snap, ok := latest[store.KindLive]; ok {
		data.Live = snap.Payload
	}
	if snap, ok := latest[store.KindScorecard]; ok {
		data.Scorecard = snap.Payload
	}

	return data, nil
}

// GetLatestSnapshot returns the latest snapshot of one kind, nil if never
// captured
func (s *MatchService) GetLatestSnapshot(ctx context.Context, matchID string, kind store.SnapshotKind) (*store.Snapshot, error) {
	snapshot, err := s.snapshotRepo.GetLatest(ctx, matchID, kind)
	if err != nil {
		return nil, fmt.Errorf("fetching latest snapshot: %w", err)
	}
	return snapshot, nil
}

// GetSnapshotHistory returns up to limit historical snapshots, newest first
func (s *MatchService) GetSnapshotHistory(ctx context.Context, matchID string, kind store.SnapshotKind, limit int) ([]*store.Snapshot, error) {
	snapshots, err := s.snapshotRepo.GetHistory(ctx, matchID, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching snapshot history: %w", err)
	}
	return snapshots, nil
}

// GetStorageStats summarizes persisted matches and snapshots
func (s *MatchService) GetStorageStats(ctx context.Context) (*store.StorageStats, error) {
	statusCounts, err := s.matchRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting matches: %w", err)
	}

	kindCounts, err := s.snapshotRepo.CountByKind(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting snapshots: %w", err)
	}

	total := 0
	for _, n := range statusCounts {
		total += n
	}

	return &store.StorageStats{
		TotalMatches:   total,
		CountsByStatus: statusCounts,
		SnapshotCounts: kindCounts,
	}, nil
}
