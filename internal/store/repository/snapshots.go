package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fortuna/wicket/internal/store"
)

// SnapshotRepository handles snapshot data access. Every write lands in the
// append-only snapshots table and overwrites the (match, kind) row in
// snapshots_latest, so consumers get both full history and a fast latest
// lookup.
type SnapshotRepository struct {
	db *store.Database
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *store.Database) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Save persists one snapshot: a timestamped historical row plus the
// overwritten latest copy, in a single transaction.
func (r *SnapshotRepository) Save(ctx context.Context, matchID string, kind store.SnapshotKind, payload json.RawMessage, recordedAt time.Time) error {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	historyQuery := `
		INSERT INTO snapshots (match_id, kind, payload, recorded_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.ExecContext(ctx, historyQuery, matchID, kind, []byte(payload), recordedAt); err != nil {
		return fmt.Errorf("inserting snapshot history: %w", err)
	}

	latestQuery := `
		INSERT INTO snapshots_latest (match_id, kind, payload, recorded_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (match_id, kind) DO UPDATE SET
			payload = EXCLUDED.payload,
			recorded_at = EXCLUDED.recorded_at
	`
	if _, err := tx.ExecContext(ctx, latestQuery, matchID, kind, []byte(payload), recordedAt); err != nil {
		return fmt.Errorf("upserting latest snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}

	return nil
}

// GetLatest returns the most recent snapshot of one kind, or nil when the
// kind has never been captured for this match.
func (r *SnapshotRepository) GetLatest(ctx context.Context, matchID string, kind store.SnapshotKind) (*store.Snapshot, error) {
	query := `
		SELECT match_id, kind, payload, recorded_at
		FROM snapshots_latest
		WHERE match_id = $1 AND kind = $2
	`

	snapshot := &store.Snapshot{}
	err := r.db.DB().QueryRowContext(ctx, query, matchID, kind).Scan(
		&snapshot.MatchID, &snapshot.Kind, &snapshot.Payload, &snapshot.RecordedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest snapshot: %w", err)
	}

	return snapshot, nil
}

// GetAllLatest returns the latest snapshot of every captured kind for a match
func (r *SnapshotRepository) GetAllLatest(ctx context.Context, matchID string) (map[store.SnapshotKind]*store.Snapshot, error) {
	query := `
		SELECT match_id, kind, payload, recorded_at
		FROM snapshots_latest
		WHERE match_id = $1
	`

	rows, err := r.db.DB().QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("querying latest snapshots: %w", err)
	}
	defer rows.Close()

	latest := make(map[store.SnapshotKind]*store.Snapshot)
	for rows.Next() {
		snapshot := &store.Snapshot{}
		if err := rows.Scan(&snapshot.MatchID, &snapshot.Kind, &snapshot.Payload, &snapshot.RecordedAt); err != nil {
			return nil, fmt.Errorf("scanning latest snapshot: %w", err)
		}
		latest[snapshot.Kind] = snapshot
	}

	return latest, rows.Err()
}

// GetHistory returns up to limit historical snapshots of one kind,
// newest first
func (r *SnapshotRepository) GetHistory(ctx context.Context, matchID string, kind store.SnapshotKind, limit int) ([]*store.Snapshot, error) {
	query := `
		SELECT id, match_id, kind, payload, recorded_at
		FROM snapshots
		WHERE match_id = $1 AND kind = $2
		ORDER BY recorded_at DESC, id DESC
		LIMIT $3
	`

	rows, err := r.db.DB().QueryContext(ctx, query, matchID, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("querying snapshot history: %w", err)
	}
	defer rows.Close()

	var snapshots []*store.Snapshot
	for rows.Next() {
		snapshot := &store.Snapshot{}
		err := rows.Scan(&snapshot.ID, &snapshot.MatchID, &snapshot.Kind, &snapshot.Payload, &snapshot.RecordedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, rows.Err()
}

// CountByKind returns historical snapshot row counts keyed by kind
func (r *SnapshotRepository) CountByKind(ctx context.Context) (map[store.SnapshotKind]int, error) {
	query := `SELECT kind, COUNT(*) FROM snapshots GROUP BY kind`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("counting snapshots: %w", err)
	}
	defer rows.Close()

	counts := make(map[store.SnapshotKind]int)
	for rows.Next() {
		var kind store.SnapshotKind
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("scanning snapshot count: %w", err)
		}
		counts[kind] = count
	}

	return counts, rows.Err()
}
