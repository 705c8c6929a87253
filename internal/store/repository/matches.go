package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fortuna/wicket/internal/store"
)

// MatchRepository handles match data access
type MatchRepository struct {
	db *store.Database
}

// NewMatchRepository creates a new match repository
func NewMatchRepository(db *store.Database) *MatchRepository {
	return &MatchRepository{db: db}
}

// GetByID finds a match by its source-assigned id
func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (*store.Match, error) {
	query := `
		SELECT id, teams, format, url, scheduled_start, status, created_at, updated_at
		FROM matches
		WHERE id = $1
	`

	match := &store.Match{}
	err := r.db.DB().QueryRowContext(ctx, query, matchID).Scan(
		&match.ID, &match.Teams, &match.Format, &match.URL,
		&match.ScheduledStart, &match.Status, &match.CreatedAt, &match.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("match not found: %s", matchID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying match: %w", err)
	}

	return match, nil
}

// GetAll returns every persisted match ordered by scheduled start
func (r *MatchRepository) GetAll(ctx context.Context) ([]*store.Match, error) {
	query := `
		SELECT id, teams, format, url, scheduled_start, status, created_at, updated_at
		FROM matches
		ORDER BY scheduled_start
	`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying matches: %w", err)
	}
	defer rows.Close()

	return r.scanMatches(rows)
}

// GetByStatus returns all matches in the given lifecycle state
func (r *MatchRepository) GetByStatus(ctx context.Context, status store.MatchStatus) ([]*store.Match, error) {
	query := `
		SELECT id, teams, format, url, scheduled_start, status, created_at, updated_at
		FROM matches
		WHERE status = $1
		ORDER BY scheduled_start
	`

	rows, err := r.db.DB().QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("querying matches by status: %w", err)
	}
	defer rows.Close()

	return r.scanMatches(rows)
}

// Upsert inserts or updates a match
func (r *MatchRepository) Upsert(ctx context.Context, match *store.Match) error {
	query := `
		INSERT INTO matches (id, teams, format, url, scheduled_start, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			teams = EXCLUDED.teams,
			format = EXCLUDED.format,
			url = EXCLUDED.url,
			scheduled_start = EXCLUDED.scheduled_start,
			status = EXCLUDED.status,
			updated_at = NOW()
	`

	_, err := r.db.DB().ExecContext(ctx, query,
		match.ID, match.Teams, match.Format, match.URL, match.ScheduledStart, match.Status,
	)
	if err != nil {
		return fmt.Errorf("upserting match: %w", err)
	}

	return nil
}

// ReplaceAll persists a full discovery result in one transaction.
// Matches absent from the list are left in place so history survives
// process restarts.
func (r *MatchRepository) ReplaceAll(ctx context.Context, matches []*store.Match) error {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning match list transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO matches (id, teams, format, url, scheduled_start, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			teams = EXCLUDED.teams,
			format = EXCLUDED.format,
			url = EXCLUDED.url,
			scheduled_start = EXCLUDED.scheduled_start,
			status = EXCLUDED.status,
			updated_at = NOW()
	`

	for _, match := range matches {
		if _, err := tx.ExecContext(ctx, query,
			match.ID, match.Teams, match.Format, match.URL, match.ScheduledStart, match.Status,
		); err != nil {
			return fmt.Errorf("upserting match %s: %w", match.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing match list: %w", err)
	}

	return nil
}

// UpdateStatus persists a lifecycle transition for one match
func (r *MatchRepository) UpdateStatus(ctx context.Context, matchID string, status store.MatchStatus) error {
	query := `
		UPDATE matches
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.DB().ExecContext(ctx, query, matchID, status)
	if err != nil {
		return fmt.Errorf("updating match status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating match status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("match not found: %s", matchID)
	}

	return nil
}

// CountByStatus returns match counts keyed by lifecycle state
func (r *MatchRepository) CountByStatus(ctx context.Context) (map[store.MatchStatus]int, error) {
	query := `SELECT status, COUNT(*) FROM matches GROUP BY status`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("counting matches: %w", err)
	}
	defer rows.Close()

	counts := make(map[store.MatchStatus]int)
	for rows.Next() {
		var status store.MatchStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scanning match count: %w", err)
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

// scanMatches scans multiple match rows
func (r *MatchRepository) scanMatches(rows *sql.Rows) ([]*store.Match, error) {
	var matches []*store.Match
	for rows.Next() {
		match := &store.Match{}
		err := rows.Scan(
			&match.ID, &match.Teams, &match.Format, &match.URL,
			&match.ScheduledStart, &match.Status, &match.CreatedAt, &match.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		matches = append(matches, match)
	}

	return matches, rows.Err()
}
