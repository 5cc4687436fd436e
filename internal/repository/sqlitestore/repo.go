package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/oklog/ulid/v2"

	"github.com/kailas-cloud/playmatch/internal/db"
	"github.com/kailas-cloud/playmatch/internal/domain"
	"github.com/kailas-cloud/playmatch/internal/domain/match"
)

// GetContextByHash returns (nil, nil) when no context exists.
func (s *Store) GetContextByHash(ctx context.Context, hash, accountID string) (*match.Context, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, account_id, context_hash, song_set_hash, playlist_set_hash, config_hash,
		        model_version, weights, song_count, playlist_count, created_at
		   FROM match_contexts
		  WHERE account_id = ? AND context_hash = ?`,
		accountID, hash,
	)

	var (
		c         match.Context
		weights   string
		createdAt string
	)
	err := row.Scan(&c.ID, &c.AccountID, &c.ContextHash, &c.SongSetHash, &c.PlaylistSetHash,
		&c.ConfigHash, &c.ModelVersion, &weights, &c.SongCount, &c.PlaylistCount, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // absence is not an error for the cache
	}
	if err != nil {
		return nil, fmt.Errorf("get context: %w", &db.Error{Op: db.OpQuery, Err: err})
	}

	if err := json.Unmarshal([]byte(weights), &c.Weights); err != nil {
		return nil, fmt.Errorf("decode weights: %w: %w", domain.ErrStorage, err)
	}
	if c.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w: %w", domain.ErrStorage, err)
	}
	return &c, nil
}

// CreateContext assigns a ULID and inserts c. The (account, hash) UNIQUE constraint reports duplicates.
func (s *Store) CreateContext(ctx context.Context, c match.Context) (match.Context, error) {
	c.ID = ulid.Make().String()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now().UTC()
	}

	weights, err := json.Marshal(c.Weights)
	if err != nil {
		return match.Context{}, fmt.Errorf("encode weights: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO match_contexts (
			id, account_id, context_hash, song_set_hash, playlist_set_hash, config_hash,
			model_version, weights, song_count, playlist_count, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.AccountID, c.ContextHash, c.SongSetHash, c.PlaylistSetHash, c.ConfigHash,
		c.ModelVersion, string(weights), c.SongCount, c.PlaylistCount, c.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return match.Context{}, fmt.Errorf("context %s for %s: %w", c.ContextHash, c.AccountID, domain.ErrConflict)
		}
		return match.Context{}, fmt.Errorf("create context: %w", &db.Error{Op: db.OpExec, Err: err})
	}
	return c, nil
}

// GetResultsForSongs returns persisted rows keyed by song ID, each song's rows in rank order.
func (s *Store) GetResultsForSongs(
	ctx context.Context, contextID string, songIDs []string,
) (map[string][]match.Result, error) {
	out := make(map[string][]match.Result, len(songIDs))
	if len(songIDs) == 0 {
		return out, nil
	}

	args := make([]any, 0, len(songIDs)+1)
	args = append(args, contextID)
	for _, id := range songIDs {
		args = append(args, id)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(songIDs)), ",")

	rows, err := s.db.QueryContext(ctx,
		`SELECT song_id, playlist_id, score, rank, factors, confidence
		   FROM match_results
		  WHERE context_id = ? AND song_id IN (`+placeholders+`)
		  ORDER BY song_id, rank`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("get results: %w", &db.Error{Op: db.OpQuery, Err: err})
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r       match.Result
			factors string
		)
		if err := rows.Scan(&r.SongID, &r.PlaylistID, &r.Score, &r.Rank, &factors, &r.Confidence); err != nil {
			return nil, fmt.Errorf("scan result: %w", &db.Error{Op: db.OpQuery, Err: err})
		}
		if err := json.Unmarshal([]byte(factors), &r.Factors); err != nil {
			return nil, fmt.Errorf("decode factors: %w: %w", domain.ErrStorage, err)
		}
		out[r.SongID] = append(out[r.SongID], r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", &db.Error{Op: db.OpQuery, Err: err})
	}
	return out, nil
}

// InsertResults writes all rows in one transaction. A duplicate row rolls the whole set back.
func (s *Store) InsertResults(ctx context.Context, contextID string, results []match.Result) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", &db.Error{Op: db.OpExec, Err: err})
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO match_results (context_id, song_id, playlist_id, score, rank, factors, confidence)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", &db.Error{Op: db.OpExec, Err: err})
	}
	defer stmt.Close()

	for _, r := range results {
		factors, err := json.Marshal(r.Factors)
		if err != nil {
			return fmt.Errorf("encode factors: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			contextID, r.SongID, r.PlaylistID, r.Score, r.Rank, string(factors), r.Confidence,
		); err != nil {
			if isConstraintViolation(err) {
				return fmt.Errorf("results for context %s: %w", contextID, domain.ErrConflict)
			}
			return fmt.Errorf("insert result: %w", &db.Error{Op: db.OpExec, Err: err})
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", &db.Error{Op: db.OpExec, Err: err})
	}
	return nil
}
