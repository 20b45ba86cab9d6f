// Package store persists the user's followed shows and their cached
// catalog snapshots in sqlite. Every write to a single record is atomic;
// batch writes go through one transaction.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/airtrack/internal/lifecycle"
	"github.com/airtrack/internal/model"
)

// ErrNotFound is returned when a show id is not in the followed list.
var ErrNotFound = errors.New("store: followed show not found")

const schema = `
CREATE TABLE IF NOT EXISTS followed_shows (
	id                INTEGER PRIMARY KEY,
	name              TEXT NOT NULL,
	state             TEXT NOT NULL,
	followed_at       INTEGER NOT NULL,
	last_refreshed_at INTEGER,
	snapshot          TEXT NOT NULL
);
`

// Record is one followed show: identity, follow/refresh timestamps, the
// last derived lifecycle tag and the cached catalog snapshot.
type Record struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	State           lifecycle.State `json:"state"`
	FollowedAt      time.Time       `json:"followedAt"`
	LastRefreshedAt *time.Time      `json:"lastRefreshedAt,omitempty"`
	Show            model.Show      `json:"show"`
}

// NeedsRefresh reports whether the cached snapshot is stale: never
// refreshed, or older than maxAge.
func (r Record) NeedsRefresh(now time.Time, maxAge time.Duration) bool {
	return r.LastRefreshedAt == nil || now.Sub(*r.LastRefreshedAt) > maxAge
}

// Update is one pending mutation for ApplyUpdates. A nil Show means a
// state-tag-only update; otherwise the snapshot is replaced too.
type Update struct {
	ID          int64
	State       lifecycle.State
	Show        *model.Show
	RefreshedAt *time.Time
}

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the sqlite database at path.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	// A single writer keeps per-record updates atomic without busy retries.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

func dsn(path string) string {
	if path == ":memory:" {
		return ":memory:"
	}
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ListFollowed returns every followed show, newest follow first.
func (s *Store) ListFollowed(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, state, followed_at, last_refreshed_at, snapshot
		FROM followed_shows
		ORDER BY followed_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list followed: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// GetFollowed returns one followed show, or ErrNotFound.
func (s *Store) GetFollowed(ctx context.Context, id int64) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, state, followed_at, last_refreshed_at, snapshot
		FROM followed_shows WHERE id = ?
	`, id)

	rec, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// IsFollowing reports whether the show id is in the followed list.
func (s *Store) IsFollowing(ctx context.Context, id int64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM followed_shows WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("is following: %w", err)
	}
	return n > 0, nil
}

// Follow inserts a new followed show with its initial snapshot, or refreshes
// the snapshot if the show is already followed (keeping the original
// followed-at time).
func (s *Store) Follow(ctx context.Context, show *model.Show, state lifecycle.State, now time.Time) (*Record, error) {
	snapshot, err := json.Marshal(show)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO followed_shows (id, name, state, followed_at, last_refreshed_at, snapshot)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			state=excluded.state,
			last_refreshed_at=excluded.last_refreshed_at,
			snapshot=excluded.snapshot
	`, show.ID, show.Name, state.String(), now.Unix(), now.Unix(), string(snapshot))
	if err != nil {
		return nil, fmt.Errorf("follow: %w", err)
	}

	return s.GetFollowed(ctx, show.ID)
}

// Unfollow deletes a followed show. ErrNotFound when it wasn't followed.
func (s *Store) Unfollow(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM followed_shows WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("unfollow: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceCachedSnapshot atomically replaces one show's snapshot, state tag
// and refresh timestamp.
func (s *Store) ReplaceCachedSnapshot(ctx context.Context, id int64, show *model.Show, state lifecycle.State, at time.Time) error {
	snapshot, err := json.Marshal(show)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE followed_shows
		SET name = ?, state = ?, last_refreshed_at = ?, snapshot = ?
		WHERE id = ?
	`, show.Name, state.String(), at.Unix(), string(snapshot), id)
	if err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyUpdates persists a batch of mutations in a single transaction. Each
// record is either fully updated or untouched; a record deleted mid-pass is
// skipped, not an error.
func (s *Store) ApplyUpdates(ctx context.Context, updates []Update) (err error) {
	if len(updates) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, u := range updates {
		if u.Show == nil {
			if _, err = tx.ExecContext(ctx,
				`UPDATE followed_shows SET state = ? WHERE id = ?`,
				u.State.String(), u.ID); err != nil {
				return fmt.Errorf("batch state update id=%d: %w", u.ID, err)
			}
			continue
		}

		var snapshot []byte
		snapshot, err = json.Marshal(u.Show)
		if err != nil {
			return fmt.Errorf("encode snapshot id=%d: %w", u.ID, err)
		}

		var refreshedAt sql.NullInt64
		if u.RefreshedAt != nil {
			refreshedAt = sql.NullInt64{Int64: u.RefreshedAt.Unix(), Valid: true}
		}

		if _, err = tx.ExecContext(ctx, `
			UPDATE followed_shows
			SET name = ?, state = ?, last_refreshed_at = COALESCE(?, last_refreshed_at), snapshot = ?
			WHERE id = ?
		`, u.Show.Name, u.State.String(), refreshedAt, string(snapshot), u.ID); err != nil {
			return fmt.Errorf("batch snapshot update id=%d: %w", u.ID, err)
		}
	}

	return tx.Commit()
}

func scanRecord(scan func(dest ...any) error) (*Record, error) {
	var (
		rec         Record
		state       string
		followedAt  int64
		refreshedAt sql.NullInt64
		snapshot    string
	)
	if err := scan(&rec.ID, &rec.Name, &state, &followedAt, &refreshedAt, &snapshot); err != nil {
		return nil, err
	}

	rec.State = lifecycle.ParseState(state)
	rec.FollowedAt = time.Unix(followedAt, 0)
	if refreshedAt.Valid {
		t := time.Unix(refreshedAt.Int64, 0)
		rec.LastRefreshedAt = &t
	}
	if err := json.Unmarshal([]byte(snapshot), &rec.Show); err != nil {
		return nil, fmt.Errorf("decode snapshot id=%d: %w", rec.ID, err)
	}
	return &rec, nil
}
