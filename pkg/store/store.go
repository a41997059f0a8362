// Package store manages SQLite persistence for commit graphs and branches.
//
// Commits are append-only rows keyed by a node id. The node id is not the
// revision: after a rebase the same revision lives on in several nodes with
// different parents, and each of them is stored once. Branches are named
// pointers to a head node and are the only rows that are ever updated.
//
// The Store itself is untyped and deals in encoded payloads. Graph[T] sits on
// top of it and rebuilds typed, pointer-linked commits.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang/glog"

	"github.com/daviddao/rebasekit/pkg/model"
	"github.com/daviddao/rebasekit/pkg/revision"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a commit or branch does not exist. It wraps
// sql.ErrNoRows.
var ErrNotFound = fmt.Errorf("store: not found: %w", sql.ErrNoRows)

// CommitRecord is one stored commit node.
type CommitRecord struct {
	ID        string          `json:"id"`
	Revision  revision.Tag    `json:"revision"`
	SessionID model.SessionID `json:"session_id"`
	// ParentID is empty for a root.
	ParentID  string    `json:"parent_id,omitempty"`
	Payload   []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// BranchRecord is a named head pointer.
type BranchRecord struct {
	Name      string    `json:"name"`
	HeadID    string    `json:"head_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store manages all SQLite operations with WAL mode for concurrent access.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database and initializes the schema.
func New(path string) (*Store, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(60000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	glog.V(1).Infof("[store] opened %s\n", path)
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// retryOnContention wraps retryOp from retry.go with the default config.
// All store write operations should use this to handle transient SQLite
// errors (BUSY, LOCKED, IOERR_SHORT_READ) under concurrent access.
func retryOnContention(fn func() error) error {
	return retryOp(defaultRetryConfig, fn)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS commits (
		id         TEXT PRIMARY KEY,
		revision   TEXT NOT NULL,
		session_id TEXT NOT NULL DEFAULT '',
		parent_id  TEXT REFERENCES commits(id),
		change     BLOB NOT NULL,
		checksum   TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_commits_revision ON commits(revision);
	CREATE INDEX IF NOT EXISTS idx_commits_parent ON commits(parent_id);

	CREATE TABLE IF NOT EXISTS branches (
		name       TEXT PRIMARY KEY,
		head_id    TEXT NOT NULL REFERENCES commits(id),
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ---------------------------------------------------------------------------
// Commits
// ---------------------------------------------------------------------------

// PutCommit stores rec. Commits are immutable, so storing an id that already
// exists is a no-op. The parent must already be stored.
func (s *Store) PutCommit(rec *CommitRecord) error {
	if rec.ID == "" {
		return errors.New("store: commit id is empty")
	}
	blob, sum, err := encodePayload(rec.Payload)
	if err != nil {
		return fmt.Errorf("encode commit %s: %w", rec.ID, err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	var parent any
	if rec.ParentID != "" {
		parent = rec.ParentID
	}
	return retryOnContention(func() error {
		_, err := s.db.Exec(
			`INSERT INTO commits (id, revision, session_id, parent_id, change, checksum, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO NOTHING`,
			rec.ID, rec.Revision.String(), string(rec.SessionID), parent, blob, sum,
			rec.CreatedAt.Format(time.RFC3339Nano),
		)
		return err
	})
}

// GetCommit retrieves a commit by node id and verifies its payload.
func (s *Store) GetCommit(id string) (*CommitRecord, error) {
	row := s.db.QueryRow(
		`SELECT id, revision, session_id, COALESCE(parent_id,''), change, checksum, created_at
		 FROM commits WHERE id = ?`, id,
	)
	rec, err := scanCommit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("commit %s: %w", id, ErrNotFound)
	}
	return rec, err
}

// ListCommitsByRevision returns every node carrying rev, oldest first.
func (s *Store) ListCommitsByRevision(rev revision.Tag) ([]CommitRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, revision, session_id, COALESCE(parent_id,''), change, checksum, created_at
		 FROM commits WHERE revision = ? ORDER BY rowid ASC`,
		rev.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CommitRecord
	for rows.Next() {
		rec, err := scanCommit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// CountCommits returns the total number of stored commit nodes.
func (s *Store) CountCommits() (int64, error) {
	var count int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM commits`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count commits: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCommit(row rowScanner) (*CommitRecord, error) {
	var rec CommitRecord
	var revStr, session, createdStr, sum string
	var blob []byte
	if err := row.Scan(&rec.ID, &revStr, &session, &rec.ParentID, &blob, &sum, &createdStr); err != nil {
		return nil, err
	}
	if err := rec.Revision.UnmarshalText([]byte(revStr)); err != nil {
		return nil, fmt.Errorf("parse revision for commit %s: %w", rec.ID, err)
	}
	rec.SessionID = model.SessionID(session)
	var err error
	rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdStr)
	if err != nil {
		return nil, fmt.Errorf("parse created_at for commit %s: %w", rec.ID, err)
	}
	rec.Payload, err = decodePayload(blob, sum)
	if err != nil {
		return nil, fmt.Errorf("commit %s: %w", rec.ID, err)
	}
	return &rec, nil
}

// ---------------------------------------------------------------------------
// Branches
// ---------------------------------------------------------------------------

// SetBranch creates or moves a branch to headID.
func (s *Store) SetBranch(name, headID string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return retryOnContention(func() error {
		_, err := s.db.Exec(
			`INSERT INTO branches (name, head_id, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(name) DO UPDATE SET head_id = excluded.head_id, updated_at = excluded.updated_at`,
			name, headID, now,
		)
		return err
	})
}

// GetBranch retrieves a branch by name.
func (s *Store) GetBranch(name string) (*BranchRecord, error) {
	var b BranchRecord
	var updated string
	err := s.db.QueryRow(
		`SELECT name, head_id, updated_at FROM branches WHERE name = ?`, name,
	).Scan(&b.Name, &b.HeadID, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("branch %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at for branch %s: %w", name, err)
	}
	return &b, nil
}

// ListBranches returns all branches ordered by name.
func (s *Store) ListBranches() ([]BranchRecord, error) {
	rows, err := s.db.Query(`SELECT name, head_id, updated_at FROM branches ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BranchRecord
	for rows.Next() {
		var b BranchRecord
		var updated string
		if err := rows.Scan(&b.Name, &b.HeadID, &updated); err != nil {
			return nil, err
		}
		b.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated)
		if err != nil {
			return nil, fmt.Errorf("parse updated_at for branch %s: %w", b.Name, err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// DeleteBranch removes a branch. Its commits stay in place.
func (s *Store) DeleteBranch(name string) error {
	var n int64
	err := retryOnContention(func() error {
		res, err := s.db.Exec(`DELETE FROM branches WHERE name = ?`, name)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("branch %s: %w", name, ErrNotFound)
	}
	return nil
}
