// Package store keeps saved rounds in named slots of a sqlite table.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/mattn/go-sqlite3"
)

var (
	ErrBadName   = errors.New("bad name for store")
	ErrNotFound  = errors.New("slot not found")
	ErrSlotTaken = errors.New("slot taken")
)

type Store struct {
	mu   sync.Mutex
	name string
	db   *sql.DB
}

func isLetter(c rune) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isLetters(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if !isLetter(c) {
			return false
		}
	}
	return true
}

// New creates the slot table if needed. name is spliced into SQL, so it may
// only contain Latin letters.
func New(ctx context.Context, db *sql.DB, name string) (*Store, error) {
	if !isLetters(name) {
		return nil, fmt.Errorf("%w: %q", ErrBadName, name)
	}
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS `+name+` (
	slot		TEXT PRIMARY KEY,
	data		BLOB NOT NULL,
	updated_at	TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`)
	if err != nil {
		return nil, fmt.Errorf("unable to create table %s: %w", name, err)
	}
	return &Store{name: name, db: db}, nil
}

// Open opens the sqlite database at path and returns a store over its
// table called name. Closing the store closes the database.
func Open(ctx context.Context, path, name string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite db: %w", err)
	}
	s, err := New(ctx, db, name)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the bytes saved under slot, or [ErrNotFound].
func (s *Store) Get(ctx context.Context, slot string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM `+s.name+` WHERE slot = ?;`, slot,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return data, err
}

// Put saves data under slot, replacing whatever was there.
func (s *Store) Put(ctx context.Context, slot string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
INSERT INTO `+s.name+` (slot, data)
VALUES (?, ?)
ON CONFLICT(slot)
DO UPDATE SET data=excluded.data, updated_at=CURRENT_TIMESTAMP;`,
		slot, data)
	return err
}

// Create saves data under slot only if the slot is empty, otherwise it
// returns [ErrSlotTaken].
func (s *Store) Create(ctx context.Context, slot string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO `+s.name+` (slot, data) VALUES (?, ?);`, slot, data,
	)
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return ErrSlotTaken
	}
	return err
}

// Delete removes slot without checking that it existed.
func (s *Store) Delete(ctx context.Context, slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM `+s.name+` WHERE slot = ?;`, slot)
	return err
}

func (s *Store) Count(ctx context.Context) (count int, err error) {
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+s.name+`;`).Scan(&count)
	return
}

// Slots lists slot names in order.
func (s *Store) Slots(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT slot FROM `+s.name+` ORDER BY slot;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]string, 0)
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}
