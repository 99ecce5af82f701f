package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

var (
	// ErrAlreadyInstantiated is returned by Create while a live handle exists.
	ErrAlreadyInstantiated = errors.New("a live store handle already exists")
	// ErrNotInstantiated is returned by GetExisting before any Create.
	ErrNotInstantiated = errors.New("no live store handle exists")
	// ErrClosed is returned by operations on a closed handle.
	ErrClosed = errors.New("store handle is closed")
	// ErrStoreUnavailable wraps connection and round-trip failures talking
	// to the backing store; callers may retry.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Config is the connection surface of the backing store, supplied once at
// handle creation.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

func (c Config) dsn() string {
	return fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%s sslmode=%s",
		c.User, c.Password, c.Database, c.Host, c.Port, c.SSLMode)
}

// Store is a live handle onto the backing relational store. At most one
// live handle exists per process; a closed handle cannot be revived.
type Store struct {
	db *sqlx.DB

	mu     sync.Mutex
	closed bool

	fetchUserByEmail    *sqlx.Stmt
	fetchUserByUsername *sqlx.Stmt
	deleteUserByEmail   *sqlx.Stmt
}

var (
	liveMu sync.Mutex
	live   *Store
)

// Create opens a connection, ensures the schema exists and registers the
// handle as the process-wide live instance. A second Create while one is
// live fails with ErrAlreadyInstantiated; it never hands back the
// existing handle.
func Create(ctx context.Context, cfg Config) (*Store, error) {
	liveMu.Lock()
	defer liveMu.Unlock()

	if live != nil {
		return nil, ErrAlreadyInstantiated
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := s.prepare(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	live = s
	return s, nil
}

// GetExisting returns the live handle. It never creates one.
func GetExisting() (*Store, error) {
	liveMu.Lock()
	defer liveMu.Unlock()
	if live == nil {
		return nil, ErrNotInstantiated
	}
	return live, nil
}

// Close releases the connection and clears the live slot so a fresh
// Create is possible. Closing an already-closed handle is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	liveMu.Lock()
	if live == s {
		live = nil
	}
	liveMu.Unlock()

	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) guard() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// migrate creates the two tables the service relies on. Creation is
// idempotent and runs exactly once per handle.
func (s *Store) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
            email TEXT PRIMARY KEY,
            username TEXT UNIQUE NOT NULL,
            password TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS private_messages (
            id TEXT NOT NULL,
            sender TEXT NOT NULL,
            receiver TEXT NOT NULL,
            message TEXT,
            media TEXT,
            time BIGINT NOT NULL
        );`,
	}

	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// prepare compiles the fixed lookup and delete statements shared by every
// later operation.
func (s *Store) prepare(ctx context.Context) error {
	var err error
	if s.fetchUserByEmail, err = s.db.PreparexContext(ctx,
		`SELECT email, username, password FROM users WHERE email=$1`); err != nil {
		return err
	}
	if s.fetchUserByUsername, err = s.db.PreparexContext(ctx,
		`SELECT email, username, password FROM users WHERE username=$1`); err != nil {
		return err
	}
	if s.deleteUserByEmail, err = s.db.PreparexContext(ctx,
		`DELETE FROM users WHERE email=$1`); err != nil {
		return err
	}
	return nil
}

func roundTripErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
