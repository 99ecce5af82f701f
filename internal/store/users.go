package store

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"chat-server/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUser marks a unique-constraint violation on email or
	// username; it is a client problem, not an I/O failure.
	ErrDuplicateUser = errors.New("user already exists")
)

// UserStore is the user-facing slice of the data access layer.
type UserStore interface {
	InsertUser(ctx context.Context, creds models.UserCredentials) error
	DeleteUserByEmail(ctx context.Context, email string) error
	FetchUserByEmail(ctx context.Context, email string) (models.UserCredentials, error)
	FetchUserByUsername(ctx context.Context, username string) (models.UserCredentials, error)
	ListUsers(ctx context.Context) ([]models.PublicUser, error)
}

// InsertUser appends one row to users. Duplicate email or username
// surfaces as ErrDuplicateUser.
func (s *Store) InsertUser(ctx context.Context, creds models.UserCredentials) error {
	if err := s.guard(); err != nil {
		return err
	}

	query, args, err := sq.Insert("users").
		Columns("email", "username", "password").
		Values(creds.Email, creds.Username, creds.Password).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUser
		}
		return roundTripErr(err)
	}
	return nil
}

// DeleteUserByEmail removes zero or one rows; a missing user is not an
// error.
func (s *Store) DeleteUserByEmail(ctx context.Context, email string) error {
	if err := s.guard(); err != nil {
		return err
	}
	if _, err := s.deleteUserByEmail.ExecContext(ctx, email); err != nil {
		return roundTripErr(err)
	}
	return nil
}

// FetchUserByEmail returns the full credentials row, password included,
// for authentication comparison.
func (s *Store) FetchUserByEmail(ctx context.Context, email string) (models.UserCredentials, error) {
	if err := s.guard(); err != nil {
		return models.UserCredentials{}, err
	}

	var creds models.UserCredentials
	err := s.fetchUserByEmail.GetContext(ctx, &creds, email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserCredentials{}, ErrUserNotFound
	}
	if err != nil {
		return models.UserCredentials{}, roundTripErr(err)
	}
	return creds, nil
}

// FetchUserByUsername is the username-keyed variant of FetchUserByEmail.
func (s *Store) FetchUserByUsername(ctx context.Context, username string) (models.UserCredentials, error) {
	if err := s.guard(); err != nil {
		return models.UserCredentials{}, err
	}

	var creds models.UserCredentials
	err := s.fetchUserByUsername.GetContext(ctx, &creds, username)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserCredentials{}, ErrUserNotFound
	}
	if err != nil {
		return models.UserCredentials{}, roundTripErr(err)
	}
	return creds, nil
}

// ListUsers returns the public projection of every account. The result is
// an empty slice, never nil, when no users exist.
func (s *Store) ListUsers(ctx context.Context) ([]models.PublicUser, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	query, args, err := sq.Select("email", "username").
		From("users").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	users := make([]models.PublicUser, 0)
	if err := s.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, roundTripErr(err)
	}
	return users, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
