package dispatch

import (
	"context"
	"errors"
	"fmt"

	"chat-server/internal/models"
	"chat-server/internal/request"
	"chat-server/internal/store"
)

var (
	// ErrAuthenticationFailed covers both an unknown identity and a wrong
	// password; the two are deliberately indistinguishable so the outcome
	// never reveals whether an account exists.
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrUserExists           = errors.New("user already exists")
)

// Dispatcher routes decoded requests onto the data access layer.
type Dispatcher struct {
	users    store.UserStore
	messages store.MessageStore
}

// New constructs a Dispatcher over the given store slices.
func New(users store.UserStore, messages store.MessageStore) *Dispatcher {
	return &Dispatcher{users: users, messages: messages}
}

// Dispatch resolves a session-bootstrap request into an authenticated or
// registered identity.
func (d *Dispatcher) Dispatch(ctx context.Context, req request.Request) (models.PublicUser, error) {
	switch req.Kind {
	case request.KindLogin:
		return d.Login(ctx, req.Details)
	case request.KindRegistration:
		return d.Register(ctx, req.Details)
	default:
		return models.PublicUser{}, fmt.Errorf("%w: unsupported first request %q", request.ErrDecode, req.Kind)
	}
}

// Login authenticates by whichever identity field the caller supplied,
// email taking precedence over username.
func (d *Dispatcher) Login(ctx context.Context, creds models.UserCredentials) (models.PublicUser, error) {
	if creds.Password == "" || (creds.Email == "" && creds.Username == "") {
		return models.PublicUser{}, ErrAuthenticationFailed
	}

	var (
		known models.UserCredentials
		err   error
	)
	if creds.Email != "" {
		known, err = d.users.FetchUserByEmail(ctx, creds.Email)
	} else {
		known, err = d.users.FetchUserByUsername(ctx, creds.Username)
	}
	if errors.Is(err, store.ErrUserNotFound) {
		return models.PublicUser{}, ErrAuthenticationFailed
	}
	if err != nil {
		return models.PublicUser{}, err
	}

	if known.Password != creds.Password {
		return models.PublicUser{}, ErrAuthenticationFailed
	}
	return known.Public(), nil
}

// Register creates a new account. Email and username are both checked for
// uniqueness before the insert so a duplicate never reaches the store;
// the insert-level duplicate error covers the remaining race.
func (d *Dispatcher) Register(ctx context.Context, creds models.UserCredentials) (models.PublicUser, error) {
	if !creds.Complete() {
		return models.PublicUser{}, request.ErrMissingFields
	}

	if _, err := d.users.FetchUserByEmail(ctx, creds.Email); err == nil {
		return models.PublicUser{}, ErrUserExists
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return models.PublicUser{}, err
	}
	if _, err := d.users.FetchUserByUsername(ctx, creds.Username); err == nil {
		return models.PublicUser{}, ErrUserExists
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return models.PublicUser{}, err
	}

	if err := d.users.InsertUser(ctx, creds); err != nil {
		if errors.Is(err, store.ErrDuplicateUser) {
			return models.PublicUser{}, ErrUserExists
		}
		return models.PublicUser{}, err
	}
	return creds.Public(), nil
}

// SendMessage validates the record and persists it exactly once. An
// invalid record is rejected before any store write.
func (d *Dispatcher) SendMessage(ctx context.Context, record models.MessageRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}
	return d.messages.InsertMessage(ctx, record)
}

// History returns the full direct-message history for an email, sender or
// receiver side. store.ErrNoMessages passes through unchanged.
func (d *Dispatcher) History(ctx context.Context, email string) ([]models.MessageRecord, error) {
	return d.messages.FetchMessagesByEmail(ctx, email)
}

// Users lists the public projection of every account.
func (d *Dispatcher) Users(ctx context.Context) ([]models.PublicUser, error) {
	return d.users.ListUsers(ctx)
}

// RemoveUser deletes an account by email. Deleting a missing account is a
// no-op.
func (d *Dispatcher) RemoveUser(ctx context.Context, email string) error {
	return d.users.DeleteUserByEmail(ctx, email)
}
