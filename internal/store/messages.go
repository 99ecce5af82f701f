package store

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"chat-server/internal/models"
)

// ErrNoMessages marks an empty history. It lets callers tell "no history"
// apart from both a failed query and a silently empty slice.
var ErrNoMessages = errors.New("no messages for this user")

// MessageStore is the message-facing slice of the data access layer.
type MessageStore interface {
	InsertMessage(ctx context.Context, record models.MessageRecord) error
	FetchMessagesByEmail(ctx context.Context, email string) ([]models.MessageRecord, error)
}

// InsertMessage persists one direct message. The statement carries only
// the columns the record actually has, so an absent body or media is a
// missing column rather than an ambiguous null placeholder.
func (s *Store) InsertMessage(ctx context.Context, record models.MessageRecord) error {
	if err := s.guard(); err != nil {
		return err
	}
	if err := record.Validate(); err != nil {
		return err
	}

	columns := []string{"id", "sender", "receiver", "time"}
	values := []any{record.ID, record.Sender, record.Receiver, record.Time}
	if record.Body != nil {
		columns = append(columns, "message")
		values = append(values, *record.Body)
	}
	if record.Media != nil {
		columns = append(columns, "media")
		values = append(values, *record.Media)
	}

	query, args, err := sq.Insert("private_messages").
		Columns(columns...).
		Values(values...).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return roundTripErr(err)
	}
	return nil
}

// FetchMessagesByEmail returns every message the given email sent or
// received, ascending by time. An empty match set yields ErrNoMessages.
func (s *Store) FetchMessagesByEmail(ctx context.Context, email string) ([]models.MessageRecord, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	query, args, err := sq.Select("id", "sender", "receiver", "message", "media", "time").
		From("private_messages").
		Where(sq.Or{sq.Eq{"sender": email}, sq.Eq{"receiver": email}}).
		OrderBy("time ASC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var messages []models.MessageRecord
	if err := s.db.SelectContext(ctx, &messages, query, args...); err != nil {
		return nil, roundTripErr(err)
	}
	if len(messages) == 0 {
		return nil, ErrNoMessages
	}
	return messages, nil
}
