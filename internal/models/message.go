package models

import "errors"

var ErrInvalidMessage = errors.New("message must carry a body or media")

// MessageRecord is a direct message between two users. The id is supplied
// by the sender and is never regenerated by the store. Body and Media are
// nullable columns; a record is valid only when at least one is set.
type MessageRecord struct {
	ID       string  `db:"id" json:"id"`
	Sender   string  `db:"sender" json:"from"`
	Receiver string  `db:"receiver" json:"to"`
	Body     *string `db:"message" json:"message,omitempty"`
	Media    *string `db:"media" json:"media,omitempty"`
	Time     int64   `db:"time" json:"time"`
}

// Validate rejects records that could not be stored unambiguously.
func (m MessageRecord) Validate() error {
	if m.ID == "" {
		return errors.New("message id is required")
	}
	if m.Sender == "" || m.Receiver == "" {
		return errors.New("message sender and receiver are required")
	}
	if m.Body == nil && m.Media == nil {
		return ErrInvalidMessage
	}
	return nil
}
