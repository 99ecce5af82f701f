package request

import (
	"errors"
	"fmt"
	"strings"

	"chat-server/internal/models"
)

// Kind discriminates the session-bootstrap request union.
type Kind string

const (
	KindLogin        Kind = "login"
	KindRegistration Kind = "registration"
)

var (
	// ErrDecode marks a malformed envelope: missing or null keys, or an
	// unsupported request kind.
	ErrDecode = errors.New("invalid request payload")
	// ErrMissingFields marks a registration whose details are incomplete.
	ErrMissingFields = errors.New("invalid registration request")
)

// Request is a decoded, validated session-bootstrap request.
type Request struct {
	Kind    Kind
	Details models.UserCredentials
}

// Decode turns the raw envelope {"request": ..., "details": {...}} into a
// Request. Login details are decoded permissively (partial identity is
// resolved at dispatch time); registration requires email, username and
// password to all be present.
func Decode(payload map[string]any) (Request, error) {
	kindVal, ok := payload["request"]
	if !ok || kindVal == nil {
		return Request{}, fmt.Errorf("%w: key 'request' is not present or is null", ErrDecode)
	}
	kindStr, ok := kindVal.(string)
	if !ok || kindStr == "" {
		return Request{}, fmt.Errorf("%w: key 'request' is not a string", ErrDecode)
	}

	detailsVal, ok := payload["details"]
	if !ok || detailsVal == nil {
		return Request{}, fmt.Errorf("%w: key 'details' is not present or is null", ErrDecode)
	}
	detailsMap, ok := detailsVal.(map[string]any)
	if !ok {
		return Request{}, fmt.Errorf("%w: key 'details' is not an object", ErrDecode)
	}

	details := decodeCredentials(detailsMap)

	switch Kind(kindStr) {
	case KindLogin:
		return Request{Kind: KindLogin, Details: details}, nil
	case KindRegistration:
		if missing := missingRegistrationFields(details); len(missing) > 0 {
			return Request{}, fmt.Errorf("%w: %s should be present", ErrMissingFields, strings.Join(missing, ", "))
		}
		return Request{Kind: KindRegistration, Details: details}, nil
	default:
		return Request{}, fmt.Errorf("%w: unsupported first request %q", ErrDecode, kindStr)
	}
}

func decodeCredentials(m map[string]any) models.UserCredentials {
	return models.UserCredentials{
		Email:    stringField(m, "email"),
		Username: stringField(m, "username"),
		Password: stringField(m, "password"),
	}
}

func missingRegistrationFields(c models.UserCredentials) []string {
	var missing []string
	if c.Email == "" {
		missing = append(missing, "email")
	}
	if c.Username == "" {
		missing = append(missing, "username")
	}
	if c.Password == "" {
		missing = append(missing, "password")
	}
	return missing
}

func stringField(m map[string]any, key string) string {
	if val, ok := m[key]; ok {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return ""
}
