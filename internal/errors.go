package internal

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a failure returned by the store, the verifier or the
// service.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindInvalidProfile
	KindStoreUnavailable
	KindMalformedCredentials
	KindAuthRejected
	KindNetworkFailure
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindInvalidProfile:
		return "InvalidProfile"
	case KindStoreUnavailable:
		return "StoreUnavailable"
	case KindMalformedCredentials:
		return "MalformedCredentials"
	case KindAuthRejected:
		return "AuthRejected"
	case KindNetworkFailure:
		return "NetworkFailure"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a classified failure. Profile, Field and Code carry enough detail
// for a caller to render a message; Err is the underlying cause, if any.
type Error struct {
	Kind    Kind
	Profile string
	Field   string
	Code    string
	Err     error
}

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrInvalidProfile       = &Error{Kind: KindInvalidProfile}
	ErrStoreUnavailable     = &Error{Kind: KindStoreUnavailable}
	ErrMalformedCredentials = &Error{Kind: KindMalformedCredentials}
	ErrAuthRejected         = &Error{Kind: KindAuthRejected}
	ErrNetworkFailure       = &Error{Kind: KindNetworkFailure}
)

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindNotFound:
		msg = fmt.Sprintf("profile %q not found", e.Profile)
	case KindInvalidProfile:
		msg = fmt.Sprintf("invalid profile %q: %s", e.Profile, fieldMessage(e.Field))
	case KindStoreUnavailable:
		msg = "credentials store unavailable"
	case KindMalformedCredentials:
		msg = fmt.Sprintf("malformed credentials: %s", fieldMessage(e.Field))
	case KindAuthRejected:
		msg = "credentials rejected by provider"
		if e.Code != "" {
			msg += " (" + e.Code + ")"
		}
	case KindNetworkFailure:
		msg = "identity endpoint unreachable"
	default:
		msg = e.Kind.String()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func fieldMessage(field string) string {
	if field == "" {
		return "invalid value"
	}
	return field + " is missing or invalid"
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind only, so errors.Is(err, ErrNotFound) works for every
// NotFound regardless of profile.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func notFound(name string) error {
	return &Error{Kind: KindNotFound, Profile: name}
}

func invalidProfile(name, field string) error {
	return &Error{Kind: KindInvalidProfile, Profile: name, Field: field}
}

func storeUnavailable(err error) error {
	return &Error{Kind: KindStoreUnavailable, Err: err}
}

func malformedCredentials(field string) error {
	return &Error{Kind: KindMalformedCredentials, Field: field}
}
