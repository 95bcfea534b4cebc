package internal

import (
	"encoding/json"
	"fmt"
	"io"
)

const redacted = "********"

// Secret holds a credential value that must not leak through logs or
// default formatting. Reveal is the only way to read the plaintext.
type Secret struct {
	value string
}

// NewSecret wraps s.
func NewSecret(s string) Secret {
	return Secret{value: s}
}

// Reveal returns the plaintext value.
func (s Secret) Reveal() string {
	return s.value
}

// IsZero reports whether the secret is empty.
func (s Secret) IsZero() bool {
	return s.value == ""
}

// Equal compares two secrets without exposing either.
func (s Secret) Equal(other Secret) bool {
	return s.value == other.value
}

func (s Secret) mask() string {
	if s.value == "" {
		return ""
	}
	return redacted
}

func (s Secret) String() string {
	return s.mask()
}

func (s Secret) GoString() string {
	return fmt.Sprintf("internal.Secret{%q}", s.mask())
}

// Format covers every verb, including %x and %q, which would otherwise
// bypass String.
func (s Secret) Format(f fmt.State, verb rune) {
	switch verb {
	case 'v':
		if f.Flag('#') {
			io.WriteString(f, s.GoString())
			return
		}
		io.WriteString(f, s.mask())
	case 'q':
		fmt.Fprintf(f, "%q", s.mask())
	default:
		io.WriteString(f, s.mask())
	}
}

func (s Secret) MarshalText() ([]byte, error) {
	return []byte(s.mask()), nil
}

func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.mask())
}
