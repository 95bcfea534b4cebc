package internal

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := notFound("dev")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrInvalidProfile)

	wrapped := errors.Wrap(err, "loading")
	assert.ErrorIs(t, wrapped, ErrNotFound)
	assert.Equal(t, KindNotFound, KindOf(wrapped))

	assert.Equal(t, Kind(0), KindOf(fmt.Errorf("plain")))
	assert.Equal(t, Kind(0), KindOf(nil))
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{notFound("dev"), `profile "dev" not found`},
		{invalidProfile("dev", "secretAccessKey"), `invalid profile "dev": secretAccessKey is missing or invalid`},
		{malformedCredentials("accessKeyId"), "malformed credentials: accessKeyId is missing or invalid"},
		{&Error{Kind: KindAuthRejected, Code: "ExpiredToken"}, "credentials rejected by provider (ExpiredToken)"},
		{&Error{Kind: KindNetworkFailure}, "identity endpoint unreachable"},
		{storeUnavailable(errors.New("boom")), "credentials store unavailable: boom"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := storeUnavailable(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "StoreUnavailable", KindStoreUnavailable.String())
	assert.Equal(t, "Kind(42)", Kind(42).String())
}
