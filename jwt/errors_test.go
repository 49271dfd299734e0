package jwt

import (
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	for k := KindUnknown; k <= KindUnknownKeyID; k++ {
		assert.NotContains(t, k.String(), "kind(")
	}
	assert.Equal(t, "kind(100)", Kind(100).String())
	assert.Equal(t, "token_expired", KindTokenExpired.String())
}

func TestError(t *testing.T) {
	err := claimError(KindTokenExpired, "invalid token: expired", "exp", 10, 11)
	assert.EqualError(t, err, "invalid token: expired: exp boundary=10 now=11")
	assert.True(t, errors.Is(err, ErrTokenExpired))
	assert.False(t, errors.Is(err, ErrTokenNotYetValid))
	assert.Equal(t, KindTokenExpired, KindOf(err))

	wrapped := errors.WithMessage(err, "decode")
	assert.True(t, errors.Is(wrapped, ErrTokenExpired))
	assert.Equal(t, KindTokenExpired, KindOf(wrapped))
	assert.Equal(t, KindTokenExpired, KindOf(fmt.Errorf("ctx: %w", err)))

	cause := errors.New("bad input")
	err = wrapError(KindJSONError, cause, "JSON failed")
	assert.EqualError(t, err, "JSON failed: bad input")
	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrJSON))

	// claim context is printed for time errors only
	err = newError(KindUnknownKeyID, "invalid token: unknown key ID")
	err.Claim = "kid"
	assert.EqualError(t, err, "invalid token: unknown key ID")

	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, KindUnknown, KindOf(errors.New("x")))
}
