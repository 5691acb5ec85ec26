package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRetryable(t *testing.T) {
	require.True(t, Dependency("down", nil).Retryable())
	require.True(t, Internal("oops", nil).Retryable())
	require.False(t, Validation("bad").Retryable())
	require.False(t, NotFound("missing").Retryable())
	require.False(t, Conflict("clash").Retryable())
	require.False(t, Policy("no").Retryable())
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	e := Internal("wrapped", cause)
	require.ErrorIs(t, e, cause)
}

func TestKindOf(t *testing.T) {
	require.Equal(t, KindValidation, KindOf(Validation("x")))
	require.Equal(t, KindInternal, KindOf(errors.New("plain")))
}
