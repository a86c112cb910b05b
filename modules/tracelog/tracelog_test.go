package tracelog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorfReturnsFormattedError(t *testing.T) {
	err := Errorf("object %s missing", "deadbeef")
	require.EqualError(t, err, "object deadbeef missing")
}

func TestInternalPassesThroughError(t *testing.T) {
	cause := errors.New("boom")
	require.Same(t, cause, Internal(cause))
	require.Nil(t, Internal(nil))
}
