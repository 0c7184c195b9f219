package balsaerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapNilCauseReturnsNil(t *testing.T) {
	require.NoError(t, Wrap(KindResource, "read failed", nil))
}

func TestErrorMessageIncludesKindAndContext(t *testing.T) {
	err := Input("featureCount mismatch")
	require.EqualError(t, err, "InputError: featureCount mismatch")
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := Resource("writing tree block", cause)

	require.ErrorIs(t, err, cause)
	require.EqualError(t, err, "ResourceError: writing tree block: disk full")
}

func TestKindDiscrimination(t *testing.T) {
	err := Format("bad signature")

	var balsaErr *Error
	require.ErrorAs(t, err, &balsaErr)
	require.Equal(t, KindFormat, balsaErr.Kind)
}
