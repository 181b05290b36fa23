package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFailure_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := fail("upsert", cause)

	var f *Failure
	assert.True(t, errors.As(err, &f))
	assert.Equal(t, "upsert", f.Op)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "upsert")
	assert.Contains(t, err.Error(), "boom")
}

func TestFail_NilCauseReturnsNil(t *testing.T) {
	assert.NoError(t, fail("upsert", nil))
}

func TestErrNotFound_IsDistinctFromFailure(t *testing.T) {
	var f *Failure
	assert.False(t, errors.As(ErrNotFound, &f))
}
