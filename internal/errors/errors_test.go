package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("job %s not found", "42")
	assert.True(t, IsNotFound(err))
	assert.False(t, IsFetch(err))
	assert.Equal(t, "job 42 not found", err.Error())

	wrapped := Wrap(err, "load job")
	assert.True(t, IsNotFound(wrapped), "marks survive wrapping")
}

func TestWrapStorage(t *testing.T) {
	assert.NoError(t, WrapStorage(nil, "write"))

	err := WrapStorage(New("disk full"), "write applied ids")
	assert.True(t, Is(err, ErrStorage))
	assert.Contains(t, err.Error(), "disk full")
	assert.Contains(t, err.Error(), "write applied ids")
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{ErrFetch, ErrNotFound, ErrStorage, ErrValidation, ErrSubmission}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, Is(a, b), "%v should not match %v", a, b)
		}
	}
}
