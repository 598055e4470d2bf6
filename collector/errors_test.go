package collector

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbeErrorKinds(t *testing.T) {
	cause := errors.New("permission denied")

	err := queryFailed("memory", cause)
	assert.ErrorIs(t, err, ErrQuery)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, "memory: query failed: permission denied", err.Error())

	assert.ErrorIs(t, notInstalled("nvml"), ErrNotInstalled)
	assert.Equal(t, "nvml: not installed", notInstalled("nvml").Error())
	assert.ErrorIs(t, unavailable("cpu_thermal", nil), ErrUnavailable)
}

func TestKindOf(t *testing.T) {
	assert.Nil(t, KindOf(nil))
	assert.Equal(t, ErrNotInstalled, KindOf(notInstalled("x")))
	assert.Equal(t, ErrUnavailable, KindOf(fmt.Errorf("wrapped: %w", unavailable("x", nil))))
	assert.Equal(t, ErrQuery, KindOf(queryFailed("x", nil)))
	assert.Equal(t, ErrQuery, KindOf(errors.New("raw")))
}
