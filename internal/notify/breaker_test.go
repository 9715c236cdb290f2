package notify

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_OpensAndRecovers(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(2, time.Minute, nil)
	cb.now = func() time.Time { return now }

	boom := errors.New("broker down")
	fail := func() error { return boom }
	ok := func() error { return nil }

	require.ErrorIs(t, cb.Execute("add", fail), boom)
	require.Equal(t, CircuitClosed, cb.State())
	require.ErrorIs(t, cb.Execute("add", fail), boom)
	require.Equal(t, CircuitOpen, cb.State())

	calls := 0
	err := cb.Execute("add", func() error { calls++; return nil })
	require.ErrorIs(t, err, ErrCircuitOpen)
	require.Zero(t, calls)

	now = now.Add(2 * time.Minute)
	require.Equal(t, CircuitHalfOpen, cb.State())

	// Неудачная проба снова размыкает.
	require.ErrorIs(t, cb.Execute("add", fail), boom)
	require.Equal(t, CircuitOpen, cb.State())

	now = now.Add(2 * time.Minute)
	require.NoError(t, cb.Execute("add", ok))
	require.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Minute, nil)
	boom := errors.New("boom")

	require.Error(t, cb.Execute("x", func() error { return boom }))
	require.NoError(t, cb.Execute("x", func() error { return nil }))
	require.Error(t, cb.Execute("x", func() error { return boom }))
	require.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitState_String(t *testing.T) {
	require.Equal(t, "closed", CircuitClosed.String())
	require.Equal(t, "open", CircuitOpen.String())
	require.Equal(t, "half-open", CircuitHalfOpen.String())
}
