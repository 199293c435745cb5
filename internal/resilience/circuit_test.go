package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBreaker(threshold int, reset time.Duration) (*CircuitBreaker, *time.Time) {
	now := time.Unix(1000, 0)
	cb := NewCircuitBreaker("test", CircuitBreakerConfig{
		FailureThreshold: threshold,
		ResetTimeout:     reset,
	})
	cb.nowFunc = func() time.Time { return now }
	return cb, &now
}

func TestCircuit_OpensAfterThreshold(t *testing.T) {
	cb, _ := testBreaker(3, time.Minute)
	fail := func(_ context.Context) error { return errors.New("boom") }

	for i := 0; i < 3; i++ {
		_ = cb.Execute(context.Background(), fail)
	}
	assert.Equal(t, CircuitOpen, cb.State())

	err := cb.Execute(context.Background(), fail)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuit_SuccessResetsFailureCount(t *testing.T) {
	cb, _ := testBreaker(3, time.Minute)
	fail := func(_ context.Context) error { return errors.New("boom") }
	ok := func(_ context.Context) error { return nil }

	_ = cb.Execute(context.Background(), fail)
	_ = cb.Execute(context.Background(), fail)
	require.NoError(t, cb.Execute(context.Background(), ok))
	_ = cb.Execute(context.Background(), fail)
	_ = cb.Execute(context.Background(), fail)

	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuit_HalfOpenProbeRecovers(t *testing.T) {
	cb, now := testBreaker(1, 30*time.Second)
	_ = cb.Execute(context.Background(), func(_ context.Context) error { return errors.New("boom") })
	require.Equal(t, CircuitOpen, cb.State())

	*now = now.Add(31 * time.Second)
	assert.Equal(t, CircuitHalfOpen, cb.State())

	// A successful probe closes the circuit.
	require.NoError(t, cb.Execute(context.Background(), func(_ context.Context) error { return nil }))
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuit_HalfOpenProbeFailureReopens(t *testing.T) {
	cb, now := testBreaker(1, 30*time.Second)
	_ = cb.Execute(context.Background(), func(_ context.Context) error { return errors.New("boom") })
	*now = now.Add(31 * time.Second)

	_ = cb.Execute(context.Background(), func(_ context.Context) error { return errors.New("still failing") })
	assert.Equal(t, CircuitOpen, cb.State())
}

func TestCircuit_Reset(t *testing.T) {
	cb, _ := testBreaker(1, time.Minute)
	_ = cb.Execute(context.Background(), func(_ context.Context) error { return errors.New("boom") })
	require.Equal(t, CircuitOpen, cb.State())

	cb.Reset()
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestExecuteVal_PropagatesValue(t *testing.T) {
	cb, _ := testBreaker(5, time.Minute)
	got, err := ExecuteVal(context.Background(), cb, func(_ context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}
