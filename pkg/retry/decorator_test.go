package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type permanentErr struct{}

func (permanentErr) Error() string     { return "permanent" }
func (permanentErr) IsRetryable() bool { return false }

func fastPolicy(maxRetries int) Policy {
	return Policy{MaxRetries: maxRetries, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
}

func TestRetrier_SucceedsAfterTransientFailures(t *testing.T) {
	r := NewRetrier(fastPolicy(3), zap.NewNop())
	calls := 0

	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetrier_StopsOnPermanentError(t *testing.T) {
	r := NewRetrier(fastPolicy(5), zap.NewNop())
	calls := 0

	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return permanentErr{}
	})

	assert.ErrorIs(t, err, permanentErr{})
	assert.Equal(t, 1, calls)
}

func TestRetrier_MaxRetriesExceeded(t *testing.T) {
	r := NewRetrier(fastPolicy(2), zap.NewNop())
	calls := 0

	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return errors.New("boom")
	})

	assert.ErrorIs(t, err, ErrMaxRetriesExceeded)
	assert.Equal(t, 3, calls)
}

func TestRetrier_ContextCancelled(t *testing.T) {
	r := NewRetrier(fastPolicy(2), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Do(ctx, func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoWithResult(t *testing.T) {
	r := NewRetrier(fastPolicy(1), zap.NewNop())
	v, err := DoWithResult(context.Background(), r, func(ctx context.Context) (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestBackoff_CapsAtMaxDelay(t *testing.T) {
	b := NewBackoff(Policy{InitialDelay: time.Second, MaxDelay: 3 * time.Second, Multiplier: 2})
	assert.Equal(t, time.Second, b.Calculate(1))
	assert.Equal(t, 2*time.Second, b.Calculate(2))
	assert.Equal(t, 3*time.Second, b.Calculate(5))
}

func TestPolicy_Validate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())
	assert.Error(t, Policy{MaxRetries: -1, Multiplier: 1}.Validate())
	assert.Error(t, Policy{Multiplier: 0.5}.Validate())
}
