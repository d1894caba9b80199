package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetry_AllAttemptsFail(t *testing.T) {
	calls := 0
	errs := []error{
		errors.New("first"),
		errors.New("second"),
		errors.New("third"),
	}

	op := Retry(func(ctx context.Context) (string, error) {
		calls++
		return "", errs[calls-1]
	}, 3, time.Millisecond)

	_, err := op(context.Background())
	require.Error(t, err)
	assert.Equal(t, 3, calls, "operation must be invoked exactly maxAttempts times")
	assert.Equal(t, errs[2], err, "final error must equal the error from the last attempt")
}

func TestRetry_SucceedsOnSecondAttempt(t *testing.T) {
	calls := 0
	op := Retry(func(ctx context.Context) (int, error) {
		calls++
		if calls < 2 {
			return 0, errors.New("transient")
		}
		return 42, nil
	}, 3, time.Millisecond)

	v, err := op(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 2, calls, "success must short-circuit remaining attempts")
}

func TestRetry_FirstAttemptSucceeds(t *testing.T) {
	calls := 0
	op := Retry(func(ctx context.Context) (int, error) {
		calls++
		return 1, nil
	}, 3, time.Millisecond)

	_, err := op(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_InvalidMaxAttempts(t *testing.T) {
	op := Retry(func(ctx context.Context) (int, error) {
		return 0, nil
	}, 0, time.Millisecond)

	_, err := op(context.Background())
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	op := Retry(func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("nope")
	}, 3, time.Millisecond)

	_, err := op(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls, "no attempt after cancellation")
}

func TestRetry_ContextCancelledDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	op := Retry(func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, errors.New("transient")
	}, 3, time.Minute)

	start := time.Now()
	_, err := op(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), 5*time.Second, "must not sleep out the full delay")
}

func TestSafeDefault(t *testing.T) {
	op := SafeDefault(func(ctx context.Context) ([]string, error) {
		return nil, errors.New("boom")
	}, []string{"fallback"}, nil)

	v, err := op(context.Background())
	require.NoError(t, err, "SafeDefault must never propagate an error")
	assert.Equal(t, []string{"fallback"}, v)
}

func TestSafeDefault_PassThrough(t *testing.T) {
	op := SafeDefault(func(ctx context.Context) (string, error) {
		return "ok", nil
	}, "fallback", nil)

	v, err := op(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestTimed_ObservesOnSuccessAndFailure(t *testing.T) {
	var observed []time.Duration
	observe := func(d time.Duration) { observed = append(observed, d) }

	ok := Timed(func(ctx context.Context) (int, error) {
		return 1, nil
	}, observe)
	fail := Timed(func(ctx context.Context) (int, error) {
		return 0, errors.New("boom")
	}, observe)

	v, err := ok(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = fail(context.Background())
	require.Error(t, err)

	assert.Len(t, observed, 2, "duration recorded unconditionally")
}

func TestCompose_TimedRetry(t *testing.T) {
	calls := 0
	var elapsed time.Duration

	op := Timed(Retry(func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "done", nil
	}, 5, time.Millisecond), func(d time.Duration) { elapsed = d })

	v, err := op(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "done", v)
	assert.Equal(t, 3, calls)
	assert.Greater(t, elapsed, time.Duration(0), "timer wraps the whole retry loop")
}
