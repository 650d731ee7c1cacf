package chatbot

import (
	"context"
	"errors"
	"testing"
	"time"

	"cobramax-service/internal/domain/chatbot"
	xerrors "cobramax-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubCompleter fails a fixed number of times before answering.
type stubCompleter struct {
	calls    int
	failures int
	err      error
	reply    string
}

func (s *stubCompleter) Complete(_ context.Context, _ []chatbot.Message, _ string) (string, error) {
	s.calls++
	if s.calls <= s.failures {
		return "", s.err
	}
	return s.reply, nil
}

func newTestRetrier(inner Completer, retries int) *RetryingCompleter {
	r := NewRetryingCompleter(inner, retries, time.Second, zap.NewNop())
	r.sleep = func(context.Context, time.Duration) error { return nil }
	return r
}

func TestRetryingCompleterSucceedsFirstTry(t *testing.T) {
	stub := &stubCompleter{reply: "todo bien"}
	r := newTestRetrier(stub, 2)

	reply, err := r.Complete(context.Background(), nil, "hola")
	require.NoError(t, err)
	assert.Equal(t, "todo bien", reply)
	assert.Equal(t, 1, stub.calls)
}

func TestRetryingCompleterRecoversAfterTransientError(t *testing.T) {
	stub := &stubCompleter{
		failures: 2,
		err:      errors.New("upstream timeout"),
		reply:    "listo",
	}
	r := newTestRetrier(stub, 2)

	reply, err := r.Complete(context.Background(), nil, "hola")
	require.NoError(t, err)
	assert.Equal(t, "listo", reply)
	assert.Equal(t, 3, stub.calls)
}

func TestRetryingCompleterExhaustsRetries(t *testing.T) {
	stub := &stubCompleter{
		failures: 10,
		err:      errors.New("upstream down"),
	}
	r := newTestRetrier(stub, 2)

	_, err := r.Complete(context.Background(), nil, "hola")
	require.Error(t, err)
	assert.ErrorIs(t, err, xerrors.ErrAIUnavailable)
	// initial attempt plus two retries
	assert.Equal(t, 3, stub.calls)
}

func TestRetryingCompleterDoesNotRetryRateLimit(t *testing.T) {
	stub := &stubCompleter{
		failures: 10,
		err:      xerrors.ErrRateLimited,
	}
	r := newTestRetrier(stub, 5)

	_, err := r.Complete(context.Background(), nil, "hola")
	assert.ErrorIs(t, err, xerrors.ErrRateLimited)
	assert.Equal(t, 1, stub.calls, "a 429 must not be retried")
}

func TestRetryingCompleterBackoffGrowsLinearly(t *testing.T) {
	stub := &stubCompleter{
		failures: 10,
		err:      errors.New("flaky"),
	}
	r := NewRetryingCompleter(stub, 3, 100*time.Millisecond, zap.NewNop())

	var delays []time.Duration
	r.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	_, err := r.Complete(context.Background(), nil, "hola")
	require.Error(t, err)
	assert.Equal(t, []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		300 * time.Millisecond,
	}, delays)
}

func TestRetryingCompleterHonorsContextDuringBackoff(t *testing.T) {
	stub := &stubCompleter{
		failures: 10,
		err:      errors.New("flaky"),
	}
	r := NewRetryingCompleter(stub, 2, time.Second, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Complete(ctx, nil, "hola")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, stub.calls)
}
