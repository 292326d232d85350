package chain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryDoSucceedsEventually(t *testing.T) {
	r := Retry{Base: time.Millisecond, Factor: 1.5, MaxAttempts: 5, UseJitter: false}
	attempts := 0

	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryDoExhaustsMaxAttempts(t *testing.T) {
	r := Retry{Base: time.Millisecond, Factor: 1.5, MaxAttempts: 2, UseJitter: false}
	attempts := 0

	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return errors.New("always fails")
	})
	assert.Error(t, err)
	assert.Equal(t, 3, attempts) // one initial try plus MaxAttempts retries
}

func TestRetryDoNotifyInvokedBeforeEachRetry(t *testing.T) {
	r := Retry{Base: time.Millisecond, Factor: 1.5, MaxAttempts: 3, UseJitter: true}
	notified := 0

	_ = r.DoNotify(context.Background(), func(ctx context.Context) error {
		return errors.New("fails")
	}, func(err error, wait time.Duration) {
		notified++
	})
	assert.Equal(t, 3, notified)
}
