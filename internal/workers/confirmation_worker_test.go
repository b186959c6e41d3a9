package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gorm.io/gorm"
)

type fakeRetrier struct {
	mu     sync.Mutex
	calls  int
	limits []int
	err    error
}

func (f *fakeRetrier) RetryPickupConfirmations(_ context.Context, _ *gorm.DB, limit int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.limits = append(f.limits, limit)
	return 1, f.err
}

func (f *fakeRetrier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestConfirmationWorker_RetriesUntilCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	retrier := &fakeRetrier{}
	worker := NewConfirmationWorker(nil, retrier, 10*time.Millisecond, 7)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	require.Eventually(t, func() bool { return retrier.callCount() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	retrier.mu.Lock()
	defer retrier.mu.Unlock()
	for _, limit := range retrier.limits {
		assert.Equal(t, 7, limit)
	}
}

func TestConfirmationWorker_KeepsRunningAfterError(t *testing.T) {
	defer goleak.VerifyNone(t)

	retrier := &fakeRetrier{err: errors.New("db down")}
	worker := NewConfirmationWorker(nil, retrier, 5*time.Millisecond, 0)
	assert.Equal(t, 50, worker.batch)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	require.Eventually(t, func() bool { return retrier.callCount() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestNewConfirmationWorker_Defaults(t *testing.T) {
	worker := NewConfirmationWorker(nil, &fakeRetrier{}, 0, 0)
	assert.Equal(t, 5*time.Minute, worker.interval)
	assert.Equal(t, 50, worker.batch)
}
