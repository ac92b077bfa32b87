package scheduler

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"authsvc/internal/observability/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	metrics.MustRegister("scheduler-test")
	os.Exit(m.Run())
}

type fakeCleaner struct {
	calls atomic.Int32
	err   error
}

func (f *fakeCleaner) CleanupUnverifiedAccounts(ctx context.Context) (int, error) {
	f.calls.Add(1)
	return 2, f.err
}

type fakePurger struct {
	calls atomic.Int32
	at    time.Time
	err   error
}

func (f *fakePurger) PurgeExpired(ctx context.Context, now time.Time) (map[string]int64, error) {
	f.calls.Add(1)
	f.at = now
	if f.err != nil {
		return nil, f.err
	}
	return map[string]int64{"sessions": 3}, nil
}

func TestRunOnceRunsBothSteps(t *testing.T) {
	cleaner := &fakeCleaner{}
	purger := &fakePurger{}
	w := NewCleanupWorker(time.Hour, cleaner, purger)
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	w.clock = func() time.Time { return fixed }

	require.NoError(t, w.RunOnce(context.Background()))
	assert.EqualValues(t, 1, cleaner.calls.Load())
	assert.EqualValues(t, 1, purger.calls.Load())
	assert.Equal(t, fixed, purger.at)
}

func TestRunOnceJoinsErrors(t *testing.T) {
	errCleanup := errors.New("cleanup failed")
	errPurge := errors.New("purge failed")
	purger := &fakePurger{err: errPurge}
	w := NewCleanupWorker(time.Hour, &fakeCleaner{err: errCleanup}, purger)

	err := w.RunOnce(context.Background())
	assert.ErrorIs(t, err, errCleanup)
	assert.ErrorIs(t, err, errPurge)
	assert.EqualValues(t, 1, purger.calls.Load())
}

func TestRunOnceWithoutPurger(t *testing.T) {
	cleaner := &fakeCleaner{}
	w := NewCleanupWorker(time.Hour, cleaner, nil)
	require.NoError(t, w.RunOnce(context.Background()))
	assert.EqualValues(t, 1, cleaner.calls.Load())
}

func TestWorkerRunsImmediatelyAndOnTick(t *testing.T) {
	cleaner := &fakeCleaner{}
	w := NewCleanupWorker(10*time.Millisecond, cleaner, nil)

	w.Start(context.Background())
	assert.Eventually(t, func() bool { return cleaner.calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	w.Stop()

	after := cleaner.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, cleaner.calls.Load())
}

func TestStopWithoutStart(t *testing.T) {
	w := NewCleanupWorker(time.Hour, &fakeCleaner{}, nil)
	w.Stop()
}

func TestNonPositiveIntervalFallsBackToDefault(t *testing.T) {
	for _, d := range []time.Duration{0, -time.Minute} {
		cleaner := &fakeCleaner{}
		w := NewCleanupWorker(d, cleaner, nil)
		assert.Equal(t, DefaultInterval, w.interval)

		w.Start(context.Background())
		assert.Eventually(t, func() bool { return cleaner.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
		w.Stop()
	}
}
