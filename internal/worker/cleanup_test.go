package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePruner struct {
	n      int64
	err    error
	calls  atomic.Int32
	cutoff time.Time
}

func (f *fakePruner) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	f.calls.Add(1)
	f.cutoff = cutoff
	return f.n, f.err
}

func (f *fakePruner) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	return f.DeleteExpired(ctx, cutoff)
}

func TestJanitorRunOnce(t *testing.T) {
	otps := &fakePruner{n: 3}
	tokens := &fakePruner{n: 5}
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	j := NewJanitor(otps, tokens, time.Hour, 24*time.Hour, nil)
	j.Now = func() time.Time { return now }

	o, tk, err := j.RunOnce(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, o)
	assert.EqualValues(t, 5, tk)
	assert.Equal(t, now.Add(-24*time.Hour), otps.cutoff)
	assert.Equal(t, now.Add(-24*time.Hour), tokens.cutoff)
}

func TestJanitorRunOnceStopsOnError(t *testing.T) {
	otps := &fakePruner{err: errors.New("db gone")}
	tokens := &fakePruner{}
	j := NewJanitor(otps, tokens, time.Hour, time.Hour, nil)

	_, _, err := j.RunOnce(context.Background())
	assert.Error(t, err)
	assert.EqualValues(t, 0, tokens.calls.Load())
}

func TestJanitorRun(t *testing.T) {
	otps := &fakePruner{}
	tokens := &fakePruner{}
	j := NewJanitor(otps, tokens, 10*time.Millisecond, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return otps.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestJanitorDisabled(t *testing.T) {
	otps := &fakePruner{}
	j := NewJanitor(otps, &fakePruner{}, 0, time.Hour, nil)
	j.Run(context.Background())
	assert.EqualValues(t, 0, otps.calls.Load())
}
