package cronjob

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/haulzy/haulzy-backend/internal/activity"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingSnapshotter struct {
	calls atomic.Int32
	actor atomic.Value
	err   error
}

func (c *countingSnapshotter) Snapshot(_ context.Context, actor string) (activity.Snapshot, error) {
	c.calls.Add(1)
	c.actor.Store(actor)
	return activity.Snapshot{Day: time.Now()}, c.err
}

func TestScheduler_InvalidSpec(t *testing.T) {
	s := NewScheduler("not a spec", time.UTC, &countingSnapshotter{}, nil)
	assert.Error(t, s.Start())
}

func TestScheduler_RunsSnapshot(t *testing.T) {
	snap := &countingSnapshotter{}
	s := NewScheduler("@every 1s", time.UTC, snap, nil)
	require.NoError(t, s.Start())

	require.Eventually(t, func() bool { return snap.calls.Load() > 0 }, 5*time.Second, 50*time.Millisecond)
	assert.Equal(t, Actor, snap.actor.Load())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestScheduler_FailedSnapshotIsLogged(t *testing.T) {
	snap := &countingSnapshotter{err: errors.New("store down")}
	s := NewScheduler("0 55 23 * * *", time.UTC, snap, nil)
	s.runSnapshot()
	assert.Equal(t, int32(1), snap.calls.Load())
}
