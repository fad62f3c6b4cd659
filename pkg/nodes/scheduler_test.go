package nodes

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls atomic.Int32
}

func (c *countingRefresher) RefreshAll(context.Context) []Node {
	c.calls.Add(1)
	return nil
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule(""))
	assert.NoError(t, ValidateSchedule("@every 10m"))
	assert.NoError(t, ValidateSchedule("*/5 * * * *"))
	assert.Error(t, ValidateSchedule("every ten minutes"))
}

func TestScheduler_Disabled(t *testing.T) {
	s := NewScheduler(&countingRefresher{}, "", nil)

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.NextRun())
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := NewScheduler(&countingRefresher{}, "not a schedule", nil)

	assert.Error(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestScheduler_RunsAndStops(t *testing.T) {
	refresher := &countingRefresher{}
	s := NewScheduler(refresher, "@every 1s", nil)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	assert.True(t, s.IsRunning())
	require.NotNil(t, s.NextRun())

	assert.Eventually(t, func() bool { return refresher.calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)

	cancel()
	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}
