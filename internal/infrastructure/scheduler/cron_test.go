package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("0 6 * * 1", nil)
	// Saturday 2025-11-08
	next, err := s.Next(time.Date(2025, time.November, 8, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, time.Date(2025, time.November, 10, 6, 0, 0, 0, time.UTC).Equal(next), next)
}

func TestNextHonoursLocation(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+2", 2*60*60)
	next, err := NewCronScheduler("0 6 * * *", loc).Next(time.Date(2025, time.November, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, time.Date(2025, time.November, 8, 4, 0, 0, 0, time.UTC).Equal(next), next)
}

func TestStartRejectsInvalidSpec(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("every monday", nil)
	err := s.Start(context.Background(), func(time.Time) {})
	assert.Error(t, err)

	_, err = s.Next(time.Now())
	assert.Error(t, err)
}

func TestStartStop(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewCronScheduler("0 6 * * *", nil)
	require.NoError(t, s.Start(ctx, func(time.Time) {}))
	require.NoError(t, s.Start(ctx, func(time.Time) {}))

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	assert.NoError(t, s.Stop(stopCtx))
	assert.NoError(t, s.Stop(stopCtx))

	assert.NoError(t, s.Start(context.Background(), nil))
}
