package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacer_FirstWaitIsImmediate(t *testing.T) {
	p := NewPacer(time.Hour)

	start := time.Now()
	require.NoError(t, p.Wait(context.Background()))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestPacer_SpacesItems(t *testing.T) {
	p := NewPacer(50 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Wait(ctx))
		p.Done()
	}
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestPacer_GapStartsAfterSlowItem(t *testing.T) {
	p := NewPacer(60 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Wait(ctx))
		time.Sleep(80 * time.Millisecond)
		p.Done()
	}
	// 3 items of 80ms work plus 2 full gaps of 60ms.
	assert.GreaterOrEqual(t, time.Since(start), 360*time.Millisecond)
}

func TestPacer_NoWaitBeforeFirstDone(t *testing.T) {
	p := NewPacer(time.Hour)

	start := time.Now()
	require.NoError(t, p.Wait(context.Background()))
	require.NoError(t, p.Wait(context.Background()))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestPacer_ZeroIntervalNeverBlocks(t *testing.T) {
	p := NewPacer(0)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	for i := 0; i < 100; i++ {
		require.NoError(t, p.Wait(ctx))
		p.Done()
	}
}

func TestPacer_CancelledContext(t *testing.T) {
	p := NewPacer(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, p.Wait(ctx))
	p.Done()

	cancel()
	assert.Error(t, p.Wait(ctx))
}

func TestTokenLimiter_RejectsOversizedRequest(t *testing.T) {
	l := NewTokenLimiter(100)
	assert.Error(t, l.Wait(context.Background(), 101))
	assert.NoError(t, l.Wait(context.Background(), 40))
	assert.LessOrEqual(t, l.GetRemaining(), 60)
}

func TestTokenLimiter_Disabled(t *testing.T) {
	l := NewTokenLimiter(0)
	assert.NoError(t, l.Wait(context.Background(), 1_000_000))
	assert.Equal(t, -1, l.GetRemaining())
}
