package chain_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Asad272002/TaskWiser-V2/internal/chain"
)

func TestRateLimiter_Burst(t *testing.T) {
	t.Parallel()
	rl := chain.NewRateLimiter(10, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("http://127.0.0.1:1248"), "request %d in burst", i)
	}
	assert.False(t, rl.Allow("http://127.0.0.1:1248"))

	// other endpoints have their own bucket
	assert.True(t, rl.Allow("http://127.0.0.1:8545"))
}

func TestRateLimiter_Wait(t *testing.T) {
	t.Parallel()
	rl := chain.NewRateLimiter(100, 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, rl.Wait(ctx, "rpc"))
	start := time.Now()
	require.NoError(t, rl.Wait(ctx, "rpc"))
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
}

func TestRateLimiter_WaitCanceled(t *testing.T) {
	t.Parallel()
	rl := chain.NewRateLimiter(0.001, 1)
	require.True(t, rl.Allow("rpc"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, rl.Wait(ctx, "rpc"))
}

func TestRateLimiter_Unlimited(t *testing.T) {
	t.Parallel()
	rl := chain.NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		require.True(t, rl.Allow("rpc"))
	}

	var nilLimiter *chain.RateLimiter
	assert.True(t, nilLimiter.Allow("rpc"))
	require.NoError(t, nilLimiter.Wait(context.Background(), "rpc"))
}

func TestRateLimiter_Concurrent(t *testing.T) {
	t.Parallel()
	rl := chain.DefaultRateLimiter()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rl.Allow("shared")
		}()
	}
	wg.Wait()
}
