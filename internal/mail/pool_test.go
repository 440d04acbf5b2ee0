package mail

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	id     int
	closed atomic.Bool
}

func (f *fakeClient) MarkRead(context.Context, int, string) error   { return nil }
func (f *fakeClient) MarkUnread(context.Context, int, string) error { return nil }
func (f *fakeClient) Move(context.Context, int, string, string) error {
	return nil
}
func (f *fakeClient) AddLabels(context.Context, int, string, []string) error    { return nil }
func (f *fakeClient) RemoveLabels(context.Context, int, string, []string) error { return nil }
func (f *fakeClient) ListUnread(context.Context, string, int) ([]MessageSummary, error) {
	return nil, nil
}
func (f *fakeClient) Close() error {
	f.closed.Store(true)
	return nil
}

func countingFactory() (Factory, *atomic.Int32) {
	var dials atomic.Int32
	factory := func(ctx context.Context) (Client, error) {
		n := dials.Add(1)
		return &fakeClient{id: int(n)}, nil
	}
	return factory, &dials
}

func TestPoolAcquireDialsLazily(t *testing.T) {
	factory, dials := countingFactory()
	pool := NewPool(factory, PoolConfig{Size: 2})
	defer func() {
		_ = pool.Close()
	}()

	require.Equal(t, int32(0), dials.Load())

	client, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, int32(1), dials.Load())

	pool.Release(client, false)

	// Reuses the existing session instead of redialing.
	again, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	assert.Same(t, client, again)
	assert.Equal(t, int32(1), dials.Load())
	pool.Release(again, false)
}

func TestPoolAcquireTimesOutWhenExhausted(t *testing.T) {
	factory, _ := countingFactory()
	pool := NewPool(factory, PoolConfig{Size: 1, AcquireTimeout: 50 * time.Millisecond})
	defer func() {
		_ = pool.Close()
	}()

	client, err := pool.Acquire(context.Background())
	require.NoError(t, err)

	_, err = pool.Acquire(context.Background())
	require.ErrorIs(t, err, ErrPoolExhausted)

	pool.Release(client, false)

	// Slot freed, acquire succeeds again.
	client, err = pool.Acquire(context.Background())
	require.NoError(t, err)
	pool.Release(client, false)
}

func TestPoolBrokenReleaseRedials(t *testing.T) {
	factory, dials := countingFactory()
	pool := NewPool(factory, PoolConfig{Size: 1})
	defer func() {
		_ = pool.Close()
	}()

	client, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	first := client.(*fakeClient)

	pool.Release(client, true)
	assert.True(t, first.closed.Load())

	next, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first, next)
	assert.Equal(t, int32(2), dials.Load())
	pool.Release(next, false)
}

func TestPoolBoundsConcurrency(t *testing.T) {
	factory, dials := countingFactory()
	pool := NewPool(factory, PoolConfig{Size: 3, AcquireTimeout: time.Second})
	defer func() {
		_ = pool.Close()
	}()

	var (
		wg      sync.WaitGroup
		active  atomic.Int32
		maxSeen atomic.Int32
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client, err := pool.Acquire(context.Background())
			if !assert.NoError(t, err) {
				return
			}
			now := active.Add(1)
			for {
				prev := maxSeen.Load()
				if now <= prev || maxSeen.CompareAndSwap(prev, now) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			active.Add(-1)
			pool.Release(client, false)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, maxSeen.Load(), int32(3))
	assert.LessOrEqual(t, dials.Load(), int32(3))
}

func TestPoolCloseRejectsAcquire(t *testing.T) {
	factory, _ := countingFactory()
	pool := NewPool(factory, PoolConfig{Size: 1})

	client, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	pool.Release(client, false)

	require.NoError(t, pool.Close())
	assert.True(t, client.(*fakeClient).closed.Load())

	_, err = pool.Acquire(context.Background())
	require.ErrorIs(t, err, ErrPoolClosed)
}

func TestPoolCloseWithSessionInFlight(t *testing.T) {
	factory, _ := countingFactory()
	pool := NewPool(factory, PoolConfig{Size: 1})

	client, err := pool.Acquire(context.Background())
	require.NoError(t, err)

	// Close cannot reach a checked-out session; the release must.
	require.NoError(t, pool.Close())
	assert.False(t, client.(*fakeClient).closed.Load())

	pool.Release(client, false)
	assert.True(t, client.(*fakeClient).closed.Load())
}

func TestPoolConcurrentReleaseAndClose(t *testing.T) {
	for range 50 {
		factory, _ := countingFactory()
		pool := NewPool(factory, PoolConfig{Size: 1})

		client, err := pool.Acquire(context.Background())
		require.NoError(t, err)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			pool.Release(client, false)
		}()
		go func() {
			defer wg.Done()
			_ = pool.Close()
		}()
		wg.Wait()

		// Whichever side wins the race, the session ends up closed.
		assert.True(t, client.(*fakeClient).closed.Load())
	}
}

func TestPoolAcquireHonorsContext(t *testing.T) {
	factory, _ := countingFactory()
	pool := NewPool(factory, PoolConfig{Size: 1, AcquireTimeout: time.Minute})
	defer func() {
		_ = pool.Close()
	}()

	client, err := pool.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = pool.Acquire(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	pool.Release(client, false)
}

func TestPoolFactoryErrorFreesSlot(t *testing.T) {
	dialErr := errors.New("connection refused")
	fail := true
	factory := func(ctx context.Context) (Client, error) {
		if fail {
			return nil, dialErr
		}
		return &fakeClient{}, nil
	}
	pool := NewPool(factory, PoolConfig{Size: 1, AcquireTimeout: 50 * time.Millisecond})
	defer func() {
		_ = pool.Close()
	}()

	_, err := pool.Acquire(context.Background())
	require.ErrorIs(t, err, dialErr)

	// The failed dial must not leak its slot.
	fail = false
	client, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	pool.Release(client, false)
}
