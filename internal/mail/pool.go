package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrPoolExhausted is returned when Acquire times out waiting for a
// free session.
var ErrPoolExhausted = errors.New("mail: connection pool exhausted")

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("mail: connection pool closed")

const defaultAcquireTimeout = 30 * time.Second

// Pool hands out at most size concurrent mail sessions. Sessions are
// opened lazily and reused; a session returned with an error is closed
// and its slot freed for a fresh dial.
type Pool struct {
	factory        Factory
	slots          chan *pooledClient
	acquireTimeout time.Duration
	logger         *slog.Logger

	mu     sync.Mutex
	closed bool
}

type pooledClient struct {
	client Client // nil until first dial
}

// PoolConfig configures a Pool.
type PoolConfig struct {
	Size           int
	AcquireTimeout time.Duration
	Logger         *slog.Logger
}

// NewPool creates a pool of at most cfg.Size sessions.
func NewPool(factory Factory, cfg PoolConfig) *Pool {
	size := cfg.Size
	if size <= 0 {
		size = 1
	}
	timeout := cfg.AcquireTimeout
	if timeout <= 0 {
		timeout = defaultAcquireTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	slots := make(chan *pooledClient, size)
	for range size {
		slots <- &pooledClient{}
	}
	return &Pool{
		factory:        factory,
		slots:          slots,
		acquireTimeout: timeout,
		logger:         logger,
	}
}

// Acquire returns a live client or ErrPoolExhausted when none frees up
// within the acquire timeout. The caller must Release exactly once.
func (p *Pool) Acquire(ctx context.Context) (Client, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	p.mu.Unlock()

	timer := time.NewTimer(p.acquireTimeout)
	defer timer.Stop()

	var slot *pooledClient
	select {
	case slot = <-p.slots:
	case <-timer.C:
		return nil, ErrPoolExhausted
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if slot.client == nil {
		client, err := p.factory(ctx)
		if err != nil {
			p.slots <- slot
			return nil, fmt.Errorf("dial mail session: %w", err)
		}
		slot.client = client
	}
	return slot.client, nil
}

// Release returns a client to the pool. When broken is true the
// session is closed and the slot redials on next Acquire.
func (p *Pool) Release(client Client, broken bool) {
	if client == nil {
		return
	}
	slot := &pooledClient{client: client}
	if broken {
		if err := client.Close(); err != nil {
			p.logger.Warn("closing broken mail session", "error", err)
		}
		slot.client = nil
	}

	// The send happens under the mutex: a slot in flight while Close
	// runs is either drained there or closed here, never leaked.
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		if slot.client != nil {
			_ = slot.client.Close()
		}
		return
	}
	p.slots <- slot
}

// Close shuts down all idle sessions. In-flight sessions are closed as
// they are released.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	var firstErr error
	for {
		select {
		case slot := <-p.slots:
			if slot.client != nil {
				if err := slot.client.Close(); err != nil && firstErr == nil {
					firstErr = err
				}
			}
		default:
			return firstErr
		}
	}
}
