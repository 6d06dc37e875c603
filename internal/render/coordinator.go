package render

import (
	"context"
	"sync"
	"sync/atomic"
)

// Coordinator arbitrates the strip between one owner at a time (a message,
// an ambient fill, a wiring sweep) and effects rounds. While the strip is held
// no effect may write to it. displaying is set only for messages.
type Coordinator struct {
	displaying atomic.Bool
	held       atomic.Bool
	owner      chan struct{}

	mu    sync.Mutex
	round *round
}

type round struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func NewCoordinator() *Coordinator {
	return &Coordinator{owner: make(chan struct{}, 1)}
}

// Displaying reports whether a message is being shown.
func (c *Coordinator) Displaying() bool { return c.displaying.Load() }

// Held reports whether any owner holds the strip.
func (c *Coordinator) Held() bool { return c.held.Load() }

// BeginRound registers an effects round. It refuses while the strip is held
// or while another round is in flight. The returned context is cancelled when
// an owner takes the strip; end must be called once the round's writes are
// finished.
func (c *Coordinator) BeginRound(ctx context.Context) (context.Context, func(), bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.held.Load() || c.round != nil {
		return nil, nil, false
	}
	rctx, cancel := context.WithCancel(ctx)
	r := &round{cancel: cancel, done: make(chan struct{})}
	c.round = r

	var once sync.Once
	end := func() {
		once.Do(func() {
			cancel()
			c.mu.Lock()
			if c.round == r {
				c.round = nil
			}
			c.mu.Unlock()
			close(r.done)
		})
	}
	return rctx, end, true
}

// Acquire takes the strip without marking a message: it cancels the in-flight
// effects round and waits for it to drain. On error nothing is held. On
// success the caller must call Release.
func (c *Coordinator) Acquire(ctx context.Context) error {
	return c.acquire(ctx, false)
}

func (c *Coordinator) Release() {
	c.held.Store(false)
	<-c.owner
}

// BeginDisplay takes the strip for a message: it sets displaying, cancels the
// in-flight effects round and waits for it to drain. On error nothing is held.
// On success the caller must call EndDisplay.
func (c *Coordinator) BeginDisplay(ctx context.Context) error {
	return c.acquire(ctx, true)
}

// EndDisplay clears displaying and releases the strip.
func (c *Coordinator) EndDisplay() {
	c.displaying.Store(false)
	c.Release()
}

func (c *Coordinator) acquire(ctx context.Context, display bool) error {
	select {
	case c.owner <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	c.mu.Lock()
	c.held.Store(true)
	if display {
		c.displaying.Store(true)
	}
	r := c.round
	c.mu.Unlock()
	if r == nil {
		return nil
	}

	r.cancel()
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		c.displaying.Store(false)
		c.Release()
		return ctx.Err()
	}
}
