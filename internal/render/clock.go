package render

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Sleeper is the suspension point every animation delay goes through.
type Sleeper interface {
	// Sleep blocks for d or until ctx is done, returning ctx.Err() in that case.
	Sleep(ctx context.Context, d time.Duration) error
}

type timerSleeper struct{}

func (timerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// TimerSleeper sleeps on wall-clock timers.
var TimerSleeper Sleeper = timerSleeper{}

// Rand is a goroutine-safe random source; flickers draw from it in parallel.
type Rand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func NewRand(seed uint64) *Rand {
	return &Rand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// IntRange returns a uniform int in [lo, hi].
func (r *Rand) IntRange(lo, hi int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo + r.r.IntN(hi-lo+1)
}

// Float64 returns a uniform float in [0, 1).
func (r *Rand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.Float64()
}

func (r *Rand) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.Perm(n)
}

// Sample returns k distinct values from [0, n).
func (r *Rand) Sample(n, k int) []int {
	if k > n {
		k = n
	}
	return r.Perm(n)[:k]
}

// Millis returns a uniform whole number of milliseconds in [lo, hi].
func (r *Rand) Millis(lo, hi int) time.Duration {
	return time.Duration(r.IntRange(lo, hi)) * time.Millisecond
}

// Seconds returns a uniform whole number of seconds in [lo, hi].
func (r *Rand) Seconds(lo, hi int) time.Duration {
	return time.Duration(r.IntRange(lo, hi)) * time.Second
}
