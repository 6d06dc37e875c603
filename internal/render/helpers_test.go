package render

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-strangerlights/internal/led"
	"github.com/coreman2200/funtimes-strangerlights/model"
)

// frame is one flush as seen by the driver, with the coordination state at
// that moment.
type frame struct {
	pixels     []model.Color
	displaying bool
	held       bool
}

// recordingDriver captures every flush.
type recordingDriver struct {
	mu     sync.Mutex
	frames []frame
	coord  *Coordinator
	err    error
}

func (d *recordingDriver) Write(buf []model.Color) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	f := frame{pixels: append([]model.Color(nil), buf...)}
	if d.coord != nil {
		f.displaying = d.coord.Displaying()
		f.held = d.coord.Held()
	}
	d.frames = append(d.frames, f)
	return nil
}

func (d *recordingDriver) Close() error { return nil }

func (d *recordingDriver) Frames() []frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]frame(nil), d.frames...)
}

func (d *recordingDriver) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.frames)
}

func (d *recordingDriver) Reset() {
	d.mu.Lock()
	d.frames = nil
	d.mu.Unlock()
}

func (d *recordingDriver) Fail(err error) {
	d.mu.Lock()
	d.err = err
	d.mu.Unlock()
}

// fakeSleeper returns at once, recording what was asked for. hook runs after
// each call with the running call count.
type fakeSleeper struct {
	mu    sync.Mutex
	slept []time.Duration
	hook  func(n int, d time.Duration)
}

func (s *fakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.slept = append(s.slept, d)
	n := len(s.slept)
	hook := s.hook
	s.mu.Unlock()
	if hook != nil {
		hook(n, d)
	}
	return ctx.Err()
}

func (s *fakeSleeper) Slept() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.slept...)
}

// scaledSleeper sleeps for real, divided by factor.
type scaledSleeper struct{ factor time.Duration }

func (s scaledSleeper) Sleep(ctx context.Context, d time.Duration) error {
	return TimerSleeper.Sleep(ctx, d/s.factor)
}

func newTestEngine(t *testing.T, n int, opts Options) (*Engine, *recordingDriver) {
	t.Helper()
	drv := &recordingDriver{}
	strip, err := led.NewStrip(n, drv)
	require.NoError(t, err)
	if opts.Rand == nil {
		opts.Rand = NewRand(42)
	}
	if opts.Sleeper == nil {
		opts.Sleeper = &fakeSleeper{}
	}
	opts.Log = zerolog.Nop()
	e, err := NewEngine(strip, opts)
	require.NoError(t, err)
	drv.coord = e.Coordinator()
	return e, drv
}

func lit(pixels []model.Color) int {
	n := 0
	for _, c := range pixels {
		if c != model.Off {
			n++
		}
	}
	return n
}

func fairy(n int) []model.Color {
	show := model.ShowColors()
	out := make([]model.Color, n)
	for i := range out {
		out[i] = show[i%len(show)]
	}
	return out
}

func allOff(n int) []model.Color { return make([]model.Color, n) }
