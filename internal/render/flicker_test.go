package render

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-strangerlights/internal/led"
	"github.com/coreman2200/funtimes-strangerlights/model"
)

func TestFlickerCompletesRestored(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		s := &fakeSleeper{}
		e, drv := newTestEngine(t, 50, Options{Sleeper: s, Rand: NewRand(seed)})
		require.NoError(t, e.Strip().Set(3, model.Turquoise))

		require.NoError(t, e.Flicker(context.Background(), 3))

		c, err := e.Strip().Get(3)
		require.NoError(t, err)
		assert.Equal(t, model.Turquoise, c)

		frames := drv.Frames()
		require.NotEmpty(t, frames)
		assert.Equal(t, model.Turquoise, frames[len(frames)-1].pixels[3], "restore is flushed")

		slept := s.Slept()
		require.NotEmpty(t, slept)
		assert.GreaterOrEqual(t, slept[0], time.Second)
		assert.LessOrEqual(t, slept[0], 4*time.Second)
		iterations := (len(slept) - 1) / 2
		assert.GreaterOrEqual(t, iterations, 1)
		assert.LessOrEqual(t, iterations, 12)
		// off, dimmed, ... then restore
		assert.Len(t, frames, iterations*2+1)
		for k := 0; k < iterations; k++ {
			assert.Equal(t, model.Off, frames[2*k].pixels[3])
			dim := frames[2*k+1].pixels[3]
			assert.LessOrEqual(t, dim.R(), model.Turquoise.R())
			assert.LessOrEqual(t, dim.G(), model.Turquoise.G())
			assert.LessOrEqual(t, dim.B(), model.Turquoise.B())
		}
		for _, d := range slept[1:] {
			assert.GreaterOrEqual(t, d, 10*time.Millisecond)
			assert.LessOrEqual(t, d, 80*time.Millisecond)
		}
	}
}

func TestFlickerTouchesOnlyItsLED(t *testing.T) {
	e, drv := newTestEngine(t, 50, Options{})
	require.NoError(t, e.FairyLights(context.Background(), false))
	drv.Reset()

	require.NoError(t, e.Flicker(context.Background(), 20))
	want := fairy(50)
	for _, f := range drv.Frames() {
		for i, c := range f.pixels {
			if i != 20 {
				assert.Equal(t, want[i], c)
			}
		}
	}
}

func TestFlickerAbortsWhenDisplayBegins(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		var e *Engine
		s := &fakeSleeper{}
		s.hook = func(n int, _ time.Duration) {
			// stagger, off, dim: a message starts mid-loop
			if n == 3 {
				require.NoError(t, e.Coordinator().BeginDisplay(context.Background()))
			}
		}
		e, drv := newTestEngine(t, 50, Options{Sleeper: s, Rand: NewRand(seed)})
		require.NoError(t, e.Strip().Set(9, model.Orange))

		require.NoError(t, e.Flicker(context.Background(), 9))

		assert.Len(t, s.Slept(), 3, "no further iteration once displaying")
		c, err := e.Strip().Get(9)
		require.NoError(t, err)
		assert.Equal(t, model.Orange, c)
		frames := drv.Frames()
		assert.Equal(t, model.Orange, frames[len(frames)-1].pixels[9])
		e.Coordinator().EndDisplay()
	}
}

func TestFlickerAbortsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &fakeSleeper{hook: func(n int, _ time.Duration) {
		if n == 2 {
			cancel()
		}
	}}
	e, drv := newTestEngine(t, 50, Options{Sleeper: s})
	require.NoError(t, e.Strip().Set(0, model.Green))

	require.NoError(t, e.Flicker(ctx, 0))
	frames := drv.Frames()
	require.Len(t, frames, 2, "the off flush, then the restore")
	assert.Equal(t, model.Off, frames[0].pixels[0])
	assert.Equal(t, model.Green, frames[1].pixels[0])
}

func TestFlickerAbortsDuringStagger(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e, drv := newTestEngine(t, 50, Options{})
	require.NoError(t, e.Strip().Set(0, model.Green))

	require.NoError(t, e.Flicker(ctx, 0))
	frames := drv.Frames()
	require.Len(t, frames, 1)
	assert.Equal(t, model.Green, frames[0].pixels[0])
}

func TestFlickerDeviceError(t *testing.T) {
	e, drv := newTestEngine(t, 50, Options{})
	boom := errors.New("render failed")
	drv.Fail(boom)
	assert.ErrorIs(t, e.Flicker(context.Background(), 0), boom)
}

func TestFlickerOutOfRange(t *testing.T) {
	e, drv := newTestEngine(t, 50, Options{})
	assert.ErrorIs(t, e.Flicker(context.Background(), -1), led.ErrIndexOutOfRange)
	assert.Zero(t, drv.Count())
}
