package render

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-strangerlights/model"
)

func TestParseSweep(t *testing.T) {
	for _, s := range []string{"index", "rgb", "letters"} {
		k, err := ParseSweep(s)
		require.NoError(t, err)
		assert.Equal(t, Sweep(s), k)
	}
	_, err := ParseSweep("plane_z")
	assert.Error(t, err)
}

func TestCalibrateIndex(t *testing.T) {
	s := &fakeSleeper{}
	e, drv := newTestEngine(t, 5, Options{Sleeper: s, Letters: model.NewLetterMap("a", '-')})

	require.NoError(t, e.Calibrate(context.Background(), SweepIndex, 250*time.Millisecond))

	frames := drv.Frames()
	require.Len(t, frames, 6)
	for i := 0; i < 5; i++ {
		want := allOff(5)
		want[i] = model.White
		assert.Equal(t, want, frames[i].pixels)
		assert.True(t, frames[i].held)
		assert.False(t, frames[i].displaying)
	}
	assert.Equal(t, allOff(5), frames[5].pixels)
	assert.Len(t, s.Slept(), 5)
	assert.False(t, e.Displaying())
}

func TestCalibrateRGB(t *testing.T) {
	e, drv := newTestEngine(t, 3, Options{Letters: model.NewLetterMap("a", '-')})
	require.NoError(t, e.Calibrate(context.Background(), SweepRGB, time.Second))

	frames := drv.Frames()
	require.Len(t, frames, 4)
	for k, c := range []model.Color{model.Red, model.Green, model.Blue} {
		assert.Equal(t, []model.Color{c, c, c}, frames[k].pixels)
	}
	assert.Equal(t, allOff(3), frames[3].pixels)
}

func TestCalibrateLetters(t *testing.T) {
	s := &fakeSleeper{}
	e, drv := newTestEngine(t, 12, Options{Sleeper: s, Letters: model.NewLetterMap(".......h..i", '.')})
	require.NoError(t, e.Calibrate(context.Background(), SweepLetters, 0))

	frames := drv.Frames()
	// off, h on, h off, i on, i off, final off
	require.Len(t, frames, 6)
	assert.Equal(t, model.White, frames[1].pixels[7])
	assert.Equal(t, model.White, frames[3].pixels[10])
	assert.Equal(t, []time.Duration{
		time.Second, 500 * time.Millisecond,
		time.Second, 500 * time.Millisecond,
	}, s.Slept())
}

func TestCalibrateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e, _ := newTestEngine(t, 4, Options{Letters: model.NewLetterMap("a", '-')})
	assert.ErrorIs(t, e.Calibrate(ctx, SweepIndex, time.Second), context.Canceled)
	assert.False(t, e.Displaying())
}
