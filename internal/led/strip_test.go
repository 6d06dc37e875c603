package led

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-strangerlights/model"
)

// fakeDriver captures every frame written.
type fakeDriver struct {
	frames [][]model.Color
	err    error
	closed bool
}

func (d *fakeDriver) Write(frame []model.Color) error {
	if d.err != nil {
		return d.err
	}
	d.frames = append(d.frames, frame)
	return nil
}

func (d *fakeDriver) Close() error {
	d.closed = true
	return nil
}

func TestNewStrip(t *testing.T) {
	_, err := NewStrip(0, &fakeDriver{})
	assert.Error(t, err)
	_, err = NewStrip(5, nil)
	assert.Error(t, err)

	s, err := NewStrip(5, &fakeDriver{})
	require.NoError(t, err)
	assert.Equal(t, 5, s.Len())
	assert.Equal(t, make([]model.Color, 5), s.Snapshot())
}

func TestStripSetGetShow(t *testing.T) {
	drv := &fakeDriver{}
	s, err := NewStrip(3, drv)
	require.NoError(t, err)

	require.NoError(t, s.Set(0, model.Red))
	require.NoError(t, s.SetRGB(2, 1, 2, 3))
	assert.Empty(t, drv.frames, "set must not flush")

	c, err := s.Get(2)
	require.NoError(t, err)
	assert.Equal(t, model.RGB(1, 2, 3), c)

	require.NoError(t, s.Show())
	require.Len(t, drv.frames, 1)
	assert.Equal(t, []model.Color{model.Red, model.Off, model.RGB(1, 2, 3)}, drv.frames[0])

	// the driver gets a copy, later writes do not leak into it
	require.NoError(t, s.Set(0, model.Blue))
	assert.Equal(t, model.Red, drv.frames[0][0])
}

func TestStripOutOfRange(t *testing.T) {
	s, err := NewStrip(3, &fakeDriver{})
	require.NoError(t, err)

	for _, i := range []int{-1, 3, 100} {
		assert.ErrorIs(t, s.Set(i, model.Red), ErrIndexOutOfRange)
		_, err := s.Get(i)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	}
}

func TestStripShowPropagatesDriverError(t *testing.T) {
	boom := errors.New("spi write: broken pipe")
	s, err := NewStrip(2, &fakeDriver{err: boom})
	require.NoError(t, err)
	assert.ErrorIs(t, s.Show(), boom)
}

func TestStripOffAndClose(t *testing.T) {
	drv := &fakeDriver{}
	s, err := NewStrip(4, drv)
	require.NoError(t, err)
	s.Fill(model.Green)
	require.NoError(t, s.Show())

	require.NoError(t, s.Close())
	assert.True(t, drv.closed)
	require.Len(t, drv.frames, 2)
	assert.Equal(t, make([]model.Color, 4), drv.frames[1])
}

func TestTee(t *testing.T) {
	a, b := &fakeDriver{}, &fakeDriver{}
	sim := NewSim(zerolog.Nop())
	tee := Tee{a, b, sim}

	frame := []model.Color{model.Purple, model.Off}
	require.NoError(t, tee.Write(frame))
	assert.Len(t, a.frames, 1)
	assert.Len(t, b.frames, 1)
	assert.Equal(t, uint64(1), sim.Frames())
	assert.Equal(t, frame, sim.Last())

	boom := errors.New("boom")
	b.err = boom
	assert.ErrorIs(t, tee.Write(frame), boom)
	assert.Len(t, a.frames, 2, "one failing driver does not starve the others")

	require.NoError(t, tee.Close())
	assert.True(t, a.closed)
	assert.True(t, sim.Closed())
}
