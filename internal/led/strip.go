package led

import (
	"errors"
	"fmt"
	"sync"

	"github.com/coreman2200/funtimes-strangerlights/model"
)

var ErrIndexOutOfRange = errors.New("led index out of range")

// Strip is the in-memory pixel buffer bound to one driver. Writes only touch
// the buffer; Show pushes the whole buffer to the driver.
type Strip struct {
	mu  sync.Mutex
	buf []model.Color
	drv Driver
}

func NewStrip(count int, drv Driver) (*Strip, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	if drv == nil {
		return nil, errors.New("nil driver")
	}
	return &Strip{buf: make([]model.Color, count), drv: drv}, nil
}

func (s *Strip) Len() int { return len(s.buf) }

func (s *Strip) check(i int) error {
	if i < 0 || i >= len(s.buf) {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, i, len(s.buf))
	}
	return nil
}

func (s *Strip) Set(i int, c model.Color) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.mu.Lock()
	s.buf[i] = c
	s.mu.Unlock()
	return nil
}

func (s *Strip) SetRGB(i int, r, g, b uint8) error {
	return s.Set(i, model.RGB(r, g, b))
}

func (s *Strip) Get(i int) (model.Color, error) {
	if err := s.check(i); err != nil {
		return model.Off, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf[i], nil
}

func (s *Strip) Fill(c model.Color) {
	s.mu.Lock()
	for i := range s.buf {
		s.buf[i] = c
	}
	s.mu.Unlock()
}

// Show flushes the buffer to the driver. Driver failures are returned as is
// (wrapped); there is no retry here.
func (s *Strip) Show() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	frame := make([]model.Color, len(s.buf))
	copy(frame, s.buf)
	if err := s.drv.Write(frame); err != nil {
		return fmt.Errorf("show: %w", err)
	}
	return nil
}

// Off switches every LED off and flushes.
func (s *Strip) Off() error {
	s.Fill(model.Off)
	return s.Show()
}

// Snapshot returns a copy of the buffer.
func (s *Strip) Snapshot() []model.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Color, len(s.buf))
	copy(out, s.buf)
	return out
}

// Close forces the strip off and releases the driver.
func (s *Strip) Close() error {
	offErr := s.Off()
	return errors.Join(offErr, s.drv.Close())
}
