package led

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-strangerlights/model"
)

// Sim keeps the last frame in memory and logs a compact summary per frame,
// useful headless and in tests.
type Sim struct {
	mu     sync.Mutex
	log    zerolog.Logger
	frames uint64
	last   []model.Color
	closed bool
}

func NewSim(log zerolog.Logger) *Sim {
	return &Sim{log: log}
}

func (s *Sim) Write(frame []model.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames++
	s.last = append(s.last[:0], frame...)

	lit := 0
	for _, c := range frame {
		if c != model.Off {
			lit++
		}
	}
	s.log.Trace().Uint64("frame", s.frames).Int("lit", lit).Int("count", len(frame)).Msg("sim frame")
	return nil
}

func (s *Sim) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

func (s *Sim) Last() []model.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Color(nil), s.last...)
}

func (s *Sim) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Sim) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
