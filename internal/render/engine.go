package render

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-strangerlights/internal/led"
	"github.com/coreman2200/funtimes-strangerlights/model"
)

const (
	DefaultBlinkOn  = 1000 * time.Millisecond
	DefaultBlinkOff = 500 * time.Millisecond
	DefaultPause    = time.Second
)

// Options tunes an Engine. Zero values fall back to the defaults above, the
// default letter map, wall-clock sleeps and a time-seeded Rand.
type Options struct {
	Letters         model.LetterMap
	BlinkOn         time.Duration
	BlinkOff        time.Duration
	Pause           time.Duration
	MaxMessageRunes int

	Sleeper Sleeper
	Rand    *Rand
	Log     zerolog.Logger
}

// Engine owns everything the animation tasks share: the strip, the
// coordination state and the random/time sources.
type Engine struct {
	strip *led.Strip
	coord *Coordinator

	letters  model.LetterMap
	blinkOn  time.Duration
	blinkOff time.Duration
	pause    time.Duration
	maxRunes int

	sleep Sleeper
	rnd   *Rand
	log   zerolog.Logger
}

func NewEngine(strip *led.Strip, opts Options) (*Engine, error) {
	if strip == nil {
		return nil, errors.New("nil strip")
	}
	e := &Engine{
		strip:    strip,
		coord:    NewCoordinator(),
		letters:  opts.Letters,
		blinkOn:  opts.BlinkOn,
		blinkOff: opts.BlinkOff,
		pause:    opts.Pause,
		maxRunes: opts.MaxMessageRunes,
		sleep:    opts.Sleeper,
		rnd:      opts.Rand,
		log:      opts.Log,
	}
	if e.letters.Len() == 0 {
		e.letters = model.DefaultLetterMap()
	}
	if err := e.letters.Validate(strip.Len()); err != nil {
		return nil, fmt.Errorf("letters: %w", err)
	}
	if e.blinkOn <= 0 {
		e.blinkOn = DefaultBlinkOn
	}
	if e.blinkOff <= 0 {
		e.blinkOff = DefaultBlinkOff
	}
	if e.pause <= 0 {
		e.pause = DefaultPause
	}
	if e.sleep == nil {
		e.sleep = TimerSleeper
	}
	if e.rnd == nil {
		e.rnd = NewRand(uint64(time.Now().UnixNano()))
	}
	return e, nil
}

func (e *Engine) Strip() *led.Strip { return e.strip }

func (e *Engine) Coordinator() *Coordinator { return e.coord }

func (e *Engine) Displaying() bool { return e.coord.Displaying() }
