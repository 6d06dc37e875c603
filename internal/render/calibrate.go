package render

import (
	"context"
	"fmt"
	"time"

	"github.com/coreman2200/funtimes-strangerlights/model"
)

// Sweep names a wiring check.
type Sweep string

const (
	SweepIndex   Sweep = "index"   // one white LED walking the strip
	SweepRGB     Sweep = "rgb"     // whole strip red, then green, then blue
	SweepLetters Sweep = "letters" // blink a..z where the letter map puts them
)

func ParseSweep(s string) (Sweep, error) {
	switch k := Sweep(s); k {
	case SweepIndex, SweepRGB, SweepLetters:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sweep %q", s)
	}
}

// Calibrate runs a sweep while holding the strip and leaves it off. step is
// the dwell per index or channel; the letters sweep uses the blink timing.
func (e *Engine) Calibrate(ctx context.Context, kind Sweep, step time.Duration) error {
	if err := e.coord.Acquire(ctx); err != nil {
		return err
	}
	defer e.coord.Release()

	e.log.Info().Str("sweep", string(kind)).Msg("calibrating")
	var err error
	switch kind {
	case SweepIndex:
		err = e.sweepIndex(ctx, step)
	case SweepRGB:
		err = e.sweepRGB(ctx, step)
	case SweepLetters:
		err = e.sweepLetters(ctx)
	default:
		err = fmt.Errorf("unknown sweep %q", kind)
	}
	if err != nil {
		return err
	}
	return e.Off()
}

func (e *Engine) sweepIndex(ctx context.Context, step time.Duration) error {
	for i := 0; i < e.strip.Len(); i++ {
		e.strip.Fill(model.Off)
		if err := e.strip.Set(i, model.White); err != nil {
			return err
		}
		if err := e.strip.Show(); err != nil {
			return err
		}
		if err := e.sleep.Sleep(ctx, step); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) sweepRGB(ctx context.Context, step time.Duration) error {
	for _, c := range []model.Color{model.Red, model.Green, model.Blue} {
		e.strip.Fill(c)
		if err := e.strip.Show(); err != nil {
			return err
		}
		if err := e.sleep.Sleep(ctx, step); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) sweepLetters(ctx context.Context) error {
	if err := e.Off(); err != nil {
		return err
	}
	for r := 'a'; r <= 'z'; r++ {
		i, ok := e.letters.Index(r)
		if !ok {
			continue
		}
		if err := e.Blink(ctx, i, model.White); err != nil {
			return err
		}
	}
	return nil
}
