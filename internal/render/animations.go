package render

import (
	"context"
	"fmt"

	"github.com/coreman2200/funtimes-strangerlights/model"
)

// Pattern names an ambient fill.
type Pattern string

const (
	PatternFairy   Pattern = "fairy"
	PatternRainbow Pattern = "rainbow"
	PatternOff     Pattern = "off"
)

func ParsePattern(s string) (Pattern, error) {
	switch p := Pattern(s); p {
	case PatternFairy, PatternRainbow, PatternOff:
		return p, nil
	default:
		return "", fmt.Errorf("unknown ambient pattern %q", s)
	}
}

// Rainbow spreads one turn of the hue wheel along the strip and flushes once.
func (e *Engine) Rainbow() error {
	n := e.strip.Len()
	for i := 0; i < n; i++ {
		if err := e.strip.Set(i, model.FromHSV(float64(i)/float64(n), 1, 1)); err != nil {
			return err
		}
	}
	return e.strip.Show()
}

// FairyLights cycles the show colors along the strip, writing the LEDs in a
// random order. With fadeIn every write is flushed and followed by a short
// random pause.
func (e *Engine) FairyLights(ctx context.Context, fadeIn bool) error {
	show := model.ShowColors()
	for _, i := range e.rnd.Perm(e.strip.Len()) {
		if err := e.strip.Set(i, show[i%len(show)]); err != nil {
			return err
		}
		if !fadeIn {
			continue
		}
		if err := e.strip.Show(); err != nil {
			return err
		}
		if err := e.sleep.Sleep(ctx, e.rnd.Millis(10, 80)); err != nil {
			return err
		}
	}
	return e.strip.Show()
}

// FadeOut switches the LEDs off one at a time in random order.
func (e *Engine) FadeOut(ctx context.Context) error {
	for _, i := range e.rnd.Perm(e.strip.Len()) {
		if err := e.strip.Set(i, model.Off); err != nil {
			return err
		}
		if err := e.strip.Show(); err != nil {
			return err
		}
		if err := e.sleep.Sleep(ctx, e.rnd.Millis(10, 80)); err != nil {
			return err
		}
	}
	return nil
}

// Blink lights LED i in c for the on time, then leaves it off for the off time.
func (e *Engine) Blink(ctx context.Context, i int, c model.Color) error {
	if err := e.strip.Set(i, c); err != nil {
		return err
	}
	if err := e.strip.Show(); err != nil {
		return err
	}
	if err := e.sleep.Sleep(ctx, e.blinkOn); err != nil {
		_ = e.strip.Set(i, model.Off)
		_ = e.strip.Show()
		return err
	}
	if err := e.strip.Set(i, model.Off); err != nil {
		return err
	}
	if err := e.strip.Show(); err != nil {
		return err
	}
	return e.sleep.Sleep(ctx, e.blinkOff)
}

// Off blanks the whole strip.
func (e *Engine) Off() error {
	return e.strip.Off()
}

// Ambient paints p while holding the strip, so no flicker round samples a
// half-drawn frame.
func (e *Engine) Ambient(ctx context.Context, p Pattern) error {
	if err := e.coord.Acquire(ctx); err != nil {
		return err
	}
	defer e.coord.Release()

	e.log.Debug().Str("pattern", string(p)).Msg("ambient")
	switch p {
	case PatternRainbow:
		return e.Rainbow()
	case PatternOff:
		return e.Off()
	default:
		return e.FairyLights(ctx, false)
	}
}
