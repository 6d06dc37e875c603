package render

import (
	"context"

	"github.com/coreman2200/funtimes-strangerlights/model"
)

// Flicker dims LED i on and off a random number of times. It gives way as
// soon as a display begins or ctx ends, and always leaves the LED in the
// color it had when called.
func (e *Engine) Flicker(ctx context.Context, i int) (err error) {
	orig, err := e.strip.Get(i)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := e.restore(i, orig); err == nil {
			err = rerr
		}
	}()

	// stagger so a round of flickers does not pulse in sync
	if e.sleep.Sleep(ctx, e.rnd.Seconds(1, 4)) != nil {
		return nil
	}
	for n := e.rnd.IntRange(1, 12); n > 0; n-- {
		if e.coord.Held() {
			return nil
		}
		if err := e.strip.Set(i, model.Off); err != nil {
			return err
		}
		if err := e.strip.Show(); err != nil {
			return err
		}
		if e.sleep.Sleep(ctx, e.rnd.Millis(10, 50)) != nil {
			return nil
		}
		if err := e.strip.Set(i, orig.Scale(e.rnd.Float64())); err != nil {
			return err
		}
		if err := e.strip.Show(); err != nil {
			return err
		}
		if e.sleep.Sleep(ctx, e.rnd.Millis(10, 80)) != nil {
			return nil
		}
	}
	return nil
}

func (e *Engine) restore(i int, c model.Color) error {
	if err := e.strip.Set(i, c); err != nil {
		return err
	}
	return e.strip.Show()
}
