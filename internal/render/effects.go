package render

import (
	"context"
	"errors"
	"sync"
)

// RunEffects keeps the strip alive between messages: rounds of concurrent
// flickers on N/8 distinct LEDs, 1-4s apart, skipped while displaying.
// It returns nil once ctx is done and the first device error otherwise.
func (e *Engine) RunEffects(ctx context.Context) error {
	e.log.Info().Int("per_round", e.strip.Len()/8).Msg("effects started")
	defer e.log.Info().Msg("effects stopped")
	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := e.flickerRound(ctx); err != nil {
			return err
		}
		if e.sleep.Sleep(ctx, e.rnd.Seconds(1, 4)) != nil {
			return nil
		}
	}
}

func (e *Engine) flickerRound(ctx context.Context) error {
	rctx, end, ok := e.coord.BeginRound(ctx)
	if !ok {
		return nil
	}
	defer end()

	targets := e.rnd.Sample(e.strip.Len(), e.strip.Len()/8)
	e.log.Trace().Ints("leds", targets).Msg("flicker round")

	errs := make([]error, len(targets))
	var wg sync.WaitGroup
	for k, i := range targets {
		wg.Add(1)
		go func(k, i int) {
			defer wg.Done()
			errs[k] = e.Flicker(rctx, i)
		}(k, i)
	}
	wg.Wait()
	return errors.Join(errs...)
}
