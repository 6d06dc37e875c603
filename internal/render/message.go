package render

import (
	"context"
	"errors"
	"strings"

	"github.com/coreman2200/funtimes-strangerlights/internal/bus"
	"github.com/coreman2200/funtimes-strangerlights/model"
)

// ShowMessage spells text on the strip: fade to dark, blink each letter the
// letter map knows in a color drawn from the show colors (never white or
// off), then fade the fairy lights back in. Unknown runes are skipped without delay. Effects are held off for the
// whole sequence and released on every exit path.
func (e *Engine) ShowMessage(ctx context.Context, text string) error {
	if err := e.coord.BeginDisplay(ctx); err != nil {
		return err
	}
	defer e.coord.EndDisplay()

	runes := []rune(strings.ToLower(text))
	if e.maxRunes > 0 && len(runes) > e.maxRunes {
		e.log.Warn().Int("runes", len(runes)).Int("max", e.maxRunes).Msg("message truncated")
		runes = runes[:e.maxRunes]
	}
	e.log.Info().Str("text", string(runes)).Msg("showing message")

	if err := e.FadeOut(ctx); err != nil {
		return err
	}
	if err := e.Off(); err != nil {
		return err
	}
	if err := e.sleep.Sleep(ctx, e.pause); err != nil {
		return err
	}

	palette := model.ShowColors()
	for _, r := range runes {
		i, ok := e.letters.Index(r)
		if !ok {
			continue
		}
		c := palette[e.rnd.IntRange(0, len(palette)-1)]
		e.log.Debug().Str("letter", string(r)).Int("led", i).Stringer("color", c).Msg("blink")
		if err := e.Blink(ctx, i, c); err != nil {
			return err
		}
	}

	if err := e.sleep.Sleep(ctx, e.pause); err != nil {
		return err
	}
	return e.FairyLights(ctx, true)
}

// RunMessages shows every message sub delivers, one at a time, until ctx ends
// or the bus fails. Cancellation returns nil.
func (e *Engine) RunMessages(ctx context.Context, sub bus.Subscriber) error {
	e.log.Info().Msg("message task started")
	defer e.log.Info().Msg("message task stopped")
	for {
		m, err := sub.Next(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, bus.ErrClosed) {
				return nil
			}
			e.log.Error().Err(err).Msg("bus receive")
			return err
		}
		e.log.Debug().Str("topic", m.Topic).Bytes("payload", m.Payload).Msg("message received")
		if err := e.ShowMessage(ctx, string(m.Payload)); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}
