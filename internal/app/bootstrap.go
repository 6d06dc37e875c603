package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/funtimes-strangerlights/internal/bus"
	"github.com/coreman2200/funtimes-strangerlights/internal/config"
	"github.com/coreman2200/funtimes-strangerlights/internal/led"
	"github.com/coreman2200/funtimes-strangerlights/internal/preview"
	"github.com/coreman2200/funtimes-strangerlights/internal/render"
)

// SubscribeFunc opens the message source.
type SubscribeFunc func(ctx context.Context, cfg bus.Config, log zerolog.Logger) (bus.Subscriber, error)

// Options swaps out collaborators, mostly for tests. Zero values use the
// configured hardware, the configured bus and wall-clock time.
type Options struct {
	Driver    led.Driver
	Subscribe SubscribeFunc
	Sleeper   render.Sleeper
	Rand      *render.Rand
}

type App struct {
	Cfg     *config.Config
	Strip   *led.Strip
	Eng     *render.Engine
	Preview *preview.Hub
	Driver  string

	subscribe SubscribeFunc
	log       zerolog.Logger
	closeOnce sync.Once
	closeErr  error
}

// OpenDriver picks the output device named by cfg.Strip.Driver. Hardware that
// cannot be opened degrades to the console (spi) or the simulator (pwm) with a
// warning, so the daemon still runs on a workstation.
func OpenDriver(cfg *config.Config, log zerolog.Logger) (led.Driver, string) {
	n := cfg.Strip.Length
	switch cfg.Strip.Driver {
	case "spi":
		freq := physic.Frequency(cfg.Strip.SPI.SpeedHz) * physic.Hertz
		drv, err := led.NewSPI(cfg.Strip.SPI.Dev, n, freq)
		if err != nil {
			log.Warn().Err(err).
				Str("driver", "spi").
				Str("dev", cfg.Strip.SPI.Dev).
				Int("speed_hz", cfg.Strip.SPI.SpeedHz).
				Msg("SPI init failed; falling back to console")
			return led.NewConsole(n), "console"
		}
		return drv, "spi"
	case "pwm":
		drv, err := led.NewPWM(cfg.Strip.GPIO, n, cfg.Strip.ColorOrder, cfg.Strip.Brightness)
		if err != nil {
			log.Warn().Err(err).
				Str("driver", "pwm").
				Int("gpio", cfg.Strip.GPIO).
				Msg("PWM init failed; falling back to SIM")
			return led.NewSim(log), "sim"
		}
		return drv, "pwm"
	case "console":
		return led.NewConsole(n), "console"
	default:
		return led.NewSim(log), "sim"
	}
}

func BusConfig(cfg *config.Config) bus.Config {
	return bus.Config{
		Kind:     cfg.Bus.Kind,
		Broker:   cfg.Bus.Broker,
		Topic:    cfg.Bus.Topic,
		ClientID: cfg.Bus.ClientID,
		Username: cfg.Bus.Username,
		Password: cfg.Bus.Password,
		RedisDB:  cfg.Bus.RedisDB,
	}
}

// New opens the strip and builds the engine. The bus is not touched until Run.
func New(cfg *config.Config, log zerolog.Logger, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &App{Cfg: cfg, subscribe: opts.Subscribe, log: log}
	if a.subscribe == nil {
		a.subscribe = bus.Subscribe
	}

	drv := opts.Driver
	a.Driver = "custom"
	if drv == nil {
		drv, a.Driver = OpenDriver(cfg, log)
	}
	if cfg.Preview.Addr != "" {
		a.Preview = preview.NewHub(cfg.Strip.Length, log)
		drv = led.Tee{drv, a.Preview}
	}

	strip, err := led.NewStrip(cfg.Strip.Length, drv)
	if err != nil {
		_ = drv.Close()
		return nil, err
	}
	a.Strip = strip

	a.Eng, err = render.NewEngine(strip, render.Options{
		Letters:         cfg.LetterMap(),
		BlinkOn:         cfg.Timing.BlinkOn,
		BlinkOff:        cfg.Timing.BlinkOff,
		MaxMessageRunes: cfg.MaxMessageRunes,
		Sleeper:         opts.Sleeper,
		Rand:            opts.Rand,
		Log:             log,
	})
	if err != nil {
		_ = strip.Close()
		return nil, err
	}

	if a.Preview != nil {
		a.Preview.SetDisplaying(a.Eng.Displaying)
		a.Preview.ListenAndServe(cfg.Preview.Addr)
	}
	log.Info().
		Str("driver", a.Driver).
		Int("length", cfg.Strip.Length).
		Str("letters", cfg.Letters.Map).
		Msg("strip ready")
	return a, nil
}

// Run connects to the bus, paints the ambient pattern and then runs the
// effects and message tasks until ctx ends or either task stops. The strip is
// switched off and closed on return.
func (a *App) Run(ctx context.Context) (err error) {
	defer func() {
		if cerr := a.Close(); err == nil {
			err = cerr
		}
	}()

	sub, err := a.subscribe(ctx, BusConfig(a.Cfg), a.log)
	if err != nil {
		return fmt.Errorf("bus: %w", err)
	}
	defer sub.Close()

	pattern, err := render.ParsePattern(a.Cfg.Ambient)
	if err != nil {
		return err
	}
	if err := a.Eng.Ambient(ctx, pattern); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("ambient: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tasks := map[string]func(context.Context) error{
		"effects": a.Eng.RunEffects,
		"messages": func(ctx context.Context) error {
			return a.Eng.RunMessages(ctx, sub)
		},
	}
	errc := make(chan error, len(tasks))
	var wg sync.WaitGroup
	for name, task := range tasks {
		wg.Add(1)
		go func(name string, task func(context.Context) error) {
			defer wg.Done()
			err := task(ctx)
			if err != nil {
				a.log.Error().Err(err).Str("task", name).Msg("task failed")
				err = fmt.Errorf("%s: %w", name, err)
			}
			// either task ending takes the other one down with it
			cancel()
			errc <- err
		}(name, task)
	}
	wg.Wait()
	close(errc)

	var errs []error
	for err := range errc {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close forces the strip off and releases the driver.
func (a *App) Close() error {
	a.closeOnce.Do(func() {
		a.closeErr = a.Strip.Close()
		a.log.Info().Msg("strip off")
	})
	return a.closeErr
}
