package commands

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/coreman2200/funtimes-strangerlights/internal/app"
	"github.com/coreman2200/funtimes-strangerlights/internal/render"
)

var offCmd = &cobra.Command{
	Use:   "off",
	Short: "Switch every bulb off and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := app.New(cfg, log.Logger, app.Options{})
		if err != nil {
			return err
		}
		return a.Close()
	},
}

var rainbowCmd = &cobra.Command{
	Use:   "rainbow",
	Short: "Show the rainbow fill until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := app.New(cfg, log.Logger, app.Options{})
		if err != nil {
			return err
		}
		defer func() {
			if cerr := a.Close(); err == nil {
				err = cerr
			}
		}()

		ctx, stop := signalContext(cmd.Context())
		defer stop()
		if err := a.Eng.Ambient(ctx, render.PatternRainbow); err != nil {
			return err
		}
		log.Info().Msg("rainbow up; interrupt to switch off")
		<-ctx.Done()
		return nil
	},
}

var sweepStep time.Duration

var sweepCmd = &cobra.Command{
	Use:   "sweep [index|rgb|letters]",
	Short: "Run a wiring check across the strip",
	Long: `sweep walks a white LED along the strip (index), floods it with each
primary (rgb) or blinks every letter where the letter map places it (letters),
then switches the strip off.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(render.SweepIndex), string(render.SweepRGB), string(render.SweepLetters)},
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		kind := render.SweepIndex
		if len(args) == 1 {
			if kind, err = render.ParseSweep(args[0]); err != nil {
				return err
			}
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := app.New(cfg, log.Logger, app.Options{})
		if err != nil {
			return err
		}
		defer func() {
			if cerr := a.Close(); err == nil {
				err = cerr
			}
		}()

		ctx, stop := signalContext(cmd.Context())
		defer stop()
		return a.Eng.Calibrate(ctx, kind, sweepStep)
	},
}

func init() {
	sweepCmd.Flags().DurationVar(&sweepStep, "step", 500*time.Millisecond, "dwell per LED or color")
	rootCmd.AddCommand(offCmd, rainbowCmd, sweepCmd)
}
