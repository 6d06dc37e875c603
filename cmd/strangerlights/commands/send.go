package commands

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/coreman2200/funtimes-strangerlights/internal/app"
	"github.com/coreman2200/funtimes-strangerlights/internal/bus"
)

var sendTimeout time.Duration

var sendCmd = &cobra.Command{
	Use:   "send <text>...",
	Short: "Publish a message on the configured topic",
	Example: `  strangerlights send run
  strangerlights send --config porch.yaml "right here"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), sendTimeout)
		defer cancel()

		bc := app.BusConfig(cfg)
		pub, err := bus.NewPublisher(ctx, bc, log.Logger)
		if err != nil {
			return err
		}
		defer pub.Close()

		text := strings.Join(args, " ")
		if err := pub.Publish(ctx, bc.Topic, []byte(text)); err != nil {
			return err
		}
		log.Info().Str("topic", bc.Topic).Str("text", text).Msg("sent")
		return nil
	},
}

func init() {
	sendCmd.Flags().DurationVar(&sendTimeout, "timeout", 10*time.Second, "give up connecting after this long")
	rootCmd.AddCommand(sendCmd)
}
