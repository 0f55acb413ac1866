package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/methodcheck-testserver/internal/config"
	"github.com/iliyamo/methodcheck-testserver/internal/queue"
)

var observeDir string

// observeCmd consumes published findings into a log file until interrupted.
var observeCmd = &cobra.Command{
	Use:   "observe",
	Short: "Consume published findings and append them to a log file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fcfg := config.LoadFindingsConfig()
		log.Info().Str("dir", observeDir).Msg("observing findings")
		err := queue.StartFindingConsumer(ctx, fcfg.BrokerURL, observeDir, log)
		if errors.Is(err, context.Canceled) {
			log.Info().Msg("observer stopped")
			return nil
		}
		return err
	},
}

func init() {
	observeCmd.Flags().StringVar(&observeDir, "dir", "logs", "directory for "+queue.LogFileName)
}
