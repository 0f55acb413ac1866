package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iliyamo/methodcheck-testserver/internal/config"
	"github.com/iliyamo/methodcheck-testserver/internal/logger"
)

var log zerolog.Logger

var rootCmd = &cobra.Command{
	Use:   "methodcheck",
	Short: "Discover HTTP methods a URL advertises beyond the one it was requested with",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		l, err := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return err
		}
		log = l
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(observeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
