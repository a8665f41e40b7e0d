package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/tablebook/internal/config"
	"github.com/example/tablebook/internal/notify"
	"github.com/spf13/cobra"
)

func newWorkerCmd() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Deliver queued table-change notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if !cfg.Redis() {
				return errors.New("REDIS_ADDR is required for the worker")
			}
			log := config.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return notify.RunWorker(ctx, redisOpt(cfg), concurrency, log)
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 5, "concurrent notification handlers")
	return cmd
}
