package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/akbarishahpar/tgmvc/internal/logutil"
	"github.com/akbarishahpar/tgmvc/poller"
)

func newPollCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Drive the bot from getUpdates long polling (no public endpoint needed)",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			router, client, _, err := buildEngine(logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Polling and an active webhook are mutually exclusive on the
			// platform side.
			unregisterCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err = client.DeleteWebhook(unregisterCtx, false)
			cancel()
			if err != nil {
				logger.Warn("webhook_unregister_error", "error", err.Error())
			}

			p, err := poller.New(poller.Options{
				Client:         client,
				Handler:        router,
				Timeout:        viper.GetDuration("poll.timeout"),
				MaxConcurrency: viper.GetInt("poll.max_concurrency"),
				Logger:         logger,
			})
			if err != nil {
				return err
			}
			return p.Run(ctx)
		},
	}

	cmd.Flags().Duration("poll-timeout", 30*time.Second, "Long polling timeout for getUpdates.")
	cmd.Flags().Int("poll-max-concurrency", 4, "Max updates processed concurrently across chats.")
	_ = viper.BindPFlag("poll.timeout", cmd.Flags().Lookup("poll-timeout"))
	_ = viper.BindPFlag("poll.max_concurrency", cmd.Flags().Lookup("poll-max-concurrency"))

	return cmd
}
