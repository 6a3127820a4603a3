package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/akbarishahpar/tgmvc/internal/logutil"
	"github.com/akbarishahpar/tgmvc/internal/retryutil"
	"github.com/akbarishahpar/tgmvc/webhook"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the webhook endpoint and register it with the platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			router, client, settings, err := buildEngine(logger)
			if err != nil {
				return err
			}

			endpoint := strings.TrimRight(settings.WebhookEndpoint, "/")
			if endpoint == "" {
				return fmt.Errorf("missing bot.webhook_endpoint (the public base URL the platform delivers to)")
			}
			webhookURL := fmt.Sprintf("%s/bot/%s", endpoint, settings.Token)

			srv, err := webhook.NewServer(webhook.Options{
				Bind:    viper.GetString("server.bind"),
				Port:    viper.GetInt("server.port"),
				Token:   settings.Token,
				Handler: router,
				Logger:  logger,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			registerCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err = client.SetWebhook(registerCtx, webhookURL)
			cancel()
			if err != nil {
				// The endpoint serves regardless; registration retries in
				// the background so a flaky network does not kill startup.
				logger.Warn("webhook_register_error", "error", err.Error())
				retryutil.AsyncRetry(logger, "webhook_register", 5*time.Second, 30*time.Second, func(retryCtx context.Context) error {
					return client.SetWebhook(retryCtx, webhookURL)
				})
			} else {
				logger.Info("webhook_registered", "endpoint", endpoint)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().String("server-bind", "0.0.0.0", "Bind address for the webhook listener.")
	cmd.Flags().Int("server-port", 8443, "Port for the webhook listener.")
	_ = viper.BindPFlag("server.bind", cmd.Flags().Lookup("server-bind"))
	_ = viper.BindPFlag("server.port", cmd.Flags().Lookup("server-port"))

	return cmd
}
