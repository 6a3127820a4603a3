package main

import (
	"time"

	"github.com/spf13/viper"
)

func initViperDefaults() {
	// Bot
	viper.SetDefault("bot.token", "")
	viper.SetDefault("bot.area_name", "")
	viper.SetDefault("bot.webhook_endpoint", "")
	viper.SetDefault("bot.history_level", "keep")
	viper.SetDefault("bot.rate_limit.delay_seconds", 0)
	viper.SetDefault("bot.rate_limit.message", "Too many requests, please slow down.")
	viper.SetDefault("bot.proxy.url", "")
	viper.SetDefault("bot.api_base_url", "")

	// Webhook server
	viper.SetDefault("server.bind", "0.0.0.0")
	viper.SetDefault("server.port", 8443)

	// Long polling
	viper.SetDefault("poll.timeout", 30*time.Second)
	viper.SetDefault("poll.max_concurrency", 4)

	// State store
	viper.SetDefault("store.driver", "memory")
	viper.SetDefault("store.path", "./tgmvc_chats.json")
	viper.SetDefault("store.dsn", "./tgmvc.sqlite")

	// Logging
	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.add_source", false)
}
