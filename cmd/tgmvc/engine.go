package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/akbarishahpar/tgmvc/bot"
	"github.com/akbarishahpar/tgmvc/examples/ticketbot"
	"github.com/akbarishahpar/tgmvc/store/filestore"
	"github.com/akbarishahpar/tgmvc/store/gormstore"
	"github.com/akbarishahpar/tgmvc/telegramapi"
)

func settingsFromViper() (bot.Settings, error) {
	token := strings.TrimSpace(viper.GetString("bot.token"))
	if token == "" {
		return bot.Settings{}, fmt.Errorf("missing bot.token (set via --bot-token or %s_BOT_TOKEN)", envPrefix)
	}

	history, err := bot.ParseHistoryLevel(viper.GetString("bot.history_level"))
	if err != nil {
		return bot.Settings{}, err
	}

	settings := bot.Settings{
		Token:           token,
		AreaName:        strings.TrimSpace(viper.GetString("bot.area_name")),
		WebhookEndpoint: strings.TrimSpace(viper.GetString("bot.webhook_endpoint")),
		HistoryLevel:    history,
		ProxyURL:        strings.TrimSpace(viper.GetString("bot.proxy.url")),
	}

	if delay := viper.GetInt("bot.rate_limit.delay_seconds"); delay > 0 {
		settings.RateLimit = &bot.RateLimitSettings{
			Delay:   time.Duration(delay) * time.Second,
			Message: viper.GetString("bot.rate_limit.message"),
		}
	}
	return settings, nil
}

func storeFromViper() (bot.ChatStore, error) {
	driver := strings.ToLower(strings.TrimSpace(viper.GetString("store.driver")))
	switch driver {
	case "", "memory":
		return bot.NewMemoryChatStore(0), nil
	case "file":
		return filestore.Open(viper.GetString("store.path"))
	case "sqlite":
		return gormstore.OpenSQLite(viper.GetString("store.dsn"))
	default:
		return nil, fmt.Errorf("unknown store.driver %q (want memory|file|sqlite)", driver)
	}
}

func clientFromSettings(settings bot.Settings) (*telegramapi.Client, error) {
	httpClient, err := telegramapi.NewHTTPClient(settings.ProxyURL)
	if err != nil {
		return nil, err
	}
	return telegramapi.New(httpClient, viper.GetString("bot.api_base_url"), settings.Token), nil
}

// buildEngine assembles the router with the demo ticket flow bound.
func buildEngine(logger *slog.Logger) (*bot.Router, *telegramapi.Client, bot.Settings, error) {
	settings, err := settingsFromViper()
	if err != nil {
		return nil, nil, bot.Settings{}, err
	}
	store, err := storeFromViper()
	if err != nil {
		return nil, nil, bot.Settings{}, err
	}
	client, err := clientFromSettings(settings)
	if err != nil {
		return nil, nil, bot.Settings{}, err
	}

	mux := bot.NewMux()
	ticketbot.Register(mux, ticketbot.NewService())

	router, err := bot.NewRouter(bot.RouterOptions{
		Settings:   settings,
		Mux:        mux,
		Gateway:    client,
		Store:      store,
		MessageLog: &bot.SlogMessageLog{Logger: logger},
		Logger:     logger,
	})
	if err != nil {
		return nil, nil, bot.Settings{}, err
	}
	return router, client, settings, nil
}
