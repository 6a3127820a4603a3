package bot

import "time"

// RateLimitSettings throttles per-chat request frequency. Message is the
// notice shown on a limited callback tap; it is skipped when empty.
type RateLimitSettings struct {
	Delay   time.Duration
	Message string
}

// Settings is the engine configuration. The engine consumes it; loading it
// from flags/env/file is the binary's concern.
type Settings struct {
	// Token is the bot's secret token; it terminates the webhook path and
	// authenticates against the platform API.
	Token string

	// AreaName is the route-namespace prefix (e.g. "/bot"). Resolved paths
	// not already under it get it prepended. Empty disables prefixing.
	AreaName string

	// WebhookEndpoint is the public base URL the platform delivers to.
	WebhookEndpoint string

	HistoryLevel HistoryLevel

	// RateLimit is nil when throttling is disabled.
	RateLimit *RateLimitSettings

	// ProxyURL is passed through to the gateway client factory; the engine
	// never interprets it.
	ProxyURL string
}
