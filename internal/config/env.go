package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvHome           = "TASKWISER_HOME"
	EnvProviderURL    = "TASKWISER_PROVIDER_URL"
	EnvDefaultToken   = "TASKWISER_DEFAULT_TOKEN"
	EnvAllowedTokens  = "TASKWISER_ALLOWED_TOKENS"
	EnvConfirmations  = "TASKWISER_CONFIRMATIONS"
	EnvDatabaseURL    = "TASKWISER_DATABASE_URL"
	EnvWebhookURL     = "TASKWISER_WEBHOOK_URL"
	EnvWebhookToken   = "TASKWISER_WEBHOOK_TOKEN" // #nosec G101 -- env var name, not a credential
	EnvDiscordWebhook = "TASKWISER_DISCORD_WEBHOOK"
	EnvAPIListen      = "TASKWISER_API_LISTEN"
	EnvJWTSecret      = "TASKWISER_JWT_SECRET" // #nosec G101 -- env var name, not a credential
	EnvOutputFormat   = "TASKWISER_OUTPUT_FORMAT"
	EnvVerbose        = "TASKWISER_VERBOSE"
	EnvLogLevel       = "TASKWISER_LOG_LEVEL"
	EnvNoColor        = "NO_COLOR"
)

// LoadDotEnv loads variables from .env files without overriding the
// environment. Missing files are ignored.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		_ = godotenv.Load()
		return
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// ApplyEnvironment applies environment variable overrides to the configuration.
//
//nolint:gocognit,gocyclo // Environment variable overrides require sequential checks
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}

	if v := os.Getenv(EnvProviderURL); v != "" {
		if u := SanitizeURL(v); u != "" {
			cfg.Provider.URL = u
		}
	}

	if v := os.Getenv(EnvDefaultToken); v != "" {
		cfg.Payout.DefaultToken = strings.ToUpper(strings.TrimSpace(v))
	}

	if v := os.Getenv(EnvAllowedTokens); v != "" {
		cfg.Payout.AllowedTokens = splitList(v)
	}

	if v := os.Getenv(EnvConfirmations); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Payout.Confirmations = n
		}
	}

	if v := os.Getenv(EnvDatabaseURL); v != "" {
		cfg.Store.Driver = StorePostgres
		cfg.Store.DSN = strings.TrimSpace(v)
	}

	if v := os.Getenv(EnvWebhookURL); v != "" {
		cfg.Notify.WebhookURL = SanitizeURL(v)
	}

	if v := os.Getenv(EnvWebhookToken); v != "" {
		cfg.Notify.WebhookToken = v
	}

	if v := os.Getenv(EnvDiscordWebhook); v != "" {
		cfg.Notify.DiscordWebhook = SanitizeURL(v)
	}

	if v := os.Getenv(EnvAPIListen); v != "" {
		cfg.API.Listen = strings.TrimSpace(v)
	}

	if v := os.Getenv(EnvJWTSecret); v != "" {
		cfg.API.JWTSecret = v
	}

	if v := os.Getenv(EnvOutputFormat); v != "" {
		cfg.Output.DefaultFormat = strings.ToLower(v)
	}

	if v := os.Getenv(EnvVerbose); v != "" {
		cfg.Output.Verbose = parseBool(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	if _, ok := os.LookupEnv(EnvNoColor); ok {
		cfg.Output.Color = "never"
	}
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.ToUpper(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// SanitizeURL trims copy-paste artifacts from a URL and returns "" if the
// result is not an absolute http(s) URL.
func SanitizeURL(raw string) string {
	raw = strings.Trim(strings.TrimSpace(raw), `"'`)
	raw = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == ' ' {
			return -1
		}
		return r
	}, raw)

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	return u.String()
}
