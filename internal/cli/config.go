package cli

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Asad272002/TaskWiser-V2/internal/config"
	"github.com/Asad272002/TaskWiser-V2/internal/output"
	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

// configCmd is the parent command for configuration operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and modify TaskWiser configuration settings.`,
}

// configInitCmd initializes the configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a default configuration file at ~/.taskwiser/config.yaml.

If a configuration file already exists, this command will not overwrite it
unless --force is specified.`,
	Example: `  taskwiser config init
  taskwiser config init --force`,
	RunE: runConfigInit,
}

// configShowCmd shows the current configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the effective configuration after environment overrides.
Secrets are masked.`,
	Example: `  taskwiser config show
  taskwiser config show -o json`,
	RunE: runConfigShow,
}

// configGetCmd gets a specific configuration value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configGetCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Get a configuration value",
	Long: `Get a specific configuration value by its dotted path.

Paths: home, network.{name,chain_id,explorer},
provider.{url,poll_interval_seconds,requests_per_second,burst},
payout.{default_token,allowed_tokens,confirmations,reject_duplicates},
notify.{webhook_url,webhook_token,discord_webhook,telegram_token,telegram_chats},
store.{driver,dsn},
api.{listen,allowed_origins,jwt_secret,token_ttl_minutes}, output.{default_format,color,verbose},
logging.{level,file}`,
	Example: `  taskwiser config get payout.default_token
  taskwiser config get provider.url`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

// configSetCmd sets a configuration value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configSetCmd = &cobra.Command{
	Use:   "set <path> <value>",
	Short: "Set a configuration value",
	Long: `Set a specific configuration value by its dotted path and save the file.
List values take a comma-separated string.`,
	Example: `  taskwiser config set payout.default_token USDT
  taskwiser config set payout.allowed_tokens USDC,USDT
  taskwiser config set store.driver postgres`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var configForce bool

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite existing configuration")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	configPath := config.Path(cc.Config.Home)

	if _, err := os.Stat(configPath); err == nil && !configForce {
		return wiserr.WithSuggestion(
			wiserr.ErrGeneral,
			fmt.Sprintf("configuration already exists at %s. Use --force to overwrite.", configPath),
		)
	}

	defaultCfg := config.Defaults()
	defaultCfg.Home = cc.Config.Home
	defaultCfg.Logging.File = filepath.Join(cc.Config.Home, "taskwiser.log")
	if err := config.Save(defaultCfg, configPath); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	w := cmd.OutOrStdout()
	out(w, "Configuration initialized at %s\n", configPath)
	outln(w)
	outln(w, "Edit this file to configure:")
	outln(w, "  - provider.url: Your wallet's JSON-RPC endpoint")
	outln(w, "  - payout.default_token / allowed_tokens: Tokens payouts may use")
	outln(w, "  - store.driver / dsn: memory or postgres")
	outln(w, "  - notify.*: Webhook and Discord run notifications")
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	masked := maskedConfig(cc.Config)
	w := cmd.OutOrStdout()

	if cc.Formatter.IsJSON() {
		return output.WriteJSON(w, masked)
	}
	return displayConfigText(w, masked)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	value, err := getConfigValue(cc.Config, args[0])
	if err != nil {
		return err
	}
	outln(cmd.OutOrStdout(), value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	path, value := args[0], args[1]

	if _, err := getConfigValue(cc.Config, path); err != nil {
		return err
	}

	// Edit the file, not the environment-overridden config.
	configPath := config.Path(cc.Config.Home)
	current, err := config.Load(configPath)
	if err != nil {
		current = config.Defaults()
		current.Home = cc.Config.Home
	}

	if err := setConfigValue(current, path, value); err != nil {
		return err
	}
	if err := current.Validate(); err != nil {
		return err
	}
	if err := config.Save(current, configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	out(cmd.OutOrStdout(), "Set %s = %s\n", path, value)
	return nil
}

func unknownKey(path string) error {
	return wiserr.WithSuggestion(
		wiserr.WithDetails(wiserr.ErrUnknownConfigKey, map[string]string{"path": path}),
		"run 'taskwiser config get --help' for the list of paths",
	)
}

// getConfigValue retrieves a value from the config using dot notation.
//
//nolint:gocyclo // flat lookup over every settable key
func getConfigValue(c *config.Config, path string) (string, error) {
	switch path {
	case "home":
		return c.Home, nil
	case "network.name":
		return c.Network.Name, nil
	case "network.chain_id":
		return c.Network.ChainID, nil
	case "network.explorer":
		return c.Network.Explorer, nil
	case "provider.url":
		return c.Provider.URL, nil
	case "provider.poll_interval_seconds":
		return strconv.Itoa(c.Provider.PollIntervalSeconds), nil
	case "provider.requests_per_second":
		return strconv.FormatFloat(c.Provider.RequestsPerSecond, 'f', -1, 64), nil
	case "provider.burst":
		return strconv.Itoa(c.Provider.Burst), nil
	case "payout.default_token":
		return c.Payout.DefaultToken, nil
	case "payout.allowed_tokens":
		return strings.Join(c.Payout.AllowedTokens, ","), nil
	case "payout.confirmations":
		return strconv.Itoa(c.Payout.Confirmations), nil
	case "payout.reject_duplicates":
		return strconv.FormatBool(c.Payout.RejectDuplicates), nil
	case "notify.webhook_url":
		return c.Notify.WebhookURL, nil
	case "notify.webhook_token":
		return c.Notify.WebhookToken, nil
	case "notify.discord_webhook":
		return c.Notify.DiscordWebhook, nil
	case "notify.telegram_token":
		return c.Notify.TelegramToken, nil
	case "notify.telegram_chats":
		chats := make([]string, len(c.Notify.TelegramChats))
		for i, id := range c.Notify.TelegramChats {
			chats[i] = strconv.FormatInt(id, 10)
		}
		return strings.Join(chats, ","), nil
	case "store.driver":
		return c.Store.Driver, nil
	case "store.dsn":
		return c.Store.DSN, nil
	case "api.listen":
		return c.API.Listen, nil
	case "api.allowed_origins":
		return strings.Join(c.API.AllowedOrigins, ","), nil
	case "api.jwt_secret":
		return c.API.JWTSecret, nil
	case "api.token_ttl_minutes":
		return strconv.Itoa(c.API.TokenTTLMinutes), nil
	case "output.default_format":
		return c.Output.DefaultFormat, nil
	case "output.color":
		return c.Output.Color, nil
	case "output.verbose":
		return strconv.FormatBool(c.Output.Verbose), nil
	case "logging.level":
		return c.Logging.Level, nil
	case "logging.file":
		return c.Logging.File, nil
	}
	return "", unknownKey(path)
}

// setConfigValue updates a value in the config using dot notation.
//
//nolint:gocyclo // flat switch over every settable key
func setConfigValue(c *config.Config, path, value string) error {
	var err error
	switch path {
	case "home":
		c.Home = value
	case "network.name":
		c.Network.Name = value
	case "network.chain_id":
		c.Network.ChainID = value
	case "network.explorer":
		c.Network.Explorer = value
	case "provider.url":
		c.Provider.URL = value
	case "provider.poll_interval_seconds":
		c.Provider.PollIntervalSeconds, err = parsePositiveInt(path, value)
	case "provider.requests_per_second":
		c.Provider.RequestsPerSecond, err = strconv.ParseFloat(value, 64)
	case "provider.burst":
		c.Provider.Burst, err = parsePositiveInt(path, value)
	case "payout.default_token":
		c.Payout.DefaultToken = strings.ToUpper(strings.TrimSpace(value))
	case "payout.allowed_tokens":
		c.Payout.AllowedTokens = splitUpper(value)
	case "payout.confirmations":
		c.Payout.Confirmations, err = parsePositiveInt(path, value)
	case "payout.reject_duplicates":
		c.Payout.RejectDuplicates, err = strconv.ParseBool(value)
	case "notify.webhook_url":
		c.Notify.WebhookURL = value
	case "notify.webhook_token":
		c.Notify.WebhookToken = value
	case "notify.discord_webhook":
		c.Notify.DiscordWebhook = value
	case "notify.telegram_token":
		c.Notify.TelegramToken = value
	case "notify.telegram_chats":
		c.Notify.TelegramChats, err = parseChatIDs(value)
	case "store.driver":
		if value != config.StoreMemory && value != config.StorePostgres {
			return invalidValue(path, value, "memory or postgres")
		}
		c.Store.Driver = value
	case "store.dsn":
		c.Store.DSN = value
	case "api.listen":
		c.API.Listen = value
	case "api.allowed_origins":
		c.API.AllowedOrigins = splitTrim(value)
	case "api.jwt_secret":
		c.API.JWTSecret = value
	case "api.token_ttl_minutes":
		c.API.TokenTTLMinutes, err = parsePositiveInt(path, value)
	case "output.default_format":
		switch value {
		case "text", "json", "auto":
			c.Output.DefaultFormat = value
		default:
			return invalidValue(path, value, "text, json or auto")
		}
	case "output.color":
		switch value {
		case "auto", "always", "never":
			c.Output.Color = value
		default:
			return invalidValue(path, value, "auto, always or never")
		}
	case "output.verbose":
		c.Output.Verbose, err = strconv.ParseBool(value)
	case "logging.level":
		switch value {
		case "debug", "error", "off":
			c.Logging.Level = value
		default:
			return invalidValue(path, value, "debug, error or off")
		}
	case "logging.file":
		c.Logging.File = value
	default:
		return unknownKey(path)
	}
	if err != nil {
		return wiserr.WithCause(wiserr.ErrConfigInvalid, fmt.Errorf("%s: %w", path, err))
	}
	return nil
}

func parseChatIDs(value string) ([]int64, error) {
	parts := splitTrim(value)
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func invalidValue(path, value, expected string) error {
	return wiserr.WithDetails(wiserr.ErrConfigInvalid, map[string]string{
		"key":      path,
		"value":    value,
		"expected": expected,
	})
}

func parsePositiveInt(path, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("%s must be at least 1", path)
	}
	return n, nil
}

func splitTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func splitUpper(s string) []string {
	parts := splitTrim(s)
	for i := range parts {
		parts[i] = strings.ToUpper(parts[i])
	}
	return parts
}

// maskedConfig returns a copy with secrets shortened.
func maskedConfig(c *config.Config) config.Config {
	m := *c
	m.Notify.WebhookToken = maskSecret(c.Notify.WebhookToken)
	m.Notify.DiscordWebhook = maskURLPath(c.Notify.DiscordWebhook)
	m.Notify.TelegramToken = maskSecret(c.Notify.TelegramToken)
	m.Store.DSN = maskDSN(c.Store.DSN)
	m.API.JWTSecret = maskSecret(c.API.JWTSecret)
	return m
}

func maskSecret(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) >= 8:
		return s[:4] + "..."
	default:
		return "***..."
	}
}

func maskURLPath(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***..."
	}
	return u.Scheme + "://" + u.Host + "/..."
}

func maskDSN(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}

// displayConfigText shows the config as YAML.
func displayConfigText(w io.Writer, c config.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}
