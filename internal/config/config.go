// Package config provides configuration management for TaskWiser.
package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Asad272002/TaskWiser-V2/internal/chain"
	"github.com/Asad272002/TaskWiser-V2/internal/chain/eth"
	"github.com/Asad272002/TaskWiser-V2/internal/fileutil"
	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

// Config represents the application configuration.
type Config struct {
	Version  int            `yaml:"version"`
	Home     string         `yaml:"home"`
	Network  NetworkConfig  `yaml:"network"`
	Provider ProviderConfig `yaml:"provider"`
	Payout   PayoutConfig   `yaml:"payout"`
	Notify   NotifyConfig   `yaml:"notify"`
	Store    StoreConfig    `yaml:"store"`
	API      APIConfig      `yaml:"api"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// NetworkConfig defines the single network payouts run on.
type NetworkConfig struct {
	Name     string        `yaml:"name"`
	ChainID  string        `yaml:"chain_id"`
	Explorer string        `yaml:"explorer"`
	RPCURLs  []string      `yaml:"rpc_urls"`
	Tokens   []TokenConfig `yaml:"tokens"`
}

// TokenConfig defines an ERC-20 token payouts may use.
type TokenConfig struct {
	Symbol   string `yaml:"symbol"`
	Address  string `yaml:"address"`
	Decimals int    `yaml:"decimals"`
	Label    string `yaml:"label,omitempty"`
}

// ProviderConfig defines how the wallet provider is reached.
type ProviderConfig struct {
	URL                 string  `yaml:"url"`
	PollIntervalSeconds int     `yaml:"poll_interval_seconds"`
	RequestsPerSecond   float64 `yaml:"requests_per_second"`
	Burst               int     `yaml:"burst"`
}

// PayoutConfig defines payout defaults.
type PayoutConfig struct {
	DefaultToken     string   `yaml:"default_token"`
	AllowedTokens    []string `yaml:"allowed_tokens"`
	Confirmations    int      `yaml:"confirmations"`
	RejectDuplicates bool     `yaml:"reject_duplicates"`
}

// NotifyConfig defines run notifications.
type NotifyConfig struct {
	WebhookURL     string  `yaml:"webhook_url,omitempty"`
	WebhookToken   string  `yaml:"webhook_token,omitempty"`
	DiscordWebhook string  `yaml:"discord_webhook,omitempty"`
	TelegramToken  string  `yaml:"telegram_token,omitempty"`
	TelegramChats  []int64 `yaml:"telegram_chats,omitempty"`
}

// StoreConfig selects the task and nonce store.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn,omitempty"`
}

// APIConfig defines the HTTP API server.
type APIConfig struct {
	Listen         string   `yaml:"listen"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// JWTSecret enables wallet sign-in when set.
	JWTSecret       string `yaml:"jwt_secret,omitempty"`
	TokenTTLMinutes int    `yaml:"token_ttl_minutes"`
}

// OutputConfig defines output formatting settings.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Color         string `yaml:"color"`
	Verbose       bool   `yaml:"verbose"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load reads configuration from the specified file.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, wiserr.Wrap(wiserr.WithCause(wiserr.ErrConfigInvalid, err), "loading %s", path)
	}

	return cfg, nil
}

// Save writes configuration to the specified file, replacing it atomically.
func Save(cfg *Config, path string) error {
	return fileutil.WriteAtomic(path, 0o600, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	})
}

// Path returns the config file path inside home.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// Validate checks the values the payout flow depends on.
func (c *Config) Validate() error {
	if _, err := chain.NormalizeChainID(c.Network.ChainID); err != nil {
		return wiserr.WithDetails(wiserr.ErrConfigInvalid, map[string]string{
			"key":    "network.chain_id",
			"reason": err.Error(),
		})
	}
	if c.Provider.URL == "" {
		return wiserr.WithDetails(wiserr.ErrConfigInvalid, map[string]string{"key": "provider.url", "reason": "required"})
	}
	if c.Payout.Confirmations < 1 {
		return wiserr.WithDetails(wiserr.ErrConfigInvalid, map[string]string{
			"key":    "payout.confirmations",
			"reason": "must be at least 1",
		})
	}
	switch c.Store.Driver {
	case StoreMemory:
	case StorePostgres:
		if c.Store.DSN == "" {
			return wiserr.WithDetails(wiserr.ErrConfigInvalid, map[string]string{"key": "store.dsn", "reason": "required for postgres"})
		}
	default:
		return wiserr.WithDetails(wiserr.ErrConfigInvalid, map[string]string{"key": "store.driver", "value": c.Store.Driver})
	}
	if _, err := c.TokenRegistry(); err != nil {
		return err
	}
	return nil
}

// ChainNetwork builds the payout network descriptor.
func (c *Config) ChainNetwork() chain.Network {
	n := chain.Sepolia()
	if c.Network.Name != "" {
		n.Name = c.Network.Name
		n.AddChain.ChainName = c.Network.Name
	}
	if id, err := chain.NormalizeChainID(c.Network.ChainID); err == nil {
		n.ChainID = id
		n.AddChain.ChainID = id
	}
	if c.Network.Explorer != "" {
		n.Explorer = c.Network.Explorer
		n.AddChain.BlockExplorerURLs = []string{c.Network.Explorer}
	}
	if len(c.Network.RPCURLs) > 0 {
		n.AddChain.RPCURLs = c.Network.RPCURLs
	}
	return n
}

// TokenRegistry builds the registry of configured tokens.
func (c *Config) TokenRegistry() (*eth.Registry, error) {
	tokens := make([]eth.Token, 0, len(c.Network.Tokens))
	for _, t := range c.Network.Tokens {
		tokens = append(tokens, eth.Token{
			Symbol:   t.Symbol,
			Address:  t.Address,
			Decimals: t.Decimals,
			Label:    t.Label,
		})
	}
	if len(tokens) == 0 {
		return eth.DefaultRegistry(), nil
	}
	return eth.NewRegistry(tokens)
}

// PollInterval returns the provider poll interval.
func (c *Config) PollInterval() time.Duration {
	if c.Provider.PollIntervalSeconds <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.Provider.PollIntervalSeconds) * time.Second
}

// GetHome returns the TaskWiser home directory path.
func (c *Config) GetHome() string {
	return ExpandHome(c.Home)
}

// GetLoggingLevel returns the configured logging level.
func (c *Config) GetLoggingLevel() string {
	return c.Logging.Level
}

// GetLoggingFile returns the configured log file path.
func (c *Config) GetLoggingFile() string {
	return c.Logging.File
}

// GetOutputFormat returns the default output format.
func (c *Config) GetOutputFormat() string {
	return c.Output.DefaultFormat
}

// IsVerbose returns true if verbose output is enabled.
func (c *Config) IsVerbose() bool {
	return c.Output.Verbose
}

// DefaultHome returns the default TaskWiser home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskwiser"
	}
	return filepath.Join(home, ".taskwiser")
}

// ExpandHome expands a leading "~/" to the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
