package config

// Store drivers.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// DefaultProviderURL is the local Frame wallet JSON-RPC endpoint.
const DefaultProviderURL = "http://127.0.0.1:1248"

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    "~/.taskwiser",
		Network: NetworkConfig{
			Name:     "Sepolia",
			ChainID:  "0xaa36a7",
			Explorer: "https://sepolia.etherscan.io",
			RPCURLs:  []string{"https://sepolia.infura.io/v3/"},
			Tokens: []TokenConfig{
				{
					Symbol:   "USDC",
					Address:  "0x07865c6E87B9F70255377e024ace6630C1Eaa37F",
					Decimals: 6,
					Label:    "USD Coin (Sepolia)",
				},
				{
					Symbol:   "USDT",
					Address:  "0x509Ee0d083DdF8AC028f2a56731412eE0E26B45E",
					Decimals: 6,
					Label:    "Tether USD (Sepolia)",
				},
			},
		},
		Provider: ProviderConfig{
			URL:                 DefaultProviderURL,
			PollIntervalSeconds: 2,
			RequestsPerSecond:   5,
			Burst:               10,
		},
		Payout: PayoutConfig{
			DefaultToken:  "USDC",
			AllowedTokens: []string{},
			Confirmations: 1,
		},
		Store: StoreConfig{
			Driver: StoreMemory,
		},
		API: APIConfig{
			Listen:          "127.0.0.1:8080",
			AllowedOrigins:  []string{"http://localhost:3000"},
			TokenTTLMinutes: 24 * 60,
		},
		Output: OutputConfig{
			DefaultFormat: "auto",
			Color:         "auto",
			Verbose:       false,
		},
		Logging: LoggingConfig{
			Level: "error",
			File:  "~/.taskwiser/taskwiser.log",
		},
	}
}
