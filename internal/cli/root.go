// Package cli implements the TaskWiser command-line interface.
//
// This package uses global variables to manage CLI state, which is the standard
// pattern for Cobra-based CLI applications. The globals are initialized in
// PersistentPreRunE and cleaned up in PersistentPostRun.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"errors"
	"io/fs"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/Asad272002/TaskWiser-V2/internal/config"
	"github.com/Asad272002/TaskWiser-V2/internal/output"
	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

var (
	// Global flags
	homeDir      string
	outputFormat string
	verbose      bool
	providerURL  string
	envFile      string

	// Global state initialized in PersistentPreRunE
	cfg       *config.Config
	logger    *config.Logger
	formatter *output.Formatter

	enrichOnce sync.Once
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "taskwiser",
	Short: "Pay task assignees in ERC-20 tokens from your wallet",
	Long: `TaskWiser pays completed task assignees in ERC-20 stablecoins.

Payouts are signed by your own wallet over its JSON-RPC endpoint, one
transfer at a time, and a run stops at the first failure.

Example:
  taskwiser connect
  taskwiser pay --to 0x... --amount 25 --token USDC
  taskwiser pay --batch payees.csv`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := initGlobals(); err != nil {
			return err
		}
		SetCmdContext(cmd, NewCommandContext(cfg, logger, formatter))
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		cleanup()
	},
}

// Execute runs the root command.
func Execute() error {
	enrichOnce.Do(func() { walkCommands(rootCmd, enrichParentLong) })

	err := rootCmd.Execute()
	if err != nil {
		if formatter != nil {
			_ = output.FormatError(os.Stderr, err, formatter.Format())
		} else {
			_ = output.FormatError(os.Stderr, err, output.FormatText)
		}
		return err
	}
	return nil
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	return wiserr.ExitCode(err)
}

// initGlobals initializes global configuration, logger, and formatter.
func initGlobals() error {
	if envFile != "" {
		config.LoadDotEnv(envFile)
	} else {
		config.LoadDotEnv()
	}

	home := homeDir
	if home == "" {
		home = os.Getenv(config.EnvHome)
	}
	if home == "" {
		home = config.DefaultHome()
	}

	var err error
	cfg, err = config.Load(config.Path(config.ExpandHome(home)))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		cfg = config.Defaults()
	}
	cfg.Home = home

	// Apply environment variable overrides
	config.ApplyEnvironment(cfg)

	// Override with command-line flags
	if homeDir != "" {
		cfg.Home = homeDir
	}
	cfg.Home = config.ExpandHome(cfg.Home)
	if providerURL != "" {
		cfg.Provider.URL = providerURL
	}
	if verbose {
		cfg.Output.Verbose = true
		cfg.Logging.Level = "debug"
	}
	if outputFormat != "" && outputFormat != "auto" {
		cfg.Output.DefaultFormat = outputFormat
	}

	logger, err = config.NewLogger(config.ParseLogLevel(cfg.Logging.Level), cfg.Logging.File)
	if err != nil {
		// Use null logger if we can't create the file
		logger = config.NullLogger()
	}
	if cfg.Output.Verbose {
		logger.Tee(os.Stderr)
	}

	explicitFormat := output.ParseFormat(cfg.Output.DefaultFormat)
	formatter = output.NewFormatter(output.DetectFormat(os.Stdout, explicitFormat), os.Stdout)
	output.SetColorMode(cfg.Output.Color)

	return nil
}

// cleanup releases resources.
func cleanup() {
	if logger != nil {
		_ = logger.Close()
	}
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "wallet", Title: "Wallet:"},
		&cobra.Group{ID: "payout", Title: "Payouts:"},
		&cobra.Group{ID: "server", Title: "Server:"},
	)

	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "taskwiser data directory (default: ~/.taskwiser)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&providerURL, "provider", "", "wallet JSON-RPC endpoint (overrides provider.url)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment variables from this file instead of .env")
}
