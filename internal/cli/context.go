package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Asad272002/TaskWiser-V2/internal/chain"
	"github.com/Asad272002/TaskWiser-V2/internal/chain/eth"
	"github.com/Asad272002/TaskWiser-V2/internal/chain/eth/rpc"
	"github.com/Asad272002/TaskWiser-V2/internal/config"
	"github.com/Asad272002/TaskWiser-V2/internal/metrics"
	"github.com/Asad272002/TaskWiser-V2/internal/output"
	"github.com/Asad272002/TaskWiser-V2/internal/provider"
	"github.com/Asad272002/TaskWiser-V2/internal/session"
	"github.com/Asad272002/TaskWiser-V2/internal/store"
	"github.com/Asad272002/TaskWiser-V2/internal/store/postgres"
	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

type cmdContextKey struct{}

// CommandContext holds dependencies for CLI commands.
type CommandContext struct {
	Config    *config.Config
	Logger    *config.Logger
	Formatter *output.Formatter
	Metrics   *metrics.Metrics
}

// NewCommandContext creates a context with the given dependencies.
func NewCommandContext(cfg *config.Config, logger *config.Logger, formatter *output.Formatter) *CommandContext {
	return &CommandContext{
		Config:    cfg,
		Logger:    logger,
		Formatter: formatter,
		Metrics:   metrics.Global,
	}
}

// SetCmdContext attaches cc to the command's context.
func SetCmdContext(cmd *cobra.Command, cc *CommandContext) {
	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	cmd.SetContext(context.WithValue(base, cmdContextKey{}, cc))
}

// GetCmdContext returns the command context, falling back to the globals.
func GetCmdContext(cmd *cobra.Command) *CommandContext {
	if ctx := cmd.Context(); ctx != nil {
		if cc, ok := ctx.Value(cmdContextKey{}).(*CommandContext); ok {
			return cc
		}
	}
	return NewCommandContext(cfg, logger, formatter)
}

// Network returns the configured payout network.
func (c *CommandContext) Network() chain.Network {
	return c.Config.ChainNetwork()
}

// Registry returns the configured token registry.
func (c *CommandContext) Registry() (*eth.Registry, error) {
	return c.Config.TokenRegistry()
}

// Factories are variables so tests can swap in a mock wallet or store.
//
//nolint:gochecknoglobals // test seams
var (
	newProviderFn = defaultProvider
	openStoreFn   = defaultStore
)

func defaultProvider(cc *CommandContext) (provider.Provider, error) {
	url := cc.Config.Provider.URL
	if url == "" {
		return nil, wiserr.WithSuggestion(wiserr.ErrProviderUnavailable,
			"set provider.url in config.yaml or pass --provider")
	}

	limiter := chain.NewRateLimiter(cc.Config.Provider.RequestsPerSecond, cc.Config.Provider.Burst)
	client := rpc.NewClient(url, rpc.WithRateLimiter(limiter))
	cc.Logger.Debug("wallet provider %s", url)

	return provider.NewRPCProvider(client, provider.RPCOptions{
		PollInterval: cc.Config.PollInterval(),
		Logger:       cc.Logger,
	}), nil
}

func defaultStore(ctx context.Context, cc *CommandContext) (store.Store, error) {
	switch cc.Config.Store.Driver {
	case "", config.StoreMemory:
		return store.NewMemory(), nil
	case config.StorePostgres:
		if cc.Config.Store.DSN == "" {
			return nil, wiserr.WithSuggestion(wiserr.ErrConfigInvalid,
				"set store.dsn or "+config.EnvDatabaseURL+" for the postgres store")
		}
		return postgres.New(ctx, cc.Config.Store.DSN)
	}
	return nil, wiserr.WithDetails(wiserr.ErrConfigInvalid, map[string]string{"store.driver": cc.Config.Store.Driver})
}

// openSession connects a session manager to the wallet and reads its state.
func openSession(ctx context.Context, cc *CommandContext) (*session.Manager, error) {
	p, err := newProviderFn(cc)
	if err != nil {
		return nil, err
	}
	m := session.New(p, cc.Network(), cc.Logger)
	m.ReadInitialState(ctx)
	return m, nil
}

// out writes formatted output, ignoring write errors.
func out(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

// outln writes a line, ignoring write errors.
func outln(w io.Writer, args ...any) {
	_, _ = fmt.Fprintln(w, args...)
}
