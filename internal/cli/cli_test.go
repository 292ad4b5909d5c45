package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/Asad272002/TaskWiser-V2/internal/config"
	"github.com/Asad272002/TaskWiser-V2/internal/output"
	"github.com/Asad272002/TaskWiser-V2/internal/provider"
	"github.com/Asad272002/TaskWiser-V2/internal/provider/mock"
	"github.com/Asad272002/TaskWiser-V2/internal/store"
)

const (
	testAccount  = "0x1111111111111111111111111111111111111111"
	testPayeeA   = "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
	testPayeeB   = "0x2222222222222222222222222222222222222222"
	sepoliaChain = "0xaa36a7"
)

// testEnv is an isolated home directory with swapped-in wallet and store.
type testEnv struct {
	t      *testing.T
	home   string
	wallet *mock.Provider
	store  *store.Memory
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		t:      t,
		home:   t.TempDir(),
		wallet: mock.New(testAccount, sepoliaChain).Authorize(),
		store:  store.NewMemory(),
	}

	cfg := config.Defaults()
	cfg.Home = env.home
	cfg.Logging.Level = "off"
	cfg.Logging.File = filepath.Join(env.home, "taskwiser.log")
	require.NoError(t, config.Save(cfg, config.Path(env.home)))

	for _, key := range []string{
		config.EnvHome, config.EnvProviderURL, config.EnvDefaultToken, config.EnvAllowedTokens,
		config.EnvConfirmations, config.EnvDatabaseURL, config.EnvWebhookURL, config.EnvWebhookToken,
		config.EnvDiscordWebhook, config.EnvAPIListen, config.EnvJWTSecret, config.EnvOutputFormat,
		config.EnvVerbose, config.EnvLogLevel,
	} {
		t.Setenv(key, "")
	}
	// An empty file keeps a stray .env out of the tests.
	envFile := filepath.Join(env.home, ".env")
	require.NoError(t, os.WriteFile(envFile, nil, 0o600))

	prevProvider, prevStore := newProviderFn, openStoreFn
	prevPrompt, prevInteractive := promptConfirmFn, isInteractiveFn
	prevStdout, prevStderr := output.Stdout, output.Stderr

	newProviderFn = func(*CommandContext) (provider.Provider, error) { return env.wallet, nil }
	openStoreFn = func(context.Context, *CommandContext) (store.Store, error) { return env.store, nil }
	promptConfirmFn = func(string) bool { return false }
	isInteractiveFn = func() bool { return false }
	output.Stdout, output.Stderr = io.Discard, io.Discard

	t.Cleanup(func() {
		newProviderFn, openStoreFn = prevProvider, prevStore
		promptConfirmFn, isInteractiveFn = prevPrompt, prevInteractive
		output.Stdout, output.Stderr = prevStdout, prevStderr
	})
	return env
}

// run executes the root command with args against the test home and
// returns what the command wrote to stdout.
func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	resetFlags(rootCmd)

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--home", e.home, "--env-file", filepath.Join(e.home, ".env")}, args...))

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

// resetFlags restores every flag to its default so runs do not leak into
// each other.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.SetContext(nil) //nolint:staticcheck // drop the context left by an earlier run
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
