package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/Asad272002/TaskWiser-V2/internal/api"
	"github.com/Asad272002/TaskWiser-V2/internal/auth"
	"github.com/Asad272002/TaskWiser-V2/internal/output"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var serveListen string

// serveCmd runs the HTTP API.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Run the HTTP API for the task board",
	GroupID: "server",
	Long: `Serve the endpoints the web board calls:

  POST /api/auth/nonce       issue a wallet login nonce
  POST /api/auth/verify      exchange a signed nonce for a session token
  GET  /api/tasks/payable    list tasks awaiting payout
  GET  /api/metrics          process counters
  GET  /healthz              liveness

Sign-in and token checks are enabled when api.jwt_secret (or
TASKWISER_JWT_SECRET) is set. The server stops cleanly on SIGINT or SIGTERM.`,
	Example: `  taskwiser serve
  taskwiser serve --listen 0.0.0.0:8080`,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (default: api.listen)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	ctx, cancel := contextWithSignals(cmd)
	defer cancel()

	s, err := openStoreFn(ctx, cc)
	if err != nil {
		return err
	}
	defer s.Close()

	listen := serveListen
	if listen == "" {
		listen = cc.Config.API.Listen
	}

	opts := api.Options{
		Listen:         listen,
		AllowedOrigins: cc.Config.API.AllowedOrigins,
	}
	if secret := cc.Config.API.JWTSecret; secret != "" {
		ttl := time.Duration(cc.Config.API.TokenTTLMinutes) * time.Minute
		if opts.Tokens, err = auth.NewTokens(secret, ttl); err != nil {
			return err
		}
	}

	server := api.New(auth.NewIssuer(s), s, cc.Metrics, cc.Logger, opts)

	if !cc.Formatter.IsJSON() {
		output.Infof("Listening on http://%s (store: %s)", listen, orDefault(cc.Config.Store.Driver, "memory"))
	}
	return server.Serve(ctx)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
