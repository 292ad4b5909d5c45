package cli

import (
	"github.com/spf13/cobra"

	"github.com/Asad272002/TaskWiser-V2/internal/config"
	"github.com/Asad272002/TaskWiser-V2/internal/output"
	"github.com/Asad272002/TaskWiser-V2/internal/store/postgres"
	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

// migrateFn is swapped in tests.
//
//nolint:gochecknoglobals // test seam
var migrateFn = postgres.Migrate

// dbCmd is the parent command for database operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var dbCmd = &cobra.Command{
	Use:     "db",
	Short:   "Manage the postgres store",
	GroupID: "server",
	Long:    `Manage the postgres database that holds tasks and login nonces.`,
}

// dbMigrateCmd applies schema migrations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Long: `Apply every pending schema migration to store.dsn. Migrations are
embedded in the binary; running this on an up-to-date database is a no-op.`,
	Example: `  TASKWISER_DATABASE_URL=postgres://localhost/taskwiser?sslmode=disable taskwiser db migrate`,
	RunE:    runDBMigrate,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbMigrateCmd)
}

func runDBMigrate(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	dsn := cc.Config.Store.DSN
	if dsn == "" {
		return wiserr.WithSuggestion(wiserr.ErrConfigInvalid,
			"set store.dsn or "+config.EnvDatabaseURL)
	}

	res, err := migrateFn(dsn, cc.Logger)
	if err != nil {
		return wiserr.Wrap(err, "migrating database")
	}

	if cc.Formatter.IsJSON() {
		return output.WriteJSON(cmd.OutOrStdout(), res)
	}
	if res.Applied {
		output.Successf("Database migrated to version %d", res.Version)
	} else {
		output.Infof("Database schema is up to date (version %d)", res.Version)
	}
	if res.Dirty {
		output.Warn("The schema is marked dirty; a previous migration failed part-way")
	}
	return nil
}
