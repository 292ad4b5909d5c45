package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/Asad272002/TaskWiser-V2/internal/output"
	"github.com/Asad272002/TaskWiser-V2/internal/version"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
var (
	versionCheck bool

	// newCheckerFn is swapped in tests.
	newCheckerFn = func() *version.Checker { return version.NewChecker() }
)

// versionCmd prints build information.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Example: `  taskwiser version
  taskwiser version --check`,
	RunE: runVersion,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "check GitHub for a newer release")
}

// VersionResponse is the JSON shape of `version`.
type VersionResponse struct {
	version.Build
	Check *version.Check `json:"check,omitempty"`
}

func runVersion(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	resp := VersionResponse{Build: version.Current()}

	if versionCheck {
		ctx, cancel := contextWithTimeout(cmd, 15*time.Second)
		defer cancel()
		check, err := newCheckerFn().CheckFor(ctx, resp.Build)
		if err != nil {
			return err
		}
		resp.Check = check
	}

	w := cmd.OutOrStdout()
	if cc.Formatter.IsJSON() {
		return output.WriteJSON(w, resp)
	}

	out(w, "taskwiser %s\n", resp.Build.String())
	if resp.Check != nil {
		if resp.Check.Newer {
			output.Warnf("A newer version is available: %s -> %s", resp.Check.Current, resp.Check.Latest)
			if resp.Check.URL != "" {
				output.Info(resp.Check.URL)
			}
		} else {
			output.Success("You are on the latest version")
		}
	}
	return nil
}
