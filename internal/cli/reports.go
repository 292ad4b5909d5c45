package cli

import (
	"errors"
	"io/fs"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Asad272002/TaskWiser-V2/internal/output"
	"github.com/Asad272002/TaskWiser-V2/internal/report"
	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

// reportsCmd is the parent command for run reports.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var reportsCmd = &cobra.Command{
	Use:     "reports",
	Short:   "Browse payout run reports",
	GroupID: "payout",
	Long:    `Browse the reports written after every payout run.`,
}

// reportsListCmd lists runs.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var reportsListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List payout runs, newest first",
	Example: `  taskwiser reports list`,
	RunE:    runReportsList,
}

// reportsShowCmd shows one run.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var reportsShowCmd = &cobra.Command{
	Use:     "show <run-id>",
	Short:   "Show a payout run",
	Args:    cobra.ExactArgs(1),
	Example: `  taskwiser reports show 6f1c2a4e-...`,
	RunE:    runReportsShow,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(reportsCmd)
	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsShowCmd)
}

func runReportsList(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	ids, err := report.List(cc.Config.Home)
	if err != nil {
		return err
	}

	reports := make([]*report.Report, 0, len(ids))
	for _, id := range ids {
		r, err := report.Load(report.Dir(cc.Config.Home, id))
		if err != nil {
			cc.Logger.Debug("skipping report %s: %v", id, err)
			continue
		}
		r.Rows = nil
		reports = append(reports, r)
	}

	w := cmd.OutOrStdout()
	if cc.Formatter.IsJSON() {
		return output.WriteJSON(w, reports)
	}
	if len(reports) == 0 {
		output.Info("No payout runs yet")
		return nil
	}

	t := output.NewTable("RUN", "FINISHED", "TOKEN", "STATE", "CONFIRMED")
	t.AlignRight(5)
	for _, r := range reports {
		t.AddRow(r.RunID, r.FinishedAt.Local().Format("2006-01-02 15:04"), r.Token, r.State,
			strconv.Itoa(r.Confirmed)+"/"+strconv.Itoa(r.Total))
	}
	return t.Render(w)
}

func runReportsShow(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	r, err := report.Load(report.Dir(cc.Config.Home, args[0]))
	if errors.Is(err, fs.ErrNotExist) {
		return wiserr.WithDetails(wiserr.ErrNotFound, map[string]string{"run": args[0]})
	}
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if cc.Formatter.IsJSON() {
		return output.WriteJSON(w, r)
	}

	t := output.NewTable("#", "ADDRESS", "AMOUNT", "STATUS", "TX / MESSAGE")
	t.SetTitle(r.RunID + "  " + r.Network + "  " + r.Token + "  " + r.State)
	t.AlignRight(1, 3)
	for _, row := range r.Rows {
		detail := row.TxHash
		if detail == "" {
			detail = row.Message
		}
		t.AddRow(strconv.Itoa(row.Index), row.Address, row.Amount, row.Status, detail)
	}
	if err := t.Render(w); err != nil {
		return err
	}
	if r.Error != "" {
		output.Warn(r.Error)
	}
	return nil
}
