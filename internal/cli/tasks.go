package cli

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Asad272002/TaskWiser-V2/internal/chain/eth"
	"github.com/Asad272002/TaskWiser-V2/internal/output"
	"github.com/Asad272002/TaskWiser-V2/internal/store"
	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

const storeTimeout = 30 * time.Second

// tasksCmd is the parent command for board task operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var tasksCmd = &cobra.Command{
	Use:     "tasks",
	Short:   "Inspect and load board tasks awaiting payout",
	GroupID: "payout",
	Long: `Inspect and load the board tasks that payouts are made for.

A task is payable when it is done, carries a reward and an assignee wallet,
and has not been paid yet. Tasks live in the configured store; use the
postgres driver to keep them between runs.`,
}

// tasksListCmd lists payable tasks.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var tasksListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List payable tasks",
	Example: `  taskwiser tasks list -o json`,
	RunE:    runTasksList,
}

// tasksShowCmd shows one task.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var tasksShowCmd = &cobra.Command{
	Use:     "show <id>",
	Short:   "Show a task",
	Args:    cobra.ExactArgs(1),
	Example: `  taskwiser tasks show 42`,
	RunE:    runTasksShow,
}

// tasksImportCmd loads tasks from a JSON file.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var tasksImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load tasks from a JSON export",
	Long: `Insert or update tasks from a JSON array as exported by the board.
Assignee addresses are validated before anything is written.`,
	Args:    cobra.ExactArgs(1),
	Example: `  taskwiser tasks import board.json`,
	RunE:    runTasksImport,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(tasksCmd)
	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksShowCmd)
	tasksCmd.AddCommand(tasksImportCmd)
}

func runTasksList(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	ctx, cancel := contextWithTimeout(cmd, storeTimeout)
	defer cancel()

	s, err := openStoreFn(ctx, cc)
	if err != nil {
		return err
	}
	defer s.Close()

	tasks, err := s.ListPayable(ctx)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if cc.Formatter.IsJSON() {
		if tasks == nil {
			tasks = []store.Task{}
		}
		return output.WriteJSON(w, tasks)
	}
	if len(tasks) == 0 {
		output.Info("No payable tasks")
		return nil
	}
	return taskTable(tasks).Render(w)
}

func runTasksShow(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	ctx, cancel := contextWithTimeout(cmd, storeTimeout)
	defer cancel()

	s, err := openStoreFn(ctx, cc)
	if err != nil {
		return err
	}
	defer s.Close()

	t, err := s.Get(ctx, args[0])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if cc.Formatter.IsJSON() {
		return output.WriteJSON(w, t)
	}
	displayTaskText(w, t)
	return nil
}

func runTasksImport(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	ctx, cancel := contextWithTimeout(cmd, storeTimeout)
	defer cancel()

	data, err := os.ReadFile(args[0]) //nolint:gosec // user-supplied import file
	if err != nil {
		return err
	}
	var tasks []store.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return wiserr.WithCause(wiserr.ErrInvalidFormat, err)
	}
	for _, t := range tasks {
		if strings.TrimSpace(t.ID) == "" {
			return wiserr.WithDetails(wiserr.ErrInvalidInput, map[string]string{"reason": "task without id"})
		}
		if t.AssigneeAddress != "" {
			if err := eth.ValidateAddress(t.AssigneeAddress); err != nil {
				return wiserr.Wrap(err, "task %s", t.ID)
			}
		}
	}

	s, err := openStoreFn(ctx, cc)
	if err != nil {
		return err
	}
	defer s.Close()

	payable := 0
	for _, t := range tasks {
		if err := s.Save(ctx, t); err != nil {
			return wiserr.Wrap(err, "saving task %s", t.ID)
		}
		if t.Payable() {
			payable++
		}
	}

	if cc.Formatter.IsJSON() {
		return output.WriteJSON(cmd.OutOrStdout(), map[string]int{"imported": len(tasks), "payable": payable})
	}
	output.Successf("Imported %d task(s), %d payable", len(tasks), payable)
	return nil
}

func taskTable(tasks []store.Task) *output.Table {
	t := output.NewTable("ID", "TITLE", "ASSIGNEE", "REWARD")
	t.AlignRight(4)
	for _, task := range tasks {
		t.AddRow(task.ID, task.Title, task.AssigneeAddress, task.RewardAmount+" "+task.Reward)
	}
	return t
}

func displayTaskText(w io.Writer, t *store.Task) {
	out(w, "ID:       %s\n", t.ID)
	out(w, "Title:    %s\n", t.Title)
	out(w, "Status:   %s\n", t.Status)
	out(w, "Assignee: %s\n", orNone(t.AssigneeAddress))
	out(w, "Reward:   %s %s\n", t.RewardAmount, t.Reward)
	out(w, "Payable:  %s\n", yesNo(t.Payable(), "yes", "no"))
	if t.Paid {
		out(w, "Paid tx:  %s\n", t.PaidTxHash)
	}
}
