package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/Asad272002/TaskWiser-V2/internal/notify"
	"github.com/Asad272002/TaskWiser-V2/internal/output"
	"github.com/Asad272002/TaskWiser-V2/internal/payout"
	"github.com/Asad272002/TaskWiser-V2/internal/report"
	"github.com/Asad272002/TaskWiser-V2/internal/session"
	"github.com/Asad272002/TaskWiser-V2/internal/store"
	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

const (
	defaultLockTimeout = 5 * time.Second
	notifyTimeout      = 20 * time.Second
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	payTo               string
	payAmount           string
	payBatch            string
	payTasks            []string
	payPayable          bool
	payToken            string
	payAllowedTokens    []string
	payYes              bool
	payRejectDuplicates bool
	payConfirmations    int
	payReport           string
	payNoNotify         bool
	payLockTimeout      time.Duration
)

// payCmd sends payouts.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var payCmd = &cobra.Command{
	Use:     "pay",
	Short:   "Pay one or more assignees in an ERC-20 token",
	GroupID: "payout",
	Long: `Pay assignees from the connected wallet, one transfer at a time.

Recipients come from exactly one source:
  --to/--amount     a single assignee
  --batch FILE      a CSV (address,amount header), JSON or YAML list
  --task ID         one or more board tasks from the store
  --payable         every payable task in the store

Each transfer is submitted to the wallet and the next one starts only after
it confirms on-chain. The run stops at the first rejection or failure;
transfers that already confirmed stay confirmed.

A report of every run is written to <home>/reports/<run id>/.`,
	Example: `  # Pay one assignee
  taskwiser pay --to 0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359 --amount 25 --token USDC

  # Pay a list from a CSV file without the confirmation prompt
  taskwiser pay --batch payees.csv --token USDT --yes

  # Pay completed board tasks and mark them paid
  taskwiser pay --payable`,
	RunE: runPay,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(payCmd)

	payCmd.Flags().StringVar(&payTo, "to", "", "recipient address (single payout)")
	payCmd.Flags().StringVar(&payAmount, "amount", "", "decimal token amount (single payout)")
	payCmd.Flags().StringVar(&payBatch, "batch", "", "recipient list file: .csv, .json, .yaml")
	payCmd.Flags().StringSliceVar(&payTasks, "task", nil, "task id to pay (repeatable)")
	payCmd.Flags().BoolVar(&payPayable, "payable", false, "pay every payable task in the store")
	payCmd.Flags().StringVar(&payToken, "token", "", "token symbol (default: payout.default_token)")
	payCmd.Flags().StringSliceVar(&payAllowedTokens, "tokens", nil, "restrict selectable tokens (default: payout.allowed_tokens)")
	payCmd.Flags().BoolVarP(&payYes, "yes", "y", false, "skip the confirmation prompt")
	payCmd.Flags().BoolVar(&payRejectDuplicates, "reject-duplicates", false, "fail when an address appears more than once")
	payCmd.Flags().IntVar(&payConfirmations, "confirmations", 0, "block confirmations to wait for (default: payout.confirmations)")
	payCmd.Flags().StringVar(&payReport, "report", "", "also write the run report to this .csv or .json file")
	payCmd.Flags().BoolVar(&payNoNotify, "no-notify", false, "skip webhook and Discord notifications")
	payCmd.Flags().DurationVar(&payLockTimeout, "lock-timeout", defaultLockTimeout, "how long to wait for another run to finish")

	payCmd.MarkFlagsRequiredTogether("to", "amount")
	payCmd.MarkFlagsMutuallyExclusive("to", "batch", "task", "payable")
}

// PayRequest is what `pay` resolved from its flags before running.
type PayRequest struct {
	Mode    payout.Mode
	Targets []payout.Target
	// TaskIDs holds the task behind each target when paying board tasks.
	TaskIDs []string
	Token   string
}

// PayResult is the JSON shape of `pay`.
type PayResult struct {
	RunID     string          `json:"run_id"`
	State     string          `json:"state"`
	Token     string          `json:"token"`
	Total     int             `json:"total"`
	Confirmed int             `json:"confirmed"`
	TxHashes  []string        `json:"tx_hashes"`
	Statuses  []payout.Status `json:"statuses"`
	ReportDir string          `json:"report_dir,omitempty"`
	Error     string          `json:"error,omitempty"`
}

//nolint:gocyclo // CLI flow involves source resolution, confirmation and reporting
func runPay(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	ctx, cancel := contextWithSignals(cmd)
	defer cancel()

	var tasks store.TaskStore
	if len(payTasks) > 0 || payPayable {
		s, err := openStoreFn(ctx, cc)
		if err != nil {
			return err
		}
		defer s.Close()
		tasks = s
	}

	req, err := resolvePayRequest(ctx, tasks)
	if err != nil {
		return err
	}

	registry, err := cc.Registry()
	if err != nil {
		return err
	}
	allowed := payAllowedTokens
	if len(allowed) == 0 {
		allowed = cc.Config.Payout.AllowedTokens
	}
	token := cc.Config.Payout.DefaultToken
	if req.Token != "" {
		t, err := payout.RequireToken(req.Token, payout.ResolveAllowList(registry, allowed))
		if err != nil {
			return err
		}
		token = t.Symbol
	}

	m, err := openSession(ctx, cc)
	if err != nil {
		return err
	}
	m.Start()
	defer m.Close()

	confirmations := payConfirmations
	if confirmations <= 0 {
		confirmations = cc.Config.Payout.Confirmations
	}

	w := cmd.OutOrStdout()
	text := !cc.Formatter.IsJSON()

	opts := payout.Options{
		Mode:             req.Mode,
		DefaultToken:     token,
		AllowedTokens:    allowed,
		Registry:         registry,
		RejectDuplicates: payRejectDuplicates || cc.Config.Payout.RejectDuplicates,
		Confirmations:    confirmations,
		Logger:           cc.Logger,
		Metrics:          cc.Metrics,
		OnTarget: func(i int, t payout.Target, st payout.Status) {
			if text {
				displayTargetResult(w, i, len(req.Targets), t, st)
			}
			if tasks != nil && st.Kind == payout.StatusSuccess && i < len(req.TaskIDs) {
				if err := tasks.MarkPaid(ctx, req.TaskIDs[i], st.TxHash); err != nil {
					cc.Logger.Error("marking task %s paid: %v", req.TaskIDs[i], err)
					output.Warnf("Transfer confirmed but task %s could not be marked paid: %v", req.TaskIDs[i], err)
				}
			}
			if tasks != nil && st.Kind == payout.StatusError && st.TxHash != "" && i < len(req.TaskIDs) {
				output.Warnf("Task %s was submitted as %s but not confirmed; check it on the explorer before paying again.", req.TaskIDs[i], st.TxHash)
			}
		},
	}
	if req.Mode == payout.ModeSingle {
		opts.Single = &req.Targets[0]
	} else {
		opts.Batch = req.Targets
	}

	executor, err := payout.NewExecutor(m, opts)
	if err != nil {
		return err
	}
	defer executor.Close()

	// Fail on session and target problems before prompting.
	if err := m.Err(); err != nil {
		return err
	}
	if err := payout.ValidateTargets(req.Targets); err != nil {
		return err
	}
	if opts.RejectDuplicates {
		if err := payout.CheckDuplicates(req.Targets); err != nil {
			return err
		}
	}
	if _, err := payout.Plan(req.Targets, executor.Token()); err != nil {
		return err
	}

	if text {
		displayPayPlan(w, m.State(), executor.Snapshot())
	}
	prompt := fmt.Sprintf("Send %d %s payout(s) from %s?", len(req.Targets), executor.Token().Symbol, m.State().Account)
	if err := requireConfirmation(prompt, payYes); err != nil {
		return err
	}

	unlock, err := acquireRunLock(ctx, cc.Config.Home, payLockTimeout)
	if err != nil {
		return err
	}
	defer func() { _ = unlock() }()

	if text {
		var mu sync.Mutex
		lastMsg := ""
		unsub := executor.Subscribe(func(s payout.Snapshot) {
			mu.Lock()
			defer mu.Unlock()
			if s.Progress.Message != lastMsg {
				lastMsg = s.Progress.Message
				out(cmd.ErrOrStderr(), "%s\n", lastMsg)
			}
		})
		defer unsub()
	}

	runID := report.NewRunID()
	started := time.Now()
	_, runErr := executor.Run(ctx)

	rep := report.Build(runID, m.Network(), m.State().Account, started, executor.Snapshot(), runErr)
	reportDir := report.Dir(cc.Config.Home, runID)
	if err := rep.Save(reportDir); err != nil {
		cc.Logger.Error("saving report: %v", err)
		output.Warnf("Could not save the run report: %v", err)
		reportDir = ""
	}
	if payReport != "" {
		if err := writeReportFile(rep, payReport); err != nil {
			output.Warnf("Could not write %s: %v", payReport, err)
		}
	}
	if !payNoNotify {
		sendNotifications(cc, rep)
	}

	res := PayResult{
		RunID:     runID,
		State:     rep.State,
		Token:     rep.Token,
		Total:     rep.Total,
		Confirmed: rep.Confirmed,
		TxHashes:  rep.TxHashes,
		Statuses:  executor.Snapshot().Statuses,
		ReportDir: reportDir,
		Error:     rep.Error,
	}
	if !text {
		if err := output.WriteJSON(w, res); err != nil {
			return err
		}
		return runErr
	}

	if runErr == nil {
		output.Successf("All payouts completed: %d transaction(s) confirmed", res.Confirmed)
	} else {
		output.Warnf("Stopped after %d / %d confirmed", res.Confirmed, res.Total)
	}
	if reportDir != "" {
		output.Infof("Report: %s", reportDir)
	}
	return runErr
}

// resolvePayRequest turns the source flags into targets.
func resolvePayRequest(ctx context.Context, tasks store.TaskStore) (*PayRequest, error) {
	req := &PayRequest{Token: payToken}

	switch {
	case payTo != "":
		req.Mode = payout.ModeSingle
		req.Targets = []payout.Target{{Address: strings.TrimSpace(payTo), Amount: strings.TrimSpace(payAmount)}}
	case payBatch != "":
		targets, err := payout.LoadBatch(payBatch)
		if err != nil {
			return nil, err
		}
		req.Mode = payout.ModeBatch
		req.Targets = targets
	case len(payTasks) > 0 || payPayable:
		if err := loadTaskTargets(ctx, tasks, req); err != nil {
			return nil, err
		}
	default:
		return nil, wiserr.WithSuggestion(wiserr.ErrNoRecipients,
			"use --to/--amount, --batch FILE, --task ID or --payable")
	}
	return req, nil
}

// loadTaskTargets fills req from board tasks. All tasks must be payable and
// rewarded in the same token.
func loadTaskTargets(ctx context.Context, tasks store.TaskStore, req *PayRequest) error {
	var list []store.Task
	if payPayable {
		payable, err := tasks.ListPayable(ctx)
		if err != nil {
			return err
		}
		list = payable
	} else {
		for _, id := range payTasks {
			t, err := tasks.Get(ctx, id)
			if err != nil {
				return err
			}
			if !t.Payable() {
				return wiserr.WithDetails(wiserr.ErrTaskNotPayable, map[string]string{
					"task":   t.ID,
					"status": t.Status,
					"paid":   strconv.FormatBool(t.Paid),
				})
			}
			list = append(list, *t)
		}
	}

	req.Mode = payout.ModeBatch
	for _, t := range list {
		reward := strings.ToUpper(strings.TrimSpace(t.Reward))
		switch {
		case req.Token == "":
			req.Token = reward
		case !strings.EqualFold(req.Token, reward):
			return wiserr.WithDetails(wiserr.ErrTaskNotPayable, map[string]string{
				"task":   t.ID,
				"reward": reward,
				"token":  req.Token,
			})
		}
		req.Targets = append(req.Targets, payout.Target{Address: t.AssigneeAddress, Amount: t.RewardAmount})
		req.TaskIDs = append(req.TaskIDs, t.ID)
	}
	return nil
}

func writeReportFile(rep *report.Report, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return rep.WriteJSON(path)
	}
	return rep.WriteCSV(path)
}

func sendNotifications(cc *CommandContext, rep *report.Report) {
	n, err := notify.FromConfig(cc.Config.Notify)
	if err != nil {
		output.Warnf("Notifications disabled: %v", err)
		return
	}
	if len(n) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if err := n.Notify(ctx, rep.Summary()); err != nil {
		cc.Logger.Error("sending notifications: %v", err)
		output.Warnf("Some notifications failed: %v", err)
	}
}

func displayPayPlan(w io.Writer, state session.State, snap payout.Snapshot) {
	t := output.NewTable("#", "ADDRESS", "AMOUNT")
	t.SetTitle(fmt.Sprintf("%d payout(s) in %s from %s", len(snap.Targets), snap.Token.Symbol, state.Account))
	t.AlignRight(1, 3)
	for i, target := range snap.Targets {
		t.AddRow(strconv.Itoa(i+1), target.Address, target.Amount)
	}
	_ = t.Render(w)
}

func displayTargetResult(w io.Writer, i, total int, t payout.Target, st payout.Status) {
	switch st.Kind {
	case payout.StatusSuccess:
		out(w, "[%d/%d] %s %s: %s\n", i+1, total, t.Address, t.Amount, st.TxHash)
	case payout.StatusError:
		if st.TxHash != "" {
			out(w, "[%d/%d] %s %s: %s (submitted as %s)\n", i+1, total, t.Address, t.Amount, st.Message, st.TxHash)
			return
		}
		out(w, "[%d/%d] %s %s: %s\n", i+1, total, t.Address, t.Amount, st.Message)
	case payout.StatusIdle, payout.StatusPending:
	}
}
