package cli

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Asad272002/TaskWiser-V2/internal/chain"
	"github.com/Asad272002/TaskWiser-V2/internal/metrics"
	"github.com/Asad272002/TaskWiser-V2/internal/output"
	"github.com/Asad272002/TaskWiser-V2/internal/session"
)

// walletStateTimeout bounds the non-interactive state reads of `status`.
const walletStateTimeout = 15 * time.Second

// connectCmd requests account access from the wallet.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var connectCmd = &cobra.Command{
	Use:     "connect",
	Short:   "Connect your wallet and switch it to the payout network",
	GroupID: "wallet",
	Long: `Ask the wallet for account access, then switch it to the payout
network. If the wallet does not know the network yet it is asked to add it.

The wallet may show an approval prompt; this command waits for it.`,
	Example: `  taskwiser connect
  taskwiser connect --provider http://127.0.0.1:1248`,
	RunE: runConnect,
}

// statusCmd shows the wallet session and process metrics.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var statusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show wallet connection and network status",
	GroupID: "wallet",
	Long: `Read the wallet's authorized account and current chain without
prompting, and report whether payouts can be sent.`,
	Example: `  taskwiser status
  taskwiser status -o json`,
	RunE: runStatus,
}

// networkCmd is the parent command for network operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var networkCmd = &cobra.Command{
	Use:     "network",
	Short:   "Inspect or switch the payout network",
	GroupID: "wallet",
	Long:    `Inspect the configured payout network or move the wallet onto it.`,
}

// networkSwitchCmd switches the wallet to the payout network.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var networkSwitchCmd = &cobra.Command{
	Use:     "switch",
	Short:   "Switch the wallet to the payout network",
	Long:    `Ask the wallet to switch chains, adding the network first when the wallet does not know it.`,
	Example: `  taskwiser network switch`,
	RunE:    runNetworkSwitch,
}

// networkShowCmd prints the configured payout network.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var networkShowCmd = &cobra.Command{
	Use:     "show",
	Short:   "Show the configured payout network",
	Example: `  taskwiser network show -o json`,
	RunE:    runNetworkShow,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(networkCmd)
	networkCmd.AddCommand(networkSwitchCmd)
	networkCmd.AddCommand(networkShowCmd)
}

// StatusResponse is the JSON shape of `status`.
type StatusResponse struct {
	Network  string           `json:"network"`
	Expected string           `json:"expected_chain_id"`
	Session  session.State    `json:"session"`
	Ready    bool             `json:"ready"`
	Problem  string           `json:"problem,omitempty"`
	Metrics  metrics.Snapshot `json:"metrics"`
}

func runConnect(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	ctx, cancel := contextWithSignals(cmd)
	defer cancel()

	m, err := openSession(ctx, cc)
	if err != nil {
		return err
	}
	if err := m.Connect(ctx); err != nil {
		return err
	}

	return displayStatus(cmd.OutOrStdout(), cc, m)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	ctx, cancel := contextWithTimeout(cmd, walletStateTimeout)
	defer cancel()

	m, err := openSession(ctx, cc)
	if err != nil {
		return err
	}
	return displayStatus(cmd.OutOrStdout(), cc, m)
}

func runNetworkSwitch(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	ctx, cancel := contextWithSignals(cmd)
	defer cancel()

	m, err := openSession(ctx, cc)
	if err != nil {
		return err
	}
	if err := m.SwitchChain(ctx); err != nil {
		return err
	}
	if !cc.Formatter.IsJSON() {
		output.Successf("Wallet is on %s (%s)", m.Network().Name, m.State().ChainID)
		return nil
	}
	return displayStatus(cmd.OutOrStdout(), cc, m)
}

func runNetworkShow(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	n := cc.Network()
	w := cmd.OutOrStdout()

	if cc.Formatter.IsJSON() {
		return output.WriteJSON(w, n.AddChain)
	}
	displayNetworkText(w, n)
	return nil
}

func displayStatus(w io.Writer, cc *CommandContext, m *session.Manager) error {
	state := m.State()
	resp := StatusResponse{
		Network:  m.Network().Name,
		Expected: m.Network().ChainID,
		Session:  state,
		Ready:    state.Ready(),
		Metrics:  cc.Metrics.Snapshot(),
	}
	if err := m.Err(); err != nil {
		resp.Problem = err.Error()
	}

	if cc.Formatter.IsJSON() {
		return output.WriteJSON(w, resp)
	}

	t := output.NewTable()
	t.SetNoHeader(true)
	t.AddRow("Network", resp.Network+" ("+resp.Expected+")")
	t.AddRow("Wallet", yesNo(state.Available, "available", "unavailable"))
	t.AddRow("Account", orNone(state.Account))
	t.AddRow("Chain", orNone(state.ChainID))
	t.AddRow("Ready", yesNo(resp.Ready, "yes", "no"))
	if resp.Problem != "" {
		t.AddRow("Problem", resp.Problem)
	}
	return t.Render(w)
}

func displayNetworkText(w io.Writer, n chain.Network) {
	out(w, "Network:  %s\n", n.Name)
	out(w, "Chain ID: %s\n", n.ChainID)
	out(w, "Explorer: %s\n", orNone(n.Explorer))
	for _, u := range n.AddChain.RPCURLs {
		out(w, "RPC:      %s\n", u)
	}
}

func yesNo(b bool, yes, no string) string {
	if b {
		return yes
	}
	return no
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
