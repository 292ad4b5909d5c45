package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Asad272002/TaskWiser-V2/internal/chain/eth"
	"github.com/Asad272002/TaskWiser-V2/internal/output"
	"github.com/Asad272002/TaskWiser-V2/internal/payout"
)

// tokensCmd lists payable tokens.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var tokensCmd = &cobra.Command{
	Use:     "tokens",
	Short:   "List the tokens payouts can use",
	GroupID: "payout",
	Long: `List the ERC-20 tokens configured for the payout network, filtered by
payout.allowed_tokens when it is set. The first entry is used when no
--token is given and the default token is not allowed.`,
	Example: `  taskwiser tokens
  taskwiser tokens --all -o json`,
	RunE: runTokens,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var tokensAll bool

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(tokensCmd)
	tokensCmd.Flags().BoolVar(&tokensAll, "all", false, "ignore payout.allowed_tokens")
}

// TokenEntry is the JSON shape of one token.
type TokenEntry struct {
	Symbol   string `json:"symbol"`
	Address  string `json:"address"`
	Decimals int    `json:"decimals"`
	Label    string `json:"label,omitempty"`
	Default  bool   `json:"default"`
}

func runTokens(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	registry, err := cc.Registry()
	if err != nil {
		return err
	}

	var allowed []string
	if !tokensAll {
		allowed = cc.Config.Payout.AllowedTokens
	}
	allow := payout.ResolveAllowList(registry, allowed)

	def, err := payout.SelectToken(cc.Config.Payout.DefaultToken, allow)
	if err != nil {
		return err
	}

	entries := make([]TokenEntry, 0, len(allow))
	for _, t := range allow {
		entries = append(entries, tokenEntry(t, t.Symbol == def.Symbol))
	}

	w := cmd.OutOrStdout()
	if cc.Formatter.IsJSON() {
		return output.WriteJSON(w, entries)
	}

	t := output.NewTable("", "SYMBOL", "NAME", "DECIMALS", "CONTRACT")
	t.AlignRight(4)
	for _, e := range entries {
		marker := ""
		if e.Default {
			marker = "*"
		}
		t.AddRow(marker, e.Symbol, e.Label, strconv.Itoa(e.Decimals), e.Address)
	}
	return t.Render(w)
}

func tokenEntry(t eth.Token, isDefault bool) TokenEntry {
	return TokenEntry{
		Symbol:   t.Symbol,
		Address:  t.Address,
		Decimals: t.Decimals,
		Label:    t.Label,
		Default:  isDefault,
	}
}
