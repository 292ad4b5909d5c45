package payout

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/samber/lo"

	"github.com/Asad272002/TaskWiser-V2/internal/chain"
	"github.com/Asad272002/TaskWiser-V2/internal/chain/eth"
	"github.com/Asad272002/TaskWiser-V2/internal/provider"
	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

// maxSuggestionDistance bounds "did you mean" token suggestions.
const maxSuggestionDistance = 2

// Transfer is one planned ERC-20 transfer.
type Transfer struct {
	Index  int
	Target Target
	Token  eth.Token
	Atomic *big.Int
	Data   []byte
}

// TxRequest builds the wallet request sending this transfer from the given account.
func (t Transfer) TxRequest(from string) provider.TxRequest {
	return provider.TxRequest{
		From:  from,
		To:    t.Token.Address,
		Value: new(big.Int),
		Data:  t.Data,
	}
}

// ResolveTargets turns a mode and its inputs into the recipient list.
func ResolveTargets(mode Mode, single *Target, batch []Target) []Target {
	switch {
	case mode == ModeSingle && single != nil:
		return []Target{*single}
	case mode == ModeBatch && len(batch) > 0:
		out := make([]Target, len(batch))
		copy(out, batch)
		return out
	}
	return []Target{}
}

// ValidateTargets checks every recipient and fails on the first bad one.
func ValidateTargets(targets []Target) error {
	if len(targets) == 0 {
		return wiserr.ErrNoRecipients
	}

	for i, t := range targets {
		if err := eth.ValidateAddress(t.Address); err != nil {
			return err
		}

		sign, err := chain.DecimalSign(t.Amount)
		if err != nil {
			return wiserr.WithDetails(wiserr.ErrInvalidAmount, map[string]string{
				"recipient": strconv.Itoa(i + 1),
				"amount":    t.Amount,
			})
		}
		if sign <= 0 {
			return wiserr.WithDetails(wiserr.ErrNonPositiveAmount, map[string]string{
				"recipient": strconv.Itoa(i + 1),
				"amount":    t.Amount,
			})
		}
	}
	return nil
}

// CheckDuplicates fails when an address appears more than once.
func CheckDuplicates(targets []Target) error {
	dups := lo.FindDuplicatesBy(targets, Target.Key)
	if len(dups) == 0 {
		return nil
	}
	return wiserr.WithDetails(wiserr.ErrDuplicateRecipient, map[string]string{
		"address": dups[0].Address,
	})
}

// ResolveAllowList returns the registry tokens named in allowed, in the
// order given. Unknown symbols are dropped; an empty result means every
// registered token.
func ResolveAllowList(registry *eth.Registry, allowed []string) []eth.Token {
	symbols := lo.Uniq(lo.FilterMap(allowed, func(s string, _ int) (string, bool) {
		s = strings.ToUpper(strings.TrimSpace(s))
		return s, s != ""
	}))

	tokens := lo.FilterMap(symbols, func(s string, _ int) (eth.Token, bool) {
		return registry.Lookup(s)
	})
	if len(tokens) == 0 {
		return registry.All()
	}
	return tokens
}

// SelectToken returns the requested token when it is allowed, otherwise the
// first allowed token.
func SelectToken(requested string, allow []eth.Token) (eth.Token, error) {
	if len(allow) == 0 {
		return eth.Token{}, wiserr.WithDetails(wiserr.ErrTokenNotFound, map[string]string{"reason": "no tokens configured"})
	}
	if t, ok := findToken(requested, allow); ok {
		return t, nil
	}
	return allow[0], nil
}

// RequireToken returns the named token from allow, or ErrTokenNotAllowed with
// a spelling suggestion.
func RequireToken(symbol string, allow []eth.Token) (eth.Token, error) {
	if t, ok := findToken(symbol, allow); ok {
		return t, nil
	}

	err := wiserr.WithDetails(wiserr.ErrTokenNotAllowed, map[string]string{
		"token":   symbol,
		"allowed": strings.Join(lo.Map(allow, func(t eth.Token, _ int) string { return t.Symbol }), ","),
	})
	if s := suggestToken(symbol, allow); s != "" {
		err = wiserr.WithSuggestion(err, "Did you mean "+s+"?")
	}
	return eth.Token{}, err
}

func findToken(symbol string, allow []eth.Token) (eth.Token, bool) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	return lo.Find(allow, func(t eth.Token) bool { return t.Symbol == symbol })
}

func suggestToken(symbol string, allow []eth.Token) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	best, bestDist := "", maxSuggestionDistance+1
	for _, t := range allow {
		if d := levenshtein.ComputeDistance(symbol, t.Symbol); d < bestDist {
			best, bestDist = t.Symbol, d
		}
	}
	return best
}

// Plan computes the atomic amount and call data of every transfer. Amounts
// finer than the token's precision are rejected rather than truncated.
func Plan(targets []Target, token eth.Token) ([]Transfer, error) {
	out := make([]Transfer, 0, len(targets))
	for i, t := range targets {
		atomic, err := chain.ParseDecimalAmount(t.Amount, token.Decimals)
		if err != nil {
			if wiserr.Is(err, wiserr.ErrAmountPrecision) {
				return nil, wiserr.WithDetails(wiserr.ErrAmountPrecision, map[string]string{
					"recipient": strconv.Itoa(i + 1),
					"amount":    t.Amount,
					"token":     token.Symbol,
					"decimals":  strconv.Itoa(token.Decimals),
				})
			}
			return nil, wiserr.WithDetails(wiserr.ErrInvalidAmount, map[string]string{
				"recipient": strconv.Itoa(i + 1),
				"amount":    t.Amount,
			})
		}
		if atomic.Sign() <= 0 {
			return nil, wiserr.WithDetails(wiserr.ErrNonPositiveAmount, map[string]string{
				"recipient": strconv.Itoa(i + 1),
				"amount":    t.Amount,
			})
		}
		if atomic.BitLen() > eth.MaxAmountBits {
			return nil, wiserr.WithDetails(wiserr.ErrInvalidAmount, map[string]string{
				"recipient": strconv.Itoa(i + 1),
				"amount":    t.Amount,
				"reason":    "exceeds uint256",
			})
		}

		data, err := eth.EncodeTransfer(t.Address, atomic)
		if err != nil {
			return nil, err
		}
		out = append(out, Transfer{Index: i, Target: t, Token: token, Atomic: atomic, Data: data})
	}
	return out, nil
}
