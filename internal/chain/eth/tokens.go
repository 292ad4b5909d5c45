package eth

import (
	"strings"

	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

// Token describes an ERC-20 token payouts can be made in.
type Token struct {
	Symbol   string `json:"symbol" yaml:"symbol"`
	Address  string `json:"address" yaml:"address"`
	Decimals int    `json:"decimals" yaml:"decimals"`
	Label    string `json:"label" yaml:"label"`
}

// DefaultTokens returns the built-in Sepolia token set.
func DefaultTokens() []Token {
	return []Token{
		{
			Symbol:   "USDC",
			Address:  "0x07865c6E87B9F70255377e024ace6630C1Eaa37F",
			Decimals: 6,
			Label:    "USD Coin (Sepolia)",
		},
		{
			Symbol:   "USDT",
			Address:  "0x509Ee0d083DdF8AC028f2a56731412eE0E26B45E",
			Decimals: 6,
			Label:    "Tether USD (Sepolia)",
		},
	}
}

// Registry is an ordered, symbol-keyed set of supported tokens.
type Registry struct {
	tokens []Token
	index  map[string]int
}

// NewRegistry validates tokens and builds a registry.
// Later entries with the same symbol replace earlier ones in place.
func NewRegistry(tokens []Token) (*Registry, error) {
	r := &Registry{index: make(map[string]int, len(tokens))}
	for _, t := range tokens {
		t.Symbol = strings.ToUpper(strings.TrimSpace(t.Symbol))
		if t.Symbol == "" {
			return nil, wiserr.WithDetails(wiserr.ErrConfigInvalid, map[string]string{"reason": "token symbol is empty"})
		}
		if !IsValidAddress(t.Address) {
			return nil, wiserr.WithDetails(wiserr.ErrInvalidAddress, map[string]string{
				"token":   t.Symbol,
				"address": t.Address,
			})
		}
		if t.Decimals < 0 || t.Decimals > 36 {
			return nil, wiserr.WithDetails(wiserr.ErrConfigInvalid, map[string]string{
				"token":  t.Symbol,
				"reason": "decimals must be between 0 and 36",
			})
		}
		if t.Label == "" {
			t.Label = t.Symbol
		}
		if i, ok := r.index[t.Symbol]; ok {
			r.tokens[i] = t
			continue
		}
		r.index[t.Symbol] = len(r.tokens)
		r.tokens = append(r.tokens, t)
	}
	return r, nil
}

// DefaultRegistry returns a registry of DefaultTokens.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultTokens())
	if err != nil {
		panic(err) // built-in table is static
	}
	return r
}

// Lookup finds a token by symbol, case-insensitively.
func (r *Registry) Lookup(symbol string) (Token, bool) {
	i, ok := r.index[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return Token{}, false
	}
	return r.tokens[i], true
}

// All returns the tokens in registration order.
func (r *Registry) All() []Token {
	out := make([]Token, len(r.tokens))
	copy(out, r.tokens)
	return out
}

// Symbols returns the registered symbols in order.
func (r *Registry) Symbols() []string {
	out := make([]string, len(r.tokens))
	for i, t := range r.tokens {
		out[i] = t.Symbol
	}
	return out
}
