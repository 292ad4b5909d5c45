package eth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Asad272002/TaskWiser-V2/internal/chain/eth"
	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()
	r := eth.DefaultRegistry()
	assert.Equal(t, []string{"USDC", "USDT"}, r.Symbols())

	usdc, ok := r.Lookup("usdc")
	require.True(t, ok)
	assert.Equal(t, 6, usdc.Decimals)
	assert.Equal(t, "0x07865c6E87B9F70255377e024ace6630C1Eaa37F", usdc.Address)
	assert.Equal(t, "USD Coin (Sepolia)", usdc.Label)

	_, ok = r.Lookup("DAI")
	assert.False(t, ok)
}

func TestNewRegistry_OverrideAndAppend(t *testing.T) {
	t.Parallel()
	tokens := append(eth.DefaultTokens(),
		eth.Token{Symbol: "usdc", Address: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", Decimals: 6},
		eth.Token{Symbol: "DAI", Address: "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359", Decimals: 18},
	)
	r, err := eth.NewRegistry(tokens)
	require.NoError(t, err)
	assert.Equal(t, []string{"USDC", "USDT", "DAI"}, r.Symbols())

	usdc, _ := r.Lookup("USDC")
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", usdc.Address)
	assert.Equal(t, "USDC", usdc.Label)

	all := r.All()
	all[0].Symbol = "MUTATED"
	assert.Equal(t, "USDC", r.All()[0].Symbol)
}

func TestNewRegistry_Invalid(t *testing.T) {
	t.Parallel()
	_, err := eth.NewRegistry([]eth.Token{{Symbol: "", Address: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"}})
	require.ErrorIs(t, err, wiserr.ErrConfigInvalid)

	_, err = eth.NewRegistry([]eth.Token{{Symbol: "BAD", Address: "0x12"}})
	require.ErrorIs(t, err, wiserr.ErrInvalidAddress)

	_, err = eth.NewRegistry([]eth.Token{{Symbol: "NEG", Address: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", Decimals: -1}})
	require.ErrorIs(t, err, wiserr.ErrConfigInvalid)
}
