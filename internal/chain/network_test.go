package chain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Asad272002/TaskWiser-V2/internal/chain"
)

func TestSepolia(t *testing.T) {
	t.Parallel()
	n := chain.Sepolia()
	assert.Equal(t, "0xaa36a7", n.ChainID)
	assert.Equal(t, "Sepolia Test Network", n.AddChain.ChainName)
	assert.Equal(t, []string{"https://sepolia.infura.io/v3/"}, n.AddChain.RPCURLs)
	assert.Equal(t, "SEP", n.AddChain.NativeCurrency.Symbol)
	assert.Equal(t, 18, n.AddChain.NativeCurrency.Decimals)
}

func TestNormalizeChainID(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"0xaa36a7":   "0xaa36a7",
		"0xAA36A7":   "0xaa36a7",
		"0x00aa36a7": "0xaa36a7",
		"11155111":   "0xaa36a7",
		"0x1":        "0x1",
	}
	for in, want := range tests {
		got, err := chain.NormalizeChainID(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "0x", "0xzz", "-1", "0"} {
		_, err := chain.NormalizeChainID(bad)
		require.Error(t, err, bad)
	}
}

func TestNetwork_Matches(t *testing.T) {
	t.Parallel()
	n := chain.Sepolia()
	assert.True(t, n.Matches("0xaa36a7"))
	assert.True(t, n.Matches("0xAA36A7"))
	assert.True(t, n.Matches("11155111"))
	assert.False(t, n.Matches("0x1"))
	assert.False(t, n.Matches(""))
}

func TestNetwork_TxURL(t *testing.T) {
	t.Parallel()
	n := chain.Sepolia()
	assert.Equal(t, "https://sepolia.etherscan.io/tx/0xabc", n.TxURL("0xabc"))
	assert.Empty(t, n.TxURL(""))
}
