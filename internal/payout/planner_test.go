package payout_test

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Asad272002/TaskWiser-V2/internal/chain/eth"
	"github.com/Asad272002/TaskWiser-V2/internal/payout"
	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

const (
	recipientA = "0xABCDEF0123456789ABCDEF0123456789ABCDEF01"
	recipientB = "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
	recipientC = "0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB"
)

func usdc(t *testing.T) eth.Token {
	t.Helper()
	tok, ok := eth.DefaultRegistry().Lookup("USDC")
	require.True(t, ok)
	return tok
}

func TestResolveTargets(t *testing.T) {
	t.Parallel()
	single := &payout.Target{Address: recipientA, Amount: "10"}
	batch := []payout.Target{{Address: recipientA, Amount: "1"}, {Address: recipientB, Amount: "2"}}

	assert.Equal(t, []payout.Target{*single}, payout.ResolveTargets(payout.ModeSingle, single, batch))
	assert.Equal(t, batch, payout.ResolveTargets(payout.ModeBatch, single, batch))
	assert.Empty(t, payout.ResolveTargets(payout.ModeSingle, nil, batch))
	assert.Empty(t, payout.ResolveTargets(payout.ModeBatch, single, nil))
	assert.Empty(t, payout.ResolveTargets(payout.Mode("other"), single, batch))

	resolved := payout.ResolveTargets(payout.ModeBatch, nil, batch)
	resolved[0].Amount = "99"
	assert.Equal(t, "1", batch[0].Amount, "resolved list must not alias the input")
}

func TestParseMode(t *testing.T) {
	t.Parallel()
	m, err := payout.ParseMode(" Batch ")
	require.NoError(t, err)
	assert.Equal(t, payout.ModeBatch, m)

	_, err = payout.ParseMode("bulk")
	require.ErrorIs(t, err, wiserr.ErrInvalidInput)
}

func TestValidateTargets(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		targets []payout.Target
		wantErr error
	}{
		{name: "empty", targets: nil, wantErr: wiserr.ErrNoRecipients},
		{name: "valid", targets: []payout.Target{{Address: recipientA, Amount: "10"}, {Address: recipientB, Amount: "0.5"}}},
		{name: "lowercase address", targets: []payout.Target{{Address: "0xabcdef0123456789abcdef0123456789abcdef01", Amount: "1"}}},
		{name: "short address", targets: []payout.Target{{Address: "0x1234", Amount: "1"}}, wantErr: wiserr.ErrInvalidAddress},
		{name: "bad checksum", targets: []payout.Target{{Address: "0xFb6916095ca1df60bB79Ce92cE3Ea74c37c5d359", Amount: "1"}}, wantErr: wiserr.ErrInvalidAddress},
		{name: "zero amount", targets: []payout.Target{{Address: recipientA, Amount: "0"}}, wantErr: wiserr.ErrNonPositiveAmount},
		{name: "negative amount", targets: []payout.Target{{Address: recipientA, Amount: "-3"}}, wantErr: wiserr.ErrNonPositiveAmount},
		{name: "garbage amount", targets: []payout.Target{{Address: recipientA, Amount: "ten"}}, wantErr: wiserr.ErrInvalidAmount},
		{
			name: "one bad rejects batch",
			targets: []payout.Target{
				{Address: recipientA, Amount: "1"},
				{Address: "not-an-address", Amount: "1"},
				{Address: recipientB, Amount: "1"},
			},
			wantErr: wiserr.ErrInvalidAddress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := payout.ValidateTargets(tt.targets)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateTargets_NamesOffendingAddress(t *testing.T) {
	t.Parallel()
	err := payout.ValidateTargets([]payout.Target{{Address: "0xnope", Amount: "1"}})

	var we *wiserr.WiserError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, "0xnope", we.Details["address"])
}

func TestValidateTargets_Idempotent(t *testing.T) {
	t.Parallel()
	targets := []payout.Target{{Address: recipientA, Amount: "1"}, {Address: recipientB, Amount: "0"}}
	before := append([]payout.Target(nil), targets...)

	first := payout.ValidateTargets(targets)
	second := payout.ValidateTargets(targets)
	assert.Equal(t, first.Error(), second.Error())
	assert.Equal(t, before, targets)
}

func TestCheckDuplicates(t *testing.T) {
	t.Parallel()
	require.NoError(t, payout.CheckDuplicates([]payout.Target{
		{Address: recipientA, Amount: "1"},
		{Address: recipientB, Amount: "1"},
	}))

	err := payout.CheckDuplicates([]payout.Target{
		{Address: recipientA, Amount: "1"},
		{Address: recipientB, Amount: "1"},
		{Address: "0xabcdef0123456789abcdef0123456789abcdef01", Amount: "2"},
	})
	require.ErrorIs(t, err, wiserr.ErrDuplicateRecipient)
}

func TestResolveAllowList(t *testing.T) {
	t.Parallel()
	reg := eth.DefaultRegistry()

	symbols := func(tokens []eth.Token) []string {
		out := make([]string, len(tokens))
		for i, tok := range tokens {
			out[i] = tok.Symbol
		}
		return out
	}

	assert.Equal(t, []string{"USDC", "USDT"}, symbols(payout.ResolveAllowList(reg, nil)))
	assert.Equal(t, []string{"USDT"}, symbols(payout.ResolveAllowList(reg, []string{"usdt", "DAI"})))
	assert.Equal(t, []string{"USDT", "USDC"}, symbols(payout.ResolveAllowList(reg, []string{"USDT", "USDC", "usdt"})))
	assert.Equal(t, []string{"USDC", "USDT"}, symbols(payout.ResolveAllowList(reg, []string{"DAI", " "})))
}

func TestSelectToken(t *testing.T) {
	t.Parallel()
	reg := eth.DefaultRegistry()
	allow := payout.ResolveAllowList(reg, []string{"USDT", "USDC"})

	tok, err := payout.SelectToken("usdc", allow)
	require.NoError(t, err)
	assert.Equal(t, "USDC", tok.Symbol)

	tok, err = payout.SelectToken("DAI", allow)
	require.NoError(t, err)
	assert.Equal(t, "USDT", tok.Symbol)

	onlyUSDT := payout.ResolveAllowList(reg, []string{"USDT"})
	tok, err = payout.SelectToken("USDC", onlyUSDT)
	require.NoError(t, err)
	assert.Equal(t, "USDT", tok.Symbol)

	_, err = payout.SelectToken("USDC", nil)
	require.ErrorIs(t, err, wiserr.ErrTokenNotFound)
}

func TestRequireToken_Suggestion(t *testing.T) {
	t.Parallel()
	allow := eth.DefaultRegistry().All()

	_, err := payout.RequireToken("USCD", allow)
	require.ErrorIs(t, err, wiserr.ErrTokenNotAllowed)
	var we *wiserr.WiserError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, "Did you mean USDC?", we.Suggestion)

	_, err = payout.RequireToken("WBTC", allow)
	require.ErrorAs(t, err, &we)
	assert.Empty(t, we.Suggestion)
}

func TestPlan_AtomicAmount(t *testing.T) {
	t.Parallel()
	transfers, err := payout.Plan([]payout.Target{{Address: recipientB, Amount: "12.5"}}, usdc(t))
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	assert.Equal(t, big.NewInt(12500000), transfers[0].Atomic)
}

func TestPlan_TransferCallData(t *testing.T) {
	t.Parallel()
	token := usdc(t)
	transfers, err := payout.Plan([]payout.Target{{Address: recipientA, Amount: "10"}}, token)
	require.NoError(t, err)
	require.Len(t, transfers, 1)

	want := "a9059cbb" +
		"000000000000000000000000abcdef0123456789abcdef0123456789abcdef01" +
		"0000000000000000000000000000000000000000000000000000000000989680"
	assert.Equal(t, want, hex.EncodeToString(transfers[0].Data))

	tx := transfers[0].TxRequest(recipientB)
	assert.Equal(t, recipientB, tx.From)
	assert.Equal(t, token.Address, tx.To)
	assert.Equal(t, 0, tx.Value.Sign())
}

func TestPlan_Precision(t *testing.T) {
	t.Parallel()
	token := usdc(t)

	_, err := payout.Plan([]payout.Target{{Address: recipientA, Amount: "1.0000001"}}, token)
	require.ErrorIs(t, err, wiserr.ErrAmountPrecision)

	transfers, err := payout.Plan([]payout.Target{{Address: recipientA, Amount: "1.500000000"}}, token)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1500000), transfers[0].Atomic)
}

func TestPlan_RejectsAmountBeyondUint256(t *testing.T) {
	t.Parallel()
	twoTo256 := new(big.Int).Lsh(big.NewInt(1), 256).String()

	_, err := payout.Plan([]payout.Target{
		{Address: recipientA, Amount: "1"},
		{Address: recipientB, Amount: twoTo256},
	}, usdc(t))
	require.ErrorIs(t, err, wiserr.ErrInvalidAmount)

	var we *wiserr.WiserError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, "2", we.Details["recipient"])
}

func TestPlan_KeepsOrderAndIndex(t *testing.T) {
	t.Parallel()
	targets := []payout.Target{
		{Address: recipientA, Amount: "1"},
		{Address: recipientB, Amount: "2"},
		{Address: recipientC, Amount: "3"},
	}
	transfers, err := payout.Plan(targets, usdc(t))
	require.NoError(t, err)
	require.Len(t, transfers, 3)
	for i, tr := range transfers {
		assert.Equal(t, i, tr.Index)
		assert.Equal(t, targets[i], tr.Target)
		to, amount, err := eth.DecodeTransfer(tr.Data)
		require.NoError(t, err)
		assert.Equal(t, eth.AddressKey(targets[i].Address), eth.AddressKey(to.Hex()))
		assert.Equal(t, int64((i+1)*1_000_000), amount.Int64())
	}
}

func decodeTransfer(data []byte) (string, int64, error) {
	to, amount, err := eth.DecodeTransfer(data)
	if err != nil {
		return "", 0, err
	}
	return eth.AddressKey(to.Hex()), amount.Int64(), nil
}
