package eth_test

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Asad272002/TaskWiser-V2/internal/chain/eth"
	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

func TestEncodeTransfer(t *testing.T) {
	t.Parallel()
	to := "0xABCDEF0123456789ABCDEF0123456789ABCDEF01"

	data, err := eth.EncodeTransfer(to, big.NewInt(10_000_000))
	require.NoError(t, err)
	require.Len(t, data, eth.TransferDataLength)

	want := "a9059cbb" +
		"000000000000000000000000abcdef0123456789abcdef0123456789abcdef01" +
		"0000000000000000000000000000000000000000000000000000000000989680"
	assert.Equal(t, want, hex.EncodeToString(data))
}

func TestEncodeTransfer_SelectorMatchesABI(t *testing.T) {
	t.Parallel()
	data, err := eth.EncodeTransfer("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, eth.TransferSelector, data[:4])
}

func TestEncodeTransfer_Invalid(t *testing.T) {
	t.Parallel()
	_, err := eth.EncodeTransfer("0x123", big.NewInt(1))
	require.ErrorIs(t, err, wiserr.ErrInvalidAddress)

	_, err = eth.EncodeTransfer("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", big.NewInt(0))
	require.ErrorIs(t, err, wiserr.ErrNonPositiveAmount)

	_, err = eth.EncodeTransfer("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", nil)
	require.ErrorIs(t, err, wiserr.ErrNonPositiveAmount)
}

func TestEncodeTransfer_Uint256Bound(t *testing.T) {
	t.Parallel()
	to := "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	limit := new(big.Int).Lsh(big.NewInt(1), 256)

	_, err := eth.EncodeTransfer(to, limit)
	require.ErrorIs(t, err, wiserr.ErrInvalidAmount)

	largest := new(big.Int).Sub(limit, big.NewInt(1))
	data, err := eth.EncodeTransfer(to, largest)
	require.NoError(t, err)
	_, got, err := eth.DecodeTransfer(data)
	require.NoError(t, err)
	assert.Equal(t, 0, largest.Cmp(got))
}

func TestDecodeTransfer_RoundTrip(t *testing.T) {
	t.Parallel()
	amount, _ := new(big.Int).SetString("123456789000000000000", 10)
	data, err := eth.EncodeTransfer("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", amount)
	require.NoError(t, err)

	to, got, err := eth.DecodeTransfer(data)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"), to)
	assert.Equal(t, 0, amount.Cmp(got))
}

func TestDecodeTransfer_Rejects(t *testing.T) {
	t.Parallel()
	_, _, err := eth.DecodeTransfer([]byte{0xa9, 0x05, 0x9c, 0xbb})
	require.ErrorIs(t, err, wiserr.ErrInvalidFormat)

	wrongSelector := make([]byte, eth.TransferDataLength)
	_, _, err = eth.DecodeTransfer(wrongSelector)
	require.ErrorIs(t, err, wiserr.ErrInvalidFormat)
}
