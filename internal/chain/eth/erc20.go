package eth

import (
	"bytes"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

const erc20TransferABI = `[{
	"type": "function",
	"name": "transfer",
	"stateMutability": "nonpayable",
	"inputs": [
		{"name": "to", "type": "address"},
		{"name": "amount", "type": "uint256"}
	],
	"outputs": [{"name": "", "type": "bool"}]
}]`

// TransferSelector is keccak256("transfer(address,uint256)")[0:4].
//
//nolint:gochecknoglobals // ERC-20 constant
var TransferSelector = []byte{0xa9, 0x05, 0x9c, 0xbb}

// TransferDataLength is selector + two 32-byte words.
const TransferDataLength = 4 + 32 + 32

// MaxAmountBits is the width of the uint256 amount word.
const MaxAmountBits = 256

//nolint:gochecknoglobals // parsed once
var (
	erc20Once sync.Once
	erc20ABI  abi.ABI
	erc20Err  error
)

func transferABI() (abi.ABI, error) {
	erc20Once.Do(func() {
		erc20ABI, erc20Err = abi.JSON(strings.NewReader(erc20TransferABI))
	})
	return erc20ABI, erc20Err
}

// EncodeTransfer returns the call data for transfer(to, amount).
func EncodeTransfer(to string, amount *big.Int) ([]byte, error) {
	if !IsValidAddress(to) {
		return nil, wiserr.WithDetails(wiserr.ErrInvalidAddress, map[string]string{"address": to})
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, wiserr.ErrNonPositiveAmount
	}
	// The ABI packer wraps larger values modulo 2^256.
	if amount.BitLen() > MaxAmountBits {
		return nil, wiserr.WithDetails(wiserr.ErrInvalidAmount, map[string]string{
			"amount": amount.String(),
			"reason": "exceeds uint256",
		})
	}

	parsed, err := transferABI()
	if err != nil {
		return nil, fmt.Errorf("parsing transfer ABI: %w", err)
	}

	data, err := parsed.Pack("transfer", common.HexToAddress(to), amount)
	if err != nil {
		return nil, fmt.Errorf("packing transfer call: %w", err)
	}
	return data, nil
}

// DecodeTransfer parses transfer call data back into recipient and amount.
func DecodeTransfer(data []byte) (common.Address, *big.Int, error) {
	if len(data) != TransferDataLength || !bytes.Equal(data[:4], TransferSelector) {
		return common.Address{}, nil, wiserr.WithDetails(wiserr.ErrInvalidFormat, map[string]string{
			"reason": "not an ERC-20 transfer call",
		})
	}

	parsed, err := transferABI()
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("parsing transfer ABI: %w", err)
	}

	values, err := parsed.Methods["transfer"].Inputs.Unpack(data[4:])
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("unpacking transfer call: %w", err)
	}

	to, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, nil, wiserr.ErrInvalidFormat
	}
	amount, ok := values[1].(*big.Int)
	if !ok {
		return common.Address{}, nil, wiserr.ErrInvalidFormat
	}
	return to, amount, nil
}
