// Package provider defines the wallet capability set the payout flow consumes
// and a JSON-RPC backed implementation of it.
package provider

import (
	"context"
	"errors"
	"math/big"

	"github.com/Asad272002/TaskWiser-V2/internal/chain"
)

// EIP-1193 provider error codes.
const (
	CodeUserRejected      = 4001
	CodeUnauthorized      = 4100
	CodeUnrecognizedChain = 4902
)

// TxRequest is a transaction the wallet signs and submits.
type TxRequest struct {
	From  string
	To    string
	Value *big.Int
	Data  []byte
}

// Receipt reports an included transaction.
type Receipt struct {
	TxHash      string
	BlockNumber uint64
	Succeeded   bool
}

// Provider is the wallet capability set. Calls that show wallet prompts may
// block until the user acts; implementations must not add their own timeout.
type Provider interface {
	Accounts(ctx context.Context) ([]string, error)
	RequestAccounts(ctx context.Context) ([]string, error)
	ChainID(ctx context.Context) (string, error)
	SwitchChain(ctx context.Context, chainID string) error
	AddChain(ctx context.Context, params chain.AddChainParams) error
	SendTransaction(ctx context.Context, tx TxRequest) (string, error)
	WaitForConfirmation(ctx context.Context, txHash string, confirmations int) (*Receipt, error)

	// OnAccountsChanged and OnChainChanged register handlers for
	// provider-pushed notifications. The returned func unsubscribes.
	OnAccountsChanged(handler func(accounts []string)) (unsubscribe func())
	OnChainChanged(handler func(chainID string)) (unsubscribe func())
}

// LogWriter is the logging surface providers use.
type LogWriter interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

// Error is a provider error carrying an EIP-1193 code.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// ErrorCode returns the EIP-1193 code.
func (e *Error) ErrorCode() int {
	return e.Code
}

// ErrorMessage returns the provider message.
func (e *Error) ErrorMessage() string {
	return e.Message
}

// ErrorCode extracts a provider error code from err.
func ErrorCode(err error) (int, bool) {
	var coded interface{ ErrorCode() int }
	if errors.As(err, &coded) {
		return coded.ErrorCode(), true
	}
	return 0, false
}

// ErrorMessage extracts the provider's own message from err, falling back to err.Error().
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var msg interface{ ErrorMessage() string }
	if errors.As(err, &msg) {
		return msg.ErrorMessage()
	}
	return err.Error()
}

// IsUserRejected reports a 4001 rejection.
func IsUserRejected(err error) bool {
	code, ok := ErrorCode(err)
	return ok && code == CodeUserRejected
}

// IsUnrecognizedChain reports a 4902 unknown-chain error.
func IsUnrecognizedChain(err error) bool {
	code, ok := ErrorCode(err)
	return ok && code == CodeUnrecognizedChain
}
