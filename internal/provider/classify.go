package provider

import (
	"context"
	"errors"
	"strings"

	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

// User-facing messages for classified provider failures.
const (
	MsgUserRejected      = "User rejected the request."
	MsgInsufficientFunds = "Insufficient funds to cover gas or amount."
	MsgUnexpected        = "Unexpected provider error."
	MsgReverted          = "Transaction reverted on-chain."
	MsgInterrupted       = "Interrupted while waiting for the wallet."
)

// Classify maps a provider failure onto the payout error taxonomy and returns
// the message shown next to the failing recipient.
func Classify(err error) (error, string) {
	if err == nil {
		return nil, ""
	}

	switch {
	case errors.Is(err, wiserr.ErrUserRejected):
		return err, MsgUserRejected
	case errors.Is(err, wiserr.ErrInsufficientFunds):
		return err, MsgInsufficientFunds
	case errors.Is(err, wiserr.ErrTxReverted):
		return err, MsgReverted
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return wiserr.WithCause(wiserr.ErrUnexpectedProvider, err), MsgInterrupted
	case IsUserRejected(err):
		return wiserr.WithCause(wiserr.ErrUserRejected, err), MsgUserRejected
	}

	msg := ErrorMessage(err)
	if strings.Contains(strings.ToLower(msg), "insufficient") {
		return wiserr.WithCause(wiserr.ErrInsufficientFunds, err), MsgInsufficientFunds
	}
	if strings.TrimSpace(msg) == "" {
		msg = MsgUnexpected
	}
	return wiserr.WithCause(wiserr.ErrUnexpectedProvider, err), msg
}
