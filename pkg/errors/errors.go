// Package errors provides structured error handling for TaskWiser.
// It defines sentinel errors, exit codes, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes returned by the CLI.
const (
	ExitSuccess    = 0 // Successful execution
	ExitGeneral    = 1 // General/unknown error
	ExitInput      = 2 // Invalid input
	ExitAuth       = 3 // Wallet rejected or not authorized
	ExitNotFound   = 4 // Resource not found
	ExitPermission = 5 // Permission denied or insufficient funds
	ExitStopped    = 6 // Payout run stopped after it started
)

// WiserError is the structured error type for TaskWiser.
type WiserError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *WiserError) Error() string {
	msg := e.Message

	// Include details in error message (sorted for deterministic output)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *WiserError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for WiserError.
func (e *WiserError) Is(target error) bool {
	var t *WiserError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors.
var (
	ErrGeneral = &WiserError{
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &WiserError{
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	ErrNotFound = &WiserError{
		Code:     "NOT_FOUND",
		Message:  "resource not found",
		ExitCode: ExitNotFound,
	}

	ErrPermission = &WiserError{
		Code:     "PERMISSION_DENIED",
		Message:  "permission denied",
		ExitCode: ExitPermission,
	}

	// Wallet provider and session errors.
	ErrProviderUnavailable = &WiserError{
		Code:     "PROVIDER_UNAVAILABLE",
		Message:  "wallet provider was not detected",
		ExitCode: ExitGeneral,
	}

	ErrNotConnected = &WiserError{
		Code:     "NOT_CONNECTED",
		Message:  "connect your wallet first",
		ExitCode: ExitAuth,
	}

	ErrWrongNetwork = &WiserError{
		Code:     "WRONG_NETWORK",
		Message:  "switch to the payout network to continue",
		ExitCode: ExitInput,
	}

	ErrUserRejected = &WiserError{
		Code:     "USER_REJECTED",
		Message:  "user rejected the request",
		ExitCode: ExitAuth,
	}

	ErrInsufficientFunds = &WiserError{
		Code:     "INSUFFICIENT_FUNDS",
		Message:  "insufficient funds to cover gas or amount",
		ExitCode: ExitPermission,
	}

	ErrUnexpectedProvider = &WiserError{
		Code:     "UNEXPECTED_PROVIDER_ERROR",
		Message:  "unexpected provider error",
		ExitCode: ExitGeneral,
	}

	// Payout validation errors.
	ErrNoRecipients = &WiserError{
		Code:     "NO_RECIPIENTS",
		Message:  "no assignees provided",
		ExitCode: ExitInput,
	}

	ErrInvalidAddress = &WiserError{
		Code:     "INVALID_ADDRESS",
		Message:  "invalid address format",
		ExitCode: ExitInput,
	}

	ErrNonPositiveAmount = &WiserError{
		Code:     "NON_POSITIVE_AMOUNT",
		Message:  "amounts must be greater than zero",
		ExitCode: ExitInput,
	}

	ErrInvalidAmount = &WiserError{
		Code:     "INVALID_AMOUNT",
		Message:  "invalid amount format",
		ExitCode: ExitInput,
	}

	ErrAmountPrecision = &WiserError{
		Code:     "AMOUNT_PRECISION",
		Message:  "amount has more decimal places than the token supports",
		ExitCode: ExitInput,
	}

	ErrDuplicateRecipient = &WiserError{
		Code:     "DUPLICATE_RECIPIENT",
		Message:  "recipient appears more than once",
		ExitCode: ExitInput,
	}

	ErrTokenNotFound = &WiserError{
		Code:     "TOKEN_NOT_FOUND",
		Message:  "token not found",
		ExitCode: ExitNotFound,
	}

	ErrTokenNotAllowed = &WiserError{
		Code:     "TOKEN_NOT_ALLOWED",
		Message:  "token is not in the allowed list",
		ExitCode: ExitInput,
	}

	// Payout run errors.
	ErrRunInProgress = &WiserError{
		Code:     "RUN_IN_PROGRESS",
		Message:  "a payout run is already in progress",
		ExitCode: ExitGeneral,
	}

	ErrRunLocked = &WiserError{
		Code:     "RUN_LOCKED",
		Message:  "another payout process holds the run lock",
		ExitCode: ExitGeneral,
	}

	ErrTxReverted = &WiserError{
		Code:     "TX_REVERTED",
		Message:  "transaction reverted on-chain",
		ExitCode: ExitStopped,
	}

	ErrNetworkError = &WiserError{
		Code:     "NETWORK_ERROR",
		Message:  "network communication failed",
		ExitCode: ExitGeneral,
	}

	// Store errors.
	ErrTaskNotFound = &WiserError{
		Code:     "TASK_NOT_FOUND",
		Message:  "task not found",
		ExitCode: ExitNotFound,
	}

	ErrTaskNotPayable = &WiserError{
		Code:     "TASK_NOT_PAYABLE",
		Message:  "task cannot be paid",
		ExitCode: ExitInput,
	}

	ErrNonceNotFound = &WiserError{
		Code:     "NONCE_NOT_FOUND",
		Message:  "nonce not found or expired",
		ExitCode: ExitNotFound,
	}

	ErrInvalidSignature = &WiserError{
		Code:     "INVALID_SIGNATURE",
		Message:  "signature does not match the wallet address",
		ExitCode: ExitAuth,
	}

	ErrInvalidToken = &WiserError{
		Code:     "INVALID_TOKEN",
		Message:  "session token is invalid or expired",
		ExitCode: ExitAuth,
	}

	// Config-specific errors.
	ErrConfigNotFound = &WiserError{
		Code:     "CONFIG_NOT_FOUND",
		Message:  "configuration file not found",
		ExitCode: ExitNotFound,
	}

	ErrConfigInvalid = &WiserError{
		Code:     "CONFIG_INVALID",
		Message:  "configuration file is invalid",
		ExitCode: ExitInput,
	}

	ErrUnknownConfigKey = &WiserError{
		Code:     "UNKNOWN_CONFIG_KEY",
		Message:  "unknown config key",
		ExitCode: ExitInput,
	}

	ErrInvalidFormat = &WiserError{
		Code:     "INVALID_FORMAT",
		Message:  "invalid format",
		ExitCode: ExitInput,
	}
)

// New creates a new WiserError with the given code and message.
func New(code, message string) *WiserError {
	return &WiserError{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var we *WiserError
	if errors.As(err, &we) {
		return &WiserError{
			Code:       we.Code,
			Message:    fmt.Sprintf("%s: %s", msg, we.Message),
			Details:    we.Details,
			Suggestion: we.Suggestion,
			Cause:      err,
			ExitCode:   we.ExitCode,
		}
	}

	return &WiserError{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithCause returns a copy of a sentinel carrying cause as its underlying error.
func WithCause(sentinel *WiserError, cause error) error {
	return &WiserError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		Details:    sentinel.Details,
		Suggestion: sentinel.Suggestion,
		Cause:      cause,
		ExitCode:   sentinel.ExitCode,
	}
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var we *WiserError
	if errors.As(err, &we) {
		return &WiserError{
			Code:       we.Code,
			Message:    we.Message,
			Details:    details,
			Suggestion: we.Suggestion,
			Cause:      we.Cause,
			ExitCode:   we.ExitCode,
		}
	}

	return &WiserError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var we *WiserError
	if errors.As(err, &we) {
		return &WiserError{
			Code:       we.Code,
			Message:    we.Message,
			Details:    we.Details,
			Suggestion: suggestion,
			Cause:      we.Cause,
			ExitCode:   we.ExitCode,
		}
	}

	return &WiserError{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var we *WiserError
	if errors.As(err, &we) {
		return we.ExitCode
	}

	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var we *WiserError
	if errors.As(err, &we) {
		return we.Code
	}
	return "GENERAL_ERROR"
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
