// Package payout validates recipient lists and drives sequential ERC-20
// transfers through a wallet provider.
package payout

import (
	"fmt"
	"strings"

	"github.com/Asad272002/TaskWiser-V2/internal/chain/eth"
	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

// Mode selects between paying one recipient or a list.
type Mode string

// Supported modes.
const (
	ModeSingle Mode = "single"
	ModeBatch  Mode = "batch"
)

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeSingle:
		return ModeSingle, nil
	case ModeBatch:
		return ModeBatch, nil
	}
	return "", wiserr.WithDetails(wiserr.ErrInvalidInput, map[string]string{"mode": s})
}

// Target is one recipient and the decimal amount owed to it.
type Target struct {
	Address string `json:"address" csv:"address" yaml:"address"`
	Amount  string `json:"amount" csv:"amount" yaml:"amount"`
}

// Key is the identity used for address-keyed status.
func (t Target) Key() string {
	return eth.AddressKey(t.Address)
}

// StatusKind is the per-recipient sub-state.
type StatusKind int

// Status kinds.
const (
	StatusIdle StatusKind = iota
	StatusPending
	StatusSuccess
	StatusError
)

func (k StatusKind) String() string {
	switch k {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return fmt.Sprintf("StatusKind(%d)", int(k))
}

// MarshalText renders the kind by name.
func (k StatusKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name written by MarshalText.
func (k *StatusKind) UnmarshalText(text []byte) error {
	for c := StatusIdle; c <= StatusError; c++ {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return wiserr.WithDetails(wiserr.ErrInvalidFormat, map[string]string{"status": string(text)})
}

// Status is the outcome of one recipient within a run.
type Status struct {
	Kind    StatusKind `json:"kind"`
	Message string     `json:"message,omitempty"`
	TxHash  string     `json:"tx_hash,omitempty"`
}

// Progress is the aggregate run counter.
type Progress struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Message string `json:"message"`
}

// RunState is the run-level state machine.
type RunState int

// Run states.
const (
	RunNotStarted RunState = iota
	RunRunning
	RunCompleted
	RunStopped
)

func (s RunState) String() string {
	switch s {
	case RunNotStarted:
		return "not_started"
	case RunRunning:
		return "running"
	case RunCompleted:
		return "completed"
	case RunStopped:
		return "stopped"
	}
	return fmt.Sprintf("RunState(%d)", int(s))
}

// MarshalText renders the state by name.
func (s RunState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name written by MarshalText.
func (s *RunState) UnmarshalText(text []byte) error {
	for c := RunNotStarted; c <= RunStopped; c++ {
		if c.String() == string(text) {
			*s = c
			return nil
		}
	}
	return wiserr.WithDetails(wiserr.ErrInvalidFormat, map[string]string{"state": string(text)})
}

// Snapshot is a copy of the executor's observable state.
type Snapshot struct {
	State         RunState          `json:"state"`
	Token         eth.Token         `json:"token"`
	Targets       []Target          `json:"targets"`
	Statuses      []Status          `json:"statuses"`
	ByAddress     map[string]Status `json:"by_address"`
	Progress      Progress          `json:"progress"`
	LastError     string            `json:"last_error,omitempty"`
	SuccessHashes []string          `json:"success_hashes"`
}

// StatusFor returns the address-keyed status of a recipient.
func (s Snapshot) StatusFor(address string) (Status, bool) {
	st, ok := s.ByAddress[eth.AddressKey(address)]
	return st, ok
}

// RunError reports the recipient a run stopped at. TxHash is set when the
// transfer reached the wallet but did not confirm.
type RunError struct {
	Index   int
	Target  Target
	Message string
	TxHash  string
	Err     error
}

func (e *RunError) Error() string {
	if e.TxHash != "" {
		return fmt.Sprintf("payout %d to %s stopped after submitting %s: %s", e.Index+1, e.Target.Address, e.TxHash, e.Message)
	}
	return fmt.Sprintf("payout %d to %s stopped: %s", e.Index+1, e.Target.Address, e.Message)
}

func (e *RunError) Unwrap() error {
	return e.Err
}
