// Package store defines persistence for tasks awaiting payout and for
// wallet login nonces.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/Asad272002/TaskWiser-V2/internal/chain/eth"
)

// Task statuses.
const (
	TaskTodo       = "todo"
	TaskInProgress = "inprogress"
	TaskReview     = "review"
	TaskDone       = "done"
)

// Task is a board task carrying a reward for its assignee.
type Task struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Status          string     `json:"status"`
	Reward          string     `json:"reward,omitempty"`
	RewardAmount    string     `json:"reward_amount,omitempty"`
	AssigneeAddress string     `json:"assignee_address,omitempty"`
	Paid            bool       `json:"paid"`
	PaidTxHash      string     `json:"paid_tx_hash,omitempty"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Payable reports whether the task is done, rewarded and not yet paid.
func (t Task) Payable() bool {
	return strings.EqualFold(t.Status, TaskDone) &&
		!t.Paid &&
		t.Reward != "" &&
		t.RewardAmount != "" &&
		t.AssigneeAddress != ""
}

// TaskStore reads tasks and records their payment.
type TaskStore interface {
	Get(ctx context.Context, id string) (*Task, error)
	ListPayable(ctx context.Context) ([]Task, error)
	MarkPaid(ctx context.Context, id, txHash string) error
	Save(ctx context.Context, task Task) error
}

// Nonce is a single-use login challenge for a wallet.
type Nonce struct {
	Address   string    `json:"address"`
	Value     string    `json:"nonce"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the nonce is past its expiry at now.
func (n Nonce) Expired(now time.Time) bool {
	return !now.Before(n.ExpiresAt)
}

// NonceStore keeps the latest nonce per wallet address.
type NonceStore interface {
	PutNonce(ctx context.Context, nonce Nonce) error
	GetNonce(ctx context.Context, address string) (*Nonce, error)
	// ConsumeNonce deletes the nonce for address only when it is live and
	// equals value, returning ErrNonceNotFound otherwise. At most one of
	// several concurrent calls for the same nonce succeeds.
	ConsumeNonce(ctx context.Context, address, value string) error
}

// Store is the full persistence surface.
type Store interface {
	TaskStore
	NonceStore
	Close()
}

// NonceKey normalizes an address for nonce storage.
func NonceKey(address string) string {
	return eth.AddressKey(address)
}
