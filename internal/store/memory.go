package store

import (
	"context"
	"crypto/subtle"
	"strings"
	"sync"
	"time"

	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

// Memory is an in-process Store.
type Memory struct {
	mu     sync.RWMutex
	tasks  map[string]Task
	order  []string
	nonces map[string]Nonce
	now    func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		tasks:  make(map[string]Task),
		nonces: make(map[string]Nonce),
		now:    time.Now,
	}
}

// Get implements TaskStore.
func (m *Memory) Get(_ context.Context, id string) (*Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, wiserr.WithDetails(wiserr.ErrTaskNotFound, map[string]string{"task": id})
	}
	return &t, nil
}

// ListPayable implements TaskStore. Tasks come back in insertion order.
func (m *Memory) ListPayable(_ context.Context) ([]Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Task
	for _, id := range m.order {
		if t := m.tasks[id]; t.Payable() {
			out = append(out, t)
		}
	}
	return out, nil
}

// MarkPaid implements TaskStore.
func (m *Memory) MarkPaid(_ context.Context, id, txHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return wiserr.WithDetails(wiserr.ErrTaskNotFound, map[string]string{"task": id})
	}
	now := m.now().UTC()
	t.Paid = true
	t.PaidTxHash = txHash
	t.PaidAt = &now
	t.UpdatedAt = now
	m.tasks[id] = t
	return nil
}

// Save implements TaskStore.
func (m *Memory) Save(_ context.Context, task Task) error {
	if strings.TrimSpace(task.ID) == "" {
		return wiserr.WithDetails(wiserr.ErrInvalidInput, map[string]string{"reason": "task id is empty"})
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now
	if _, ok := m.tasks[task.ID]; !ok {
		m.order = append(m.order, task.ID)
	}
	m.tasks[task.ID] = task
	return nil
}

// PutNonce implements NonceStore, replacing any previous nonce for the address.
func (m *Memory) PutNonce(_ context.Context, nonce Nonce) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	nonce.Address = NonceKey(nonce.Address)
	m.nonces[nonce.Address] = nonce
	return nil
}

// GetNonce returns the live nonce for an address; expired nonces are dropped.
func (m *Memory) GetNonce(_ context.Context, address string) (*Nonce, error) {
	key := NonceKey(address)
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nonces[key]
	if !ok {
		return nil, wiserr.ErrNonceNotFound
	}
	if n.Expired(m.now()) {
		delete(m.nonces, key)
		return nil, wiserr.WithDetails(wiserr.ErrNonceNotFound, map[string]string{"reason": "expired"})
	}
	return &n, nil
}

// ConsumeNonce implements NonceStore.
func (m *Memory) ConsumeNonce(_ context.Context, address, value string) error {
	key := NonceKey(address)
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nonces[key]
	if !ok || n.Expired(m.now()) || subtle.ConstantTimeCompare([]byte(n.Value), []byte(value)) != 1 {
		return wiserr.ErrNonceNotFound
	}
	delete(m.nonces, key)
	return nil
}

// Close implements Store.
func (m *Memory) Close() {}

var _ Store = (*Memory)(nil)

// Tasks returns every task in insertion order.
func (m *Memory) Tasks() []Task {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Task, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.tasks[id])
	}
	return out
}
