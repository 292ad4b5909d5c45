// Package mock provides a scripted wallet provider for tests.
package mock

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/Asad272002/TaskWiser-V2/internal/chain"
	"github.com/Asad272002/TaskWiser-V2/internal/provider"
)

// Provider is an in-memory wallet. Zero value is a wallet with no accounts on
// no chain; use New for a connected-capable wallet.
type Provider struct {
	mu sync.Mutex

	accounts   []string
	authorized bool
	chainID    string
	known      map[string]bool

	// Scripted failures.
	RequestAccountsErr error
	AccountsErr        error
	ChainIDErr         error
	SwitchChainErr     error
	AddChainErr        error

	// SendFunc decides the outcome of the n-th (0-based) SendTransaction.
	SendFunc func(n int, tx provider.TxRequest) (string, error)
	// WaitFunc decides the outcome of a confirmation wait.
	WaitFunc func(ctx context.Context, hash string) (*provider.Receipt, error)

	sent     []provider.TxRequest
	events   []string
	inFlight int
	overlap  bool

	nextID       int
	accountSubs  map[int]func([]string)
	chainSubs    map[int]func(string)
	unsubscribes int
}

// New returns a wallet holding account, currently on chainID, which knows
// how to switch to the listed chains.
func New(account, chainID string, knownChains ...string) *Provider {
	p := &Provider{
		accounts:    []string{account},
		chainID:     chainID,
		known:       map[string]bool{chainID: true},
		accountSubs: make(map[int]func([]string)),
		chainSubs:   make(map[int]func(string)),
	}
	for _, c := range knownChains {
		p.known[c] = true
	}
	return p
}

// Authorize marks the accounts as already authorized, as if connected earlier.
func (p *Provider) Authorize() *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.authorized = true
	return p
}

// Accounts implements provider.Provider.
func (p *Provider) Accounts(context.Context) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, "accounts")
	if p.AccountsErr != nil {
		return nil, p.AccountsErr
	}
	if !p.authorized {
		return []string{}, nil
	}
	return slices.Clone(p.accounts), nil
}

// RequestAccounts implements provider.Provider.
func (p *Provider) RequestAccounts(context.Context) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, "requestAccounts")
	if p.RequestAccountsErr != nil {
		return nil, p.RequestAccountsErr
	}
	p.authorized = true
	return slices.Clone(p.accounts), nil
}

// ChainID implements provider.Provider.
func (p *Provider) ChainID(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, "chainId")
	if p.ChainIDErr != nil {
		return "", p.ChainIDErr
	}
	return p.chainID, nil
}

// SwitchChain implements provider.Provider. Unknown chains fail with 4902.
func (p *Provider) SwitchChain(_ context.Context, chainID string) error {
	p.mu.Lock()
	p.events = append(p.events, "switchChain:"+chainID)
	if p.SwitchChainErr != nil {
		err := p.SwitchChainErr
		p.mu.Unlock()
		return err
	}
	if !p.known[chainID] {
		p.mu.Unlock()
		return &provider.Error{Code: provider.CodeUnrecognizedChain, Message: "Unrecognized chain ID " + chainID}
	}
	p.chainID = chainID
	p.mu.Unlock()

	p.EmitChainChanged(chainID)
	return nil
}

// AddChain implements provider.Provider. The wallet switches after adding.
func (p *Provider) AddChain(_ context.Context, params chain.AddChainParams) error {
	p.mu.Lock()
	p.events = append(p.events, "addChain:"+params.ChainID)
	if p.AddChainErr != nil {
		err := p.AddChainErr
		p.mu.Unlock()
		return err
	}
	p.known[params.ChainID] = true
	p.chainID = params.ChainID
	p.mu.Unlock()

	p.EmitChainChanged(params.ChainID)
	return nil
}

// SendTransaction implements provider.Provider.
func (p *Provider) SendTransaction(_ context.Context, tx provider.TxRequest) (string, error) {
	p.mu.Lock()
	n := len(p.sent)
	p.sent = append(p.sent, tx)
	p.events = append(p.events, fmt.Sprintf("send:%d", n))
	if p.inFlight > 0 {
		p.overlap = true
	}
	p.inFlight++
	send := p.SendFunc
	p.mu.Unlock()

	hash := fmt.Sprintf("0x%064x", n+1)
	var err error
	if send != nil {
		hash, err = send(n, tx)
	}
	if err != nil {
		p.mu.Lock()
		p.inFlight--
		p.mu.Unlock()
		return "", err
	}
	return hash, nil
}

// WaitForConfirmation implements provider.Provider.
func (p *Provider) WaitForConfirmation(ctx context.Context, hash string, _ int) (*provider.Receipt, error) {
	p.mu.Lock()
	p.events = append(p.events, "wait:"+hash)
	wait := p.WaitFunc
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.inFlight--
		p.mu.Unlock()
	}()

	if wait != nil {
		return wait(ctx, hash)
	}
	return &provider.Receipt{TxHash: hash, BlockNumber: 1, Succeeded: true}, nil
}

// OnAccountsChanged implements provider.Provider.
func (p *Provider) OnAccountsChanged(handler func([]string)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.accountSubs[id] = handler
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if _, ok := p.accountSubs[id]; ok {
			delete(p.accountSubs, id)
			p.unsubscribes++
		}
	}
}

// OnChainChanged implements provider.Provider.
func (p *Provider) OnChainChanged(handler func(string)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.chainSubs[id] = handler
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if _, ok := p.chainSubs[id]; ok {
			delete(p.chainSubs, id)
			p.unsubscribes++
		}
	}
}

// EmitAccountsChanged sets the accounts and notifies subscribers.
func (p *Provider) EmitAccountsChanged(accounts []string) {
	p.mu.Lock()
	p.accounts = slices.Clone(accounts)
	handlers := make([]func([]string), 0, len(p.accountSubs))
	for _, h := range p.accountSubs {
		handlers = append(handlers, h)
	}
	p.mu.Unlock()
	for _, h := range handlers {
		h(slices.Clone(accounts))
	}
}

// EmitChainChanged sets the chain and notifies subscribers.
func (p *Provider) EmitChainChanged(chainID string) {
	p.mu.Lock()
	p.chainID = chainID
	handlers := make([]func(string), 0, len(p.chainSubs))
	for _, h := range p.chainSubs {
		handlers = append(handlers, h)
	}
	p.mu.Unlock()
	for _, h := range handlers {
		h(chainID)
	}
}

// Sent returns the submitted transactions.
func (p *Provider) Sent() []provider.TxRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.sent)
}

// Events returns the ordered call log.
func (p *Provider) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.events)
}

// Overlapped reports whether a transaction was submitted while another was unconfirmed.
func (p *Provider) Overlapped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.overlap
}

// Subscribers returns the number of live subscriptions.
func (p *Provider) Subscribers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.accountSubs) + len(p.chainSubs)
}

// Rejected is the 4001 error wallets return when the user dismisses a prompt.
func Rejected() error {
	return &provider.Error{Code: provider.CodeUserRejected, Message: "User denied transaction signature."}
}

var _ provider.Provider = (*Provider)(nil)
