// Package session tracks the connected wallet: which account is active, which
// chain it is on, and whether a provider is present at all.
package session

import (
	"context"
	"strings"
	"sync"

	"github.com/Asad272002/TaskWiser-V2/internal/chain"
	"github.com/Asad272002/TaskWiser-V2/internal/chain/eth"
	"github.com/Asad272002/TaskWiser-V2/internal/config"
	"github.com/Asad272002/TaskWiser-V2/internal/provider"
	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

// State is a point-in-time view of the wallet session.
type State struct {
	Available    bool   `json:"available"`
	Connected    bool   `json:"connected"`
	Account      string `json:"account,omitempty"`
	ChainID      string `json:"chain_id,omitempty"`
	WrongNetwork bool   `json:"wrong_network"`
}

// Ready reports whether payouts may be submitted from this state.
func (s State) Ready() bool {
	return s.Available && s.Connected && s.Account != "" && !s.WrongNetwork && s.ChainID != ""
}

// Manager owns the provider connection and keeps State current as the wallet
// pushes account and chain changes.
type Manager struct {
	provider provider.Provider
	network  chain.Network
	logger   provider.LogWriter

	mu          sync.RWMutex
	state       State
	nextID      int
	observers   map[int]func(State)
	disconnects map[int]func()
	unsubs      []func()
}

// New creates a session manager. A nil provider yields a manager that is
// permanently unavailable.
func New(p provider.Provider, network chain.Network, logger provider.LogWriter) *Manager {
	if logger == nil {
		logger = config.NullLogger()
	}
	return &Manager{
		provider:    p,
		network:     network,
		logger:      logger,
		state:       State{Available: p != nil},
		observers:   make(map[int]func(State)),
		disconnects: make(map[int]func()),
	}
}

// Provider returns the underlying provider, nil when unavailable.
func (m *Manager) Provider() provider.Provider {
	return m.provider
}

// Network returns the target network.
func (m *Manager) Network() chain.Network {
	return m.network
}

// State returns a copy of the current state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Err reports why the session cannot submit payouts, or nil when it can.
func (m *Manager) Err() error {
	s := m.State()
	switch {
	case !s.Available:
		return wiserr.WithSuggestion(wiserr.ErrProviderUnavailable,
			"start a wallet that exposes a JSON-RPC endpoint (e.g. Frame) or set provider.url")
	case !s.Connected || s.Account == "":
		return wiserr.WithSuggestion(wiserr.ErrNotConnected, "run 'taskwiser connect'")
	case s.ChainID == "" || s.WrongNetwork:
		return wiserr.WithSuggestion(
			wiserr.WithDetails(wiserr.ErrWrongNetwork, map[string]string{
				"current":  s.ChainID,
				"expected": m.network.ChainID,
			}),
			"run 'taskwiser network switch'")
	}
	return nil
}

// ReadInitialState reads already-authorized accounts and the current chain
// without prompting. Failures are logged and leave the session disconnected.
func (m *Manager) ReadInitialState(ctx context.Context) State {
	if m.provider == nil {
		return m.State()
	}

	accounts, err := m.provider.Accounts(ctx)
	if err != nil {
		m.logger.Error("reading authorized accounts: %v", err)
		return m.State()
	}
	chainID, err := m.provider.ChainID(ctx)
	if err != nil {
		m.logger.Error("reading chain id: %v", err)
		return m.State()
	}

	m.update(func(s *State) {
		if len(accounts) > 0 {
			s.Connected = true
			s.Account = accounts[0]
		}
		m.setChain(s, chainID)
	})
	return m.State()
}

// Connect prompts the wallet for account access and moves it to the target
// network when it is elsewhere.
func (m *Manager) Connect(ctx context.Context) error {
	if m.provider == nil {
		return m.Err()
	}

	accounts, err := m.provider.RequestAccounts(ctx)
	if err != nil {
		classified, _ := provider.Classify(err)
		return wiserr.Wrap(classified, "requesting accounts")
	}
	if len(accounts) == 0 {
		return wiserr.WithDetails(wiserr.ErrNotConnected, map[string]string{"reason": "wallet returned no accounts"})
	}

	chainID, err := m.provider.ChainID(ctx)
	if err != nil {
		classified, _ := provider.Classify(err)
		return wiserr.Wrap(classified, "reading chain id")
	}

	m.update(func(s *State) {
		s.Connected = true
		s.Account = accounts[0]
		m.setChain(s, chainID)
	})
	m.logger.Debug("connected %s on chain %s", accounts[0], chainID)

	if m.network.Matches(chainID) {
		return nil
	}
	return m.SwitchChain(ctx)
}

// SwitchChain asks the wallet to move to the target network, registering the
// network first when the wallet does not know it.
func (m *Manager) SwitchChain(ctx context.Context) error {
	if m.provider == nil {
		return m.Err()
	}

	err := m.provider.SwitchChain(ctx, m.network.ChainID)
	if provider.IsUnrecognizedChain(err) {
		m.logger.Debug("chain %s unknown to wallet, adding it", m.network.ChainID)
		err = m.provider.AddChain(ctx, m.network.AddChain)
	}
	if err != nil {
		classified, _ := provider.Classify(err)
		return wiserr.Wrap(classified, "switching to %s", m.network.Name)
	}

	chainID, err := m.provider.ChainID(ctx)
	if err != nil {
		classified, _ := provider.Classify(err)
		return wiserr.Wrap(classified, "reading chain id")
	}
	m.update(func(s *State) { m.setChain(s, chainID) })

	if !m.network.Matches(chainID) {
		return m.Err()
	}
	return nil
}

// Start subscribes to wallet notifications. Calling it twice is a no-op.
func (m *Manager) Start() {
	if m.provider == nil {
		return
	}
	m.mu.Lock()
	started := len(m.unsubs) > 0
	m.mu.Unlock()
	if started {
		return
	}

	unsubAccounts := m.provider.OnAccountsChanged(m.handleAccounts)
	unsubChain := m.provider.OnChainChanged(m.handleChain)

	m.mu.Lock()
	m.unsubs = append(m.unsubs, unsubAccounts, unsubChain)
	m.mu.Unlock()
}

// Close releases every subscription taken by Start.
func (m *Manager) Close() {
	m.mu.Lock()
	unsubs := m.unsubs
	m.unsubs = nil
	m.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}

// OnChange registers an observer called after every state change.
func (m *Manager) OnChange(fn func(State)) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.observers[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.observers, id)
	}
}

// OnDisconnect registers a hook called when a connected wallet drops its accounts.
func (m *Manager) OnDisconnect(fn func()) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.disconnects[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.disconnects, id)
	}
}

func (m *Manager) handleAccounts(accounts []string) {
	if len(accounts) == 0 {
		m.mu.Lock()
		wasConnected := m.state.Connected
		m.mu.Unlock()
		if !wasConnected {
			return
		}

		m.update(func(s *State) {
			s.Connected = false
			s.Account = ""
		})
		m.logger.Debug("wallet disconnected")

		m.mu.RLock()
		hooks := make([]func(), 0, len(m.disconnects))
		for _, fn := range m.disconnects {
			hooks = append(hooks, fn)
		}
		m.mu.RUnlock()
		for _, fn := range hooks {
			fn()
		}
		return
	}

	m.update(func(s *State) {
		if !strings.EqualFold(s.Account, accounts[0]) {
			m.logger.Debug("active account changed to %s", accounts[0])
		}
		s.Connected = true
		s.Account = accounts[0]
	})
}

func (m *Manager) handleChain(chainID string) {
	m.update(func(s *State) { m.setChain(s, chainID) })
}

func (m *Manager) setChain(s *State, chainID string) {
	if normalized, err := chain.NormalizeChainID(chainID); err == nil {
		chainID = normalized
	}
	s.ChainID = chainID
	s.WrongNetwork = chainID != "" && !m.network.Matches(chainID)
}

// update applies fn under the lock and notifies observers outside it.
func (m *Manager) update(fn func(*State)) {
	m.mu.Lock()
	fn(&m.state)
	snapshot := m.state
	observers := make([]func(State), 0, len(m.observers))
	for _, o := range m.observers {
		observers = append(observers, o)
	}
	m.mu.Unlock()

	for _, o := range observers {
		o(snapshot)
	}
}

// SameAccount reports whether addr is the connected account.
func (m *Manager) SameAccount(addr string) bool {
	s := m.State()
	return s.Connected && eth.AddressKey(s.Account) == eth.AddressKey(addr)
}
