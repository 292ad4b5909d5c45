package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Asad272002/TaskWiser-V2/internal/chain"
	"github.com/Asad272002/TaskWiser-V2/internal/provider"
	"github.com/Asad272002/TaskWiser-V2/internal/provider/mock"
	"github.com/Asad272002/TaskWiser-V2/internal/session"
	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

const (
	payer   = "0x52908400098527886E0F7030069857D2E4169EE7"
	mainnet = "0x1"
)

type recordingLogger struct {
	mu     sync.Mutex
	errors []string
}

func (l *recordingLogger) Debug(string, ...any) {}

func (l *recordingLogger) Error(format string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, format)
}

func TestNew_NilProviderUnavailable(t *testing.T) {
	t.Parallel()
	m := session.New(nil, chain.Sepolia(), nil)

	state := m.State()
	assert.False(t, state.Available)
	assert.False(t, state.Ready())
	require.ErrorIs(t, m.Err(), wiserr.ErrProviderUnavailable)
	require.ErrorIs(t, m.Connect(context.Background()), wiserr.ErrProviderUnavailable)
	require.ErrorIs(t, m.SwitchChain(context.Background()), wiserr.ErrProviderUnavailable)

	// Start and Close are safe without a provider.
	m.Start()
	m.Close()
}

func TestReadInitialState_Authorized(t *testing.T) {
	t.Parallel()
	wallet := mock.New(payer, chain.Sepolia().ChainID).Authorize()
	m := session.New(wallet, chain.Sepolia(), nil)

	state := m.ReadInitialState(context.Background())
	assert.True(t, state.Connected)
	assert.Equal(t, payer, state.Account)
	assert.Equal(t, "0xaa36a7", state.ChainID)
	assert.False(t, state.WrongNetwork)
	assert.True(t, state.Ready())
	require.NoError(t, m.Err())

	assert.NotContains(t, wallet.Events(), "requestAccounts")
}

func TestReadInitialState_NotAuthorized(t *testing.T) {
	t.Parallel()
	wallet := mock.New(payer, chain.Sepolia().ChainID)
	m := session.New(wallet, chain.Sepolia(), nil)

	state := m.ReadInitialState(context.Background())
	assert.False(t, state.Connected)
	assert.Empty(t, state.Account)
	require.ErrorIs(t, m.Err(), wiserr.ErrNotConnected)
}

func TestReadInitialState_FailureLogged(t *testing.T) {
	t.Parallel()
	wallet := mock.New(payer, chain.Sepolia().ChainID).Authorize()
	wallet.AccountsErr = errors.New("boom")
	logger := &recordingLogger{}
	m := session.New(wallet, chain.Sepolia(), logger)

	state := m.ReadInitialState(context.Background())
	assert.False(t, state.Connected)
	assert.Len(t, logger.errors, 1)
}

func TestReadInitialState_WrongNetwork(t *testing.T) {
	t.Parallel()
	wallet := mock.New(payer, mainnet).Authorize()
	m := session.New(wallet, chain.Sepolia(), nil)

	state := m.ReadInitialState(context.Background())
	assert.True(t, state.Connected)
	assert.True(t, state.WrongNetwork)
	require.ErrorIs(t, m.Err(), wiserr.ErrWrongNetwork)
}

func TestConnect_OnTargetNetwork(t *testing.T) {
	t.Parallel()
	wallet := mock.New(payer, chain.Sepolia().ChainID)
	m := session.New(wallet, chain.Sepolia(), nil)

	require.NoError(t, m.Connect(context.Background()))
	assert.True(t, m.State().Ready())
	assert.Equal(t, []string{"requestAccounts", "chainId"}, wallet.Events())
}

func TestConnect_SwitchesKnownChain(t *testing.T) {
	t.Parallel()
	wallet := mock.New(payer, mainnet, chain.Sepolia().ChainID)
	m := session.New(wallet, chain.Sepolia(), nil)

	require.NoError(t, m.Connect(context.Background()))
	state := m.State()
	assert.Equal(t, "0xaa36a7", state.ChainID)
	assert.False(t, state.WrongNetwork)
	assert.Contains(t, wallet.Events(), "switchChain:0xaa36a7")
	assert.NotContains(t, wallet.Events(), "addChain:0xaa36a7")
}

func TestConnect_AddsUnknownChain(t *testing.T) {
	t.Parallel()
	wallet := mock.New(payer, mainnet)
	m := session.New(wallet, chain.Sepolia(), nil)

	require.NoError(t, m.Connect(context.Background()))
	assert.True(t, m.State().Ready())

	events := wallet.Events()
	assert.Contains(t, events, "switchChain:0xaa36a7")
	assert.Contains(t, events, "addChain:0xaa36a7")
}

func TestConnect_Rejected(t *testing.T) {
	t.Parallel()
	wallet := mock.New(payer, chain.Sepolia().ChainID)
	wallet.RequestAccountsErr = mock.Rejected()
	m := session.New(wallet, chain.Sepolia(), nil)

	err := m.Connect(context.Background())
	require.ErrorIs(t, err, wiserr.ErrUserRejected)
	assert.False(t, m.State().Connected)
}

func TestConnect_NoAccounts(t *testing.T) {
	t.Parallel()
	wallet := mock.New(payer, chain.Sepolia().ChainID)
	wallet.EmitAccountsChanged(nil)
	m := session.New(wallet, chain.Sepolia(), nil)

	require.ErrorIs(t, m.Connect(context.Background()), wiserr.ErrNotConnected)
}

func TestSwitchChain_AddRejected(t *testing.T) {
	t.Parallel()
	wallet := mock.New(payer, mainnet)
	wallet.AddChainErr = mock.Rejected()
	m := session.New(wallet, chain.Sepolia(), nil)

	err := m.Connect(context.Background())
	require.ErrorIs(t, err, wiserr.ErrUserRejected)
	state := m.State()
	assert.True(t, state.Connected)
	assert.True(t, state.WrongNetwork)
}

func TestSwitchChain_OtherFailure(t *testing.T) {
	t.Parallel()
	wallet := mock.New(payer, mainnet)
	wallet.SwitchChainErr = &provider.Error{Code: -32002, Message: "Request already pending"}
	m := session.New(wallet, chain.Sepolia(), nil)

	err := m.SwitchChain(context.Background())
	require.ErrorIs(t, err, wiserr.ErrUnexpectedProvider)
	assert.NotContains(t, wallet.Events(), "addChain:0xaa36a7")
}

func TestStartClose_Subscriptions(t *testing.T) {
	t.Parallel()
	wallet := mock.New(payer, chain.Sepolia().ChainID)
	m := session.New(wallet, chain.Sepolia(), nil)

	m.Start()
	m.Start()
	assert.Equal(t, 2, wallet.Subscribers())

	m.Close()
	assert.Equal(t, 0, wallet.Subscribers())
	m.Close()
}

func TestAccountsChanged(t *testing.T) {
	t.Parallel()
	wallet := mock.New(payer, chain.Sepolia().ChainID)
	m := session.New(wallet, chain.Sepolia(), nil)
	m.Start()
	t.Cleanup(m.Close)
	require.NoError(t, m.Connect(context.Background()))

	var seen []session.State
	unsub := m.OnChange(func(s session.State) { seen = append(seen, s) })
	defer unsub()

	other := "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
	wallet.EmitAccountsChanged([]string{other})

	require.Len(t, seen, 1)
	assert.Equal(t, other, seen[0].Account)
	assert.True(t, m.SameAccount(other))
	assert.False(t, m.SameAccount(payer))
}

func TestAccountsChanged_EmptyDisconnects(t *testing.T) {
	t.Parallel()
	wallet := mock.New(payer, chain.Sepolia().ChainID)
	m := session.New(wallet, chain.Sepolia(), nil)
	m.Start()
	t.Cleanup(m.Close)
	require.NoError(t, m.Connect(context.Background()))

	disconnects := 0
	m.OnDisconnect(func() { disconnects++ })

	wallet.EmitAccountsChanged([]string{})
	state := m.State()
	assert.False(t, state.Connected)
	assert.Empty(t, state.Account)
	assert.Equal(t, "0xaa36a7", state.ChainID)
	assert.Equal(t, 1, disconnects)
	require.ErrorIs(t, m.Err(), wiserr.ErrNotConnected)

	// A second empty list while already disconnected is ignored.
	wallet.EmitAccountsChanged([]string{})
	assert.Equal(t, 1, disconnects)
}

func TestAccountsChanged_EmptyWhileNeverConnected(t *testing.T) {
	t.Parallel()
	wallet := mock.New(payer, chain.Sepolia().ChainID)
	m := session.New(wallet, chain.Sepolia(), nil)
	m.Start()
	t.Cleanup(m.Close)

	disconnects := 0
	m.OnDisconnect(func() { disconnects++ })
	wallet.EmitAccountsChanged(nil)
	assert.Zero(t, disconnects)
}

func TestChainChanged_RecomputesWrongNetwork(t *testing.T) {
	t.Parallel()
	wallet := mock.New(payer, chain.Sepolia().ChainID)
	m := session.New(wallet, chain.Sepolia(), nil)
	m.Start()
	t.Cleanup(m.Close)
	require.NoError(t, m.Connect(context.Background()))

	wallet.EmitChainChanged(mainnet)
	assert.True(t, m.State().WrongNetwork)
	require.ErrorIs(t, m.Err(), wiserr.ErrWrongNetwork)

	wallet.EmitChainChanged("11155111")
	state := m.State()
	assert.False(t, state.WrongNetwork)
	assert.Equal(t, "0xaa36a7", state.ChainID)
}

func TestOnChange_Unsubscribe(t *testing.T) {
	t.Parallel()
	wallet := mock.New(payer, chain.Sepolia().ChainID)
	m := session.New(wallet, chain.Sepolia(), nil)
	m.Start()
	t.Cleanup(m.Close)

	calls := 0
	unsub := m.OnChange(func(session.State) { calls++ })
	wallet.EmitChainChanged(mainnet)
	unsub()
	wallet.EmitChainChanged(chain.Sepolia().ChainID)
	assert.Equal(t, 1, calls)
}
