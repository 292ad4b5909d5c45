package payout

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/Asad272002/TaskWiser-V2/internal/chain/eth"
	"github.com/Asad272002/TaskWiser-V2/internal/config"
	"github.com/Asad272002/TaskWiser-V2/internal/metrics"
	"github.com/Asad272002/TaskWiser-V2/internal/provider"
	"github.com/Asad272002/TaskWiser-V2/internal/session"
	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

// Progress and status messages.
const (
	MsgReady            = "Ready to transfer"
	MsgAwaitingTargets  = "Awaiting assignees"
	MsgStarting         = "Starting payouts"
	MsgStopped          = "Stopped due to error"
	MsgDisconnected     = "Wallet disconnected"
	MsgAwaitingWallet   = "Awaiting wallet confirmation"
	MsgConfirmedOnChain = "Confirmed on-chain"
)

// Session is the wallet session the executor pays from.
type Session interface {
	Err() error
	State() session.State
	Provider() provider.Provider
	OnDisconnect(fn func()) (unsubscribe func())
}

// Options configures an Executor.
type Options struct {
	Mode   Mode
	Single *Target
	Batch  []Target

	DefaultToken  string
	AllowedTokens []string
	Registry      *eth.Registry

	RejectDuplicates bool
	// Confirmations awaited per transfer; zero means one.
	Confirmations int

	// OnSuccess receives the confirmed hashes of a completed run.
	OnSuccess func(hashes []string)
	// OnError receives every error Run returns.
	OnError func(err error)
	// OnTarget is called when a recipient reaches Success or Error.
	OnTarget func(index int, target Target, status Status)

	Logger  provider.LogWriter
	Metrics *metrics.Metrics
}

// Executor runs payouts one transfer at a time.
type Executor struct {
	session Session
	opts    Options
	logger  provider.LogWriter
	metrics *metrics.Metrics

	mu        sync.Mutex
	running   bool
	state     RunState
	targets   []Target
	allow     []eth.Token
	token     eth.Token
	statuses  []Status
	byAddress map[string]Status
	progress  Progress
	lastErr   string
	hashes    []string

	nextSub int
	subs    map[int]func(Snapshot)

	unsubDisconnect func()
}

// NewExecutor resolves targets and the active token and subscribes to
// session disconnects. Call Close to release the subscription.
func NewExecutor(s Session, opts Options) (*Executor, error) {
	if opts.Registry == nil {
		opts.Registry = eth.DefaultRegistry()
	}
	if opts.Confirmations <= 0 {
		opts.Confirmations = 1
	}
	if opts.Logger == nil {
		opts.Logger = config.NullLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Global
	}

	allow := ResolveAllowList(opts.Registry, opts.AllowedTokens)
	token, err := SelectToken(opts.DefaultToken, allow)
	if err != nil {
		return nil, err
	}

	e := &Executor{
		session: s,
		opts:    opts,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		state:   RunNotStarted,
		targets: ResolveTargets(opts.Mode, opts.Single, opts.Batch),
		allow:   allow,
		token:   token,
		subs:    make(map[int]func(Snapshot)),
	}
	e.resetLocked()
	if s != nil {
		e.unsubDisconnect = s.OnDisconnect(e.handleDisconnect)
	}
	return e, nil
}

// Close releases the session subscription.
func (e *Executor) Close() {
	e.mu.Lock()
	unsub := e.unsubDisconnect
	e.unsubDisconnect = nil
	e.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// Token returns the active token.
func (e *Executor) Token() eth.Token {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.token
}

// AllowedTokens returns the resolved allow-list.
func (e *Executor) AllowedTokens() []eth.Token {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.allow)
}

// Running reports whether a run is in progress.
func (e *Executor) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// SetToken changes the active token and resets every recipient to idle.
// It is refused while a run is in progress.
func (e *Executor) SetToken(symbol string) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return wiserr.ErrRunInProgress
	}
	token, err := RequireToken(symbol, e.allow)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	e.token = token
	e.state = RunNotStarted
	e.resetLocked()
	e.mu.Unlock()

	e.publish()
	return nil
}

// Subscribe registers an observer called with a copy of the state after every change.
func (e *Executor) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.subs, id)
	}
}

// Snapshot returns a copy of the current state.
func (e *Executor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Run pays every recipient in order, waiting for each transfer to confirm
// before submitting the next. It stops at the first failure; confirmed
// transfers keep their Success status. Preconditions are checked before any
// state changes.
func (e *Executor) Run(ctx context.Context) ([]string, error) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil, e.fail(wiserr.ErrRunInProgress)
	}

	transfers, from, err := e.preflightLocked()
	if err != nil {
		e.mu.Unlock()
		return nil, e.fail(err)
	}

	e.running = true
	e.state = RunRunning
	e.hashes = nil
	e.lastErr = ""
	e.clearStatusesLocked()
	e.progress = Progress{Current: 0, Total: len(transfers), Message: MsgStarting}
	p := e.session.Provider()
	e.mu.Unlock()

	e.metrics.RecordRunStarted()
	e.logger.Debug("payout run started: %d transfer(s) in %s", len(transfers), transfers[0].Token.Symbol)
	e.publish()

	total := len(transfers)
	for _, tr := range transfers {
		e.update(func() {
			e.setStatusLocked(tr.Index, Status{Kind: StatusPending, Message: MsgAwaitingWallet})
			e.progress = Progress{
				Current: tr.Index,
				Total:   total,
				Message: fmt.Sprintf("Authorizing %d / %d", tr.Index+1, total),
			}
		})

		hash, err := e.transfer(ctx, p, from, tr)
		e.metrics.RecordTransferResult(err)
		if err != nil {
			return nil, e.stop(tr, hash, err)
		}

		success := Status{Kind: StatusSuccess, Message: MsgConfirmedOnChain, TxHash: hash}
		e.update(func() {
			e.hashes = append(e.hashes, hash)
			e.setStatusLocked(tr.Index, success)
			e.progress = Progress{
				Current: tr.Index + 1,
				Total:   total,
				Message: fmt.Sprintf("Confirmed %d / %d", tr.Index+1, total),
			}
		})
		e.logger.Debug("payout %d/%d confirmed: %s", tr.Index+1, total, hash)
		if e.opts.OnTarget != nil {
			e.opts.OnTarget(tr.Index, tr.Target, success)
		}
	}

	var hashes []string
	e.update(func() {
		e.running = false
		e.state = RunCompleted
		hashes = e.confirmedHashesLocked()
	})
	e.metrics.RecordRunFinished(true)
	e.logger.Debug("payout run completed: %d transaction(s) confirmed", len(hashes))
	if e.opts.OnSuccess != nil {
		e.opts.OnSuccess(slices.Clone(hashes))
	}
	return hashes, nil
}

// preflightLocked checks session state and targets and plans the transfers.
func (e *Executor) preflightLocked() ([]Transfer, string, error) {
	if e.session == nil {
		return nil, "", wiserr.ErrProviderUnavailable
	}
	if err := e.session.Err(); err != nil {
		return nil, "", err
	}
	from := e.session.State().Account

	if err := ValidateTargets(e.targets); err != nil {
		return nil, "", err
	}
	if e.opts.RejectDuplicates {
		if err := CheckDuplicates(e.targets); err != nil {
			return nil, "", err
		}
	}
	transfers, err := Plan(e.targets, e.token)
	if err != nil {
		return nil, "", err
	}
	return transfers, from, nil
}

// transfer submits one transaction and waits for its confirmations. Once
// the wallet has accepted the transaction its hash is returned even on
// error.
func (e *Executor) transfer(ctx context.Context, p provider.Provider, from string, tr Transfer) (string, error) {
	hash, err := p.SendTransaction(ctx, tr.TxRequest(from))
	if err != nil {
		return "", err
	}
	e.metrics.RecordTransferSubmitted()
	e.logger.Debug("payout %d submitted: %s", tr.Index+1, hash)

	receipt, err := p.WaitForConfirmation(ctx, hash, e.opts.Confirmations)
	if err != nil {
		return hash, err
	}
	if receipt == nil || !receipt.Succeeded {
		return hash, wiserr.WithDetails(wiserr.ErrTxReverted, map[string]string{"tx": hash})
	}
	return hash, nil
}

// stop marks tr failed, ends the run and returns the run error. hash is set
// when the transaction was submitted but did not confirm.
func (e *Executor) stop(tr Transfer, hash string, cause error) error {
	classified, msg := provider.Classify(cause)
	status := Status{Kind: StatusError, Message: msg, TxHash: hash}

	e.update(func() {
		e.setStatusLocked(tr.Index, status)
		e.lastErr = msg
		e.progress.Message = MsgStopped
		e.running = false
		e.state = RunStopped
	})
	e.metrics.RecordRunFinished(false)
	e.logger.Error("payout %d to %s failed: %v", tr.Index+1, tr.Target.Address, cause)
	if e.opts.OnTarget != nil {
		e.opts.OnTarget(tr.Index, tr.Target, status)
	}

	return e.fail(&RunError{Index: tr.Index, Target: tr.Target, Message: msg, TxHash: hash, Err: classified})
}

// fail delivers err to OnError and returns it.
func (e *Executor) fail(err error) error {
	if e.opts.OnError != nil {
		e.opts.OnError(err)
	}
	return err
}

// handleDisconnect clears the observable success hashes. A run in flight
// keeps going; its result still lists every transfer it confirmed.
func (e *Executor) handleDisconnect() {
	e.update(func() {
		e.hashes = nil
		e.progress.Message = MsgDisconnected
	})
}

// update applies fn under the lock and publishes the result.
func (e *Executor) update(fn func()) {
	e.mu.Lock()
	fn()
	e.mu.Unlock()
	e.publish()
}

func (e *Executor) publish() {
	e.mu.Lock()
	snap := e.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(e.subs))
	for _, id := range slices.Sorted(maps.Keys(e.subs)) {
		subs = append(subs, e.subs[id])
	}
	e.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// resetLocked puts every recipient back to idle with a ready message.
func (e *Executor) resetLocked() {
	e.clearStatusesLocked()
	msg := MsgReady
	if len(e.targets) == 0 {
		msg = MsgAwaitingTargets
	}
	e.progress = Progress{Current: 0, Total: len(e.targets), Message: msg}
}

// confirmedHashesLocked lists the hashes of successful recipients in order.
func (e *Executor) confirmedHashesLocked() []string {
	hashes := make([]string, 0, len(e.statuses))
	for _, st := range e.statuses {
		if st.Kind == StatusSuccess {
			hashes = append(hashes, st.TxHash)
		}
	}
	return hashes
}

func (e *Executor) clearStatusesLocked() {
	e.statuses = make([]Status, len(e.targets))
	e.byAddress = make(map[string]Status, len(e.targets))
	for _, t := range e.targets {
		e.byAddress[t.Key()] = Status{Kind: StatusIdle}
	}
}

func (e *Executor) setStatusLocked(index int, st Status) {
	if e.statuses[index].Kind == StatusSuccess {
		return
	}
	e.statuses[index] = st
	e.byAddress[e.targets[index].Key()] = st
}

func (e *Executor) snapshotLocked() Snapshot {
	return Snapshot{
		State:         e.state,
		Token:         e.token,
		Targets:       slices.Clone(e.targets),
		Statuses:      slices.Clone(e.statuses),
		ByAddress:     maps.Clone(e.byAddress),
		Progress:      e.progress,
		LastError:     e.lastErr,
		SuccessHashes: slices.Clone(e.hashes),
	}
}
