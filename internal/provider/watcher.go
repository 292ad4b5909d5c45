package provider

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

// watcher turns polled eth_accounts / eth_chainId results into change
// notifications. It runs only while at least one handler is registered.
type watcher struct {
	poll     func(ctx context.Context) ([]string, string, error)
	interval time.Duration
	logger   LogWriter

	mu              sync.Mutex
	nextID          int
	accountHandlers map[int]func([]string)
	chainHandlers   map[int]func(string)
	cancel          context.CancelFunc
	done            chan struct{}
}

func newWatcher(interval time.Duration, logger LogWriter, poll func(ctx context.Context) ([]string, string, error)) *watcher {
	return &watcher{
		poll:            poll,
		interval:        interval,
		logger:          logger,
		accountHandlers: make(map[int]func([]string)),
		chainHandlers:   make(map[int]func(string)),
	}
}

func (w *watcher) onAccounts(h func([]string)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.nextID
	w.nextID++
	w.accountHandlers[id] = h
	w.startLocked()
	return w.unsubscribe(func() { delete(w.accountHandlers, id) })
}

func (w *watcher) onChain(h func(string)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.nextID
	w.nextID++
	w.chainHandlers[id] = h
	w.startLocked()
	return w.unsubscribe(func() { delete(w.chainHandlers, id) })
}

func (w *watcher) unsubscribe(remove func()) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			remove()
			var done chan struct{}
			if len(w.accountHandlers) == 0 && len(w.chainHandlers) == 0 && w.cancel != nil {
				w.cancel()
				w.cancel = nil
				done = w.done
			}
			w.mu.Unlock()
			if done != nil {
				<-done
			}
		})
	}
}

func (w *watcher) startLocked() {
	if w.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})
	go w.run(ctx, w.done)
}

func (w *watcher) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	var (
		lastAccounts []string
		lastChain    string
		primed       bool
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		accounts, chainID, err := w.poll(ctx)
		switch {
		case err != nil:
			if ctx.Err() == nil {
				w.logger.Debug("provider watcher poll failed: %v", err)
			}
		case !primed:
			lastAccounts, lastChain, primed = accounts, chainID, true
		default:
			if !sameAccounts(lastAccounts, accounts) {
				lastAccounts = accounts
				w.emitAccounts(accounts)
			}
			if !strings.EqualFold(lastChain, chainID) {
				lastChain = chainID
				w.emitChain(chainID)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *watcher) emitAccounts(accounts []string) {
	w.mu.Lock()
	handlers := make([]func([]string), 0, len(w.accountHandlers))
	for _, h := range w.accountHandlers {
		handlers = append(handlers, h)
	}
	w.mu.Unlock()
	for _, h := range handlers {
		h(slices.Clone(accounts))
	}
}

func (w *watcher) emitChain(chainID string) {
	w.mu.Lock()
	handlers := make([]func(string), 0, len(w.chainHandlers))
	for _, h := range w.chainHandlers {
		handlers = append(handlers, h)
	}
	w.mu.Unlock()
	for _, h := range handlers {
		h(chainID)
	}
}

func sameAccounts(a, b []string) bool {
	return slices.EqualFunc(a, b, strings.EqualFold)
}
