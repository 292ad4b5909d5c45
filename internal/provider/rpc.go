package provider

import (
	"context"
	"time"

	"github.com/Asad272002/TaskWiser-V2/internal/chain"
	"github.com/Asad272002/TaskWiser-V2/internal/chain/eth/rpc"
	"github.com/Asad272002/TaskWiser-V2/internal/config"
)

// DefaultURL is the local Frame wallet JSON-RPC endpoint.
const DefaultURL = "http://127.0.0.1:1248"

// DefaultPollInterval is used for change notifications and receipt polling.
const DefaultPollInterval = 2 * time.Second

// RPCOptions configures an RPCProvider.
type RPCOptions struct {
	PollInterval time.Duration
	Retry        chain.RetryConfig
	Logger       LogWriter
}

// RPCProvider implements Provider on top of a wallet JSON-RPC endpoint.
type RPCProvider struct {
	client  *rpc.Client
	poll    time.Duration
	retry   chain.RetryConfig
	logger  LogWriter
	watcher *watcher
}

// NewRPCProvider wraps a JSON-RPC client.
func NewRPCProvider(client *rpc.Client, opts RPCOptions) *RPCProvider {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = chain.DefaultRetryConfig()
	}
	if opts.Logger == nil {
		opts.Logger = config.NullLogger()
	}

	p := &RPCProvider{
		client: client,
		poll:   opts.PollInterval,
		retry:  opts.Retry,
		logger: opts.Logger,
	}
	p.watcher = newWatcher(opts.PollInterval, opts.Logger, p.pollState)
	return p
}

// Accounts implements Provider.
func (p *RPCProvider) Accounts(ctx context.Context) ([]string, error) {
	return p.client.Accounts(ctx)
}

// RequestAccounts implements Provider.
func (p *RPCProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	p.logger.Debug("requesting wallet accounts from %s", p.client.URL())
	return p.client.RequestAccounts(ctx)
}

// ChainID implements Provider.
func (p *RPCProvider) ChainID(ctx context.Context) (string, error) {
	return p.client.ChainID(ctx)
}

// SwitchChain implements Provider.
func (p *RPCProvider) SwitchChain(ctx context.Context, chainID string) error {
	p.logger.Debug("requesting wallet switch to chain %s", chainID)
	return p.client.SwitchChain(ctx, chainID)
}

// AddChain implements Provider.
func (p *RPCProvider) AddChain(ctx context.Context, params chain.AddChainParams) error {
	p.logger.Debug("requesting wallet add chain %s (%s)", params.ChainName, params.ChainID)
	return p.client.AddChain(ctx, params)
}

// SendTransaction implements Provider. It is submitted exactly once.
func (p *RPCProvider) SendTransaction(ctx context.Context, tx TxRequest) (string, error) {
	return p.client.SendTransaction(ctx, rpc.TxArgs{
		From:  tx.From,
		To:    tx.To,
		Value: tx.Value,
		Data:  tx.Data,
	})
}

// WaitForConfirmation polls until the transaction has the requested number of
// confirmations. Only ctx bounds the wait.
func (p *RPCProvider) WaitForConfirmation(ctx context.Context, txHash string, confirmations int) (*Receipt, error) {
	if confirmations < 1 {
		confirmations = 1
	}

	ticker := time.NewTicker(p.poll)
	defer ticker.Stop()

	for {
		receipt, err := chain.RetryWithConfig(ctx, p.retry, func() (*rpc.Receipt, error) {
			return p.client.TransactionReceipt(ctx, txHash)
		})
		if err != nil {
			return nil, err
		}

		if receipt != nil {
			included := receipt.BlockNumber.ToInt().Uint64()
			head, err := chain.RetryWithConfig(ctx, p.retry, func() (uint64, error) {
				return p.client.BlockNumber(ctx)
			})
			if err != nil {
				return nil, err
			}
			if head >= included && head-included+1 >= uint64(confirmations) {
				return &Receipt{
					TxHash:      txHash,
					BlockNumber: included,
					Succeeded:   receipt.Succeeded(),
				}, nil
			}
			p.logger.Debug("tx %s included in block %d, head %d, waiting for %d confirmations", txHash, included, head, confirmations)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// OnAccountsChanged implements Provider. Unsubscribe must not be called from
// inside a handler.
func (p *RPCProvider) OnAccountsChanged(handler func(accounts []string)) func() {
	return p.watcher.onAccounts(handler)
}

// OnChainChanged implements Provider. Unsubscribe must not be called from
// inside a handler.
func (p *RPCProvider) OnChainChanged(handler func(chainID string)) func() {
	return p.watcher.onChain(handler)
}

func (p *RPCProvider) pollState(ctx context.Context) ([]string, string, error) {
	accounts, err := p.client.Accounts(ctx)
	if err != nil {
		return nil, "", err
	}
	chainID, err := p.client.ChainID(ctx)
	if err != nil {
		return nil, "", err
	}
	return accounts, chainID, nil
}
