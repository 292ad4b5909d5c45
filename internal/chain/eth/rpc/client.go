// Package rpc provides a minimal JSON-RPC 2.0 client for EIP-1193 style wallet
// endpoints (eth_requestAccounts, wallet_switchEthereumChain, eth_sendTransaction)
// and the read calls used to track confirmations.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/Asad272002/TaskWiser-V2/internal/chain"
	"github.com/Asad272002/TaskWiser-V2/internal/metrics"
	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

var (
	// ErrRPCRequest indicates an RPC request failed before a response was read.
	ErrRPCRequest = &wiserr.WiserError{
		Code:     "RPC_REQUEST_FAILED",
		Message:  "RPC request failed",
		ExitCode: wiserr.ExitGeneral,
	}

	// ErrRPCResponse indicates an invalid RPC response.
	ErrRPCResponse = &wiserr.WiserError{
		Code:     "RPC_INVALID_RESPONSE",
		Message:  "invalid RPC response",
		ExitCode: wiserr.ExitGeneral,
	}
)

// Client is a minimal JSON-RPC client for a wallet endpoint.
type Client struct {
	url        string
	httpClient *http.Client
	limiter    *chain.RateLimiter
	idCounter  atomic.Uint64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client. Wallet prompts can take minutes,
// so the default client has no timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimiter throttles outgoing calls.
func WithRateLimiter(l *chain.RateLimiter) Option {
	return func(c *Client) { c.limiter = l }
}

// NewClient creates a new RPC client.
func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		url:        url,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the endpoint this client talks to.
func (c *Client) URL() string {
	return c.url
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      uint64 `json:"id"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a JSON-RPC error object returned by the wallet.
// Codes follow EIP-1193: 4001 user rejected, 4902 unrecognized chain.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// ErrorCode returns the JSON-RPC error code.
func (e *Error) ErrorCode() int {
	return e.Code
}

// ErrorMessage returns the provider's message without the code prefix.
func (e *Error) ErrorMessage() string {
	return e.Message
}

// Call performs a JSON-RPC call.
func (c *Client) Call(ctx context.Context, method string, params ...any) (result json.RawMessage, err error) {
	start := time.Now()
	defer func() { metrics.Global.RecordRPCCall(time.Since(start), err) }()

	if waitErr := c.limiter.Wait(ctx, c.url); waitErr != nil {
		return nil, waitErr
	}

	if params == nil {
		params = []any{}
	}

	body, err := json.Marshal(request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.idCounter.Add(1),
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, chain.WrapRetryable(wiserr.WithCause(ErrRPCRequest, err))
	}
	defer func() { _ = httpResp.Body.Close() }()

	if httpResp.StatusCode == http.StatusTooManyRequests {
		return nil, chain.ErrRateLimited
	}

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, chain.WrapRetryable(wiserr.WithCause(ErrRPCRequest, err))
	}

	var resp response
	if err := json.Unmarshal(respBody, &resp); err != nil {
		if httpResp.StatusCode >= http.StatusInternalServerError {
			return nil, chain.WrapRetryable(wiserr.WithDetails(ErrRPCRequest, map[string]string{
				"status": httpResp.Status,
			}))
		}
		return nil, wiserr.WithCause(ErrRPCResponse, err)
	}

	if resp.Error != nil {
		return nil, resp.Error
	}

	return resp.Result, nil
}

func (c *Client) callInto(ctx context.Context, out any, method string, params ...any) error {
	result, err := c.Call(ctx, method, params...)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(result, out); err != nil {
		return wiserr.WithDetails(wiserr.WithCause(ErrRPCResponse, err), map[string]string{"method": method})
	}
	return nil
}

// Accounts returns the already-authorized accounts without prompting.
func (c *Client) Accounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := c.callInto(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

// RequestAccounts asks the wallet for account access. This may prompt the user.
func (c *Client) RequestAccounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := c.callInto(ctx, &accounts, "eth_requestAccounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

// ChainID returns the wallet's active chain id as reported (hex string).
func (c *Client) ChainID(ctx context.Context) (string, error) {
	var id string
	if err := c.callInto(ctx, &id, "eth_chainId"); err != nil {
		return "", err
	}
	return id, nil
}

// SwitchChain calls wallet_switchEthereumChain.
func (c *Client) SwitchChain(ctx context.Context, chainID string) error {
	return c.callInto(ctx, nil, "wallet_switchEthereumChain", map[string]string{"chainId": chainID})
}

// AddChain calls wallet_addEthereumChain with the given parameters.
func (c *Client) AddChain(ctx context.Context, params chain.AddChainParams) error {
	return c.callInto(ctx, nil, "wallet_addEthereumChain", params)
}

// TxArgs are the eth_sendTransaction parameters. The wallet fills gas and nonce.
type TxArgs struct {
	From  string
	To    string
	Value *big.Int
	Data  []byte
}

// MarshalJSON encodes quantities and data as 0x-prefixed hex.
func (a TxArgs) MarshalJSON() ([]byte, error) {
	value := a.Value
	if value == nil {
		value = new(big.Int)
	}
	return json.Marshal(struct {
		From  string        `json:"from"`
		To    string        `json:"to"`
		Value *hexutil.Big  `json:"value"`
		Data  hexutil.Bytes `json:"data,omitempty"`
	}{
		From:  a.From,
		To:    a.To,
		Value: (*hexutil.Big)(value),
		Data:  a.Data,
	})
}

// SendTransaction submits a transaction through the wallet and returns its hash.
// It is never retried: a resent request could pay twice.
func (c *Client) SendTransaction(ctx context.Context, args TxArgs) (string, error) {
	var hash string
	if err := c.callInto(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return "", err
	}
	if len(hash) != 66 {
		return "", wiserr.WithDetails(ErrRPCResponse, map[string]string{"hash": hash})
	}
	return hash, nil
}

// Receipt is the subset of a transaction receipt used for confirmation tracking.
type Receipt struct {
	TxHash      common.Hash    `json:"transactionHash"`
	BlockNumber *hexutil.Big   `json:"blockNumber"`
	Status      hexutil.Uint64 `json:"status"`
	GasUsed     hexutil.Uint64 `json:"gasUsed"`
}

// Succeeded reports a status 1 receipt.
func (r *Receipt) Succeeded() bool {
	return r.Status == 1
}

// TransactionReceipt returns the receipt, or nil if the transaction is still pending.
func (c *Client) TransactionReceipt(ctx context.Context, hash string) (*Receipt, error) {
	result, err := c.Call(ctx, "eth_getTransactionReceipt", hash)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 || string(result) == "null" {
		return nil, nil //nolint:nilnil // pending transaction has no receipt yet
	}

	var receipt Receipt
	if err := json.Unmarshal(result, &receipt); err != nil {
		return nil, wiserr.WithCause(ErrRPCResponse, err)
	}
	if receipt.BlockNumber == nil {
		return nil, nil //nolint:nilnil // some wallets return a receipt skeleton before inclusion
	}
	return &receipt, nil
}

// BlockNumber returns the latest block number.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var n hexutil.Uint64
	if err := c.callInto(ctx, &n, "eth_blockNumber"); err != nil {
		return 0, err
	}
	return uint64(n), nil
}
