// Package substratehttp implements substrate.RPCClient over plain
// request/response HTTP JSON-RPC 2.0, for consumers that only need
// point-in-time reads and have no use for a long-lived push connection.
// SubscribeBlocks and SubscribeFinalizedBlocks are unsupported on this
// transport — pair a substratehttp.Client with substratews or
// substratemqtt when a subscription is required.
package substratehttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/clawinfra/substrate"
)

// rpcRequest and rpcResponse mirror the JSON-RPC 2.0 envelope used over
// substratews, so a given node sees an identical wire format regardless of
// which transport a caller picked.
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("substratehttp: rpc error %d: %s", e.Code, e.Message)
}

// Caller abstracts the transport-level HTTP round trip, so tests can
// substitute a mock without standing up a real listener.
type Caller interface {
	Call(ctx context.Context, url string, req rpcRequest) (*rpcResponse, error)
}

// Client is a substrate.RPCClient backed by one-shot HTTP POSTs to a
// Substrate-family node's JSON-RPC endpoint.
type Client struct {
	url       string
	logger    *slog.Logger
	caller    Caller
	requestID atomic.Uint64
}

// New creates a Client posting JSON-RPC requests to url.
func New(url string, logger *slog.Logger, timeout time.Duration) *Client {
	return &Client{
		url:    url,
		logger: logger,
		caller: &httpCaller{timeout: timeout},
	}
}

// NewWithCaller creates a Client using a custom Caller, for tests.
func NewWithCaller(url string, logger *slog.Logger, caller Caller) *Client {
	return &Client{url: url, logger: logger, caller: caller}
}

func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	id := c.requestID.Add(1)
	req := rpcRequest{JSONRPC: "2.0", ID: id, Method: method, Params: params}

	c.logger.Debug("rpc call", "method", method, "id", id)

	resp, err := c.caller.Call(ctx, c.url, req)
	if err != nil {
		c.logger.Error("rpc call failed", "method", method, "error", err)
		return nil, fmt.Errorf("substratehttp: %s: %w", method, err)
	}
	if resp.Error != nil {
		c.logger.Warn("rpc returned error", "method", method, "code", resp.Error.Code, "message", resp.Error.Message)
		return nil, fmt.Errorf("substratehttp: %s: %w", method, resp.Error)
	}
	return resp.Result, nil
}

// SubscribeBlocks is unsupported over HTTP.
func (c *Client) SubscribeBlocks(ctx context.Context) (substrate.HeaderSubscription, error) {
	return nil, fmt.Errorf("substratehttp: SubscribeBlocks: %w", ErrUnsupported)
}

// SubscribeFinalizedBlocks is unsupported over HTTP.
func (c *Client) SubscribeFinalizedBlocks(ctx context.Context) (substrate.HeaderSubscription, error) {
	return nil, fmt.Errorf("substratehttp: SubscribeFinalizedBlocks: %w", ErrUnsupported)
}

// ErrUnsupported is returned by subscription methods on this transport.
var ErrUnsupported = fmt.Errorf("substratehttp: push subscriptions require substratews or substratemqtt")

// httpCaller is the default Caller, one HTTP POST per call.
type httpCaller struct {
	timeout time.Duration
}

func (h *httpCaller) Call(ctx context.Context, url string, req rpcRequest) (*rpcResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http call: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d: %s", httpResp.StatusCode, string(respBody))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &rpcResp, nil
}
