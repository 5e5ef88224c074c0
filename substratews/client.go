// Package substratews implements substrate.RPCClient over a single
// long-lived JSON-RPC 2.0 WebSocket connection to a Substrate-family node,
// using github.com/coder/websocket for the transport and an optional JWT
// bearer credential attached at dial time.
package substratews

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/golang-jwt/jwt/v5"

	"github.com/clawinfra/substrate"
)

// Client is a substrate.RPCClient backed by one WebSocket connection. A
// single Client is safe for concurrent use by multiple goroutines; the read
// loop demultiplexes responses by request ID and push notifications by
// subscription ID.
type Client struct {
	conn   *websocket.Conn
	logger *slog.Logger
	nextID atomic.Uint64

	mu      sync.Mutex
	pending map[uint64]chan rpcResponse
	subs    map[string]*subscription
	closed  bool

	readDone chan struct{}
	readErr  error
}

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
	return fmt.Sprintf("substratews: rpc error %d: %s", e.Code, e.Message)
}

type rpcNotification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  struct {
		Subscription string          `json:"subscription"`
		Result       json.RawMessage `json:"result"`
	} `json:"params"`
}

// Dial opens a WebSocket connection to url and starts the read loop. If
// bearerSecret is non-empty, a short-lived JWT signed with it is attached
// as an Authorization: Bearer header on the upgrade request.
func Dial(ctx context.Context, url string, logger *slog.Logger, bearerSecret []byte) (*Client, error) {
	opts := &websocket.DialOptions{}
	if len(bearerSecret) > 0 {
		token, err := mintDialToken(bearerSecret)
		if err != nil {
			return nil, fmt.Errorf("substratews: mint bearer token: %w", err)
		}
		opts.HTTPHeader = http.Header{"Authorization": []string{"Bearer " + token}}
	}

	conn, _, err := websocket.Dial(ctx, url, opts)
	if err != nil {
		return nil, fmt.Errorf("substratews: dial %s: %w", url, err)
	}

	c := &Client{
		conn:     conn,
		logger:   logger.With("component", "substratews"),
		pending:  make(map[uint64]chan rpcResponse),
		subs:     make(map[string]*subscription),
		readDone: make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func mintDialToken(secret []byte) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Close terminates the connection and fails every pending call and
// subscription.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	return c.conn.Close(websocket.StatusNormalClosure, "client closed")
}

func (c *Client) readLoop() {
	defer close(c.readDone)
	for {
		_, data, err := c.conn.Read(context.Background())
		if err != nil {
			c.fail(fmt.Errorf("substratews: read: %w", err))
			return
		}

		var probe struct {
			ID     *uint64 `json:"id"`
			Method string  `json:"method"`
		}
		if err := json.Unmarshal(data, &probe); err != nil {
			c.logger.Warn("substratews: malformed frame", "error", err)
			continue
		}

		if probe.ID != nil {
			var resp rpcResponse
			if err := json.Unmarshal(data, &resp); err != nil {
				c.logger.Warn("substratews: malformed response", "error", err)
				continue
			}
			c.mu.Lock()
			ch, ok := c.pending[resp.ID]
			if ok {
				delete(c.pending, resp.ID)
			}
			c.mu.Unlock()
			if ok {
				ch <- resp
			}
			continue
		}

		var note rpcNotification
		if err := json.Unmarshal(data, &note); err != nil {
			c.logger.Warn("substratews: malformed notification", "error", err)
			continue
		}
		c.mu.Lock()
		sub, ok := c.subs[note.Params.Subscription]
		c.mu.Unlock()
		if ok {
			sub.deliver(note.Params.Result)
		}
	}
}

func (c *Client) fail(err error) {
	c.mu.Lock()
	c.readErr = err
	pending := c.pending
	c.pending = make(map[uint64]chan rpcResponse)
	subs := c.subs
	c.subs = make(map[string]*subscription)
	c.mu.Unlock()

	for _, ch := range pending {
		ch <- rpcResponse{Error: &rpcError{Message: err.Error()}}
	}
	for _, sub := range subs {
		sub.fail(err)
	}
}

// call issues one JSON-RPC request and waits for its matching response.
func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	id := c.nextID.Add(1)
	ch := make(chan rpcResponse, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, fmt.Errorf("substratews: %w", substrate.ErrSubscriptionClosed)
	}
	c.pending[id] = ch
	c.mu.Unlock()

	req := rpcRequest{JSONRPC: "2.0", ID: id, Method: method, Params: params}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("substratews: marshal request: %w", err)
	}
	if err := c.conn.Write(ctx, websocket.MessageText, data); err != nil {
		return nil, fmt.Errorf("substratews: write: %w", err)
	}

	select {
	case resp := <-ch:
		if resp.Error != nil {
			return nil, fmt.Errorf("substratews: %s: %w: %v", method, substrate.ErrUpstream, resp.Error)
		}
		return resp.Result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func decodeHexBytes(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	s = trimHexPrefix(s)
	return hex.DecodeString(s)
}

func decodeHexHash(s string) (substrate.Hash, error) {
	raw, err := decodeHexBytes(s)
	if err != nil {
		return substrate.Hash{}, err
	}
	var h substrate.Hash
	if len(raw) != len(h) {
		return h, fmt.Errorf("substratews: expected %d-byte hash, got %d", len(h), len(raw))
	}
	copy(h[:], raw)
	return h, nil
}

func encodeHexBytes(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

func parseHexUint(s string) (uint64, error) {
	s = trimHexPrefix(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseUint(s, 16, 64)
}
