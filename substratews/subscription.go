package substratews

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/clawinfra/substrate"
)

// subscription buffers push notifications for one active node subscription
// until a waiting Next call consumes them.
type subscription struct {
	ch  chan json.RawMessage
	err chan error
}

func newSubscription() *subscription {
	return &subscription{
		ch:  make(chan json.RawMessage, 64),
		err: make(chan error, 1),
	}
}

func (s *subscription) deliver(raw json.RawMessage) {
	select {
	case s.ch <- raw:
	default:
		// Slow consumer: drop rather than block the shared read loop: the
		// gap filler tolerates missed pushes by re-deriving from BlockHash.
	}
}

func (s *subscription) fail(err error) {
	select {
	case s.err <- err:
	default:
	}
}

// wsSubscription adapts one node subscription to substrate.HeaderSubscription.
type wsSubscription struct {
	client         *Client
	id             string
	unsubscribeRPC string
	sub            *subscription
}

func (c *Client) subscribe(ctx context.Context, subscribeMethod, unsubscribeMethod string) (substrate.HeaderSubscription, error) {
	raw, err := c.call(ctx, subscribeMethod, []any{})
	if err != nil {
		return nil, err
	}
	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		return nil, fmt.Errorf("substratews: decode %s subscription id: %w", subscribeMethod, err)
	}

	sub := newSubscription()
	c.mu.Lock()
	c.subs[id] = sub
	c.mu.Unlock()

	return &wsSubscription{client: c, id: id, unsubscribeRPC: unsubscribeMethod, sub: sub}, nil
}

// Next blocks until the next pushed header arrives, the connection fails,
// or ctx is cancelled.
func (s *wsSubscription) Next(ctx context.Context) (substrate.Header, error) {
	select {
	case raw := <-s.sub.ch:
		var w wireHeader
		if err := json.Unmarshal(raw, &w); err != nil {
			return substrate.Header{}, fmt.Errorf("substratews: decode pushed header: %w", err)
		}
		return w.decode()
	case err := <-s.sub.err:
		return substrate.Header{}, err
	case <-ctx.Done():
		return substrate.Header{}, ctx.Err()
	}
}

// Close unsubscribes at the node and stops delivering further pushes.
func (s *wsSubscription) Close() error {
	s.client.mu.Lock()
	delete(s.client.subs, s.id)
	closed := s.client.closed
	s.client.mu.Unlock()

	if closed {
		return nil
	}
	_, err := s.client.call(context.Background(), s.unsubscribeRPC, []any{s.id})
	return err
}
