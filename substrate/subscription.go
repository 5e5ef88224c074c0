package substrate

import (
	"context"
	"fmt"
)

// EventSubscription yields every block's Events, in strictly ascending,
// gap-free block-number order, for as long as the underlying push
// subscription stays open. It is single-consumer and terminal on first
// error: once Next returns a non-nil error it returns the same error on
// every subsequent call.
type EventSubscription[E any] struct {
	rpc      RPCClient
	metadata *MetadataHandle
	filler   *GapFiller
	err      error
}

// SubscribeBlockEvents follows best (not necessarily finalized) blocks.
func SubscribeBlockEvents[E any](ctx context.Context, rpc RPCClient, metadata *MetadataHandle) (*EventSubscription[E], error) {
	src, err := rpc.SubscribeBlocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("substrate: subscribe blocks: %w", err)
	}
	return &EventSubscription[E]{
		rpc:      rpc,
		metadata: metadata,
		filler:   NewGapFiller(rpc, src, nil),
	}, nil
}

// SubscribeFinalizedEvents follows finalized blocks. The gap filler is
// seeded with the current finalized head's block number, so blocks
// finalized between that read and the first push are backfilled rather
// than skipped.
func SubscribeFinalizedEvents[E any](ctx context.Context, rpc RPCClient, metadata *MetadataHandle) (*EventSubscription[E], error) {
	head, err := rpc.FinalizedHead(ctx)
	if err != nil {
		return nil, fmt.Errorf("substrate: finalized head: %w", err)
	}
	hdr, ok, err := rpc.Header(ctx, &head)
	if err != nil {
		return nil, fmt.Errorf("substrate: finalized head header: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("substrate: finalized head header: %w", ErrUpstream)
	}

	src, err := rpc.SubscribeFinalizedBlocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("substrate: subscribe finalized blocks: %w", err)
	}
	seed := hdr.Number
	return &EventSubscription[E]{
		rpc:      rpc,
		metadata: metadata,
		filler:   NewGapFiller(rpc, src, &seed),
	}, nil
}

// Next returns the next block's Events, fetching them fresh from the node
// for the gap-filled header's own hash.
func (s *EventSubscription[E]) Next(ctx context.Context) (Events[E], error) {
	if s.err != nil {
		return Events[E]{}, s.err
	}

	hash, _, err := s.filler.Next(ctx)
	if err != nil {
		s.err = err
		return Events[E]{}, err
	}

	ev, err := EventsAt[E](ctx, s.rpc, s.metadata, hash)
	if err != nil {
		s.err = err
		return Events[E]{}, err
	}
	return ev, nil
}

// Close releases the underlying push subscription.
func (s *EventSubscription[E]) Close() error {
	return s.filler.Close()
}
