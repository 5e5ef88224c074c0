package substrate

import (
	"context"
	"fmt"
)

// blockEntry pairs a header with the hash it was fetched at, since Header
// carries its parent's hash but never its own.
type blockEntry struct {
	hash   Hash
	header Header
}

// GapFiller wraps a push-driven HeaderSubscription and turns it into a
// strictly ascending, gap-free stream of (hash, header) pairs: whenever a
// pushed header lands more than one block past the last one yielded, the
// missing range is backfilled via BlockHash + Header before the pushed
// header itself is yielded.
//
// The first header observed is never backfilled — there is nothing to fill
// from — it is simply yielded and becomes the new low-water mark. Seed lets
// a caller set that low-water mark before the first push arrives (used by
// finalized-block subscriptions, seeded from the already-finalized head so
// blocks finalized between FinalizedHead and the first push are not
// skipped).
type GapFiller struct {
	rpc RPCClient
	src HeaderSubscription

	lastBlockNum *uint64
	pending      []blockEntry
	err          error
}

// NewGapFiller wraps src. seed, if non-nil, is treated as the number of the
// last header already yielded, so the first push is itself gap-filled
// against it.
func NewGapFiller(rpc RPCClient, src HeaderSubscription, seed *uint64) *GapFiller {
	g := &GapFiller{rpc: rpc, src: src}
	if seed != nil {
		n := *seed
		g.lastBlockNum = &n
	}
	return g
}

// Next returns the next (hash, header) pair in strictly ascending, gap-free
// order. A single call may perform many RPCs (one BlockHash + one Header per
// backfilled block, plus one BlockHash to learn the pushed header's own
// hash) before returning the oldest now-ready entry.
func (g *GapFiller) Next(ctx context.Context) (Hash, Header, error) {
	if g.err != nil {
		return Hash{}, Header{}, g.err
	}

	for len(g.pending) == 0 {
		h, err := g.src.Next(ctx)
		if err != nil {
			g.err = fmt.Errorf("substrate: gap filler: %w: %w", ErrUpstream, err)
			return Hash{}, Header{}, g.err
		}

		e := h.Number
		var s uint64
		if g.lastBlockNum != nil {
			s = *g.lastBlockNum + 1
		} else {
			s = e
		}

		for n := s; n < e; n++ {
			n := n
			hash, ok, err := g.rpc.BlockHash(ctx, &n)
			if err != nil {
				g.err = fmt.Errorf("substrate: gap filler: block hash %d: %w", n, err)
				return Hash{}, Header{}, g.err
			}
			if !ok {
				g.err = fmt.Errorf("substrate: gap filler: block %d: %w", n, ErrNoBlockHash)
				return Hash{}, Header{}, g.err
			}
			hdr, ok, err := g.rpc.Header(ctx, &hash)
			if err != nil {
				g.err = fmt.Errorf("substrate: gap filler: header %d: %w", n, err)
				return Hash{}, Header{}, g.err
			}
			if !ok {
				g.err = fmt.Errorf("substrate: gap filler: header %d: %w", n, ErrUpstream)
				return Hash{}, Header{}, g.err
			}
			g.pending = append(g.pending, blockEntry{hash: hash, header: hdr})
		}

		eHash, ok, err := g.rpc.BlockHash(ctx, &e)
		if err != nil {
			g.err = fmt.Errorf("substrate: gap filler: block hash %d: %w", e, err)
			return Hash{}, Header{}, g.err
		}
		if !ok {
			g.err = fmt.Errorf("substrate: gap filler: block %d: %w", e, ErrNoBlockHash)
			return Hash{}, Header{}, g.err
		}

		g.pending = append(g.pending, blockEntry{hash: eHash, header: h})
		g.lastBlockNum = &e
	}

	next := g.pending[0]
	g.pending = g.pending[1:]
	return next.hash, next.header, nil
}

// Close releases the underlying subscription.
func (g *GapFiller) Close() error {
	return g.src.Close()
}
