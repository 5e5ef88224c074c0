package substrate

import (
	"context"
	"fmt"
)

type kvPair struct {
	key   []byte
	value []byte
}

// KeyIter is a single-consumer cursor over every entry of one storage map,
// pinned to one block hash for its whole lifetime. Each call to Next either
// pops a buffered pair (zero RPCs) or performs exactly two RPCs: one key
// page, one batched value lookup.
//
// Across its lifetime a KeyIter returns each on-chain key at most once, in
// the node's lexicographic order of encoded keys. Once the map is exhausted
// every call reports end (ok=false, nil error); once a page fetch or a
// decode fails, every call reports ok=false with that same error.
type KeyIter[F any] struct {
	client *StorageClient
	pallet string
	item   string
	hash   Hash
	count  uint32
	decode func([]byte) (F, error)

	startKey []byte
	buffer   []kvPair
	done     bool
	err      error
}

// Next returns the next (key, decoded value) pair, or ok=false when the map
// is exhausted (err is nil) or the iterator has been poisoned by a prior
// error (err is non-nil, the same error every time).
func (it *KeyIter[F]) Next(ctx context.Context) (key []byte, value F, ok bool, err error) {
	var zero F

	if it.err != nil {
		return nil, zero, false, it.err
	}
	if it.done {
		return nil, zero, false, nil
	}

	for {
		if n := len(it.buffer); n > 0 {
			p := it.buffer[n-1]
			it.buffer = it.buffer[:n-1]

			v, derr := it.decode(p.value)
			if derr != nil {
				it.err = fmt.Errorf("substrate: iter %q.%q: %w: %v", it.pallet, it.item, ErrDecode, derr)
				return nil, zero, false, it.err
			}
			return p.key, v, true, nil
		}

		if err := it.fillBuffer(ctx); err != nil {
			it.err = err
			return nil, zero, false, err
		}
		if it.done {
			return nil, zero, false, nil
		}
	}
}

// fillBuffer requests the next page of keys and, if any come back, the
// batched values for them, populating the buffer in reverse page order so
// that popping from the back yields ascending lexicographic order.
func (it *KeyIter[F]) fillBuffer(ctx context.Context) error {
	prefix := KeyPrefix(it.pallet, it.item)
	keys, err := it.client.FetchKeys(ctx, prefix, it.count, it.startKey, &it.hash)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		it.done = true
		return nil
	}
	it.startKey = keys[len(keys)-1]

	changes, err := it.client.rpc.QueryStorageAt(ctx, keys, &it.hash)
	if err != nil {
		return fmt.Errorf("substrate: iter %q.%q: query storage at: %w", it.pallet, it.item, err)
	}

	collected := make([]kvPair, 0, len(keys))
	for _, cs := range changes {
		for _, kv := range cs.Changes {
			if kv.Present {
				collected = append(collected, kvPair{key: kv.Key, value: kv.Value})
			}
		}
	}
	// Invariant: a successful page fetch yields exactly as many values as
	// keys requested; a mismatch indicates node misbehavior.
	if len(collected) != len(keys) {
		return fmt.Errorf("substrate: iter %q.%q: node returned %d values for %d keys", it.pallet, it.item, len(collected), len(keys))
	}

	it.buffer = make([]kvPair, len(collected))
	for i, p := range collected {
		it.buffer[len(collected)-1-i] = p
	}
	return nil
}

// Err returns the error that poisoned this iterator, if any.
func (it *KeyIter[F]) Err() error {
	return it.err
}
