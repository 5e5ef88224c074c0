// Package substrate implements the storage-key construction and paged
// iteration engine, and the event subscription pipeline, for talking to a
// Substrate-family blockchain node over RPC. It does not implement the RPC
// transport itself (see RPCClient), extrinsic signing, metadata-driven code
// generation, or the SCALE codec — those are external collaborators.
package substrate

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// StorageClient fetches raw and decoded storage values and enumerates paged
// keys. It holds a shared, reference-counted-by-convention RPCClient handle
// (callers pass an owned clone/reference; StorageClient itself holds no
// lock across a suspension point) and a metadata handle used to validate
// Address fingerprints before issuing RPCs.
type StorageClient struct {
	rpc      RPCClient
	metadata *MetadataHandle

	// FetchConcurrency bounds the number of in-flight RPCs FetchAll issues
	// at once. Zero means a sensible default (8).
	FetchConcurrency int
}

// NewStorageClient creates a StorageClient over rpc, validating Address
// fingerprints against metadata.
func NewStorageClient(rpc RPCClient, metadata *MetadataHandle) *StorageClient {
	return &StorageClient{rpc: rpc, metadata: metadata}
}

// FetchRawKey fetches the raw encoded value under an already-built key.
func (c *StorageClient) FetchRawKey(ctx context.Context, key []byte, at *Hash) ([]byte, bool, error) {
	value, ok, err := c.rpc.Storage(ctx, key, at)
	if err != nil {
		return nil, false, fmt.Errorf("substrate: fetch raw key: %w", err)
	}
	return value, ok, nil
}

func (c *StorageClient) validate(pallet, item string, hash [32]byte, hasValidation bool) error {
	if !hasValidation {
		return nil
	}
	meta := c.metadata.Load()
	if !meta.PalletExists(pallet) {
		return fmt.Errorf("substrate: pallet %q: %w", pallet, ErrPalletMissing)
	}
	live, ok := meta.PalletStorageHash(pallet, item)
	if !ok {
		return fmt.Errorf("substrate: item %q.%q: %w", pallet, item, ErrItemMissing)
	}
	if live != hash {
		return fmt.Errorf("substrate: %q.%q: %w", pallet, item, ErrIncompatible)
	}
	return nil
}

// FetchRaw fetches the raw encoded value at addr, validating its metadata
// fingerprint first (before issuing any RPC) when one is set.
func FetchRaw[R any](ctx context.Context, c *StorageClient, addr Address[R], at *Hash) ([]byte, bool, error) {
	if hash, ok := addr.ValidationHash(); ok {
		if err := c.validate(addr.Pallet, addr.Item, hash, ok); err != nil {
			return nil, false, err
		}
	}
	return c.FetchRawKey(ctx, addr.ToBytes(), at)
}

// Fetch fetches and decodes the value at addr.
func Fetch[R any](ctx context.Context, c *StorageClient, addr Address[R], at *Hash) (R, bool, error) {
	var zero R
	raw, ok, err := FetchRaw(ctx, c, addr, at)
	if err != nil {
		return zero, false, err
	}
	if !ok {
		return zero, false, nil
	}
	v, err := addr.Decode(raw)
	if err != nil {
		return zero, false, fmt.Errorf("substrate: decode %q.%q: %w: %v", addr.Pallet, addr.Item, ErrDecode, err)
	}
	return v, true, nil
}

// FetchOrDefault fetches and decodes the value at addr, falling back to the
// storage item's metadata-embedded default when the slot is absent.
func FetchOrDefault[R any](ctx context.Context, c *StorageClient, addr Address[R], at *Hash) (R, error) {
	var zero R
	v, ok, err := Fetch(ctx, c, addr, at)
	if err != nil {
		return zero, err
	}
	if ok {
		return v, nil
	}

	meta := c.metadata.Load()
	if !meta.PalletExists(addr.Pallet) {
		return zero, fmt.Errorf("substrate: pallet %q: %w", addr.Pallet, ErrPalletMissing)
	}
	def, ok := meta.StorageDefault(addr.Pallet, addr.Item)
	if !ok {
		return zero, fmt.Errorf("substrate: item %q.%q: %w", addr.Pallet, addr.Item, ErrItemMissing)
	}
	dv, err := addr.Decode(def)
	if err != nil {
		return zero, fmt.Errorf("substrate: %q.%q: %w: %v", addr.Pallet, addr.Item, ErrDefaultDecode, err)
	}
	return dv, nil
}

// FetchKeys fetches up to count keys under prefix, in lexicographic order,
// strictly after startKey.
func (c *StorageClient) FetchKeys(ctx context.Context, prefix []byte, count uint32, startKey []byte, at *Hash) ([][]byte, error) {
	keys, err := c.rpc.StorageKeysPaged(ctx, prefix, count, startKey, at)
	if err != nil {
		return nil, fmt.Errorf("substrate: fetch keys: %w", err)
	}
	return keys, nil
}

// Iter returns a KeyIter over every entry of the storage map named by
// pallet.item, paged pageSize keys at a time and pinned to at (nil resolves
// the current best block hash once, at construction, so all pages address
// the same state root).
func Iter[F any](ctx context.Context, c *StorageClient, pallet, item string, pageSize uint32, at *Hash, decode func([]byte) (F, error)) (*KeyIter[F], error) {
	hash := at
	if hash == nil {
		resolved, ok, err := c.rpc.BlockHash(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("substrate: resolve block hash for iter: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("substrate: iter %q.%q: %w", pallet, item, ErrNoBlockHash)
		}
		hash = &resolved
	}

	return &KeyIter[F]{
		client: c,
		pallet: pallet,
		item:   item,
		hash:   *hash,
		count:  pageSize,
		decode: decode,
	}, nil
}

// FetchAll fetches every address in addrs concurrently, bounded by
// c.FetchConcurrency (default 8), and returns results in the same order as
// addrs. It adds no semantics beyond repeated Fetch calls — it exists
// because callers routinely need many independent addresses at once.
func FetchAll[R any](ctx context.Context, c *StorageClient, addrs []Address[R], at *Hash) ([]Option[R], error) {
	results := make([]Option[R], len(addrs))

	limit := c.FetchConcurrency
	if limit <= 0 {
		limit = 8
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, addr := range addrs {
		i, addr := i, addr
		g.Go(func() error {
			v, ok, err := Fetch(gctx, c, addr, at)
			if err != nil {
				return err
			}
			results[i] = Option[R]{Value: v, Present: ok}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Option represents an optionally-present decoded value, used by FetchAll
// where returning a bare zero value would be ambiguous with "absent".
type Option[R any] struct {
	Value   R
	Present bool
}
