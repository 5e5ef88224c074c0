package substrate

import (
	"context"
	"fmt"
)

// fakeRPC is a hand-written RPCClient test double. Each method delegates to
// an overridable function field, left nil where a given test has no need
// for it (calling a nil field fails the test loudly rather than panicking
// obscurely).
type fakeRPC struct {
	storageFn          func(ctx context.Context, key []byte, at *Hash) ([]byte, bool, error)
	storageKeysPagedFn func(ctx context.Context, prefix []byte, count uint32, startKey []byte, at *Hash) ([][]byte, error)
	queryStorageAtFn   func(ctx context.Context, keys [][]byte, at *Hash) ([]ChangeSet, error)
	blockHashFn        func(ctx context.Context, number *uint64) (Hash, bool, error)
	headerFn           func(ctx context.Context, at *Hash) (Header, bool, error)
	finalizedHeadFn    func(ctx context.Context) (Hash, error)
	subscribeBlocksFn  func(ctx context.Context) (HeaderSubscription, error)
	subscribeFinalFn   func(ctx context.Context) (HeaderSubscription, error)
}

func (f *fakeRPC) Storage(ctx context.Context, key []byte, at *Hash) ([]byte, bool, error) {
	if f.storageFn == nil {
		return nil, false, fmt.Errorf("fakeRPC: Storage not configured")
	}
	return f.storageFn(ctx, key, at)
}

func (f *fakeRPC) StorageKeysPaged(ctx context.Context, prefix []byte, count uint32, startKey []byte, at *Hash) ([][]byte, error) {
	if f.storageKeysPagedFn == nil {
		return nil, fmt.Errorf("fakeRPC: StorageKeysPaged not configured")
	}
	return f.storageKeysPagedFn(ctx, prefix, count, startKey, at)
}

func (f *fakeRPC) QueryStorageAt(ctx context.Context, keys [][]byte, at *Hash) ([]ChangeSet, error) {
	if f.queryStorageAtFn == nil {
		return nil, fmt.Errorf("fakeRPC: QueryStorageAt not configured")
	}
	return f.queryStorageAtFn(ctx, keys, at)
}

func (f *fakeRPC) BlockHash(ctx context.Context, number *uint64) (Hash, bool, error) {
	if f.blockHashFn == nil {
		return Hash{}, false, fmt.Errorf("fakeRPC: BlockHash not configured")
	}
	return f.blockHashFn(ctx, number)
}

func (f *fakeRPC) Header(ctx context.Context, at *Hash) (Header, bool, error) {
	if f.headerFn == nil {
		return Header{}, false, fmt.Errorf("fakeRPC: Header not configured")
	}
	return f.headerFn(ctx, at)
}

func (f *fakeRPC) FinalizedHead(ctx context.Context) (Hash, error) {
	if f.finalizedHeadFn == nil {
		return Hash{}, fmt.Errorf("fakeRPC: FinalizedHead not configured")
	}
	return f.finalizedHeadFn(ctx)
}

func (f *fakeRPC) SubscribeBlocks(ctx context.Context) (HeaderSubscription, error) {
	if f.subscribeBlocksFn == nil {
		return nil, fmt.Errorf("fakeRPC: SubscribeBlocks not configured")
	}
	return f.subscribeBlocksFn(ctx)
}

func (f *fakeRPC) SubscribeFinalizedBlocks(ctx context.Context) (HeaderSubscription, error) {
	if f.subscribeFinalFn == nil {
		return nil, fmt.Errorf("fakeRPC: SubscribeFinalizedBlocks not configured")
	}
	return f.subscribeFinalFn(ctx)
}

var _ RPCClient = (*fakeRPC)(nil)

// fakeHeaderSub is a hand-written HeaderSubscription test double serving a
// fixed, pre-built sequence of headers.
type fakeHeaderSub struct {
	headers []Header
	i       int
	closed  bool
}

func (s *fakeHeaderSub) Next(ctx context.Context) (Header, error) {
	if s.i >= len(s.headers) {
		return Header{}, fmt.Errorf("fakeHeaderSub: exhausted")
	}
	h := s.headers[s.i]
	s.i++
	return h, nil
}

func (s *fakeHeaderSub) Close() error {
	s.closed = true
	return nil
}

func hashOf(b byte) Hash {
	var h Hash
	h[0] = b
	return h
}
