package substrate

import "context"

// Hash is a 32-byte block hash, used throughout to pin state reads.
type Hash [32]byte

// Header is a decoded block header: enough to know a block's number and to
// chain it to its parent. The core treats the remaining node-specific
// digest/extrinsics-root fields as opaque payload it never inspects.
type Header struct {
	ParentHash     Hash
	Number         uint64
	StateRoot      Hash
	ExtrinsicsRoot Hash
	Digest         []byte
}

// KeyChange is one (key, value-or-absent) pair inside a ChangeSet returned
// by QueryStorageAt.
type KeyChange struct {
	Key     []byte
	Value   []byte
	Present bool
}

// ChangeSet is one block's worth of storage changes for a queried key set,
// as returned by state_queryStorageAt.
type ChangeSet struct {
	Block   Hash
	Changes []KeyChange
}

// RPCClient is the RPC surface the core consumes. It is the one external
// collaborator boundary in this package: transport framing, connection
// management and reconnection are someone else's job (see substratews and
// substratehttp for concrete implementations; substratemqtt supplies only a
// HeaderSubscription), and tests substitute a fake that implements this
// interface directly.
//
// Every method is a suspension point; an absent "optional" result is
// reported via the boolean return rather than a nil/zero value, so a
// present-but-empty byte string is never confused with "not found".
type RPCClient interface {
	// Storage fetches the raw value at key, pinned to at (nil means latest).
	Storage(ctx context.Context, key []byte, at *Hash) (value []byte, ok bool, err error)

	// StorageKeysPaged enumerates up to count keys under prefix in
	// lexicographic order, strictly after startKey (nil means from the start).
	StorageKeysPaged(ctx context.Context, prefix []byte, count uint32, startKey []byte, at *Hash) (keys [][]byte, err error)

	// QueryStorageAt batch-reads the current values of keys, pinned to at.
	QueryStorageAt(ctx context.Context, keys [][]byte, at *Hash) (changes []ChangeSet, err error)

	// BlockHash resolves a block number to its hash; number nil means the
	// current best block.
	BlockHash(ctx context.Context, number *uint64) (hash Hash, ok bool, err error)

	// Header fetches the header at hash; hash nil means the current best block.
	Header(ctx context.Context, at *Hash) (header Header, ok bool, err error)

	// FinalizedHead returns the hash of the most recently finalized block.
	FinalizedHead(ctx context.Context) (hash Hash, err error)

	// SubscribeBlocks opens a best-effort (not necessarily finalized) stream
	// of new block headers.
	SubscribeBlocks(ctx context.Context) (HeaderSubscription, error)

	// SubscribeFinalizedBlocks opens a stream of finalized block headers.
	SubscribeFinalizedBlocks(ctx context.Context) (HeaderSubscription, error)
}

// HeaderSubscription is a push stream of block headers. Next blocks until
// the next header arrives, the subscription ends, or ctx is cancelled.
// Abandoning the subscription (Close, or letting it be garbage collected
// after Close) cancels the underlying push subscription at the transport.
type HeaderSubscription interface {
	Next(ctx context.Context) (Header, error)
	Close() error
}
