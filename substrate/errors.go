package substrate

import "errors"

// Sentinel errors for the taxonomy in the error handling design: transport
// failures, missing block hashes, decode failures, and metadata mismatches.
// Wrap these with fmt.Errorf("...: %w", ErrX) so callers can errors.Is() them.
var (
	// ErrNoBlockHash is returned when a "latest block" lookup resolved to
	// null where a hash was required (e.g. pinning a KeyIter).
	ErrNoBlockHash = errors.New("substrate: node returned no block hash")

	// ErrDecode wraps a SCALE decode failure on a fetched storage value.
	ErrDecode = errors.New("substrate: decode failed")

	// ErrDefaultDecode wraps a decode failure on a storage item's embedded
	// default value (used by FetchOrDefault).
	ErrDefaultDecode = errors.New("substrate: default value decode failed")

	// ErrPalletMissing means the requested pallet is absent from live metadata.
	ErrPalletMissing = errors.New("substrate: pallet missing from metadata")

	// ErrItemMissing means the requested storage item is absent from the
	// named pallet in live metadata.
	ErrItemMissing = errors.New("substrate: storage item missing from metadata")

	// ErrIncompatible means a StorageAddress's validation hash does not match
	// the fingerprint computed from live metadata.
	ErrIncompatible = errors.New("substrate: storage address incompatible with live metadata")

	// ErrUpstream wraps an error propagated from a push subscription; once
	// seen, the subscription/gap filler is terminal.
	ErrUpstream = errors.New("substrate: upstream subscription error")

	// ErrSubscriptionClosed is returned (wrapped) by a transport asked to
	// make a call after it has been closed, e.g. substratews.Client after
	// Close.
	ErrSubscriptionClosed = errors.New("substrate: subscription closed")
)
