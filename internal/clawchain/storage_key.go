// Package clawchain provides ClawChain Substrate node integration for
// EvoClaw's HTTP-only RPC consumers. Storage-key construction itself is
// delegated to the substrate package's hashing and key primitives, so
// there is exactly one implementation of TwoX128/Blake2_128Concat/etc in
// this module.
package clawchain

import (
	"encoding/hex"

	"github.com/clawinfra/substrate"
)

// TwoX128 computes the TwoX128 hash of data: Substrate's default hasher for
// module and storage prefixes. The output is NOT cryptographically secure;
// use Blake2 variants for map keys.
//
// Example (from Substrate documentation):
//
//	TwoX128([]byte("System")) == 0x26aa394eea5630e07c48ae0c9558cef7
func TwoX128(data []byte) []byte {
	return substrate.HashWith(substrate.Twox128, data)
}

// Blake2_128Concat computes the 16-byte BLAKE2b-128 digest of key, then
// appends the raw key bytes. This is Substrate's Blake2_128Concat storage
// hasher, used for map keys that require both collision resistance and
// transparent iteration over the original key.
func Blake2_128Concat(key []byte) []byte {
	return substrate.HashWith(substrate.Blake2_128Concat, key)
}

// ComputeStorageKey computes the full Substrate storage key for a map entry:
//
//	TwoX128(module) ++ TwoX128(storage) ++ Blake2_128Concat(key)
//
// The result is returned as a "0x"-prefixed hex string, ready to pass to
// the state_getStorage JSON-RPC method.
//
// Parameters:
//   - module:  pallet name, e.g. "AgentDid"
//   - storage: storage item name, e.g. "DIDDocuments"
//   - key:     raw map key bytes (e.g. 32-byte SS58-decoded account ID)
func ComputeStorageKey(module, storage string, key []byte) string {
	entry := substrate.Map(substrate.NewMapKey(key, substrate.Blake2_128Concat))
	full := substrate.BuildKey(module, storage, entry)
	return "0x" + hex.EncodeToString(full)
}
