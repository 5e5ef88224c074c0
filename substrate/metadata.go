package substrate

import "sync/atomic"

// Metadata is the minimal read-only live-metadata lookup the storage client
// needs: the validation fingerprint for a pallet/item pair (used to check a
// StorageAddress's embedded hash before issuing any RPC) and a storage
// item's embedded default value (used by FetchOrDefault). Metadata is
// read-only after attach; a runtime-update mechanism outside this package
// swaps the whole handle atomically — see MetadataHandle.
type Metadata interface {
	// PalletExists reports whether pallet is present in this metadata
	// snapshot, distinguishing PalletMissing from ItemMissing failures.
	PalletExists(pallet string) bool
	// PalletStorageHash returns the fingerprint for pallet.item, and false
	// if the item is not present under pallet in this metadata snapshot.
	PalletStorageHash(pallet, item string) (hash [32]byte, ok bool)
	// StorageDefault returns the raw SCALE-encoded default bytes declared
	// for pallet.item, and false if absent.
	StorageDefault(pallet, item string) (def []byte, ok bool)
}

// storageItem describes one pallet storage entry's metadata-derived facts.
type storageItem struct {
	Hash    [32]byte
	Default []byte
}

// StaticMetadata is a plain-map Metadata snapshot, suitable for tests and
// for nodes whose metadata is fetched once and held fixed for the session.
type StaticMetadata struct {
	pallets map[string]map[string]storageItem
}

// NewStaticMetadata returns an empty StaticMetadata ready to be populated
// with Set.
func NewStaticMetadata() *StaticMetadata {
	return &StaticMetadata{pallets: make(map[string]map[string]storageItem)}
}

// Set records the validation hash and default bytes for pallet.item.
func (m *StaticMetadata) Set(pallet, item string, hash [32]byte, def []byte) {
	items, ok := m.pallets[pallet]
	if !ok {
		items = make(map[string]storageItem)
		m.pallets[pallet] = items
	}
	items[item] = storageItem{Hash: hash, Default: def}
}

func (m *StaticMetadata) PalletExists(pallet string) bool {
	_, ok := m.pallets[pallet]
	return ok
}

func (m *StaticMetadata) PalletStorageHash(pallet, item string) ([32]byte, bool) {
	items, ok := m.pallets[pallet]
	if !ok {
		return [32]byte{}, false
	}
	it, ok := items[item]
	return it.Hash, ok
}

func (m *StaticMetadata) StorageDefault(pallet, item string) ([]byte, bool) {
	items, ok := m.pallets[pallet]
	if !ok {
		return nil, false
	}
	it, ok := items[item]
	if !ok {
		return nil, false
	}
	return it.Default, true
}

// MetadataHandle holds a Metadata snapshot behind an atomic pointer so a
// runtime metadata-update collaborator can swap it in wholesale without any
// internal locking on the read path — the same atomically-swapped-handle
// shape ConfigHandle uses for live-reloaded config (ConfigWatcher replaces
// the *Config pointer, never mutates it in place).
type MetadataHandle struct {
	p atomic.Pointer[Metadata]
}

// NewMetadataHandle wraps an initial Metadata snapshot.
func NewMetadataHandle(m Metadata) *MetadataHandle {
	h := &MetadataHandle{}
	h.Store(m)
	return h
}

// Load returns the current Metadata snapshot.
func (h *MetadataHandle) Load() Metadata {
	return *h.p.Load()
}

// Store atomically replaces the Metadata snapshot.
func (h *MetadataHandle) Store(m Metadata) {
	h.p.Store(&m)
}
