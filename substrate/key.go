package substrate

// MapKey is one segment of a map-style storage key: the SCALE-encoded key
// argument together with the hasher that was declared for it in metadata.
// Order relative to sibling MapKeys is significant and must mirror the
// declared map-key tuple order.
type MapKey struct {
	Value  []byte
	Hasher StorageHasher
}

// NewMapKey constructs a MapKey from already SCALE-encoded bytes.
func NewMapKey(value []byte, hasher StorageHasher) MapKey {
	return MapKey{Value: value, Hasher: hasher}
}

func (k MapKey) appendTo(buf []byte) []byte {
	return append(buf, HashWith(k.Hasher, k.Value)...)
}

// EntryKey is the additional key material beyond the pallet+item prefix: no
// key material at all (Plain), or an ordered sequence of map segments (Map).
type EntryKey struct {
	segments []MapKey // nil/empty means Plain
}

// Plain returns an EntryKey with no additional key material.
func Plain() EntryKey {
	return EntryKey{}
}

// Map returns an EntryKey for a storage map parameterized by the given
// ordered segments.
func Map(segments ...MapKey) EntryKey {
	return EntryKey{segments: segments}
}

// IsMap reports whether this EntryKey carries map segments.
func (e EntryKey) IsMap() bool {
	return len(e.segments) > 0
}

func (e EntryKey) appendTo(buf []byte) []byte {
	for _, seg := range e.segments {
		buf = seg.appendTo(buf)
	}
	return buf
}

// KeyPrefix is the 32-byte concatenation twox_128(pallet) || twox_128(item)
// shared by every entry (plain or map) of one storage item.
func KeyPrefix(pallet, item string) []byte {
	prefix := make([]byte, 0, 32)
	prefix = append(prefix, HashWith(Twox128, []byte(pallet))...)
	prefix = append(prefix, HashWith(Twox128, []byte(item))...)
	return prefix
}

// BuildKey assembles the full storage key bytes:
//
//	twox_128(pallet) || twox_128(item) || Σ hash(segᵢ.hasher, segᵢ.value)
//
// Segment order is significant and is preserved as given in entryKey. Pure
// function of its arguments: repeated calls with the same inputs are
// byte-identical.
func BuildKey(pallet, item string, entryKey EntryKey) []byte {
	buf := KeyPrefix(pallet, item)
	buf = entryKey.appendTo(buf)
	return buf
}

// SystemEventsKey is the fixed 32-byte key of the System.Events storage
// slot: twox_128("System") || twox_128("Events").
func SystemEventsKey() []byte {
	return KeyPrefix("System", "Events")
}
