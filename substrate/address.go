package substrate

// Address is a typed handle describing one storage entry: the pallet and
// item name it addresses, the key material (plain or map segments), an
// optional 32-byte metadata validation fingerprint, and the decode function
// used to turn raw bytes into R. Go has no zero-size phantom generics, so
// the "decoded return type" tag from spec.md's StorageAddress<R> is carried
// as this Decode closure rather than a marker field (see Design Notes §9).
//
// Address is cheap and meant to be constructed per call; once built, Pallet
// and Item never change, so ToBytes is a pure function of its fields.
type Address[R any] struct {
	Pallet string
	Item   string

	entryKey EntryKey
	hash     *[32]byte // nil when unvalidated
	decode   func([]byte) (R, error)
}

// NewAddress constructs an Address with no metadata validation.
func NewAddress[R any](pallet, item string, entryKey EntryKey, decode func([]byte) (R, error)) Address[R] {
	return Address[R]{Pallet: pallet, Item: item, entryKey: entryKey, decode: decode}
}

// NewAddressWithValidation constructs an Address carrying a 32-byte
// validation fingerprint, computed at code-generation time from the target
// metadata. The client checks this fingerprint against live metadata before
// every fetch.
func NewAddressWithValidation[R any](pallet, item string, entryKey EntryKey, hash [32]byte, decode func([]byte) (R, error)) Address[R] {
	h := hash
	return Address[R]{Pallet: pallet, Item: item, entryKey: entryKey, hash: &h, decode: decode}
}

// Unvalidated returns a copy of a with its validation fingerprint dropped,
// suppressing the metadata compatibility check at query time.
func (a Address[R]) Unvalidated() Address[R] {
	a.hash = nil
	return a
}

// ValidationHash returns the address's 32-byte fingerprint and whether one
// is set.
func (a Address[R]) ValidationHash() ([32]byte, bool) {
	if a.hash == nil {
		return [32]byte{}, false
	}
	return *a.hash, true
}

// ToBytes applies the key builder to this address's pallet, item and entry
// key. Pure: calling it twice on the same Address yields identical bytes.
func (a Address[R]) ToBytes() []byte {
	return BuildKey(a.Pallet, a.Item, a.entryKey)
}

// Decode runs this address's decode function over raw bytes.
func (a Address[R]) Decode(raw []byte) (R, error) {
	return a.decode(raw)
}
