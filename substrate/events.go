package substrate

import (
	"context"
	"fmt"
)

// Events is the System.Events storage slot read for one block: a handle to
// the metadata in effect, the block hash it was read at, and the raw
// (possibly empty — absent is treated as empty) SCALE-encoded event record
// list. Decoding is lazy: constructing an Events value performs no decode
// work at all.
type Events[E any] struct {
	Metadata  Metadata
	BlockHash Hash
	Raw       []byte
}

// EventsAt reads the System.Events slot at block hash `at` and wraps it
// into an Events value. A missing slot is treated as an empty event list,
// not an error.
func EventsAt[E any](ctx context.Context, rpc RPCClient, metadata *MetadataHandle, at Hash) (Events[E], error) {
	raw, ok, err := rpc.Storage(ctx, SystemEventsKey(), &at)
	if err != nil {
		return Events[E]{}, fmt.Errorf("substrate: events at %x: %w", at, err)
	}
	if !ok {
		raw = nil
	}
	return Events[E]{Metadata: metadata.Load(), BlockHash: at, Raw: raw}, nil
}

// EventDecoder decodes one event record from the front of remaining and
// reports how many bytes it consumed, so iteration can advance past it.
// The SCALE codec itself is an external collaborator: callers supply a
// decoder built on top of it (e.g. metadata-driven dynamic decoding, or a
// generated static decoder), matching how events_type.rs's per-record
// decode loop is layered over the generic `codec::Decode` primitive.
type EventDecoder[E any] func(remaining []byte) (event E, consumed int, err error)

// Iter returns a lazy iterator over this block's event records.
func (e Events[E]) Iter(decodeOne EventDecoder[E]) *EventIter[E] {
	return &EventIter[E]{raw: e.Raw, decodeOne: decodeOne}
}

// EventIter lazily decodes one event record at a time from an Events
// value's raw bytes. It is single-consumer and terminal on first error.
type EventIter[E any] struct {
	raw       []byte
	decodeOne EventDecoder[E]
	err       error
}

// Next decodes and returns the next event record, or ok=false when the
// record list is exhausted (err nil) or the iterator is poisoned (err set,
// returned again on every subsequent call).
func (it *EventIter[E]) Next() (ev E, ok bool, err error) {
	var zero E
	if it.err != nil {
		return zero, false, it.err
	}
	if len(it.raw) == 0 {
		return zero, false, nil
	}

	decoded, consumed, derr := it.decodeOne(it.raw)
	if derr != nil {
		it.err = fmt.Errorf("substrate: decode event record: %w: %v", ErrDecode, derr)
		return zero, false, it.err
	}
	if consumed <= 0 || consumed > len(it.raw) {
		it.err = fmt.Errorf("substrate: event decoder consumed %d of %d remaining bytes: %w", consumed, len(it.raw), ErrDecode)
		return zero, false, it.err
	}
	it.raw = it.raw[consumed:]
	return decoded, true, nil
}
