package substrate

import (
	"encoding/binary"
	"math/bits"

	"golang.org/x/crypto/blake2b"
)

// StorageHasher names one of the seven hashing conventions Substrate uses to
// build storage keys. Each variant fixes the output layout: a pure hash, a
// "hash || plain" concat, or the identity (pass-through).
type StorageHasher int

const (
	// Identity passes the input through unchanged. Used for keys that are
	// already opaque or where iteration order over the raw key matters.
	Identity StorageHasher = iota
	// Blake2_128 is the 16-byte BLAKE2b digest of the input.
	Blake2_128
	// Blake2_128Concat is blake2_128(value) || value.
	Blake2_128Concat
	// Blake2_256 is the 32-byte BLAKE2b digest of the input.
	Blake2_256
	// Twox128 is Substrate's 16-byte TwoX (xxHash64 x2, seeds 0,1) hash.
	Twox128
	// Twox256 is the 32-byte TwoX hash (xxHash64 x4, seeds 0..3).
	Twox256
	// Twox64Concat is xxh64_seed0(value) || value.
	Twox64Concat
)

func (h StorageHasher) String() string {
	switch h {
	case Identity:
		return "Identity"
	case Blake2_128:
		return "Blake2_128"
	case Blake2_128Concat:
		return "Blake2_128Concat"
	case Blake2_256:
		return "Blake2_256"
	case Twox128:
		return "Twox128"
	case Twox256:
		return "Twox256"
	case Twox64Concat:
		return "Twox64Concat"
	default:
		return "Unknown"
	}
}

// HashWith applies the named hasher to data and returns the byte output
// defined by that hasher's layout. Pure function, no I/O, cannot fail.
func HashWith(hasher StorageHasher, data []byte) []byte {
	switch hasher {
	case Identity:
		out := make([]byte, len(data))
		copy(out, data)
		return out
	case Blake2_128:
		return blake2_128(data)
	case Blake2_128Concat:
		return append(blake2_128(data), data...)
	case Blake2_256:
		return blake2_256(data)
	case Twox128:
		return twox(data, 2)
	case Twox256:
		return twox(data, 4)
	case Twox64Concat:
		return append(twox64(data, 0), data...)
	default:
		panic("substrate: unknown StorageHasher")
	}
}

func blake2_128(data []byte) []byte {
	h, _ := blake2b.New(16, nil) // only errors on invalid key size, which 16 is not
	h.Write(data)
	return h.Sum(nil)
}

func blake2_256(data []byte) []byte {
	sum := blake2b.Sum256(data)
	return sum[:]
}

// twox64 returns the 8-byte little-endian xxHash64 digest of data for the
// given seed. This is the building block for Twox64Concat and, used with
// seeds 0..n-1, for Twox128/Twox256.
func twox64(data []byte, seed uint64) []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, xxHash64(data, seed))
	return out
}

// twox concatenates n successive xxHash64 digests (seeds 0, 1, ..., n-1) of
// data, producing the 8*n-byte TwoX digest Substrate uses for Twox128 (n=2)
// and Twox256 (n=4).
func twox(data []byte, n int) []byte {
	out := make([]byte, 0, 8*n)
	for seed := uint64(0); seed < uint64(n); seed++ {
		out = append(out, twox64(data, seed)...)
	}
	return out
}

// xxHash64 primes from the xxHash spec
// (https://github.com/Cyan4973/xxHash/blob/v0.8.1/doc/xxhash_spec.md).
const (
	xxPrime1 uint64 = 11400714785074694791
	xxPrime2 uint64 = 14029467366897019727
	xxPrime3 uint64 = 1609587929392839161
	xxPrime4 uint64 = 9650029242287828579
	xxPrime5 uint64 = 2870177450012600261
)

func xxRound(acc, input uint64) uint64 {
	acc += input * xxPrime2
	acc = bits.RotateLeft64(acc, 31)
	acc *= xxPrime1
	return acc
}

func xxMergeRound(acc, val uint64) uint64 {
	val = xxRound(0, val)
	acc ^= val
	acc = acc*xxPrime1 + xxPrime4
	return acc
}

// xxHash64 implements xxHash-64 with the given seed; it underlies Twox128,
// Twox256 and Twox64Concat above.
func xxHash64(input []byte, seed uint64) uint64 {
	n := len(input)
	var h uint64

	if n >= 32 {
		v1 := seed + xxPrime1 + xxPrime2
		v2 := seed + xxPrime2
		v3 := seed
		v4 := seed - xxPrime1

		for len(input) >= 32 {
			v1 = xxRound(v1, binary.LittleEndian.Uint64(input[0:8]))
			v2 = xxRound(v2, binary.LittleEndian.Uint64(input[8:16]))
			v3 = xxRound(v3, binary.LittleEndian.Uint64(input[16:24]))
			v4 = xxRound(v4, binary.LittleEndian.Uint64(input[24:32]))
			input = input[32:]
		}

		h = bits.RotateLeft64(v1, 1) + bits.RotateLeft64(v2, 7) +
			bits.RotateLeft64(v3, 12) + bits.RotateLeft64(v4, 18)
		h = xxMergeRound(h, v1)
		h = xxMergeRound(h, v2)
		h = xxMergeRound(h, v3)
		h = xxMergeRound(h, v4)
	} else {
		h = seed + xxPrime5
	}

	h += uint64(n)

	for len(input) >= 8 {
		k1 := xxRound(0, binary.LittleEndian.Uint64(input[:8]))
		h ^= k1
		h = bits.RotateLeft64(h, 27)*xxPrime1 + xxPrime4
		input = input[8:]
	}

	if len(input) >= 4 {
		h ^= uint64(binary.LittleEndian.Uint32(input[:4])) * xxPrime1
		h = bits.RotateLeft64(h, 23)*xxPrime2 + xxPrime3
		input = input[4:]
	}

	for _, b := range input {
		h ^= uint64(b) * xxPrime5
		h = bits.RotateLeft64(h, 11) * xxPrime1
	}

	h ^= h >> 33
	h *= xxPrime2
	h ^= h >> 29
	h *= xxPrime3
	h ^= h >> 32

	return h
}
