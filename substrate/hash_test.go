package substrate

import (
	"encoding/hex"
	"testing"
)

// ── xxHash64 known-answer tests (xxHash spec reference vectors) ─────────────

func TestXXHash64_EmptyString(t *testing.T) {
	got := xxHash64([]byte{}, 0)
	const want = uint64(0xef46db3751d8e999)
	if got != want {
		t.Errorf("xxHash64(\"\", 0) = %016x, want %016x", got, want)
	}
}

func TestXXHash64_SingleByte(t *testing.T) {
	got := xxHash64([]byte("a"), 0)
	const want = uint64(0xd24ec4f1a98c6e5b)
	if got != want {
		t.Errorf("xxHash64(\"a\", 0) = %016x, want %016x", got, want)
	}
}

func TestXXHash64_ShortInput(t *testing.T) {
	got := xxHash64([]byte("abc"), 0)
	const want = uint64(0x44bc2cf5ad770999)
	if got != want {
		t.Errorf("xxHash64(\"abc\", 0) = %016x, want %016x", got, want)
	}
}

func TestXXHash64_DifferentSeeds(t *testing.T) {
	input := []byte("hello")
	h0 := xxHash64(input, 0)
	h1 := xxHash64(input, 1)
	if h0 == h1 {
		t.Errorf("xxHash64 with seed 0 and 1 should differ, got %016x for both", h0)
	}
}

func TestXXHash64_LongInputDeterministic(t *testing.T) {
	input := []byte("01234567890123456789012345678901234567890")
	h := xxHash64(input, 0)
	if h == 0 {
		t.Error("xxHash64 returned 0 for long input; likely a bug")
	}
	if xxHash64(input, 0) != h {
		t.Error("xxHash64 is not deterministic")
	}
}

// ── Hasher output sizes (Invariant 2) ────────────────────────────────────────

func TestHash_OutputSizes(t *testing.T) {
	value := []byte("AgentDid")
	tests := []struct {
		hasher StorageHasher
		want   int
	}{
		{Identity, len(value)},
		{Blake2_128, 16},
		{Blake2_128Concat, 16 + len(value)},
		{Blake2_256, 32},
		{Twox128, 16},
		{Twox256, 32},
		{Twox64Concat, 8 + len(value)},
	}
	for _, tc := range tests {
		got := HashWith(tc.hasher, value)
		if len(got) != tc.want {
			t.Errorf("HashWith(%s, %q) length = %d, want %d", tc.hasher, value, len(got), tc.want)
		}
	}
}

// TestHash_Blake2_128ConcatLayout pins S2: trailing bytes = blake2_128(value) || value.
func TestHash_Blake2_128ConcatLayout(t *testing.T) {
	value := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	got := HashWith(Blake2_128Concat, value)

	if len(got) != 16+len(value) {
		t.Fatalf("length = %d, want %d", len(got), 16+len(value))
	}
	wantHashPrefix := HashWith(Blake2_128, value)
	if hex.EncodeToString(got[:16]) != hex.EncodeToString(wantHashPrefix) {
		t.Errorf("prefix = %x, want blake2_128(value) = %x", got[:16], wantHashPrefix)
	}
	if hex.EncodeToString(got[16:]) != hex.EncodeToString(value) {
		t.Errorf("suffix = %x, want raw value %x", got[16:], value)
	}
}

// TestHash_Twox64ConcatLayout pins S3: trailing bytes = xxh64_seed0(value) || value.
func TestHash_Twox64ConcatLayout(t *testing.T) {
	value := []byte{0x2A, 0x00, 0x00, 0x00} // SCALE u32 encoding of 42
	got := HashWith(Twox64Concat, value)

	if len(got) != 8+len(value) {
		t.Fatalf("length = %d, want %d", len(got), 8+len(value))
	}
	wantPrefix := twox64(value, 0)
	if hex.EncodeToString(got[:8]) != hex.EncodeToString(wantPrefix) {
		t.Errorf("prefix = %x, want xxh64_seed0(value) = %x", got[:8], wantPrefix)
	}
	if hex.EncodeToString(got[8:]) != hex.EncodeToString(value) {
		t.Errorf("suffix = %x, want raw value %x", got[8:], value)
	}
}

// TestHash_Blake2_128HashesValueNotBuffer pins the corrected Open Question
// #2 behavior: Blake2_128 hashes the input value directly.
func TestHash_Blake2_128HashesValueNotBuffer(t *testing.T) {
	value := []byte("some-storage-key")
	got := HashWith(Blake2_128, value)
	want := blake2_128(value)
	if hex.EncodeToString(got) != hex.EncodeToString(want) {
		t.Errorf("Blake2_128(%q) = %x, want blake2_128(value) = %x", value, got, want)
	}
}

// TestTwox128_KnownValue pins a widely documented Substrate test vector.
func TestTwox128_KnownValue(t *testing.T) {
	got := hex.EncodeToString(HashWith(Twox128, []byte("System")))
	const want = "26aa394eea5630e07c48ae0c9558cef7"
	if got != want {
		t.Errorf("Twox128(\"System\") = %s, want %s", got, want)
	}
}

func TestHash_Deterministic(t *testing.T) {
	value := []byte("repeat-me")
	for _, h := range []StorageHasher{Identity, Blake2_128, Blake2_128Concat, Blake2_256, Twox128, Twox256, Twox64Concat} {
		a := HashWith(h, value)
		b := HashWith(h, value)
		if hex.EncodeToString(a) != hex.EncodeToString(b) {
			t.Errorf("HashWith(%s, ...) is not deterministic", h)
		}
	}
}
