package substrate

import (
	"bytes"
	"errors"
	"testing"
)

func decodeAsString(raw []byte) (string, error) {
	return string(raw), nil
}

func TestAddress_ToBytesDeterministic(t *testing.T) {
	addr := NewAddress("System", "Number", Plain(), decodeAsString)
	a := addr.ToBytes()
	b := addr.ToBytes()
	if !bytes.Equal(a, b) {
		t.Error("Address.ToBytes is not deterministic")
	}
	if !bytes.Equal(a, BuildKey("System", "Number", Plain())) {
		t.Error("Address.ToBytes does not match BuildKey with the same arguments")
	}
}

func TestAddress_ValidationHash(t *testing.T) {
	unvalidated := NewAddress("System", "Number", Plain(), decodeAsString)
	if _, ok := unvalidated.ValidationHash(); ok {
		t.Error("NewAddress should carry no validation fingerprint")
	}

	var fp [32]byte
	fp[0] = 0xAB
	validated := NewAddressWithValidation("System", "Number", Plain(), fp, decodeAsString)
	got, ok := validated.ValidationHash()
	if !ok {
		t.Fatal("NewAddressWithValidation should carry a validation fingerprint")
	}
	if got != fp {
		t.Errorf("ValidationHash() = %x, want %x", got, fp)
	}

	dropped := validated.Unvalidated()
	if _, ok := dropped.ValidationHash(); ok {
		t.Error("Unvalidated() should drop the validation fingerprint")
	}
	// The original value is unaffected — Unvalidated returns a copy.
	if _, ok := validated.ValidationHash(); !ok {
		t.Error("Unvalidated() must not mutate the receiver")
	}
}

func TestAddress_Decode(t *testing.T) {
	addr := NewAddress("System", "Number", Plain(), decodeAsString)
	v, err := addr.Decode([]byte("hello"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v != "hello" {
		t.Errorf("Decode = %q, want %q", v, "hello")
	}
}

func TestAddress_DecodePropagatesError(t *testing.T) {
	wantErr := errors.New("boom")
	addr := NewAddress("System", "Number", Plain(), func([]byte) (string, error) {
		return "", wantErr
	})
	_, err := addr.Decode(nil)
	if !errors.Is(err, wantErr) {
		t.Errorf("Decode error = %v, want %v", err, wantErr)
	}
}
