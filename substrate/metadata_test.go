package substrate

import "testing"

func TestStaticMetadata_PalletExists(t *testing.T) {
	m := NewStaticMetadata()
	if m.PalletExists("System") {
		t.Error("empty metadata should report no pallets")
	}
	m.Set("System", "Number", [32]byte{1}, []byte{0})
	if !m.PalletExists("System") {
		t.Error("PalletExists should report true after Set")
	}
	if m.PalletExists("Balances") {
		t.Error("PalletExists should report false for an unset pallet")
	}
}

func TestStaticMetadata_PalletStorageHash(t *testing.T) {
	m := NewStaticMetadata()
	want := [32]byte{0xAB}
	m.Set("System", "Number", want, nil)

	got, ok := m.PalletStorageHash("System", "Number")
	if !ok {
		t.Fatal("expected PalletStorageHash to find System.Number")
	}
	if got != want {
		t.Errorf("PalletStorageHash = %x, want %x", got, want)
	}

	if _, ok := m.PalletStorageHash("System", "Missing"); ok {
		t.Error("PalletStorageHash should report false for an unset item")
	}
	if _, ok := m.PalletStorageHash("Missing", "Number"); ok {
		t.Error("PalletStorageHash should report false for an unset pallet")
	}
}

func TestStaticMetadata_StorageDefault(t *testing.T) {
	m := NewStaticMetadata()
	def := []byte{0xDE, 0xAD}
	m.Set("System", "Number", [32]byte{}, def)

	got, ok := m.StorageDefault("System", "Number")
	if !ok || string(got) != string(def) {
		t.Errorf("StorageDefault = %v,%v want %v,true", got, ok, def)
	}

	if _, ok := m.StorageDefault("System", "Missing"); ok {
		t.Error("StorageDefault should report false for an unset item")
	}
}

func TestMetadataHandle_LoadStore(t *testing.T) {
	first := NewStaticMetadata()
	first.Set("System", "Number", [32]byte{1}, nil)

	h := NewMetadataHandle(first)
	if !h.Load().PalletExists("System") {
		t.Fatal("Load should return the metadata passed to NewMetadataHandle")
	}

	second := NewStaticMetadata()
	second.Set("Balances", "Account", [32]byte{2}, nil)
	h.Store(second)

	loaded := h.Load()
	if loaded.PalletExists("System") {
		t.Error("Store should fully replace the snapshot, not merge into it")
	}
	if !loaded.PalletExists("Balances") {
		t.Error("Load should reflect the snapshot passed to Store")
	}
}
