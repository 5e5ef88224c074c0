package checkpoint

import (
	"context"
	"path/filepath"
	"testing"
)

func TestStore_LoadMissingStreamReturnsNotOK(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "cursors.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	_, ok, err := s.Load(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Error("expected ok=false for a stream with no saved checkpoint")
	}
}

func TestStore_SaveThenLoadRoundTrips(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "cursors.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	streamID := NewStreamID()
	if err := s.Save(context.Background(), streamID, 42); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := s.Load(context.Background(), streamID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatal("expected ok=true after a Save")
	}
	if got != 42 {
		t.Errorf("Load = %d, want 42", got)
	}
}

func TestStore_SaveOverwritesPreviousCheckpoint(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "cursors.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	streamID := NewStreamID()
	if err := s.Save(context.Background(), streamID, 10); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(context.Background(), streamID, 11); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := s.Load(context.Background(), streamID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok || got != 11 {
		t.Errorf("Load = (%d, %v), want (11, true)", got, ok)
	}
}

func TestStore_StreamsAreIndependent(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "cursors.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	a, b := NewStreamID(), NewStreamID()
	if err := s.Save(context.Background(), a, 1); err != nil {
		t.Fatalf("Save a: %v", err)
	}
	if err := s.Save(context.Background(), b, 2); err != nil {
		t.Fatalf("Save b: %v", err)
	}

	gotA, _, err := s.Load(context.Background(), a)
	if err != nil {
		t.Fatalf("Load a: %v", err)
	}
	gotB, _, err := s.Load(context.Background(), b)
	if err != nil {
		t.Fatalf("Load b: %v", err)
	}
	if gotA != 1 || gotB != 2 {
		t.Errorf("Load a=%d b=%d, want a=1 b=2", gotA, gotB)
	}
}

func TestNewStreamID_IsUnique(t *testing.T) {
	if NewStreamID() == NewStreamID() {
		t.Error("expected two calls to NewStreamID to produce distinct values")
	}
}
