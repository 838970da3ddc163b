package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCursorFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cursor.json")
	file := NewCursorFile(path, true, 43114)

	if _, ok, err := file.Load(); err != nil || ok {
		t.Fatalf("fresh cursor: ok=%v err=%v", ok, err)
	}

	if err := file.Save(12345); err != nil {
		t.Fatalf("save cursor: %v", err)
	}

	cur, ok, err := file.Load()
	if err != nil || !ok {
		t.Fatalf("load cursor: ok=%v err=%v", ok, err)
	}
	if cur.LastBlock != 12345 || cur.ChainID != 43114 {
		t.Fatalf("cursor mismatch: %+v", cur)
	}
}

func TestCursorFileRejectsOtherChain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cursor.json")

	if err := NewCursorFile(path, true, 56).Save(99); err != nil {
		t.Fatalf("save cursor: %v", err)
	}

	if _, _, err := NewCursorFile(path, true, 43114).Load(); err == nil {
		t.Fatalf("expected error for chain mismatch")
	}
}

func TestCursorFileDisabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cursor.json")
	file := NewCursorFile(path, false, 43114)

	if err := file.Save(7); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, ok, err := file.Load(); err != nil || ok {
		t.Fatalf("disabled cursor must stay empty: ok=%v err=%v", ok, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("disabled cursor wrote a file")
	}
}
