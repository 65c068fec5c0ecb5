package db

import (
	"path/filepath"
	"testing"
)

func TestCreateOpenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.adb")

	h, err := Create(path, testDBSize)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if h.NumFiles() != 0 || h.Dim() != 0 || h.TotalVectors() != 0 {
		t.Fatalf("fresh database not empty: numFiles=%d dim=%d total=%d", h.NumFiles(), h.Dim(), h.TotalVectors())
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	h2, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer h2.Close()
	if h2.NumFiles() != 0 {
		t.Errorf("reopened NumFiles() = %d, want 0", h2.NumFiles())
	}
}

func TestOpenRejectsCorruptHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "garbage.adb")

	h, err := Create(path, testDBSize)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	h.region.WriteUint32(0, 0xdeadbeef)
	h.Close()

	if _, err := Open(path); err != ErrCorruptHeader {
		t.Errorf("Open with bad magic = %v, want ErrCorruptHeader", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	h, _ := newTestDB(t)
	if err := h.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
