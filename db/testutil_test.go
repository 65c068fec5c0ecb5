package db

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

const testDBSize = 200_000_000

func writeFeatureFile(t *testing.T, dir, name string, dim int, vectors [][]float64) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create feature file: %v", err)
	}
	defer f.Close()

	var dimBuf [4]byte
	binary.LittleEndian.PutUint32(dimBuf[:], uint32(dim))
	if _, err := f.Write(dimBuf[:]); err != nil {
		t.Fatalf("write dim: %v", err)
	}
	for _, v := range vectors {
		for _, x := range v {
			var buf [8]byte
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(x))
			if _, err := f.Write(buf[:]); err != nil {
				t.Fatalf("write vector: %v", err)
			}
		}
	}
	return path
}

func newTestDB(t *testing.T) (*DB, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "testdb.adb")
	h, err := Create(path, testDBSize)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h, dir
}
