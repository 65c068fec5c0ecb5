package wire

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFeatureFile(t *testing.T, dim uint32, vectors [][]float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "a.feat")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	var dimBuf [4]byte
	binary.LittleEndian.PutUint32(dimBuf[:], dim)
	f.Write(dimBuf[:])
	for _, v := range vectors {
		for _, x := range v {
			var buf [8]byte
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(x))
			f.Write(buf[:])
		}
	}
	return path
}

func TestOpenFeatureFile(t *testing.T) {
	path := writeFeatureFile(t, 2, [][]float64{{1, 2}, {3, 4}})

	ff, err := OpenFeatureFile(path)
	if err != nil {
		t.Fatalf("OpenFeatureFile: %v", err)
	}
	defer ff.Close()

	if ff.Dim() != 2 {
		t.Errorf("Dim() = %d, want 2", ff.Dim())
	}
	if n := ff.NumVectors(2); n != 2 {
		t.Errorf("NumVectors(2) = %d, want 2", n)
	}
	if len(ff.Payload()) != 2*2*8 {
		t.Errorf("len(Payload()) = %d, want %d", len(ff.Payload()), 2*2*8)
	}
}

func TestOpenFeatureFileTruncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.feat")
	if err := os.WriteFile(path, []byte{1, 2}, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := OpenFeatureFile(path); err != ErrTruncated {
		t.Errorf("OpenFeatureFile(short file) = %v, want ErrTruncated", err)
	}
}

func TestReadTimesTolerance(t *testing.T) {
	dst := make([]float64, 2)
	consumed, total, err := ReadTimes(strings.NewReader("1 2 3 4"), dst)
	if err != nil {
		t.Fatalf("ReadTimes: %v", err)
	}
	if consumed != 2 {
		t.Errorf("consumed = %d, want 2", consumed)
	}
	if total != 4 {
		t.Errorf("total = %d, want 4", total)
	}
	if dst[0] != 1 || dst[1] != 2 {
		t.Errorf("dst = %v, want [1 2]", dst)
	}
}

func TestReadTimesRejectsGarbage(t *testing.T) {
	dst := make([]float64, 1)
	if _, _, err := ReadTimes(strings.NewReader("not-a-number"), dst); err == nil {
		t.Error("expected an error parsing a non-numeric token")
	}
}
