package wire

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadLinesDropsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.txt")
	if err := os.WriteFile(path, []byte("a.feat\nb.feat\n\nc.feat\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	lines, err := ReadLines(path)
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	want := []string{"a.feat", "b.feat", "c.feat"}
	if len(lines) != len(want) {
		t.Fatalf("lines = %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("lines[%d] = %q, want %q", i, lines[i], want[i])
		}
	}
}
