package db

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBatchInsertReportsProgress(t *testing.T) {
	h, dir := newTestDB(t)

	p1 := writeFeatureFile(t, dir, "a.feat", 2, [][]float64{{0, 1}})
	p2 := writeFeatureFile(t, dir, "b.feat", 2, [][]float64{{1, 0}})

	listPath := filepath.Join(dir, "features.list")
	if err := os.WriteFile(listPath, []byte(p1+"\n"+p2+"\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var calls [][2]int
	err := h.BatchInsert(BatchInsertOptions{
		FeatureList: listPath,
		Progress: func(done, total int) {
			calls = append(calls, [2]int{done, total})
		},
	})
	if err != nil {
		t.Fatalf("BatchInsert: %v", err)
	}

	if len(calls) != 2 {
		t.Fatalf("progress called %d times, want 2", len(calls))
	}
	if calls[0] != [2]int{1, 2} || calls[1] != [2]int{2, 2} {
		t.Errorf("progress calls = %v, want [[1 2] [2 2]]", calls)
	}
	if h.NumFiles() != 2 {
		t.Errorf("NumFiles() = %d, want 2", h.NumFiles())
	}
}

func TestBatchInsertKeyListNamesSegments(t *testing.T) {
	h, dir := newTestDB(t)

	p1 := writeFeatureFile(t, dir, "a.feat", 2, [][]float64{{0, 1}})
	featureList := filepath.Join(dir, "features.list")
	keyList := filepath.Join(dir, "keys.list")
	os.WriteFile(featureList, []byte(p1+"\n"), 0644)
	os.WriteFile(keyList, []byte("mykey\n"), 0644)

	if err := h.BatchInsert(BatchInsertOptions{FeatureList: featureList, KeyList: keyList}); err != nil {
		t.Fatalf("BatchInsert: %v", err)
	}

	entries := h.Dump()
	if len(entries) != 1 || entries[0].Key != "mykey" {
		t.Fatalf("Dump() = %+v, want one entry keyed mykey", entries)
	}
}
