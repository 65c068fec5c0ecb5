package db

import "testing"

// Round-trip: inserting a feature file then dumping must report that key
// with its computed numVectors; status must report totalVectors =
// length/(8*dim).
func TestInsertDumpStatusRoundTrip(t *testing.T) {
	h, dir := newTestDB(t)

	path := writeFeatureFile(t, dir, "a.feat", 2, [][]float64{{0, 1}, {1, 0}, {2, 2}})
	if err := h.Insert(path, InsertOptions{Key: "testfeature"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	entries := h.Dump()
	if len(entries) != 1 || entries[0].Key != "testfeature" || entries[0].NumVectors != 3 {
		t.Fatalf("Dump = %+v, want one entry testfeature/3", entries)
	}

	st := h.Status(16)
	if st.TotalVectors != 3 {
		t.Errorf("TotalVectors = %d, want 3", st.TotalVectors)
	}
	if st.NumFiles != 1 {
		t.Errorf("NumFiles = %d, want 1", st.NumFiles)
	}
	if st.ShortKeys != 1 {
		t.Errorf("ShortKeys = %d, want 1 (3 < sequenceLength 16)", st.ShortKeys)
	}
}

// Zero-vector feature file is a warning, not an error, and leaves state
// unchanged (spec.md §8 boundaries).
func TestInsertZeroVectorFileIsWarningNotError(t *testing.T) {
	h, dir := newTestDB(t)

	path := writeFeatureFile(t, dir, "empty.feat", 4, nil)
	if err := h.Insert(path, InsertOptions{Key: "k"}); err != nil {
		t.Fatalf("Insert of empty feature file returned an error: %v", err)
	}
	if h.NumFiles() != 0 {
		t.Errorf("NumFiles = %d, want 0 after a zero-vector insert", h.NumFiles())
	}
}

// Dimension mismatch against an already-fixed database dimension is an
// error.
func TestInsertDimensionMismatch(t *testing.T) {
	h, dir := newTestDB(t)

	path := writeFeatureFile(t, dir, "a.feat", 2, [][]float64{{0, 1}})
	if err := h.Insert(path, InsertOptions{Key: "a"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	path3 := writeFeatureFile(t, dir, "b.feat", 3, [][]float64{{0, 1, 2}})
	if err := h.Insert(path3, InsertOptions{Key: "b"}); err != ErrDimensionMismatch {
		t.Errorf("Insert with mismatched dim = %v, want ErrDimensionMismatch", err)
	}
}

// Scenario 6: a duplicate-key insert is a state-preserving no-op as
// observed through status (P5 idempotence): the reference implementation
// detects the prefix match and returns without appending a second
// segment, and this port does the same (keyPos check in Insert).
func TestDuplicateKeyInsertDoesNotError(t *testing.T) {
	h, dir := newTestDB(t)

	path := writeFeatureFile(t, dir, "a.feat", 2, [][]float64{{0, 1}, {1, 0}})
	if err := h.Insert(path, InsertOptions{Key: "testfeature"}); err != nil {
		t.Fatalf("first Insert: %v", err)
	}
	before := h.Status(16)

	if err := h.Insert(path, InsertOptions{Key: "testfeature"}); err != nil {
		t.Fatalf("duplicate-key Insert returned an error: %v", err)
	}
	after := h.Status(16)

	if after.TotalVectors != before.TotalVectors {
		t.Errorf("TotalVectors after duplicate insert = %d, want %d (no-op)", after.TotalVectors, before.TotalVectors)
	}
	if after.NumFiles != before.NumFiles {
		t.Errorf("NumFiles after duplicate insert = %d, want %d (no-op)", after.NumFiles, before.NumFiles)
	}
}

// L2-before-insert ordering (scenario 5): retrofitting an empty database
// still sets the flag, and subsequent inserts are normalized on the fly.
func TestL2NormBeforeInsertAutoNormalizesNewData(t *testing.T) {
	h, dir := newTestDB(t)

	if err := h.L2Norm(nil); err != nil {
		t.Fatalf("L2Norm on empty db: %v", err)
	}
	if !h.IsL2Normed() {
		t.Fatal("IsL2Normed() = false after retrofit on an empty database")
	}

	path := writeFeatureFile(t, dir, "a.feat", 2, [][]float64{{0, 0.5}, {0.5, 0}})
	if err := h.Insert(path, InsertOptions{Key: "testfeature"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	vec := make([]float64, 2)
	h.region.ReadFloat64s(h.offsets.vectorOffset(0, h.header.Dim), vec)
	if vec[0] != 0 || vec[1] != 1 {
		t.Errorf("first inserted vector = %v, want unit-normalized (0,1)", vec)
	}
	norm := h.region.ReadFloat64(h.offsets.normOffset(0))
	if norm != 0.5 {
		t.Errorf("recorded norm = %v, want 0.5", norm)
	}
}

func TestL2NormRejectsReentry(t *testing.T) {
	h, _ := newTestDB(t)
	if err := h.L2Norm(nil); err != nil {
		t.Fatalf("L2Norm: %v", err)
	}
	if err := h.L2Norm(nil); err != ErrAlreadyL2Normed {
		t.Errorf("second L2Norm = %v, want ErrAlreadyL2Normed", err)
	}
}

func TestQueryPointSmoke(t *testing.T) {
	h, dir := newTestDB(t)

	path := writeFeatureFile(t, dir, "a.feat", 2, [][]float64{{0, 1}, {1, 0}, {1, 1}})
	if err := h.Insert(path, InsertOptions{Key: "a"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	qpath := writeFeatureFile(t, dir, "q.feat", 2, [][]float64{{0, 1}})
	results, err := h.QueryPoint(QueryOptions{QueryFile: qpath, PointNN: 2}.withDefaults())
	if err != nil {
		t.Fatalf("QueryPoint: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("QueryPoint returned no results")
	}
	for i := 1; i < len(results); i++ {
		if results[i].Distance > results[i-1].Distance {
			t.Fatalf("results not descending-sorted: %+v", results)
		}
	}
	if results[0].Key != "a" {
		t.Errorf("top result key = %q, want %q", results[0].Key, "a")
	}
}

func TestQuerySegmentSmoke(t *testing.T) {
	h, dir := newTestDB(t)

	path := writeFeatureFile(t, dir, "a.feat", 2, [][]float64{{0, 1}, {1, 0}})
	if err := h.Insert(path, InsertOptions{Key: "a"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	qpath := writeFeatureFile(t, dir, "q.feat", 2, [][]float64{{0, 1}})
	results, err := h.QuerySegment(QueryOptions{QueryFile: qpath, PointNN: 2, SegNN: 5}.withDefaults())
	if err != nil {
		t.Fatalf("QuerySegment: %v", err)
	}
	if len(results) != 1 || results[0].Key != "a" {
		t.Fatalf("QuerySegment results = %+v, want one entry keyed a", results)
	}
}

func TestQuerySequenceRequiresL2Normed(t *testing.T) {
	h, dir := newTestDB(t)

	path := writeFeatureFile(t, dir, "a.feat", 2, [][]float64{{0, 1}, {1, 0}})
	if err := h.Insert(path, InsertOptions{Key: "a"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	qpath := writeFeatureFile(t, dir, "q.feat", 2, [][]float64{{0, 0.5}})
	_, err := h.QuerySequence(QueryOptions{QueryFile: qpath, SequenceLength: 1}.withDefaults())
	if err != ErrNotL2Normed {
		t.Errorf("QuerySequence on non-normalized db = %v, want ErrNotL2Normed", err)
	}
}

func TestQuerySequenceSmoke(t *testing.T) {
	h, dir := newTestDB(t)

	path := writeFeatureFile(t, dir, "a.feat", 2, [][]float64{{0, 1}, {1, 0}})
	if err := h.Insert(path, InsertOptions{Key: "testfeature"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := h.L2Norm(nil); err != nil {
		t.Fatalf("L2Norm: %v", err)
	}

	qpath := writeFeatureFile(t, dir, "q.feat", 2, [][]float64{{0, 0.5}})
	results, err := h.QuerySequence(QueryOptions{QueryFile: qpath, SequenceLength: 1}.withDefaults())
	if err != nil {
		t.Fatalf("QuerySequence: %v", err)
	}
	for _, res := range results {
		if res.Key != "testfeature" {
			t.Errorf("result key = %q, want %q", res.Key, "testfeature")
		}
		if res.Distance < -1-1e-9 || res.Distance > 1+1e-9 {
			t.Errorf("distance %v out of cosine-similarity range", res.Distance)
		}
	}
}
