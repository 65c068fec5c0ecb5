package db

import "bytes"

// keyAt returns the raw, NUL-padded KeySlotSize bytes for key-table slot i.
func (db *DB) keyAt(i uint32) []byte {
	return db.region.CopyInto(db.offsets.keyOffset(i), KeySlotSize)
}

// keyString returns slot i's key, trimmed at the first NUL byte.
func (db *DB) keyString(i uint32) string {
	raw := db.keyAt(i)
	if n := bytes.IndexByte(raw, 0); n >= 0 {
		raw = raw[:n]
	}
	return string(raw)
}

// keyPos returns the ordinal position of key in the key table, using the
// same prefix comparison as the reference implementation: a stored slot
// matches if its first len(key) bytes equal key, so "abc" matches a stored
// "abcd". This is a known compatibility hazard (spec.md §9) preserved
// deliberately, not a bug introduced here.
func (db *DB) keyPos(key string) (uint32, bool) {
	kb := []byte(key)
	for i := uint32(0); i < db.header.NumFiles; i++ {
		slot := db.keyAt(i)
		if len(kb) <= len(slot) && bytes.Equal(slot[:len(kb)], kb) {
			return i, true
		}
	}
	return 0, false
}

// writeKey writes key into key-table slot i, NUL-padded to KeySlotSize.
func (db *DB) writeKey(i uint32, key string) {
	buf := make([]byte, KeySlotSize)
	copy(buf, key)
	db.region.CopyFrom(db.offsets.keyOffset(i), buf)
}

// segCount returns the number of vectors stored under key-table slot i.
func (db *DB) segCount(i uint32) uint32 {
	return db.region.ReadUint32(db.offsets.segOffset(i))
}

func (db *DB) writeSegCount(i uint32, n uint32) {
	db.region.WriteUint32(db.offsets.segOffset(i), n)
}

// segOffsetTable returns the prefix-sum of segCount(i) for i in
// [0, NumFiles): segOffsetTable[s] is the global vector index of segment
// s's first vector, and segOffsetTable[s]+segCount(s) is one past its
// last. Built once per query, as in the reference implementation's
// segOffsetTable.
func (db *DB) segOffsetTable() []uint64 {
	n := db.header.NumFiles
	table := make([]uint64, n)
	var cum uint64
	for i := uint32(0); i < n; i++ {
		table[i] = cum
		cum += uint64(db.segCount(i))
	}
	return table
}

// resolveVector maps a global vector index back to its owning key and the
// vector's position within that key, via the same segOffsetTable a query
// builds once up front. segTable must be sorted ascending (it always is:
// insertion order).
func resolveVector(db *DB, segTable []uint64, v uint64) (key string, spos int) {
	lo, hi := 0, len(segTable)-1
	i := 0
	for lo <= hi {
		mid := (lo + hi) / 2
		if segTable[mid] <= v {
			i = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return db.keyString(uint32(i)), int(v - segTable[i])
}

// DumpEntry is one row of a Dump listing: a key and its vector count.
type DumpEntry struct {
	Key        string
	NumVectors uint32
}

// Dump lists every key in the database with its vector count, in insertion
// order.
func (db *DB) Dump() []DumpEntry {
	entries := make([]DumpEntry, db.header.NumFiles)
	for i := uint32(0); i < db.header.NumFiles; i++ {
		entries[i] = DumpEntry{Key: db.keyString(i), NumVectors: db.segCount(i)}
	}
	return entries
}
