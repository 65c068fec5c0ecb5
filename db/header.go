package db

// On-disk layout constants. KeySlotSize and MaxFiles are compile-time
// constants exactly as in the reference implementation; DBSize is a
// parameter of Create (rather than a single global compile-time constant)
// so that small test databases don't have to allocate a production-sized
// file — once created, a database's size never changes, which is the
// property the invariants in spec.md actually depend on.
const (
	// Magic identifies a valid audioDB file.
	Magic uint32 = 0x41444232 // "ADB2"

	// KeySlotSize is the fixed width of one key-table slot, in bytes.
	KeySlotSize = 256

	// MaxFiles bounds the number of keys (segments) a database can hold.
	MaxFiles = 10000

	// MeanVectorsPerFile sizes the timestamp and norm tables: each holds
	// MaxFiles * MeanVectorsPerFile entries, one per stored vector. The
	// payload's capacity is set by DBSize instead: Insert checks the
	// payload against the timestamp table's base, not against this
	// entry count.
	MeanVectorsPerFile = 1000

	// HeaderSize is the fixed, padded size of the header region.
	HeaderSize = 64

	// DefaultDBSize is the file size used by the CLI when none is
	// specified. Tests use smaller sizes to keep fixtures cheap; the
	// file is sparse on disk either way (Create truncates, it does not
	// zero-fill), so the choice of DBSize only affects address space,
	// not disk usage.
	DefaultDBSize int64 = 1 << 31 // 2 GiB
)

// flag bits in Header.Flags.
const (
	flagL2Normed  uint32 = 1 << 0
	flagTimes     uint32 = 1 << 1
)

// Header mirrors the fixed first HeaderSize bytes of the database file.
type Header struct {
	Magic    uint32
	NumFiles uint32
	Dim      uint32
	Length   uint64
	Flags    uint32
}

// tableOffsets holds the five table base offsets, computed once at
// attach time from the file's total size and the compile-time constants
// above (spec.md §3's "derive table base pointers from compile-time
// offsets", generalized to a per-database DBSize).
type tableOffsets struct {
	dbSize        int64
	keyTableBase  int64
	segTableBase  int64
	dataBase      int64
	timestampBase int64
	normBase      int64
}

func computeOffsets(dbSize int64) tableOffsets {
	keyTableBase := int64(HeaderSize)
	segTableBase := keyTableBase + int64(MaxFiles)*KeySlotSize
	dataBase := segTableBase + int64(MaxFiles)*4
	normBase := dbSize - int64(MaxFiles)*MeanVectorsPerFile*8
	timestampBase := normBase - int64(MaxFiles)*MeanVectorsPerFile*8
	return tableOffsets{
		dbSize:        dbSize,
		keyTableBase:  keyTableBase,
		segTableBase:  segTableBase,
		dataBase:      dataBase,
		timestampBase: timestampBase,
		normBase:      normBase,
	}
}

func (t tableOffsets) keyOffset(i uint32) int64 {
	return t.keyTableBase + int64(i)*KeySlotSize
}

func (t tableOffsets) segOffset(i uint32) int64 {
	return t.segTableBase + int64(i)*4
}

func (t tableOffsets) vectorOffset(vectorIndex uint64, dim uint32) int64 {
	return t.dataBase + int64(vectorIndex)*int64(dim)*8
}

func (t tableOffsets) timestampOffset(vectorIndex uint64) int64 {
	return t.timestampBase + int64(vectorIndex)*8
}

func (t tableOffsets) normOffset(vectorIndex uint64) int64 {
	return t.normBase + int64(vectorIndex)*8
}
