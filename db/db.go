package db

import (
	"log"

	"github.com/smhanov/audiodb/db/mmapfile"
)

// DB is an owned handle onto one memory-mapped database file. It replaces
// the reference implementation's process-global mapped region and command
// object: every operation in this package is a method on a *DB that the
// caller opened and must Close, and no operation here ever terminates the
// process — callers (the CLI, the RPC server) decide how to react to a
// returned error.
type DB struct {
	region  *mmapfile.Region
	offsets tableOffsets

	header Header

	// Verbosity mirrors the reference implementation's -v flag: 0 is
	// silent; at 1 and above, Insert's warnings (zero-vector feature
	// file, duplicate key, ignored times file) are reported. The query
	// engines report no timing or scan progress. Logger receives those
	// messages; if nil, they are discarded.
	Verbosity int
	Logger    *log.Logger
}

func (db *DB) logf(level int, format string, args ...interface{}) {
	if db.Logger != nil && db.Verbosity >= level {
		db.Logger.Printf(format, args...)
	}
}

// Create allocates a new, empty database file of exactly dbSize bytes and
// initializes its header. No tables are touched; their contents are
// implicitly zero, matching the reference implementation's reliance on a
// freshly truncated file reading back as all-zero bytes.
func Create(path string, dbSize int64) (*DB, error) {
	region, err := mmapfile.CreateFixed(path, dbSize)
	if err != nil {
		return nil, ErrCannotOpen
	}

	db := &DB{
		region:  region,
		offsets: computeOffsets(dbSize),
		header:  Header{Magic: Magic},
	}
	db.writeHeader()
	return db, nil
}

// Open attaches to an existing database file, verifying its magic and
// deriving the table base offsets from the file's actual size.
func Open(path string) (*DB, error) {
	fi, err := statSize(path)
	if err != nil {
		return nil, ErrCannotOpen
	}

	region, err := mmapfile.Open(path, fi)
	if err != nil {
		return nil, ErrCannotOpen
	}

	db := &DB{
		region:  region,
		offsets: computeOffsets(fi),
	}
	db.readHeader()
	if db.header.Magic != Magic {
		region.Close()
		return nil, ErrCorruptHeader
	}
	return db, nil
}

// Close releases the memory mapping. Safe to call more than once.
func (db *DB) Close() error {
	if db.region == nil {
		return nil
	}
	err := db.region.Close()
	db.region = nil
	return err
}

func (db *DB) readHeader() {
	r := db.region
	db.header = Header{
		Magic:    r.ReadUint32(0),
		NumFiles: r.ReadUint32(4),
		Dim:      r.ReadUint32(8),
		Length:   r.ReadUint64(12),
		Flags:    r.ReadUint32(20),
	}
}

func (db *DB) writeHeader() {
	r := db.region
	h := db.header
	r.WriteUint32(0, h.Magic)
	r.WriteUint32(4, h.NumFiles)
	r.WriteUint32(8, h.Dim)
	r.WriteUint64(12, h.Length)
	r.WriteUint32(20, h.Flags)
}

// IsL2Normed reports whether the L2_NORMED flag is set.
func (db *DB) IsL2Normed() bool { return db.header.Flags&flagL2Normed != 0 }

// IsTimestamped reports whether the TIMESTAMPED flag is set.
func (db *DB) IsTimestamped() bool { return db.header.Flags&flagTimes != 0 }

// NumFiles returns the number of keys currently in the database.
func (db *DB) NumFiles() uint32 { return db.header.NumFiles }

// Dim returns the database's fixed vector dimension (0 if no insert has
// happened yet).
func (db *DB) Dim() uint32 { return db.header.Dim }

// TotalVectors returns length/(8*dim), or 0 if dim is still unset.
func (db *DB) TotalVectors() uint64 {
	if db.header.Dim == 0 {
		return 0
	}
	return db.header.Length / (8 * uint64(db.header.Dim))
}
