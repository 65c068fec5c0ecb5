package db

import (
	"fmt"
	"os"

	"github.com/smhanov/audiodb/wire"
)

// InsertOptions controls a single-file insert, mirroring the reference
// implementation's -f/-t/-k flags.
type InsertOptions struct {
	// Key names the inserted segment. If empty, the feature file's path
	// is used, matching the reference implementation's fallback.
	Key string
	// TimesPath, if non-empty, names an ASCII file of one timestamp per
	// inserted vector. Required once the database is timestamped.
	TimesPath string
}

// Insert adds the vectors in a feature file as one new segment. The first
// insert into an empty database fixes Dim for the life of the file; every
// later insert must match it exactly. A key that prefix-matches an
// existing one (see keyPos) is a no-op: it is skipped with a warning
// instead of appending a duplicate segment, matching the reference
// implementation's alreadyInserted check.
func (db *DB) Insert(featurePath string, opts InsertOptions) error {
	ff, err := wire.OpenFeatureFile(featurePath)
	if err != nil {
		return fmt.Errorf("audiodb: open feature file: %v", err)
	}
	defer ff.Close()

	key := opts.Key
	if key == "" {
		key = featurePath
	}

	dim := db.header.Dim
	if dim == 0 && db.header.Length == 0 {
		dim = ff.Dim()
	} else if ff.Dim() != dim {
		return ErrDimensionMismatch
	}

	n := ff.NumVectors(dim)
	if n == 0 {
		db.logf(1, "warning: %s contributes zero vectors, skipping", featurePath)
		return nil
	}

	if db.header.NumFiles >= MaxFiles {
		return ErrFull
	}
	if db.offsets.dataBase+int64(db.header.Length)+int64(n)*int64(dim)*8 >= db.offsets.timestampBase {
		return ErrFull
	}

	if _, ok := db.keyPos(key); ok {
		db.logf(1, "warning: key %q already present, skipping insert", key)
		return nil
	}

	var times []float64
	switch {
	case db.IsTimestamped():
		if opts.TimesPath == "" {
			return ErrTimesRequired
		}
		times, err = readTimesFile(opts.TimesPath, n)
		if err != nil {
			return err
		}
	case opts.TimesPath != "" && db.header.NumFiles == 0:
		// First times-bearing insert into an empty database: adopt
		// timestamps for the life of the file (audioDB.cpp:604-606).
		times, err = readTimesFile(opts.TimesPath, n)
		if err != nil {
			return err
		}
		db.header.Flags |= flagTimes
	case opts.TimesPath != "":
		db.logf(1, "warning: ignoring times file for non-timestamped database")
	}

	payload := ff.Payload()
	vec := bytesToFloat64(payload[:8*n*int(dim)])

	startVector := db.header.Length / (8 * uint64(dim))

	if db.IsL2Normed() {
		norms := make([]float64, n)
		unitNormBlock(vec, int(dim), n, norms)
		for i := 0; i < n; i++ {
			db.region.WriteFloat64(db.offsets.normOffset(startVector+uint64(i)), norms[i])
		}
	}

	db.region.WriteFloat64s(db.offsets.vectorOffset(startVector, dim), vec)

	if times != nil {
		for i := 0; i < n; i++ {
			db.region.WriteFloat64(db.offsets.timestampOffset(startVector+uint64(i)), times[i])
		}
	}

	slot := db.header.NumFiles
	db.writeKey(slot, key)
	db.writeSegCount(slot, uint32(n))

	db.header.Dim = dim
	db.header.NumFiles++
	db.header.Length += uint64(n) * uint64(dim) * 8
	db.writeHeader()

	return nil
}

func readTimesFile(path string, want int) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrTimesFileMissing
	}
	defer f.Close()

	dst := make([]float64, want)
	consumed, total, err := wire.ReadTimes(f, dst)
	if err != nil {
		return nil, fmt.Errorf("audiodb: parse times file: %v", err)
	}
	// The reference implementation tolerates a times file with up to two
	// more entries than vectors (an off-by-one never made precise there
	// either); anything short, or longer than that, is rejected.
	if consumed < want || total > want+2 {
		return nil, ErrTimesCountMismatch
	}
	return dst, nil
}
