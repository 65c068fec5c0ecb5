package db

// Status summarizes a database's occupancy and catalog health, spec.md
// §4.10.
type Status struct {
	NumFiles uint32
	Dim      uint32

	TotalVectors    uint64
	CapacityVectors uint64
	FreeVectors     uint64
	FreeBytes       uint64
	PercentFull     float64

	L2Normed    bool
	Timestamped bool

	// EmptyKeys counts keys with zero vectors; ShortKeys counts keys
	// with at least one vector but fewer than sequenceLength, the
	// shingle window a sequence query would need to match them at all.
	EmptyKeys int
	ShortKeys int
}

// Status reports the database's current state. sequenceLength is the
// shingle window used to classify "short" keys; pass the caller's
// intended sequence-query SequenceLength (or the default 16) even if no
// sequence query has run yet.
func (db *DB) Status(sequenceLength int) Status {
	dim := db.header.Dim

	var capacityVectors uint64
	if dim != 0 {
		capacityVectors = uint64(db.offsets.timestampBase-db.offsets.dataBase) / (8 * uint64(dim))
	}

	total := db.TotalVectors()
	var free uint64
	if capacityVectors > total {
		free = capacityVectors - total
	}

	var percentFull float64
	if capacityVectors > 0 {
		percentFull = 100 * float64(total) / float64(capacityVectors)
	}

	var emptyKeys, shortKeys int
	for i := uint32(0); i < db.header.NumFiles; i++ {
		n := db.segCount(i)
		switch {
		case n == 0:
			emptyKeys++
		case int(n) < sequenceLength:
			shortKeys++
		}
	}

	return Status{
		NumFiles:        db.header.NumFiles,
		Dim:             dim,
		TotalVectors:    total,
		CapacityVectors: capacityVectors,
		FreeVectors:     free,
		FreeBytes:       free * 8 * uint64(dim),
		PercentFull:     percentFull,
		L2Normed:        db.IsL2Normed(),
		Timestamped:     db.IsTimestamped(),
		EmptyKeys:       emptyKeys,
		ShortKeys:       shortKeys,
	}
}
