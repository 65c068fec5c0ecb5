package db

import (
	"fmt"

	"github.com/smhanov/audiodb/wire"
)

// QueryOptions configures all three ranking engines (point, segment,
// sequence). Not every field applies to every engine: SequenceLength and
// SequenceHop only matter to QuerySequence, and KeyList only restricts
// segment-granular engines (segment, sequence).
type QueryOptions struct {
	// QueryFile names a feature file (spec.md §6) holding one or more
	// query vectors.
	QueryFile string
	// TimesPath, if set, supplies one timestamp per query vector,
	// enabling the duration gate against a timestamped database.
	TimesPath string
	// KeyList, if set, restricts a segment-granular query to the keys
	// named one per line in this list file, resolved via keyPos's
	// prefix scan; empty means every key in insertion order.
	KeyList string

	QPoint     int
	Exhaustive bool

	PointNN int
	SegNN   int

	SequenceLength int
	SequenceHop    int
}

// Result is one ranked match, in the reference implementation's
// "key distance qpos spos" result-line order.
type Result struct {
	Key      string
	Distance float64
	QPos     int
	SPos     int
}

func (o QueryOptions) withDefaults() QueryOptions {
	if o.PointNN == 0 {
		o.PointNN = 10
	}
	if o.SegNN == 0 {
		o.SegNN = 10
	}
	if o.SequenceLength == 0 {
		o.SequenceLength = 16
	}
	if o.SequenceHop == 0 {
		o.SequenceHop = 1
	}
	return o
}

func (o QueryOptions) validate(numQueryVectors int) error {
	if o.QPoint < 0 || o.QPoint > 10000 {
		return ErrOutOfRange
	}
	if !o.Exhaustive && o.QPoint >= numQueryVectors {
		return ErrOutOfRange
	}
	if o.PointNN < 1 || o.PointNN > 1000 {
		return ErrOutOfRange
	}
	if o.SegNN < 1 || o.SegNN > 1000 {
		return ErrOutOfRange
	}
	if o.SequenceLength < 1 || o.SequenceLength > 1000 {
		return ErrOutOfRange
	}
	if o.SequenceHop < 1 || o.SequenceHop > 1000 {
		return ErrOutOfRange
	}
	return nil
}

// queryVectors holds the decoded, possibly query-normalized feature set
// for one query invocation, plus its optional per-vector timestamps.
type queryVectors struct {
	dim   uint32
	n     int
	data  []float64 // n*dim doubles
	times []float64 // len n, nil if the query carries no timestamps
	norms []float64 // len n, pre-normalization magnitudes; nil unless L2_NORMED
}

func (qv *queryVectors) vector(i int) []float64 {
	return qv.data[i*int(qv.dim) : (i+1)*int(qv.dim)]
}

// loadQueryVectors opens and decodes opts.QueryFile, applying the §4.6
// "optional query normalization" step when the database is L2_NORMED so
// that inner products against the (already unit) payload equal cosine
// similarity.
func (db *DB) loadQueryVectors(opts QueryOptions) (*queryVectors, error) {
	ff, err := wire.OpenFeatureFile(opts.QueryFile)
	if err != nil {
		return nil, fmt.Errorf("audiodb: open query file: %v", err)
	}
	defer ff.Close()

	if ff.Dim() != db.header.Dim {
		return nil, ErrDimensionMismatch
	}

	n := ff.NumVectors(ff.Dim())
	data := bytesToFloat64(ff.Payload()[:8*n*int(ff.Dim())])

	qv := &queryVectors{dim: ff.Dim(), n: n, data: data}

	if db.IsL2Normed() {
		qv.norms = make([]float64, qv.n)
		unitNormBlock(qv.data, int(qv.dim), qv.n, qv.norms)
	}

	if opts.TimesPath != "" {
		times, err := readTimesFile(opts.TimesPath, n)
		if err != nil {
			return nil, err
		}
		qv.times = times
	} else if db.IsTimestamped() {
		return nil, ErrTimesRequired
	}

	return qv, nil
}

// allVectorDurations returns a slice of length total-1 holding the
// inter-timestamp duration following each of the first total-1 database
// vectors, read straight from the timestamp table. The last vector in
// the whole payload has no following duration and is never gated.
func (db *DB) allVectorDurations(total uint64) []float64 {
	if total < 2 {
		return nil
	}
	times := make([]float64, total)
	for i := uint64(0); i < total; i++ {
		times[i] = db.region.ReadFloat64(db.offsets.timestampOffset(i))
	}
	return vectorDurations(times)
}

// shingleNorms turns a per-vector norm stream into a per-shingle summed
// norm stream using the sliding recurrence from spec.md §4.9: out[0] is
// the sum of the first w norms, and out[i] = out[i-1] - norms[i-1] +
// norms[i+w-1] thereafter. Returns nil if there are fewer than w norms.
func shingleNorms(norms []float64, w int) []float64 {
	if len(norms) < w {
		return nil
	}
	out := make([]float64, len(norms)-w+1)
	var s float64
	for i := 0; i < w; i++ {
		s += norms[i]
	}
	out[0] = s
	for i := 1; i < len(out); i++ {
		s = s - norms[i-1] + norms[i+w-1]
		out[i] = s
	}
	return out
}

// segmentDurations returns the inter-timestamp durations within one
// segment's own vectors, read from the timestamp table.
func (db *DB) segmentDurations(start, count uint64) []float64 {
	if count < 2 {
		return nil
	}
	times := make([]float64, count)
	for i := uint64(0); i < count; i++ {
		times[i] = db.region.ReadFloat64(db.offsets.timestampOffset(start + i))
	}
	return vectorDurations(times)
}

// segmentSelection resolves which key-table slots a segment-granular
// query scans: every slot in insertion order, or only those named (one
// per line) in keyList, resolved via keyPos's linear prefix scan. Names
// that don't resolve to any key are silently skipped, matching the
// reference implementation's tolerance of a stale segment-list entry.
func (db *DB) segmentSelection(keyList string) ([]uint32, error) {
	if keyList == "" {
		slots := make([]uint32, db.header.NumFiles)
		for i := range slots {
			slots[i] = uint32(i)
		}
		return slots, nil
	}
	names, err := wire.ReadLines(keyList)
	if err != nil {
		return nil, err
	}
	slots := make([]uint32, 0, len(names))
	for _, name := range names {
		pos, ok := db.keyPos(name)
		if !ok {
			continue
		}
		slots = append(slots, pos)
	}
	return slots, nil
}
