package db

import "github.com/smhanov/audiodb/internal/topk"

type pointMatch struct {
	qIndex int
	vIndex uint64
}

// QueryPoint implements the exhaustive point-query engine, spec.md §4.7:
// every query vector (or only opts.QPoint, unless opts.Exhaustive) is
// scored by inner product against every vector in the database, and the
// top PointNN matches overall are reported.
func (db *DB) QueryPoint(opts QueryOptions) ([]Result, error) {
	opts = opts.withDefaults()

	qv, err := db.loadQueryVectors(opts)
	if err != nil {
		return nil, err
	}
	if err := opts.validate(qv.n); err != nil {
		return nil, err
	}

	total := db.TotalVectors()
	dim := db.header.Dim

	usingTimes := qv.times != nil && db.IsTimestamped()
	var dbDur, qDur []float64
	if usingTimes {
		dbDur = db.allVectorDurations(total)
		qDur = vectorDurations(qv.times)
	}

	list := topk.New[pointMatch](opts.PointNN)
	vec := make([]float64, dim)

	scan := func(qIndex int) {
		q := qv.vector(qIndex)
		gated := usingTimes && qIndex < len(qDur)
		for v := uint64(0); v < total; v++ {
			if gated {
				if int(v) >= len(dbDur) || !durationGate(true, dbDur[v], qDur[qIndex]) {
					continue
				}
			}
			db.region.ReadFloat64s(db.offsets.vectorOffset(v, dim), vec)
			score := innerProduct(q, vec)
			list.TryInsert(score, pointMatch{qIndex: qIndex, vIndex: v})
		}
	}

	if opts.Exhaustive {
		for i := 0; i < qv.n; i++ {
			scan(i)
		}
	} else {
		scan(opts.QPoint)
	}

	return db.pointResults(list), nil
}

// pointResults drains a topk.List[pointMatch] into result rows, resolving
// each winning global vector index back to its owning key.
func (db *DB) pointResults(list *topk.List[pointMatch]) []Result {
	segTable := db.segOffsetTable()
	results := make([]Result, 0, list.Filled())
	for i := 0; i < list.Filled(); i++ {
		m := list.Item(i)
		key, spos := resolveVector(db, segTable, m.vIndex)
		results = append(results, Result{
			Key:      key,
			Distance: list.Score(i),
			QPos:     m.qIndex,
			SPos:     spos,
		})
	}
	return results
}
