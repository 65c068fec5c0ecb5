package db

import "github.com/smhanov/audiodb/internal/topk"

type segMatch struct {
	segment uint32
	qIndex  int
	sIndex  int
}

// QuerySegment implements the segment point-query engine, spec.md §4.8:
// each selected segment is scanned on its own with the §4.7 kernel to
// produce a top-PointNN score list, which is then collapsed to its mean
// and ranked against every other segment's mean in a top-SegNN list.
func (db *DB) QuerySegment(opts QueryOptions) ([]Result, error) {
	opts = opts.withDefaults()

	qv, err := db.loadQueryVectors(opts)
	if err != nil {
		return nil, err
	}
	if err := opts.validate(qv.n); err != nil {
		return nil, err
	}

	slots, err := db.segmentSelection(opts.KeyList)
	if err != nil {
		return nil, err
	}

	dim := db.header.Dim
	segTable := db.segOffsetTable()

	usingTimes := qv.times != nil && db.IsTimestamped()
	var qMeanDur float64
	if usingTimes {
		qMeanDur = meanOf(vectorDurations(qv.times))
	}

	outer := topk.New[segMatch](opts.SegNN)
	vec := make([]float64, dim)

	for _, slot := range slots {
		start := segTable[slot]
		count := uint64(db.segCount(slot))
		if count == 0 {
			continue
		}

		if usingTimes {
			segDur := db.segmentDurations(start, count)
			if !durationGate(true, meanOf(segDur), qMeanDur) {
				continue
			}
		}

		inner := topk.New[pointMatch](opts.PointNN)

		scanQ := func(qIndex int) {
			q := qv.vector(qIndex)
			for k := uint64(0); k < count; k++ {
				v := start + k
				db.region.ReadFloat64s(db.offsets.vectorOffset(v, dim), vec)
				score := innerProduct(q, vec)
				inner.TryInsert(score, pointMatch{qIndex: qIndex, vIndex: v})
			}
		}

		if opts.Exhaustive {
			for i := 0; i < qv.n; i++ {
				scanQ(i)
			}
		} else {
			scanQ(opts.QPoint)
		}

		if inner.Filled() == 0 {
			continue
		}

		best := inner.Item(0)
		score := inner.Mean()
		outer.TryInsert(score, segMatch{
			segment: slot,
			qIndex:  best.qIndex,
			sIndex:  int(best.vIndex - start),
		})
	}

	results := make([]Result, 0, outer.Filled())
	for i := 0; i < outer.Filled(); i++ {
		m := outer.Item(i)
		results = append(results, Result{
			Key:      db.keyString(m.segment),
			Distance: outer.Score(i),
			QPos:     m.qIndex,
			SPos:     m.sIndex,
		})
	}
	return results, nil
}
