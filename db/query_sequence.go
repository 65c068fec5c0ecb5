package db

import "github.com/smhanov/audiodb/internal/topk"

type seqMatch struct {
	qIndex int
	sIndex int
}

type seqSegMatch struct {
	segment uint32
	qIndex  int
	sIndex  int
}

// segShingles holds one segment's shingle-norm stream and its mean,
// precomputed once up front so the silence and difference thresholds can
// be derived from the global mean across every processed segment before
// any segment is actually matched.
type segShingles struct {
	slot     uint32
	start    uint64
	count    uint64
	norms    []float64
	shingles []float64
	mean     float64
}

// QuerySequence implements the matched-filter sequence-query engine,
// spec.md §4.9. The database must already be L2_NORMED: the matching
// score is a cosine similarity, and the silence/difference gates are
// defined in terms of unit-vector shingle norms.
func (db *DB) QuerySequence(opts QueryOptions) ([]Result, error) {
	opts = opts.withDefaults()

	if !db.IsL2Normed() {
		return nil, ErrNotL2Normed
	}

	qv, err := db.loadQueryVectors(opts)
	if err != nil {
		return nil, err
	}
	if err := opts.validate(qv.n); err != nil {
		return nil, err
	}

	w := opts.SequenceLength
	h := opts.SequenceHop

	qNorm := shingleNorms(qv.norms, w)
	if len(qNorm) == 0 {
		return nil, nil
	}
	qMeanL2 := meanOf(qNorm)

	slots, err := db.segmentSelection(opts.KeyList)
	if err != nil {
		return nil, err
	}

	dim := db.header.Dim
	segTable := db.segOffsetTable()

	segs := make([]segShingles, 0, len(slots))
	var globalSum float64
	var maxCount uint64

	for _, slot := range slots {
		start := segTable[slot]
		count := uint64(db.segCount(slot))
		if count <= uint64(w) {
			continue
		}
		norms := make([]float64, count)
		for i := uint64(0); i < count; i++ {
			norms[i] = db.region.ReadFloat64(db.offsets.normOffset(start + i))
		}
		shingles := shingleNorms(norms, w)
		if len(shingles) == 0 {
			continue
		}
		mean := meanOf(shingles)
		segs = append(segs, segShingles{
			slot: slot, start: start, count: count,
			norms: norms, shingles: shingles, mean: mean,
		})
		globalSum += mean
		if count > maxCount {
			maxCount = count
		}
	}

	if len(segs) == 0 {
		return nil, nil
	}

	globalMean := globalSum / float64(len(segs))
	silenceThresh := globalMean / 20
	diffThresh := globalMean / 2

	usingTimes := qv.times != nil && db.IsTimestamped()
	var qMeanDur float64
	if usingTimes {
		qMeanDur = meanOf(vectorDurations(qv.times))
	}

	numQ := qv.n
	qvecs := make([][]float64, numQ)
	for j := 0; j < numQ; j++ {
		qvecs[j] = qv.vector(j)
	}

	// D and DD are reused across every segment, sized for the largest
	// one processed, instead of allocated per segment (spec.md §9).
	vec := make([]float64, dim)
	D := make([]float64, numQ*int(maxCount))
	DD := make([]float64, len(qNorm)*int(maxCount))

	outer := topk.New[seqSegMatch](opts.SegNN)

	for _, seg := range segs {
		if usingTimes {
			durs := db.segmentDurations(seg.start, seg.count)
			if !durationGate(true, meanOf(durs), qMeanDur) {
				continue
			}
		}

		segLen := int(seg.count)

		d := D[:numQ*segLen]
		for j := 0; j < numQ; j++ {
			row := d[j*segLen : (j+1)*segLen]
			for k := 0; k < segLen; k++ {
				db.region.ReadFloat64s(db.offsets.vectorOffset(seg.start+uint64(k), dim), vec)
				row[k] = innerProduct(qvecs[j], vec)
			}
		}

		nQShingles := numQ - w + 1
		nSShingles := segLen - w + 1
		if nQShingles <= 0 || nSShingles <= 0 {
			continue
		}

		dd := DD[:nQShingles*nSShingles]
		for i := range dd {
			dd[i] = 0
		}
		for wi := 0; wi < w; wi++ {
			for j := 0; j < nQShingles; j++ {
				drow := d[(j+wi)*segLen:]
				ddrow := dd[j*nSShingles : (j+1)*nSShingles]
				for k := 0; k < nSShingles; k++ {
					ddrow[k] += drow[k+wi]
				}
			}
		}

		sNorm := seg.shingles

		inner := topk.New[seqMatch](opts.PointNN)
		for j := 0; j < nQShingles; j += h {
			qOK := qNorm[j] > silenceThresh && qNorm[j] > qMeanL2
			ddrow := dd[j*nSShingles : (j+1)*nSShingles]
			for k := 0; k < nSShingles; k += h {
				score := 0.0
				if qOK && sNorm[k] > silenceThresh && sNorm[k] > seg.mean {
					diff := qNorm[j] - sNorm[k]
					if diff < 0 {
						diff = -diff
					}
					if diff < diffThresh {
						score = ddrow[k] / float64(w)
					}
				}
				inner.TryInsert(score, seqMatch{qIndex: j, sIndex: k})
			}
		}

		if inner.Filled() == 0 {
			continue
		}
		best := inner.Item(0)
		segScore := inner.Mean()
		outer.TryInsert(segScore, seqSegMatch{segment: seg.slot, qIndex: best.qIndex, sIndex: best.sIndex})
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
