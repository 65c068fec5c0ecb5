package db

// L2Norm performs the one-shot retrofit described in spec.md §4.5: every
// existing vector in the payload is unit-normalized in place, its
// pre-normalization magnitude is recorded in the norm table, and the
// L2_NORMED flag is set so that every future Insert normalizes on the
// way in instead. Calling it twice is an error: there is no way to
// recover the original magnitudes of an already-normalized payload.
//
// progress, if non-nil, is called after each chunk with the number of
// vectors normalized so far and the total to be normalized; a caller not
// interested in progress reporting may pass nil.
func (db *DB) L2Norm(progress func(done, total uint64)) error {
	if db.IsL2Normed() {
		return ErrAlreadyL2Normed
	}

	dim := db.header.Dim
	total := db.TotalVectors()

	if dim != 0 && total > 0 {
		const chunk = 4096
		vec := make([]float64, 0, chunk*int(dim))
		norms := make([]float64, chunk)

		var done uint64
		for done < total {
			n := total - done
			if n > chunk {
				n = chunk
			}
			vec = vec[:int(n)*int(dim)]
			db.region.ReadFloat64s(db.offsets.vectorOffset(done, dim), vec)
			unitNormBlock(vec, int(dim), int(n), norms[:n])
			db.region.WriteFloat64s(db.offsets.vectorOffset(done, dim), vec)
			for i := uint64(0); i < n; i++ {
				db.region.WriteFloat64(db.offsets.normOffset(done+i), norms[i])
			}
			done += n
			if progress != nil {
				progress(done, total)
			}
		}
	}

	db.header.Flags |= flagL2Normed
	db.writeHeader()
	return nil
}
