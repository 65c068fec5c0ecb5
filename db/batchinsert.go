package db

import "github.com/smhanov/audiodb/wire"

// BatchInsertOptions names the three parallel list files driving a batch
// insert: one feature-file path per line, with optional matching key and
// times-file lists. KeyList and TimesList may be empty; when KeyList is
// empty each segment is keyed by its feature-file path, exactly as a
// single Insert call with no explicit key.
type BatchInsertOptions struct {
	FeatureList string
	KeyList     string
	TimesList   string

	// Progress, if non-nil, is called after each file is inserted with
	// the number done and the batch total.
	Progress func(done, total int)
}

// BatchInsert inserts every feature file named in opts.FeatureList, in
// order, stopping at the first error. A partially completed batch leaves
// the database holding whatever segments were already committed: the
// reference implementation offers no transactional rollback across a
// batch, and neither does this port.
func (db *DB) BatchInsert(opts BatchInsertOptions) error {
	features, err := wire.ReadLines(opts.FeatureList)
	if err != nil {
		return err
	}

	var keys, times []string
	if opts.KeyList != "" {
		keys, err = wire.ReadLines(opts.KeyList)
		if err != nil {
			return err
		}
	}
	if opts.TimesList != "" {
		times, err = wire.ReadLines(opts.TimesList)
		if err != nil {
			return err
		}
	}

	for i, feature := range features {
		var iopts InsertOptions
		if i < len(keys) {
			iopts.Key = keys[i]
		}
		if i < len(times) {
			iopts.TimesPath = times[i]
		}
		if err := db.Insert(feature, iopts); err != nil {
			return err
		}
		if opts.Progress != nil {
			opts.Progress(i+1, len(features))
		}
	}
	return nil
}
