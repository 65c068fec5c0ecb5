package db

import "errors"

// Error kinds from spec.md §7. Duplicate-key inserts and zero-length
// feature files are not in this list: they are warnings (surfaced via the
// optional Logger), not errors, and leave state unchanged.
var (
	ErrCannotOpen         = errors.New("audiodb: cannot open database file")
	ErrCorruptHeader      = errors.New("audiodb: corrupt or unrecognized header")
	ErrDimensionMismatch  = errors.New("audiodb: feature dimension does not match database dimension")
	ErrFull               = errors.New("audiodb: database is full")
	ErrTimesRequired      = errors.New("audiodb: database is timestamped, insert must supply timestamps")
	ErrTimesFileMissing   = errors.New("audiodb: times file could not be opened")
	ErrTimesCountMismatch = errors.New("audiodb: times file length does not match vector count")
	ErrNotL2Normed        = errors.New("audiodb: database must be L2-normalized for sequence query")
	ErrAlreadyL2Normed    = errors.New("audiodb: database is already L2-normalized")
	ErrKeyNotFound        = errors.New("audiodb: key not found")
	ErrOutOfRange         = errors.New("audiodb: value out of documented range")
	ErrUnknownQueryType   = errors.New("audiodb: unknown query type")
)
