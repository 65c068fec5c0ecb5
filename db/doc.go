/*
Package db implements a feature-vector database engine for
content-based similarity retrieval over collections of fixed-dimensional
numeric vector sequences.

A client inserts named sequences of D-dimensional vectors ("keys"), with
optional per-vector timestamps, into a single memory-mapped file laid out
as a header followed by five fixed-offset tables: a key table, a segment
(per-key vector count) table, a growable vector payload, and matching
timestamp and L2-norm tables. Later, similarity queries scan the payload
exhaustively and return ranked matches — there is no secondary index, no
approximate search structure, and no compaction: acceleration comes from
tight inner loops and a flat memory layout, not from indexing.

Three query engines are provided: Point (k-nearest by inner product over
every vector), Segment (point results aggregated per key), and Sequence
(a matched-filter correlation over sliding shingles, gated by a silence
threshold, requiring the database to be L2-normalized first).

The database file format, invariants, and every operation's contract are
fixed by the on-disk layout in this package; see Create, Open, and the
methods on DB.
*/
package db
