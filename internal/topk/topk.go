// Package topk implements the fixed-capacity descending top-K insertion
// used by all three ranking query engines. The reference implementation
// open-codes this shift-insert array four times (point, segment-point,
// segment-sequence, and the segment-level aggregation pass); this package
// unifies it into one generic utility, per spec.md's design note.
package topk

// List holds the K best-scoring items seen so far, sorted by Score
// descending. Its zero value is not usable; call New.
type List[T any] struct {
	scores  []float64
	items   []T
	filled  int
}

// New creates a List with capacity k and every slot initialized to score
// zero, matching the reference implementation's `distances[k]=0.0` seed:
// a candidate only displaces a slot if its score is >= that slot's value,
// so scores a database can never produce (e.g. negative, for an
// unnormalized space) never enter the list.
func New[T any](k int) *List[T] {
	return &List[T]{
		scores: make([]float64, k),
		items:  make([]T, k),
	}
}

// Len returns the capacity K.
func (l *List[T]) Len() int { return len(l.scores) }

// Filled returns how many slots have ever been written by a successful
// TryInsert call.
func (l *List[T]) Filled() int { return l.filled }

// Score returns the score at rank i (0 = best).
func (l *List[T]) Score(i int) float64 { return l.scores[i] }

// Item returns the item at rank i (0 = best).
func (l *List[T]) Item(i int) T { return l.items[i] }

// TryInsert attempts to insert score/item into the list. It finds the
// largest rank n such that score >= scores[n] and (n == 0 or score <=
// scores[n-1]), then shifts entries at n..K-2 down by one position and
// writes score/item at n, discarding the previous entry at K-1. Scanning
// from the bottom of the array up means a new entry that ties an
// existing one is placed after it, so the earlier insertion is the one
// that survives a later eviction: ties resolve by preserving earlier
// insertions. Returns true if the item was inserted.
func (l *List[T]) TryInsert(score float64, item T) bool {
	n := len(l.scores)
	for n > 0 {
		n--
		if score >= l.scores[n] {
			if n == 0 || score <= l.scores[n-1] {
				if n == len(l.scores)-1 && score == l.scores[n] && l.filled == len(l.scores) {
					// A tie with the last kept entry of a full list leaves
					// that earlier entry in place.
					return false
				}
				for j := len(l.scores) - 1; j > n; j-- {
					l.scores[j] = l.scores[j-1]
					l.items[j] = l.items[j-1]
				}
				l.scores[n] = score
				l.items[n] = item
				if l.filled < len(l.scores) {
					l.filled++
				}
				return true
			}
		} else {
			break
		}
	}
	return false
}

// Mean returns the sum of all K scores (filled or not) divided by K, the
// aggregation the reference implementation uses to roll a segment's
// per-point scores into a single segment score. Unfilled slots
// contribute their seed value of zero to both sum and divisor.
func (l *List[T]) Mean() float64 {
	var sum float64
	for _, s := range l.scores {
		sum += s
	}
	return sum / float64(len(l.scores))
}
