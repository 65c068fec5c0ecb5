package db

import "math"

// timesTol is the fractional tolerance applied by the duration gate,
// spec.md §4.6.
const timesTol = 0.1

// durationGate reports whether a candidate duration dbDur is close enough
// to the query duration qDur to be admitted, per spec.md's "Duration
// gate": |durationDB - durationQ| < durationQ * TIMES_TOL. When either
// side has no timestamps the gate is a no-op (always admits).
func durationGate(usingTimes bool, dbDur, qDur float64) bool {
	if !usingTimes {
		return true
	}
	return math.Abs(dbDur-qDur) < qDur*timesTol
}

// vectorDurations converts a sorted slice of n timestamps into n-1
// inter-vector durations, matching the reference implementation's
// insertTimeStamps-derived diffs.
func vectorDurations(times []float64) []float64 {
	if len(times) < 2 {
		return nil
	}
	durs := make([]float64, len(times)-1)
	for i := range durs {
		durs[i] = times[i+1] - times[i]
	}
	return durs
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
