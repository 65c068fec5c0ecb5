package mmapfile

import "math"

func bitsToFloat(b uint64) float64 { return math.Float64frombits(b) }
func floatToBits(f float64) uint64 { return math.Float64bits(f) }
