package cart

import "math"

// MaxQuantity is the largest quantity a single line can hold.
const MaxQuantity = 99

// Clamp bounds q to [0, MaxQuantity]. Zero means "no line".
func Clamp(q int) int {
	return max(0, min(MaxQuantity, q))
}

// ClampFloat floors q and bounds it like Clamp. NaN counts as zero.
func ClampFloat(q float64) int {
	if math.IsNaN(q) {
		return 0
	}
	f := math.Floor(q)
	if f <= 0 {
		return 0
	}
	if f >= MaxQuantity {
		return MaxQuantity
	}
	return int(f)
}
