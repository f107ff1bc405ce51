// Package safeconv provides checked integer conversions used when sizes and
// depths cross the snapshot encoding.
package safeconv

// MaxInt is the maximum value for int type (platform-dependent).
const MaxInt = int(^uint(0) >> 1)

// MustIntToUint64 converts int to uint64, panics if negative.
// Use only when negative values are logically impossible.
func MustIntToUint64(v int) uint64 {
	if v < 0 {
		panic("safeconv: negative int to uint64 conversion")
	}

	return uint64(v)
}

// Uint64ToInt converts v to int and reports whether it fit. Decoded values
// are untrusted, so an overflow is an error rather than a panic.
func Uint64ToInt(v uint64) (int, bool) {
	if v > uint64(MaxInt) {
		return 0, false
	}

	return int(v), true
}
