// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: bitwise.go: 64-bit mask helpers for occupancy bitmaps
//
// Purpose:
//   - Leading/trailing zero counts and leftmost-bit position on uint64 masks.
//   - Single-bit set/clear/test used by dispatchq to maintain its occupancy mask.
//
// Notes:
//   - All counts compile down to single LZCNT/TZCNT (or BSR/BSF) instructions.
//   - Bit indices must be < 64. Callers validate; these helpers do not.
// ─────────────────────────────────────────────────────────────────────────────

package bitwise

import "math/bits"

// Width is the number of bits in a mask word.
const Width = 64

///////////////////////////////////////////////////////////////////////////////
// Zero Counts
///////////////////////////////////////////////////////////////////////////////

// CLZ returns the number of leading zero bits in x. CLZ(0) == 64.
//
//go:nosplit
//go:inline
func CLZ(x uint64) int {
	return bits.LeadingZeros64(x)
}

// CTZ returns the number of trailing zero bits in x. CTZ(0) == 64.
//
//go:nosplit
//go:inline
func CTZ(x uint64) int {
	return bits.TrailingZeros64(x)
}

// LeftmostBit returns the 1-based position of the highest set bit in x,
// i.e. 64 - CLZ(x). It reports false when x has no bits set.
//
//go:nosplit
//go:inline
func LeftmostBit(x uint64) (int, bool) {
	if x == 0 {
		return 0, false
	}
	return Width - bits.LeadingZeros64(x), true
}

// LowestSet returns the index of the least significant set bit in x.
// It reports false when x is zero.
//
//go:nosplit
//go:inline
func LowestSet(x uint64) (int, bool) {
	if x == 0 {
		return 0, false
	}
	return bits.TrailingZeros64(x), true
}

// IsPowerOfTwo reports whether x has exactly one bit set. Zero is not a power of two.
//
//go:nosplit
//go:inline
func IsPowerOfTwo(x uint64) bool {
	return x != 0 && x&(x-1) == 0
}

///////////////////////////////////////////////////////////////////////////////
// Single-Bit Mutation
///////////////////////////////////////////////////////////////////////////////

// SetBit turns on bit i of *mask.
//
//go:nosplit
//go:inline
func SetBit(mask *uint64, i uint) {
	*mask |= 1 << i
}

// ClearBit turns off bit i of *mask.
//
//go:nosplit
//go:inline
func ClearBit(mask *uint64, i uint) {
	*mask &^= 1 << i
}

// TestBit reports whether bit i of mask is set.
//
//go:nosplit
//go:inline
func TestBit(mask uint64, i uint) bool {
	return mask&(1<<i) != 0
}

// OnesCount returns the number of set bits in mask.
func OnesCount(mask uint64) int {
	return bits.OnesCount64(mask)
}
