package utils

///////////////////////////////////////////////////////////////////////////////
// Integer Formatting: No fmt on Cold Paths
///////////////////////////////////////////////////////////////////////////////

// Itoa formats a signed integer in base 10 without going through fmt.
//
//go:nosplit
//go:inline
func Itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	neg := n < 0
	u := uint64(n)
	if neg {
		u = uint64(-n)
	}
	for u > 0 {
		i--
		buf[i] = byte('0' + u%10)
		u /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

///////////////////////////////////////////////////////////////////////////////
// Hash & Mixers: For Seed Expansion
///////////////////////////////////////////////////////////////////////////////

// Mix64 applies a Murmur3-style avalanche to a 64-bit value.
// It is a bijection, so distinct inputs never collide and only 0 maps to 0.
//
//go:nosplit
//go:inline
func Mix64(x uint64) uint64 {
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	x *= 0xc4ceb9fe1a85ec53
	x ^= x >> 33
	return x
}

// Golden64 is the 64-bit golden-ratio increment used to space seed words.
const Golden64 = 0x9e3779b97f4a7c15

// SplitSeed expands one seed into n well-mixed words: Mix64(seed + (k+1)*Golden64)
// for k = 0..n-1. Because Mix64 is a bijection at most one word can be zero.
func SplitSeed(seed uint64, n int) []uint64 {
	out := make([]uint64, n)
	for k := range out {
		out[k] = Mix64(seed + uint64(k+1)*Golden64)
	}
	return out
}
