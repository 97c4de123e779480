// Package xorshift provides a small, explicitly seeded xorshift128 generator
// used to drive dispatch queue workloads in tests, benchmarks and the CLI.
//
// Every Generator owns its state; there is no package-level generator. Two
// generators built from the same seed produce identical sequences.
package xorshift

import "pdq/utils"

// Generator is a xorshift128 pseudo-random source over 64-bit words.
// It is not safe for concurrent use.
type Generator struct {
	x, y, z, w uint64
}

// New returns a generator whose four state words are derived from seed.
func New(seed uint64) *Generator {
	s := utils.SplitSeed(seed, 4)
	return &Generator{x: s[0], y: s[1], z: s[2], w: s[3]}
}

// NewFromState returns a generator with the exact given state.
// An all-zero state would only ever yield zeros, so it is replaced by New(0).
func NewFromState(x, y, z, w uint64) *Generator {
	if x|y|z|w == 0 {
		return New(0)
	}
	return &Generator{x: x, y: y, z: z, w: w}
}

// State returns the current state words for later replay with NewFromState.
func (g *Generator) State() (x, y, z, w uint64) {
	return g.x, g.y, g.z, g.w
}

// Next advances the generator and returns the next word.
//
//go:nosplit
//go:inline
func (g *Generator) Next() uint64 {
	t := g.x ^ (g.x << 11)
	g.x, g.y, g.z = g.y, g.z, g.w
	g.w = g.w ^ (g.w >> 19) ^ t ^ (t >> 8)
	return g.w
}

// Intn returns Next() reduced into [0, n). Intn(0) returns 0.
func (g *Generator) Intn(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	return g.Next() % n
}

// List returns size values, each in [0, limit).
func (g *Generator) List(size int, limit uint64) []uint64 {
	if size <= 0 {
		return nil
	}
	out := make([]uint64, size)
	for i := range out {
		out[i] = g.Intn(limit)
	}
	return out
}

// Pairs returns size pairs with the first value in [0, firstLimit) and the
// second in [0, secondLimit).
func (g *Generator) Pairs(size int, firstLimit, secondLimit uint64) [][2]uint64 {
	if size <= 0 {
		return nil
	}
	out := make([][2]uint64, size)
	for i := range out {
		out[i][0] = g.Intn(firstLimit)
		out[i][1] = g.Intn(secondLimit)
	}
	return out
}

// Perm returns a pseudo-random permutation of [0, n) (Fisher–Yates).
func (g *Generator) Perm(n int) []uint64 {
	if n <= 0 {
		return nil
	}
	out := make([]uint64, n)
	for i := range out {
		out[i] = uint64(i)
	}
	for i := n - 1; i > 0; i-- {
		j := g.Intn(uint64(i + 1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}
