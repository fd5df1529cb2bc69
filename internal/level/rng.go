package level

// lehmerMultiplier is the multiplier of the 32-bit Lehmer generator
// used for obstacle placement. Changing it changes every published layout.
const lehmerMultiplier uint32 = 741103597

// RNG is a deterministic multiplicative linear congruential generator:
//
//	state = state * 741103597 mod 2^32
//	sample = state / 2^32
//
// The stream depends only on the seed, so layouts are reproducible on every platform.
type RNG struct {
	state uint32
}

// NewRNG creates a generator seeded with seed.
func NewRNG(seed uint32) *RNG {
	return &RNG{state: seed}
}

// Next advances the generator and returns the new 32-bit state.
func (r *RNG) Next() uint32 {
	r.state *= lehmerMultiplier
	return r.state
}

// Float returns the next sample in [0, 1).
func (r *RNG) Float() float64 {
	return float64(r.Next()) / (1 << 32)
}
