// Package rng provides the simulation's only source of randomness: a small
// counter-based generator keyed by (world seed, entity id, tick). Identical
// keys always produce identical draw sequences, which is what makes replays
// and save/reload bit-identical. Nothing in the simulation may use math/rand
// or wall-clock entropy.
package rng

// mix64 avalanches a 64-bit input (splitmix64 finalizer constants).
// Stable across versions — changing these would break replay compatibility.
func mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// Source is a deterministic generator for one (seed, entity, tick) key.
// Successive draws advance an internal counter through the mixer, so a
// single system may take several independent values per entity per tick.
type Source struct {
	key uint64
	ctr uint64
}

// New derives a Source for the given key. Large odd constants decorrelate
// the three key dimensions.
func New(seed, entity, tick uint64) *Source {
	h := seed
	h ^= entity * 0x9e3779b97f4a7c15
	h ^= tick * 0xc2b2ae3d27d4eb4f
	return &Source{key: mix64(h)}
}

func (s *Source) Uint64() uint64 {
	s.ctr++
	return mix64(s.key + s.ctr*0x9e3779b97f4a7c15)
}

// Intn returns a value in [0, n). n must be positive.
func (s *Source) Intn(n int) int {
	return int(s.Uint64() % uint64(n))
}

// Range returns a value in [min, max] inclusive.
func (s *Source) Range(min, max int) int {
	if max <= min {
		return min
	}
	return min + s.Intn(max-min+1)
}

// Float64 returns a value in [0, 1).
func (s *Source) Float64() float64 {
	return float64(s.Uint64()>>11) / (1 << 53)
}

// Pick draws an index from integer weights. The weights' sum defines the
// whole range, so percentage weights that sum to 100 behave as percentages.
func (s *Source) Pick(weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return 0
	}
	roll := s.Intn(total)
	for i, w := range weights {
		roll -= w
		if roll < 0 {
			return i
		}
	}
	return len(weights) - 1
}
