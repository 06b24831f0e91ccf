package testutil

import (
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Int63 returns a non-negative pseudo-random 63-bit integer.
func (r *RNG) Int63() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Int63()
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Bools returns n flags, each true with probability p.
func (r *RNG) Bools(n int, p float64) []bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]bool, n)
	for i := range out {
		out[i] = r.rand.Float64() < p
	}
	return out
}

// Fixed returns width random bytes.
func (r *RNG) Fixed(width int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := make([]byte, width)
	_, _ = r.rand.Read(b)
	return b
}

// Text returns between 0 and maxLen printable ASCII bytes.
func (r *RNG) Text(maxLen int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := make([]byte, r.rand.Intn(maxLen+1))
	for i := range b {
		b[i] = byte(' ' + r.rand.Intn('~'-' '+1))
	}
	return b
}

// Subset returns a random boolean mask of length n with at least one true
// entry when n > 0.
func (r *RNG) Subset(n int) []bool {
	if n == 0 {
		return nil
	}
	mask := r.Bools(n, 0.5)
	mask[r.Intn(n)] = true
	return mask
}
