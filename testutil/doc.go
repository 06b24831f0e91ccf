// Package testutil provides deterministic random data for tests.
//
// This package is intended for use in tests and benchmarks only.
//
//	rng := testutil.NewRNG(seed)
//	present := rng.Bools(1000, 0.8) // ~80% true
//	v := rng.Fixed(4)               // 4 random bytes
//	s := rng.Text(16)               // 0..16 printable bytes
package testutil
