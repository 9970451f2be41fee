package core

import (
	"crypto/rand"
	"fmt"
	"math/big"
	mrand "math/rand/v2"
)

// RandSource provides random number generation for lot selection.
// This interface enables dependency injection for deterministic testing.
type RandSource interface {
	// Intn returns a random integer in [0, n). Panics if n <= 0.
	Intn(n int) int
}

// cryptoRandSource wraps crypto/rand for production use
type cryptoRandSource struct{}

// Intn returns a cryptographically secure random integer in [0, n).
// Panics if n <= 0 (programmer error).
func (cryptoRandSource) Intn(n int) int {
	if n <= 0 {
		panic(fmt.Sprintf("cryptoRandSource.Intn: n must be positive, got %d", n))
	}
	// rand.Int does not error when using rand.Reader
	// https://pkg.go.dev/crypto/rand#Int
	nBig, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(nBig.Int64())
}

// defaultRandSource is used when no source is injected
var defaultRandSource RandSource = cryptoRandSource{}

// seededRandSource is a reproducible PCG stream.
type seededRandSource struct {
	r *mrand.Rand
}

// NewSeededRand returns a RandSource that replays the same sequence for the same seed.
func NewSeededRand(seed uint64) RandSource {
	return &seededRandSource{r: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seededRandSource) Intn(n int) int {
	if n <= 0 {
		panic(fmt.Sprintf("seededRandSource.Intn: n must be positive, got %d", n))
	}
	return s.r.IntN(n)
}

// NewRand returns a seeded source, or crypto/rand when seed is zero.
func NewRand(seed uint64) RandSource {
	if seed == 0 {
		return defaultRandSource
	}
	return NewSeededRand(seed)
}
