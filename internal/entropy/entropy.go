// Package entropy is the substitutable random source for every
// probabilistic branch in the sim: payout draws, event trigger rolls,
// niche trend draws. Tests script it for deterministic replay.
package entropy

import (
	"math/rand/v2"
	"sync"
)

// Source yields random values. Implementations must be safe for use
// from the single engine goroutine; Seeded additionally locks so the
// passive ticker can share it.
type Source interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// IntN returns a value in [0, n). n must be positive.
	IntN(n int) int
}

// InRange maps one draw onto [min, max].
func InRange(src Source, min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + src.Float64()*(max-min)
}

// IntInRange maps one draw onto the inclusive integer range [min, max].
func IntInRange(src Source, min, max int) int {
	if max <= min {
		return min
	}
	return min + src.IntN(max-min+1)
}

type seeded struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeeded returns a deterministic source for the given seed.
func NewSeeded(seed uint64) Source {
	return &seeded{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seeded) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *seeded) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// Scripted replays a fixed tape of values; the tape wraps when
// exhausted. Test helper.
type Scripted struct {
	Values []float64
	pos    int
}

func (s *Scripted) next() float64 {
	if len(s.Values) == 0 {
		return 0.5
	}
	v := s.Values[s.pos%len(s.Values)]
	s.pos++
	return v
}

func (s *Scripted) Float64() float64 { return s.next() }

func (s *Scripted) IntN(n int) int {
	v := int(s.next() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}
