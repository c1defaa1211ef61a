package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sync"
	"time"
)

// Source draws a number uniformly from [min, max).
type Source interface {
	GenerateNumber(min, max float64) float64
}

// Rand is a Source backed by math/rand. It is safe for concurrent use.
type Rand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func New(seed int64) *Rand {
	return &Rand{rng: rand.New(rand.NewSource(seed))}
}

// NewOS seeds a Rand from the operating system entropy pool, falling back
// to the wall clock when the pool is unavailable.
func NewOS() *Rand {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		return New(time.Now().UnixNano())
	}
	return New(int64(binary.LittleEndian.Uint64(buf[:])))
}

func (r *Rand) GenerateNumber(min, max float64) float64 {
	if max < min {
		min, max = max, min
	}
	r.mu.Lock()
	f := r.rng.Float64()
	r.mu.Unlock()
	return min + f*(max-min)
}

// Intn returns a number in [0, n). n must be > 0.
func (r *Rand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

// Fixed always yields the same value, clamped into the requested range.
type Fixed float64

func (f Fixed) GenerateNumber(min, max float64) float64 {
	if max < min {
		min, max = max, min
	}
	v := float64(f)
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Sequence replays values in order, cycling when exhausted. Each value is
// clamped into the requested range.
type Sequence struct {
	Values []float64
	next   int
}

func (s *Sequence) GenerateNumber(min, max float64) float64 {
	if len(s.Values) == 0 {
		return Fixed(0).GenerateNumber(min, max)
	}
	v := s.Values[s.next%len(s.Values)]
	s.next++
	return Fixed(v).GenerateNumber(min, max)
}
