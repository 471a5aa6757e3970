package retry

import (
	"math"
	"math/rand"
	"time"
)

// Backoff computes the delay before a given retry attempt (1-based).
type Backoff interface {
	Next(attempt int) time.Duration
}

// Constant waits the same interval between every attempt.
type Constant struct {
	Interval time.Duration
}

func (c Constant) Next(int) time.Duration { return c.Interval }

// Exponential grows the delay by Multiplier each attempt, with jitter, capped
// at Max.
type Exponential struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	Jitter     float64 // fraction of the computed delay, 0 disables
}

func (e Exponential) Next(attempt int) time.Duration {
	d := float64(e.Initial) * math.Pow(e.Multiplier, float64(attempt-1))
	if e.Jitter > 0 {
		d += rand.Float64() * e.Jitter * d
	}
	if d > float64(e.Max) {
		d = float64(e.Max)
	}
	return time.Duration(d)
}

// DefaultExponential is the backoff used for backend reads.
func DefaultExponential() Exponential {
	return Exponential{
		Initial:    250 * time.Millisecond,
		Max:        5 * time.Second,
		Multiplier: 2.0,
		Jitter:     0.2,
	}
}
