// Package waitingtime implements the pluggable delay samplers consumed by
// transition rules. A WaitingTime never returns an absolute time; callers
// add the sample to the current time themselves.
package waitingtime

import (
	"math"
	"math/rand"
)

// WaitingTime samples a non-negative delay given the current simulation
// time. Implementations may ignore the argument (stationary distributions
// like Exponential and Gamma do); it exists for samplers whose rate varies
// with time.
type WaitingTime interface {
	Sample(currentTime float64) float64
}

// Exponential samples Exp(Rate) delays. A zero rate yields +Inf, never an
// error: an event with an infinite delay never fires, which is the
// intended way to disable a rule without removing it.
type Exponential struct {
	Rate float64
	Rand *rand.Rand // optional; defaults to the package-level source
}

// Sample implements WaitingTime.
func (e Exponential) Sample(currentTime float64) float64 {
	if e.Rate == 0 {
		return math.Inf(1)
	}
	r := e.Rand
	if r == nil {
		return rand.ExpFloat64() / e.Rate
	}
	return r.ExpFloat64() / e.Rate
}

// Gamma samples Gamma(Shape, Scale) delays via the Marsaglia-Tsang method
// (in distribution, Shape == 1 is an Exponential with rate 1/Scale).
type Gamma struct {
	Shape float64
	Scale float64
	Rand  *rand.Rand
}

// Sample implements WaitingTime.
func (g Gamma) Sample(currentTime float64) float64 {
	if g.Shape <= 0 || g.Scale <= 0 {
		return math.Inf(1)
	}
	r := g.Rand
	if r == nil {
		r = rand.New(rand.NewSource(rand.Int63()))
	}
	return sampleGamma(r, g.Shape) * g.Scale
}

// sampleGamma draws from Gamma(shape, 1) using Marsaglia and Tsang's
// method for shape >= 1, and a boosting transform (Ahrens-Dieter) for
// shape < 1.
func sampleGamma(r *rand.Rand, shape float64) float64 {
	if shape < 1 {
		u := r.Float64()
		return sampleGamma(r, shape+1) * math.Pow(u, 1/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9*d)
	for {
		var x, v float64
		for {
			x = r.NormFloat64()
			v = 1 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := r.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}

// Custom wraps an arbitrary sampling callback, the escape hatch for
// deterministic or scripted waiting times used heavily in tests (see S2
// and S6 in the test suite).
type Custom struct {
	Fn func(currentTime float64) float64
}

// Sample implements WaitingTime.
func (c Custom) Sample(currentTime float64) float64 {
	if c.Fn == nil {
		return math.Inf(1)
	}
	return c.Fn(currentTime)
}

// Sequence returns a Custom that ignores currentTime and replays the given
// delays in order, repeating the last one once exhausted. It is the
// grounding for scripted waiters like "returns 1.0, 1.0, 1.0, ..." used in
// the contact re-arm scenario.
func Sequence(delays ...float64) Custom {
	i := 0
	return Custom{Fn: func(float64) float64 {
		if len(delays) == 0 {
			return math.Inf(1)
		}
		d := delays[i]
		if i < len(delays)-1 {
			i++
		}
		return d
	}}
}

// GetWaitingTime is the test-facing helper named directly in the engine's
// external interface: it samples w once at t, with no other side effects.
func GetWaitingTime(w WaitingTime, t float64) float64 {
	return w.Sample(t)
}
