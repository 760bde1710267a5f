package specbleach

import "math"

// SmootherMode selects between a fixed first-order IIR time smoother and
// a transient-aware variant that backs off smoothing when a spectral
// transient is detected.
type SmootherMode int

const (
	SmootherFixed SmootherMode = iota
	SmootherTransientAware
)

// TimeSmoother applies first-order IIR smoothing to a reference spectrum,
// in place, across frames.
type TimeSmoother struct {
	mode   SmootherMode
	factor float64 // s, smoothing_factor in [0,1)

	prev     []float64
	prevFlux []float64 // previous frame's smoothed power, for transient detection
}

// NewTimeSmoother constructs a smoother for a K-bin spectrum.
func NewTimeSmoother(k int) *TimeSmoother {
	return &TimeSmoother{
		prev:     make([]float64, k),
		prevFlux: make([]float64, k),
	}
}

func (t *TimeSmoother) SetMode(m SmootherMode)   { t.mode = m }
func (t *TimeSmoother) SetFactor(factor float64) { t.factor = clamp(factor, 0, 0.999) }

// Smooth mutates x in place: x[k] <- s*prev[k] + (1-s)*x[k], or the same
// with a reduced s when SmootherTransientAware detects a transient via
// spectral flux.
func (t *TimeSmoother) Smooth(x []float64) {
	s := t.factor
	if t.mode == SmootherTransientAware {
		flux := t.spectralFlux(x)
		if flux > DefaultTransientThreshold {
			s *= 1 - flux
			s = maxFloat(s, 0)
		}
	}
	for k := range x {
		x[k] = s*t.prev[k] + (1-s)*x[k]
		t.prev[k] = x[k]
	}
	copy(t.prevFlux, x)
}

// spectralFlux computes a normalized positive-difference spectral flux
// between x and the previous frame's magnitude (half-wave rectified sum of
// differences, normalized by total energy so it is roughly scale-invariant).
func (t *TimeSmoother) spectralFlux(x []float64) float64 {
	var diff, energy float64
	for k := range x {
		m := math.Sqrt(maxFloat(x[k], 0))
		pm := math.Sqrt(maxFloat(t.prevFlux[k], 0))
		d := m - pm
		if d > 0 {
			diff += d
		}
		energy += m
	}
	if energy < SpectralEpsilon {
		return 0
	}
	return diff / energy
}
