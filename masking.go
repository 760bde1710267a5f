package specbleach

import "math"

// MaskingEstimator computes per-bin psychoacoustic masking thresholds from
// a clean-signal estimate, combining a spreading function over critical
// bands with an optional absolute-hearing-threshold floor.
//
// The absolute-threshold floor can be disabled; the 2D variant's masking
// veto uses that to require the masking decision be driven by real signal
// energy rather than by "it's below the threshold of hearing anyway"
// silence masking, which would otherwise let the NLM stage treat plain
// silence as masked noise.
type MaskingEstimator struct {
	bands             *CriticalBands
	k                 int
	absoluteThreshold []float64 // per-bin absolute threshold of hearing, linear power
	useAbsoluteFloor  bool

	bandEnergy   []float64
	spreadEnergy []float64
}

// NewMaskingEstimator builds an estimator for the given critical-band
// table, sample rate and spectrum size K, with the absolute-threshold
// floor enabled by default.
func NewMaskingEstimator(bands *CriticalBands, sampleRate, k int) *MaskingEstimator {
	m := &MaskingEstimator{
		bands:            bands,
		k:                k,
		useAbsoluteFloor: true,
		bandEnergy:       make([]float64, bands.NumberOfBands()),
		spreadEnergy:     make([]float64, bands.NumberOfBands()),
	}
	m.absoluteThreshold = make([]float64, k)
	nyquist := float64(sampleRate) / 2
	for i := 0; i < k; i++ {
		hz := float64(i) / float64(k-1) * nyquist
		m.absoluteThreshold[i] = absoluteThresholdPower(hz)
	}
	return m
}

// SetAbsoluteFloorEnabled toggles the absolute-hearing-threshold floor.
func (m *MaskingEstimator) SetAbsoluteFloorEnabled(enabled bool) {
	m.useAbsoluteFloor = enabled
}

// absoluteThresholdPower approximates Terhardt's absolute threshold of
// quiet in dB SPL, converted to a relative linear power floor. The curve
// shape (a U rising steeply below ~1kHz and above ~8kHz) is what matters
// here, not absolute calibration against a real SPL reference, since the
// rest of the pipeline works in arbitrary input-referred units.
func absoluteThresholdPower(hz float64) float64 {
	if hz < 20 {
		hz = 20
	}
	f := hz / 1000.0
	db := 3.64*math.Pow(f, -0.8) - 6.5*math.Exp(-0.6*(f-3.3)*(f-3.3)) + 1e-3*f*f*f*f
	return dbToLinear(db-96) * dbToLinear(db-96) // power, referenced well below typical signal power
}

// ComputeMaskingThresholds derives out[0:K] from a clean-signal estimate
// clean[0:K] by summing each band's spread contribution to every other
// band and mapping the result back onto bins.
func (m *MaskingEstimator) ComputeMaskingThresholds(clean []float64, out []float64) {
	nb := m.bands.NumberOfBands()
	m.bands.ComputeCriticalBandsSpectrum(clean, m.bandEnergy)

	for j := 0; j < nb; j++ {
		var total float64
		ej := m.bandEnergy[j]
		for i := 0; i < nb; i++ {
			d := float64(i - j)
			var attenDB float64
			if d >= 0 {
				attenDB = -27 * d
			} else {
				// Upward spread (masker below, masking above) rolls off
				// more slowly than downward spread, the classic asymmetric
				// spreading-function shape.
				attenDB = minFloat((27-0.37*maxFloat(m.bandEnergy[i]/maxFloat(ej, SpectralEpsilon), 0))*d, 0)
			}
			total += m.bandEnergy[i] * dbToLinear(attenDB) * dbToLinear(attenDB)
		}
		m.spreadEnergy[j] = total
	}

	start, end := 0, 0
	for j := 0; j < nb; j++ {
		start, end = m.bands.BandIndexes(j)
		t := m.spreadEnergy[j]
		for k := start; k < end && k < m.k; k++ {
			if m.useAbsoluteFloor {
				out[k] = maxFloat(t, m.absoluteThreshold[k])
			} else {
				out[k] = t
			}
		}
	}
}
