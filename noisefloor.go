package specbleach

import "math"

// NoiseFloorManager computes per-bin whitening weights from a noise
// profile, applies the resulting gain floor, and mirrors the gain
// spectrum to the full N-length symmetric layout.
type NoiseFloorManager struct {
	k, n  int
	taper []float64 // right-half Hamming taper, length K

	weights []float64
}

// NewNoiseFloorManager constructs a manager for an N-length symmetric
// gain spectrum with K = N/2+1 independent bins.
func NewNoiseFloorManager(n int) *NoiseFloorManager {
	k := binCount(n)
	return &NoiseFloorManager{
		k:       k,
		n:       n,
		taper:   rightHalfHamming(k),
		weights: make([]float64, k),
	}
}

// Apply computes whitening weights from noise n[0:K] and whitening factor
// phi in [0,1], derives a gain floor from reductionAmount (the linear
// attenuation ceiling, reduction_amount converted to linear),
// replaces gain[0:K] with floor + (1-floor)*gain, and mirrors gain[k] to
// gain[N-k] for k in [1, N-1].
func (m *NoiseFloorManager) Apply(noise []float64, phi, reductionAmount float64, gain []float64) {
	noisePeak := SpectralEpsilon
	for _, v := range noise {
		noisePeak = maxFloat(noisePeak, v)
	}

	for k := 0; k < m.k; k++ {
		ratio := noisePeak / maxFloat(noise[k], SpectralEpsilon)
		w := math.Pow(ratio, phi) * m.taper[k]
		m.weights[k] = w

		floor := minFloat(reductionAmount*w, 1)
		gain[k] = floor + (1-floor)*gain[k]
	}

	for k := 1; k < m.n; k++ {
		if k < m.k {
			continue
		}
		gain[k] = gain[m.n-k]
	}
}
