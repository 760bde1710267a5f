package specbleach

import "math"

// sppMMSEEstimator implements the fixed-prior speech-presence-probability
// MMSE noise tracker.
type sppMMSEEstimator struct {
	k int

	noise      []float64 // N_prev
	sppSmooth  []float64 // smoothed SPP from the previous frame
	firstFrame bool
}

const (
	sppXiH1     = 31.62 // 15 dB linear
	sppAlphaPow = 0.8
	sppAlphaSPP = 0.9
	sppStagCap  = 0.99
)

func newSPPMMSEEstimator(k int) *sppMMSEEstimator {
	return &sppMMSEEstimator{
		k:          k,
		noise:      make([]float64, k),
		sppSmooth:  make([]float64, k),
		firstFrame: true,
	}
}

func (e *sppMMSEEstimator) run(in, out []float64) {
	if silenceGate(in) {
		if e.firstFrame {
			for i := range out {
				out[i] = 0
			}
			e.firstFrame = false
			return
		}
		copy(out, e.noise)
		return
	}
	e.firstFrame = false

	for k := 0; k < e.k; k++ {
		x := in[k]
		nPrev := maxFloat(e.noise[k], SpectralEpsilon)

		expTerm := math.Exp(-(x / nPrev) * (sppXiH1 / (1 + sppXiH1)))
		expTerm = finiteOr(expTerm, 0)

		spp := 1.0 / (1.0 + (1+sppXiH1)*expTerm)
		spp = clamp(spp, 0, 1)

		// Stagnation guard: if the smoothed SPP
		// from the previous frame is already pinned near 1, this frame's
		// SPP is capped too, so the MMSE estimate can't lock onto stale
		// noise forever.
		if e.sppSmooth[k] > sppStagCap {
			spp = minFloat(spp, sppStagCap)
		}

		mmse := (1-spp)*x + spp*nPrev
		noise := sppAlphaPow*nPrev + (1-sppAlphaPow)*mmse

		e.sppSmooth[k] = sppAlphaSPP*e.sppSmooth[k] + (1-sppAlphaSPP)*spp
		e.noise[k] = finiteOr(noise, nPrev)
		out[k] = e.noise[k]
	}
}

func (e *sppMMSEEstimator) setState(profile []float64) {
	copy(e.noise, profile)
	e.firstFrame = false
}

func (e *sppMMSEEstimator) updateSeed(profile []float64) {
	if !e.firstFrame {
		return
	}
	copy(e.noise, profile)
}

func (e *sppMMSEEstimator) applyFloor(floor []float64) {
	for k := range e.noise {
		e.noise[k] = maxFloat(e.noise[k], floor[k])
	}
}
