package specbleach

// PostFilter applies an adaptive moving-average smoother to the gain
// spectrum, sized by how clean the frame already is: a
// quiet, already-clean frame gets no smoothing (window length 1); a noisy
// frame gets a wider moving average, trading frequency resolution for
// fewer isolated gain spikes ("musical noise").
type PostFilter struct {
	k            int
	snrThreshold float64
	original     []float64 // scratch copy of gain before averaging
}

// NewPostFilter constructs a filter for a K-bin gain spectrum.
func NewPostFilter(k int) *PostFilter {
	return &PostFilter{k: k, original: make([]float64, k)}
}

// SetThreshold sets the zeta threshold (linear power ratio) above which
// the filter passes through unchanged.
func (f *PostFilter) SetThreshold(snrThresholdDB float64) {
	f.snrThreshold = dbToLinear(snrThresholdDB) * dbToLinear(snrThresholdDB) // power ratio
}

// Apply smooths gain[0:K] in place given the reference spectrum x[0:K]
// used to measure how much energy the gain already removed, and the gain
// floor to finally clamp against.
func (f *PostFilter) Apply(x, gain []float64, gainFloor float64) {
	var numer, denom float64
	for k := 0; k < f.k; k++ {
		g := x[k] * gain[k]
		numer += g * g
		denom += x[k] * x[k]
	}
	zeta := numer / maxFloat(denom, SpectralEpsilon)

	n := 1
	if zeta < f.snrThreshold {
		scaled := PostfilterScale * (1 - zeta/maxFloat(f.snrThreshold, SpectralEpsilon))
		half := roundToInt(scaled)
		n = 2*half + 1
	}

	if n > 1 {
		copy(f.original, gain[:f.k])
		movingAverageSymmetric(f.original, gain[:f.k], n)
		if PreserveMinimumGain {
			for k := 0; k < f.k; k++ {
				gain[k] = minFloat(f.original[k], gain[k])
			}
		}
	}

	for k := 0; k < f.k; k++ {
		gain[k] = maxFloat(gain[k], gainFloor)
	}
}

// movingAverageSymmetric computes a length-n centered moving average of
// in into out, clamping the window at the edges by reusing the nearest
// in-bounds sample (symmetric edge clamping rather than zero-padding, so
// the band edges don't get artificially pulled down).
func movingAverageSymmetric(in, out []float64, n int) {
	half := n / 2
	k := len(in)
	for i := 0; i < k; i++ {
		var sum float64
		for d := -half; d <= half; d++ {
			idx := i + d
			if idx < 0 {
				idx = 0
			}
			if idx >= k {
				idx = k - 1
			}
			sum += in[idx]
		}
		out[i] = sum / float64(n)
	}
}

func roundToInt(x float64) int {
	if x < 0 {
		return 0
	}
	return int(x + 0.5)
}
