package specbleach

// EstimatorMethod selects one of the four adaptive noise estimators.
// Numeric values match ParameterBlock.NoiseEstimationMethod's codes.
type EstimatorMethod int

const (
	MethodSPPMMSE EstimatorMethod = iota
	MethodBrandt
	MethodMartin
	MethodLouizou
)

// estimator is a closed set of noise-tracking strategies selected once at
// construction time. Go's idiom for that is an interface implemented by a
// fixed set of concrete structs, chosen by a constructor switch -- not a
// type switch per call, so the hot path pays one indirect call, not a
// branch.
type estimator interface {
	// run computes out[0:K] from in[0:K], the current reference spectrum
	// (power). Implements the silence gate itself.
	run(in, out []float64)
	// setState overwrites the estimator's internal noise state outright
	// (used when loading a saved/external profile as the adaptive seed).
	setState(profile []float64)
	// updateSeed seeds state only where it is currently unset (first frame).
	updateSeed(profile []float64)
	// applyFloor clamps internal state elementwise to a floor profile, not
	// allowing it to track below a manually supplied minimum noise floor.
	applyFloor(floor []float64)
}

// newEstimator constructs the estimator selected by method for a K-bin
// spectrum at the given frame hop duration (seconds), needed by Martin's
// and Brandt's time-windowed history sizing.
func newEstimator(method EstimatorMethod, k int, hopSeconds float64) estimator {
	switch method {
	case MethodBrandt:
		return newBrandtEstimator(k, hopSeconds)
	case MethodMartin:
		return newMartinEstimator(k, hopSeconds)
	case MethodLouizou:
		return newLouizouEstimator(k, hopSeconds)
	case MethodSPPMMSE:
		fallthrough
	default:
		return newSPPMMSEEstimator(k)
	}
}

// runEstimator invokes e.run and flushes NaN/Inf/subnormal outputs to
// zero before the noise estimate feeds the rest of the pipeline.
func runEstimator(e estimator, in, out []float64) {
	e.run(in, out)
	for k := range out {
		out[k] = sanitizeDenormal(out[k])
	}
}

// silenceGate reports whether the frame's mean power is below the silence
// threshold, in which case the estimator should hold its previous output
// (or emit zero on the very first frame).
func silenceGate(in []float64) bool {
	var sum float64
	for _, x := range in {
		sum += x
	}
	mean := sum / float64(len(in))
	return mean < EstimatorSilenceThreshold
}
