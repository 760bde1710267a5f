package specbleach

// ParameterBlock is the user-visible configuration accepted at any time
// via LoadParameters. Ranges are clipped internally rather than rejected
// (LoadParameters does the clipping); an invalid enum field is reset to
// its default value, since this is the only channel a caller has for
// changing engine behavior at runtime.
type ParameterBlock struct {
	// LearnNoise: 0 = reduce, >=1 = learn all three profile modes.
	LearnNoise int
	// NoiseReductionMode selects which profile to use when reducing
	// (profile & 2D variants): ModeRollingMean/ModeMedian/ModeMax.
	NoiseReductionMode int
	// ResidualListen outputs the suppressed component instead of the
	// clean component.
	ResidualListen bool
	// ReductionAmountDB is the attenuation ceiling, 0-40 dB.
	ReductionAmountDB float64
	// SmoothingFactor is a 0-100 percentage: time smoothing (non-2D) or
	// the NLM h parameter (2D).
	SmoothingFactor float64
	// WhiteningFactor is a 0-100 percentage; 0 disables whitening.
	WhiteningFactor float64
	// NoiseScalingType selects the oversubtraction/undersubtraction strategy.
	NoiseScalingType ScalingType
	// NoiseRescaleDB is added to the default oversubtraction alpha.
	NoiseRescaleDB float64
	// PostFilterThresholdDB is the zeta threshold (dB) for the adaptive
	// moving-average post-filter.
	PostFilterThresholdDB float64
	// NoiseEstimationMethod selects the adaptive estimator
	// (adaptive/2D variants only). Switching this reinitializes and
	// reseeds the estimator -- the one parameter change that is not
	// RT-safe.
	NoiseEstimationMethod EstimatorMethod
	// AdaptiveNoise enables the adaptive estimator on top of the manual
	// profile (2D variant only).
	AdaptiveNoise bool
	// TransientProtection enables the transient-aware time smoother.
	TransientProtection bool
}

// DefaultParameterBlock returns the conservative defaults a freshly
// constructed Handle uses before any LoadParameters call.
func DefaultParameterBlock() ParameterBlock {
	return ParameterBlock{
		LearnNoise:            0,
		NoiseReductionMode:    ModeRollingMean,
		ResidualListen:        false,
		ReductionAmountDB:     10,
		SmoothingFactor:       0,
		WhiteningFactor:       0,
		NoiseScalingType:      ScalingAPosterioriSNR,
		NoiseRescaleDB:        0,
		PostFilterThresholdDB: 10,
		NoiseEstimationMethod: MethodLouizou,
		AdaptiveNoise:         false,
		TransientProtection:   false,
	}
}

// clip clamps every field to its documented range.
func (p *ParameterBlock) clip() {
	if p.NoiseReductionMode < ModeRollingMean || p.NoiseReductionMode > ModeMax {
		p.NoiseReductionMode = ModeRollingMean
	}
	p.ReductionAmountDB = clamp(p.ReductionAmountDB, 0, 40)
	p.SmoothingFactor = clamp(p.SmoothingFactor, 0, 100)
	p.WhiteningFactor = clamp(p.WhiteningFactor, 0, 100)
	if p.NoiseScalingType < ScalingAPosterioriSNR || p.NoiseScalingType > ScalingMaskingThresholds {
		p.NoiseScalingType = ScalingAPosterioriSNR
	}
	p.PostFilterThresholdDB = clamp(p.PostFilterThresholdDB, -20, 40)
	if p.NoiseEstimationMethod < MethodSPPMMSE || p.NoiseEstimationMethod > MethodLouizou {
		p.NoiseEstimationMethod = MethodLouizou
	}
}

// reductionLinear converts ReductionAmountDB to the linear attenuation
// ceiling the noise-floor manager uses.
func (p *ParameterBlock) reductionLinear() float64 {
	// 0dB -> 1.0 (floor pinned at unity gain, pass-through); 40dB -> 0.01
	// (floor near zero, full reduction range allowed).
	return dbToLinear(-p.ReductionAmountDB)
}

// oversubtraction returns the scaling strategy's "over" input: a fixed
// base oversubtraction with the user's noise_rescale offset added in dB
// (the base is multiplied by the offset's linear factor), clamped to
// [AlphaMin, AlphaMax].
func (p *ParameterBlock) oversubtraction(base float64) float64 {
	rescaled := base * dbToLinear(p.NoiseRescaleDB)
	return clamp(rescaled, AlphaMin, AlphaMax)
}

func (p *ParameterBlock) whiteningPhi() float64 {
	return p.WhiteningFactor / 100
}

func (p *ParameterBlock) smoothingUnit() float64 {
	return p.SmoothingFactor / 100
}
