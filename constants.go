package specbleach

// Numeric defaults with no single universally-agreed value in the noise-
// reduction literature this engine draws on; see DESIGN.md "Open Question
// decisions" for the reasoning behind each.
const (
	// SpectralEpsilon guards every division, log, and exp in the per-bin
	// numerics against zero and negative-infinity.
	SpectralEpsilon = 1e-12

	// EstimatorSilenceThreshold gates adaptive-estimator updates: below
	// this mean per-bin power, the previous output is held (or zero is
	// emitted on the very first frame).
	EstimatorSilenceThreshold = 1e-8

	// ElasticProtectionFactor scales oversubtraction down when a bin is
	// fully masked (MASKING_THRESHOLDS scaling, nmr_db <= 0).
	ElasticProtectionFactor = 0.2

	// AlphaMin, AlphaMax, BetaMin, BetaMax bound the oversubtraction (alpha)
	// and undersubtraction (beta) factors computed by every scaling strategy.
	AlphaMin = 1.0
	AlphaMax = 6.0
	BetaMin  = 0.0
	BetaMax  = 0.01

	// LowerSNRdB and HigherSNRdB bound the SNR -> (alpha, beta) and
	// NMR -> (alpha, beta) linear interpolations.
	LowerSNRdB  = 0.0
	HigherSNRdB = 20.0

	// MinNumberOfWindowsNoiseAveraged gates ROLLING_MEAN availability.
	MinNumberOfWindowsNoiseAveraged = 5

	// NumberOfMedianSpectrum is the MEDIAN mode's trailing-buffer depth.
	NumberOfMedianSpectrum = 5

	// PostfilterScale sizes the adaptive moving-average window the
	// post-filter applies as a frame gets noisier.
	PostfilterScale = 4.0

	// PreserveMinimumGain toggles the min(original, averaged) clamp in
	// the post-filter, the conservative default: never let smoothing
	// raise a gain value above what the unsmoothed estimate computed.
	PreserveMinimumGain = true

	// DefaultTransientThreshold gates the TRANSIENT_AWARE time smoother's
	// spectral-flux detector.
	DefaultTransientThreshold = 0.25

	// BrandtMinConfidence is the (1 - AD_min) acceptance threshold for the
	// Brandt trimmed-mean estimator.
	BrandtMinConfidence = 0.7

	// MartinSubwinCount sizes the Martin minimum-statistics ring of
	// historical sub-window minima. Martin (2001) recommends a total
	// tracking window of roughly 1.5 s; the sub-window length in frames is
	// not a constant but is computed in newMartinEstimator from the hop
	// duration, so that MartinSubwinCount sub-windows span about 1.5 s.
	// MartinBiasCorr is the fixed bias correction applied to the minimum.
	MartinSubwinCount = 8
	MartinBiasCorr    = 1.5

	// DelayBufferExtra is added to (past + future) to size the 2D variant's
	// delay ring.
	DelayBufferExtra = 2
)
