package specbleach

import "fmt"

// TwoDHandle is the adaptive denoiser plus a Non-Local-Means smoothing pass
// over the time-frequency SNR map. It shares the adaptive estimator and the
// manual noise profile (the profile acts as the adaptive estimator's floor,
// or as the fixed noise when AdaptiveNoise is off), and additionally runs
// every frame's SNR through an NlmRingBuffer before scaling/gain estimation.
// Because NLM looks future frames ahead, the frame whose gain gets computed
// is always the one sitting in DelayBuffer, not the frame that just arrived
// -- processFrame overwrites the just-arrived spec in place with the fully
// processed delayed frame before returning, so StftEngine's synchronous
// inverse FFT synthesizes the right samples.
type TwoDHandle struct {
	cfg        EngineConfig
	sampleRate uint32
	k, n       int

	stft       *StftEngine
	profile    *NoiseProfile
	estimator  estimator
	scaler     *Scaler
	noiseFloor *NoiseFloorManager
	postFilter *PostFilter
	mixer      *Mixer
	bands      *CriticalBands
	masking    *MaskingEstimator
	nlmRing    *NlmRingBuffer
	nlm        *NlmSmoother
	delay      *DelayBuffer

	params ParameterBlock
	stats  Stats

	refPower         []float64 // K, current frame's power spectrum
	noiseVec         []float64 // K, current frame's noise (manual or adaptive-tracked)
	snr              []float64 // K, current frame's SNR, pushed into nlmRing
	smoothedSNR      []float64 // K, NLM output aligned to the delayed frame
	refPowerSmoothed []float64 // K, smoothedSNR reconstituted against the delayed noise
	alpha            []float64
	beta             []float64
	gain             []float64 // N
}

// InitializeTwoD constructs a 2D denoiser. Returns a nil handle and a
// non-nil *Error if sampleRateHz/frameSizeMs are out of range.
func InitializeTwoD(sampleRateHz uint32, frameSizeMs float32, cfg EngineConfig) (*TwoDHandle, error) {
	if !validInitArgs(sampleRateHz, frameSizeMs) {
		err := newError(InvalidArgument, "InitializeTwoD", fmt.Errorf("sampleRateHz=%d frameSizeMs=%v out of range", sampleRateHz, frameSizeMs))
		logConstructionFailure("InitializeTwoD", err)
		return nil, err
	}
	n, frameSize, hop := frameGeometry(sampleRateHz, frameSizeMs)
	k := binCount(n)
	hopSeconds := float64(hop) / float64(sampleRateHz)

	params := DefaultParameterBlock()
	h := &TwoDHandle{
		cfg:        cfg,
		sampleRate: sampleRateHz,
		k:          k,
		n:          n,
		stft:       NewStftEngine(n, frameSize, hop, cfg.Window, cfg.newFFT(n)),
		profile:    NewNoiseProfile(k),
		estimator:  newEstimator(params.NoiseEstimationMethod, k, hopSeconds),
		bands:      NewCriticalBands(cfg.BandScale, int(sampleRateHz), n),
		noiseFloor: NewNoiseFloorManager(n),
		postFilter: NewPostFilter(k),
		mixer:      NewMixer(),
		nlmRing:    NewNlmRingBuffer(k, cfg.NlmPast, cfg.NlmFuture, cfg.NlmPatch, cfg.NlmPasteBlock, cfg.NlmFreqSearch),
		params:     params,

		refPower:         make([]float64, k),
		noiseVec:         make([]float64, k),
		snr:              make([]float64, k),
		smoothedSNR:      make([]float64, k),
		refPowerSmoothed: make([]float64, k),
		alpha:            make([]float64, k),
		beta:             make([]float64, k),
		gain:             make([]float64, n),
	}
	h.delay = NewDelayBuffer(cfg.NlmPast+cfg.NlmFuture+DelayBufferExtra, n, k)
	h.nlm = NewNlmSmoother(h.nlmRing)
	h.masking = NewMaskingEstimator(h.bands, int(sampleRateHz), k)
	h.masking.SetAbsoluteFloorEnabled(false)
	h.scaler = NewScaler(h.params.NoiseScalingType, k, h.bands, h.masking)
	h.postFilter.SetThreshold(h.params.PostFilterThresholdDB)
	h.nlm.SetH(h.params.smoothingUnit())
	return h, nil
}

// Free releases resources. Safe on a nil handle.
func (h *TwoDHandle) Free() {}

// GetLatency returns the frame size plus the NLM lookahead, future frames
// of hop-sized delay beyond the base STFT latency.
func (h *TwoDHandle) GetLatency() int {
	if h == nil {
		return 0
	}
	return h.stft.Latency() + h.cfg.NlmFuture*h.stft.HopSize()
}

// LoadParameters validates and applies a new ParameterBlock. As with
// AdaptiveHandle, switching NoiseEstimationMethod reallocates and reseeds
// the estimator. SmoothingFactor drives the NLM h parameter rather than a
// time-smoothing factor for this variant.
func (h *TwoDHandle) LoadParameters(p ParameterBlock) bool {
	if h == nil {
		return false
	}
	p.clip()
	if p.NoiseEstimationMethod != h.params.NoiseEstimationMethod {
		logEstimatorSwitch(h.params.NoiseEstimationMethod, p.NoiseEstimationMethod)
		hopSeconds := float64(h.stft.HopSize()) / float64(h.sampleRate)
		next := newEstimator(p.NoiseEstimationMethod, h.k, hopSeconds)
		next.setState(h.noiseVec)
		h.estimator = next
	}
	if p.NoiseScalingType != h.params.NoiseScalingType {
		h.scaler.SetScalingType(p.NoiseScalingType)
	}
	if p.PostFilterThresholdDB != h.params.PostFilterThresholdDB {
		h.postFilter.SetThreshold(p.PostFilterThresholdDB)
	}
	h.nlm.SetH(p.smoothingUnit())
	h.params = p
	return true
}

// Process runs n samples through the engine.
func (h *TwoDHandle) Process(in, out []float64) bool {
	if h == nil {
		return false
	}
	return h.stft.Process(in, out, h.processFrame)
}

func (h *TwoDHandle) processFrame(spec Spectrum) {
	PowerSpectrum(spec, h.refPower)

	if h.params.LearnNoise >= 1 {
		h.profile.Learn(h.refPower)
		h.stats.recordLearn()
		return
	}

	mode := h.params.NoiseReductionMode
	if !h.profile.Available(mode) {
		logProfileUnavailable(mode)
		return
	}
	copy(h.noiseVec, h.profile.Values(mode))

	if h.params.AdaptiveNoise {
		h.estimator.updateSeed(h.noiseVec)
		h.estimator.applyFloor(h.noiseVec)
		runEstimator(h.estimator, h.refPower, h.noiseVec)
	}

	for k := range h.snr {
		h.snr[k] = h.refPower[k] / maxFloat(h.noiseVec[k], SpectralEpsilon)
	}
	h.nlmRing.Push(h.snr)
	h.delay.Push(spec, h.refPower, h.noiseVec)

	if !h.nlmRing.TargetReady() {
		for i := range spec {
			spec[i] = 0
		}
		return
	}

	h.nlm.Run(h.smoothedSNR)
	delayedSpec, delayedPower, delayedNoise := h.delay.Delayed(h.cfg.NlmFuture)

	for k := range h.refPowerSmoothed {
		h.refPowerSmoothed[k] = h.smoothedSNR[k] * maxFloat(delayedNoise[k], SpectralEpsilon)
	}

	over := h.params.oversubtraction(2.0)
	under := BetaMax
	h.scaler.Compute(h.refPowerSmoothed, delayedNoise, ScalingParams{Over: over, Under: under}, h.alpha, h.beta)

	ComputeGain(h.cfg.Gain, h.refPowerSmoothed, delayedNoise, h.alpha, h.beta, h.gain[:h.k])

	h.noiseFloor.Apply(delayedNoise, h.params.whiteningPhi(), h.params.reductionLinear(), h.gain)

	gainFloor := h.params.reductionLinear()
	h.postFilter.Apply(h.refPowerSmoothed, h.gain[:h.k], gainFloor)
	mirrorGain(h.gain)

	h.mixer.Mix(delayedSpec, h.gain, h.params.ResidualListen)
	copy(spec, delayedSpec)

	snrDB := powerRatioToDB(sumOf(delayedPower) / maxFloat(sumOf(delayedNoise), SpectralEpsilon))
	h.stats.recordFrame(snrDB, linearToDB(1-h.params.reductionLinear()))
}

// Stats returns a copy of the current diagnostics.
func (h *TwoDHandle) Stats() Stats { return h.stats }

// --- Noise profile management ---

// GetNoiseProfileSize returns K.
func (h *TwoDHandle) GetNoiseProfileSize() uint32 { return uint32(h.k) }

// GetNoiseProfile returns the active mode's profile (NoiseReductionMode).
func (h *TwoDHandle) GetNoiseProfile() []float32 {
	return toFloat32(h.profile.Values(h.params.NoiseReductionMode))
}

// GetNoiseProfileForMode returns mode's profile, or nil for an invalid mode.
func (h *TwoDHandle) GetNoiseProfileForMode(mode int) []float32 {
	return toFloat32(h.profile.Values(mode))
}

// GetNoiseProfileBlocksAveraged returns the active mode's block counter.
func (h *TwoDHandle) GetNoiseProfileBlocksAveraged() uint32 {
	return h.profile.BlocksAveraged(h.params.NoiseReductionMode)
}

// GetNoiseProfileBlocksAveragedForMode returns mode's block counter.
func (h *TwoDHandle) GetNoiseProfileBlocksAveragedForMode(mode int) uint32 {
	return h.profile.BlocksAveraged(mode)
}

// LoadNoiseProfile loads data into the active mode. Size mismatch returns
// false without side effects.
func (h *TwoDHandle) LoadNoiseProfile(data []float32, k int, blocks uint32) bool {
	return h.LoadNoiseProfileForMode(data, k, blocks, h.params.NoiseReductionMode)
}

// LoadNoiseProfileForMode loads data into mode.
func (h *TwoDHandle) LoadNoiseProfileForMode(data []float32, k int, blocks uint32, mode int) bool {
	if k != h.k {
		return false
	}
	return h.profile.Load(mode, fromFloat32(data), blocks)
}

// ResetNoiseProfile clears all three modes.
func (h *TwoDHandle) ResetNoiseProfile() bool {
	h.profile.Reset()
	return true
}

// NoiseProfileAvailable reports availability of the active mode.
func (h *TwoDHandle) NoiseProfileAvailable() bool {
	return h.profile.Available(h.params.NoiseReductionMode)
}

// NoiseProfileAvailableForMode reports availability of mode.
func (h *TwoDHandle) NoiseProfileAvailableForMode(mode int) bool {
	return h.profile.Available(mode)
}
