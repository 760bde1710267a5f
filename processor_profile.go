package specbleach

import "fmt"

// ProfileHandle is the profile-based denoiser: capture a noise profile
// during a learn pass, then attenuate against it during a reduce pass. It
// owns every sub-component exclusively, and Process allocates nothing
// after construction; the noise-profile get/load accessors allocate
// float32/float64 copies of the profile.
type ProfileHandle struct {
	cfg        EngineConfig
	sampleRate uint32
	k          int

	stft       *StftEngine
	profile    *NoiseProfile
	scaler     *Scaler
	smoother   *TimeSmoother
	noiseFloor *NoiseFloorManager
	postFilter *PostFilter
	mixer      *Mixer
	bands      *CriticalBands
	masking    *MaskingEstimator

	params ParameterBlock
	stats  Stats

	refPower []float64 // K
	noiseVec []float64 // K
	alpha    []float64 // K
	beta     []float64 // K
	gain     []float64 // N, full symmetric layout
}

// InitializeProfile constructs a profile denoiser. Returns a nil handle
// and a non-nil *Error if sampleRateHz/frameSizeMs are out of range.
// Every field here is a plain Go allocation, so either all of them
// succeed or an out-of-memory panic unwinds with the runtime's own
// guarantees; there is no partial-construction state to roll back by
// hand.
func InitializeProfile(sampleRateHz uint32, frameSizeMs float32, cfg EngineConfig) (*ProfileHandle, error) {
	if !validInitArgs(sampleRateHz, frameSizeMs) {
		err := newError(InvalidArgument, "InitializeProfile", fmt.Errorf("sampleRateHz=%d frameSizeMs=%v out of range", sampleRateHz, frameSizeMs))
		logConstructionFailure("InitializeProfile", err)
		return nil, err
	}
	n, frameSize, hop := frameGeometry(sampleRateHz, frameSizeMs)
	k := binCount(n)

	h := &ProfileHandle{
		cfg:        cfg,
		sampleRate: sampleRateHz,
		k:          k,
		stft:       NewStftEngine(n, frameSize, hop, cfg.Window, cfg.newFFT(n)),
		profile:    NewNoiseProfile(k),
		bands:      NewCriticalBands(cfg.BandScale, int(sampleRateHz), n),
		smoother:   NewTimeSmoother(k),
		noiseFloor: NewNoiseFloorManager(n),
		postFilter: NewPostFilter(k),
		mixer:      NewMixer(),
		params:     DefaultParameterBlock(),
		refPower:   make([]float64, k),
		noiseVec:   make([]float64, k),
		alpha:      make([]float64, k),
		beta:       make([]float64, k),
		gain:       make([]float64, n),
	}
	h.masking = NewMaskingEstimator(h.bands, int(sampleRateHz), k)
	h.scaler = NewScaler(h.params.NoiseScalingType, k, h.bands, h.masking)
	h.postFilter.SetThreshold(h.params.PostFilterThresholdDB)
	return h, nil
}

// Free releases resources. Idempotent and safe on a nil handle; Go's
// garbage collector does the actual reclamation, so Free's job is purely
// to satisfy symmetric API shape.
func (h *ProfileHandle) Free() {}

// GetLatency returns L, the frame size.
func (h *ProfileHandle) GetLatency() int {
	if h == nil {
		return 0
	}
	return h.stft.Latency()
}

// LoadParameters validates and applies a new ParameterBlock, returning
// false only for a nil handle.
func (h *ProfileHandle) LoadParameters(p ParameterBlock) bool {
	if h == nil {
		return false
	}
	p.clip()
	if p.NoiseScalingType != h.params.NoiseScalingType {
		logParamChange("NoiseScalingType", h.params.NoiseScalingType, p.NoiseScalingType)
		h.scaler.SetScalingType(p.NoiseScalingType)
	}
	if p.PostFilterThresholdDB != h.params.PostFilterThresholdDB {
		h.postFilter.SetThreshold(p.PostFilterThresholdDB)
	}
	h.smoother.SetFactor(p.smoothingUnit())
	if p.TransientProtection {
		h.smoother.SetMode(SmootherTransientAware)
	} else {
		h.smoother.SetMode(SmootherFixed)
	}
	h.params = p
	return true
}

// Process runs n samples through the engine. Returns false
// only for a nil handle, mismatched buffers, or n == 0.
func (h *ProfileHandle) Process(in, out []float64) bool {
	if h == nil {
		return false
	}
	return h.stft.Process(in, out, h.processFrame)
}

func (h *ProfileHandle) processFrame(spec Spectrum) {
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

	over := h.params.oversubtraction(2.0)
	under := BetaMax
	h.scaler.Compute(h.refPower, h.noiseVec, ScalingParams{Over: over, Under: under}, h.alpha, h.beta)

	h.smoother.Smooth(h.refPower)

	ComputeGain(h.cfg.Gain, h.refPower, h.noiseVec, h.alpha, h.beta, h.gain[:h.k])

	h.noiseFloor.Apply(h.noiseVec, h.params.whiteningPhi(), h.params.reductionLinear(), h.gain)

	gainFloor := h.params.reductionLinear()
	h.postFilter.Apply(h.refPower, h.gain[:h.k], gainFloor)
	mirrorGain(h.gain)

	h.mixer.Mix(spec, h.gain, h.params.ResidualListen)
	h.recordStats()
}

func (h *ProfileHandle) recordStats() {
	snrDB := powerRatioToDB(sumOf(h.refPower) / maxFloat(sumOf(h.noiseVec), SpectralEpsilon))
	h.stats.recordFrame(snrDB, linearToDB(1-h.params.reductionLinear()))
}

// Stats returns a copy of the current diagnostics.
func (h *ProfileHandle) Stats() Stats { return h.stats }

// mirrorGain re-applies the symmetric mirror after the post-filter may
// have touched only [0,K); kept as a small free function so the 2D
// processor (which runs its own post-filter pass) can reuse it too.
func mirrorGain(gain []float64) {
	n := len(gain)
	k := binCount(n)
	for i := k; i < n; i++ {
		gain[i] = gain[n-i]
	}
}

// --- Noise profile management ---

// GetNoiseProfileSize returns K.
func (h *ProfileHandle) GetNoiseProfileSize() uint32 { return uint32(h.k) }

// GetNoiseProfile returns the active mode's profile (NoiseReductionMode).
func (h *ProfileHandle) GetNoiseProfile() []float32 {
	return toFloat32(h.profile.Values(h.params.NoiseReductionMode))
}

// GetNoiseProfileForMode returns mode's profile, or nil for an invalid mode.
func (h *ProfileHandle) GetNoiseProfileForMode(mode int) []float32 {
	return toFloat32(h.profile.Values(mode))
}

// GetNoiseProfileBlocksAveraged returns the active mode's block counter.
func (h *ProfileHandle) GetNoiseProfileBlocksAveraged() uint32 {
	return h.profile.BlocksAveraged(h.params.NoiseReductionMode)
}

// GetNoiseProfileBlocksAveragedForMode returns mode's block counter.
func (h *ProfileHandle) GetNoiseProfileBlocksAveragedForMode(mode int) uint32 {
	return h.profile.BlocksAveraged(mode)
}

// LoadNoiseProfile loads data into the active mode. Size mismatch returns
// false without side effects.
func (h *ProfileHandle) LoadNoiseProfile(data []float32, k int, blocks uint32) bool {
	return h.LoadNoiseProfileForMode(data, k, blocks, h.params.NoiseReductionMode)
}

// LoadNoiseProfileForMode loads data into mode.
func (h *ProfileHandle) LoadNoiseProfileForMode(data []float32, k int, blocks uint32, mode int) bool {
	if k != h.k {
		return false
	}
	return h.profile.Load(mode, fromFloat32(data), blocks)
}

// ResetNoiseProfile clears all three modes.
func (h *ProfileHandle) ResetNoiseProfile() bool {
	h.profile.Reset()
	return true
}

// NoiseProfileAvailable reports availability of the active mode.
func (h *ProfileHandle) NoiseProfileAvailable() bool {
	return h.profile.Available(h.params.NoiseReductionMode)
}

// NoiseProfileAvailableForMode reports availability of mode.
func (h *ProfileHandle) NoiseProfileAvailableForMode(mode int) bool {
	return h.profile.Available(mode)
}

func toFloat32(in []float64) []float32 {
	if in == nil {
		return nil
	}
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}

func fromFloat32(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
