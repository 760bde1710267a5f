package specbleach

import "fmt"

// AdaptiveHandle is the continuously-tracking denoiser: one of four noise
// estimators runs every frame, no learn pass required. Unlike
// ProfileHandle and TwoDHandle it exposes no noise-profile management --
// there is no profile to manage, only the estimator's running state.
type AdaptiveHandle struct {
	cfg        EngineConfig
	sampleRate uint32
	k          int

	stft       *StftEngine
	estimator  estimator
	scaler     *Scaler
	smoother   *TimeSmoother
	noiseFloor *NoiseFloorManager
	postFilter *PostFilter
	mixer      *Mixer
	bands      *CriticalBands
	masking    *MaskingEstimator

	params ParameterBlock
	stats  Stats

	refPower []float64
	noiseVec []float64
	alpha    []float64
	beta     []float64
	gain     []float64
}

// InitializeAdaptive constructs an adaptive denoiser. Returns a nil
// handle and a non-nil *Error if sampleRateHz/frameSizeMs are out of
// range.
func InitializeAdaptive(sampleRateHz uint32, frameSizeMs float32, cfg EngineConfig) (*AdaptiveHandle, error) {
	if !validInitArgs(sampleRateHz, frameSizeMs) {
		err := newError(InvalidArgument, "InitializeAdaptive", fmt.Errorf("sampleRateHz=%d frameSizeMs=%v out of range", sampleRateHz, frameSizeMs))
		logConstructionFailure("InitializeAdaptive", err)
		return nil, err
	}
	n, frameSize, hop := frameGeometry(sampleRateHz, frameSizeMs)
	k := binCount(n)
	hopSeconds := float64(hop) / float64(sampleRateHz)

	params := DefaultParameterBlock()
	h := &AdaptiveHandle{
		cfg:        cfg,
		sampleRate: sampleRateHz,
		k:          k,
		stft:       NewStftEngine(n, frameSize, hop, cfg.Window, cfg.newFFT(n)),
		estimator:  newEstimator(params.NoiseEstimationMethod, k, hopSeconds),
		bands:      NewCriticalBands(cfg.BandScale, int(sampleRateHz), n),
		smoother:   NewTimeSmoother(k),
		noiseFloor: NewNoiseFloorManager(n),
		postFilter: NewPostFilter(k),
		mixer:      NewMixer(),
		params:     params,
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

// Free releases resources. Safe on a nil handle.
func (h *AdaptiveHandle) Free() {}

// GetLatency returns the input-to-output sample delay.
func (h *AdaptiveHandle) GetLatency() int {
	if h == nil {
		return 0
	}
	return h.stft.Latency()
}

// LoadParameters validates and applies a new ParameterBlock. Switching
// NoiseEstimationMethod is the one non-RT-safe change: it reallocates and
// reseeds a new estimator, logged at Info per the control-plane logging
// convention.
func (h *AdaptiveHandle) LoadParameters(p ParameterBlock) bool {
	if h == nil {
		return false
	}
	p.clip()
	if p.NoiseEstimationMethod != h.params.NoiseEstimationMethod {
		logEstimatorSwitch(h.params.NoiseEstimationMethod, p.NoiseEstimationMethod)
		hop := h.stft.HopSize()
		hopSeconds := float64(hop) / float64(h.sampleRate)
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
	h.smoother.SetFactor(p.smoothingUnit())
	if p.TransientProtection {
		h.smoother.SetMode(SmootherTransientAware)
	} else {
		h.smoother.SetMode(SmootherFixed)
	}
	h.params = p
	return true
}

// Process runs n samples through the engine.
func (h *AdaptiveHandle) Process(in, out []float64) bool {
	if h == nil {
		return false
	}
	return h.stft.Process(in, out, h.processFrame)
}

func (h *AdaptiveHandle) processFrame(spec Spectrum) {
	PowerSpectrum(spec, h.refPower)

	runEstimator(h.estimator, h.refPower, h.noiseVec)

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

	snrDB := powerRatioToDB(sumOf(h.refPower) / maxFloat(sumOf(h.noiseVec), SpectralEpsilon))
	h.stats.recordFrame(snrDB, linearToDB(1-h.params.reductionLinear()))
}

// Stats returns a copy of the current diagnostics.
func (h *AdaptiveHandle) Stats() Stats { return h.stats }

func sumOf(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v
	}
	return sum
}
