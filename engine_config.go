package specbleach

import "github.com/ham-dsp/specbleach/fftadapter"

// EngineConfig is the immutable configuration record built once at
// construction. It is kept separate from ParameterBlock because none of
// these fields can change without reallocating buffers sized against them.
type EngineConfig struct {
	Window    WindowType
	Gain      GainType
	BandScale BandScale

	// NLM geometry, 2D variant only.
	NlmPast, NlmFuture, NlmPatch, NlmPasteBlock, NlmFreqSearch int

	// NewFFT, if set, overrides the default gonum-backed FFT adapter.
	NewFFT func(n int) fftadapter.Adapter
}

// DefaultEngineConfig returns the conventional defaults: Hann window,
// Wiener gain, Bark critical bands, and a conventional NLM geometry
// (past=4, future=1, patch=4, pasteBlock=2, freqSearch=4).
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Window:        WindowHann,
		Gain:          GainWiener,
		BandScale:     BandScaleBark,
		NlmPast:       4,
		NlmFuture:     1,
		NlmPatch:      4,
		NlmPasteBlock: 2,
		NlmFreqSearch: 4,
	}
}

func (c EngineConfig) newFFT(n int) fftadapter.Adapter {
	if c.NewFFT != nil {
		return c.NewFFT(n)
	}
	return fftadapter.New(n)
}

// frameGeometry derives N (FFT size), frame size L, and hop H from a
// sample rate and a frame duration in ms, at a fixed 50% overlap factor
// (the conventional choice for Hann/Hamming/Blackman/Vorbis constant-
// overlap-add reconstruction).
func frameGeometry(sampleRateHz uint32, frameSizeMs float32) (n, frameSize, hop int) {
	frameSize = int(float64(sampleRateHz) * float64(frameSizeMs) / 1000.0)
	if frameSize < 2 {
		frameSize = 2
	}
	// Round the FFT size up to the next even number at least as large as
	// frameSize: N == frameSize when frameSize is even, and N == frameSize+1
	// (one sample of zero padding) when it is odd. EngineConfig has no
	// field for a larger N.
	n = frameSize
	if n%2 != 0 {
		n++
	}
	hop = n / 2
	return
}

func validInitArgs(sampleRateHz uint32, frameSizeMs float32) bool {
	if sampleRateHz < 4000 || sampleRateHz > 192000 {
		return false
	}
	if frameSizeMs < 20 || frameSizeMs > 100 {
		return false
	}
	return true
}
