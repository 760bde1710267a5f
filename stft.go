package specbleach

import "github.com/ham-dsp/specbleach/fftadapter"

// SpectralFn is invoked once per emitted frame with the frame's full
// N-length half-complex spectrum, after the forward transform and before
// the inverse transform. It mutates spec in place.
type SpectralFn func(spec Spectrum)

// StftEngine streams arbitrary-length sample blocks through windowed
// overlap-add analysis/synthesis, invoking a SpectralFn once per frame.
// It is the sole owner of the input ring, the output accumulator, both
// windows, and the FFT adapter. All buffers are allocated at
// construction; Process never allocates.
type StftEngine struct {
	n          int // FFT size
	frameSize  int // L, raw analysis frame length (<= n)
	hop        int // H
	padLeading int // (n - frameSize) / 2

	fft fftadapter.Adapter

	analysisWindow  []float64
	synthesisWindow []float64

	// input holds the most recent frameSize raw samples, shifted left by
	// hop on every frame emission; newSamples counts how many samples have
	// arrived since the last emission.
	input      []float64
	newSamples int

	// output is the overlap-add accumulator, length n. Sample 0 is the
	// oldest, about to be drained; it is shifted left by hop on emission.
	output []float64

	// fftBuf is the scratch spectrum buffer reused every frame.
	fftBuf Spectrum

	framesSeen int
}

// NewStftEngine constructs an engine with FFT size n, raw analysis frame
// length frameSize (<= n; the difference is zero-padded symmetrically),
// hop H, and the given window type applied identically to analysis and
// synthesis (their product, summed across overlap_factor shifted copies,
// must sum to a constant -- true for Hann/Hamming/Blackman/Vorbis at their
// conventional 50%/75% overlap factors).
func NewStftEngine(n, frameSize, hop int, window WindowType, fft fftadapter.Adapter) *StftEngine {
	if fft == nil {
		fft = fftadapter.New(n)
	}
	w := NewWindow(window, frameSize)
	synth := make([]float64, frameSize)
	copy(synth, w)
	normalizeSynthesisWindow(synth, hop)

	e := &StftEngine{
		n:               n,
		frameSize:       frameSize,
		hop:             hop,
		padLeading:      (n - frameSize) / 2,
		fft:             fft,
		analysisWindow:  w,
		synthesisWindow: synth,
		input:           make([]float64, frameSize),
		output:          make([]float64, n),
		fftBuf:          make(Spectrum, n),
	}
	return e
}

// Latency returns L, the input-to-output sample delay.
func (e *StftEngine) Latency() int { return e.frameSize }

// HopSize returns H.
func (e *StftEngine) HopSize() int { return e.hop }

// FrameSize returns N, the FFT size.
func (e *StftEngine) FrameSize() int { return e.n }

// Process pushes in[0:n] one sample at a time and drains the oldest
// accumulator sample into out[0:n] per input sample, emitting a spectral
// frame (and invoking fn) every H input samples. It returns false only for
// mismatched/zero-length buffers; it never allocates.
func (e *StftEngine) Process(in, out []float64, fn SpectralFn) bool {
	n := len(in)
	if n == 0 || len(out) != n {
		return false
	}
	for i := 0; i < n; i++ {
		e.pushSample(in[i])
		out[i] = e.drainSample()
		e.newSamples++
		if e.newSamples >= e.hop {
			e.emitFrame(fn)
			e.newSamples = 0
		}
	}
	return true
}

func (e *StftEngine) pushSample(x float64) {
	copy(e.input, e.input[1:])
	e.input[len(e.input)-1] = x
}

func (e *StftEngine) drainSample() float64 {
	s := e.output[0]
	copy(e.output, e.output[1:])
	e.output[len(e.output)-1] = 0
	return s
}

func (e *StftEngine) emitFrame(fn SpectralFn) {
	buf := e.fftBuf
	for i := range buf {
		buf[i] = 0
	}
	for i, x := range e.input {
		buf[e.padLeading+i] = x * e.analysisWindow[i]
	}

	e.fft.Forward(buf)
	if fn != nil {
		fn(buf)
	}
	e.fft.Inverse(buf)

	// Overlap-add: windowed synthesis frame is added at the *front* of the
	// output accumulator (it lags the input by padLeading+frameSize-n...
	// with symmetric zero padding the synthesis frame aligns 1:1 with buf).
	for i := 0; i < e.frameSize; i++ {
		e.output[i] += buf[e.padLeading+i] * e.synthesisWindow[i]
	}
	// Any energy that landed in the zero-padded tail of a larger FFT size
	// still needs to be accumulated so overlap-add stays energy-complete.
	for i := e.frameSize; i < e.n; i++ {
		e.output[i] += buf[i]
	}
	e.framesSeen++
}

// normalizeSynthesisWindow rescales a copy of the analysis window so that,
// applied on both analysis and synthesis, shifted copies spaced hop apart
// sum to exactly 1 (constant-overlap-add on win^2, StftEngine
// invariant). For the windows this engine uses at hop = frameSize/2, only
// the current and immediately adjacent frame overlap any given output
// sample, so the sum reduces to w[i]^2 + w[i+hop]^2 (wrapping at the
// window edges), which is constant across i for Hann/Hamming/Blackman at
// 50% overlap; averaging over i absorbs any residual numerical wobble.
func normalizeSynthesisWindow(w []float64, hop int) {
	n := len(w)
	if hop <= 0 || hop >= n {
		return
	}
	var sum float64
	count := 0
	for i := 0; i < hop; i++ {
		total := w[i] * w[i]
		if i+hop < n {
			total += w[i+hop] * w[i+hop]
		}
		sum += total
		count++
	}
	if count == 0 || sum <= 0 {
		return
	}
	c := sum / float64(count)
	scale := 1 / maxFloat(c, SpectralEpsilon)
	for i := range w {
		w[i] *= scale
	}
}
