// Package fftadapter adapts a complex FFT primitive to the half-complex
// (R2HC) packed layout the specbleach core expects.
//
// The default implementation wraps gonum.org/v1/gonum/dsp/fourier, a
// real-input FFT over a K = N/2+1 complex buffer, and repacks its output
// into R2HC on every call.
package fftadapter

import "gonum.org/v1/gonum/dsp/fourier"

// Adapter performs forward and inverse transforms in place on an N-length
// half-complex buffer. It is the one part of the core that is allowed to
// know about a concrete transform library, so swapping FFT backends never
// touches the rest of the package.
type Adapter interface {
	// Forward replaces buf's N real samples with their R2HC spectrum.
	Forward(buf []float64)
	// Inverse replaces buf's R2HC spectrum with N real samples, scaled by
	// 1/N so that Inverse undoes Forward.
	Inverse(buf []float64)
	// Size returns N.
	Size() int
}

// gonumAdapter drives gonum's real-input FFT (which already produces a
// forward/inverse pair over a K = N/2+1 complex buffer) and repacks its
// output into the R2HC real layout on every call, so the rest of the
// engine never has to know gonum is involved.
type gonumAdapter struct {
	n       int
	fft     *fourier.FFT
	complex []complex128 // scratch, length K = n/2+1
	seq     []float64    // scratch, length n
}

// New constructs an Adapter for transforms of size n (n must be even).
func New(n int) Adapter {
	return &gonumAdapter{
		n:       n,
		fft:     fourier.NewFFT(n),
		complex: make([]complex128, n/2+1),
		seq:     make([]float64, n),
	}
}

func (a *gonumAdapter) Size() int { return a.n }

func (a *gonumAdapter) Forward(buf []float64) {
	a.fft.Coefficients(a.complex, buf)
	n := a.n
	// a.complex[k] for k in [0, n/2] holds bin k's complex value; repack
	// into R2HC: real parts at [0..n/2], imaginary parts mirrored into
	// [n/2+1..n-1] as the imaginary part of bin n-k.
	for k := 0; k <= n/2; k++ {
		buf[k] = real(a.complex[k])
	}
	for k := 1; k < n-n/2; k++ {
		buf[n-k] = imag(a.complex[k])
	}
}

func (a *gonumAdapter) Inverse(buf []float64) {
	n := a.n
	for k := 0; k <= n/2; k++ {
		var im float64
		if k != 0 && k != n/2 {
			im = buf[n-k]
		}
		a.complex[k] = complex(buf[k], im)
	}
	out := a.fft.Sequence(a.seq, a.complex)
	// gonum's transform pair is unnormalized (a round trip multiplies by n).
	inv := 1 / float64(n)
	for i := range buf {
		buf[i] = out[i] * inv
	}
}
