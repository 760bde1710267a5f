package specbleach

import "math"

// Spectrum is a half-complex (R2HC) packed real buffer of length N, laid
// out the way FFTW's r2hc transform lays it out:
//
//	[0]             = DC, real (imaginary part is always zero)
//	[1 .. N/2-1]    = real parts of bins 1..N/2-1
//	[N/2]           = Nyquist, real (imaginary part is always zero)
//	[N/2+1 .. N-1]  = imaginary parts of bins N/2-1..1, mirrored
//
// All in-place spectral operations act on this layout directly; bin k's
// complex value for 1 <= k <= N/2-1 is (buf[k], buf[N-k]).
type Spectrum []float64

// Real returns the real part of bin k (0 <= k <= N/2).
func (s Spectrum) Real(k int) float64 {
	return s[k]
}

// Imag returns the imaginary part of bin k (0 <= k <= N/2). Bin 0 and the
// Nyquist bin are always purely real.
func (s Spectrum) Imag(k int) float64 {
	n := len(s)
	if k == 0 || k == n/2 {
		return 0
	}
	return s[n-k]
}

// Magnitude returns sqrt(re^2 + im^2) for bin k.
func (s Spectrum) Magnitude(k int) float64 {
	re := s.Real(k)
	im := s.Imag(k)
	return math.Sqrt(re*re + im*im)
}

// Power returns re^2 + im^2 for bin k.
func (s Spectrum) Power(k int) float64 {
	re := s.Real(k)
	im := s.Imag(k)
	return re*re + im*im
}

// binCount returns K = N/2 + 1, the number of independent real-spectrum bins.
func binCount(n int) int { return n/2 + 1 }

// PowerSpectrum fills out[0:K] with the power spectrum of s.
func PowerSpectrum(s Spectrum, out []float64) {
	k := binCount(len(s))
	for i := 0; i < k; i++ {
		out[i] = s.Power(i)
	}
}

// MagnitudeSpectrum fills out[0:K] with the magnitude spectrum of s.
func MagnitudeSpectrum(s Spectrum, out []float64) {
	k := binCount(len(s))
	for i := 0; i < k; i++ {
		out[i] = s.Magnitude(i)
	}
}

// ScaleBin multiplies bin k's complex value by a real gain g, in place.
func (s Spectrum) ScaleBin(k int, g float64) {
	n := len(s)
	s[k] *= g
	if k != 0 && k != n/2 {
		s[n-k] *= g
	}
}

// sanitizeDenormal flushes NaN/Inf/subnormal values to zero.
func sanitizeDenormal(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	// Denormals carry negligible energy and are a known source of
	// pathological slowdown in tight per-sample loops on some platforms;
	// flushing them to zero is numerically invisible here.
	if x != 0 && math.Abs(x) < 1e-300 {
		return 0
	}
	return x
}

// finiteOr returns x if it is finite, else fallback.
func finiteOr(x, fallback float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return fallback
	}
	return x
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func dbToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

func linearToDB(lin float64) float64 {
	return 20 * math.Log10(maxFloat(lin, SpectralEpsilon))
}

func powerRatioToDB(ratio float64) float64 {
	return 10 * math.Log10(maxFloat(ratio, SpectralEpsilon))
}
