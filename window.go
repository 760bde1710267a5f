package specbleach

import "math"

// WindowType selects an analysis/synthesis window shape.
type WindowType int

const (
	WindowHann WindowType = iota
	WindowHamming
	WindowBlackman
	WindowVorbis
	// WindowCosine and WindowFlatTop are additional taper shapes available
	// to a caller that wants something other than the four core windows.
	WindowCosine
	WindowFlatTop
)

// NewWindow returns a length-n window of the given type. For n <= 1 it
// returns a single unity sample.
func NewWindow(t WindowType, n int) []float64 {
	if n <= 1 {
		return []float64{1.0}
	}
	w := make([]float64, n)
	switch t {
	case WindowHamming:
		for i := range w {
			w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		}
	case WindowBlackman:
		for i := range w {
			x := float64(i) / float64(n-1)
			w[i] = 0.42 - 0.5*math.Cos(2*math.Pi*x) + 0.08*math.Cos(4*math.Pi*x)
		}
	case WindowVorbis:
		for i := range w {
			s := math.Sin(math.Pi / 2 * sq(math.Sin(math.Pi*float64(i)/float64(n))))
			w[i] = s
		}
	case WindowCosine:
		center := 0.5 * float64(n-1)
		for i := range w {
			w[i] = math.Cos((float64(i) - center) / float64(n) * math.Pi)
		}
	case WindowFlatTop:
		for i := range w {
			x := float64(i) * 2 * math.Pi / float64(n-1)
			w[i] = 1.0 - 1.93*math.Cos(x) + 1.29*math.Cos(2*x) -
				0.388*math.Cos(3*x) + 0.028*math.Cos(4*x)
		}
	case WindowHann:
		fallthrough
	default:
		for i := range w {
			w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		}
	}
	return w
}

func sq(x float64) float64 { return x * x }

// rightHalfHamming returns the right half of a length-(2n-1) Hamming
// window, of length n: a monotonically decreasing taper from 1.0 down to
// the Hamming endpoint value, used by the noise-floor manager to roll off whitening weights at high frequency.
func rightHalfHamming(n int) []float64 {
	full := NewWindow(WindowHamming, 2*n-1)
	return full[n-1:]
}
