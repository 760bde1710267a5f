package specbleach

import (
	"math"
	"sort"
)

// brandtEstimator implements a trimmed-mean-over-a-sliding-window noise
// tracker: per bin, a history ring is sorted, a handful of candidate
// truncation percentiles are each turned into a bias-corrected trimmed
// mean, and the candidate whose truncated distribution best matches a
// truncated-exponential model (by an Anderson-Darling-like statistic) is
// accepted as the new noise estimate, provided the fit is good enough.
type brandtEstimator struct {
	k           int
	historySize int

	history [][]float64 // per-bin ring of historySize values
	head    []int        // per-bin ring head
	filled  []int

	sorted []float64 // scratch, length historySize
	noise  []float64 // last accepted/held estimate

	firstFrame bool
	frameIndex int
}

var brandtPercentiles = []float64{0.10, 0.25, 0.5, 0.75, 1.0}

const brandtMinQ = 10

func newBrandtEstimator(k int, hopSeconds float64) *brandtEstimator {
	// historySize is derived from a duration and the frame hop: use a
	// 2-second window, which at typical 10-25ms hops gives a history
	// comfortably above brandtMinQ even at P=0.10.
	const historyMS = 2000.0
	size := int(historyMS/1000.0/hopSeconds + 0.5)
	if size < brandtMinQ*10 {
		size = brandtMinQ * 10
	}

	e := &brandtEstimator{
		k:           k,
		historySize: size,
		sorted:      make([]float64, size),
		noise:       make([]float64, k),
		firstFrame:  true,
	}
	e.history = make([][]float64, k)
	e.head = make([]int, k)
	e.filled = make([]int, k)
	for i := range e.history {
		e.history[i] = make([]float64, size)
	}
	return e
}

func biasCorrection(pctl float64) float64 {
	if pctl >= 1.0 {
		return 1.0
	}
	return 1.0 / (1.0 + ((1-pctl)/pctl)*math.Log(1-pctl))
}

// andersonDarling computes a truncated-exponential goodness-of-fit
// statistic for the lowest q values of sorted (ascending), against an
// exponential model with mean mu, truncated at b = sorted[q-1].
func andersonDarling(sorted []float64, q int, mu, b float64) float64 {
	if mu <= 0 || b <= 0 {
		return math.Inf(1)
	}
	cdf := func(x float64) float64 {
		return clamp(1-math.Exp(-x/mu), 1e-9, 1-1e-9)
	}
	fb := cdf(b)
	var ad float64
	n := float64(q)
	for i := 0; i < q; i++ {
		// Truncated CDF: F(x)/F(b), rescaled to [0,1] over the truncated range.
		fx := cdf(sorted[i]) / fb
		fx = clamp(fx, 1e-9, 1-1e-9)
		fxn := cdf(sorted[q-1-i]) / fb
		fxn = clamp(fxn, 1e-9, 1-1e-9)
		w := float64(2*(i+1) - 1)
		ad += w * (math.Log(fx) + math.Log(1-fxn))
	}
	ad = -n - ad/n
	return finiteOr(ad, math.Inf(1))
}

func (e *brandtEstimator) run(in, out []float64) {
	if silenceGate(in) {
		if e.firstFrame {
			for i := range out {
				out[i] = 0
			}
			e.firstFrame = false
			return
		}
		copy(out, e.noise)
		return
	}

	if e.firstFrame {
		e.seed(in)
		e.firstFrame = false
	}

	for k := 0; k < e.k; k++ {
		h := e.history[k]
		h[e.head[k]] = in[k]
		e.head[k] = (e.head[k] + 1) % e.historySize
		if e.filled[k] < e.historySize {
			e.filled[k]++
		}
		depth := e.filled[k]

		copy(e.sorted[:depth], h[:depth])
		sort.Float64s(e.sorted[:depth])

		bestAD := math.Inf(1)
		bestMu := e.noise[k]
		found := false
		for _, pctl := range brandtPercentiles {
			q := int(pctl * float64(depth))
			if q < brandtMinQ || q > depth {
				continue
			}
			var sum float64
			for i := 0; i < q; i++ {
				sum += e.sorted[i]
			}
			muT := sum / float64(q)
			c := biasCorrection(pctl)
			mu := muT * c
			ad := andersonDarling(e.sorted[:depth], q, mu, e.sorted[q-1])
			if ad < bestAD {
				bestAD = ad
				bestMu = mu
				found = true
			}
		}

		if found && (1-bestAD) >= BrandtMinConfidence {
			e.noise[k] = bestMu
		}
		out[k] = e.noise[k]
	}
	e.frameIndex++
}

// seed fills the history with a jittered copy of the first non-silent
// frame, avoiding exact ties that would otherwise make every candidate
// percentile's sorted window degenerate.
func (e *brandtEstimator) seed(in []float64) {
	c := biasCorrection(0.5)
	for k := 0; k < e.k; k++ {
		base := in[k] / maxFloat(c, SpectralEpsilon)
		for i := 0; i < e.historySize; i++ {
			sign := 1.0
			if (k+i)%2 == 1 {
				sign = -1.0
			}
			jitter := 1.0 + sign*0.01
			e.history[k][i] = base * jitter
		}
		e.filled[k] = e.historySize
		e.noise[k] = base
	}
}

func (e *brandtEstimator) setState(profile []float64) {
	copy(e.noise, profile)
	e.firstFrame = false
}

func (e *brandtEstimator) updateSeed(profile []float64) {
	if !e.firstFrame {
		return
	}
	e.seed(profile)
	e.firstFrame = false
}

func (e *brandtEstimator) applyFloor(floor []float64) {
	for k := range e.noise {
		e.noise[k] = maxFloat(e.noise[k], floor[k])
	}
}
