package specbleach

import "math"

// NlmRingBuffer rings T = past+future+1 SNR frames of length K, and the
// scratch weight accumulators the NLM search writes into.
type NlmRingBuffer struct {
	k          int
	past       int
	future     int
	patch      int
	pasteBlock int
	freqSearch int
	t          int // past + future + 1

	frames   [][]float64 // ring of T frames, length K each
	head     int         // index of the most recently pushed frame
	pushed   int

	accum  []float64 // per-bin accumulated weighted sum, length K
	weight []float64 // per-bin accumulated weight, length K
}

// NewNlmRingBuffer constructs a ring with the given lookback/lookahead/patch
// geometry.
func NewNlmRingBuffer(k, past, future, patch, pasteBlock, freqSearch int) *NlmRingBuffer {
	t := past + future + 1
	r := &NlmRingBuffer{
		k: k, past: past, future: future, patch: patch,
		pasteBlock: pasteBlock, freqSearch: freqSearch, t: t,
		accum:  make([]float64, k),
		weight: make([]float64, k),
	}
	r.frames = make([][]float64, t)
	for i := range r.frames {
		r.frames[i] = make([]float64, k)
	}
	r.head = t - 1
	return r
}

// Ready reports whether T frames have been pushed; once true it stays true.
// Candidate frames from before the ring filled read back as zero, which the
// patch-distance search naturally excludes from the weighted average (a
// zero candidate is far from any real target unless the signal itself is
// silence) -- so a caller does not have to wait for full Ready() before
// calling Run; see TargetReady.
func (r *NlmRingBuffer) Ready() bool { return r.pushed >= r.t }

// TargetReady reports whether the frame Run will center its output on (the
// one `future` pushes behind the most recent) has actually been pushed,
// rather than being a zero-initialized placeholder. This is the true
// latency gate: it only requires `future+1` pushes, not a full ring of `T`,
// which is what keeps the 2D variant's advertised latency at
// L + future*H rather than L + (past+future)*H.
func (r *NlmRingBuffer) TargetReady() bool { return r.pushed > r.future }

// Push inserts a new SNR frame, overwriting the oldest.
func (r *NlmRingBuffer) Push(snr []float64) {
	r.head = (r.head + 1) % r.t
	copy(r.frames[r.head], snr)
	r.pushed++
}

// frameAt returns the frame that sits `offset` frames behind the most
// recently pushed one (offset 0 = most recent, offset = t-1 = oldest).
func (r *NlmRingBuffer) frameAt(offset int) []float64 {
	idx := ((r.head-offset)%r.t + r.t) % r.t
	return r.frames[idx]
}

// targetOffset is the offset, from the most recently pushed frame, of the
// frame the NLM output aligns to: `future` frames behind the most recent
// push.
func (r *NlmRingBuffer) targetOffset() int { return r.future }

// NlmSmoother runs the Non-Local-Means time-frequency smoothing pass.
type NlmSmoother struct {
	ring *NlmRingBuffer
	h    float64 // smoothing_factor
}

// NewNlmSmoother constructs a smoother sharing the given ring.
func NewNlmSmoother(ring *NlmRingBuffer) *NlmSmoother {
	return &NlmSmoother{ring: ring}
}

// SetH sets the NLM smoothing_factor parameter.
func (s *NlmSmoother) SetH(h float64) {
	if h <= 0 {
		h = SpectralEpsilon
	}
	s.h = h
}

// Run searches the ring for self-similar patches and produces the
// NLM-smoothed output frame (length K) aligned to the target frame. It
// does not push; callers should push the new frame into the ring first,
// then call Run once TargetReady() is true.
func (s *NlmSmoother) Run(out []float64) {
	r := s.ring
	k := r.k
	for i := range r.accum {
		r.accum[i] = 0
		r.weight[i] = 0
	}

	target := r.frameAt(r.targetOffset())
	h2 := s.h * s.h
	maxDist := 4 * h2

	for blockStart := 0; blockStart < k; blockStart += r.pasteBlock {
		blockEnd := blockStart + r.pasteBlock
		if blockEnd > k {
			blockEnd = k
		}

		for dt := -r.past; dt <= r.future; dt++ {
			candidateOffset := r.targetOffset() - dt
			if candidateOffset < 0 || candidateOffset >= r.t {
				continue
			}
			candidate := r.frameAt(candidateOffset)

			for df := -r.freqSearch; df <= r.freqSearch; df++ {
				dist := patchDistance(target, candidate, blockStart, df, r.patch, k)
				if dist > maxDist {
					continue
				}
				weight := math.Exp(-dist / h2)

				for b := blockStart; b < blockEnd; b++ {
					src := b + df
					if src < 0 || src >= k {
						continue
					}
					r.accum[b] += weight * candidate[src]
					r.weight[b] += weight
				}
			}
		}
	}

	for i := 0; i < k; i++ {
		if r.weight[i] > SpectralEpsilon {
			out[i] = r.accum[i] / r.weight[i]
		} else {
			out[i] = target[i]
		}
	}
}

// patchDistance computes the sum of squared differences between a
// patch-long run of bins centered at blockStart in target and the
// frequency-shifted-by-df run in candidate, clamping indices at the
// spectrum edges. The patch spans frequency only: neighbouring frames of
// target and candidate are not part of it.
func patchDistance(target, candidate []float64, center, df, patch, k int) float64 {
	half := patch / 2
	var sum float64
	for d := -half; d < patch-half; d++ {
		ti := clampIndex(center+d, k)
		ci := clampIndex(center+d+df, k)
		diff := target[ti] - candidate[ci]
		sum += diff * diff
	}
	return sum
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
