package specbleach

// martinEstimator implements minimum-statistics noise PSD tracking: a
// smoothed PSD tracks a running minimum within a sub-window; at each sub-window
// boundary the minimum is archived into a ring of historical minima and
// the running minimum resets, so the overall noise floor estimate is the
// minimum over a sliding ~1.5s history rather than just the current
// sub-window (this is what lets the tracker recover from a burst of
// speech/noise energy instead of getting stuck high).
type martinEstimator struct {
	k int

	smoothed []float64   // P, smoothed PSD
	curMin   []float64   // M_cur, running minimum of the current sub-window
	history  [][]float64 // ring of MartinSubwinCount archived sub-window minima
	head     int

	subwinLen  int // frames per sub-window
	frameInSub int
	firstFrame bool
}

const martinSmoothAlpha = 0.7

func newMartinEstimator(k int, hopSeconds float64) *martinEstimator {
	// Martin (2001) recommends roughly 1.5s of total tracking history. At
	// MartinSubwinCount sub-windows, each sub-window covers
	// 1.5/MartinSubwinCount seconds; convert to frames via the engine's
	// hop duration.
	subwinSeconds := 1.5 / float64(MartinSubwinCount)
	subwinLen := int(subwinSeconds/hopSeconds + 0.5)
	if subwinLen < 1 {
		subwinLen = 1
	}

	e := &martinEstimator{
		k:          k,
		smoothed:   make([]float64, k),
		curMin:     make([]float64, k),
		subwinLen:  subwinLen,
		firstFrame: true,
	}
	e.history = make([][]float64, MartinSubwinCount)
	for i := range e.history {
		e.history[i] = make([]float64, k)
	}
	return e
}

func (e *martinEstimator) run(in, out []float64) {
	if silenceGate(in) {
		if e.firstFrame {
			for i := range out {
				out[i] = 0
			}
			e.firstFrame = false
			return
		}
		e.readOut(out)
		return
	}

	if e.firstFrame {
		for k := 0; k < e.k; k++ {
			e.smoothed[k] = in[k]
			e.curMin[k] = in[k]
			for i := range e.history {
				e.history[i][k] = in[k]
			}
		}
		e.firstFrame = false
	}

	for k := 0; k < e.k; k++ {
		p := martinSmoothAlpha*e.smoothed[k] + (1-martinSmoothAlpha)*in[k]
		e.smoothed[k] = p
		if p < e.curMin[k] {
			e.curMin[k] = p
		}
	}

	e.frameInSub++
	if e.frameInSub >= e.subwinLen {
		e.history[e.head] = append(e.history[e.head][:0], e.curMin...)
		e.head = (e.head + 1) % len(e.history)
		copy(e.curMin, e.smoothed)
		e.frameInSub = 0
	}

	e.readOut(out)
}

func (e *martinEstimator) readOut(out []float64) {
	for k := 0; k < e.k; k++ {
		m := e.curMin[k]
		for _, h := range e.history {
			m = minFloat(m, h[k])
		}
		out[k] = MartinBiasCorr * m
	}
}

func (e *martinEstimator) setState(profile []float64) {
	copy(e.curMin, profile)
	copy(e.smoothed, profile)
	for _, h := range e.history {
		copy(h, profile)
	}
	e.firstFrame = false
}

func (e *martinEstimator) updateSeed(profile []float64) {
	if !e.firstFrame {
		return
	}
	e.setState(profile)
}

func (e *martinEstimator) applyFloor(floor []float64) {
	for k := range e.curMin {
		e.curMin[k] = maxFloat(e.curMin[k], floor[k])
		e.smoothed[k] = maxFloat(e.smoothed[k], floor[k])
	}
}
