package specbleach

// ScalingType selects the oversubtraction/undersubtraction strategy.
type ScalingType int

const (
	ScalingAPosterioriSNR ScalingType = iota
	ScalingAPosterioriSNRCriticalBands
	ScalingMaskingThresholds
)

// ScalingParams are the inputs to every strategy: the oversubtraction
// and undersubtraction values to use at the "fully audible" end of each
// strategy's interpolation.
type ScalingParams struct {
	Over  float64
	Under float64
}

// Scaler computes per-bin alpha (oversubtraction) and beta
// (undersubtraction) from a reference spectrum and a noise estimate.
type Scaler struct {
	scalingType ScalingType
	bands       *CriticalBands
	masking     *MaskingEstimator

	bandRef   []float64
	bandNoise []float64
	clean     []float64
	threshold []float64
}

// NewScaler constructs a Scaler. bands and masking may be nil unless
// scalingType requires them (ScalingAPosterioriSNRCriticalBands needs
// bands; ScalingMaskingThresholds needs masking).
func NewScaler(scalingType ScalingType, k int, bands *CriticalBands, masking *MaskingEstimator) *Scaler {
	s := &Scaler{scalingType: scalingType, bands: bands, masking: masking}
	if bands != nil {
		nb := bands.NumberOfBands()
		s.bandRef = make([]float64, nb)
		s.bandNoise = make([]float64, nb)
	}
	s.clean = make([]float64, k)
	s.threshold = make([]float64, k)
	return s
}

// SetScalingType switches strategy (an RT-safe parameter change: no new
// allocation is needed since the scratch buffers above are already sized).
func (s *Scaler) SetScalingType(t ScalingType) { s.scalingType = t }

// Compute fills alpha[0:K] and beta[0:K] from reference spectrum x and
// noise estimate n.
func (s *Scaler) Compute(x, n []float64, params ScalingParams, alpha, beta []float64) {
	switch s.scalingType {
	case ScalingAPosterioriSNRCriticalBands:
		s.computeCriticalBands(x, n, params, alpha, beta)
	case ScalingMaskingThresholds:
		s.computeMasking(x, n, params, alpha, beta)
	case ScalingAPosterioriSNR:
		fallthrough
	default:
		s.computeGlobalSNR(x, n, params, alpha, beta)
	}
}

// snrToAlphaBeta applies a piecewise-linear map: snrDB <= LowerSNRdB maps
// to (over, under); snrDB >= HigherSNRdB maps to (AlphaMin, BetaMin);
// between the two it interpolates linearly.
func snrToAlphaBeta(snrDB, over, under float64) (alpha, beta float64) {
	switch {
	case snrDB <= LowerSNRdB:
		return over, under
	case snrDB >= HigherSNRdB:
		return AlphaMin, BetaMin
	default:
		t := (snrDB - LowerSNRdB) / (HigherSNRdB - LowerSNRdB)
		alpha = over + t*(AlphaMin-over)
		beta = under + t*(BetaMin-under)
		return
	}
}

func (s *Scaler) computeGlobalSNR(x, n []float64, params ScalingParams, alpha, beta []float64) {
	var sumX, sumN float64
	for k := range x {
		sumX += x[k]
		sumN += n[k]
	}
	snrDB := powerRatioToDB(sumX / maxFloat(sumN, SpectralEpsilon))
	a, b := snrToAlphaBeta(snrDB, params.Over, params.Under)
	for k := range alpha {
		alpha[k] = a
		beta[k] = b
	}
}

func (s *Scaler) computeCriticalBands(x, n []float64, params ScalingParams, alpha, beta []float64) {
	s.bands.ComputeCriticalBandsSpectrum(x, s.bandRef)
	s.bands.ComputeCriticalBandsSpectrum(n, s.bandNoise)
	for j := 0; j < s.bands.NumberOfBands(); j++ {
		snrDB := powerRatioToDB(s.bandRef[j] / maxFloat(s.bandNoise[j], SpectralEpsilon))
		a, b := snrToAlphaBeta(snrDB, params.Over, params.Under)
		start, end := s.bands.BandIndexes(j)
		for k := start; k < end; k++ {
			alpha[k] = a
			beta[k] = b
		}
	}
}

func (s *Scaler) computeMasking(x, n []float64, params ScalingParams, alpha, beta []float64) {
	for k := range x {
		s.clean[k] = maxFloat(x[k]-n[k], 0)
	}
	s.masking.ComputeMaskingThresholds(s.clean, s.threshold)

	elasticOver := AlphaMin + (params.Over-AlphaMin)*ElasticProtectionFactor
	for k := range x {
		nmrDB := powerRatioToDB(n[k] / maxFloat(s.threshold[k], SpectralEpsilon))
		switch {
		case nmrDB <= LowerSNRdB:
			alpha[k] = elasticOver
			beta[k] = BetaMin
		case nmrDB >= HigherSNRdB:
			alpha[k] = params.Over
			beta[k] = params.Under
		default:
			t := (nmrDB - LowerSNRdB) / (HigherSNRdB - LowerSNRdB)
			alpha[k] = elasticOver + t*(params.Over-elasticOver)
			beta[k] = BetaMin + t*(params.Under-BetaMin)
		}
	}
}
