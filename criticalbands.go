package specbleach

// BandScale selects the critical-band boundary table.
type BandScale int

const (
	BandScaleBark BandScale = iota
	BandScaleOpus
)

// bandRange is one critical band's [start, end) bin index range.
type bandRange struct{ start, end int }

// CriticalBands exposes the compiled band-boundary table for a given
// sample rate, FFT size and scale.
type CriticalBands struct {
	bands []bandRange
}

// barkEdgesHz are the standard 24-band Bark scale boundaries in Hz (Zwicker).
var barkEdgesHz = []float64{
	0, 100, 200, 300, 400, 510, 630, 770, 920, 1080, 1270, 1480, 1720,
	2000, 2320, 2700, 3150, 3700, 4400, 5300, 6400, 7700, 9500, 12000, 15500,
}

// opusEdgesHz is the Opus-scale table: the Bark edges above plus one more
// edge at 20 kHz (25 bands), so it extends a touch further than Bark for
// full-band (48kHz) material. Below 15.5 kHz its bands are the Bark bands.
var opusEdgesHz = []float64{
	0, 100, 200, 300, 400, 510, 630, 770, 920, 1080, 1270, 1480, 1720,
	2000, 2320, 2700, 3150, 3700, 4400, 5300, 6400, 7700, 9500, 12000, 15500, 20000,
}

// NewCriticalBands compiles the band table for the given scale, sample
// rate and FFT size n.
func NewCriticalBands(scale BandScale, sampleRate, n int) *CriticalBands {
	edges := barkEdgesHz
	if scale == BandScaleOpus {
		edges = opusEdgesHz
	}
	k := binCount(n)
	nyquist := float64(sampleRate) / 2

	cb := &CriticalBands{}
	hzToBin := func(hz float64) int {
		if hz > nyquist {
			hz = nyquist
		}
		bin := int(hz / nyquist * float64(k-1))
		return bin
	}
	for i := 0; i < len(edges)-1; i++ {
		start := hzToBin(edges[i])
		end := hzToBin(edges[i+1])
		if end <= start {
			end = start + 1
		}
		if start >= k {
			break
		}
		if end > k {
			end = k
		}
		cb.bands = append(cb.bands, bandRange{start, end})
	}
	// Make sure the table always reaches the Nyquist bin even if the last
	// edge fell short of it (bins beyond the table's last edge but below
	// Nyquist are folded into the final band).
	if len(cb.bands) > 0 {
		cb.bands[len(cb.bands)-1].end = k
	}
	return cb
}

// NumberOfBands returns the number of compiled bands.
func (cb *CriticalBands) NumberOfBands() int { return len(cb.bands) }

// BandIndexes returns the [start, end) bin range of band j.
func (cb *CriticalBands) BandIndexes(j int) (start, end int) {
	b := cb.bands[j]
	return b.start, b.end
}

// ComputeCriticalBandsSpectrum sums bin energies in[0:K] into their bands,
// writing NumberOfBands() values into out.
func (cb *CriticalBands) ComputeCriticalBandsSpectrum(in []float64, out []float64) {
	for j, b := range cb.bands {
		var sum float64
		for k := b.start; k < b.end; k++ {
			sum += in[k]
		}
		out[j] = sum
	}
}
