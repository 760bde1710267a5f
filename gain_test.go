package specbleach

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// Property: with fixed signal energy, more noise energy in a bin can only
// decrease (never increase) that bin's Wiener gain.
func TestWienerGainMonotoneInNoise(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		x := rapid.Float64Range(1e-6, 10).Draw(rt, "x")
		n1 := rapid.Float64Range(0, 10).Draw(rt, "n1")
		n2 := n1 + rapid.Float64Range(0, 10).Draw(rt, "dn")
		alpha := rapid.Float64Range(AlphaMin, AlphaMax).Draw(rt, "alpha")
		beta := rapid.Float64Range(BetaMin, BetaMax).Draw(rt, "beta")

		gain := make([]float64, 1)
		computeWienerGain([]float64{x}, []float64{n1}, []float64{alpha}, []float64{beta}, gain)
		g1 := gain[0]
		computeWienerGain([]float64{x}, []float64{n2}, []float64{alpha}, []float64{beta}, gain)
		g2 := gain[0]

		require.GreaterOrEqual(rt, g1, g2-1e-12)
	})
}

func TestWienerGainBounded(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		k := 8
		x := make([]float64, k)
		n := make([]float64, k)
		alpha := make([]float64, k)
		beta := make([]float64, k)
		for i := 0; i < k; i++ {
			x[i] = rapid.Float64Range(0, 10).Draw(rt, "x")
			n[i] = rapid.Float64Range(0, 10).Draw(rt, "n")
			alpha[i] = rapid.Float64Range(AlphaMin, AlphaMax).Draw(rt, "alpha")
			beta[i] = rapid.Float64Range(BetaMin, BetaMax).Draw(rt, "beta")
		}
		gain := make([]float64, k)
		computeWienerGain(x, n, alpha, beta, gain)
		for i, g := range gain {
			require.GreaterOrEqual(t, g, beta[i]-1e-12)
			require.LessOrEqual(t, g, 1.0+1e-12)
		}
	})
}
