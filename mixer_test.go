package specbleach

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// Property 4: for a fixed frame, the clean output and the residual output
// computed from the same gain vector sum back to the original spectrum.
func TestMixerResidualSumsToInput(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := 16
		spec := make(Spectrum, n)
		for i := range spec {
			spec[i] = rapid.Float64Range(-5, 5).Draw(rt, "spec")
		}
		gain := make([]float64, n)
		for i := 0; i <= n/2; i++ {
			g := rapid.Float64Range(0, 1).Draw(rt, "gain")
			gain[i] = g
			if i != 0 && i != n/2 {
				gain[n-i] = g
			}
		}

		clean := make(Spectrum, n)
		residual := make(Spectrum, n)
		copy(clean, spec)
		copy(residual, spec)

		m := NewMixer()
		m.Mix(clean, gain, false)
		m.Mix(residual, gain, true)

		for i := range spec {
			require.InDelta(t, spec[i], clean[i]+residual[i], 1e-9)
		}
	})
}
