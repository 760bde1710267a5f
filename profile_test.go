package specbleach

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// Property 5: after learning, profile_MAX[k] >= profile_MEAN[k] for every
// k >= 1 (the max-hold mode can never fall below the running mean of the
// same data).
func TestProfileOrdering(t *testing.T) {
	const k = 16
	p := NewNoiseProfile(k)
	rng := rand.New(rand.NewSource(1))

	ref := make([]float64, k)
	for i := 0; i < 50; i++ {
		for j := range ref {
			ref[j] = rng.Float64() * 10
		}
		p.Learn(ref)
	}

	mean := p.Values(ModeRollingMean)
	max := p.Values(ModeMax)
	for kBin := 1; kBin < k; kBin++ {
		require.GreaterOrEqual(t, max[kBin], mean[kBin])
	}
}

func TestProfileRollingMeanAvailability(t *testing.T) {
	const k = 8
	p := NewNoiseProfile(k)
	ref := make([]float64, k)
	for i := range ref {
		ref[i] = 1
	}

	for i := 0; i < MinNumberOfWindowsNoiseAveraged; i++ {
		p.Learn(ref)
		require.False(t, p.Available(ModeRollingMean))
	}
	p.Learn(ref)
	require.True(t, p.Available(ModeRollingMean))
}

func TestProfileMedianAvailability(t *testing.T) {
	const k = 8
	p := NewNoiseProfile(k)
	ref := make([]float64, k)
	for i := range ref {
		ref[i] = 1
	}
	for i := 0; i < NumberOfMedianSpectrum-1; i++ {
		p.Learn(ref)
		require.False(t, p.Available(ModeMedian))
	}
	p.Learn(ref)
	require.True(t, p.Available(ModeMedian))
}

// S5: learn, copy the profile out, reset, then load the copy back with an
// explicit block count -- the reloaded profile's values match exactly.
func TestProfileSaveResetLoadRoundtrip(t *testing.T) {
	const k = 8
	p := NewNoiseProfile(k)
	ref := make([]float64, k)
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 10; i++ {
		for j := range ref {
			ref[j] = rng.Float64() * 5
		}
		p.Learn(ref)
	}
	require.True(t, p.Available(ModeRollingMean))

	saved := append([]float64(nil), p.Values(ModeRollingMean)...)
	blocks := p.BlocksAveraged(ModeRollingMean)

	p.Reset()
	require.False(t, p.Available(ModeRollingMean))

	require.True(t, p.Load(ModeRollingMean, saved, blocks))
	require.True(t, p.Available(ModeRollingMean))
	require.Equal(t, saved, p.Values(ModeRollingMean))
	require.Equal(t, blocks, p.BlocksAveraged(ModeRollingMean))
}

func TestProfileLoadSizeMismatchRejected(t *testing.T) {
	p := NewNoiseProfile(8)
	require.False(t, p.Load(ModeRollingMean, make([]float64, 4), 3))
	require.False(t, p.Available(ModeRollingMean))
}

func TestProfileMarshalRoundtrip(t *testing.T) {
	const k = 8
	p := NewNoiseProfile(k)
	ref := make([]float64, k)
	for i := range ref {
		ref[i] = float64(i) + 1
	}
	for i := 0; i < 10; i++ {
		p.Learn(ref)
	}

	data, err := p.MarshalBinary()
	require.NoError(t, err)

	q := NewNoiseProfile(k)
	require.NoError(t, q.UnmarshalBinary(data))
	for m := ModeRollingMean; m <= ModeMax; m++ {
		require.Equal(t, p.Values(m), q.Values(m))
		require.Equal(t, p.BlocksAveraged(m), q.BlocksAveraged(m))
		require.Equal(t, p.Available(m), q.Available(m))
	}
}
