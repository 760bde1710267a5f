package specbleach

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func preloadedTwoDHandle(t *testing.T, sampleRate uint32) *TwoDHandle {
	h, err := InitializeTwoD(sampleRate, 46, DefaultEngineConfig())
	require.NoError(t, err)
	require.NotNil(t, h)

	k := int(h.GetNoiseProfileSize())
	profile := make([]float32, k)
	for i := range profile {
		profile[i] = 0.01
	}
	require.True(t, h.LoadNoiseProfileForMode(profile, k, MinNumberOfWindowsNoiseAveraged+1, ModeRollingMean))
	return h
}

// S6: get_latency() == L + future_frames*H, and sample get_latency() (the
// 0-indexed equivalent of the 1-indexed "get_latency()+1" in the scenario
// description) of a unit impulse's response is nonzero.
func TestTwoDLatencyContract(t *testing.T) {
	const sampleRate = 44100
	h := preloadedTwoDHandle(t, sampleRate)

	cfg := DefaultEngineConfig()
	require.Equal(t, h.stft.Latency()+cfg.NlmFuture*h.stft.HopSize(), h.GetLatency())

	p := DefaultParameterBlock()
	p.ReductionAmountDB = 20
	require.True(t, h.LoadParameters(p))

	l := h.GetLatency()
	require.Greater(t, l, 0)

	n := l + h.stft.HopSize()
	in := make([]float64, n)
	in[0] = 1.0

	out := make([]float64, n)
	require.True(t, h.Process(in, out))

	require.NotZero(t, out[l])
}

// Feeding pure zeros never produces anything but zeros, regardless of the
// NLM lookahead gate.
func TestTwoDZerosStayZero(t *testing.T) {
	const sampleRate = 44100
	h := preloadedTwoDHandle(t, sampleRate)
	p := DefaultParameterBlock()
	require.True(t, h.LoadParameters(p))

	in := make([]float64, h.GetLatency()*3)
	out := make([]float64, len(in))
	require.True(t, h.Process(in, out))
	for _, v := range out {
		require.Zero(t, v)
	}
}

func TestTwoDProfileManagement(t *testing.T) {
	h := preloadedTwoDHandle(t, 44100)
	require.True(t, h.NoiseProfileAvailableForMode(ModeRollingMean))
	require.False(t, h.NoiseProfileAvailableForMode(ModeMax))

	require.True(t, h.ResetNoiseProfile())
	require.False(t, h.NoiseProfileAvailable())
}
