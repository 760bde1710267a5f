package specbleach

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Property 7: pushing T identical frames through the NLM ring yields an
// output equal to the common input frame, since every candidate patch is
// then an exact match for the target patch (distance 0, maximal weight).
func TestNlmUniformFixedPoint(t *testing.T) {
	const k = 32
	ring := NewNlmRingBuffer(k, 4, 1, 4, 2, 4)
	sm := NewNlmSmoother(ring)
	sm.SetH(0.5)

	frame := make([]float64, k)
	for i := range frame {
		frame[i] = 1.2
	}

	out := make([]float64, k)
	t_ := ring.t
	for i := 0; i < t_; i++ {
		ring.Push(frame)
	}
	require.True(t, ring.Ready())
	require.True(t, ring.TargetReady())

	sm.Run(out)
	for i := range out {
		require.InDelta(t, frame[i], out[i], 0.01)
	}
}

// TargetReady only requires future+1 pushes, well before the ring is
// completely full (Ready requires past+future+1).
func TestNlmTargetReadyPrecedesReady(t *testing.T) {
	ring := NewNlmRingBuffer(8, 4, 1, 4, 2, 4)
	frame := make([]float64, 8)

	require.False(t, ring.TargetReady())
	require.False(t, ring.Ready())

	ring.Push(frame) // pushed=1 > future(1)? no, 1 > 1 is false
	require.False(t, ring.TargetReady())

	ring.Push(frame) // pushed=2 > 1
	require.True(t, ring.TargetReady())
	require.False(t, ring.Ready()) // pushed=2 < t=6
}

func TestNlmRingBufferFrameAt(t *testing.T) {
	ring := NewNlmRingBuffer(2, 1, 1, 1, 1, 1)
	f0 := []float64{1, 1}
	f1 := []float64{2, 2}
	f2 := []float64{3, 3}
	ring.Push(f0)
	ring.Push(f1)
	ring.Push(f2)

	require.Equal(t, f2, ring.frameAt(0))
	require.Equal(t, f1, ring.frameAt(1))
	require.Equal(t, f0, ring.frameAt(2))
}
