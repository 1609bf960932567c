package signal_test

import (
	"sync"
	"testing"
	"time"

	"github.com/sigflow/sigflow/signal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frameAt(tick uint64) signal.Frame {
	return signal.Frame{
		Data:      signal.Float64{{float64(tick)}},
		Timestamp: time.Duration(tick) * time.Millisecond,
		Tick:      tick,
	}
}

func TestRingFIFO(t *testing.T) {
	r := signal.NewRing(4, nil)
	for tick := uint64(0); tick < 4; tick++ {
		r.Push(frameAt(tick))
	}
	require.Equal(t, 4, r.Len())

	for tick := uint64(0); tick < 4; tick++ {
		f, ok := r.Pop()
		require.True(t, ok)
		assert.Equal(t, tick, f.Tick)
	}
	_, ok := r.Pop()
	assert.False(t, ok)
	assert.Equal(t, uint64(0), r.Overruns())
}

func TestRingDropsOldest(t *testing.T) {
	dropped := 0
	r := signal.NewRing(10, func() { dropped++ })

	// A burst of 15 frames into a ring of 10 drops exactly the 5 oldest.
	for tick := uint64(0); tick < 15; tick++ {
		r.Push(frameAt(tick))
	}
	assert.Equal(t, 5, dropped)
	assert.Equal(t, uint64(5), r.Overruns())
	require.Equal(t, 10, r.Len())

	for tick := uint64(5); tick < 15; tick++ {
		f, ok := r.Pop()
		require.True(t, ok)
		assert.Equal(t, tick, f.Tick)
	}
}

func TestRingInterleaved(t *testing.T) {
	r := signal.NewRing(2, nil)
	r.Push(frameAt(0))
	r.Push(frameAt(1))
	f, ok := r.Pop()
	require.True(t, ok)
	assert.Equal(t, uint64(0), f.Tick)

	r.Push(frameAt(2))
	r.Push(frameAt(3))
	assert.Equal(t, uint64(1), r.Overruns())

	f, ok = r.Pop()
	require.True(t, ok)
	assert.Equal(t, uint64(2), f.Tick)
	f, ok = r.Pop()
	require.True(t, ok)
	assert.Equal(t, uint64(3), f.Tick)
}

func TestRingConcurrentPush(t *testing.T) {
	r := signal.NewRing(64, nil)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				r.Push(frameAt(uint64(i)))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 64, r.Len())
	assert.Equal(t, uint64(8*100-64), r.Overruns())
}
