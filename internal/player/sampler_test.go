package player

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestSampler_RunsOnlyWhilePlaying(t *testing.T) {
	p, _ := newTestPlayer(t, Config{})

	// Loading: no sampler
	p.startPlayback(0)
	p.syncSampler()
	assert.False(t, p.SamplerRunning())

	// Playing: sampler starts and mirrors position
	p.update()
	p.syncSampler()
	require.True(t, p.SamplerRunning())

	require.Eventually(t, func() bool {
		return p.PositionWrites() > 0
	}, time.Second, 10*time.Millisecond)

	// Paused: sampler stops and no further writes land
	p.TogglePlayPause()
	p.syncSampler()
	assert.False(t, p.SamplerRunning())

	writes := p.PositionWrites()
	time.Sleep(4 * sampleInterval)
	assert.Equal(t, writes, p.PositionWrites())
}

func TestSampler_StopsOnEndOfStream(t *testing.T) {
	p, src := newTestPlayer(t, Config{})
	startPlaying(t, p)
	p.syncSampler()
	require.True(t, p.SamplerRunning())

	src.Pause()
	p.update()
	require.Equal(t, StateEnded, p.currentState())

	p.syncSampler()
	assert.False(t, p.SamplerRunning())
}

func TestSampler_RestartsAcrossPauseCycles(t *testing.T) {
	p, _ := newTestPlayer(t, Config{})
	startPlaying(t, p)
	p.syncSampler()

	for range 3 {
		p.TogglePlayPause() // pause
		p.syncSampler()
		assert.False(t, p.SamplerRunning())

		p.TogglePlayPause() // play
		p.update()
		p.syncSampler()
		assert.True(t, p.SamplerRunning())
	}
}

func TestSampler_MirrorsMediaPosition(t *testing.T) {
	p, src := newTestPlayer(t, Config{})
	startPlaying(t, p)
	p.syncSampler()

	require.Eventually(t, func() bool {
		return p.currentPosition() > 0
	}, time.Second, 10*time.Millisecond)

	pos, ok := src.Position()
	require.True(t, ok)
	assert.InDelta(t, float64(pos), float64(p.currentPosition()), float64(50*time.Millisecond))
}

// Drives a whole session through Run and verifies every goroutine the
// session started is gone after close.
func TestSession_RunAndClose_NoLeaks(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := newFakeSource()
	p, err := New(Config{
		Source:  src,
		Backend: newFakeBackend(),
		MovieID: "tt0137523",
		UserID:  "user-1",
		Title:   "Fight Club",
		Screen:  tcell.NewSimulationScreen("UTF-8"),
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)

	go p.Run()

	// The session reaches playing and the sampler produces writes
	require.Eventually(t, func() bool {
		return p.currentState() == StatePlaying && p.PositionWrites() > 0
	}, 5*time.Second, 20*time.Millisecond)

	p.Close()
	select {
	case <-p.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("session did not shut down")
	}

	// Teardown stopped the sampler for good
	writes := p.PositionWrites()
	time.Sleep(4 * sampleInterval)
	assert.Equal(t, writes, p.PositionWrites())
	assert.False(t, src.Running())
}
