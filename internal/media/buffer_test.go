package media

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrame(ts time.Duration) *Frame {
	return &Frame{
		Image:     image.NewRGBA(image.Rect(0, 0, 2, 2)),
		Timestamp: ts,
	}
}

func TestFrameBuffer_StoreAndLoad(t *testing.T) {
	fb := NewFrameBuffer()
	epoch := fb.Epoch()

	require.True(t, fb.Store(testFrame(time.Second), epoch))

	f := fb.Load()
	require.NotNil(t, f)
	assert.Equal(t, time.Second, f.Timestamp)
	assert.Equal(t, uint64(1), fb.FrameCount())

	ts, ok := fb.Timestamp()
	assert.True(t, ok)
	assert.Equal(t, time.Second, ts)
}

func TestFrameBuffer_StaleEpochRejected(t *testing.T) {
	fb := NewFrameBuffer()
	oldEpoch := fb.Epoch()

	newEpoch := fb.Reset()
	require.NotEqual(t, oldEpoch, newEpoch)

	// A pipeline from before the reset cannot overwrite the buffer
	assert.False(t, fb.Store(testFrame(5*time.Second), oldEpoch))
	assert.Nil(t, fb.Load())
	assert.Equal(t, uint64(0), fb.FrameCount())

	assert.True(t, fb.Store(testFrame(5*time.Second), newEpoch))
	require.NotNil(t, fb.Load())
}

func TestFrameBuffer_ResetClearsState(t *testing.T) {
	fb := NewFrameBuffer()
	epoch := fb.Epoch()
	fb.Store(testFrame(time.Second), epoch)
	fb.AddDropped()
	fb.SetError(errors.New("decode failed"))

	fb.Reset()

	assert.Nil(t, fb.Load())
	assert.Equal(t, uint64(0), fb.DroppedFrames())
	assert.Equal(t, uint64(0), fb.FrameCount())
	assert.NoError(t, fb.GetError())

	_, ok := fb.Timestamp()
	assert.False(t, ok)
}

func TestFrameBuffer_StoreForceIgnoresEpoch(t *testing.T) {
	fb := NewFrameBuffer()
	fb.Reset()

	// Paused-seek previews land regardless of the current epoch
	fb.StoreForce(testFrame(30 * time.Second))

	f := fb.Load()
	require.NotNil(t, f)
	assert.Equal(t, 30*time.Second, f.Timestamp)
}
