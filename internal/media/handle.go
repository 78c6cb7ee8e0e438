// Package media wraps a single playable resource behind an ffmpeg decode
// pipeline. A Handle is exclusively owned by one playback session.
package media

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrNoVideoStream = errors.New("no video stream found")
	ErrDecodeFailed  = errors.New("decode failed")
)

// Handle owns the playable media resource. Exactly one pipeline runs at a
// time; starting a new one stops the previous and bumps the buffer epoch.
type Handle struct {
	path   string
	meta   Metadata
	log    zerolog.Logger
	buffer *FrameBuffer

	mu       sync.Mutex
	pipeline *Pipeline
	running  bool
}

// Opens a media resource and probes its metadata
func Open(path string, log zerolog.Logger) (*Handle, error) {
	if !isRemote(path) {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("cannot access resource: %w", err)
		}
	}

	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("ffmpeg not found")
	}

	meta, err := Probe(path)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int("width", meta.Width).
		Int("height", meta.Height).
		Float64("fps", meta.FPS).
		Str("codec", meta.Codec).
		Dur("duration", meta.Duration).
		Msg("resource opened")

	return &Handle{
		path:   path,
		meta:   *meta,
		log:    log,
		buffer: NewFrameBuffer(),
	}, nil
}

// Returns resource metadata
func (h *Handle) Meta() Metadata {
	return h.meta
}

// Returns the duration of the resource
func (h *Handle) Duration() time.Duration {
	return h.meta.Duration
}

// Reports whether a decode pipeline is running
func (h *Handle) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running
}

// Begin decoding frames at the given position
func (h *Handle) Play(ctx context.Context, width, height int, pos time.Duration, targetFPS float64) error {
	h.Pause()
	epoch := h.buffer.Reset()

	if targetFPS <= 0 {
		targetFPS = DefaultTargetFPS(width, height, h.meta.FPS)
	}

	h.log.Debug().
		Uint64("epoch", epoch).
		Int("width", width).
		Int("height", height).
		Float64("fps", targetFPS).
		Dur("pos", pos).
		Msg("play")

	config := PipelineConfig{
		Width:     width,
		Height:    height,
		StartPos:  pos,
		TargetFPS: targetFPS,
	}

	pipeline, err := StartPipeline(ctx, h.path, config, epoch, h.log)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.pipeline = pipeline
	h.running = true
	h.mu.Unlock()

	go func() {
		pipeline.ReadFrames(h.buffer)
		h.mu.Lock()
		if h.pipeline == pipeline {
			h.running = false
		}
		h.mu.Unlock()
	}()
	return nil
}

// Stops the current pipeline, leaving the last frame in place
func (h *Handle) Pause() {
	h.mu.Lock()
	pipeline := h.pipeline
	h.pipeline = nil
	h.running = false
	h.mu.Unlock()

	if pipeline != nil {
		pipeline.Stop()
	}
}

// Returns the most recently decoded frame
func (h *Handle) Frame() *Frame {
	return h.buffer.Load()
}

// Returns the authoritative playback position; false before any frame decoded
func (h *Handle) Position() (time.Duration, bool) {
	return h.buffer.Timestamp()
}

// Returns frames received since the last play
func (h *Handle) FrameCount() uint64 {
	return h.buffer.FrameCount()
}

// Returns frames dropped for pacing since the last play
func (h *Handle) DroppedFrames() uint64 {
	return h.buffer.DroppedFrames()
}

// Returns the last decode error, if any
func (h *Handle) Err() error {
	return h.buffer.GetError()
}

// Extracts one frame for paused-seek previews, storing it in the buffer
func (h *Handle) ExtractFrame(pos time.Duration, width, height int) (*Frame, error) {
	frame, err := ExtractSingleFrame(h.path, pos, width, height)
	if err != nil {
		return nil, err
	}
	h.buffer.StoreForce(frame)
	return frame, nil
}

// Releases the resource
func (h *Handle) Close() {
	h.Pause()
}

// Extracts a single frame at the given timestamp
func ExtractSingleFrame(path string, timestamp time.Duration, width, height int) (*Frame, error) {
	width = normalizeEven(width, 4, 4096)
	height = normalizeEven(height, 4, 4096)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-ss", fmt.Sprintf("%.3f", timestamp.Seconds()),
		"-i", path,
		"-vframes", "1",
		"-vf", fmt.Sprintf("scale=%d:%d", width, height),
		"-pix_fmt", "rgb24",
		"-f", "rawvideo",
		"-loglevel", "error",
		"-",
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("extract frame: %w", err)
	}

	expectedSize := width * height * 3
	if len(out) < expectedSize {
		return nil, fmt.Errorf("incomplete: got %d, want %d", len(out), expectedSize)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	convertRGB24ToRGBA(out[:expectedSize], img.Pix)

	return &Frame{Image: img, Timestamp: timestamp}, nil
}

func isRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}
