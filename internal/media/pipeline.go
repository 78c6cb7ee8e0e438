package media

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"io"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Holds decode pipeline parameters
type PipelineConfig struct {
	Width     int
	Height    int
	StartPos  time.Duration
	TargetFPS float64
}

// Calculates an appropriate FPS based on frame size
func DefaultTargetFPS(width, height int, sourceFPS float64) float64 {
	targetFPS := 24.0
	pixels := width * height
	if pixels > 100000 {
		targetFPS = 12
	} else if pixels > 50000 {
		targetFPS = 15
	} else if pixels > 25000 {
		targetFPS = 20
	}

	if sourceFPS > 0 && targetFPS > sourceFPS {
		targetFPS = sourceFPS
	}

	return targetFPS
}

// Manages one ffmpeg decode process
type Pipeline struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc
	stdout io.ReadCloser
	stderr io.ReadCloser
	log    zerolog.Logger

	width     int
	height    int
	frameSize int
	fps       float64
	epoch     uint64
	startPos  time.Duration

	mu      sync.Mutex
	stopped bool
	done    chan struct{}
}

// Creates and starts a new decode pipeline
func StartPipeline(ctx context.Context, path string, config PipelineConfig,
	epoch uint64, log zerolog.Logger) (*Pipeline, error) {
	width := normalizeEven(config.Width, 4, 4096)
	height := normalizeEven(config.Height, 4, 4096)

	args := buildFFmpegArgs(path, width, height, config.StartPos, config.TargetFPS)
	log.Debug().Uint64("epoch", epoch).Strs("args", args).Msg("ffmpeg args")

	cmdCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(cmdCtx, "ffmpeg", args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		stdout.Close()
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		stdout.Close()
		stderr.Close()
		return nil, fmt.Errorf("start: %w", err)
	}

	log.Debug().Uint64("epoch", epoch).Int("pid", cmd.Process.Pid).Msg("ffmpeg started")

	return &Pipeline{
		cmd:       cmd,
		cancel:    cancel,
		stdout:    stdout,
		stderr:    stderr,
		log:       log,
		width:     width,
		height:    height,
		frameSize: width * height * 3,
		fps:       config.TargetFPS,
		epoch:     epoch,
		startPos:  config.StartPos,
		done:      make(chan struct{}),
	}, nil
}

// Builds arguments for FFmpeg
func buildFFmpegArgs(path string, width, height int, startPos time.Duration, fps float64) []string {
	args := []string{
		"-threads", fmt.Sprintf("%d", runtime.NumCPU()),
	}

	if startPos > 0 {
		args = append(args, "-ss", fmt.Sprintf("%.3f", startPos.Seconds()))
	}

	args = append(args,
		"-i", path,
		"-vf", fmt.Sprintf("fps=%.2f,scale=%d:%d", fps, width, height),
		"-pix_fmt", "rgb24",
		"-f", "rawvideo",
		"-an",
		"-sn",
		"-loglevel", "error",
		"-",
	)
	return args
}

// Reads frames from the pipeline and sends them to the buffer
func (p *Pipeline) ReadFrames(buffer *FrameBuffer) {
	defer func() {
		close(p.done)
		p.stdout.Close()
		p.cmd.Wait()
		p.log.Debug().Uint64("epoch", p.epoch).Msg("pipeline read loop exited")
	}()

	go p.drainStderr()

	frameDuration := time.Duration(float64(time.Second) / p.fps)

	reader := bufio.NewReaderSize(p.stdout, p.frameSize*4)

	// Double buffer for frames
	frames := [2]*Frame{
		{Image: image.NewRGBA(image.Rect(0, 0, p.width, p.height))},
		{Image: image.NewRGBA(image.Rect(0, 0, p.width, p.height))},
	}
	frameIdx := 0

	rgbBuf := make([]byte, p.frameSize)
	currentTime := p.startPos
	playbackStart := time.Now()
	frameNum := 0

	for {
		p.mu.Lock()
		stopped := p.stopped
		p.mu.Unlock()
		if stopped {
			return
		}

		// Check epoch before reading
		if buffer.Epoch() != p.epoch {
			return
		}
		_, err := io.ReadFull(reader, rgbBuf)
		if err != nil {
			if frameNum == 0 {
				buffer.SetError(ErrDecodeFailed)
			}
			return
		}

		// Timing check for frame dropping
		expectedTime := playbackStart.Add(time.Duration(frameNum) * frameDuration)
		now := time.Now()
		lag := now.Sub(expectedTime)

		if lag > frameDuration*5 {
			buffer.AddDropped()
			frameNum++
			currentTime += frameDuration
			continue
		}

		frame := frames[frameIdx]
		frameIdx = 1 - frameIdx
		convertRGB24ToRGBA(rgbBuf, frame.Image.Pix)
		frame.Timestamp = currentTime

		// Store with epoch check
		if !buffer.Store(frame, p.epoch) {
			return
		}

		frameNum++
		currentTime += frameDuration

		// Pace control
		if lag < -5*time.Millisecond {
			time.Sleep(-lag - 2*time.Millisecond)
		}
	}
}

func (p *Pipeline) drainStderr() {
	buf := make([]byte, 1024)
	for {
		n, err := p.stderr.Read(buf)
		if n > 0 {
			p.log.Debug().Uint64("epoch", p.epoch).Str("stderr", string(buf[:n])).Msg("ffmpeg")
		}
		if err != nil {
			break
		}
	}
	p.stderr.Close()
}

// Terminates the pipeline and waits for it to finish
func (p *Pipeline) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}
	if p.cmd != nil && p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}

	// Wait for the read loop to finish
	select {
	case <-p.done:
	case <-time.After(500 * time.Millisecond):
	}
}

// Returns a channel that's closed when the pipeline finishes
func (p *Pipeline) Done() <-chan struct{} {
	return p.done
}

func convertRGB24ToRGBA(src, dst []byte) {
	for i, j := 0, 0; i < len(src); i, j = i+3, j+4 {
		dst[j] = src[i]
		dst[j+1] = src[i+1]
		dst[j+2] = src[i+2]
		dst[j+3] = 255
	}
}

func normalizeEven(v, min, max int) int {
	v = (v / 2) * 2
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
