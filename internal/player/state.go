package player

import (
	"time"

	"github.com/lumix-stream/lumix/internal/media"
	"github.com/lumix-stream/lumix/internal/renderer"
)

type State int

const (
	StateLoading State = iota
	StatePlaying
	StatePaused
	StateEnded
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

func (s State) Icon() string {
	switch s {
	case StatePlaying:
		return "▶"
	case StatePaused:
		return "⏸"
	case StateLoading:
		return "⏳"
	case StateEnded:
		return "⏹"
	case StateError:
		return "⚠"
	default:
		return "○"
	}
}

// Focus identifies which surface owns keyboard and click routing.
type Focus int

const (
	FocusModal Focus = iota
	FocusMenu
)

// SessionState is the UI-facing state of one playback session.
type SessionState struct {
	State        State
	Position     time.Duration
	LastFrame    *media.Frame
	LoadingStart time.Time
	ErrorMsg     string

	Notice      string
	NoticeUntil time.Time

	Focus      Focus
	MenuIndex  int
	Fullscreen bool

	ScreenW int
	ScreenH int
	FrameW  int // video frame size in pixels
	FrameH  int
}

// Layout is the cell-space geometry of the modal, derived from screen
// size and the fullscreen flag. Mouse routing and rendering share it.
type Layout struct {
	Modal    renderer.Rect
	Video    renderer.Rect // video area in cells
	CaptionY int
	Progress renderer.Rect // single row
	StatusY  int
	Menu     renderer.Rect // subtitle picker, drawn only while open
}

func NewSessionState(screenW, screenH int, meta media.Metadata) *SessionState {
	st := &SessionState{
		State:   StateLoading,
		ScreenW: screenW,
		ScreenH: screenH,
	}
	st.FrameW, st.FrameH = frameDimensions(computeLayout(screenW, screenH, false).Video, meta)
	return st
}

// Computes the modal geometry for a screen size
func computeLayout(screenW, screenH int, fullscreen bool) Layout {
	modal := renderer.Rect{X: 0, Y: 0, W: screenW, H: screenH}
	if !fullscreen {
		mx := screenW / 10
		my := screenH / 10
		if mx < 1 {
			mx = 1
		}
		if my < 1 {
			my = 1
		}
		modal = renderer.Rect{X: mx, Y: my, W: screenW - 2*mx, H: screenH - 2*my}
	}
	if modal.W < 10 {
		modal = renderer.Rect{X: 0, Y: 0, W: screenW, H: screenH}
	}

	// Bottom rows inside the border: caption, progress, status
	statusY := modal.Y + modal.H - 2
	progressY := statusY - 1
	captionY := progressY - 1

	video := renderer.Rect{
		X: modal.X + 1,
		Y: modal.Y + 1,
		W: modal.W - 2,
		H: captionY - modal.Y - 1,
	}
	if video.H < 2 {
		video.H = 2
	}

	menuW := 22
	if menuW > modal.W-2 {
		menuW = modal.W - 2
	}
	menuH := len(menuItems) + 2
	menu := renderer.Rect{
		X: modal.X + modal.W - 1 - menuW,
		Y: captionY - menuH,
		W: menuW,
		H: menuH,
	}
	if menu.Y < modal.Y+1 {
		menu.Y = modal.Y + 1
	}

	return Layout{
		Modal:    modal,
		Video:    video,
		CaptionY: captionY,
		Progress: renderer.Rect{X: modal.X + 1, Y: progressY, W: modal.W - 2, H: 1},
		StatusY:  statusY,
		Menu:     menu,
	}
}

// Fits the frame pixel dimensions to the video area, keeping aspect
func frameDimensions(video renderer.Rect, meta media.Metadata) (int, int) {
	availH := video.H
	if availH < 2 {
		availH = 2
	}
	frameW := video.W
	frameH := availH * 2

	if meta.Width > 0 && meta.Height > 0 {
		aspect := float64(meta.Width) / float64(meta.Height)
		frameAspect := float64(frameW) / float64(frameH)

		if frameAspect > aspect {
			frameW = int(float64(frameH) * aspect)
		} else {
			frameH = int(float64(frameW) / aspect)
		}
	}

	frameW = clamp((frameW/2)*2, 4, video.W)
	frameH = clamp((frameH/2)*2, 4, availH*2)

	return frameW, frameH
}

// Recomputes layout and frame dimensions; reports whether frame size changed
func (ps *SessionState) UpdateDimensions(screenW, screenH int, meta media.Metadata) bool {
	oldFrameW, oldFrameH := ps.FrameW, ps.FrameH

	ps.ScreenW = screenW
	ps.ScreenH = screenH
	layout := computeLayout(screenW, screenH, ps.Fullscreen)
	ps.FrameW, ps.FrameH = frameDimensions(layout.Video, meta)

	return ps.FrameW != oldFrameW || ps.FrameH != oldFrameH
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Clamps a playback position to [0, duration]
func clampPosition(pos, duration time.Duration) time.Duration {
	if pos < 0 {
		return 0
	}
	if duration > 0 && pos > duration {
		return duration
	}
	return pos
}
