// Package player implements the Lumix playback session: the modal that
// owns one media resource, its caption catalog and favorite state, and
// routes keyboard and mouse input between them until closed.
package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/lumix-stream/lumix/internal/favorites"
	"github.com/lumix-stream/lumix/internal/media"
	"github.com/lumix-stream/lumix/internal/renderer"
	"github.com/lumix-stream/lumix/internal/subtitles"
)

// How long the loading overlay may persist before giving up
const loadingTimeout = 8 * time.Second

// MediaSource is the playable resource the session transports over.
type MediaSource interface {
	Meta() media.Metadata
	Play(ctx context.Context, width, height int, pos time.Duration, targetFPS float64) error
	Pause()
	Running() bool
	Frame() *media.Frame
	Position() (time.Duration, bool)
	FrameCount() uint64
	DroppedFrames() uint64
	Err() error
	ExtractFrame(pos time.Duration, width, height int) (*media.Frame, error)
	Close()
}

// Backend is the remote surface the session reconciles against.
type Backend interface {
	subtitles.Fetcher
	favorites.Store
}

// Config carries the host container's inputs for one session.
type Config struct {
	Source  MediaSource
	Title   string
	MovieID string
	// UserID is the current user, empty when unauthenticated. Passed
	// explicitly so the session has no ambient identity lookup.
	UserID  string
	Backend Backend

	OnClose          func()
	OnFavoriteChange favorites.ChangeFunc
	OnOpenDetails    func(movieID string)

	Logger zerolog.Logger
	// Screen is optional; tests inject a tcell simulation screen.
	Screen tcell.Screen
}

type Player struct {
	source MediaSource
	render *renderer.Renderer
	meta   media.Metadata
	log    zerolog.Logger

	title   string
	movieID string
	userID  string

	subs *subtitles.Manager
	favs *favorites.Tracker

	onClose       func()
	onOpenDetails func(string)

	mu     sync.RWMutex
	state  *SessionState
	layout Layout

	ctx      context.Context
	cancel   context.CancelFunc
	doneChan chan struct{}

	// Touched only from the session goroutine
	sampler      *sampler
	prevState    State
	mousePressed bool

	textEntry atomic.Bool
	posWrites atomic.Uint64
}

// Creates a session for one movie
func New(cfg Config) (*Player, error) {
	if cfg.Source == nil {
		return nil, errors.New("player: no media source")
	}
	if cfg.Backend == nil {
		return nil, errors.New("player: no backend")
	}

	var render *renderer.Renderer
	var err error
	if cfg.Screen != nil {
		render, err = renderer.NewWithScreen(cfg.Screen)
	} else {
		render, err = renderer.New()
	}
	if err != nil {
		cfg.Source.Close()
		return nil, fmt.Errorf("renderer: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	meta := cfg.Source.Meta()
	screenW, screenH := render.Size()

	p := &Player{
		source:        cfg.Source,
		render:        render,
		meta:          meta,
		log:           cfg.Logger,
		title:         cfg.Title,
		movieID:       cfg.MovieID,
		userID:        cfg.UserID,
		subs:          subtitles.NewManager(cfg.Backend, cfg.Logger),
		favs:          favorites.New(cfg.Backend, cfg.UserID, cfg.MovieID, cfg.OnFavoriteChange, cfg.Logger),
		onClose:       cfg.OnClose,
		onOpenDetails: cfg.OnOpenDetails,
		state:         NewSessionState(screenW, screenH, meta),
		layout:        computeLayout(screenW, screenH, false),
		ctx:           ctx,
		cancel:        cancel,
		doneChan:      make(chan struct{}),
	}
	return p, nil
}

// Run drives the session until it is closed. Blocks.
func (p *Player) Run() {
	defer p.cleanup()

	eventChan := make(chan tcell.Event, 50)
	go p.pollEvents(eventChan)

	time.Sleep(50 * time.Millisecond)
	p.drainInitialEvents(eventChan)

	p.mu.Lock()
	w, h := p.render.Size()
	p.state.UpdateDimensions(w, h, p.meta)
	p.layout = computeLayout(w, h, p.state.Fullscreen)
	p.mu.Unlock()

	// Captions and favorite status load independently of transport
	go p.subs.Load(p.ctx, p.movieID)
	go func() {
		// Failure reads as not favorited; the tracker already logged it
		_ = p.favs.Load(p.ctx)
	}()

	p.startPlayback(0)
	p.mainLoop(eventChan)
}

func (p *Player) mainLoop(eventChan <-chan tcell.Event) {
	// Coarse fallback tick; the sampler handles the fine cadence
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return

		case ev := <-eventChan:
			if ev == nil {
				return
			}
			if p.HandleEvent(ev) == EventQuit {
				return
			}
			p.syncSampler()
			p.Render()

		case <-ticker.C:
			p.update()
			p.syncSampler()
			p.Render()
		}
	}
}

// Advances the session state machine from media progress
func (p *Player) update() {
	if err := p.source.Err(); err != nil {
		p.mu.RLock()
		state := p.state.State
		p.mu.RUnlock()

		// A decode failure mid-playback surfaces the same way one at
		// load time does; any key press recovers to paused
		if state == StateLoading || state == StatePlaying {
			p.setError(err.Error())
		}
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state.State {
	case StateLoading:
		frame := p.source.Frame()
		if frame != nil {
			p.state.LastFrame = frame
			p.state.Position = frame.Timestamp
			p.state.State = StatePlaying
		} else if time.Since(p.state.LoadingStart) > loadingTimeout {
			p.state.State = StateError
			p.state.ErrorMsg = "Timed out loading video"
		}
	case StatePlaying:
		frame := p.source.Frame()
		if frame != nil {
			p.state.LastFrame = frame
			p.state.Position = frame.Timestamp
		}

		if !p.source.Running() && p.source.FrameCount() > 0 {
			// Natural end of stream; controls treat this like paused
			p.state.State = StateEnded
		}
	}

	if p.state.Notice != "" && time.Now().After(p.state.NoticeUntil) {
		p.state.Notice = ""
	}
}

func (p *Player) pollEvents(eventChan chan<- tcell.Event) {
	screen := p.render.Screen()
	if screen == nil {
		return
	}

	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case eventChan <- ev:
		case <-p.doneChan:
			return
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Player) drainInitialEvents(eventChan <-chan tcell.Event) {
	for {
		select {
		case ev := <-eventChan:
			if ev == nil {
				return
			}
			if resize, ok := ev.(*tcell.EventResize); ok {
				w, h := resize.Size()
				p.mu.Lock()
				p.state.ScreenW = w
				p.state.ScreenH = h
				p.mu.Unlock()
			}
		case <-time.After(20 * time.Millisecond):
			return
		}
	}
}

// Releases everything the session owns: the sampler, the media resource,
// the caption tracks and the screen. In-flight fetches settle against the
// cancelled context and their results are discarded.
func (p *Player) cleanup() {
	p.cancel()
	close(p.doneChan)

	if p.sampler != nil {
		p.sampler.stopAndWait()
		p.sampler = nil
	}

	p.source.Close()
	p.subs.Catalog().Release()
	p.render.Close()

	if p.onClose != nil {
		p.onClose()
	}
}

// Close asks the session to shut down; Run returns shortly after.
func (p *Player) Close() {
	p.cancel()
}

// Done is closed once the session has torn down.
func (p *Player) Done() <-chan struct{} {
	return p.doneChan
}

// SetTextEntryActive suppresses all keyboard shortcuts while the host
// has a text input focused.
func (p *Player) SetTextEntryActive(v bool) {
	p.textEntry.Store(v)
}

// Sets a short-lived status notice; safe from any goroutine
func (p *Player) postNotice(msg string) {
	if msg == "" {
		return
	}
	p.mu.Lock()
	p.state.Notice = msg
	p.state.NoticeUntil = time.Now().Add(3 * time.Second)
	p.mu.Unlock()
}
