package player

import (
	"errors"
	"time"

	"github.com/lumix-stream/lumix/internal/favorites"
	"github.com/lumix-stream/lumix/internal/media"
	"github.com/lumix-stream/lumix/internal/subtitles"
)

// Relative seek step for the shortcut pairs
const seekStep = 10 * time.Second

// TogglePlayPause flips between playing and paused. A play that fails is
// logged and leaves the session paused; the next toggle retries.
func (p *Player) TogglePlayPause() {
	p.mu.Lock()
	state := p.state.State
	pos := p.state.Position
	p.mu.Unlock()

	switch state {
	case StatePlaying:
		p.source.Pause()
		p.mu.Lock()
		p.state.State = StatePaused
		p.mu.Unlock()

	case StatePaused, StateEnded:
		p.startPlayback(pos)
	}
}

// SeekRelative moves the position by delta, clamped to [0, duration].
func (p *Player) SeekRelative(delta time.Duration) {
	p.mu.RLock()
	pos := p.state.Position
	p.mu.RUnlock()

	p.seekTo(pos + delta)
}

// SeekToFraction seeks to f of the total duration, from progress-bar clicks.
func (p *Player) SeekToFraction(f float64) {
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	p.seekTo(time.Duration(f * float64(p.meta.Duration)))
}

func (p *Player) seekTo(pos time.Duration) {
	pos = clampPosition(pos, p.meta.Duration)

	p.mu.Lock()
	p.state.Position = pos
	state := p.state.State
	frameW, frameH := p.state.FrameW, p.state.FrameH
	if state == StateEnded {
		// Seeking out of the end state resumes paused
		p.state.State = StatePaused
		state = StatePaused
	}
	p.mu.Unlock()

	switch state {
	case StatePaused:
		p.extractPreview(pos, frameW, frameH)

	case StatePlaying, StateLoading:
		p.startPlayback(pos)
	}
}

// Shows a still frame for a paused seek without starting playback
func (p *Player) extractPreview(pos time.Duration, frameW, frameH int) {
	go func() {
		frame, err := p.source.ExtractFrame(pos, frameW, frameH)
		if err != nil || p.ctx.Err() != nil {
			return
		}
		p.mu.Lock()
		p.state.LastFrame = frame
		p.mu.Unlock()
	}()
}

// ToggleFullscreen grows the modal to the whole screen and back.
func (p *Player) ToggleFullscreen() {
	p.render.Clear()

	p.mu.Lock()
	p.state.Fullscreen = !p.state.Fullscreen
	p.layout = computeLayout(p.state.ScreenW, p.state.ScreenH, p.state.Fullscreen)
	changed := p.state.UpdateDimensions(p.state.ScreenW, p.state.ScreenH, p.meta)
	state := p.state.State
	pos := p.state.Position
	frameW, frameH := p.state.FrameW, p.state.FrameH
	p.mu.Unlock()

	if !changed {
		return
	}

	switch state {
	case StatePlaying, StateLoading:
		p.startPlayback(pos)
	default:
		p.extractPreview(pos, frameW, frameH)
	}
}

// Begins playback at a position, entering the loading state
func (p *Player) startPlayback(pos time.Duration) {
	p.render.RequestClear()

	p.mu.Lock()
	p.state.Position = pos
	p.state.State = StateLoading
	p.state.LoadingStart = time.Now()
	frameW, frameH := p.state.FrameW, p.state.FrameH
	p.mu.Unlock()

	p.render.InvalidateCache()

	targetFPS := media.DefaultTargetFPS(frameW, frameH, p.meta.FPS)
	if err := p.source.Play(p.ctx, frameW, frameH, pos, targetFPS); err != nil {
		// Non-fatal: stay paused, the next toggle retries
		p.log.Warn().Err(err).Msg("play failed")
		p.mu.Lock()
		p.state.State = StatePaused
		p.mu.Unlock()
		p.postNotice("Playback failed, press space to retry")
	}
}

func (p *Player) setError(msg string) {
	p.render.RequestClear()
	p.mu.Lock()
	p.state.State = StateError
	p.state.ErrorMsg = msg
	p.mu.Unlock()
}

// Flips the favorite flag against the remote store. Pessimistic: state
// changes only after the request settles, and a failure leaves it as-is
// with a transient notice.
func (p *Player) toggleFavorite() {
	go func() {
		fav, err := p.favs.Toggle(p.ctx)
		if p.ctx.Err() != nil {
			return
		}
		switch {
		case errors.Is(err, favorites.ErrNoUser):
			p.postNotice("Sign in to save favorites")
		case err != nil:
			p.postNotice("Could not update favorite")
		case fav:
			p.postNotice("Added to favorites")
		default:
			p.postNotice("Removed from favorites")
		}
	}()
}

// Applies a caption selection. An unavailable language resolves to off;
// a language still being fetched gets loading feedback instead.
func (p *Player) selectSubtitle(lang subtitles.Language) {
	cat := p.subs.Catalog()

	if lang != subtitles.LangOff && !cat.Available(lang) {
		if cat.Loading() {
			p.postNotice("Subtitles are still loading")
		} else {
			p.postNotice(lang.String() + " subtitles unavailable")
		}
	}

	cat.Select(lang)
}

// Invokes the host's details-page callback
func (p *Player) openDetails() {
	if p.onOpenDetails != nil {
		p.onOpenDetails(p.movieID)
	}
}
