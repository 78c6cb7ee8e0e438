package player

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lumix-stream/lumix/internal/subtitles"
)

type EventResult int

const (
	EventContinue EventResult = iota
	EventQuit
)

// Subtitle picker entries, in display order
var menuItems = []subtitles.Language{
	subtitles.LangOff,
	subtitles.LangSpanish,
	subtitles.LangEnglish,
}

// HandleEvent routes one input event through the session.
func (p *Player) HandleEvent(ev tcell.Event) EventResult {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		return p.handleResize(ev)
	case *tcell.EventKey:
		return p.handleKey(ev)
	case *tcell.EventMouse:
		return p.handleMouse(ev)
	}
	return EventContinue
}

func (p *Player) handleResize(ev *tcell.EventResize) EventResult {
	w, h := ev.Size()

	p.render.Sync()
	p.render.Clear()
	p.render.InvalidateCache()

	p.mu.Lock()
	dimensionsChanged := p.state.UpdateDimensions(w, h, p.meta)
	p.layout = computeLayout(w, h, p.state.Fullscreen)
	state := p.state.State
	pos := p.state.Position
	frameW, frameH := p.state.FrameW, p.state.FrameH
	p.mu.Unlock()

	if dimensionsChanged {
		switch state {
		case StatePlaying, StateLoading:
			p.startPlayback(pos)
		case StatePaused, StateEnded:
			// The still frame re-renders at the new dimensions
			p.extractPreview(pos, frameW, frameH)
		}
	}

	return EventContinue
}

func (p *Player) handleKey(ev *tcell.EventKey) EventResult {
	// Shortcuts never fire while the host has a text input focused
	if p.textEntry.Load() {
		return EventContinue
	}

	p.mu.RLock()
	focus := p.state.Focus
	p.mu.RUnlock()

	// The open picker owns the keyboard, Escape included
	if focus == FocusMenu {
		return p.handleMenuKey(ev)
	}

	if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
		return EventQuit
	}
	if ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q') {
		return EventQuit
	}

	p.mu.Lock()
	if p.state.State == StateError {
		p.state.State = StatePaused
		p.state.ErrorMsg = ""
		p.render.RequestClear()
	}
	p.mu.Unlock()

	switch ev.Key() {
	case tcell.KeyRune:
		return p.handleRune(ev.Rune())
	case tcell.KeyLeft:
		p.SeekRelative(-seekStep)
	case tcell.KeyRight:
		p.SeekRelative(seekStep)
	}
	return EventContinue
}

func (p *Player) handleRune(r rune) EventResult {
	switch r {
	case ' ', 'k', 'K':
		p.TogglePlayPause()
	case 'j', 'J':
		p.SeekRelative(-seekStep)
	case 'l', 'L':
		p.SeekRelative(seekStep)
	case 'f', 'F':
		p.toggleFavorite()
	case 'd', 'D':
		p.openDetails()
	case 'z', 'Z':
		p.ToggleFullscreen()
	case 'c', 'C':
		p.openMenu()
	case '1':
		p.selectSubtitle(subtitles.LangSpanish)
	case '2':
		p.selectSubtitle(subtitles.LangEnglish)
	case '0':
		p.selectSubtitle(subtitles.LangOff)
	}
	return EventContinue
}

// Keyboard routing while the subtitle picker is open
func (p *Player) handleMenuKey(ev *tcell.EventKey) EventResult {
	switch ev.Key() {
	case tcell.KeyEscape:
		// Escape closes only the picker; the modal stays open
		p.closeMenu()
		return EventContinue
	case tcell.KeyUp:
		p.moveMenu(-1)
		return EventContinue
	case tcell.KeyDown:
		p.moveMenu(1)
		return EventContinue
	case tcell.KeyEnter:
		p.applyMenuSelection()
		return EventContinue
	case tcell.KeyCtrlC:
		return EventQuit
	}

	if ev.Key() == tcell.KeyRune {
		switch ev.Rune() {
		case 'c', 'C':
			p.closeMenu()
		case '1':
			p.selectSubtitle(subtitles.LangSpanish)
			p.closeMenu()
		case '2':
			p.selectSubtitle(subtitles.LangEnglish)
			p.closeMenu()
		case '0':
			p.selectSubtitle(subtitles.LangOff)
			p.closeMenu()
		}
	}

	// The picker consumes everything else
	return EventContinue
}

func (p *Player) openMenu() {
	cat := p.subs.Catalog()
	active := cat.Active()

	p.mu.Lock()
	p.state.Focus = FocusMenu
	p.state.MenuIndex = 0
	for i, lang := range menuItems {
		if lang == active {
			p.state.MenuIndex = i
		}
	}
	p.mu.Unlock()
	p.render.RequestClear()
}

func (p *Player) closeMenu() {
	p.mu.Lock()
	p.state.Focus = FocusModal
	p.mu.Unlock()
	p.render.RequestClear()
}

func (p *Player) moveMenu(delta int) {
	p.mu.Lock()
	idx := p.state.MenuIndex + delta
	if idx < 0 {
		idx = 0
	}
	if idx > len(menuItems)-1 {
		idx = len(menuItems) - 1
	}
	p.state.MenuIndex = idx
	p.mu.Unlock()
}

func (p *Player) applyMenuSelection() {
	p.mu.RLock()
	idx := p.state.MenuIndex
	p.mu.RUnlock()

	if idx >= 0 && idx < len(menuItems) {
		p.selectSubtitle(menuItems[idx])
	}
	p.closeMenu()
}

// Pointer routing: clicks inside the modal stay inside it, clicks on the
// dimmed backdrop dismiss the picker first, then the modal.
func (p *Player) handleMouse(ev *tcell.EventMouse) EventResult {
	if ev.Buttons()&tcell.Button1 == 0 {
		p.mousePressed = false
		return EventContinue
	}
	if p.mousePressed {
		// Held button, not a new click
		return EventContinue
	}
	p.mousePressed = true

	x, y := ev.Position()

	p.mu.RLock()
	focus := p.state.Focus
	layout := p.layout
	p.mu.RUnlock()

	if focus == FocusMenu {
		if layout.Menu.Contains(x, y) {
			row := y - layout.Menu.Y - 1
			if row >= 0 && row < len(menuItems) {
				p.mu.Lock()
				p.state.MenuIndex = row
				p.mu.Unlock()
				p.applyMenuSelection()
			}
			return EventContinue
		}
		// Same priority rule as Escape: close the picker, not the modal
		p.closeMenu()
		return EventContinue
	}

	if layout.Progress.Contains(x, y) {
		if layout.Progress.W > 0 {
			p.SeekToFraction(float64(x-layout.Progress.X) / float64(layout.Progress.W))
		}
		return EventContinue
	}

	if layout.Modal.Contains(x, y) {
		// Content clicks never propagate to the backdrop close handler
		return EventContinue
	}

	return EventQuit
}
