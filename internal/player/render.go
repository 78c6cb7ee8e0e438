package player

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lumix-stream/lumix/internal/subtitles"
)

func (p *Player) Render() {
	if p.render.IsClosed() {
		return
	}

	p.mu.RLock()
	state := p.state.State
	lastFrame := p.state.LastFrame
	errorMsg := p.state.ErrorMsg
	fullscreen := p.state.Fullscreen
	focus := p.state.Focus
	menuIndex := p.state.MenuIndex
	layout := p.layout
	p.mu.RUnlock()

	stateChanged := state != p.prevState
	if stateChanged {
		p.render.RequestClear()
		p.render.InvalidateCache()
		p.prevState = state
	}

	if p.render.NeedsClear() {
		p.render.FillRect(layout.Modal, tcell.StyleDefault.Background(tcell.ColorBlack))
		if !fullscreen {
			p.render.DimOutside(layout.Modal)
		}
	}

	switch state {
	case StateLoading:
		p.render.RenderMessage(layout.Video, "Loading video...", tcell.ColorDarkBlue)

	case StateError:
		p.render.RenderMessage(layout.Video, errorMsg, tcell.ColorDarkRed)

	default:
		if lastFrame != nil {
			p.render.RenderImage(lastFrame.Image, layout.Video)
		} else {
			p.render.RenderMessage(layout.Video, "Waiting...", tcell.ColorDarkBlue)
		}
	}

	if !fullscreen {
		borderStyle := tcell.StyleDefault.Foreground(tcell.ColorGray).Background(tcell.ColorBlack)
		p.render.DrawBox(layout.Modal, p.title, borderStyle)
	}

	p.drawCaptionLine(layout)
	p.drawTransport(layout)

	if focus == FocusMenu {
		p.drawMenu(layout, menuIndex)
	}

	p.render.Show()
}

// Redraws only the transport row at the sampling cadence
func (p *Player) renderProgress() {
	if p.render.IsClosed() {
		return
	}

	p.mu.RLock()
	layout := p.layout
	p.mu.RUnlock()

	p.drawTransport(layout)
	p.render.Show()
}

// Caption overlay, or a transient notice when one is pending
func (p *Player) drawCaptionLine(layout Layout) {
	p.mu.RLock()
	notice := p.state.Notice
	p.mu.RUnlock()

	bg := tcell.StyleDefault.Background(tcell.ColorBlack)
	p.render.FillLine(layout.Modal.X+1, layout.CaptionY, layout.Modal.W-2, bg)

	text := ""
	style := bg.Foreground(tcell.ColorWhite).Bold(true)

	if notice != "" {
		text = notice
		style = bg.Foreground(tcell.ColorYellow)
	} else if lines := p.subs.Catalog().ActiveLines(); len(lines) > 0 {
		text = lines[0]
	}

	if text == "" {
		return
	}

	runes := []rune(text)
	maxW := layout.Modal.W - 4
	if maxW > 0 && len(runes) > maxW {
		runes = runes[:maxW]
	}
	x := layout.Modal.X + (layout.Modal.W-len(runes))/2
	p.render.DrawText(x, layout.CaptionY, string(runes), style)
}

// Progress bar and status line
func (p *Player) drawTransport(layout Layout) {
	p.mu.RLock()
	state := p.state.State
	pos := p.state.Position
	p.mu.RUnlock()

	duration := p.meta.Duration
	dropped := p.source.DroppedFrames()

	bg := tcell.StyleDefault.Background(tcell.ColorBlack)
	p.render.FillLine(layout.Progress.X, layout.Progress.Y, layout.Progress.W, bg)

	if duration > 0 {
		progress := float64(pos) / float64(duration)
		p.render.ProgressBar(layout.Progress.X, layout.Progress.Y, layout.Progress.W,
			progress, tcell.ColorGreen, tcell.ColorDarkGray)
	}

	statusStyle := tcell.StyleDefault.
		Background(tcell.ColorDarkBlue).
		Foreground(tcell.ColorWhite)

	p.render.FillLine(layout.Modal.X+1, layout.StatusY, layout.Modal.W-2, statusStyle)

	favIcon := "♡"
	if p.favs.IsFavorite() {
		favIcon = "♥"
	}

	ccLabel := "off"
	if active := p.subs.Catalog().Active(); active != subtitles.LangOff {
		ccLabel = active.Code()
	} else if p.subs.Catalog().Loading() {
		ccLabel = "…"
	}

	droppedStr := ""
	if dropped > 0 {
		droppedStr = fmt.Sprintf(" D:%d", dropped)
	}

	status := fmt.Sprintf(" %s %s/%s │ %s │ CC:%s%s │ SPC:pause F:fav C:subs Q:close",
		state.Icon(),
		formatDuration(pos),
		formatDuration(duration),
		favIcon,
		ccLabel,
		droppedStr,
	)

	runes := []rune(status)
	if len(runes) > layout.Modal.W-2 {
		runes = runes[:layout.Modal.W-2]
	}
	p.render.DrawText(layout.Modal.X+1, layout.StatusY, string(runes), statusStyle)
}

// Subtitle picker overlay
func (p *Player) drawMenu(layout Layout, menuIndex int) {
	cat := p.subs.Catalog()
	active := cat.Active()
	loading := cat.Loading()

	boxStyle := tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
	p.render.FillRect(layout.Menu, boxStyle)
	p.render.DrawBox(layout.Menu, "Subtitles", boxStyle)

	for i, lang := range menuItems {
		label := lang.String()
		available := lang == subtitles.LangOff || cat.Available(lang)

		prefix := "  "
		if lang == active {
			prefix = "✓ "
		}
		if i == menuIndex {
			prefix = "▸ "
		}

		style := boxStyle
		switch {
		case i == menuIndex:
			style = style.Foreground(tcell.ColorGreen).Bold(true)
		case !available:
			// Not-yet-ready languages stay visible but disabled
			style = style.Foreground(tcell.ColorDarkGray)
			if loading {
				label += " …"
			}
		}

		p.render.DrawText(layout.Menu.X+2, layout.Menu.Y+1+i, prefix+label, style)
	}
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
