package renderer

import "github.com/gdamore/tcell/v2"

// Draws text at the given position, clipped to the screen
func (r *Renderer) DrawText(x, y int, text string, style tcell.Style) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.screen == nil || r.closed {
		return
	}

	w, h := r.screen.Size()
	if y < 0 || y >= h {
		return
	}

	for i, ch := range []rune(text) {
		if x+i >= 0 && x+i < w {
			r.screen.SetContent(x+i, y, ch, nil, style)
		}
	}
}

// Fills a rectangle with blanks in a style
func (r *Renderer) FillRect(rect Rect, style tcell.Style) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.screen == nil || r.closed {
		return
	}

	w, h := r.screen.Size()
	for y := rect.Y; y < rect.Y+rect.H && y < h; y++ {
		if y < 0 {
			continue
		}
		for x := rect.X; x < rect.X+rect.W && x < w; x++ {
			if x < 0 {
				continue
			}
			r.screen.SetContent(x, y, ' ', nil, style)
		}
	}
}

// Fills a horizontal line segment with a style
func (r *Renderer) FillLine(x, y, width int, style tcell.Style) {
	r.FillRect(Rect{X: x, Y: y, W: width, H: 1}, style)
}

// Dims every cell outside the given rectangle, the modal backdrop
func (r *Renderer) DimOutside(rect Rect) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.screen == nil || r.closed {
		return
	}

	style := tcell.StyleDefault.
		Background(tcell.ColorBlack).
		Foreground(tcell.ColorDarkGray)

	w, h := r.screen.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if rect.Contains(x, y) {
				continue
			}
			r.screen.SetContent(x, y, '░', nil, style)
		}
	}
}

// Draws a box border around a rectangle with an optional title
func (r *Renderer) DrawBox(rect Rect, title string, style tcell.Style) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.screen == nil || r.closed || rect.W < 2 || rect.H < 2 {
		return
	}

	right := rect.X + rect.W - 1
	bottom := rect.Y + rect.H - 1

	for x := rect.X + 1; x < right; x++ {
		r.screen.SetContent(x, rect.Y, '─', nil, style)
		r.screen.SetContent(x, bottom, '─', nil, style)
	}
	for y := rect.Y + 1; y < bottom; y++ {
		r.screen.SetContent(rect.X, y, '│', nil, style)
		r.screen.SetContent(right, y, '│', nil, style)
	}
	r.screen.SetContent(rect.X, rect.Y, '┌', nil, style)
	r.screen.SetContent(right, rect.Y, '┐', nil, style)
	r.screen.SetContent(rect.X, bottom, '└', nil, style)
	r.screen.SetContent(right, bottom, '┘', nil, style)

	if title != "" {
		runes := []rune(" " + title + " ")
		if len(runes) > rect.W-2 {
			runes = runes[:rect.W-2]
		}
		for i, ch := range runes {
			r.screen.SetContent(rect.X+1+i, rect.Y, ch, nil, style)
		}
	}
}

// Displays a message centered inside a rectangle
func (r *Renderer) RenderMessage(rect Rect, msg string, bgColor tcell.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.screen == nil || r.closed || rect.W <= 0 || rect.H <= 0 {
		return
	}

	style := tcell.StyleDefault.Background(bgColor).Foreground(tcell.ColorWhite)

	y := rect.Y + rect.H/2
	for x := rect.X; x < rect.X+rect.W; x++ {
		r.screen.SetContent(x, y, ' ', nil, style)
	}

	runes := []rune(msg)
	x := rect.X + (rect.W-len(runes))/2
	if x < rect.X {
		x = rect.X
	}
	for i, ch := range runes {
		if x+i < rect.X+rect.W {
			r.screen.SetContent(x+i, y, ch, nil, style)
		}
	}
}

// Draws a horizontal progress bar inside a line segment
func (r *Renderer) ProgressBar(x, y, width int, progress float64, filledColor, emptyColor tcell.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.screen == nil || r.closed || width < 2 {
		return
	}

	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	filled := int(float64(width) * progress)

	filledStyle := tcell.StyleDefault.Background(filledColor)
	emptyStyle := tcell.StyleDefault.Background(emptyColor)

	for i := 0; i < filled && i < width; i++ {
		r.screen.SetContent(x+i, y, '━', nil, filledStyle)
	}
	for i := filled; i < width; i++ {
		r.screen.SetContent(x+i, y, '─', nil, emptyStyle)
	}

	// Position marker
	mx := x + filled
	if mx >= x+width {
		mx = x + width - 1
	}
	r.screen.SetContent(mx, y, '●', nil, tcell.StyleDefault.Foreground(tcell.ColorWhite))
}
