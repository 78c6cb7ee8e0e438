package renderer

import (
	"image"

	"github.com/gdamore/tcell/v2"
)

// RenderImage draws an RGBA frame into area using half-block cells, two
// pixel rows per cell. The frame is centered inside area and clipped to
// it; cells whose colors match the previous frame are skipped via the
// packed-color cache.
func (r *Renderer) RenderImage(img *image.RGBA, area Rect) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if img == nil || r.screen == nil || r.closed {
		return
	}

	pxW := img.Bounds().Dx()
	pxH := img.Bounds().Dy()
	if pxW <= 0 || pxH <= 0 || area.W <= 0 || area.H <= 0 {
		return
	}

	cellW := pxW
	cellH := (pxH + 1) / 2

	originX := area.X + (area.W-cellW)/2
	originY := area.Y + (area.H-cellH)/2
	if originX < area.X {
		originX = area.X
	}
	if originY < area.Y {
		originY = area.Y
	}

	r.ensureCache(cellW, cellH)

	screenW, screenH := r.screen.Size()
	pix := img.Pix
	stride := img.Stride

	for row := 0; row < cellH; row++ {
		y := originY + row
		if y >= area.Y+area.H || y >= screenH {
			break
		}

		idx := row * cellW
		topRow := row * 2 * stride
		botRow := topRow + stride
		hasBot := row*2+1 < pxH

		for col := 0; col < cellW; col++ {
			x := originX + col
			if x >= area.X+area.W || x >= screenW {
				break
			}

			to := topRow + col*4
			tr, tg, tb := pix[to], pix[to+1], pix[to+2]

			br, bg, bb := tr, tg, tb
			if hasBot {
				bo := botRow + col*4
				br, bg, bb = pix[bo], pix[bo+1], pix[bo+2]
			}

			packed := packCell(tr, tg, tb, br, bg, bb)
			if r.prevCells[idx+col] == packed {
				continue
			}
			r.prevCells[idx+col] = packed

			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(tr), int32(tg), int32(tb))).
				Background(tcell.NewRGBColor(int32(br), int32(bg), int32(bb)))

			r.screen.SetContent(x, y, '▀', nil, style)
		}
	}
}

// Sizes the diff cache for a cell grid, invalidating it on any change
func (r *Renderer) ensureCache(cellW, cellH int) {
	size := cellW * cellH
	if len(r.prevCells) == size && r.prevW == cellW && r.prevH == cellH {
		return
	}
	r.prevCells = make([]uint64, size)
	r.prevW = cellW
	r.prevH = cellH
	for i := range r.prevCells {
		// Packed colors are 48 bits; this never matches a real cell
		r.prevCells[i] = 1 << 63
	}
}

// One cell's top and bottom pixel colors packed for the diff cache
func packCell(tr, tg, tb, br, bg, bb byte) uint64 {
	top := uint64(tr)<<16 | uint64(tg)<<8 | uint64(tb)
	bot := uint64(br)<<16 | uint64(bg)<<8 | uint64(bb)
	return top<<24 | bot
}
