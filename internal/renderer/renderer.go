// Package renderer draws the playback modal on a tcell screen.
package renderer

import (
	"sync"

	"github.com/gdamore/tcell/v2"
)

// Rect is a cell-space rectangle.
type Rect struct {
	X, Y, W, H int
}

// Reports whether a point falls inside the rectangle
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

type Renderer struct {
	mu         sync.Mutex
	screen     tcell.Screen
	prevCells  []uint64
	prevW      int
	prevH      int
	closed     bool
	needsClear bool
}

// Creates a renderer on a fresh terminal screen
func New() (*Renderer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewWithScreen(screen)
}

// Creates a renderer on the given screen; tests pass a simulation screen
func NewWithScreen(screen tcell.Screen) (*Renderer, error) {
	if err := screen.Init(); err != nil {
		return nil, err
	}

	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack))
	screen.EnableMouse()
	screen.Clear()

	return &Renderer{
		screen:     screen,
		needsClear: true,
	}, nil
}

// Returns the underlying tcell screen
func (r *Renderer) Screen() tcell.Screen {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.screen
}

// Returns screen dimensions
func (r *Renderer) Size() (width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.screen == nil || r.closed {
		return 80, 24
	}
	return r.screen.Size()
}

// Clears the screen
func (r *Renderer) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.screen != nil && !r.closed {
		r.screen.Clear()
	}
	r.prevCells = nil
	r.needsClear = true
}

// Marks that a full clear is needed
func (r *Renderer) RequestClear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.needsClear = true
}

// Returns and clears the needsClear flag
func (r *Renderer) NeedsClear() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := r.needsClear
	r.needsClear = false
	return result
}

// Forces a full screen refresh
func (r *Renderer) Sync() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.screen != nil && !r.closed {
		r.screen.Sync()
	}
}

// Flushes pending draws to the terminal
func (r *Renderer) Show() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.screen != nil && !r.closed {
		r.screen.Show()
	}
}

// Clears the frame diff cache
func (r *Renderer) InvalidateCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prevCells = nil
}

// Returns whether the renderer is closed
func (r *Renderer) IsClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed || r.screen == nil
}

// Shuts down the renderer
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true

	if r.screen != nil {
		r.screen.Fini()
		r.screen = nil
	}
}
