package player

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumix-stream/lumix/internal/subtitles"
)

func keyEvent(key tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(key, 0, tcell.ModNone)
}

func runeEvent(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func click(x, y int) *tcell.EventMouse {
	return tcell.NewEventMouse(x, y, tcell.Button1, tcell.ModNone)
}

func release(x, y int) *tcell.EventMouse {
	return tcell.NewEventMouse(x, y, tcell.ButtonNone, tcell.ModNone)
}

func TestEscape_ClosesMenuBeforeModal(t *testing.T) {
	p, _ := newTestPlayer(t, Config{})
	startPlaying(t, p)

	p.HandleEvent(runeEvent('c'))
	require.Equal(t, FocusMenu, p.currentFocus())

	// First Escape dismisses only the picker
	res := p.HandleEvent(keyEvent(tcell.KeyEscape))
	assert.Equal(t, EventContinue, res)
	assert.Equal(t, FocusModal, p.currentFocus())
	assert.Equal(t, StatePlaying, p.currentState())

	// Second Escape closes the modal
	res = p.HandleEvent(keyEvent(tcell.KeyEscape))
	assert.Equal(t, EventQuit, res)
}

func TestMenuKeyboardSelection(t *testing.T) {
	p, _ := newTestPlayer(t, Config{})
	p.subs.Catalog().Put(subtitles.NewTrack(subtitles.LangSpanish, "hola"))
	p.subs.Catalog().Put(subtitles.NewTrack(subtitles.LangEnglish, "hello"))

	p.HandleEvent(runeEvent('c'))

	// menuItems is Off, Español, English; active Off preselects index 0
	p.HandleEvent(keyEvent(tcell.KeyDown))
	p.HandleEvent(keyEvent(tcell.KeyEnter))

	assert.Equal(t, subtitles.LangSpanish, p.subs.Catalog().Active())
	assert.Equal(t, FocusModal, p.currentFocus())

	// Reopening preselects the active language
	p.HandleEvent(runeEvent('c'))
	p.mu.RLock()
	idx := p.state.MenuIndex
	p.mu.RUnlock()
	assert.Equal(t, 1, idx)
}

func TestMenu_ConsumesTransportKeys(t *testing.T) {
	p, _ := newTestPlayer(t, Config{})
	startPlaying(t, p)
	p.HandleEvent(runeEvent('c'))

	// Space must not toggle playback while the picker is open
	res := p.HandleEvent(runeEvent(' '))
	assert.Equal(t, EventContinue, res)
	assert.Equal(t, StatePlaying, p.currentState())

	// q must not close the modal either
	res = p.HandleEvent(runeEvent('q'))
	assert.Equal(t, EventContinue, res)
	assert.Equal(t, FocusMenu, p.currentFocus())
}

func TestNumberShortcuts(t *testing.T) {
	p, _ := newTestPlayer(t, Config{})
	cat := p.subs.Catalog()
	cat.Put(subtitles.NewTrack(subtitles.LangSpanish, "hola"))
	cat.Put(subtitles.NewTrack(subtitles.LangEnglish, "hello"))

	p.HandleEvent(runeEvent('1'))
	assert.Equal(t, subtitles.LangSpanish, cat.Active())

	p.HandleEvent(runeEvent('2'))
	assert.Equal(t, subtitles.LangEnglish, cat.Active())
	assert.LessOrEqual(t, cat.ShowingCount(), 1)

	p.HandleEvent(runeEvent('0'))
	assert.Equal(t, subtitles.LangOff, cat.Active())
}

func TestSelectSubtitle_UnavailableNotice(t *testing.T) {
	p, _ := newTestPlayer(t, Config{})

	p.HandleEvent(runeEvent('1'))
	assert.Equal(t, subtitles.LangOff, p.subs.Catalog().Active())
	assert.Equal(t, "Español subtitles unavailable", p.currentNotice())

	p.subs.Catalog().SetLoading(true)
	p.HandleEvent(runeEvent('2'))
	assert.Equal(t, "Subtitles are still loading", p.currentNotice())
}

func TestTextEntry_SuppressesShortcuts(t *testing.T) {
	p, _ := newTestPlayer(t, Config{})
	startPlaying(t, p)

	p.SetTextEntryActive(true)

	assert.Equal(t, EventContinue, p.HandleEvent(runeEvent(' ')))
	assert.Equal(t, StatePlaying, p.currentState())

	assert.Equal(t, EventContinue, p.HandleEvent(runeEvent('q')))
	assert.Equal(t, EventContinue, p.HandleEvent(keyEvent(tcell.KeyEscape)))

	p.SetTextEntryActive(false)
	assert.Equal(t, EventQuit, p.HandleEvent(keyEvent(tcell.KeyEscape)))
}

func TestKeyPress_ClearsErrorState(t *testing.T) {
	p, _ := newTestPlayer(t, Config{})
	p.setError("decode failed")

	p.HandleEvent(runeEvent('x'))

	assert.Equal(t, StatePaused, p.currentState())
	p.mu.RLock()
	assert.Empty(t, p.state.ErrorMsg)
	p.mu.RUnlock()
}

func TestArrowAndVimSeeks(t *testing.T) {
	p, _ := newTestPlayer(t, Config{})
	startPlaying(t, p)

	p.mu.Lock()
	p.state.Position = 60 * time.Second
	p.mu.Unlock()

	p.HandleEvent(keyEvent(tcell.KeyRight))
	assert.Equal(t, 70*time.Second, p.currentPosition())

	p.HandleEvent(keyEvent(tcell.KeyLeft))
	assert.Equal(t, 60*time.Second, p.currentPosition())

	p.HandleEvent(runeEvent('l'))
	assert.Equal(t, 70*time.Second, p.currentPosition())

	p.HandleEvent(runeEvent('j'))
	assert.Equal(t, 60*time.Second, p.currentPosition())
}

func TestBackdropClick_ClosesModal(t *testing.T) {
	p, _ := newTestPlayer(t, Config{})
	startPlaying(t, p)

	// (0,0) sits on the dimmed backdrop outside the centered modal
	res := p.HandleEvent(click(0, 0))
	assert.Equal(t, EventQuit, res)
}

func TestContentClick_DoesNotPropagate(t *testing.T) {
	p, src := newTestPlayer(t, Config{})
	startPlaying(t, p)
	playsBefore := len(src.playPositions())

	p.mu.RLock()
	video := p.layout.Video
	p.mu.RUnlock()

	res := p.HandleEvent(click(video.X+1, video.Y+1))
	assert.Equal(t, EventContinue, res)
	assert.Equal(t, StatePlaying, p.currentState())
	assert.Len(t, src.playPositions(), playsBefore)
}

func TestProgressClick_Seeks(t *testing.T) {
	p, _ := newTestPlayer(t, Config{})
	startPlaying(t, p)

	p.mu.RLock()
	bar := p.layout.Progress
	p.mu.RUnlock()

	// Click the left edge: fraction 0, position 0
	res := p.HandleEvent(click(bar.X, bar.Y))
	assert.Equal(t, EventContinue, res)
	assert.Equal(t, time.Duration(0), p.currentPosition())
}

func TestHeldButton_IsOneClick(t *testing.T) {
	p, src := newTestPlayer(t, Config{})
	startPlaying(t, p)

	p.mu.RLock()
	bar := p.layout.Progress
	p.mu.RUnlock()

	p.HandleEvent(click(bar.X, bar.Y))
	plays := len(src.playPositions())

	// Still held: dragging across the bar must not re-seek
	p.HandleEvent(click(bar.X+3, bar.Y))
	assert.Len(t, src.playPositions(), plays)

	// Release then press again is a new click
	p.HandleEvent(release(bar.X+3, bar.Y))
	p.HandleEvent(click(bar.X+3, bar.Y))
	assert.Len(t, src.playPositions(), plays+1)
}

func TestMenuClick_SelectsRow(t *testing.T) {
	p, _ := newTestPlayer(t, Config{})
	p.subs.Catalog().Put(subtitles.NewTrack(subtitles.LangSpanish, "hola"))
	p.HandleEvent(runeEvent('c'))

	p.mu.RLock()
	menu := p.layout.Menu
	p.mu.RUnlock()

	// Row 1 inside the picker box is Español
	res := p.HandleEvent(click(menu.X+2, menu.Y+1+1))
	assert.Equal(t, EventContinue, res)
	assert.Equal(t, subtitles.LangSpanish, p.subs.Catalog().Active())
	assert.Equal(t, FocusModal, p.currentFocus())
}

func TestMenuOpen_OutsideClickClosesOnlyMenu(t *testing.T) {
	p, _ := newTestPlayer(t, Config{})
	startPlaying(t, p)
	p.HandleEvent(runeEvent('c'))

	p.mu.RLock()
	video := p.layout.Video
	p.mu.RUnlock()

	// A click outside the picker, even on the backdrop, only closes it
	res := p.HandleEvent(click(video.X+1, video.Y+1))
	assert.Equal(t, EventContinue, res)
	assert.Equal(t, FocusModal, p.currentFocus())

	p.HandleEvent(release(0, 0))
	p.HandleEvent(runeEvent('c'))
	res = p.HandleEvent(click(0, 0))
	assert.Equal(t, EventContinue, res)
	assert.Equal(t, FocusModal, p.currentFocus())
}

func TestResize_RestartsPlaybackOnDimensionChange(t *testing.T) {
	p, src := newTestPlayer(t, Config{})
	startPlaying(t, p)
	plays := len(src.playPositions())

	res := p.HandleEvent(tcell.NewEventResize(140, 50))
	assert.Equal(t, EventContinue, res)

	p.mu.RLock()
	w := p.state.ScreenW
	p.mu.RUnlock()
	assert.Equal(t, 140, w)
	assert.Greater(t, len(src.playPositions()), plays)
}

func TestResize_RefreshesPausedPreview(t *testing.T) {
	p, src := newTestPlayer(t, Config{})
	startPlaying(t, p)
	p.TogglePlayPause()

	p.mu.Lock()
	p.state.Position = 30 * time.Second
	p.mu.Unlock()

	p.HandleEvent(tcell.NewEventResize(140, 50))

	require.Eventually(t, func() bool {
		ex := src.extractPositions()
		return len(ex) > 0 && ex[len(ex)-1] == 30*time.Second
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, StatePaused, p.currentState())
}

func TestOpenDetails_Callback(t *testing.T) {
	var opened string
	p, _ := newTestPlayer(t, Config{
		MovieID:       "tt0137523",
		OnOpenDetails: func(movieID string) { opened = movieID },
	})

	p.HandleEvent(runeEvent('d'))
	assert.Equal(t, "tt0137523", opened)
}
