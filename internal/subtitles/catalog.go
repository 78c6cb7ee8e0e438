// Package subtitles manages caption tracks for a playback session: one
// fetch per supported language, an exclusive off/es/en selector, and
// release of track payloads on teardown.
package subtitles

import (
	"strings"
	"sync"
)

// Language is the closed set of caption selections.
type Language int

const (
	LangOff Language = iota
	LangSpanish
	LangEnglish
)

// Languages lists the fetchable languages, in menu order.
var Languages = []Language{LangSpanish, LangEnglish}

// Code returns the wire language code.
func (l Language) Code() string {
	switch l {
	case LangSpanish:
		return "es"
	case LangEnglish:
		return "en"
	default:
		return ""
	}
}

func (l Language) String() string {
	switch l {
	case LangSpanish:
		return "Español"
	case LangEnglish:
		return "English"
	default:
		return "Off"
	}
}

// Track is a displayable caption resource built from fetched text.
// The whole payload is one time range covering the full duration.
type Track struct {
	lang     Language
	lines    []string
	showing  bool
	released bool
}

// Builds a track from raw caption text
func NewTrack(lang Language, text string) *Track {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return &Track{lang: lang, lines: lines}
}

// Returns the track's language
func (t *Track) Language() Language {
	return t.lang
}

// Reports whether the track has any displayable text
func (t *Track) Empty() bool {
	return len(t.lines) == 0
}

// Catalog holds the session's caption tracks. At most one track is in
// the showing state at any time.
type Catalog struct {
	mu       sync.Mutex
	tracks   map[Language]*Track
	active   Language
	loading  bool
	released bool
}

// Creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{tracks: make(map[Language]*Track)}
}

// Stores a fetched track; empty tracks are dropped so the language
// stays unavailable in the selector. A released catalog accepts
// nothing: a fetch that outlives the session cannot re-materialize a
// caption payload.
func (c *Catalog) Put(t *Track) {
	if t == nil || t.Empty() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return
	}
	c.tracks[t.lang] = t
}

// Reports whether a language has a loaded track
func (c *Catalog) Available(lang Language) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tracks[lang]
	return ok && !t.released
}

// Select makes lang the single showing track. The previous track is
// deactivated first. Selecting LangOff, or a language without a loaded
// track, disables captions. Returns the selection that took effect.
func (c *Catalog) Select(lang Language) Language {
	c.mu.Lock()
	defer c.mu.Unlock()

	if lang == c.active {
		return c.active
	}

	if prev, ok := c.tracks[c.active]; ok {
		prev.showing = false
	}
	c.active = LangOff

	if lang == LangOff {
		return c.active
	}

	t, ok := c.tracks[lang]
	if !ok || t.released {
		// Unavailable language is an explicit off, not an error
		return c.active
	}

	t.showing = true
	c.active = lang
	return c.active
}

// Returns the currently showing language
func (c *Catalog) Active() Language {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Returns the showing track's caption lines, nil when captions are off
func (c *Catalog) ActiveLines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.tracks[c.active]
	if !ok || !t.showing || t.released {
		return nil
	}
	return t.lines
}

// Counts tracks currently in the showing state
func (c *Catalog) ShowingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, t := range c.tracks {
		if t.showing {
			n++
		}
	}
	return n
}

// Marks the fetch effort in flight
func (c *Catalog) SetLoading(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		v = false
	}
	c.loading = v
}

// Reports whether a fetch effort is in flight
func (c *Catalog) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Clear drops every track payload so a load for another movie starts
// from an empty catalog, never retaining the previous movie's tracks
// alongside the new ones.
func (c *Catalog) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drop()
}

// Release drops every track payload and closes the catalog for good.
// Called when the session tears down; once released the catalog neither
// resurrects a track nor accepts a new one.
func (c *Catalog) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drop()
	c.released = true
	c.loading = false
}

func (c *Catalog) drop() {
	for lang, t := range c.tracks {
		t.showing = false
		t.released = true
		t.lines = nil
		delete(c.tracks, lang)
	}
	c.active = LangOff
}
