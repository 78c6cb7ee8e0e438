package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Caption languages lumixd serves
var supportedLanguages = map[string]bool{
	"es": true,
	"en": true,
}

// GET /api/subtitles/{movieID}/{language}
//
// Caption text lives on disk as <dir>/<movieID>/<language>.<ext>. The
// response wraps the raw text; the client builds its own track from it.
func (s *Server) getSubtitle(w http.ResponseWriter, r *http.Request) {
	movieID := chi.URLParam(r, "movieID")
	language := chi.URLParam(r, "language")

	if !validPathSegment(movieID) {
		writeError(w, http.StatusBadRequest, "invalid movie id")
		return
	}
	if !supportedLanguages[language] {
		writeError(w, http.StatusBadRequest, "unsupported language")
		return
	}

	text, ok := s.readSubtitle(movieID, language)
	if !ok {
		writeError(w, http.StatusNotFound, "subtitles not available")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"subtitle": text})
}

func (s *Server) readSubtitle(movieID, language string) (string, bool) {
	for _, ext := range []string{".srt", ".vtt", ".txt"} {
		path := filepath.Join(s.subsDir, movieID, language+ext)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if len(data) == 0 {
			continue
		}
		return string(data), true
	}
	return "", false
}

// Rejects ids that could escape the subtitles directory
func validPathSegment(seg string) bool {
	if seg == "" || seg == "." || seg == ".." {
		return false
	}
	return !strings.ContainsAny(seg, `/\`)
}
