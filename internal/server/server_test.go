package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumix-stream/lumix/internal/config"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()

	subsDir := t.TempDir()
	store := newTestStore(t)

	cfg := &config.Server{
		SubtitlesDir: subsDir,
		RateLimit:    1000,
	}
	return New(cfg, store, zerolog.Nop()), subsDir
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestFavoritesLifecycle(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	// Empty list to start
	rec := doJSON(t, h, http.MethodGet, "/api/favorites?userId=user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	// Create
	rec = doJSON(t, h, http.MethodPost, "/api/favorites", map[string]string{
		"userId": "user-1", "movieId": "tt0137523",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created Favorite
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "tt0137523", created.MovieID)

	// List reflects it
	rec = doJSON(t, h, http.MethodGet, "/api/favorites?userId=user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []Favorite
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	// Delete
	rec = doJSON(t, h, http.MethodDelete, "/api/favorites/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/favorites/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFavoritesValidation(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := doJSON(t, h, http.MethodGet, "/api/favorites", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/favorites", map[string]string{"userId": "user-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/favorites", strings.NewReader("{not json"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSubtitle(t *testing.T) {
	s, subsDir := newTestServer(t)
	h := s.Handler()

	movieDir := filepath.Join(subsDir, "tt0137523")
	require.NoError(t, os.MkdirAll(movieDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(movieDir, "es.srt"), []byte("hola\nmundo"), 0o644))

	rec := doJSON(t, h, http.MethodGet, "/api/subtitles/tt0137523/es", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Subtitle string `json:"subtitle"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "hola\nmundo", payload.Subtitle)

	// Language without a file on disk
	rec = doJSON(t, h, http.MethodGet, "/api/subtitles/tt0137523/en", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Unsupported language code
	rec = doJSON(t, h, http.MethodGet, "/api/subtitles/tt0137523/fr", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSubtitle_RejectsTraversal(t *testing.T) {
	s, subsDir := newTestServer(t)
	h := s.Handler()

	// A file outside the per-movie layout must stay unreachable
	require.NoError(t, os.WriteFile(filepath.Join(subsDir, "es.srt"), []byte("secret"), 0o644))

	for _, movieID := range []string{"..", ".", "%2e%2e", `..%5c..`} {
		rec := doJSON(t, h, http.MethodGet, "/api/subtitles/"+movieID+"/es", nil)
		assert.NotEqual(t, http.StatusOK, rec.Code, "movie id %q", movieID)
	}
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s.Handler(), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
