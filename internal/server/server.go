// Package server implements the lumixd HTTP API: the favorites and
// subtitles endpoints the playback client reconciles against.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/lumix-stream/lumix/internal/config"
)

// Server wires the store, the subtitle directory and the router.
type Server struct {
	store   *Store
	subsDir string
	log     zerolog.Logger
	handler http.Handler
}

// New builds a server around an open store.
func New(cfg *config.Server, store *Store, log zerolog.Logger) *Server {
	s := &Server{
		store:   store,
		subsDir: cfg.SubtitlesDir,
		log:     log,
	}

	r := chi.NewRouter()
	r.Use(s.requestLogger)
	r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))

	r.Route("/api", func(r chi.Router) {
		r.Get("/favorites", s.listFavorites)
		r.Post("/favorites", s.createFavorite)
		r.Delete("/favorites/{favoriteID}", s.deleteFavorite)
		r.Get("/subtitles/{movieID}/{language}", s.getSubtitle)
	})
	r.Get("/healthz", s.health)

	// The production client is a browser SPA on another origin
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	})
	s.handler = c.Handler(r)

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger logs method, path, status and duration for each request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.status).
			Dur("duration", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Msg("request")
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
