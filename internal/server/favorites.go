package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// GET /api/favorites?userId=U
func (s *Server) listFavorites(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	favorites, err := s.store.ListFavorites(r.Context(), userID)
	if err != nil {
		s.log.Error().Err(err).Msg("list favorites failed")
		writeError(w, http.StatusInternalServerError, "failed to list favorites")
		return
	}
	writeJSON(w, http.StatusOK, favorites)
}

// POST /api/favorites
func (s *Server) createFavorite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID  string `json:"userId"`
		MovieID string `json:"movieId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.UserID == "" || req.MovieID == "" {
		writeError(w, http.StatusBadRequest, "userId and movieId are required")
		return
	}

	favorite, err := s.store.CreateFavorite(r.Context(), req.UserID, req.MovieID)
	if err != nil {
		s.log.Error().Err(err).Msg("create favorite failed")
		writeError(w, http.StatusInternalServerError, "failed to create favorite")
		return
	}
	writeJSON(w, http.StatusCreated, favorite)
}

// DELETE /api/favorites/{favoriteID}
func (s *Server) deleteFavorite(w http.ResponseWriter, r *http.Request) {
	favoriteID := chi.URLParam(r, "favoriteID")

	err := s.store.DeleteFavorite(r.Context(), favoriteID)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "favorite not found")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("delete favorite failed")
		writeError(w, http.StatusInternalServerError, "failed to delete favorite")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
