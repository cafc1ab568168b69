package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// GetFavorites handles GET /favorites/{username}
func (h *Handler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	favs, err := h.favorites.Get(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, favs)
}

// AddFavorite handles POST /favorites/{username}/add/{carID}
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	carID, err := pathID(r, "carID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp, err := h.favorites.Add(r.Context(), chi.URLParam(r, "username"), carID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// RemoveFavorite handles DELETE /favorites/{username}/remove/{carID}
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	carID, err := pathID(r, "carID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	// A car that is not a favorite still answers 200 with success false.
	resp, err := h.favorites.Remove(r.Context(), chi.URLParam(r, "username"), carID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
