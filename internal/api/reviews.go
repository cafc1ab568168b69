package api

import (
	"net/http"

	"carcatalog/internal/models"
)

// CarReviews handles GET /reviews/{id}, where id is a car id
func (h *Handler) CarReviews(w http.ResponseWriter, r *http.Request) {
	carID, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.reviews.ForCar(r.Context(), carID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// AverageRating handles GET /cars/{id}/average-rating
func (h *Handler) AverageRating(w http.ResponseWriter, r *http.Request) {
	carID, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.reviews.Average(r.Context(), carID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// CreateReview handles POST /reviews
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req models.ReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	review, err := h.reviews.Create(r.Context(), identityFromContext(r), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, models.ReviewResponse{Review: *review, Success: true})
}

// UpdateReview handles PUT /reviews/{id}
func (h *Handler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req models.ReviewUpdate
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	review, err := h.reviews.Update(r.Context(), identityFromContext(r), id, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, models.ReviewResponse{Review: *review, Success: true})
}

// DeleteReview handles DELETE /reviews/{id}
func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.reviews.Delete(r.Context(), identityFromContext(r), id); err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, models.MessageResponse{Message: "Review deleted", Success: true})
}
