package api

import (
	"net/http"

	"carcatalog/internal/models"
)

// ListBookings handles GET /bookings. Admins see every booking.
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookings.List(r.Context(), identityFromContext(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, bookings)
}

// UserBookings handles GET /user/bookings
func (h *Handler) UserBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookings.ForUser(r.Context(), identityFromContext(r).Username)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, bookings)
}

// AdminBookings handles GET /admin/bookings
func (h *Handler) AdminBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookings.All(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, bookings)
}

// CreateBooking handles POST /bookings
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req models.BookingRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	booking, err := h.bookings.Create(r.Context(), identityFromContext(r), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, booking)
}

// CancelBooking handles DELETE /bookings/{id}
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	booking, err := h.bookings.Delete(r.Context(), identityFromContext(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, models.BookingCancelled{Message: "Booking cancelled", Booking: *booking})
}
