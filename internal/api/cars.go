package api

import (
	"net/http"

	"carcatalog/internal/models"
	"carcatalog/internal/service"
)

// ListCars handles GET /cars?model=&page=&limit=
func (h *Handler) ListCars(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", service.DefaultCarLimit)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.cars.List(r.Context(), service.CarQuery{
		Model: r.URL.Query().Get("model"),
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetCar handles GET /cars/{id}
func (h *Handler) GetCar(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	car, err := h.cars.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, car)
}

// CreateCar handles POST /cars
func (h *Handler) CreateCar(w http.ResponseWriter, r *http.Request) {
	var in models.CarInput
	if err := decodeJSON(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	car, err := h.cars.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, car)
}

// UpdateCar handles PUT /cars/{id}
func (h *Handler) UpdateCar(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var in models.CarInput
	if err := decodeJSON(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	car, err := h.cars.Update(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, car)
}

// DeleteCar handles DELETE /cars/{id}
func (h *Handler) DeleteCar(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	car, err := h.cars.Delete(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, car)
}
