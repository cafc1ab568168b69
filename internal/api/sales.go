package api

import (
	"net/http"

	"carcatalog/internal/service"
)

// ListSales handles GET /sales?model=&country=&year=
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year", 0)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	query := r.URL.Query()
	result, err := h.sales.List(r.Context(), service.SaleFilter{
		Model:   query.Get("model"),
		Country: query.Get("country"),
		Year:    year,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// AnnualSales handles GET /sales/annual
func (h *Handler) AnnualSales(w http.ResponseWriter, r *http.Request) {
	result, err := h.sales.AnnualByCountry(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// TopModels handles GET /sales/top-models
func (h *Handler) TopModels(w http.ResponseWriter, r *http.Request) {
	result, err := h.sales.TopModels(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// SalesByYear handles GET /sales/total-by-year
func (h *Handler) SalesByYear(w http.ResponseWriter, r *http.Request) {
	result, err := h.sales.TotalByYear(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
