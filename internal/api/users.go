package api

import (
	"encoding/json"
	"net/http"

	"carcatalog/internal/apperror"
	"carcatalog/internal/models"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// readCredentials takes the credentials from Basic auth, falling back to a JSON body
func readCredentials(r *http.Request) credentials {
	if username, password, ok := r.BasicAuth(); ok {
		return credentials{Username: username, Password: password}
	}

	var c credentials
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&c)
	}
	return c
}

// Register handles POST /register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	c := readCredentials(r)

	if err := h.users.Register(r.Context(), c.Username, c.Password); err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, models.MessageResponse{Message: "User registered successfully", Success: true})
}

// Login handles GET and POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	c := readCredentials(r)
	if c.Username == "" || c.Password == "" {
		w.Header().Set("WWW-Authenticate", `Basic realm="Login Required"`)
		respondError(w, http.StatusUnauthorized, apperror.KindUnauthorized, "Authentication required")
		return
	}

	resp, err := h.users.Login(r.Context(), c.Username, c.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
