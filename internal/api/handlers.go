package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"carcatalog/internal/apperror"
	"carcatalog/internal/auth"
	"carcatalog/internal/database"
	"carcatalog/internal/events"
	"carcatalog/internal/models"
	"carcatalog/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const heartbeatInterval = 15 * time.Second

// Handler holds dependencies for API handlers
type Handler struct {
	cars        *service.CarService
	sales       *service.SaleService
	users       *service.UserService
	favorites   *service.FavoriteService
	reviews     *service.ReviewService
	bookings    *service.BookingService
	broadcaster *events.Broadcaster
	logger      *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(services *service.Services, broadcaster *events.Broadcaster, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		cars:        services.Cars,
		sales:       services.Sales,
		users:       services.Users,
		favorites:   services.Favorites,
		reviews:     services.Reviews,
		bookings:    services.Bookings,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"listeners": h.broadcaster.ListenerCount(),
	})
}

// StreamEvents handles GET /events (SSE)
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	listener := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(listener)

	h.stream(w, r, listener, "")
}

// StreamCollectionEvents handles GET /events/{collection} (SSE)
func (h *Handler) StreamCollectionEvents(w http.ResponseWriter, r *http.Request) {
	collection, err := database.ParseCollection(chi.URLParam(r, "collection"))
	if err != nil {
		respondError(w, http.StatusNotFound, apperror.KindNotFound, err.Error())
		return
	}

	identity := identityFromContext(r)
	switch collection {
	case database.Bookings:
		if identity == nil {
			respondError(w, http.StatusUnauthorized, apperror.KindUnauthorized, "Token required")
			return
		}
	case database.Users:
		if identity == nil {
			respondError(w, http.StatusUnauthorized, apperror.KindUnauthorized, "Token required")
			return
		}
		if !identity.IsAdmin {
			respondError(w, http.StatusForbidden, apperror.KindForbidden, "Administrator privileges required")
			return
		}
	}

	listener := h.broadcaster.SubscribeCollection(string(collection))
	defer h.broadcaster.UnsubscribeCollection(string(collection), listener)

	h.stream(w, r, listener, string(collection))
}

func (h *Handler) stream(w http.ResponseWriter, r *http.Request, listener *events.Listener, collection string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, apperror.KindInternal, "Streaming unsupported")
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable buffering in nginx

	connected, _ := json.Marshal(map[string]string{
		"listener_id": listener.ID,
		"collection":  collection,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
	fmt.Fprintf(w, "event: connected\ndata: %s\n\n", connected)
	flusher.Flush()

	identity := identityFromContext(r)

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case event := <-listener.Events:
			if !visibleTo(identity, event) {
				continue
			}
			fmt.Fprint(w, events.FormatSSE(event))
			flusher.Flush()

		case <-ticker.C:
			fmt.Fprint(w, events.FormatPing())
			flusher.Flush()
			h.broadcaster.UpdatePing(listener)

		case <-listener.Done:
			// Listener was closed by broadcaster
			return

		case <-r.Context().Done():
			// Client disconnected
			return
		}
	}
}

// visibleTo reports whether the caller may see event. Account events are for
// administrators; booking events go to administrators and the booking's owner.
func visibleTo(identity *auth.Identity, event models.ChangeEvent) bool {
	switch database.Collection(event.Collection) {
	case database.Users:
		return identity != nil && identity.IsAdmin
	case database.Bookings:
		if identity == nil {
			return false
		}
		if identity.IsAdmin {
			return true
		}
		switch b := event.Data.(type) {
		case models.Booking:
			return b.UserID == identity.Username
		case *models.Booking:
			return b != nil && b.UserID == identity.Username
		}
		return false
	default:
		return true
	}
}

// decodeJSON decodes the request body into dst
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.Validation("Invalid JSON body")
	}
	return nil
}

// pathID parses an integer route parameter. Non-numeric ids match no resource.
func pathID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, apperror.NotFound("Resource not found")
	}
	return id, nil
}

// queryInt parses an optional integer query parameter
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Validation(name + " must be an integer")
	}
	return n, nil
}

// fail renders err. Application errors keep their kind; anything else is logged and hidden.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) || appErr.Kind == apperror.KindInternal {
		h.logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		respondError(w, http.StatusInternalServerError, apperror.KindInternal, "Internal server error")
		return
	}

	respondError(w, appErr.StatusCode(), appErr.Kind, appErr.Message)
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, kind apperror.Kind, message string) {
	respondJSON(w, status, models.ErrorResponse{
		Error: message,
		Kind:  string(kind),
	})
}
