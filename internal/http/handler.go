package httpapp

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/calderonm/spinqueue/internal/app"
	"github.com/calderonm/spinqueue/internal/broadcast"
	"github.com/calderonm/spinqueue/internal/domain"
	"github.com/calderonm/spinqueue/internal/identity"
	"github.com/calderonm/spinqueue/internal/logger"
)

// Identity is the slice of the external provider the handlers need: a
// boolean authorization gate for destructive operations plus the login
// proxy.
type Identity interface {
	VerifyToken(ctx context.Context, token string) (*identity.User, error)
	Login(ctx context.Context, email, password string) (*identity.Token, error)
}

type Handler struct {
	Requests *app.RequestService
	Hub      *broadcast.Hub
	Identity Identity
	Logger   *logger.Logger
}

func NewHandler(rs *app.RequestService, hub *broadcast.Hub, id Identity, log *logger.Logger) *Handler {
	return &Handler{
		Requests: rs,
		Hub:      hub,
		Identity: id,
		Logger:   log.WithComponent("http"),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)

	r.Route("/api/songs", func(r chi.Router) {
		r.Post("/request", h.SubmitRequest)
		r.Get("/requests", h.GetRequests)
		r.Get("/live", h.Live)
		r.With(h.RequireAuth).Delete("/cleanup", h.Cleanup)
	})

	r.Post("/api/auth/login", h.Login)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// writeError maps the domain error taxonomy onto status codes: bad input
// is 400, rejected credentials 401, everything else (ledger and provider
// failures) 500. The body shape is {"error": "..."} throughout.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case domain.IsValidation(err):
		status = http.StatusBadRequest
	case domain.IsAuth(err):
		status = http.StatusUnauthorized
	}
	if status == http.StatusInternalServerError {
		h.Logger.Error("request failed", "error", err)
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
