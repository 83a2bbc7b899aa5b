package httpapp

import (
	"net/http"

	"github.com/calderonm/spinqueue/internal/domain"
)

type submitRequestBody struct {
	SongName   string `json:"song_name"`
	ArtistName string `json:"artist_name"`
}

type submitResponse struct {
	Action domain.Action       `json:"action"`
	Data   *domain.SongRequest `json:"data"`
}

type listResponse struct {
	Data []*domain.SongRequest `json:"data"`
}

type cleanupResponse struct {
	Message      string `json:"message"`
	DeletedCount int    `json:"deletedCount"`
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SubmitRequest handles POST /api/songs/request. Public.
func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var body submitRequestBody
	if err := decodeBody(r, &body); err != nil {
		h.writeError(w, &domain.ValidationError{Field: "body", Message: "invalid JSON"})
		return
	}

	ev, err := h.Requests.Submit(r.Context(), body.SongName, body.ArtistName)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, submitResponse{Action: ev.Action, Data: ev.Data})
}

// GetRequests handles GET /api/songs/requests: the queue in popularity
// order for the DJ dashboard. Public.
func (h *Handler) GetRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.Requests.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if reqs == nil {
		reqs = []*domain.SongRequest{}
	}
	h.writeJSON(w, http.StatusOK, listResponse{Data: reqs})
}

// Cleanup handles DELETE /api/songs/cleanup. DJ only; RequireAuth has
// already vetted the bearer token when this runs.
func (h *Handler) Cleanup(w http.ResponseWriter, r *http.Request) {
	n, err := h.Requests.Cleanup(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, cleanupResponse{
		Message:      "All song requests deleted.",
		DeletedCount: n,
	})
}

// Login handles POST /api/auth/login by proxying the password grant to the
// identity provider.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if err := decodeBody(r, &body); err != nil {
		h.writeError(w, &domain.ValidationError{Field: "body", Message: "invalid JSON"})
		return
	}
	if body.Email == "" || body.Password == "" {
		h.writeError(w, &domain.ValidationError{Field: "email/password", Message: "are required"})
		return
	}

	tok, err := h.Identity.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tok)
}
