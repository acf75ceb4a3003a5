package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"showlog/models"
	"showlog/services/session"
)

type sessionService interface {
	SignIn(ctx context.Context, email, password string) (models.Session, error)
	Current() (models.Session, error)
	Clear() error
}

var _ sessionService = (*session.Service)(nil)

// SessionHandler exposes sign-in/sign-out and the current profile.
type SessionHandler struct {
	Service sessionService
}

func NewSessionHandler(service sessionService) *SessionHandler {
	return &SessionHandler{Service: service}
}

// sessionView never echoes the token back out.
type sessionView struct {
	User      models.User `json:"user"`
	ExpiresAt string      `json:"expiresAt,omitempty"`
}

func viewOf(sess models.Session) sessionView {
	view := sessionView{User: sess.User}
	if !sess.ExpiresAt.IsZero() {
		view.ExpiresAt = sess.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return view
}

func (h *SessionHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.Email == "" || body.Password == "" {
		http.Error(w, "email and password are required", http.StatusBadRequest)
		return
	}

	sess, err := h.Service.SignIn(r.Context(), body.Email, body.Password)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	writeJSON(w, viewOf(sess))
}

func (h *SessionHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Service.Current()
	if err != nil {
		if errors.Is(err, session.ErrNotSignedIn) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, viewOf(sess))
}

func (h *SessionHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Clear(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
