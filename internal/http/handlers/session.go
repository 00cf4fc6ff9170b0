package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/model"
)

type SessionHandler struct {
	logger *slog.Logger
}

func NewSessionHandler(logger *slog.Logger) *SessionHandler {
	return &SessionHandler{logger: logger}
}

type loginView struct {
	Error     string `json:"error,omitempty"`
	IsLoading bool   `json:"isLoading"`
}

func (h *SessionHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	s := auth.FromContext(r.Context())
	writeJSON(w, http.StatusOK, loginView{Error: s.Error(), IsLoading: s.IsLoading()})
}

// Login accepts JSON or a form post.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := decodeJSON(r, &req); err != nil {
			WriteError(w, r, http.StatusBadRequest, "invalid json")
			return
		}
	} else {
		req.Username = r.FormValue("username")
		req.Password = r.FormValue("password")
	}

	s := auth.FromContext(r.Context())
	if err := s.Login(r.Context(), req.Username, req.Password); err != nil {
		writeJSON(w, http.StatusUnauthorized, loginView{Error: s.Error()})
		return
	}
	http.Redirect(w, r, middleware.LandingPath, http.StatusSeeOther)
}

// Logout always ends the local session; a failed backend call is only logged.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := auth.FromContext(r.Context()).Logout(r.Context()); err != nil {
		h.logger.Warn("Backend logout failed", "error", err,
			"correlation_id", middleware.GetCorrelationID(r.Context()))
	}
	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}

func (h *SessionHandler) Session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, auth.FromContext(r.Context()).Snapshot())
}
