package http

import (
	"log/slog"
	"net/http"
	"time"

	"hisab/internal/tenant"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	User string `json:"user"`
}

// handleLogin verifies credentials and issues a session cookie. The
// workspace is opened eagerly so a broken data directory surfaces at login
// rather than on the first write.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed login request")
		return
	}
	if err := s.creds.Verify(req.Username, req.Password); err != nil {
		slog.WarnContext(r.Context(), "Login rejected", "user", req.Username)
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if _, err := s.workspace(req.Username); err != nil {
		slog.ErrorContext(r.Context(), "Workspace open failed at login", "user", req.Username, "error", err)
		writeError(w, http.StatusInternalServerError, "workspace unavailable")
		return
	}

	token, err := s.sessions.Create(req.Username)
	if err != nil {
		slog.ErrorContext(r.Context(), "Session creation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "session unavailable")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.sessions.TTL()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	slog.InfoContext(r.Context(), "Login", "user", req.Username)
	writeJSON(w, http.StatusOK, loginResponse{User: req.Username})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, ws *tenant.Workspace) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		s.sessions.Destroy(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	slog.InfoContext(r.Context(), "Logout", "user", ws.UserKey)
	w.WriteHeader(http.StatusNoContent)
}
