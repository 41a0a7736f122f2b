package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"hisab/internal/auth"
	"hisab/internal/core"
	applog "hisab/internal/log"
	"hisab/internal/members"
	"hisab/internal/report"
	"hisab/internal/services"
	"hisab/internal/tenant"
)

const sessionCookie = "hisab_session"

// Server is the dashboard API server. Report may be nil when the PDF
// capability failed its startup probe; the endpoint then answers 503.
type Server struct {
	http.Server

	dataDir  string
	creds    *auth.Credentials
	sessions *auth.Sessions
	dir      *members.Directory
	svc      *services.RecordService
	taxonomy core.Taxonomy
	report   *report.Builder

	logger      *applog.Logger
	rateLimiter *rateLimiter

	wsMu       sync.Mutex
	workspaces map[string]*tenant.Workspace

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr, dataDir string, creds *auth.Credentials, sessions *auth.Sessions, dir *members.Directory, svc *services.RecordService, builder *report.Builder) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		dataDir:     dataDir,
		creds:       creds,
		sessions:    sessions,
		dir:         dir,
		svc:         svc,
		taxonomy:    core.DefaultTaxonomy(),
		report:      builder,
		logger:      applog.New(slog.LevelInfo, applog.ComponentHTTP),
		rateLimiter: newRateLimiter(),
		workspaces:  make(map[string]*tenant.Workspace),
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/login", s.wrap(s.handleLogin))
	mux.HandleFunc("/logout", s.wrap(s.withSession(s.handleLogout)))

	mux.HandleFunc("/api/records", s.wrap(s.withSession(s.handleRecords)))
	mux.HandleFunc("/api/records/", s.wrap(s.withSession(s.handleRecordByID)))
	mux.HandleFunc("/api/records/import", s.wrap(s.withSession(s.handleImport)))
	mux.HandleFunc("/api/records/export", s.wrap(s.withSession(s.handleExport)))
	mux.HandleFunc("/api/records/reset", s.wrap(s.withSession(s.handleReset)))

	mux.HandleFunc("/api/members", s.wrap(s.withSession(s.handleMembers)))
	mux.HandleFunc("/api/members/import", s.wrap(s.withSession(s.handleMembersImport)))

	mux.HandleFunc("/api/summary", s.wrap(s.withSession(s.handleSummary)))
	mux.HandleFunc("/api/report", s.wrap(s.withSession(s.handleReport)))

	return s
}

// Shutdown stops the listener and the rate limiter sweep goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// workspace returns the open workspace for a user, opening it on first use.
// One store instance per tenant keeps the file mutex meaningful across
// concurrent sessions.
func (s *Server) workspace(user string) (*tenant.Workspace, error) {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	if ws, ok := s.workspaces[user]; ok {
		return ws, nil
	}
	ws, err := tenant.Open(s.dataDir, user, s.dir)
	if err != nil {
		return nil, fmt.Errorf("open workspace for %s: %w", user, err)
	}
	s.workspaces[user] = ws
	return ws, nil
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, ws *tenant.Workspace)

// withSession resolves the session cookie to a tenant workspace. Requests
// without a live session get 401.
func (s *Server) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not logged in")
			return
		}
		user, ok := s.sessions.User(cookie.Value)
		if !ok {
			writeError(w, http.StatusUnauthorized, "session expired")
			return
		}
		ws, err := s.workspace(user)
		if err != nil {
			slog.ErrorContext(r.Context(), "Workspace open failed", "user", user, "error", err)
			writeError(w, http.StatusInternalServerError, "workspace unavailable")
			return
		}
		next(w, r, ws)
	}
}

// wrap adds security headers, rate limiting on writes, a request id, and
// request logging.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		logger := s.logger.With(applog.FieldClientIP, clientIP, "request_id", requestID)
		r = r.WithContext(context.WithValue(r.Context(), applog.LoggerContextKey, logger))

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			logger.Warn("Rate limit exceeded", applog.FieldMethod, r.Method, applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		logger.HTTPEnd(r.Context(), r, rw.statusCode, time.Since(start).Milliseconds())
	}
}

// responseWriter captures the status code for the completion log line.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// extractClientIP prefers X-Forwarded-For only when it parses as an IP;
// otherwise the socket peer wins.
func extractClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	return directIP
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
