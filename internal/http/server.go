package http

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"bilancio/internal/services"
)

// Config holds what the server needs beyond the session itself. A zero
// RateLimitPerMinute falls back to 60; an empty APIToken disables auth,
// which only makes sense behind a trusted reverse proxy.
type Config struct {
	Addr               string
	APIToken           string
	RateLimitPerMinute int
}

// Server serves the JSON API for one household session.
type Server struct {
	http.Server
	session      *services.Session
	apiToken     string
	rateLimiter  *rateLimiter
	metrics      *securityMetrics
	shutdownOnce sync.Once
}

type contextKey string

const requestIDKey contextKey = "request_id"

// NewServer wires all routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(cfg Config, session *services.Session) *Server {
	if cfg.RateLimitPerMinute <= 0 {
		cfg.RateLimitPerMinute = 60
	}

	s := &Server{
		session:     session,
		apiToken:    cfg.APIToken,
		rateLimiter: newRateLimiter(cfg.RateLimitPerMinute),
		metrics:     &securityMetrics{},
	}
	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Shutdown stops the cleanup goroutines before draining connections.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /settings", s.handleGetSettings)
	mux.HandleFunc("PUT /settings", s.handleUpdateSettings)
	mux.HandleFunc("POST /apply", s.handleApply)

	mux.HandleFunc("GET /transactions", s.handleListTransactions)
	mux.HandleFunc("POST /transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /categories", s.handleListCategories)
	mux.HandleFunc("POST /categories", s.handleCreateCategory)
	mux.HandleFunc("PUT /categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("GET /rules", s.handleListRules)
	mux.HandleFunc("POST /rules", s.handleCreateRule)
	mux.HandleFunc("GET /rules/{id}", s.handleGetRule)
	mux.HandleFunc("PUT /rules/{id}", s.handleUpdateRule)
	mux.HandleFunc("DELETE /rules/{id}", s.handleDeleteRule)

	// Literal segments win over {id}, so /bills/statuses stays reachable.
	mux.HandleFunc("GET /bills", s.handleListBills)
	mux.HandleFunc("POST /bills", s.handleCreateBill)
	mux.HandleFunc("GET /bills/statuses", s.handleBillStatuses)
	mux.HandleFunc("GET /bills/{id}", s.handleGetBill)
	mux.HandleFunc("PUT /bills/{id}", s.handleUpdateBill)
	mux.HandleFunc("DELETE /bills/{id}", s.handleDeleteBill)
	mux.HandleFunc("PUT /bills/{id}/paid", s.handleSetBillPaid)

	mux.HandleFunc("GET /debts", s.handleListDebts)
	mux.HandleFunc("POST /debts", s.handleCreateDebt)
	mux.HandleFunc("GET /debts/{id}", s.handleGetDebt)
	mux.HandleFunc("PUT /debts/{id}", s.handleUpdateDebt)
	mux.HandleFunc("DELETE /debts/{id}", s.handleDeleteDebt)
	mux.HandleFunc("POST /debts/{id}/payments", s.handleRecordDebtPayment)

	mux.HandleFunc("GET /funds", s.handleListFunds)
	mux.HandleFunc("POST /funds", s.handleCreateFund)
	mux.HandleFunc("GET /funds/{id}", s.handleGetFund)
	mux.HandleFunc("PUT /funds/{id}", s.handleUpdateFund)
	mux.HandleFunc("DELETE /funds/{id}", s.handleDeleteFund)
	mux.HandleFunc("POST /funds/{id}/contributions", s.handleContribute)

	mux.HandleFunc("GET /vehicles", s.handleListVehicles)
	mux.HandleFunc("POST /vehicles", s.handleCreateVehicle)
	mux.HandleFunc("GET /vehicles/{id}", s.handleGetVehicle)
	mux.HandleFunc("PUT /vehicles/{id}", s.handleUpdateVehicle)
	mux.HandleFunc("DELETE /vehicles/{id}", s.handleDeleteVehicle)
	mux.HandleFunc("GET /vehicles/{id}/items", s.handleListMaintenanceItems)
	mux.HandleFunc("PUT /vehicles/{id}/items/{code}", s.handleSaveMaintenanceItem)
	mux.HandleFunc("DELETE /vehicles/{id}/items/{code}", s.handleDeleteMaintenanceItem)
	mux.HandleFunc("GET /vehicles/{id}/status", s.handleVehicleStatus)
	mux.HandleFunc("GET /vehicles/{id}/logs", s.handleListMaintenanceLogs)
	mux.HandleFunc("POST /vehicles/{id}/logs", s.handleCreateMaintenanceLog)
	mux.HandleFunc("POST /vehicles/{id}/logs/quick", s.handleQuickLog)

	mux.HandleFunc("GET /plans/{month}", s.handleGetPlan)
	mux.HandleFunc("PUT /plans/{month}", s.handleSavePlan)

	mux.HandleFunc("GET /reports/{month}", s.handleGetReport)
	mux.HandleFunc("POST /reports/{month}/export", s.handleExportReport)

	return s.withMiddleware(mux)
}

// withMiddleware adds request logging, rate limiting, auth, and security
// headers around the whole mux. Health probes skip all of it so they stay
// cheap and unauthenticated.
func (s *Server) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" || r.URL.Path == "/readyz" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		clientIP := extractClientIP(r)

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		if detectSuspiciousRequest(r, s.metrics) {
			slog.WarnContext(ctx, "Suspicious request detected",
				"request_id", requestID,
				"method", r.Method,
				"url", r.URL.Path,
				"client_ip", clientIP)
		}

		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP, s.metrics) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		if !s.authorized(r) {
			w.Header().Set("WWW-Authenticate", `Bearer realm="bilancio"`)
			writeError(w, http.StatusUnauthorized, "missing or invalid token")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		level := slog.LevelInfo
		switch {
		case rw.statusCode >= 500:
			level = slog.LevelError
		case rw.statusCode >= 400:
			level = slog.LevelWarn
		}
		slog.Log(ctx, level, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	})
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// authorized checks the bearer token. An empty configured token means auth
// is off.
func (s *Server) authorized(r *http.Request) bool {
	if s.apiToken == "" {
		return true
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.apiToken)) == 1
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
