package main

import (
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

const requestIDHeader = "X-Request-ID"

// withMiddleware wraps the mux, outermost first: panic recovery, request
// IDs, logging and metrics, CORS, rate limiting, then optional bearer auth.
func (d *Dependencies) withMiddleware(next http.Handler) http.Handler {
	h := d.requireAuth(next)
	h = d.rateLimit(h)
	h = d.allowCORS(h)
	h = d.logRequests(h)
	h = d.assignRequestID(h)
	h = d.recoverPanics(h)
	return h
}

// statusWriter captures the status code for logging and metrics.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (d *Dependencies) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				d.Logger.Error("panic while serving request",
					slog.Any("panic", rec),
					slog.String("path", r.URL.Path),
					slog.String("stack", string(debug.Stack())),
				)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// assignRequestID honors a caller-supplied X-Request-ID and mints one
// otherwise. The ID is echoed on the response.
func (d *Dependencies) assignRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func (d *Dependencies) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		// The mux fills in r.Pattern during routing; the pattern keeps the
		// metric label cardinality bounded.
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)

		d.Metrics.CountRequest(route, r.Method, sw.status)
		d.Metrics.ObserveRequest(route, elapsed)

		d.Logger.Info("request served",
			slog.String("request_id", r.Header.Get(requestIDHeader)),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", sw.status),
			slog.Duration("duration", elapsed),
		)
	})
}

func (d *Dependencies) allowCORS(next http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: d.Config.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", requestIDHeader},
	})
	return c.Handler(next)
}

// rateLimit applies a token bucket per client address.
func (d *Dependencies) rateLimit(next http.Handler) http.Handler {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)
	limiterFor := func(client string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[client]
		if !ok {
			l = rate.NewLimiter(
				rate.Limit(d.Config.Server.RateLimitPerSecond),
				d.Config.Server.RateLimitBurst,
			)
			limiters[client] = l
		}
		return l
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			client = r.RemoteAddr
		}
		if !limiterFor(client).Allow() {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAuth validates HS256 bearer tokens when auth is enabled. The
// health endpoint stays open for probes.
func (d *Dependencies) requireAuth(next http.Handler) http.Handler {
	if !d.Config.Auth.Enabled {
		return next
	}
	secret := []byte(d.Config.Auth.JWTSecret)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}

		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		token, err := jwt.Parse(raw, func(*jwt.Token) (any, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
