package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type requestIDKey struct{}

// requestIDMiddleware assigns each request an id, honoring one supplied by
// the caller.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request processed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
			"request_id", requestID(r.Context()),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// rateLimitMiddleware applies a global bucket plus a per-client bucket keyed
// by session (falling back to remote IP).
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.globalLimiter.Allow() {
			s.log.Warn("global rate limit exceeded", "path", r.URL.Path)
			w.Header().Set("Retry-After", "5")
			s.respondError(w, http.StatusTooManyRequests, "rate limit exceeded, try again shortly")
			return
		}

		key := r.Header.Get(sessionHeader)
		if key == "" {
			if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
				key = host
			} else {
				key = r.RemoteAddr
			}
		}
		if !s.clientLimiter.Allow(key) {
			s.log.Warn("client rate limit exceeded", "client", key, "path", r.URL.Path)
			w.Header().Set("Retry-After", "5")
			s.respondError(w, http.StatusTooManyRequests, "rate limit exceeded, try again shortly")
			return
		}

		next.ServeHTTP(w, r)
	})
}
