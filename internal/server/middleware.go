package server

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/google/uuid"
	"github.com/josephgoksu/muse/internal/render"
)

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

type ctxKey int

const (
	credentialKey ctxKey = iota
	requestIDKey
)

// SecretSource resolves the provider credential for a request.
type SecretSource interface {
	Credential(ctx context.Context) (string, error)
}

// SecretFunc adapts a function to SecretSource.
type SecretFunc func(ctx context.Context) (string, error)

func (f SecretFunc) Credential(ctx context.Context) (string, error) { return f(ctx) }

// StaticSecret is a fixed credential. Empty means none is configured.
type StaticSecret string

func (s StaticSecret) Credential(context.Context) (string, error) { return string(s), nil }

// WithCredential returns a copy of ctx carrying credential.
func WithCredential(ctx context.Context, credential string) context.Context {
	return context.WithValue(ctx, credentialKey, credential)
}

// CredentialFrom returns the credential injected into ctx, or "".
func CredentialFrom(ctx context.Context) string {
	v, _ := ctx.Value(credentialKey).(string)
	return v
}

// RequestIDFrom returns the request ID assigned by the middleware, or "".
func RequestIDFrom(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// secretMiddleware places the server-side credential into the request
// context. Client-supplied headers and body are never consulted.
func (s *Server) secretMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.secrets == nil {
			next.ServeHTTP(w, r)
			return
		}
		cred, err := s.secrets.Credential(r.Context())
		if err != nil {
			s.logger.WarnContext(r.Context(), "credential lookup failed", "error", err)
			cred = ""
		}
		next.ServeHTTP(w, r.WithContext(WithCredential(r.Context(), cred)))
	})
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// recoverMiddleware turns a handler panic into a 500 page and logs the stack.
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.ErrorContext(r.Context(), "handler panic",
					"panic", fmt.Sprint(rec),
					"path", r.URL.Path,
					"request_id", RequestIDFrom(r.Context()),
					"stack", string(debug.Stack()),
				)
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				_ = render.HTML(w, http.StatusText(http.StatusInternalServerError), "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) isAllowedOrigin(origin string) bool {
	_, ok := s.origins[origin]
	return ok
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Vary", "Origin")
			if s.isAllowedOrigin(origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
			}
		}

		if r.Method == http.MethodOptions {
			if origin != "" && !s.isAllowedOrigin(origin) {
				http.Error(w, "origin not allowed", http.StatusForbidden)
				return
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
