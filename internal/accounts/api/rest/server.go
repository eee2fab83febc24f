// Package rest exposes the account directory over an HTTP JSON API.
package rest

import (
	"log"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/accounthub/internal/accounts/directory"
)

// Server hosts the account directory endpoints.
type Server struct {
	directory *directory.Service
	logger    *log.Logger
	tracer    trace.Tracer
}

// NewServer builds an API server around the directory service.
// A nil logger falls back to the process default.
func NewServer(dir *directory.Service, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		directory: dir,
		logger:    logger,
		tracer:    otel.Tracer("accounthub/api"),
	}
}

// Handler returns the routed HTTP handler for the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(http.MethodGet+" /healthz", s.handleHealthz)
	mux.HandleFunc(http.MethodGet+" /v1/users", s.handleEmailProbe)
	mux.HandleFunc(http.MethodGet+" /v1/users/{userID}", s.handleGetUser)
	mux.HandleFunc(http.MethodPost+" /v1/invites", s.handleInvite)
	mux.HandleFunc(http.MethodPost+" /v1/invites/confirm", s.handleConfirmInvite)
	mux.HandleFunc(http.MethodPost+" /v1/users/{userID}/confirm", s.handleConfirm)
	mux.HandleFunc(http.MethodPost+" /v1/users/{userID}/password-reset", s.handlePasswordReset)
	mux.HandleFunc(http.MethodPost+" /v1/users/{userID}/email-change", s.handleEmailChange)
	mux.HandleFunc(http.MethodPost+" /v1/users/{userID}/tokens", s.handleGenerateToken)
	return s.withTracing(mux)
}

// withTracing opens one span per request so handler work nests under it.
func (s *Server) withTracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
			),
		)
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
