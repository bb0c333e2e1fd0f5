// Package api exposes the review use case over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/techn4r/ai-code-reviewer/internal/domain"
	"github.com/techn4r/ai-code-reviewer/internal/usecase/review"
)

// Service is the slice of the review use case the API exposes.
type Service interface {
	Review(ctx context.Context, code, lang, contextText, filename string) (domain.ReviewResult, error)
	ReviewFile(ctx context.Context, path string) (domain.ReviewResult, error)
	ReviewDiff(ctx context.Context, diffText string, baseContent map[string]string) ([]domain.ReviewResult, error)
}

// ServiceFactory returns a Service configured for the given review mode.
type ServiceFactory func(mode review.Mode) (Service, error)

// Options configures the HTTP server.
type Options struct {
	Addr       string
	AuthSecret string // empty disables bearer auth
	Logger     review.Logger
}

// Server serves review requests over HTTP.
type Server struct {
	opts     Options
	services ServiceFactory
	http     *http.Server
}

// NewServer wires the HTTP server around a service factory.
func NewServer(opts Options, services ServiceFactory) *Server {
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}

	s := &Server{
		opts:     opts,
		services: services,
	}

	s.http = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // reviews wait on the provider
	}

	return s
}

// Start serves until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.http.Shutdown(shutdownCtx)
	}()

	if s.opts.Logger != nil {
		s.opts.Logger.LogInfo(ctx, "starting review API", map[string]interface{}{
			"addr": s.opts.Addr,
			"auth": s.opts.AuthSecret != "",
		})
	}

	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.health)
	mux.HandleFunc("/review", s.requireAuth(s.handleReview))
	mux.HandleFunc("/review/diff", s.requireAuth(s.handleReviewDiff))
	mux.HandleFunc("/review/file", s.requireAuth(s.handleReviewFile))

	return mux
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
