// Package server exposes the classification and rules administration HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/heimdall-ai/heimdall/internal/classify"
	"github.com/heimdall-ai/heimdall/models"
)

// RuleService is the rules administration surface the API serves.
type RuleService interface {
	List(ctx context.Context) (models.RuleDatabase, error)
	Add(ctx context.Context, c models.Category) error
	Update(ctx context.Context, name string, c models.Category) error
	Delete(ctx context.Context, name string) error
}

// Analyzer classifies one email.
type Analyzer interface {
	Analyze(ctx context.Context, req models.ClassificationRequest) (classify.Outcome, error)
}

// Options configures the listener.
type Options struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

type Server struct {
	rules    RuleService
	analyzer Analyzer
	origins  map[string]struct{}
	server   *http.Server
}

// New wires the handlers. Nothing listens until Start.
func New(opts Options, rules RuleService, analyzer Analyzer) *Server {
	s := &Server{
		rules:    rules,
		analyzer: analyzer,
		origins:  make(map[string]struct{}, len(opts.AllowedOrigins)),
	}
	for _, o := range opts.AllowedOrigins {
		s.origins[o] = struct{}{}
	}

	s.server = &http.Server{
		Addr:              net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port)),
		Handler:           s.registerRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Addr is the configured listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start serves in a goroutine tracked by wg. Listener failures are sent to errChan.
func (s *Server) Start(wg *sync.WaitGroup, errChan chan<- error) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("API server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
