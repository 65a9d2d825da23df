package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"aura/internal/analysis"
	"aura/internal/llmconfig"
	"aura/internal/logging"
	"aura/internal/services"
	"aura/internal/workitems"
)

const (
	requestIDHeader = "X-Request-ID"
	maxBodyBytes    = 32 << 20 // design requests carry base64 images
	shutdownTimeout = 5 * time.Second
)

// DesignAnalyzer runs design reverse engineering.
type DesignAnalyzer interface {
	ReverseEngineerDesign(ctx context.Context, req analysis.Request) (analysis.Result, error)
}

// InitiativeLister lists stored initiatives.
type InitiativeLister interface {
	ListInitiatives(ctx context.Context, filter workitems.InitiativeFilter) ([]workitems.Row, error)
}

// SettingsStore applies a resolver mutation as one persisted
// read-modify-write cycle.
type SettingsStore interface {
	Update(ctx context.Context, r *llmconfig.Resolver, mutate func(*llmconfig.Resolver) []llmconfig.Change) ([]llmconfig.Change, error)
}

// Options wires the server's collaborators. Resolver is required; a nil
// Design or Initiatives disables the matching routes with 503.
type Options struct {
	Bind        string
	Token       string
	Resolver    *llmconfig.Resolver
	Settings    SettingsStore
	Design      DesignAnalyzer
	Initiatives InitiativeLister
	Logger      *slog.Logger
}

// Server is the HTTP API.
type Server struct {
	bind        string
	resolver    *llmconfig.Resolver
	settings    SettingsStore
	design      DesignAnalyzer
	initiatives InitiativeLister
	logger      *slog.Logger

	handler http.Handler
	server  *http.Server
}

// NewServer builds the server and its routes.
func NewServer(opts Options) (*Server, error) {
	if opts.Resolver == nil {
		return nil, errors.New("api server requires a resolver")
	}
	s := &Server{
		bind:        strings.TrimSpace(opts.Bind),
		resolver:    opts.Resolver,
		settings:    opts.Settings,
		design:      opts.Design,
		initiatives: opts.Initiatives,
		logger:      logging.NewComponentLogger(opts.Logger, "api-server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/reverse-engineer-design", s.handleReverseEngineerDesign)
	mux.HandleFunc("GET /api/initiatives/list", s.handleListInitiatives)
	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /api/settings/llm", s.handleUpdateLLM)
	mux.HandleFunc("POST /api/settings/llm/reset", s.handleResetLLM)
	mux.HandleFunc("PUT /api/settings/modules/{module}/{tier}", s.handleSetModuleTier)
	mux.HandleFunc("GET /api/settings/modules/{module}/resolve", s.handleResolveModule)
	mux.HandleFunc("PUT /api/settings/reverse-engineering/{kind}", s.handleSetReverseEngineering)
	mux.HandleFunc("GET /api/providers", s.handleProviders)

	s.handler = s.withRequestID(authMiddleware(strings.TrimSpace(opts.Token), mux))
	s.server = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Handler exposes the routed handler for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured bind address and serves until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if s.bind == "" {
		return services.Wrap(services.ErrConfiguration, "api", "listen", "api bind address is empty", nil)
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api serve: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("api shutdown: %w", err)
		}
		s.logger.Info("api server stopped")
		return nil
	})
	return group.Wait()
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := services.WithRequestID(r.Context(), id)
		started := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		logging.WithContext(ctx, s.logger).Debug("api request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Duration("elapsed", time.Since(started)),
		)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{Success: false, Message: message})
}

// applySettings runs mutate through the settings store. Without a store the
// mutation only changes memory. A failed save is logged and the in-memory
// change stays applied; a failure before mutate ran yields no changes.
func (s *Server) applySettings(ctx context.Context, mutate func(*llmconfig.Resolver) []llmconfig.Change) ([]llmconfig.Change, error) {
	if s.settings == nil {
		return mutate(s.resolver), nil
	}
	changes, err := s.settings.Update(ctx, s.resolver, mutate)
	if err != nil && changes != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "settings snapshot save failed", "settings_save_failed",
			"check the settings_file path and permissions", logging.Error(err))
		return changes, nil
	}
	return changes, err
}
