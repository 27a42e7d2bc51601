// Package api serves fragment layouts over HTTP.
//
// The server wraps a [pipeline.Runner] and a [store.Store]. Stateless
// endpoints compute a layout from the request body; store endpoints load
// fragments from the store, lay them out, and write the patch back.
//
// # Routes
//
//	GET    /healthz                       liveness and build info
//	POST   /v1/layout                     lay out a posted fragment document
//	GET    /v1/convert/pixel?row=&col=    grid position to pixel offset
//	GET    /v1/convert/grid?top=&left=    pixel offset to grid position
//	GET    /v1/fragments                  stored fragments, positions, hints
//	POST   /v1/fragments                  store fragments (ids assigned if empty)
//	POST   /v1/fragments/layout           lay out the store and persist the patch
//	DELETE /v1/fragments/{id}             remove a fragment
//	POST   /v1/fragments/{id}/positions   move a fragment
//
// Errors are JSON objects carrying the [errors.Code] of the failure and the
// request id. Every response has an X-Request-ID header.
package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/fragmentgrid/pkg/pipeline"
	"github.com/matzehuels/fragmentgrid/pkg/store"
)

// DefaultMaxBodyBytes caps request bodies.
const DefaultMaxBodyBytes = 8 << 20

// ShutdownTimeout bounds graceful shutdown in ListenAndServe.
const ShutdownTimeout = 5 * time.Second

// Server is the HTTP API.
type Server struct {
	runner *pipeline.Runner
	store  store.Store
	logger *log.Logger

	// Defaults are the options requests start from. Fields set in a
	// request override them.
	Defaults pipeline.Options

	// MaxBodyBytes caps request bodies; zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

// NewServer creates a server. A nil runner gets an uncached one, a nil
// store means an empty MemoryStore, and a nil logger discards output.
func NewServer(runner *pipeline.Runner, st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	if st == nil {
		st = store.NewMemoryStore()
	}
	return &Server{runner: runner, store: st, logger: logger}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)

		r.Route("/convert", func(r chi.Router) {
			r.Get("/pixel", s.handleToPixel)
			r.Get("/grid", s.handleToGrid)
		})

		r.Route("/fragments", func(r chi.Router) {
			r.Get("/", s.handleListFragments)
			r.Post("/", s.handleSaveFragments)
			r.Post("/layout", s.handleStoreLayout)
			r.Delete("/{id}", s.handleDeleteFragment)
			r.Post("/{id}/positions", s.handleMoveFragment)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errNotFound(r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errMethodNotAllowed(r.Method, r.URL.Path))
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) maxBody() int64 {
	if s.MaxBodyBytes > 0 {
		return s.MaxBodyBytes
	}
	return DefaultMaxBodyBytes
}
