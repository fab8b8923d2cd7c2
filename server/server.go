package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/randalmurphal/blogkit/blog"
	"github.com/randalmurphal/blogkit/render"
	"github.com/randalmurphal/blogkit/store"
)

const (
	// maxBodyBytes caps request bodies.
	maxBodyBytes = 1 << 20

	defaultShutdownTimeout = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	// Logger receives request and error logs. Nil uses slog.Default().
	Logger *slog.Logger

	// PageSize is the listing page size when a request gives none.
	// Zero means blog.DefaultPageSize.
	PageSize int
}

// Server serves the JSON API and HTML pages.
type Server struct {
	store    store.Store
	renderer *render.Renderer
	logger   *slog.Logger
	pageSize int
	pages    *template.Template
	handler  http.Handler
}

// New creates a server over st that renders post content with r.
func New(st store.Store, r *render.Renderer, opts Options) *Server {
	s := &Server{
		store:    st,
		renderer: r,
		logger:   opts.Logger,
		pageSize: opts.PageSize,
		pages:    parsePages(),
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.pageSize <= 0 {
		s.pageSize = blog.DefaultPageSize
	}

	mux := http.NewServeMux()
	s.routes(mux)
	s.handler = s.recoverPanics(s.logRequests(mux))
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/posts", s.handleListPosts)
	mux.HandleFunc("POST /api/posts", s.handleCreatePost)
	mux.HandleFunc("GET /api/posts/{id}", s.handleGetPost)
	mux.HandleFunc("PUT /api/posts/{id}", s.handleUpdatePost)
	mux.HandleFunc("DELETE /api/posts/{id}", s.handleDeletePost)
	mux.HandleFunc("GET /api/comments", s.handleListComments)
	mux.HandleFunc("POST /api/comments", s.handleAddComment)
	mux.HandleFunc("GET /api/schema", s.handleSchemaIndex)
	mux.HandleFunc("GET /api/schema/{name}", s.handleSchema)

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /{$}", s.handleListPage)
	mux.HandleFunc("GET /posts", s.handleListPage)
	mux.HandleFunc("GET /posts/{slug}", s.handlePostPage)
	mux.HandleFunc("POST /posts/{slug}/comments", s.handleCommentForm)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// HTTPConfig holds listener settings for ListenAndServe.
type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// ListenAndServe serves on cfg.Addr until ctx is done, then shuts down
// gracefully within cfg.ShutdownTimeout. If ready is non-nil it receives
// the bound address once the listener is open.
func (s *Server) ListenAndServe(ctx context.Context, cfg HTTPConfig, ready chan<- net.Addr) error {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}

	srv := &http.Server{
		Handler:           s,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()

	s.logger.Info("http server listening", "addr", ln.Addr().String())
	if ready != nil {
		ready <- ln.Addr()
	}

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
