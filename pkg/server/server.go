package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/derivgraph/pkg/cache"
	"github.com/matzehuels/derivgraph/pkg/loader"
	"github.com/matzehuels/derivgraph/pkg/render/nodelink"
)

const shutdownTimeout = 5 * time.Second

// Server serves one load result.
type Server struct {
	state  *loader.State
	logger *log.Logger
	render nodelink.Options
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration

	// cacheID identifies the payload in render cache keys.
	cacheID string
	router  chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger. The default is log.Default().
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRenderOptions sets the defaults for rendered artifacts. Requests may
// still enable detailed labels or child edges with query parameters.
func WithRenderOptions(opts nodelink.Options) Option {
	return func(s *Server) { s.render = opts }
}

// WithCache stores rendered SVG in c for ttl. Without it nothing is cached.
func WithCache(c cache.Cache, keyer cache.Keyer, ttl time.Duration) Option {
	return func(s *Server) {
		if c != nil {
			s.cache = c
		}
		if keyer != nil {
			s.keyer = keyer
		}
		s.ttl = ttl
	}
}

// WithPayloadHash keys cached renders by the payload hash instead of the
// load ID, so a shared cache survives restarts.
func WithPayloadHash(hash string) Option {
	return func(s *Server) {
		if hash != "" {
			s.cacheID = hash
		}
	}
}

// New creates a server for state.
func New(state *loader.State, opts ...Option) *Server {
	s := &Server{
		state:   state,
		logger:  log.Default(),
		cache:   cache.NewNullCache(),
		keyer:   cache.NewDefaultKeyer(),
		cacheID: state.ID,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Use(s.loadID)
		r.Get("/graph", s.handleGraph)
		r.Get("/graph.dot", s.handleRender(nodelink.FormatDOT))
		r.Get("/graph.svg", s.handleRender(nodelink.FormatSVG))
		r.Get("/schema", s.handleSchema)
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("Serving derivation graph", "addr", ln.Addr().String(), "source", s.state.Source)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Debug("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
