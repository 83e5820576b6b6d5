package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ginjaninja78/ibankit/internal/metrics"
)

// NewRouter mounts the API, health checks and, when metricsHandler is set,
// the metrics endpoint at metricsPath.
func NewRouter(log *slog.Logger, m *metrics.Metrics, metricsHandler http.Handler, metricsPath string) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(requestLogger(log, m))

	NewAPI(log, m).AppendRoutes(router)

	router.Get("/-/live", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	if metricsHandler != nil {
		router.Method(http.MethodGet, metricsPath, metricsHandler)
	}

	return router
}

// requestLogger logs each request and records its latency under the matched
// route pattern, so path parameters do not explode label cardinality.
func requestLogger(log *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			elapsed := time.Since(start)
			m.ObserveHTTP(route, strconv.Itoa(status), elapsed)
			log.Debug("http request",
				slog.String("method", r.Method),
				slog.String("route", route),
				slog.Int("status", status),
				slog.Duration("duration", elapsed))
		})
	}
}

// Server runs the HTTP API until shut down.
type Server struct {
	// Addr is the bound address once Start returns.
	Addr string

	srv *http.Server
	log *slog.Logger
	wg  sync.WaitGroup
}

func NewServer(log *slog.Logger, handler http.Handler) *Server {
	return &Server{
		log: log.With(slog.String("app", "ibankit")),
		srv: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start listens on addr and serves in the background.
func (s *Server) Start(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening tcp port: %w", err)
	}

	s.Addr = l.Addr().String()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.log.Info("http server started", slog.String("addr", s.Addr))

		if err := s.srv.Serve(l); err != nil && err != http.ErrServerClosed {
			s.log.Error("serving http", "err", err)
		}

		s.log.Info("http server stopped")
	}()

	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	s.wg.Wait()
	return err
}
