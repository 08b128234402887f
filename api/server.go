// Package api provides the HTTP transport for the agricultural power and
// recommendation service.
package api

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"agripower/db/postgres"
	"agripower/decision/recommend"
	"agripower/internal/config"
)

// Server is the HTTP API server.
type Server struct {
	httpServer *http.Server
	store      *postgres.Store
	reader     recommend.CatalogReader
	persister  recommend.Persister
	cfg        *config.Config
	verifier   TokenVerifier
}

// NewServer wires a chi router over the given store and token verifier.
func NewServer(store *postgres.Store, cfg *config.Config, verifier TokenVerifier) *Server {
	adapter := storeAdapter{store}
	return &Server{
		store:     store,
		reader:    adapter,
		persister: adapter,
		cfg:       cfg,
		verifier:  verifier,
	}
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors(s.cfg.CORSOrigins))

	r.Get("/healthz", s.getHealthz)

	r.Route("/api", func(r chi.Router) {
		r.Use(requireAuth(s.verifier, s.cfg))

		r.Route("/calculations", func(r chi.Router) {
			r.With(middleware.Timeout(powerLossDeadline)).Post("/power-loss", s.postPowerLoss)
			r.With(middleware.Timeout(powerLossDeadline)).Post("/minimum-power", s.postMinimumPower)
			r.Get("/history", s.getCalculationHistory)
		})

		r.Route("/recommendations", func(r chi.Router) {
			r.With(middleware.Timeout(recommendationDeadline)).Post("/generate", s.postGenerateRecommendation)
			r.Get("/history", s.getRecommendationHistory)
			r.Get("/{id}", s.getRecommendationByID)
		})
	})

	return r
}

// Recommendation requests get a 15s cancellation deadline, power-loss and
// minimum-power requests get 10s. Both sit comfortably under the 30s
// blanket timeout applied to every other route.
const (
	recommendationDeadline = 15 * time.Second
	powerLossDeadline      = 10 * time.Second
)

// getHealthz is an unauthenticated liveness probe.
func (s *Server) getHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger emits one structured line per request instead of chi's
// own text logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}

// cors is an origin-allowlist middleware; "*" or an empty list allows
// every origin.
func cors(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || allowed[origin]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Set("Access-Control-Max-Age", "86400")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// StartWithGracefulShutdown starts the HTTP server on the configured port
// and blocks until SIGINT/SIGTERM, then drains in-flight requests before
// returning.
func (s *Server) StartWithGracefulShutdown() error {
	s.httpServer = &http.Server{
		Addr:         ":" + strconv.Itoa(s.cfg.Port),
		Handler:      s.router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info().Int("port", s.cfg.Port).Msg("starting agripower API server")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-quit:
		log.Info().Msg("shutting down agripower API server")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(ctx)
	}
}
