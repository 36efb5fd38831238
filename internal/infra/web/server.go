package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-tutoring-bot/internal/usecase"
)

// Server exposes health, metrics and a small authenticated admin API for
// inspecting enrollments.
type Server struct {
	statsUC *usecase.StatsUseCase
	auth    *AuthManager
	apiKey  string
	log     *zerolog.Logger
}

func NewServer(statsUC *usecase.StatsUseCase, auth *AuthManager, apiKey string, logger *zerolog.Logger) *Server {
	srvLog := logger.With().Str("component", "AdminWeb").Logger()
	return &Server{
		statsUC: statsUC,
		auth:    auth,
		apiKey:  apiKey,
		log:     &srvLog,
	}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/api/v1/login", s.loginHandler())

	r.Group(func(r chi.Router) {
		r.Use(s.sessionMiddleware)
		r.Get("/api/v1/stats", statsHandler(s.statsUC))
		r.Get("/api/v1/students", studentsListHandler(s.statsUC))
	})

	return r
}

// sessionMiddleware requires a valid admin session token on every request.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
