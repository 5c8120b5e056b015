package api

import (
	"net/http"
	"time"

	"judgeboard/internal/api/handler"
	"judgeboard/internal/app/service"
	"judgeboard/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	authService *service.AuthService,
	contestService *service.ContestService,
	newsService *service.NewsService,
	ingestService *service.SolutionIngestService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Verifies a bearer token when present and puts claims in context;
	// enforcement happens per route group.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(v1 chi.Router) {
		authHandler := handler.NewAuthHandler(authService)
		v1.Group(func(auth chi.Router) {
			authHandler.RegisterRoutes(auth)
		})

		contestHandler := handler.NewContestHandler(contestService)
		v1.Route("/contests", contestHandler.RegisterRoutes)

		newsHandler := handler.NewNewsHandler(newsService)
		v1.Route("/news", newsHandler.RegisterRoutes)

		webhookHandler := handler.NewWebhookHandler(ingestService)
		v1.Route("/webhook", webhookHandler.RegisterRoutes)
	})

	return r
}
