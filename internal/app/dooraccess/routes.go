// Package dooraccess собирает HTTP-маршруты и зависимости сервиса доступа в зал.
package dooraccess

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	// Сгенерированное описание API для /docs.
	_ "github.com/magabrotheeeer/gym-door-access/docs"
	"github.com/magabrotheeeer/gym-door-access/internal/http/handlers/doortoken/issue"
	"github.com/magabrotheeeer/gym-door-access/internal/http/handlers/doortoken/validate"
	"github.com/magabrotheeeer/gym-door-access/internal/http/handlers/health"
	"github.com/magabrotheeeer/gym-door-access/internal/http/middlewarectx"
)

// Routes содержит зависимости, нужные маршрутам.
type Routes struct {
	Issuer       issue.Service
	Validator    validate.Service
	DB           health.Pinger
	Sessions     middlewarectx.TokenParser
	ScannerKey   string
	IssueLimiter *rate.Limiter
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, deps Routes) {
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Мобильное приложение участника
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(deps.Sessions, logger))
			if deps.IssueLimiter != nil {
				r.Use(middlewarectx.RateLimitMiddleware(deps.IssueLimiter, logger))
			}
			r.Post("/door-tokens", issue.New(logger, deps.Issuer).ServeHTTP)
		})

		// Сканеры на дверях
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.APIKeyMiddleware(deps.ScannerKey, logger))
			r.Post("/door-access/validate", validate.New(logger, deps.Validator).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, deps.DB).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
