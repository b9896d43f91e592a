package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/doula-crm/internal/infra/http/handlers"
	"github.com/xavierca1/doula-crm/internal/infra/http/middleware"
)

type routes struct {
	Conversion *handlers.ConversionHandler
	Lead       *handlers.LeadHandler
	Health     *handlers.HealthHandler
}

func newRouter(h routes, allowedOrigins []string, logger logrus.FieldLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/conversions/accounts", h.Conversion.SearchAccounts)

	r.Route("/leads", func(r chi.Router) {
		r.Post("/", h.Lead.CaptureLead)
		r.Route("/{leadId}", func(r chi.Router) {
			r.Get("/conversion/preview", h.Conversion.GetPreview)
			r.Post("/conversion/steps/{step}/validate", h.Conversion.ValidateStep)
			r.Post("/convert", h.Conversion.Convert)
		})
	})

	return r
}
