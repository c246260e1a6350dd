package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/riandyrn/otelchi"
	otelchimetric "github.com/riandyrn/otelchi/metric"
	"github.com/socialchef/cocktail-studio/internal/flow"
	"github.com/socialchef/cocktail-studio/internal/sentry"
	"go.opentelemetry.io/otel"
)

// Router builds the HTTP handler with tracing, metrics, CORS and panic
// capture in front of every route.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(otelchi.Middleware(s.cfg.ServiceName,
		otelchi.WithChiRoutes(r),
		otelchi.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health"
		}),
	))

	metricCfg := otelchimetric.NewBaseConfig(s.cfg.ServiceName, otelchimetric.WithMeterProvider(otel.GetMeterProvider()))
	r.Use(otelchimetric.NewRequestDurationMillis(metricCfg))
	r.Use(otelchimetric.NewRequestInFlight(metricCfg))
	r.Use(otelchimetric.NewResponseSizeBytes(metricCfg))

	r.Use(chimiddleware.RequestID)
	r.Use(sentry.HTTPMiddleware)

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.HandleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/studio", s.HandleGetStudio)
		r.Put("/studio/tab", s.HandleSetTab)

		for _, kind := range flow.Kinds {
			r.Post("/"+string(kind), s.HandleTrigger(kind))
			r.Get("/"+string(kind), s.HandleFlowState(kind))
		}

		r.Post("/sanitize", s.HandleSanitize)
		r.Post("/recipes/preview", s.HandlePreviewRecipes)
		r.Get("/selftest", s.HandleSelfTest)
	})

	return r
}
