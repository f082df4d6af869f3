package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/limaJavier/seating/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	service        service.SeatingService
	allowedOrigins []string
	logger         *zap.Logger
}

func NewRouter(seatingService service.SeatingService, allowedOrigins []string, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		service:        seatingService,
		allowedOrigins: allowedOrigins,
		logger:         logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(rt.logger))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
	}))

	router.Get("/health", rt.healthCheck)
	router.Handle("/metrics", promhttp.Handler())

	seatingHandler := NewSeatingHandler(rt.service, rt.logger)
	router.Route("/api", func(r chi.Router) {
		r.Post("/generate-seating", seatingHandler.GenerateSeating)
		r.Post("/check-roll-numbers", seatingHandler.CheckRollNumbers)
		r.Post("/lookup-room", seatingHandler.LookupRoom)
		r.Get("/seating/latest", seatingHandler.LatestSeating)
		r.Get("/seating/latest/report", seatingHandler.LatestReport)
		r.Get("/download-seating-pdf", seatingHandler.LatestReport)
		r.Post("/save-seating-data", seatingHandler.SaveSeatingData)
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
