package rest

import (
	"net/http"

	"communityapp/application/services"
	"communityapp/interfaces/http/rest/handlers"
	"communityapp/interfaces/http/rest/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	persons    *services.PersonService
	gatherings *services.GatheringService
	campaigns  *services.CampaignService
	enableCORS bool
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	persons *services.PersonService,
	gatherings *services.GatheringService,
	campaigns *services.CampaignService,
	enableCORS bool,
	logger *zap.Logger,
) *Router {
	return &Router{
		persons:    persons,
		gatherings: gatherings,
		campaigns:  campaigns,
		enableCORS: enableCORS,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.enableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/persons", func(r chi.Router) {
			personHandler := handlers.NewPersonHandler(rt.persons, rt.logger)
			r.Post("/", personHandler.CreatePerson)
			r.Get("/", personHandler.FilterPersons)
		})

		r.Route("/gatherings", func(r chi.Router) {
			gatheringHandler := handlers.NewGatheringHandler(rt.gatherings, rt.logger)
			r.Post("/", gatheringHandler.CreateGathering)
			r.Get("/{gatheringID}/participants", gatheringHandler.ListParticipants)
		})

		r.Route("/campaigns", func(r chi.Router) {
			campaignHandler := handlers.NewCampaignHandler(rt.campaigns, rt.logger)
			r.Post("/", campaignHandler.Dispatch)
			r.Get("/analytics", campaignHandler.GetAnalytics)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
