package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/draft-claw/internal/api/handlers"
	"github.com/ramonehamilton/draft-claw/internal/api/response"
	"github.com/ramonehamilton/draft-claw/internal/version"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning)
	s.router.Get("/health", s.healthCheck)

	// WebSocket endpoint (no JSON content-type requirement)
	s.router.Get("/ws", s.wsHub.ServeWs)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/ws", s.wsHub.ServeWs)

		gameHandler := handlers.NewGameHandler(s.service, s.dispatcher)
		recordHandler := handlers.NewRecordHandler(s.service, s.pipeline, s.inboxDir)
		voteHandler := handlers.NewVoteHandler(s.service, s.dispatcher, s.metrics)
		r.Route("/games", func(r chi.Router) {
			r.Get("/", gameHandler.ListGames)
			r.Post("/", gameHandler.CreateGame)
			r.Route("/{gameID}", func(r chi.Router) {
				r.Get("/", gameHandler.GetGame)
				r.Put("/owner", gameHandler.SetOwner)
				r.Post("/observations", recordHandler.PostObservation)
				r.Get("/records", recordHandler.ListRecords)
				r.Get("/records/latest", recordHandler.LatestRecord)
				r.Get("/records/{pickID}", recordHandler.GetRecord)
				r.Route("/picks/{pickID}", func(r chi.Router) {
					r.Get("/votes", voteHandler.GetVotes)
					r.Post("/votes", voteHandler.CastVote)
					r.Post("/commit", voteHandler.Commit)
				})
			})
		})

		if s.processor != nil {
			commandHandler := handlers.NewCommandHandler(s.processor)
			r.Post("/commands", commandHandler.Relay)
		} else {
			r.Post("/commands", unavailable)
		}

		cardHandler := handlers.NewCardHandler(s.catalog, s.resolver)
		r.Get("/cards", cardHandler.SearchCards)

		metricsHandler := handlers.NewMetricsHandler(s.metrics, s.wsHub.ClientCount)
		r.Get("/metrics", metricsHandler.GetMetrics)
	})
}

func unavailable(w http.ResponseWriter, _ *http.Request) {
	response.ServiceUnavailable(w, errors.New("card data is not loaded"))
}

// healthCheck returns the server health status.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if s.service != nil {
		if err := s.service.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}
	response.Success(w, map[string]interface{}{
		"status":  status,
		"version": version.GetVersion(),
		"clients": s.wsHub.ClientCount(),
	})
}
