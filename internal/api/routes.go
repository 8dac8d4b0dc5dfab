package api

import (
	_ "github.com/ballotchain/vote-submission-service/docs"
	"github.com/go-chi/chi"
	httpSwagger "github.com/swaggo/http-swagger"
)

func (a *Server) SetupRoutes(r *chi.Mux) {
	handlers := a.handlers
	r.Get("/healthcheck", registerHandler(handlers.HealthCheck))

	r.Post("/v1/biometric/verify", registerHandler(handlers.VerifyBiometric))
	r.Post("/v1/votes", registerHandler(handlers.SubmitVote))
	r.Get("/v1/votes/{submission_id}", registerHandler(handlers.GetVoteStatus))
	r.Delete("/v1/votes/{submission_id}", registerHandler(handlers.CancelVote))
	r.Get("/v1/elections/{election_id}", registerHandler(handlers.GetElectionInfo))

	r.Get("/swagger/*", httpSwagger.WrapHandler)
}
