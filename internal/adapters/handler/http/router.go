package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/vncsmyrnk/waterpoll/docs"
)

const (
	// A valid vote body is a few dozen bytes.
	maxVoteBodyBytes    = 1 << 10
	maxGraphQLBodyBytes = 64 << 10
)

type Handlers struct {
	Page    *PageHandler
	Vote    *VoteHandler
	Health  *HealthHandler
	GraphQL http.Handler
}

func NewHandler(h Handlers, log logrus.FieldLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: log, NoColor: true}))
	r.Use(middleware.Recoverer)

	r.Get("/", h.Page.Index)
	r.With(middleware.RequestSize(maxVoteBodyBytes)).Post("/vote", h.Vote.SubmitVote)
	r.Get("/healthz", h.Health.Healthz)

	r.Route("/api", func(r chi.Router) {
		r.Get("/tally", h.Vote.GetTally)
		r.With(middleware.RequestSize(maxVoteBodyBytes)).Post("/votes", h.Vote.CreateVote)
	})

	if h.GraphQL != nil {
		r.With(middleware.RequestSize(maxGraphQLBodyBytes)).Handle("/graphql", h.GraphQL)
	}

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	return r
}
