package main

import (
	"context"
	"errors"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	rediscache "github.com/vncsmyrnk/waterpoll/internal/adapters/cache/redis"
	"github.com/vncsmyrnk/waterpoll/internal/adapters/handler/graphql"
	"github.com/vncsmyrnk/waterpoll/internal/adapters/handler/http"
	"github.com/vncsmyrnk/waterpoll/internal/adapters/repository"
	"github.com/vncsmyrnk/waterpoll/internal/config"
	"github.com/vncsmyrnk/waterpoll/internal/core/ports"
	"github.com/vncsmyrnk/waterpoll/internal/core/services"
	"github.com/vncsmyrnk/waterpoll/internal/logging"
)

// @title        Water crisis poll API
// @version      1.0
// @description  Read the yes/no tally and record votes.
// @BasePath     /
func main() {
	cfg, err := config.Load("server", os.Args[1:])
	if err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}
	log := logging.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	voteRepo, closeStore, err := repository.Open(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to open vote store")
	}
	defer closeStore()

	var voteService ports.VoteService
	if cfg.CounterEnabled() {
		rdb, err := rediscache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to redis")
		}
		defer rdb.Close()

		counting := services.NewCountingVoteService(voteRepo, rediscache.NewTallyCounter(rdb, cfg.RedisKey), log)
		// Until a rebuild succeeds, tallies are read from the vote log.
		tally, err := counting.Recount(ctx)
		if err != nil {
			log.WithError(err).Warn("failed to rebuild tally counter, serving tallies from the vote log")
		} else {
			log.WithFields(logrus.Fields{"yes": tally.Yes, "no": tally.No}).Info("tally counter rebuilt from vote log")
		}

		voteService = counting
	} else {
		voteService = services.NewVoteService(voteRepo)
	}

	pageHandler, err := http.NewPageHandler(voteService, log)
	if err != nil {
		log.WithError(err).Fatal("failed to load page templates")
	}
	graphqlHandler, err := graphql.NewHandler(voteService, log)
	if err != nil {
		log.WithError(err).Fatal("failed to build graphql schema")
	}

	handler := http.NewHandler(http.Handlers{
		Page:    pageHandler,
		Vote:    http.NewVoteHandler(voteService, log),
		Health:  http.NewHealthHandler(voteRepo, log),
		GraphQL: graphqlHandler,
	}, log)
	server := &stdhttp.Server{Addr: cfg.Addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		log.WithFields(logrus.Fields{"addr": cfg.Addr, "store": cfg.StoreDriver}).Info("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown did not complete")
	}
}
