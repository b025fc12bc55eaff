package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	rediscache "github.com/vncsmyrnk/waterpoll/internal/adapters/cache/redis"
	"github.com/vncsmyrnk/waterpoll/internal/adapters/repository"
	"github.com/vncsmyrnk/waterpoll/internal/config"
	"github.com/vncsmyrnk/waterpoll/internal/core/services"
	"github.com/vncsmyrnk/waterpoll/internal/logging"
)

func main() {
	cfg, err := config.Load("tallyrecount", os.Args[1:])
	if err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}
	log := logging.New(cfg.LogLevel)

	if !cfg.CounterEnabled() {
		log.Fatal("REDIS_URL is required to rebuild the tally counter")
	}

	// Use a timeout for the job execution to prevent it from hanging indefinitely
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	voteRepo, closeStore, err := repository.Open(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to open vote store")
	}
	defer closeStore()

	rdb, err := rediscache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}
	defer rdb.Close()

	recountService := services.NewRecountService(voteRepo, rediscache.NewTallyCounter(rdb, cfg.RedisKey))

	log.Info("starting tally recount")

	tally, err := recountService.Recount(ctx)
	if err != nil {
		log.WithError(err).Fatal("tally recount failed")
	}

	log.WithFields(logrus.Fields{"yes": tally.Yes, "no": tally.No}).Info("tally recount completed")
	fmt.Printf("yes=%d no=%d total=%d\n", tally.Yes, tally.No, tally.Total())
}
