package main

import (
	"context"
	"log"
	"time"

	"ballotbox/config"
	"ballotbox/internal/handler"
	"ballotbox/internal/live"
	"ballotbox/internal/ratelimit"
	"ballotbox/internal/redis"
	"ballotbox/internal/repository"
	"ballotbox/internal/server"
	"ballotbox/internal/services"
	"ballotbox/internal/storage"
	"ballotbox/pkg/database"
	"ballotbox/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	logMode := logger.DevelopmentMode
	if cfg.AppMode == server.ReleaseMode {
		logMode = logger.ProductionMode
	}
	l := logger.New(logMode)
	logger.SetGlobalLogger(l)

	database.Connect(cfg)
	defer database.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis is optional: without it the results cache is disabled and live
	// updates stay instance-local.
	var redisUp bool
	var resultsCache services.ResultsCache
	redisClient := redis.NewClient(redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redis.Ping(ctx, redisClient); err != nil {
		l.Warnf("Redis unavailable, results cache and cross-instance live feed disabled: %v", err)
	} else {
		redisUp = true
		resultsCache = redis.NewResultsCache(redisClient, redis.DefaultResultsCacheConfig())
	}

	profileRepo := repository.NewProfileRepository(database.DB)
	pollRepo := repository.NewPollRepository(database.DB)
	voteRepo := repository.NewVoteRepository(database.DB)

	limiter := ratelimit.New(ratelimit.Config{
		Window:      cfg.RateLimit.Window,
		SweepPeriod: cfg.RateLimit.SweepPeriod,
		MaxEntries:  cfg.RateLimit.MaxEntries,
		Limits: map[ratelimit.Action]int{
			ratelimit.ActionCreatePoll: cfg.RateLimit.CreatePoll,
			ratelimit.ActionVote:       cfg.RateLimit.Vote,
			ratelimit.ActionUpdatePoll: cfg.RateLimit.UpdatePoll,
			ratelimit.ActionDeletePoll: cfg.RateLimit.DeletePoll,
			ratelimit.ActionGeneral:    cfg.RateLimit.General,
		},
	})
	limiter.Start(ctx)
	defer limiter.Stop()

	hub := live.NewHub()
	go hub.Run(ctx)

	// Votes land on one instance; the Redis feed carries the fresh tally to
	// watchers connected anywhere.
	local := live.NewBroadcaster(hub)
	var broadcaster services.ResultsBroadcaster = local
	if redisUp {
		feed := redis.NewResultsFeed(redisClient, l)
		go feed.Run(ctx, local)
		broadcaster = feed
	}

	authService := services.NewAuthService(profileRepo, cfg)
	pollService := services.NewPollService(pollRepo, profileRepo, resultsCache, l)
	voteService := services.NewVoteService(voteRepo, pollRepo, profileRepo, resultsCache, broadcaster, l)

	handlers := &server.Handlers{
		Auth: handler.NewAuthHandler(authService),
		Poll: handler.NewPollHandler(pollService),
		Vote: handler.NewVoteHandler(voteService),
		Live: live.NewHandler(hub),
	}

	if cfg.S3Bucket != "" {
		s3Client, err := storage.NewClient(ctx, storage.S3Config{
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			Endpoint:   cfg.S3Endpoint,
			PublicBase: cfg.S3PublicBase,
			PresignTTL: 15 * time.Minute,
		})
		if err != nil {
			log.Fatalf("Failed to initialize image storage: %v", err)
		}
		handlers.Upload = handler.NewUploadHandler(services.NewUploadService(s3Client))
	}

	srv := server.New(cfg, l)
	srv.SetupRoutes(handlers, authService, limiter)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
