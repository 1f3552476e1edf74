package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/clubscouncil/portal-backend/api/controllers"
	"github.com/clubscouncil/portal-backend/api/routes"
	"github.com/clubscouncil/portal-backend/internal/clubs"
	"github.com/clubscouncil/portal-backend/internal/clubsync"
	"github.com/clubscouncil/portal-backend/internal/members"
	"github.com/clubscouncil/portal-backend/internal/users"
	"github.com/clubscouncil/portal-backend/pkg/auth/session"
	"github.com/clubscouncil/portal-backend/pkg/config"
	"github.com/clubscouncil/portal-backend/pkg/db"
	"github.com/clubscouncil/portal-backend/pkg/env"
	"github.com/clubscouncil/portal-backend/pkg/logger"
	"github.com/clubscouncil/portal-backend/pkg/metrics"
	"github.com/clubscouncil/portal-backend/pkg/migrate"
	"github.com/clubscouncil/portal-backend/pkg/pubsub"
	"github.com/clubscouncil/portal-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub", err)
		}
	}()

	emitter, err := pubsub.NewEmitter(pubsubClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create event emitter", err)
		os.Exit(1)
	}

	sessionChecker, err := session.NewChecker(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create session checker", err)
		os.Exit(1)
	}

	cacheMetrics := metrics.NewCacheMetrics(prometheus.DefaultRegisterer)

	clubsRepo := clubs.NewRepository(dbClient.DB())
	clubsService, err := clubs.NewService(clubsRepo, emitter, cfg.Cache.ClubDetailCapacity, cacheMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create clubs service", err)
		os.Exit(1)
	}

	approvalPolicy := members.NewApprovalPolicy(clubsService, cfg.Cache.CategoryTTL)

	membersRepo := members.NewRepository(dbClient.DB())
	membersService, err := members.NewService(membersRepo, approvalPolicy, emitter, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create members service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(users.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	syncService, err := clubsync.NewService(
		cfg.Sync.SecretHash,
		membersRepo,
		clubsRepo,
		clubsService,
		usersService,
		emitter,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create sync service", err)
		os.Exit(1)
	}

	readiness := map[string]controllers.Pinger{
		"db":     dbClient,
		"redis":  redisClient,
		"pubsub": pubsubClient,
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			readiness,
			redisClient,
			sessionChecker,
			prometheus.DefaultGatherer,
			membersService,
			clubsService,
			syncService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
