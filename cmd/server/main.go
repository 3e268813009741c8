// Command server runs the ShapeU habit tracking API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apirouter "github.com/shapeu/shapeu/internal/api"
	"github.com/shapeu/shapeu/internal/api/accounts"
	achievementsapi "github.com/shapeu/shapeu/internal/api/achievements"
	goalsapi "github.com/shapeu/shapeu/internal/api/goals"
	insightsapi "github.com/shapeu/shapeu/internal/api/insights"
	metasapi "github.com/shapeu/shapeu/internal/api/metas"
	profileapi "github.com/shapeu/shapeu/internal/api/profile"
	statsapi "github.com/shapeu/shapeu/internal/api/stats"
	"github.com/shapeu/shapeu/internal/auth"
	"github.com/shapeu/shapeu/internal/cache"
	"github.com/shapeu/shapeu/internal/catalog"
	"github.com/shapeu/shapeu/internal/config"
	"github.com/shapeu/shapeu/internal/repository"
	"github.com/shapeu/shapeu/internal/service/achievements"
	"github.com/shapeu/shapeu/internal/service/checkin"
	"github.com/shapeu/shapeu/internal/service/goals"
	"github.com/shapeu/shapeu/internal/service/insights"
	"github.com/shapeu/shapeu/internal/service/metas"
	"github.com/shapeu/shapeu/internal/service/stats"
	"github.com/shapeu/shapeu/internal/service/users"
	"github.com/shapeu/shapeu/internal/textgen"
	"github.com/shapeu/shapeu/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log.Info().
		Str("environment", cfg.Server.Environment).
		Int("port", cfg.Server.Port).
		Msg("Starting ShapeU server")

	db, err := repository.NewDB(&cfg.Database.Postgres, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(log); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	redisCache, err := cache.NewRedisCache(&cfg.Database.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisCache.Close()

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load achievement catalog")
	}
	log.Info().Int("badges", len(cat.Achievements)).Msg("Achievement catalog loaded")

	// Repositories
	userRepo := repository.NewUserRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	logRepo := repository.NewDailyLogRepository(db)
	metaRepo := repository.NewMetaRepository(db)
	unlockRepo := repository.NewAchievementRepository(db)

	// Services
	generator := textgen.NewClient(&cfg.Gemini, log)
	achievementService := achievements.NewService(cat, userRepo, goalRepo, logRepo, unlockRepo, log)
	metaService := metas.NewService(metaRepo, userRepo, log)
	checkinService := checkin.NewService(goalRepo, logRepo, userRepo, achievementService, metaService, log)
	goalService := goals.NewService(goalRepo, generator, log)
	statsService := stats.NewService(logRepo, goalRepo, redisCache, log)
	insightsService := insights.NewService(logRepo, goalRepo, userRepo, generator, statsService, log)
	userService := users.NewService(userRepo, goalRepo, logRepo, unlockRepo, metaRepo, goalService, achievementService, log)

	tokens := auth.NewTokenManager(&cfg.Auth)

	scan := func(ctx context.Context, userID uint) {
		if _, err := achievementService.Check(ctx, userID); err != nil {
			log.Warn().Err(err).Uint("user_id", userID).Msg("Achievement scan failed")
		}
	}

	handlers := apirouter.Handlers{
		Accounts:     accounts.NewHandler(userService, tokens, cfg.Auth.SecureCookie, log),
		Goals:        goalsapi.NewHandler(goalService, checkinService, statsService, scan, log),
		Achievements: achievementsapi.NewHandler(cat, achievementService, unlockRepo, userRepo, log),
		Metas:        metasapi.NewHandler(metaService, log),
		Profile:      profileapi.NewHandler(userService, cfg.Auth.SecureCookie, log),
		Stats:        statsapi.NewHandler(statsService, log),
		Insights:     insightsapi.NewHandler(insightsService, log),
	}

	router := apirouter.NewRouter(handlers, tokens, db, redisCache, log)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown")
	}
	log.Info().Msg("Server stopped")
}
