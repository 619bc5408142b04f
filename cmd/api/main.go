package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"pawws/internal/adapter/repo"
	"pawws/internal/http/handlers"
	httpapi "pawws/internal/http/httpapi"
	"pawws/internal/infra"
	"pawws/internal/infra/geoip"
	"pawws/internal/metrics"
	"pawws/internal/middleware"
	"pawws/internal/service"
	"pawws/internal/storage"
)

func main() {
	// Muat .env (opsional)
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init blob store")
	}

	var countryLookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		countryLookup = resolver.CountryCode
	}

	m := metrics.New()

	animals := repo.NewAnimalRepository(dbpool)
	milestones := repo.NewMilestoneRepository(dbpool)
	donations := repo.NewDonationRepository(dbpool)
	users := repo.NewUserRepository(dbpool)

	app := &handlers.App{
		Logger:     logger,
		Intake:     service.NewIntake(animals, milestones, donations, store, m, logger),
		Moderation: service.NewModeration(donations, milestones, m, logger),
		Animals:    animals,
		Milestones: milestones,
		Donations:  donations,
		Users:      users,
		PaymentQR:  repo.NewPaymentQRRepository(dbpool),
		Stats:      repo.NewStatsRepository(dbpool),
		Store:      store,
		JWTSecret:  cfg.JWTSecret,
	}

	router := httpapi.NewRouter(app, cfg, logger, m.Registry, countryLookup)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
