package main

import (
	"fmt"
	"os"

	"github.com/ecologics/collection-service/internal/auth"
	"github.com/ecologics/collection-service/internal/config"
	"github.com/ecologics/collection-service/internal/db"
	"github.com/ecologics/collection-service/internal/excel"
	httphandler "github.com/ecologics/collection-service/internal/http"
	"github.com/ecologics/collection-service/internal/http/middleware"
	"github.com/ecologics/collection-service/internal/logger"
	"github.com/ecologics/collection-service/internal/pdf"
	"github.com/ecologics/collection-service/internal/repository"
	"github.com/ecologics/collection-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	stores, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	if stores.HasFallback() {
		log.Info().Msg("embedded fallback store enabled")
	}

	requestRepo := repository.NewRequestRepository(stores)
	positionRepo := repository.NewPositionRepository(stores)
	userRepo := repository.NewUserRepository(stores)
	statsRepo := repository.NewStatsRepository(stores)
	complaintRepo := repository.NewComplaintRepository(stores)
	routeRepo := repository.NewRouteRepository(stores)

	tokenManager := auth.NewManager(cfg.Auth.AccessSecret, cfg.Auth.AccessTTL)

	accountService := service.NewAccountService(userRepo, tokenManager, log)
	requestService := service.NewRequestService(requestRepo, log)
	trackingService := service.NewTrackingService(requestRepo, positionRepo, userRepo, log)
	statsService := service.NewStatsService(statsRepo, excel.NewGenerator(), pdf.NewGenerator(), cfg.Stats.RecentLimit, log)
	supportService := service.NewSupportService(complaintRepo, routeRepo, log)

	handler := httphandler.NewHandler(accountService, requestService, trackingService, statsService, supportService, log)
	authMiddleware := middleware.Auth(tokenManager)
	adminMiddleware := middleware.RequireAdmin()
	router := httphandler.NewRouter(handler, authMiddleware, adminMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting collection service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
