package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"judgeboard/internal/api"
	"judgeboard/internal/app/access"
	"judgeboard/internal/app/ident"
	"judgeboard/internal/app/service"
	"judgeboard/internal/app/standings"
	"judgeboard/internal/common/security"
	"judgeboard/internal/domain/repository"
	"judgeboard/internal/platform/cache"
	"judgeboard/internal/platform/config"
	"judgeboard/internal/platform/database"
	"judgeboard/internal/platform/logger"
)

func main() {
	config.Load()
	log := logger.New("judgeboard")

	security.InitJWT()

	database.Connect()
	defer database.Close()
	log.Info("database connected")

	cache.ConnectRedis()
	defer cache.CloseRedis()
	log.Info("redis connected")

	// Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	contestRepo := repository.NewPgContestRepository(database.DB)
	problemRepo := repository.NewPgProblemRepository(database.DB)
	newsRepo := repository.NewPgNewsRepository(database.DB)
	solutionRepo := repository.NewPgSolutionRepository(database.DB)

	// Core components
	allocator := ident.NewPgAllocator(database.DB, config.AppConfig.IDSequenceFloor)
	verificationStore := access.NewRedisVerificationStore(cache.RDB, config.AppConfig.JWTExp)
	gate := access.NewGate(verificationStore)
	standingsCache := standings.NewCache(contestRepo, solutionRepo, config.AppConfig.RanklistPenaltyMinutes)

	// Services
	authService := service.NewAuthService(userRepo, verificationStore)
	contestService := service.NewContestService(contestRepo, problemRepo, allocator, gate, standingsCache, log)
	newsService := service.NewNewsService(newsRepo, allocator, log)
	ingestService := service.NewSolutionIngestService(solutionRepo, contestRepo, log)

	router := api.NewRouter(authService, contestService, newsService, ingestService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Infof("server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("could not listen on %s: %v", config.AppConfig.APIPort, err)
		}
	}()

	<-stop

	log.Info("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}
	log.Info("server stopped gracefully")
}
