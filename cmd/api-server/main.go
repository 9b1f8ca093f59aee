package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/M0chiIron/ProjetL3/internal/auth"
	"github.com/M0chiIron/ProjetL3/internal/catalog"
	"github.com/M0chiIron/ProjetL3/internal/events"
	"github.com/M0chiIron/ProjetL3/internal/library"
	"github.com/M0chiIron/ProjetL3/internal/ratings"
	"github.com/M0chiIron/ProjetL3/pkg/database"
	"github.com/M0chiIron/ProjetL3/pkg/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system environment")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := utils.LoadServerConfig()
	dbCfg := database.DefaultConfig()

	db := database.MustOpen(dbCfg, logger)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatal("db migrate failed", zap.Error(err))
	}

	router := gin.Default()

	// Optional: avoid "trusted all proxies" warning
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	hub := events.NewHub()
	router.GET("/ws", events.WSHandler(hub, logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": dbCfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "not_ready",
				"db_error":   err.Error(),
				"ws_clients": stats.Clients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"db":         "ok",
			"ws_clients": stats.Clients,
		})
	})

	sessions := auth.NewSessionStore(db, cfg.SessionTTL)
	if n, err := sessions.PurgeExpired(context.Background()); err != nil {
		logger.Warn("session purge failed", zap.Error(err))
	} else if n > 0 {
		logger.Info("purged expired sessions", zap.Int64("count", n))
	}

	api := router.Group("/api")

	authRepo := auth.NewRepo(db)
	authHandler := auth.NewHandler(authRepo, sessions, logger)
	authHandler.RegisterRoutes(api)

	catalogClient := catalog.NewClient(cfg.CatalogBaseURL)
	catalogHandler := catalog.NewHandler(catalogClient, logger)
	catalogHandler.RegisterRoutes(api)

	ratingsRepo := ratings.NewRepo(db)
	ratingsHandler := ratings.NewHandler(ratingsRepo, logger)
	ratingsHandler.RegisterRoutes(api)

	libRepo := library.NewRepo(db)
	libHandler := library.NewHandler(libRepo, hub, logger)
	libHandler.RegisterPublicRoutes(api)

	protected := api.Group("", auth.RequireSession(sessions))
	libHandler.RegisterRoutes(protected)

	httpSrv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API server listening", zap.String("addr", cfg.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}
