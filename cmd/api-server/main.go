package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"slidehub/internal/filestore"
	"slidehub/internal/generate"
	"slidehub/internal/material"
	"slidehub/internal/notify"
	"slidehub/internal/page"
	"slidehub/internal/project"
	synchub "slidehub/internal/sync"
	"slidehub/pkg/database"
	"slidehub/pkg/logger"
	"slidehub/pkg/utils"
)

func main() {
	cfg, err := utils.LoadServerConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl := logger.MustNew(cfg.LogMode)
	defer func() { _ = zl.Sync() }()

	dbCfg := database.DefaultConfig()
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		zl.Fatalw("db migrate failed", "error", err)
	}

	files, err := filestore.New(cfg.UploadDir)
	if err != nil {
		zl.Fatalw("init upload dir failed", "error", err)
	}

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	hub := synchub.NewHub()
	router.GET("/ws", synchub.WSHandler(hub))
	tcpSrv := synchub.NewServer(cfg.TCPAddr, hub)

	registry := notify.NewRegistry()
	udpSrv := notify.NewServer(cfg.UDPAddr, registry, log.Default())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": dbCfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"db_error":    err.Error(),
				"tcp_clients": stats.TCPClients,
				"ws_clients":  stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"db":          "ok",
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	router.GET("/debug", func(c *gin.Context) {
		stats := hub.Stats()
		c.JSON(http.StatusOK, gin.H{
			"db":          dbCfg.Path,
			"upload_dir":  cfg.UploadDir,
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	// uploaded files (materials, generated page images)
	router.Static("/files", cfg.UploadDir)

	pageRepo := page.NewRepo(db)
	manager := generate.NewManager(pageRepo, files, hub, udpSrv, zl)

	materialRepo := material.NewRepo(db)
	materialHandler := material.NewHandler(materialRepo, files, hub, zl)
	materialHandler.RegisterRoutes(router.Group("/materials"))

	projectRepo := project.NewRepo(db)
	projectHandler := project.NewHandler(projectRepo, files, zl)
	projectsGroup := router.Group("/projects")
	projectHandler.RegisterRoutes(projectsGroup)

	pageHandler := page.NewHandler(pageRepo, files, hub, manager, zl)
	pageHandler.RegisterRoutes(router.Group("/pages"))
	pageHandler.RegisterProjectRoutes(projectsGroup)

	httpSrv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	errCh := make(chan error, 3)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := manager.Run(workerCtx, cfg.Workers); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := tcpSrv.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := udpSrv.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		zl.Infow("HTTP API server listening", "addr", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		zl.Infow("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		zl.Errorw("server error", "error", err)
	}

	zl.Info("shutting down servers")
	stopWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		zl.Errorw("http shutdown error", "error", err)
	}
	if err := tcpSrv.Close(); err != nil {
		zl.Errorw("tcp shutdown error", "error", err)
	}
	zl.Info("servers stopped")
}
