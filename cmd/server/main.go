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

	"DR-CONTRACTS/internal"
	"DR-CONTRACTS/internal/config"
	"DR-CONTRACTS/internal/engine"
	"DR-CONTRACTS/internal/handlers"
	"DR-CONTRACTS/internal/services"
	"DR-CONTRACTS/internal/starters"
	"DR-CONTRACTS/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := internal.InitDB(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	catalog, err := starters.Load()
	if err != nil {
		log.Fatalf("Failed to load starter templates: %v", err)
	}
	log.Printf("Loaded %d starter templates", catalog.Len())

	ctx := context.Background()

	var store storage.ObjectStore
	var cleanupService *handlers.FileCleanupService
	if cfg.GCS.Enabled() {
		gcs, err := storage.NewGCSClient(ctx, cfg.GCS.BucketName, cfg.GCS.ProjectID, cfg.GCS.CredentialsPath)
		if err != nil {
			log.Fatalf("Failed to initialize GCS client: %v", err)
		}
		store = gcs
		log.Printf("Storing documents in gs://%s", cfg.GCS.BucketName)
	} else {
		local, err := storage.NewLocalStore(cfg.Storage.LocalDir)
		if err != nil {
			log.Fatalf("Failed to initialize local storage: %v", err)
		}
		store = local
		cleanupService = handlers.NewFileCleanupService(local.Root(), cfg.Storage.MaxAge)
		cleanupService.Start()
		log.Printf("Storing documents in %s", local.Root())
	}

	var pdf services.PDFConverter
	if cfg.Gotenberg.URL != "" {
		pdfService, err := services.NewPDFService(cfg.Gotenberg.URL, cfg.Gotenberg.Timeout)
		if err != nil {
			log.Fatalf("Failed to initialize PDF service: %v", err)
		}
		pdf = pdfService
	} else {
		log.Println("Warning: GOTENBERG_URL not set, documents will be stored as HTML only")
	}

	renderer := services.NewRenderer(engine.Limits{
		MaxDepth:       cfg.Engine.MaxDepth,
		MaxIterations:  cfg.Engine.MaxIterations,
		MaxOutputBytes: cfg.Engine.MaxOutputBytes,
	}, cfg.Engine.CacheSize)
	contexts := services.NewContextService(internal.DB)
	templates := services.NewTemplateService(internal.DB, renderer, contexts, catalog)
	documents := services.NewDocumentService(internal.DB, store, templates, contexts, renderer, pdf)
	activityLogs := services.NewActivityLogService(internal.DB)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition", "Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(activityLogs.LoggingMiddleware())

	handlers.SetupRoutes(r, handlers.Handlers{
		Templates: handlers.NewTemplateHandler(templates),
		Documents: handlers.NewDocumentHandler(documents, contexts),
		Logs:      handlers.NewLogsHandler(activityLogs),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shut down: %v", err)
	}

	if cleanupService != nil {
		cleanupService.Stop()
	}
	activityLogs.Wait()
	if err := store.Close(); err != nil {
		log.Printf("Warning: failed to close storage: %v", err)
	}
	if err := internal.CloseDB(); err != nil {
		log.Printf("Warning: failed to close database: %v", err)
	}
}
