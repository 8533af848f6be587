package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"DF-DOCGEN/internal"
	"DF-DOCGEN/internal/config"
	"DF-DOCGEN/internal/handlers"
	"DF-DOCGEN/internal/logger"
	"DF-DOCGEN/internal/middleware"
	"DF-DOCGEN/internal/repository"
	"DF-DOCGEN/internal/services"
	"DF-DOCGEN/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := internal.InitDB(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize database", "error", err)
	}
	defer internal.CloseDB(db)

	ctx := context.Background()

	var (
		store      storage.Store
		localStore *storage.LocalStore
	)
	switch cfg.Storage.Driver {
	case "gcs":
		gcsStore, err := storage.NewGCSStore(ctx, cfg.GCS.BucketName, cfg.GCS.CredentialsPath)
		if err != nil {
			log.Fatal("failed to initialize GCS store", "error", err)
		}
		defer gcsStore.Close()
		store = gcsStore
	default:
		localStore, err = storage.NewLocalStore(cfg.Storage.LocalRoot)
		if err != nil {
			log.Fatal("failed to initialize local store", "error", err)
		}
		store = localStore
	}

	converter, err := services.NewGotenbergConverter(cfg.Gotenberg.URL, cfg.Gotenberg.RenderTimeout())
	if err != nil {
		log.Fatal("failed to initialize converter", "error", err)
	}

	policy, err := services.ParseAnchorPolicy(cfg.Render.AnchorPolicy)
	if err != nil {
		log.Fatal("invalid anchor policy", "error", err)
	}

	persister := services.NewPersister(db)
	generator := services.NewGenerator(repository.NewTemplateRepository(db), store, converter, persister, services.GeneratorConfig{
		OutputDir:  cfg.Render.OutputDir,
		PreviewDir: cfg.Render.PreviewDir,
		BaseURL:    cfg.Server.BaseURL,
		Policy:     policy,
	}, log)
	activity := services.NewActivityLogService(db, log)

	routerCfg := handlers.RouterConfig{AllowOrigins: cfg.Server.AllowOrigins}
	if localStore != nil {
		routerCfg.FilesRoot = localStore.Root()

		// previews and staged uploads are transient; generated outputs are not
		cleanup := services.NewFileCleanupService(localStore,
			[]string{cfg.Render.PreviewDir, cfg.Render.UploadDir}, cfg.Render.PreviewTTL, time.Hour, log)
		cleanup.Start()
		defer cleanup.Stop()
	}

	router := handlers.NewRouter(routerCfg, handlers.Handlers{
		Templates: handlers.NewTemplateHandler(services.NewTemplateService(db, store, log), generator),
		Documents: handlers.NewDocumentHandler(
			services.NewDocumentService(db, cfg.Server.BaseURL, log),
			services.NewUploadService(store, persister, cfg.Render.UploadDir, cfg.Render.DocumentsDir, cfg.Server.BaseURL, log),
		),
		Reference: handlers.NewReferenceHandler(services.NewCurrencyService(db), services.NewReferenceService(db)),
		Logs:      handlers.NewLogsHandler(activity),
	}, middleware.NewAuthMiddleware(cfg.Auth.JWTSecret, log), activity)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("starting server", "port", cfg.Server.Port, "storage", cfg.Storage.Driver, "db", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}
	activity.Flush()
}
