package main

import (
	"FieldScribe/internal/analysis"
	"FieldScribe/internal/config"
	"FieldScribe/internal/export"
	"FieldScribe/internal/handlers"
	"FieldScribe/internal/middleware"
	"FieldScribe/internal/repo"
	"FieldScribe/internal/service"
	"FieldScribe/internal/storage"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.NewConfig()

	// создаём регистратор zap: подробный при -debug
	newLogger := zap.NewProduction
	if cfg.Debug {
		newLogger = zap.NewDevelopment
	}
	logger, err := newLogger()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	middleware.SetSecureCookies(cfg.EnableHTTPS)
	//сброс буфера логгера
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, sugar); err != nil {
		sugar.Errorw("Server failed", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config, sugar *zap.SugaredLogger) error {
	gormDB, err := repo.Open(cfg.DatabaseDSN, repo.NewGormLogger(sugar.Desugar()))
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		defer sqlDB.Close()
	}
	store := repo.NewStore(gormDB)

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize blob store: %w", err)
	}

	renderer := export.NewPDFRenderer()
	userService := service.NewUserService(store, service.NewBcryptHasher(), blobs, sugar)
	entryService := service.NewEntryService(store, blobs, renderer, service.EntryOptions{
		MaxUploadBytes: cfg.MediaMaxBytes(),
		Location:       cfg.Location,
	}, sugar)
	analysisService := service.NewAnalysisService(store, newAnalyzer(cfg, sugar), renderer, cfg.AnalysisTimeout, sugar)

	if _, err := userService.Bootstrap(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	h := handlers.NewHandler(userService, entryService, analysisService, sugar, cfg)

	srv := &http.Server{
		Addr:              cfg.BaseURL,
		Handler:           h.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sugar.Infow("Starting server", "addr", cfg.BaseURL)
	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"PublicURL", cfg.PublicURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"BlobBackend", cfg.BlobBackend,
		"Timezone", cfg.Timezone,
		"AnalysisEnabled", cfg.OpenAIKey != "",
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	sugar.Infow("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newBlobStore(ctx context.Context, cfg *config.Config) (storage.BlobStore, error) {
	switch cfg.BlobBackend {
	case config.BlobBackendS3:
		return storage.NewS3Store(ctx, storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PathStyle: cfg.S3PathStyle,
		})
	case config.BlobBackendMemory:
		return storage.NewMemoryStore(), nil
	default:
		return storage.NewFSStore(cfg.UploadDir)
	}
}

func newAnalyzer(cfg *config.Config, sugar *zap.SugaredLogger) service.Analyzer {
	if cfg.OpenAIKey == "" {
		sugar.Infow("Analysis disabled: OPENAI_API_KEY is not set")
		return analysis.Disabled{}
	}
	client, err := analysis.NewOpenAIClient(cfg.OpenAIKey, cfg.AnalysisModel)
	if err != nil {
		sugar.Warnw("Analysis disabled", "error", err)
		return analysis.Disabled{}
	}
	return client
}
