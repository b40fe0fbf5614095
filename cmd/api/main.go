package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"topm/internal/adapter/repo"
	"topm/internal/http/handlers"
	httpapi "topm/internal/http/httpapi"
	"topm/internal/imaging"
	"topm/internal/infra"
	"topm/internal/pipeline"
	"topm/internal/providers/genai"
	"topm/internal/storage"
	"topm/internal/taskqueue"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	runner := infra.NewSQLRunner(dbpool, logger)
	products := repo.NewProductRepository(runner)

	client := genai.NewClient(genai.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		ImageModel: cfg.GeminiImageModel,
		TextModel:  cfg.GeminiTextModel,
		Logger:     &logger,
	})
	if !client.Enabled() {
		logger.Warn().Msg("GEMINI_API_KEY not set, using local generation only")
	}

	pipe := pipeline.New(
		client,
		imaging.NewRenderer(cfg.WatermarkTag),
		genai.NewSynthesizer(0),
		logger,
		pipeline.DefaultConfig(),
	)

	var store *storage.FileStore
	if cfg.StoragePath != "" {
		store, err = storage.NewFileStore(cfg.StoragePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open file store")
		}
	}

	queue := taskqueue.New(ctx, pipe, products, taskqueue.Options{
		DismissAfter: cfg.TaskDismissAfter,
		Logger:       logger,
		Store:        store,
	})

	app := handlers.NewApp(products, queue, logger)
	router := httpapi.NewRouter(app, cfg.CORSOrigins)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Msg("catalog API listening")
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
