package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"studyhub/internal/config"
	"studyhub/internal/ratelimit"
	"studyhub/internal/server"
	"studyhub/internal/util"
	"studyhub/internal/video"
	"studyhub/pkg/ai"
	"studyhub/pkg/queue"
	"studyhub/pkg/storage"
	"studyhub/pkg/store"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := util.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	recordStore, err := newRecordStore(cfg, logger)
	if err != nil {
		fatal(logger, "failed to init record store", err)
	}
	sessions, err := store.NewJWTSessionStore(cfg.SessionSecret, cfg.SessionTTLDuration())
	if err != nil {
		fatal(logger, "failed to init session store", err)
	}

	chatRouter, generator := newAI(cfg)
	uploads, err := newUploads(cfg, logger)
	if err != nil {
		fatal(logger, "failed to init upload store", err)
	}
	trustedProxies, err := util.NewTrustedProxies(cfg.TrustedProxyCIDRs)
	if err != nil {
		fatal(logger, "failed to parse trusted proxies", err)
	}

	authLimiter, generateLimiter, err := newLimiters(cfg)
	if err != nil {
		fatal(logger, "failed to init rate limiters", err)
	}

	renderer := video.NewRenderer(recordStore, cfg.VideoRenderDelayDuration(), logger)
	dispatcher, renderQueue, err := newVideoPipeline(cfg, renderer, logger)
	if err != nil {
		fatal(logger, "failed to init video pipeline", err)
	}

	httpServer := server.New(server.Config{
		Store:           recordStore,
		Sessions:        sessions,
		Chat:            chatRouter,
		Generator:       generator,
		Uploads:         uploads,
		VideoDispatcher: dispatcher,
		AuthLimiter:     authLimiter,
		GenerateLimiter: generateLimiter,
		TrustedProxies:  trustedProxies,
		MaxUploadBytes:  cfg.MaxUploadBytes,
		ChatTimeout:     cfg.AITimeoutDuration(),
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:        addr,
		Handler:     httpServer.Router(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("studyhub listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if renderQueue != nil {
		workers := cfg.VideoWorkers
		if workers <= 0 {
			workers = 2
		}
		video.StartQueueWorkers(gctx, renderQueue, renderer, workers)
		g.Go(func() error {
			<-gctx.Done()
			return renderQueue.Close()
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func newRecordStore(cfg config.FileConfig, logger *slog.Logger) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		logger.Info("no databaseURL configured, using in-memory store with demo user")
		return store.NewMemoryStore(), nil
	}
	return store.NewGormStore(cfg.DatabaseURL)
}

func newAI(cfg config.FileConfig) (*ai.Router, *ai.Generator) {
	timeout := cfg.AITimeoutDuration()
	var openaiClient, anthropicClient ai.TextGenerator
	if cfg.OpenAIAPIKey != "" {
		openaiClient = ai.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, timeout)
	}
	if cfg.AnthropicAPIKey != "" {
		anthropicClient = ai.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicBaseURL, timeout)
	}
	router := ai.NewRouter(ai.NewRegistry(), openaiClient, anthropicClient)
	return router, ai.NewGenerator(router, cfg.GenerationModel)
}

func newUploads(cfg config.FileConfig, logger *slog.Logger) (storage.ObjectStore, error) {
	if cfg.MinioEndpoint != "" {
		return storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	}
	dir := cfg.UploadDir
	if dir == "" {
		dir = "uploads"
	}
	logger.Info("no minio endpoint configured, storing uploads on local disk", "dir", dir)
	return storage.NewFileStore(dir)
}

func newLimiters(cfg config.FileConfig) (auth, generate *ratelimit.FixedWindowLimiter, err error) {
	if cfg.AuthRateLimitPerMinute > 0 {
		auth, err = newLimiter(cfg, cfg.AuthRateLimitPerMinute, "studyhub:ratelimit:auth")
		if err != nil {
			return nil, nil, err
		}
	}
	if cfg.GenerateRateLimitPerMinute > 0 {
		generate, err = newLimiter(cfg, cfg.GenerateRateLimitPerMinute, "studyhub:ratelimit:generate")
		if err != nil {
			return nil, nil, err
		}
	}
	return auth, generate, nil
}

func newLimiter(cfg config.FileConfig, limit int, prefix string) (*ratelimit.FixedWindowLimiter, error) {
	if cfg.RedisAddr != "" {
		return ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, prefix, limit, time.Minute)
	}
	return ratelimit.NewLocalFixedWindowLimiter(limit, time.Minute)
}

func newVideoPipeline(cfg config.FileConfig, renderer *video.Renderer, logger *slog.Logger) (video.Dispatcher, *queue.RedisRenderQueue, error) {
	if cfg.RedisAddr == "" {
		logger.Info("no redis configured, rendering videos in-process")
		return video.NewLocalDispatcher(renderer, logger), nil, nil
	}
	q, err := queue.NewRedisRenderQueue(queue.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return nil, nil, err
	}
	return video.NewQueueDispatcher(q), q, nil
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "err", err)
	os.Exit(1)
}
