package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"debt-coach/config"
	httpLayer "debt-coach/http"
	"debt-coach/repository"
	"debt-coach/service"
	"debt-coach/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API with an in-process nudge worker",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	debts, nudges, events, closeStore, err := openStore(cfg.Storage)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	cache, queue, closeRedis := openCacheAndQueue(cfg)
	defer func() { _ = closeRedis() }()

	generator, err := buildGenerator(cfg.LLM)
	if err != nil {
		return err
	}

	payoffService := service.NewPayoffService(cache, logger)
	slipService := service.NewSlipService(logger)
	nudgeService := service.NewNudgeService(generator, cfg.LLM.GeneratorTimeout(), logger)

	tracker := worker.NewTracker()
	pool := worker.NewPool(queue, nudges, events, nudgeService, tracker, cfg.Worker.PoolSize, logger)

	planHandler := httpLayer.NewPlanHandler(payoffService, events, logger)
	slipHandler := httpLayer.NewSlipHandler(slipService, events, logger)
	nudgeHandler := httpLayer.NewNudgeHandler(nudgeService, queue, nudges, tracker, logger)
	debtHandler := httpLayer.NewDebtHandler(debts, logger)
	healthHandler := httpLayer.NewHealthHandler(generator, logger)

	rateLimiter := httpLayer.NewRateLimiter(cfg.Server.RateLimit, time.Duration(cfg.Server.RateWindowSecs)*time.Second)
	defer rateLimiter.Stop()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /plan", planHandler.CalculatePlan)
	mux.HandleFunc("POST /slip/check", slipHandler.CheckSlip)
	mux.HandleFunc("POST /nudge/generate", nudgeHandler.GenerateNudge)
	mux.HandleFunc("GET /nudge/{id}", nudgeHandler.GetNudge)
	mux.HandleFunc("POST /debts", debtHandler.CreateDebt)
	mux.HandleFunc("GET /debts", debtHandler.ListDebts)
	mux.HandleFunc("GET /debts/{id}", debtHandler.GetDebt)
	mux.HandleFunc("PUT /debts/{id}", debtHandler.UpdateDebt)
	mux.HandleFunc("DELETE /debts/{id}", debtHandler.DeleteDebt)
	mux.HandleFunc("GET /healthz", healthHandler.Health)

	handler := httpLayer.RateLimitMiddleware(rateLimiter, httpLayer.RequestLogger(logger, mux))

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return pool.Run(ctx)
	})

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("storage", cfg.Storage.Driver),
			zap.String("generator", generator.Name()),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		cancel()
		_ = g.Wait()
		return fmt.Errorf("starting server: %w", err)
	case <-quit:
		logger.Info("shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	cancel()
	if err := g.Wait(); err != nil {
		logger.Error("worker pool exited", zap.Error(err))
	}

	logger.Info("server exited")
	return nil
}

// openStore wires the configured storage driver and returns the three
// repository views plus a close function.
func openStore(cfg config.StorageConfig) (
	repository.DebtRepository,
	repository.NudgeRepository,
	repository.EventRepository,
	func() error,
	error,
) {
	switch cfg.Driver {
	case "", "memory":
		store := repository.NewMemoryStore()
		return store, store.Nudges(), store.Events(), func() error { return nil }, nil
	case "sqlite":
		store, err := repository.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return store, store.Nudges(), store.Events(), store.Close, nil
	default:
		return nil, nil, nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func openCacheAndQueue(cfg config.Config) (repository.CacheRepository, repository.JobQueue, func() error) {
	if cfg.Redis.Enabled {
		cache := repository.NewRedisCache(cfg.Redis.Addr)
		queue := repository.NewRedisQueue(cfg.Redis.Addr)
		return cache, queue, func() error {
			_ = cache.Close()
			return queue.Close()
		}
	}
	cache := repository.NewMockCache()
	queue := repository.NewMemoryQueue(cfg.Worker.QueueSize)
	return cache, queue, func() error { return nil }
}

func buildGenerator(cfg config.LLMConfig) (service.Generator, error) {
	switch cfg.Mode {
	case "", "mock":
		return service.NewMockGenerator(), nil
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("llm mode openai requires OPENAI_API_KEY")
		}
		return service.NewOpenAIGenerator(cfg.OpenAIKey, cfg.Model, cfg.MaxTokens, cfg.GeneratorTimeout()), nil
	case "gemini":
		if cfg.GeminiKey == "" {
			return nil, fmt.Errorf("llm mode gemini requires GEMINI_API_KEY")
		}
		return service.NewGeminiGenerator(cfg.GeminiKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown llm mode %q", cfg.Mode)
	}
}
