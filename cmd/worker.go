package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"debt-coach/repository"
	"debt-coach/service"
	"debt-coach/worker"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run a standalone nudge worker pool against the Redis queue",
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// A standalone worker only makes sense against a shared queue. The
	// in-memory queue lives inside the serve process.
	if !cfg.Redis.Enabled {
		return fmt.Errorf("worker requires redis: set [redis] enabled = true or REDIS_ADDR")
	}

	_, nudges, events, closeStore, err := openStore(cfg.Storage)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	queue := repository.NewRedisQueue(cfg.Redis.Addr)
	defer func() { _ = queue.Close() }()

	generator, err := buildGenerator(cfg.LLM)
	if err != nil {
		return err
	}

	nudgeService := service.NewNudgeService(generator, cfg.LLM.GeneratorTimeout(), logger)
	pool := worker.NewPool(queue, nudges, events, nudgeService, worker.NewTracker(), cfg.Worker.PoolSize, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("worker pool starting",
		zap.Int("pool_size", cfg.Worker.PoolSize),
		zap.String("redis", cfg.Redis.Addr),
		zap.String("generator", generator.Name()),
	)

	if err := pool.Run(ctx); err != nil && err != context.Canceled {
		return err
	}

	logger.Info("worker pool exited")
	return nil
}
