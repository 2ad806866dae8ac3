package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-core-api/internal/config"
	"github.com/BuzzLyutic/task-core-api/internal/handler"
	"github.com/BuzzLyutic/task-core-api/internal/logger"
	"github.com/BuzzLyutic/task-core-api/internal/migrate"
	"github.com/BuzzLyutic/task-core-api/internal/repo"
	"github.com/BuzzLyutic/task-core-api/internal/service"
	"github.com/BuzzLyutic/task-core-api/internal/worker"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Подключаем логгер
	lg, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	if err := run(cfg, lg); err != nil {
		lg.Fatal("Server failed", zap.Error(err))
	}
	lg.Info("Server stopped successfully!")
}

func run(cfg config.Config, lg *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Подключаем БД
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	lg.Info("Successfully connected to the Database!")

	if cfg.AutoMigrate {
		if err := migrate.Up(ctx, pool, lg); err != nil {
			return err
		}
	}
	version, err := migrate.Version(ctx, pool, lg)
	if err != nil {
		return err
	}
	lg.Info("Schema ready", zap.Int64("version", version))

	svc, stopWorkers := newService(cfg, pool, lg)
	defer stopWorkers() // останавливаем после сервера

	srv := newServer(cfg, handler.NewRouter(handler.NewTaskHandler(svc, lg), lg))

	errCh := make(chan error, 1)
	go func() { // Запуск сервера и обработка ошибок
		lg.Info("Server started", zap.String("addr", srv.Addr), zap.String("mode", cfg.APIMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// Graceful shutdown
	lg.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newService picks the shell variant from API_MODE. The returned func stops the
// worker pool in async mode and is a no-op otherwise.
func newService(cfg config.Config, pool *pgxpool.Pool, lg *zap.Logger) (service.Service, func()) {
	svc := service.NewTaskService(repo.NewTaskRepo(pool), nil)
	if cfg.APIMode != config.ModeAsync {
		return svc, func() {}
	}
	workers := worker.NewPool(lg, cfg.WorkerCount)
	workers.Start(context.Background())
	return service.NewAsyncTaskService(svc, workers), workers.Stop
}

func newServer(cfg config.Config, h http.Handler) *http.Server {
	return &http.Server{ // Создаем сервер
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}
