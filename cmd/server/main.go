package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vitalis/turnos/internal/appointments"
	"github.com/vitalis/turnos/internal/catalog"
	"github.com/vitalis/turnos/internal/config"
	"github.com/vitalis/turnos/internal/notify/telegram"
	"github.com/vitalis/turnos/internal/server"
	"github.com/vitalis/turnos/internal/storage"
	"github.com/vitalis/turnos/internal/storage/memory"
	"github.com/vitalis/turnos/internal/storage/redis"
	"github.com/vitalis/turnos/internal/storage/sqlite"
	"github.com/vitalis/turnos/pkg/logger"
)

// version задается при сборке через -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(logger.ParseLevel(cfg.Log.Level))
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Configuration loaded successfully",
		logger.String("version", version),
		logger.String("storage_driver", cfg.Storage.Driver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, err := openStorage(ctx, cfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize storage", logger.Error(err))
	}
	defer func() {
		if err := kv.Close(); err != nil {
			appLogger.Error("Error closing storage", logger.Error(err))
		}
	}()
	appLogger.Info("Storage initialized successfully")

	opts := []appointments.Option{
		appointments.WithLogger(appLogger),
		appointments.WithLocation(cfg.Location()),
	}
	if cfg.Telegram.Enabled() {
		notifier, err := telegram.New(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to create Telegram notifier", logger.Error(err))
		}
		opts = append(opts, appointments.WithNotifier(notifier))
		appLogger.Info("Telegram booking notifications enabled")
	}

	store := appointments.New(ctx, storage.NewRecords(kv, appLogger), opts...)
	appLogger.Info("Appointments loaded", logger.Int("count", len(store.List())))

	treatments := catalog.New(catalog.NewLoader(cfg.Catalog.URL, nil, appLogger))
	// Каталог может раздаваться этим же сервером, поэтому грузим после старта
	go func() {
		select {
		case <-time.After(time.Second):
			treatments.Load(ctx)
		case <-ctx.Done():
		}
	}()

	srv := server.New(cfg, appLogger, store, treatments, version)
	if err := srv.Start(ctx); err != nil {
		appLogger.Fatal("Server error", logger.Error(err))
	}

	// Дожидаемся уведомлений по уже принятым записям
	store.Wait()

	appLogger.Info("Server stopped gracefully")
}

// openStorage открывает хранилище выбранного драйвера
func openStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		s, err := sqlite.New(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverRedis:
		s, err := redis.New(ctx, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
