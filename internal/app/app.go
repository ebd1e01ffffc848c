// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: открывает хранилище, создаёт репозитории, сервисы,
// обработчики, метрики и планировщик и собирает всё в один объект App.
package app

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/socialcredit/internal/config"
	"serotonyl.ru/socialcredit/internal/db/postgres"
	"serotonyl.ru/socialcredit/internal/db/sqlite"
	"serotonyl.ru/socialcredit/internal/features/admin"
	"serotonyl.ru/socialcredit/internal/features/monitoring"
	"serotonyl.ru/socialcredit/internal/features/socialcredit"
	"serotonyl.ru/socialcredit/internal/jobs"
	"serotonyl.ru/socialcredit/internal/metrics"
	"serotonyl.ru/socialcredit/internal/server"
)

// Stores — хранилища выбранного бэкенда.
type Stores struct {
	Scores   socialcredit.Store
	Channels monitoring.Store
	Ping     func(ctx context.Context) error
	close    func()
}

// Close закрывает соединения с базой.
func (s *Stores) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStores подключается к хранилищу по STORAGE_DRIVER и применяет миграции.
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ошибка миграций: %w", err)
		}
		return &Stores{
			Scores:   socialcredit.NewRepository(pool),
			Channels: monitoring.NewRepository(pool),
			Ping:     pool.Ping,
			close:    pool.Close,
		}, nil

	case config.StorageSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("ошибка открытия SQLite: %w", err)
		}
		return &Stores{
			Scores:   socialcredit.NewSQLiteRepository(db),
			Channels: monitoring.NewSQLiteRepository(db),
			Ping:     db.PingContext,
			close:    func() { db.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("неизвестное хранилище %q", cfg.StorageDriver)
	}
}

// App содержит все компоненты приложения.
type App struct {
	Server    *server.Server
	Scheduler *jobs.Scheduler
	Scores    *socialcredit.Service
	Channels  *monitoring.Service
	Admin     *admin.Service
	Metrics   *metrics.Manager
	Stores    *Stores
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. Хранилище ===
	stores, err := OpenStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// === 2. Метрики ===
	m := metrics.NewManager(
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithRuntimeCollectors(),
	)

	// === 3. Сервисы ===
	scoreService := socialcredit.NewService(stores.Scores, socialcredit.WithObserver(m))
	channelService := monitoring.NewService(stores.Channels)
	adminService := admin.NewService(cfg.AdminPasswordHash)
	if !adminService.Enabled() {
		log.Warn("ADMIN_PASSWORD_HASH не задан, админские эндпоинты отключены")
	}

	// === 4. Обработчики ===
	deps := server.Deps{
		Scores:  socialcredit.NewHandler(scoreService, cfg.LeaderboardMaxLimit),
		Admin:   admin.NewHandler(adminService),
		Metrics: m,
		Health: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			return stores.Ping(ctx)
		},
	}
	if cfg.FeatureMonitoringEnabled {
		deps.Monitoring = monitoring.NewHandler(channelService)
	}

	// === 5. HTTP API и планировщик ===
	srv := server.New(cfg, deps)
	scheduler := jobs.NewScheduler(cfg.Location(), cfg.StatsRefreshSchedule, scoreService, m, adminService)

	log.WithFields(log.Fields{
		"storage":    cfg.StorageDriver,
		"monitoring": cfg.FeatureMonitoringEnabled,
		"admin":      adminService.Enabled(),
	}).Info("Приложение собрано")

	return &App{
		Server:    srv,
		Scheduler: scheduler,
		Scores:    scoreService,
		Channels:  channelService,
		Admin:     adminService,
		Metrics:   m,
		Stores:    stores,
	}, nil
}

// Close освобождает ресурсы приложения.
func (a *App) Close() {
	a.Stores.Close()
}
