package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"serotonyl.ru/socialcredit/internal/app"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP API и фоновые задачи",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	log.Info("=== Сервис запускается ===")

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	// Контекст отменяется по SIGINT/SIGTERM (Ctrl+C, docker stop)
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("не удалось инициализировать приложение: %w", err)
	}
	defer application.Close()

	if err := application.Scheduler.Start(ctx); err != nil {
		return err
	}
	defer application.Scheduler.Stop()

	errCh := make(chan error, 1)
	go func() { errCh <- application.Server.Start() }()

	log.Info("=== Сервис готов к работе ===")

	select {
	case <-ctx.Done():
		log.Info("Получен сигнал остановки, останавливаемся...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP API упал: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := application.Server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP API остановлен некорректно")
	}

	log.Info("=== Сервис остановлен ===")
	return nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Применить схему базы данных и выйти",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			stores, err := app.OpenStores(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			stores.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "Схема %s актуальна\n", cfg.StorageDriver)
			return nil
		},
	}
}
