// Package main — точка входа сервиса социального рейтинга.
// serve запускает HTTP API, остальные команды работают с хранилищем напрямую.
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"serotonyl.ru/socialcredit/internal/config"
)

var version = "0.1.0"

type rootFlags struct {
	format string
}

func main() {
	setupLogging()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}

	root := &cobra.Command{
		Use:           "socialcredit",
		Short:         "Сервис социального рейтинга: HTTP API и утилиты администрирования",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return validateFormat(f.format)
		},
	}
	root.PersistentFlags().StringVar(&f.format, "format", formatText, "Формат вывода: text, json или yaml")

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newScoreCmd(f),
		newLeaderboardCmd(f),
		newHistoryCmd(f),
		newStatsCmd(f),
		newRankCmd(f),
		newChannelsCmd(f),
		newHashPasswordCmd(),
	)
	return root
}

// setupLogging настраивает формат логов по умолчанию.
func setupLogging() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(os.Stderr)
	log.SetLevel(log.InfoLevel)
}

// applyLogConfig применяет APP_LOG_LEVEL и APP_LOG_FORMAT.
func applyLogConfig(cfg *config.Config) {
	if level, err := log.ParseLevel(cfg.AppLogLevel); err == nil {
		log.SetLevel(level)
	}
	if cfg.AppLogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05Z07:00"})
	}
}

// loadConfig загружает конфигурацию и настраивает логирование.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	applyLogConfig(cfg)
	return cfg, nil
}
