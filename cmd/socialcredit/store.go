package main

import (
	"context"
	"time"

	"serotonyl.ru/socialcredit/internal/app"
	"serotonyl.ru/socialcredit/internal/features/monitoring"
	"serotonyl.ru/socialcredit/internal/features/socialcredit"
)

// session — сервисы поверх хранилища для одной команды CLI.
type session struct {
	scores   *socialcredit.Service
	channels *monitoring.Service
	loc      *time.Location
	stores   *app.Stores
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	stores, err := app.OpenStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &session{
		scores:   socialcredit.NewService(stores.Scores),
		channels: monitoring.NewService(stores.Channels),
		loc:      cfg.Location(),
		stores:   stores,
	}, nil
}

func (s *session) Close() {
	s.stores.Close()
}
