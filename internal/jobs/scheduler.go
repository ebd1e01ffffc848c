// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: обновление статистики серверов
// в метриках и очистку истёкших админ-сессий.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/socialcredit/internal/features/socialcredit"
)

// Расписание очистки сессий
const sessionCleanupSchedule = "*/10 * * * *"

// StatsSource — откуда берётся статистика серверов.
type StatsSource interface {
	GuildIDs(ctx context.Context) ([]string, error)
	ServerStats(ctx context.Context, guildID string) (*socialcredit.ServerStats, error)
}

// StatsSink — куда публикуется статистика (метрики).
type StatsSink interface {
	SetGuildStats(guildID string, users int64, average float64, highest, lowest int64)
	RecordStatsRefresh(err error)
	SetAdminSessions(n int)
}

// SessionStore — хранилище админ-сессий.
type SessionStore interface {
	Cleanup() int
	ActiveSessions() int
}

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron          *cron.Cron
	statsSchedule string
	source        StatsSource
	sink          StatsSink
	sessions      SessionStore
}

// NewScheduler создаёт планировщик в часовом поясе loc.
// sessions может быть nil — тогда очистка сессий не планируется.
func NewScheduler(loc *time.Location, statsSchedule string, source StatsSource, sink StatsSink, sessions SessionStore) *Scheduler {
	return &Scheduler{
		cron:          cron.New(cron.WithLocation(loc)),
		statsSchedule: statsSchedule,
		source:        source,
		sink:          sink,
		sessions:      sessions,
	}
}

// Start регистрирует задачи и запускает планировщик.
// Статистика обновляется сразу, не дожидаясь первого срабатывания.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.statsSchedule, func() {
		log.Debug("[CRON] Обновление статистики серверов")
		if err := s.RefreshStats(ctx); err != nil {
			log.WithError(err).Error("[CRON] Ошибка обновления статистики")
		}
	}); err != nil {
		return fmt.Errorf("неверное расписание статистики %q: %w", s.statsSchedule, err)
	}

	if s.sessions != nil {
		if _, err := s.cron.AddFunc(sessionCleanupSchedule, s.CleanupSessions); err != nil {
			return fmt.Errorf("неверное расписание очистки сессий: %w", err)
		}
	}

	go func() {
		if err := s.RefreshStats(ctx); err != nil {
			log.WithError(err).Warn("Первичное обновление статистики не удалось")
		}
	}()

	s.cron.Start()
	log.WithField("schedule", s.statsSchedule).Info("Планировщик задач запущен")
	return nil
}

// Stop останавливает планировщик и ждёт завершения запущенных задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}

// RefreshStats пересчитывает статистику всех серверов и публикует её.
// Ошибка одного сервера не прерывает обход остальных.
func (s *Scheduler) RefreshStats(ctx context.Context) error {
	guilds, err := s.source.GuildIDs(ctx)
	if err != nil {
		s.sink.RecordStatsRefresh(err)
		return fmt.Errorf("ошибка получения серверов: %w", err)
	}

	var errs []error
	for _, guildID := range guilds {
		stats, err := s.source.ServerStats(ctx, guildID)
		if err != nil {
			errs = append(errs, fmt.Errorf("сервер %s: %w", guildID, err))
			continue
		}
		s.sink.SetGuildStats(guildID, stats.TotalUsers, stats.AverageScore, stats.HighestScore, stats.LowestScore)
	}

	err = errors.Join(errs...)
	s.sink.RecordStatsRefresh(err)
	log.WithFields(log.Fields{
		"guilds": len(guilds),
		"failed": len(errs),
	}).Debug("Статистика серверов обновлена")
	return err
}

// CleanupSessions удаляет истёкшие админ-сессии.
func (s *Scheduler) CleanupSessions() {
	if removed := s.sessions.Cleanup(); removed > 0 {
		log.WithField("removed", removed).Info("[CRON] Истёкшие админ-сессии удалены")
	}
	s.sink.SetAdminSessions(s.sessions.ActiveSessions())
}
