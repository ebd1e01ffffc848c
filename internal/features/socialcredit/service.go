// Package socialcredit — service.go содержит движок рейтинга:
// применение изменений и чтение лидербордов, истории и статистики.
package socialcredit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/socialcredit/internal/common"
)

// Observer получает результат каждого изменения рейтинга (метрики).
type Observer interface {
	ObserveScoreUpdate(change int64, elapsed time.Duration, err error)
}

// Service — движок рейтинга. Своего изменяемого состояния не держит:
// всё хранится в Store, сериализацию по ключу обеспечивает Store.
type Service struct {
	store    Store
	observer Observer
	now      func() time.Time
}

// Option настраивает Service.
type Option func(*Service)

// WithObserver подключает наблюдателя изменений.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// WithClock подменяет источник времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService создаёт сервис рейтинга.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type updateParams struct {
	username       string
	messageContent *string
}

// UpdateOption — необязательные параметры UpdateScore.
type UpdateOption func(*updateParams)

// WithUsername сохраняет отображаемое имя пользователя.
func WithUsername(username string) UpdateOption {
	return func(p *updateParams) { p.username = username }
}

// WithMessageContent прикладывает к истории сообщение, вызвавшее изменение.
func WithMessageContent(content string) UpdateOption {
	return func(p *updateParams) { p.messageContent = &content }
}

// UpdateScore применяет изменение change к рейтингу и возвращает новый рейтинг.
//
// Чтение текущего значения, запись нового и добавление истории выполняются
// в одной транзакции хранилища. Любое значение change допустимо, включая 0,
// если результат помещается в int64; иначе common.ErrScoreOutOfRange
// и ничего не записывается. Ошибки хранилища возвращаются без изменений.
func (s *Service) UpdateScore(ctx context.Context, userID, guildID string, change int64, reason string, opts ...UpdateOption) (int64, error) {
	var p updateParams
	for _, opt := range opts {
		opt(&p)
	}

	started := time.Now()
	at := s.now().UTC()
	var newScore int64
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		var previous int64
		entry, err := tx.GetUserScore(ctx, userID, guildID)
		switch {
		case err == nil:
			previous = entry.Score
		case errors.Is(err, common.ErrEntryNotFound):
			// Начинаем с 0 (нейтральный рейтинг)
		default:
			return err
		}

		if addOverflows(previous, change) {
			return fmt.Errorf("%d %+d: %w", previous, change, common.ErrScoreOutOfRange)
		}
		newScore = previous + change

		if err := tx.UpdateUserScore(ctx, userID, guildID, newScore, p.username, at); err != nil {
			return err
		}

		return tx.AddScoreHistory(ctx, &ScoreHistory{
			ID:             uuid.NewString(),
			UserID:         userID,
			GuildID:        guildID,
			ScoreChange:    change,
			PreviousScore:  previous,
			NewScore:       newScore,
			Reason:         reason,
			Timestamp:      at,
			MessageContent: p.messageContent,
		})
	})

	if s.observer != nil {
		s.observer.ObserveScoreUpdate(change, time.Since(started), err)
	}
	if err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"user_id":   userID,
		"guild_id":  guildID,
		"change":    change,
		"new_score": newScore,
		"reason":    reason,
	}).Debug("Рейтинг изменён")

	return newScore, nil
}

// addOverflows сообщает, что previous+change не помещается в int64.
func addOverflows(previous, change int64) bool {
	return (change > 0 && previous > math.MaxInt64-change) ||
		(change < 0 && previous < math.MinInt64-change)
}

// GetUserScore возвращает рейтинг пользователя; 0, если записи нет.
func (s *Service) GetUserScore(ctx context.Context, userID, guildID string) (int64, error) {
	entry, err := s.GetUserEntry(ctx, userID, guildID)
	if err != nil {
		return 0, err
	}
	return entry.Score, nil
}

// GetUserEntry возвращает запись пользователя. Если записи нет — нулевую
// запись с заполненным ключом; в хранилище при этом ничего не пишется.
func (s *Service) GetUserEntry(ctx context.Context, userID, guildID string) (*ScoreEntry, error) {
	entry, err := s.store.GetUserScore(ctx, userID, guildID)
	if errors.Is(err, common.ErrEntryNotFound) {
		return &ScoreEntry{UserID: userID, GuildID: guildID}, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ServerLeaderboard возвращает топ сервера по убыванию рейтинга.
// limit <= 0 — пустой список.
func (s *Service) ServerLeaderboard(ctx context.Context, guildID string, limit int) ([]*ScoreEntry, error) {
	if limit <= 0 {
		return []*ScoreEntry{}, nil
	}
	return s.store.ServerLeaderboard(ctx, guildID, limit)
}

// GlobalLeaderboard возвращает топ по всем серверам.
// limit <= 0 — пустой список.
func (s *Service) GlobalLeaderboard(ctx context.Context, limit int) ([]*ScoreEntry, error) {
	if limit <= 0 {
		return []*ScoreEntry{}, nil
	}
	return s.store.GlobalLeaderboard(ctx, limit)
}

// UserHistory возвращает последние limit изменений, новые первыми.
func (s *Service) UserHistory(ctx context.Context, userID, guildID string, limit int) ([]*ScoreHistory, error) {
	if limit <= 0 {
		return []*ScoreHistory{}, nil
	}
	return s.store.UserHistory(ctx, userID, guildID, limit)
}

// ServerStats возвращает статистику сервера.
func (s *Service) ServerStats(ctx context.Context, guildID string) (*ServerStats, error) {
	return s.store.ServerStats(ctx, guildID)
}

// GuildIDs возвращает серверы, где есть хотя бы один рейтинг.
func (s *Service) GuildIDs(ctx context.Context) ([]string, error) {
	return s.store.GuildIDs(ctx)
}
