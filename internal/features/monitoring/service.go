// Package monitoring — service.go содержит бизнес-логику отслеживаемых каналов.
// Оценка сообщений выполняется только в каналах из этого списка.
package monitoring

import (
	"context"
	"errors"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/socialcredit/internal/common"
)

// Service управляет списком отслеживаемых каналов.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService создаёт сервис каналов.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// AddChannel добавляет канал в отслеживаемые и возвращает сохранённую запись.
// Повторное добавление обновляет имя, но не дату добавления.
//
// Параметры:
//   - guildID, channelID: обязательны
//   - channelName: отображаемое имя (может быть пустым)
//   - addedBy: кто добавил
func (s *Service) AddChannel(ctx context.Context, guildID, channelID, channelName, addedBy string) (*Channel, error) {
	guildID, channelID, err := channelKey(guildID, channelID)
	if err != nil {
		return nil, err
	}

	err = s.store.Upsert(ctx, &Channel{
		GuildID:     guildID,
		ChannelID:   channelID,
		ChannelName: strings.TrimPrefix(strings.TrimSpace(channelName), "#"),
		AddedBy:     addedBy,
		AddedAt:     s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"guild_id":   guildID,
		"channel_id": channelID,
		"added_by":   addedBy,
	}).Info("Канал добавлен в мониторинг")

	return s.store.Get(ctx, guildID, channelID)
}

// RemoveChannel убирает канал из отслеживаемых.
// removed == false, если канала в списке не было.
func (s *Service) RemoveChannel(ctx context.Context, guildID, channelID string) (bool, error) {
	guildID, channelID, err := channelKey(guildID, channelID)
	if err != nil {
		return false, err
	}
	removed, err := s.store.Delete(ctx, guildID, channelID)
	if err != nil {
		return false, err
	}
	if removed {
		log.WithFields(log.Fields{
			"guild_id":   guildID,
			"channel_id": channelID,
		}).Info("Канал убран из мониторинга")
	}
	return removed, nil
}

// GetChannel возвращает канал или common.ErrChannelNotFound.
func (s *Service) GetChannel(ctx context.Context, guildID, channelID string) (*Channel, error) {
	guildID, channelID, err := channelKey(guildID, channelID)
	if err != nil {
		return nil, err
	}
	return s.store.Get(ctx, guildID, channelID)
}

// ListChannels возвращает каналы сервера в порядке добавления.
func (s *Service) ListChannels(ctx context.Context, guildID string) ([]*Channel, error) {
	guildID = strings.TrimSpace(guildID)
	if guildID == "" {
		return nil, common.ErrInvalidChannel
	}
	return s.store.List(ctx, guildID)
}

// IsMonitored проверяет, отслеживается ли канал.
func (s *Service) IsMonitored(ctx context.Context, guildID, channelID string) (bool, error) {
	_, err := s.GetChannel(ctx, guildID, channelID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, common.ErrChannelNotFound):
		return false, nil
	default:
		return false, err
	}
}

// channelKey обрезает пробелы в ID; пустой ID — common.ErrInvalidChannel.
func channelKey(guildID, channelID string) (string, string, error) {
	guildID, channelID = strings.TrimSpace(guildID), strings.TrimSpace(channelID)
	if guildID == "" || channelID == "" {
		return "", "", common.ErrInvalidChannel
	}
	return guildID, channelID, nil
}
