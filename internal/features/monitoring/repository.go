// Package monitoring — repository.go выполняет операции с таблицей
// monitored_channels в PostgreSQL.
package monitoring

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/socialcredit/internal/common"
)

// Store — хранилище отслеживаемых каналов.
type Store interface {
	// Upsert добавляет канал. Повторное добавление обновляет только имя.
	Upsert(ctx context.Context, c *Channel) error
	// Delete удаляет канал и сообщает, был ли он.
	Delete(ctx context.Context, guildID, channelID string) (bool, error)
	// Get возвращает канал или common.ErrChannelNotFound.
	Get(ctx context.Context, guildID, channelID string) (*Channel, error)
	// List возвращает каналы сервера в порядке добавления.
	List(ctx context.Context, guildID string) ([]*Channel, error)
}

// Repository хранит каналы в PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий каналов.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Upsert добавляет канал. На конфликте обновляет только channel_name
// (added_by и added_at остаются от первого добавления).
func (r *Repository) Upsert(ctx context.Context, c *Channel) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO monitored_channels (guild_id, channel_id, channel_name, added_by, added_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (guild_id, channel_id) DO UPDATE
		SET channel_name = EXCLUDED.channel_name
	`, c.GuildID, c.ChannelID, c.ChannelName, c.AddedBy, c.AddedAt)
	if err != nil {
		return fmt.Errorf("ошибка добавления канала: %w", err)
	}
	return nil
}

// Delete удаляет канал.
func (r *Repository) Delete(ctx context.Context, guildID, channelID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM monitored_channels WHERE guild_id = $1 AND channel_id = $2
	`, guildID, channelID)
	if err != nil {
		return false, fmt.Errorf("ошибка удаления канала: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Get возвращает один канал.
func (r *Repository) Get(ctx context.Context, guildID, channelID string) (*Channel, error) {
	var c Channel
	err := r.db.QueryRow(ctx, `
		SELECT guild_id, channel_id, channel_name, added_by, added_at
		FROM monitored_channels
		WHERE guild_id = $1 AND channel_id = $2
	`, guildID, channelID).Scan(&c.GuildID, &c.ChannelID, &c.ChannelName, &c.AddedBy, &c.AddedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrChannelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения канала: %w", err)
	}
	return &c, nil
}

// List возвращает каналы сервера.
func (r *Repository) List(ctx context.Context, guildID string) ([]*Channel, error) {
	rows, err := r.db.Query(ctx, `
		SELECT guild_id, channel_id, channel_name, added_by, added_at
		FROM monitored_channels
		WHERE guild_id = $1
		ORDER BY added_at ASC, channel_id ASC
	`, guildID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения каналов: %w", err)
	}
	channels, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[Channel])
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения каналов: %w", err)
	}
	if channels == nil {
		channels = []*Channel{}
	}
	return channels, nil
}
