package monitoring

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"serotonyl.ru/socialcredit/internal/common"
)

// SQLiteRepository хранит каналы в SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository создаёт репозиторий поверх открытой базы.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, c *Channel) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO monitored_channels (guild_id, channel_id, channel_name, added_by, added_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (guild_id, channel_id) DO UPDATE
		SET channel_name = excluded.channel_name
	`, c.GuildID, c.ChannelID, c.ChannelName, c.AddedBy, c.AddedAt.UTC())
	if err != nil {
		return fmt.Errorf("ошибка добавления канала: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, guildID, channelID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM monitored_channels WHERE guild_id = ? AND channel_id = ?
	`, guildID, channelID)
	if err != nil {
		return false, fmt.Errorf("ошибка удаления канала: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ошибка удаления канала: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, guildID, channelID string) (*Channel, error) {
	var c Channel
	err := r.db.QueryRowContext(ctx, `
		SELECT guild_id, channel_id, channel_name, added_by, added_at
		FROM monitored_channels
		WHERE guild_id = ? AND channel_id = ?
	`, guildID, channelID).Scan(&c.GuildID, &c.ChannelID, &c.ChannelName, &c.AddedBy, &c.AddedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrChannelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения канала: %w", err)
	}
	return &c, nil
}

func (r *SQLiteRepository) List(ctx context.Context, guildID string) ([]*Channel, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT guild_id, channel_id, channel_name, added_by, added_at
		FROM monitored_channels
		WHERE guild_id = ?
		ORDER BY added_at ASC, channel_id ASC
	`, guildID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения каналов: %w", err)
	}
	defer rows.Close()

	channels := []*Channel{}
	for rows.Next() {
		var c Channel
		if err := rows.Scan(&c.GuildID, &c.ChannelID, &c.ChannelName, &c.AddedBy, &c.AddedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования канала: %w", err)
		}
		channels = append(channels, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения каналов: %w", err)
	}
	return channels, nil
}
