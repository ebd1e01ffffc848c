// Package monitoring управляет каналами, в которых сервис оценивает сообщения.
// models.go описывает запись таблицы monitored_channels.
package monitoring

import "time"

// Channel — отслеживаемый канал сервера.
type Channel struct {
	GuildID     string    `json:"guild_id" yaml:"guild_id" db:"guild_id"`
	ChannelID   string    `json:"channel_id" yaml:"channel_id" db:"channel_id"`
	ChannelName string    `json:"channel_name" yaml:"channel_name" db:"channel_name"` // Может быть пустым
	AddedBy     string    `json:"added_by" yaml:"added_by" db:"added_by"`             // Кто первым добавил канал
	AddedAt     time.Time `json:"added_at" yaml:"added_at" db:"added_at"`
}

// DisplayName возвращает имя канала или его ID, если имя неизвестно.
func (c *Channel) DisplayName() string {
	if c.ChannelName != "" {
		return "#" + c.ChannelName
	}
	return c.ChannelID
}
