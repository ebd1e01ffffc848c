// Package socialcredit реализует систему социального рейтинга.
// models.go описывает записи рейтинга, историю изменений и статистику сервера.
package socialcredit

import "time"

// ScoreEntry — текущий рейтинг пользователя на одном сервере.
// Ключ — пара (UserID, GuildID). Запись появляется только при первом изменении.
type ScoreEntry struct {
	UserID       string    `json:"user_id" yaml:"user_id" db:"user_id"`
	GuildID      string    `json:"guild_id" yaml:"guild_id" db:"guild_id"`
	Username     string    `json:"username,omitempty" yaml:"username,omitempty" db:"username"`
	Score        int64     `json:"score" yaml:"score" db:"score"`
	LastUpdated  time.Time `json:"last_updated" yaml:"last_updated" db:"last_updated"`
	TotalChanges int64     `json:"total_changes" yaml:"total_changes" db:"total_changes"`
}

// ScoreHistory — неизменяемая запись об одном изменении рейтинга.
// Всегда выполняется NewScore - PreviousScore == ScoreChange.
type ScoreHistory struct {
	ID             string    `json:"id" yaml:"id" db:"id"`
	UserID         string    `json:"user_id" yaml:"user_id" db:"user_id"`
	GuildID        string    `json:"guild_id" yaml:"guild_id" db:"guild_id"`
	ScoreChange    int64     `json:"score_change" yaml:"score_change" db:"score_change"`
	PreviousScore  int64     `json:"previous_score" yaml:"previous_score" db:"previous_score"`
	NewScore       int64     `json:"new_score" yaml:"new_score" db:"new_score"`
	Reason         string    `json:"reason" yaml:"reason" db:"reason"`
	Timestamp      time.Time `json:"timestamp" yaml:"timestamp" db:"created_at"`
	MessageContent *string   `json:"message_content,omitempty" yaml:"message_content,omitempty" db:"message_content"`
}

// ServerStats — агрегаты по всем записям рейтинга сервера.
// Для сервера без пользователей все поля нулевые.
type ServerStats struct {
	GuildID           string  `json:"guild_id" yaml:"guild_id"`
	TotalUsers        int64   `json:"total_users" yaml:"total_users"`
	AverageScore      float64 `json:"average_score" yaml:"average_score"`
	HighestScore      int64   `json:"highest_score" yaml:"highest_score"`
	LowestScore       int64   `json:"lowest_score" yaml:"lowest_score"`
	TotalScoreChanges int64   `json:"total_score_changes" yaml:"total_score_changes"`
}
