// Package socialcredit — store.go описывает порт хранилища, от которого
// зависит сервис рейтинга. Реализации: Repository (PostgreSQL)
// и SQLiteRepository.
package socialcredit

import (
	"context"
	"time"
)

// Store — долговременное хранилище рейтинга и истории.
//
// GetUserScore возвращает common.ErrEntryNotFound, если записи нет.
// Лидерборды упорядочены по score DESC, last_updated ASC, user_id, guild_id.
// История — от новых записей к старым.
type Store interface {
	// RunInTx выполняет fn в одной транзакции. Ошибка fn откатывает всё.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	GetUserScore(ctx context.Context, userID, guildID string) (*ScoreEntry, error)
	ServerLeaderboard(ctx context.Context, guildID string, limit int) ([]*ScoreEntry, error)
	GlobalLeaderboard(ctx context.Context, limit int) ([]*ScoreEntry, error)
	UserHistory(ctx context.Context, userID, guildID string, limit int) ([]*ScoreHistory, error)
	ServerStats(ctx context.Context, guildID string) (*ServerStats, error)
	// GuildIDs возвращает все серверы, у которых есть хотя бы одна запись.
	GuildIDs(ctx context.Context) ([]string, error)
}

// Tx — операции записи внутри транзакции.
//
// GetUserScore блокирует ключ (user, guild) до конца транзакции: параллельное
// изменение того же ключа ждёт, пока текущее не закоммитится.
type Tx interface {
	GetUserScore(ctx context.Context, userID, guildID string) (*ScoreEntry, error)
	// UpdateUserScore создаёт или обновляет запись: score, last_updated = at,
	// total_changes+1. Пустой username не затирает сохранённый.
	UpdateUserScore(ctx context.Context, userID, guildID string, newScore int64, username string, at time.Time) error
	AddScoreHistory(ctx context.Context, rec *ScoreHistory) error
}
