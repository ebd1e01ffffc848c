// Package socialcredit — sqlite_repository.go хранит рейтинг в SQLite.
// SQLite допускает одного писателя: транзакция изменения начинается
// с записи, поэтому сразу берёт блокировку базы и сериализует изменения.
package socialcredit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"serotonyl.ru/socialcredit/internal/common"
	"serotonyl.ru/socialcredit/internal/db/sqlite"
)

const sqliteEntryColumns = `user_id, guild_id, username, score, last_updated, total_changes`

type sqliteQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteRepository хранит рейтинг в SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository создаёт репозиторий поверх открытой базы.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// RunInTx выполняет fn в транзакции, повторяя её при SQLITE_BUSY.
func (r *SQLiteRepository) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return sqlite.RunTx(ctx, r.db, func(tx *sql.Tx) error {
		return fn(ctx, &sqliteTx{tx: tx})
	})
}

// GetUserScore возвращает запись рейтинга.
func (r *SQLiteRepository) GetUserScore(ctx context.Context, userID, guildID string) (*ScoreEntry, error) {
	return sqliteGetEntry(ctx, r.db, `
		SELECT `+sqliteEntryColumns+`
		FROM social_credit_scores
		WHERE user_id = ? AND guild_id = ? AND total_changes > 0
	`, userID, guildID)
}

// ServerLeaderboard возвращает топ сервера.
func (r *SQLiteRepository) ServerLeaderboard(ctx context.Context, guildID string, limit int) ([]*ScoreEntry, error) {
	return r.queryEntries(ctx, `
		SELECT `+sqliteEntryColumns+`
		FROM social_credit_scores
		WHERE guild_id = ? AND total_changes > 0
		ORDER BY score DESC, last_updated ASC, user_id ASC, guild_id ASC
		LIMIT ?
	`, guildID, limit)
}

// GlobalLeaderboard возвращает топ по всем серверам.
func (r *SQLiteRepository) GlobalLeaderboard(ctx context.Context, limit int) ([]*ScoreEntry, error) {
	return r.queryEntries(ctx, `
		SELECT `+sqliteEntryColumns+`
		FROM social_credit_scores
		WHERE total_changes > 0
		ORDER BY score DESC, last_updated ASC, user_id ASC, guild_id ASC
		LIMIT ?
	`, limit)
}

// UserHistory возвращает последние изменения пользователя, новые первыми.
func (r *SQLiteRepository) UserHistory(ctx context.Context, userID, guildID string, limit int) ([]*ScoreHistory, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, guild_id, score_change, previous_score, new_score,
		       reason, message_content, created_at
		FROM score_history
		WHERE user_id = ? AND guild_id = ?
		ORDER BY seq DESC
		LIMIT ?
	`, userID, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения истории: %w", err)
	}
	defer rows.Close()

	history := make([]*ScoreHistory, 0, limit)
	for rows.Next() {
		var (
			h       ScoreHistory
			content sql.NullString
		)
		if err := rows.Scan(
			&h.ID, &h.UserID, &h.GuildID, &h.ScoreChange, &h.PreviousScore, &h.NewScore,
			&h.Reason, &content, &h.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования истории: %w", err)
		}
		if content.Valid {
			h.MessageContent = &content.String
		}
		history = append(history, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения истории: %w", err)
	}
	return history, nil
}

// ServerStats считает агрегаты по записям сервера.
// total_score_changes — сумма счётчиков total_changes.
func (r *SQLiteRepository) ServerStats(ctx context.Context, guildID string) (*ServerStats, error) {
	stats := ServerStats{GuildID: guildID}
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(AVG(score), 0.0),
		       COALESCE(MAX(score), 0),
		       COALESCE(MIN(score), 0),
		       COALESCE(SUM(total_changes), 0)
		FROM social_credit_scores
		WHERE guild_id = ? AND total_changes > 0
	`, guildID).Scan(
		&stats.TotalUsers, &stats.AverageScore, &stats.HighestScore,
		&stats.LowestScore, &stats.TotalScoreChanges,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения статистики: %w", err)
	}
	return &stats, nil
}

// GuildIDs возвращает все серверы с рейтингами.
func (r *SQLiteRepository) GuildIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT guild_id FROM social_credit_scores
		WHERE total_changes > 0
		ORDER BY guild_id
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения серверов: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ошибка сканирования сервера: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *SQLiteRepository) queryEntries(ctx context.Context, query string, args ...any) ([]*ScoreEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения лидерборда: %w", err)
	}
	defer rows.Close()

	entries := []*ScoreEntry{}
	for rows.Next() {
		var e ScoreEntry
		if err := rows.Scan(&e.UserID, &e.GuildID, &e.Username, &e.Score, &e.LastUpdated, &e.TotalChanges); err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения лидерборда: %w", err)
	}
	return entries, nil
}

func sqliteGetEntry(ctx context.Context, q sqliteQuerier, query string, args ...any) (*ScoreEntry, error) {
	var e ScoreEntry
	err := q.QueryRowContext(ctx, query, args...).Scan(
		&e.UserID, &e.GuildID, &e.Username, &e.Score, &e.LastUpdated, &e.TotalChanges,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения рейтинга: %w", err)
	}
	return &e, nil
}

type sqliteTx struct {
	tx *sql.Tx
}

// GetUserScore начинает транзакцию с записи (заготовка строки), чтобы
// сразу взять блокировку на запись и не получить устаревший снимок.
func (t *sqliteTx) GetUserScore(ctx context.Context, userID, guildID string) (*ScoreEntry, error) {
	now := time.Now().UTC()
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO social_credit_scores (user_id, guild_id, last_updated, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, guild_id) DO NOTHING
	`, userID, guildID, now, now)
	if err != nil {
		return nil, fmt.Errorf("ошибка резервирования записи: %w", err)
	}

	entry, err := sqliteGetEntry(ctx, t.tx, `
		SELECT `+sqliteEntryColumns+`
		FROM social_credit_scores
		WHERE user_id = ? AND guild_id = ?
	`, userID, guildID)
	if err != nil {
		return nil, err
	}
	if entry.TotalChanges == 0 {
		return nil, common.ErrEntryNotFound
	}
	return entry, nil
}

// UpdateUserScore записывает новый рейтинг.
func (t *sqliteTx) UpdateUserScore(ctx context.Context, userID, guildID string, newScore int64, username string, at time.Time) error {
	now := at.UTC()
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO social_credit_scores (user_id, guild_id, username, score, total_changes, last_updated, created_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT (user_id, guild_id) DO UPDATE
		SET score = excluded.score,
		    username = COALESCE(NULLIF(excluded.username, ''), social_credit_scores.username),
		    total_changes = social_credit_scores.total_changes + 1,
		    last_updated = excluded.last_updated
	`, userID, guildID, username, newScore, now, now)
	if err != nil {
		return fmt.Errorf("ошибка обновления рейтинга: %w", err)
	}
	return nil
}

// AddScoreHistory добавляет запись в историю.
func (t *sqliteTx) AddScoreHistory(ctx context.Context, rec *ScoreHistory) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO score_history
		    (id, user_id, guild_id, score_change, previous_score, new_score, reason, message_content, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.UserID, rec.GuildID, rec.ScoreChange, rec.PreviousScore, rec.NewScore,
		rec.Reason, nullString(rec.MessageContent), rec.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("ошибка записи истории: %w", err)
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
