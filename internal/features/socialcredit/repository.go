// Package socialcredit — repository.go выполняет операции с таблицами
// social_credit_scores и score_history в PostgreSQL.
// Изменение рейтинга и запись истории идут в одной транзакции БД.
package socialcredit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/socialcredit/internal/common"
)

// querier — общее у пула и транзакции.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const pgEntryColumns = `user_id, guild_id, username, score, last_updated, total_changes`

// Repository хранит рейтинг в PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий рейтинга.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// RunInTx начинает транзакцию, передаёт её в fn и коммитит,
// если fn не вернула ошибку.
func (r *Repository) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	// Откатываем транзакцию, если что-то пошло не так
	defer tx.Rollback(ctx)

	if err := fn(ctx, &pgTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return nil
}

// GetUserScore возвращает запись рейтинга без блокировки.
func (r *Repository) GetUserScore(ctx context.Context, userID, guildID string) (*ScoreEntry, error) {
	return pgGetEntry(ctx, r.db, `
		SELECT `+pgEntryColumns+`
		FROM social_credit_scores
		WHERE user_id = $1 AND guild_id = $2 AND total_changes > 0
	`, userID, guildID)
}

// ServerLeaderboard возвращает топ сервера.
func (r *Repository) ServerLeaderboard(ctx context.Context, guildID string, limit int) ([]*ScoreEntry, error) {
	return r.queryEntries(ctx, `
		SELECT `+pgEntryColumns+`
		FROM social_credit_scores
		WHERE guild_id = $1 AND total_changes > 0
		ORDER BY score DESC, last_updated ASC, user_id ASC, guild_id ASC
		LIMIT $2
	`, guildID, limit)
}

// GlobalLeaderboard возвращает топ по всем серверам.
func (r *Repository) GlobalLeaderboard(ctx context.Context, limit int) ([]*ScoreEntry, error) {
	return r.queryEntries(ctx, `
		SELECT `+pgEntryColumns+`
		FROM social_credit_scores
		WHERE total_changes > 0
		ORDER BY score DESC, last_updated ASC, user_id ASC, guild_id ASC
		LIMIT $1
	`, limit)
}

// UserHistory возвращает последние изменения пользователя, новые первыми.
func (r *Repository) UserHistory(ctx context.Context, userID, guildID string, limit int) ([]*ScoreHistory, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id::text, user_id, guild_id, score_change, previous_score, new_score,
		       reason, message_content, created_at
		FROM score_history
		WHERE user_id = $1 AND guild_id = $2
		ORDER BY seq DESC
		LIMIT $3
	`, userID, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения истории: %w", err)
	}
	defer rows.Close()

	history := make([]*ScoreHistory, 0, limit)
	for rows.Next() {
		var h ScoreHistory
		if err := rows.Scan(
			&h.ID, &h.UserID, &h.GuildID, &h.ScoreChange, &h.PreviousScore, &h.NewScore,
			&h.Reason, &h.MessageContent, &h.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования истории: %w", err)
		}
		history = append(history, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения истории: %w", err)
	}
	return history, nil
}

// ServerStats считает агрегаты по записям сервера.
// total_score_changes — сумма счётчиков total_changes, а не число строк истории.
func (r *Repository) ServerStats(ctx context.Context, guildID string) (*ServerStats, error) {
	stats := ServerStats{GuildID: guildID}
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(AVG(score), 0)::float8,
		       COALESCE(MAX(score), 0),
		       COALESCE(MIN(score), 0),
		       COALESCE(SUM(total_changes), 0)::bigint
		FROM social_credit_scores
		WHERE guild_id = $1 AND total_changes > 0
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
func (r *Repository) GuildIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT guild_id FROM social_credit_scores
		WHERE total_changes > 0
		ORDER BY guild_id
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения серверов: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения серверов: %w", err)
	}
	return ids, nil
}

func (r *Repository) queryEntries(ctx context.Context, query string, args ...any) ([]*ScoreEntry, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения лидерборда: %w", err)
	}
	defer rows.Close()

	var entries []*ScoreEntry
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
	if entries == nil {
		entries = []*ScoreEntry{}
	}
	return entries, nil
}

func pgGetEntry(ctx context.Context, q querier, query string, args ...any) (*ScoreEntry, error) {
	var e ScoreEntry
	err := q.QueryRow(ctx, query, args...).Scan(
		&e.UserID, &e.GuildID, &e.Username, &e.Score, &e.LastUpdated, &e.TotalChanges,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения рейтинга: %w", err)
	}
	return &e, nil
}

// pgTx — операции записи внутри транзакции PostgreSQL.
type pgTx struct {
	tx pgx.Tx
}

// GetUserScore блокирует строку пользователя (SELECT ... FOR UPDATE).
//
// Для нового ключа строки ещё нет и блокировать нечего, поэтому сначала
// вставляем заготовку с total_changes = 0: конкурирующая транзакция
// упрётся в первичный ключ и дождётся нашего коммита. Заготовка без
// последующего UpdateUserScore откатывается вместе с транзакцией.
func (t *pgTx) GetUserScore(ctx context.Context, userID, guildID string) (*ScoreEntry, error) {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO social_credit_scores (user_id, guild_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, guild_id) DO NOTHING
	`, userID, guildID)
	if err != nil {
		return nil, fmt.Errorf("ошибка резервирования записи: %w", err)
	}

	entry, err := pgGetEntry(ctx, t.tx, `
		SELECT `+pgEntryColumns+`
		FROM social_credit_scores
		WHERE user_id = $1 AND guild_id = $2
		FOR UPDATE
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
func (t *pgTx) UpdateUserScore(ctx context.Context, userID, guildID string, newScore int64, username string, at time.Time) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO social_credit_scores (user_id, guild_id, username, score, total_changes, last_updated)
		VALUES ($1, $2, $3, $4, 1, $5)
		ON CONFLICT (user_id, guild_id) DO UPDATE
		SET score = EXCLUDED.score,
		    username = COALESCE(NULLIF(EXCLUDED.username, ''), social_credit_scores.username),
		    total_changes = social_credit_scores.total_changes + 1,
		    last_updated = EXCLUDED.last_updated
	`, userID, guildID, username, newScore, at)
	if err != nil {
		return fmt.Errorf("ошибка обновления рейтинга: %w", err)
	}
	return nil
}

// AddScoreHistory добавляет запись в историю.
func (t *pgTx) AddScoreHistory(ctx context.Context, rec *ScoreHistory) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO score_history
		    (id, user_id, guild_id, score_change, previous_score, new_score, reason, message_content, created_at)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9)
	`, rec.ID, rec.UserID, rec.GuildID, rec.ScoreChange, rec.PreviousScore, rec.NewScore,
		rec.Reason, rec.MessageContent, rec.Timestamp)
	if err != nil {
		return fmt.Errorf("ошибка записи истории: %w", err)
	}
	return nil
}
