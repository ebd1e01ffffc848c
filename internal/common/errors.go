// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях сервиса.
// Эти ошибки позволяют обработчикам различать типы проблем
// и отдавать клиенту понятные коды ответа.
package common

import "errors"

// Ошибки социального рейтинга
var (
	// ErrEntryNotFound — у пользователя ещё нет записи рейтинга на сервере.
	// Хранилище возвращает её вместо «нулевой» строки.
	ErrEntryNotFound = errors.New("запись рейтинга не найдена")
	// ErrEmptyReason — изменение рейтинга без причины
	ErrEmptyReason = errors.New("причина изменения рейтинга обязательна")
	// ErrScoreOutOfRange — новый рейтинг не помещается в int64
	ErrScoreOutOfRange = errors.New("рейтинг вышел за допустимые пределы")
	// ErrInvalidLimit — некорректный лимит выборки
	ErrInvalidLimit = errors.New("некорректный лимит")
)

// Ошибки мониторинга каналов
var (
	// ErrInvalidChannel — не указан сервер или канал
	ErrInvalidChannel = errors.New("неверный канал")
	// ErrChannelNotFound — канал не отслеживается
	ErrChannelNotFound = errors.New("канал не отслеживается")
)

// Ошибки админки
var (
	// ErrAdminDisabled — ADMIN_PASSWORD_HASH не задан
	ErrAdminDisabled = errors.New("админ-доступ отключён")
	// ErrWrongPassword — неверный пароль
	ErrWrongPassword = errors.New("неверный пароль")
	// ErrTooManyAttempts — слишком много неудачных попыток входа
	ErrTooManyAttempts = errors.New("слишком много попыток, подождите 1 час")
	// ErrSessionExpired — сессия истекла или не существует
	ErrSessionExpired = errors.New("сессия истекла, авторизуйтесь заново")
)
