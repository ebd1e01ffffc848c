// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: русская плюрализация, форматирование чисел, работа с временем.
package common

import (
	"fmt"
	"time"
)

// PluralizePoints возвращает правильную форму слова «балл» для числа n.
//
// Правила русского языка:
//   - n%10==1 И n%100!=11 → "балл" (1, 21, 31, 101, ...)
//   - n%10 в [2,3,4] И n%100 НЕ в [12,13,14] → "балла" (2, 3, 4, 22, 23, ...)
//   - Остальные случаи → "баллов" (0, 5-20, 25-30, 100, ...)
//
// Примеры:
//
//	PluralizePoints(1)  → "балл"
//	PluralizePoints(3)  → "балла"
//	PluralizePoints(5)  → "баллов"
//	PluralizePoints(11) → "баллов"
//	PluralizePoints(-21) → "балл"
func PluralizePoints(n int64) string {
	return pluralize(n, "балл", "балла", "баллов")
}

// PluralizeUsers возвращает правильную форму слова «гражданин».
func PluralizeUsers(n int64) string {
	return pluralize(n, "гражданин", "гражданина", "граждан")
}

// PluralizeChanges возвращает правильную форму слова «изменение».
func PluralizeChanges(n int64) string {
	return pluralize(n, "изменение", "изменения", "изменений")
}

func pluralize(n int64, one, few, many string) string {
	lastDigit := n % 10
	lastTwoDigits := n % 100
	// Остатки отрицательных чисел отрицательны; -n для MinInt64 переполняется
	if n < 0 {
		lastDigit, lastTwoDigits = -lastDigit, -lastTwoDigits
	}

	// Единственное число: 1, 21, 31, 101 (но НЕ 11, 111)
	if lastDigit == 1 && lastTwoDigits != 11 {
		return one
	}

	// Малое множественное: 2-4, 22-24, 32-34 (но НЕ 12-14)
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return few
	}

	return many
}

// FormatPoints форматирует рейтинг в читабельную строку.
// Пример: FormatPoints(1500) → "1 500 баллов"
func FormatPoints(score int64) string {
	return fmt.Sprintf("%s %s", FormatNumber(score), PluralizePoints(score))
}

// FormatDateTime форматирует время в формат "02.01.2006 15:04" (день.месяц.год часы:минуты)
// в указанном часовом поясе. nil — UTC.
func FormatDateTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("02.01.2006 15:04")
}
