// Package common — pluralize.go содержит вспомогательные функции
// для вывода изменений рейтинга со знаком и чисел с разделителями.
package common

import "fmt"

// FormatSignedPoints создаёт строку вида "+100 баллов" или "-50 баллов".
// Знак «+» или «-» добавляется автоматически.
//
// Примеры:
//
//	FormatSignedPoints(100)  → "+100 баллов"
//	FormatSignedPoints(-50)  → "-50 баллов"
//	FormatSignedPoints(1)    → "+1 балл"
func FormatSignedPoints(amount int64) string {
	if amount >= 0 {
		return fmt.Sprintf("+%s %s", FormatNumber(amount), PluralizePoints(amount))
	}
	return fmt.Sprintf("%s %s", FormatNumber(amount), PluralizePoints(amount))
}

// FormatNumber форматирует число с разделителями тысяч (пробелами).
// Пример: FormatNumber(2350) → "2 350"
func FormatNumber(n int64) string {
	if n < 0 {
		// Модуль считаем в uint64: -MinInt64 в int64 не помещается
		return "-" + formatUnsigned(uint64(-(n + 1))+1)
	}
	return formatUnsigned(uint64(n))
}

func formatUnsigned(n uint64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	// Рекурсивно добавляем разделители
	return fmt.Sprintf("%s %03d", formatUnsigned(n/1000), n%1000)
}
