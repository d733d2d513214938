// Package utils содержит утилитарные функции для вывода в терминал
package utils

import (
	"fmt"
	"time"
)

// FormatDuration форматирует длительность как MM:SS, а начиная с часа как H:MM:SS
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	hours, minutes, seconds := total/3600, (total%3600)/60, total%60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// FormatDurationFromSeconds форматирует продолжительность в секундах
func FormatDurationFromSeconds(seconds int) string {
	return FormatDuration(time.Duration(seconds) * time.Second)
}

// TruncateString обрезает строку до maxLen символов, добавляя "..." если строка длиннее.
// Считаются руны, поэтому кириллица не режется посреди символа.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
