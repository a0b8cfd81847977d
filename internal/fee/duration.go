package fee

import (
	"fmt"
	"time"
)

// DurationParts — длительность стоянки, разложенная на сутки, часы и минуты
// с отбрасыванием дробной части.
type DurationParts struct {
	Days    int64
	Hours   int64
	Minutes int64
}

// SplitDuration раскладывает интервал между въездом и выездом на полные сутки,
// часы после суток и минуты после часов. Отрицательный интервал даёт нули.
func SplitDuration(entry, exit time.Time) DurationParts {
	d := exit.Sub(entry)
	if d < 0 {
		return DurationParts{}
	}
	totalMinutes := int64(d / time.Minute)
	return DurationParts{
		Days:    totalMinutes / (24 * 60),
		Hours:   totalMinutes / 60 % 24,
		Minutes: totalMinutes % 60,
	}
}

// String форматирует длительность как "1d 2h 15m", опуская нулевые старшие части.
func (p DurationParts) String() string {
	switch {
	case p.Days > 0:
		return fmt.Sprintf("%dd %dh %dm", p.Days, p.Hours, p.Minutes)
	case p.Hours > 0:
		return fmt.Sprintf("%dh %dm", p.Hours, p.Minutes)
	default:
		return fmt.Sprintf("%dm", p.Minutes)
	}
}

// FormatDuration возвращает человекочитаемую длительность стоянки.
// Используется и в расчёте, и для показа текущей длительности ещё не выехавшего транспорта.
func FormatDuration(entry, exit time.Time) string {
	return SplitDuration(entry, exit).String()
}

// billableMinutes считает начатые минуты: неполная минута оплачивается целиком.
func billableMinutes(d time.Duration) int64 {
	minutes := int64(d / time.Minute)
	if d%time.Minute != 0 {
		minutes++
	}
	return minutes
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}
