package utils

import "time"

// SaoPaulo - часовой пояс портарий. Без tzdata берем UTC-3 (летнего времени нет с 2019).
var SaoPaulo = loadSaoPaulo()

func loadSaoPaulo() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		return time.FixedZone("BRT", -3*60*60)
	}
	return loc
}

// StartOfDay - полночь того же дня по Сан-Паулу
func StartOfDay(t time.Time) time.Time {
	local := t.In(SaoPaulo)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, SaoPaulo)
}

// FormatDateTimeBR - "dd/MM/yyyy, HH:mm"
func FormatDateTimeBR(t time.Time) string {
	return t.In(SaoPaulo).Format("02/01/2006, 15:04")
}

// ParseDate принимает "2006-01-02" (полночь по Сан-Паулу) или RFC3339
func ParseDate(value string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", value, SaoPaulo); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
