package ingest

import (
	"time"

	"github.com/mlarcin/chess-results-stats/internal/domain"
)

// MonthWindow identifies one monthly archive page to request.
type MonthWindow struct {
	Year  int
	Month time.Month
}

// PlanFetchWindow decides which monthly pages to request given the cursor
// (end time of the most recent stored game, or domain.Epoch when none).
// A sentinel cursor asks for exactly maxMonths consecutive months ending at
// the current month. Otherwise the window spans from the cursor's month to
// the current month inclusive, capped at maxMonths. The cursor's own month
// is always re-fetched: it may have gained games since the last sync.
func PlanFetchWindow(cursor time.Time, maxMonths int, now time.Time) []MonthWindow {
	months := maxMonths
	if !cursor.IsZero() && !cursor.Equal(domain.Epoch) {
		monthsDifference := (now.Year()-cursor.Year())*12 + int(now.Month()) - int(cursor.Month())
		if monthsDifference+1 < months {
			months = monthsDifference + 1
		}
	}
	if months <= 0 {
		return nil
	}

	base := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	window := make([]MonthWindow, 0, months)
	for i := months - 1; i >= 0; i-- {
		m := base.AddDate(0, -i, 0)
		window = append(window, MonthWindow{Year: m.Year(), Month: m.Month()})
	}
	return window
}
