package session

import (
	"time"

	"github.com/2beens/fitdice/internal/exercises"
	"github.com/2beens/fitdice/internal/localstore"
)

const statsWindowDays = 7

// statsWindow builds the 7-day window ending on today: one entry per day,
// oldest first, days without events present with a zero count.
func statsWindow(counts []localstore.DailyCount, today time.Time) []localstore.DailyCount {
	countByDate := make(map[string]int, len(counts))
	for _, dc := range counts {
		countByDate[dc.Date] = dc.Count
	}

	window := make([]localstore.DailyCount, 0, statsWindowDays)
	for i := statsWindowDays - 1; i >= 0; i-- {
		date := today.AddDate(0, 0, -i).Format(exercises.DateLayout)
		window = append(window, localstore.DailyCount{
			Date:  date,
			Count: countByDate[date],
		})
	}
	return window
}
