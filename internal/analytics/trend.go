package analytics

import (
	"math"

	"github.com/andresuchdata/inventory-analytics/internal/domain"
)

// TrendPeriodDays is the length of each period compared by ForecastTrend.
const TrendPeriodDays = 30

// ForecastTrend compares total outgoing quantity of the last 30 days with the
// 30 days before and returns the change as a rounded percentage. It is 0 when
// the histories are shorter than two periods or the earlier period is empty.
func ForecastTrend(histories []domain.ItemHistory) int {
	var recent, previous int
	for _, h := range histories {
		n := len(h.DailyBuckets)
		if n < 2*TrendPeriodDays {
			continue
		}
		for i, b := range h.DailyBuckets[n-2*TrendPeriodDays:] {
			if i < TrendPeriodDays {
				previous += b.QuantityOut
			} else {
				recent += b.QuantityOut
			}
		}
	}

	if previous == 0 {
		return 0
	}
	change := float64(recent-previous) / float64(previous) * 100
	return int(math.Round(change))
}
