package analytics

import (
	"testing"

	"github.com/andresuchdata/inventory-analytics/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestForecastTrend(t *testing.T) {
	rising := historyFromOut(1, 0, append(repeat(2, 30), repeat(3, 30)...)...)
	assert.Equal(t, 50, ForecastTrend([]domain.ItemHistory{rising}))

	// only the last 60 days count
	long := historyFromOut(2, 0, append(repeat(100, 30), append(repeat(4, 30), repeat(1, 30)...)...)...)
	assert.Equal(t, -75, ForecastTrend([]domain.ItemHistory{long}))

	assert.Equal(t, -33, ForecastTrend([]domain.ItemHistory{rising, long}))
}

func TestForecastTrendDegenerate(t *testing.T) {
	short := historyFromOut(1, 0, repeat(5, 45)...)
	assert.Equal(t, 0, ForecastTrend([]domain.ItemHistory{short}))

	fresh := historyFromOut(2, 0, append(repeat(0, 30), repeat(5, 30)...)...)
	assert.Equal(t, 0, ForecastTrend([]domain.ItemHistory{fresh}))

	assert.Equal(t, 0, ForecastTrend(nil))
}
