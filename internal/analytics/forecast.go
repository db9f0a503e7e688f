package analytics

import (
	"math"
	"time"

	"github.com/andresuchdata/inventory-analytics/internal/domain"
)

const (
	DefaultForecastHorizonDays = 30
	DefaultSmoothingAlpha      = 0.3

	// MaxForecastHorizonDays bounds the projection so one request cannot
	// allocate an unbounded series per item.
	MaxForecastHorizonDays = 365

	// NotDepletingDays is reported as days remaining when an item has no demand.
	NotDepletingDays = 999
)

// Forecast keeps the unrounded figures of an item's demand forecast.
// Result derives the rounded display form.
type Forecast struct {
	History        domain.ItemHistory
	HorizonDays    int
	AvgDailyDemand float64
	StdDeviation   float64
	Level          float64
	DaysRemaining  float64
	TotalDemand    float64
	Start          time.Time
}

// ForecastItem runs simple exponential smoothing over the outgoing series of
// h and projects the final level flat across horizonDays, starting the day
// after today.
func ForecastItem(h domain.ItemHistory, horizonDays int, alpha float64, today time.Time) Forecast {
	series := h.OutSeries()
	avg := Mean(series)

	level := SmoothedLevel(series, alpha, avg)

	daysRemaining := float64(NotDepletingDays)
	if avg > 0 {
		daysRemaining = float64(h.CurrentStock) / avg
	}

	return Forecast{
		History:        h,
		HorizonDays:    horizonDays,
		AvgDailyDemand: avg,
		StdDeviation:   StdDev(series),
		Level:          level,
		DaysRemaining:  daysRemaining,
		TotalDemand:    float64(horizonDays) * level,
		Start:          DateOnly(today).AddDate(0, 0, 1),
	}
}

// SmoothedLevel returns the last smoothed value s[n-1] where s[0] = series[0]
// and s[i] = alpha*series[i] + (1-alpha)*s[i-1]. An empty series yields
// fallback. The update is written as s += alpha*(x-s) so a constant series
// keeps its level exactly.
func SmoothedLevel(series []float64, alpha, fallback float64) float64 {
	if len(series) == 0 {
		return fallback
	}
	level := series[0]
	for _, x := range series[1:] {
		level += alpha * (x - level)
	}
	return level
}

// Points lists the projected demand for each day of the horizon.
func (f Forecast) Points() []domain.ForecastPoint {
	points := make([]domain.ForecastPoint, f.HorizonDays)
	value := Round(f.Level, 2)
	for i := range points {
		points[i] = domain.ForecastPoint{
			Date:     f.Start.AddDate(0, 0, i).Format(dateLayout),
			Forecast: value,
		}
	}
	return points
}

// Result converts the forecast into its rounded display form.
func (f Forecast) Result() domain.ForecastResult {
	return domain.ForecastResult{
		ItemID:              f.History.ItemID,
		ItemName:            f.History.ItemName,
		Category:            f.History.Category,
		CurrentStock:        f.History.CurrentStock,
		AvgDailyDemand:      Round(f.AvgDailyDemand, 2),
		StdDeviation:        Round(f.StdDeviation, 2),
		DaysRemaining:       int(math.Round(f.DaysRemaining)),
		HistoricalDaily:     f.History.DailyBuckets,
		ForecastDaily:       f.Points(),
		TotalForecastDemand: Round(f.TotalDemand, 2),
	}
}

// ValidateForecastParams checks the horizon and smoothing factor.
func ValidateForecastParams(horizonDays int, alpha float64) error {
	if horizonDays <= 0 {
		return domain.NewValidationError("forecast_horizon_days", "must be greater than 0")
	}
	if !(alpha > 0 && alpha <= 1) {
		return domain.NewValidationError("smoothing_alpha", "must be in (0, 1]")
	}
	return nil
}
