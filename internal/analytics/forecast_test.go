package analytics

import (
	"testing"

	"github.com/andresuchdata/inventory-analytics/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForecastConstantDemand(t *testing.T) {
	h := historyFromOut(1, 100, repeat(5, 30)...)

	f := ForecastItem(h, DefaultForecastHorizonDays, DefaultSmoothingAlpha, testToday)
	res := f.Result()

	assert.Equal(t, 5.0, res.AvgDailyDemand)
	assert.Equal(t, 0.0, res.StdDeviation)
	assert.Equal(t, 20, res.DaysRemaining)
	assert.Equal(t, 150.0, res.TotalForecastDemand)

	require.Len(t, res.ForecastDaily, 30)
	assert.Equal(t, "2024-06-02", res.ForecastDaily[0].Date)
	assert.Equal(t, "2024-07-01", res.ForecastDaily[29].Date)
	for _, p := range res.ForecastDaily {
		assert.Equal(t, 5.0, p.Forecast)
	}
	assert.Len(t, res.HistoricalDaily, 30)
}

func TestForecastIsFlat(t *testing.T) {
	series := [][]int{
		{0, 0, 12, 3, 0, 9, 1},
		{100},
		append(repeat(0, 20), 40),
	}

	for _, out := range series {
		f := ForecastItem(historyFromOut(1, 10, out...), 14, 0.4, testToday)
		points := f.Points()
		require.Len(t, points, 14)
		for _, p := range points {
			assert.Equal(t, points[0].Forecast, p.Forecast)
		}
		assert.InDelta(t, 14*f.Level, f.TotalDemand, 1e-9)
	}
}

func TestSmoothedLevel(t *testing.T) {
	assert.Equal(t, 5.0, SmoothedLevel([]float64{10, 0}, 0.5, 0))
	assert.Equal(t, 7.0, SmoothedLevel([]float64{7}, 0.3, 0))
	assert.Equal(t, 3.5, SmoothedLevel(nil, 0.3, 3.5))

	// alpha 1 tracks the last observation
	assert.Equal(t, 4.0, SmoothedLevel([]float64{1, 9, 4}, 1, 0))

	// s0=10, s1=0.3*20+0.7*10=13, s2=0.3*0+0.7*13=9.1
	assert.InDelta(t, 9.1, SmoothedLevel([]float64{10, 20, 0}, 0.3, 0), 1e-9)
}

func TestForecastNoDemand(t *testing.T) {
	h := historyFromOut(1, 50, repeat(0, 30)...)
	h.DailyBuckets[3].QuantityIn = 20

	f := ForecastItem(h, 30, 0.3, testToday)
	assert.Equal(t, float64(NotDepletingDays), f.DaysRemaining)
	assert.Equal(t, 0.0, f.TotalDemand)
	assert.Equal(t, NotDepletingDays, f.Result().DaysRemaining)
}

func TestValidateForecastParams(t *testing.T) {
	require.NoError(t, ValidateForecastParams(30, 0.3))
	require.NoError(t, ValidateForecastParams(1, 1))

	tests := []struct {
		horizon int
		alpha   float64
		param   string
	}{
		{0, 0.3, "forecast_horizon_days"},
		{-7, 0.3, "forecast_horizon_days"},
		{30, 0, "smoothing_alpha"},
		{30, 1.5, "smoothing_alpha"},
	}
	for _, tt := range tests {
		err := ValidateForecastParams(tt.horizon, tt.alpha)
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, tt.param, ve.Param)
	}
}
