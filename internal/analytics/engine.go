package analytics

import (
	"context"
	"time"

	"github.com/andresuchdata/inventory-analytics/internal/domain"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 4

// Engine computes analytics over item histories. Per-item work is spread
// over a bounded pool of goroutines; every goroutine writes only its own
// slot of the result slice, and ordering is applied after the gather.
type Engine struct {
	workers int
}

func NewEngine(workers int) *Engine {
	if workers < 1 {
		workers = defaultWorkers
	}
	return &Engine{workers: workers}
}

// Forecasts returns one unrounded forecast per history, in input order.
func (e *Engine) Forecasts(ctx context.Context, histories []domain.ItemHistory, horizonDays int, alpha float64, today time.Time) ([]Forecast, error) {
	if err := ValidateForecastParams(horizonDays, alpha); err != nil {
		return nil, err
	}
	return mapItems(ctx, e.workers, histories, func(h domain.ItemHistory) Forecast {
		return ForecastItem(h, horizonDays, alpha, today)
	})
}

// ForecastReport returns the display report for histories.
func (e *Engine) ForecastReport(ctx context.Context, histories []domain.ItemHistory, horizonDays int, alpha float64, today time.Time) (domain.ForecastReport, []Forecast, error) {
	forecasts, err := e.Forecasts(ctx, histories, horizonDays, alpha, today)
	if err != nil {
		return domain.ForecastReport{}, nil, err
	}

	report := domain.ForecastReport{
		HorizonDays: horizonDays,
		Items:       make([]domain.ForecastResult, len(forecasts)),
	}
	var total float64
	for i, f := range forecasts {
		report.Items[i] = f.Result()
		total += f.TotalDemand
	}
	report.TotalForecastDemand = Round(total, 2)
	return report, forecasts, nil
}

// Anomalies scans each history for outliers at the given Z threshold.
func (e *Engine) Anomalies(ctx context.Context, histories []domain.ItemHistory, threshold float64, windowDays int) (domain.AnomalyReport, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return domain.AnomalyReport{}, err
	}
	groups, err := mapItems(ctx, e.workers, histories, func(h domain.ItemHistory) domain.ItemAnomalies {
		group, ok := DetectItemAnomalies(h, threshold)
		if !ok {
			return domain.ItemAnomalies{}
		}
		return group
	})
	if err != nil {
		return domain.AnomalyReport{}, err
	}
	return BuildAnomalyReport(groups, threshold, windowDays), nil
}

// Procurement forecasts every history and sizes reorders from the
// unrounded figures.
func (e *Engine) Procurement(ctx context.Context, histories []domain.ItemHistory, minStockDays, horizonDays int, alpha float64, today time.Time) (domain.ProcurementReport, error) {
	if err := ValidateMinStockDays(minStockDays); err != nil {
		return domain.ProcurementReport{}, err
	}
	forecasts, err := e.Forecasts(ctx, histories, horizonDays, alpha, today)
	if err != nil {
		return domain.ProcurementReport{}, err
	}
	return BuildProcurementReport(forecasts, minStockDays), nil
}

// Movement classifies every item, including those without history.
func (e *Engine) Movement(ctx context.Context, items []domain.Item, histories []domain.ItemHistory, today time.Time, windowDays int) (domain.MovementReport, error) {
	index := HistoryIndex(histories)
	records, err := mapItems(ctx, e.workers, items, func(item domain.Item) domain.MovementClass {
		var h *domain.ItemHistory
		if i, ok := index[item.ID]; ok {
			h = &histories[i]
		}
		return ClassifyItem(item, h, today, windowDays)
	})
	if err != nil {
		return domain.MovementReport{}, err
	}
	return BuildMovementReport(records, windowDays), nil
}

// Trend is the 30-over-30 day change of outgoing quantity across histories.
func (e *Engine) Trend(histories []domain.ItemHistory) int {
	return ForecastTrend(histories)
}

// TrimHistories keeps the last windowDays buckets of each history and drops
// histories left without any activity.
func TrimHistories(histories []domain.ItemHistory, windowDays int) []domain.ItemHistory {
	trimmed := make([]domain.ItemHistory, 0, len(histories))
	for _, h := range histories {
		if len(h.DailyBuckets) > windowDays {
			h.DailyBuckets = h.DailyBuckets[len(h.DailyBuckets)-windowDays:]
		}
		if !hasActivity(h.DailyBuckets) {
			continue
		}
		trimmed = append(trimmed, h)
	}
	return trimmed
}

func hasActivity(buckets []domain.DailyBucket) bool {
	for _, b := range buckets {
		if b.QuantityIn > 0 || b.QuantityOut > 0 {
			return true
		}
	}
	return false
}

// mapItems applies fn to every element of in using at most workers
// goroutines. Results keep the input order.
func mapItems[T, R any](ctx context.Context, workers int, in []T, fn func(T) R) ([]R, error) {
	out := make([]R, len(in))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range in {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = fn(in[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
