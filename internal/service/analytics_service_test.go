package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/andresuchdata/inventory-analytics/internal/analytics"
	"github.com/andresuchdata/inventory-analytics/internal/cache"
	"github.com/andresuchdata/inventory-analytics/internal/config"
	"github.com/andresuchdata/inventory-analytics/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type mockLedgerRepo struct {
	items []domain.Item
	txs   []domain.Transaction
	err   error
	block bool

	itemCalls int
	txCalls   int
}

func (m *mockLedgerRepo) ListItems(ctx context.Context) ([]domain.Item, error) {
	m.itemCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.items, nil
}

func (m *mockLedgerRepo) GetItemsByIDs(ctx context.Context, ids []int64) ([]domain.Item, error) {
	m.itemCalls++
	if m.err != nil {
		return nil, m.err
	}
	wanted := map[int64]bool{}
	for _, id := range ids {
		wanted[id] = true
	}
	var out []domain.Item
	for _, it := range m.items {
		if wanted[it.ID] {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *mockLedgerRepo) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	m.txCalls++
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Transaction
	for _, tx := range m.txs {
		if tx.Date.Before(filter.From) || !tx.Date.Before(filter.To) {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func daysBefore(n int) time.Time {
	return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -n)
}

// outEveryDay records qty going out on each of the last days days.
func outEveryDay(itemID int64, qty, days int) []domain.Transaction {
	txs := make([]domain.Transaction, 0, days)
	for d := 1; d <= days; d++ {
		txs = append(txs, domain.Transaction{
			ItemID:    itemID,
			Direction: domain.DirectionOut,
			Quantity:  qty,
			Date:      daysBefore(d),
		})
	}
	return txs
}

func fixtureRepo() *mockLedgerRepo {
	txs := outEveryDay(1, 5, 90)
	// item 2: steady 5 a day with a single 50 unit spike
	item2 := outEveryDay(2, 5, 90)
	item2[10].Quantity = 50
	txs = append(txs, item2...)
	txs = append(txs, domain.Transaction{ItemID: 4, Direction: domain.DirectionIn, Quantity: 20, Date: daysBefore(3)})

	return &mockLedgerRepo{
		items: []domain.Item{
			{ID: 1, Name: "Copy paper", Category: "Office", CurrentStock: 100},
			{ID: 2, Name: "Toner", Category: "Office", CurrentStock: 30},
			{ID: 3, Name: "Archive box", CurrentStock: 100},
			{ID: 4, Name: "Stapler", CurrentStock: 20},
		},
		txs: txs,
	}
}

func newTestService(t *testing.T, repo *mockLedgerRepo, cfg *config.Config) (*AnalyticsService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	if cfg == nil {
		cfg = &config.Config{}
	}
	svc := NewAnalyticsService(repo, cache.NewRedisAnalyticsCache(client), cfg, WithClock(func() time.Time { return fixedNow }))
	return svc, mr
}

func TestGetForecasts(t *testing.T) {
	svc, _ := newTestService(t, fixtureRepo(), nil)

	report, err := svc.GetForecasts(context.Background(), svc.DefaultForecastParams())
	require.NoError(t, err)
	require.Len(t, report.Items, 3)
	assert.Equal(t, 30, report.HorizonDays)

	paper := report.Items[0]
	assert.Equal(t, int64(1), paper.ItemID)
	assert.Equal(t, 5.0, paper.AvgDailyDemand)
	assert.Equal(t, 20, paper.DaysRemaining)
	assert.Equal(t, 150.0, paper.TotalForecastDemand)
	assert.Len(t, paper.HistoricalDaily, 90)
	require.Len(t, paper.ForecastDaily, 30)
	assert.Equal(t, "2024-06-02", paper.ForecastDaily[0].Date)

	// restock only: no demand
	stapler := report.Items[2]
	assert.Equal(t, int64(4), stapler.ItemID)
	assert.Equal(t, 999, stapler.DaysRemaining)
	assert.Equal(t, domain.DefaultCategory, stapler.Category)

	for _, it := range report.Items {
		assert.NotEqual(t, int64(3), it.ItemID, "items without transactions are not forecast")
	}
}

func TestGetForecastsUsesCache(t *testing.T) {
	repo := fixtureRepo()
	svc, mr := newTestService(t, repo, nil)
	ctx := context.Background()

	first, err := svc.GetForecasts(ctx, ForecastParams{HorizonDays: 30})
	require.NoError(t, err)
	require.Equal(t, 1, repo.txCalls)

	second, err := svc.GetForecasts(ctx, ForecastParams{HorizonDays: 30})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.txCalls)
	assert.Equal(t, first, second)

	key := mr.Keys()[0]
	assert.Equal(t, 6*time.Hour, mr.TTL(key))

	// a different horizon is a different entry
	_, err = svc.GetForecasts(ctx, ForecastParams{HorizonDays: 7})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.txCalls)

	require.NoError(t, svc.InvalidateCache(ctx))
	assert.Empty(t, mr.Keys())

	_, err = svc.GetForecasts(ctx, ForecastParams{HorizonDays: 30})
	require.NoError(t, err)
	assert.Equal(t, 3, repo.txCalls)
}

func TestGetAnomalies(t *testing.T) {
	svc, _ := newTestService(t, fixtureRepo(), nil)

	report, err := svc.GetAnomalies(context.Background(), svc.DefaultAnomalyParams())
	require.NoError(t, err)
	require.Len(t, report.Anomalies, 1)

	a := report.Anomalies[0]
	assert.Equal(t, int64(2), a.ItemID)
	assert.Equal(t, "2024-05-21", a.Date)
	assert.Equal(t, 50, a.Quantity)
	assert.Equal(t, domain.AnomalySurge, a.Kind)
	assert.Equal(t, 90, report.WindowDays)
	assert.Equal(t, 1, report.Summary.SurgeCount)
}

func TestGetProcurement(t *testing.T) {
	svc, _ := newTestService(t, fixtureRepo(), nil)

	report, err := svc.GetProcurement(context.Background(), ProcurementParams{MinStockDays: 14})
	require.NoError(t, err)
	require.Len(t, report.Items, 2)

	// toner: ~5.5 a day against 30 in stock
	assert.Equal(t, int64(2), report.Items[0].ItemID)
	assert.Equal(t, domain.UrgencyHigh, report.Items[0].Urgency)

	paper := report.Items[1]
	assert.Equal(t, int64(1), paper.ItemID)
	assert.Equal(t, 70.0, paper.SafetyStock)
	assert.Equal(t, 120, paper.RecommendedPurchase)
	assert.Equal(t, domain.UrgencyLow, paper.Urgency)
}

func TestGetMovement(t *testing.T) {
	svc, _ := newTestService(t, fixtureRepo(), nil)

	report, err := svc.GetMovement(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Items, 4)

	byID := map[int64]domain.MovementClass{}
	for _, it := range report.Items {
		byID[it.ItemID] = it
	}
	assert.Equal(t, domain.FastMoving, byID[1].Classification)
	assert.Equal(t, 1, byID[1].DaysSinceLastTransaction)
	assert.Equal(t, domain.DeadStock, byID[3].Classification)
	assert.Equal(t, 90, byID[3].DaysSinceLastTransaction)
	assert.Equal(t, domain.DeadStock, byID[4].Classification)

	s := report.Summary
	assert.Equal(t, 4, s.TotalItems)
	assert.Equal(t, s.TotalItems, s.FastMovingCount+s.MediumMovingCount+s.SlowMovingCount+s.DeadStockCount)
	assert.Equal(t, 50, s.FastMovingPercentage)
}

func TestGetDashboard(t *testing.T) {
	repo := fixtureRepo()
	svc, _ := newTestService(t, repo, nil)

	dash, err := svc.GetDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", dash.GeneratedFor)
	assert.Equal(t, 1, repo.txCalls, "one snapshot for all panels")

	s := dash.Summary
	assert.Equal(t, dash.Forecasts.TotalForecastDemand, s.TotalForecastedDemand)
	assert.Equal(t, len(dash.Procurement.Items), s.ItemsToReorder)
	assert.Equal(t, 1, s.UrgentItems)
	assert.Equal(t, 1, s.AnomalyCount)
	assert.Equal(t, 90, s.AnomalyPeriodDays)
	assert.Equal(t, 2, s.FastMovingCount)
	assert.Equal(t, 50, s.FastMovingPercentage)
	assert.Equal(t, 15, s.ForecastTrend)

	assert.Len(t, dash.Movement.Items, 4)

	again, err := svc.GetDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dash, again)
	assert.Equal(t, 1, repo.txCalls)
}

func TestValidationErrors(t *testing.T) {
	svc, _ := newTestService(t, fixtureRepo(), nil)
	ctx := context.Background()

	_, err := svc.GetForecasts(ctx, ForecastParams{HorizonDays: 0})
	assertValidation(t, err, "forecast_horizon_days")

	_, err = svc.GetForecasts(ctx, ForecastParams{HorizonDays: analytics.MaxForecastHorizonDays + 1})
	assertValidation(t, err, "forecast_horizon_days")

	report, err := svc.GetForecasts(ctx, ForecastParams{HorizonDays: analytics.MaxForecastHorizonDays})
	require.NoError(t, err)
	assert.Equal(t, analytics.MaxForecastHorizonDays, report.HorizonDays)

	_, err = svc.GetAnomalies(ctx, AnomalyParams{Threshold: -1})
	assertValidation(t, err, "threshold")

	_, err = svc.GetProcurement(ctx, ProcurementParams{MinStockDays: -5})
	assertValidation(t, err, "min_stock_days")
}

func assertValidation(t *testing.T, err error, param string) {
	t.Helper()
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, param, ve.Param)
}

func TestLedgerFailureIsRetryable(t *testing.T) {
	repo := fixtureRepo()
	repo.err = errors.New("connection reset by peer")
	svc, mr := newTestService(t, repo, nil)

	_, err := svc.GetForecasts(context.Background(), ForecastParams{HorizonDays: 30})
	var dae *domain.DataAccessError
	require.ErrorAs(t, err, &dae)
	assert.True(t, dae.Retryable())
	assert.Empty(t, mr.Keys(), "failures are not cached")
}

func TestLedgerTimeout(t *testing.T) {
	repo := fixtureRepo()
	repo.block = true
	svc, _ := newTestService(t, repo, &config.Config{Analytics: config.AnalyticsConfig{LedgerTimeoutSeconds: 1}})

	start := time.Now()
	_, err := svc.GetMovement(context.Background())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)

	var dae *domain.DataAccessError
	require.ErrorAs(t, err, &dae)
	assert.True(t, dae.Retryable())
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

type brokenCache struct{}

func (brokenCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	return false, errors.New("cache down")
}

func (brokenCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return errors.New("cache down")
}

func (brokenCache) InvalidateAll(ctx context.Context) error {
	return errors.New("cache down")
}

func TestCacheFailuresAreIgnored(t *testing.T) {
	repo := fixtureRepo()
	svc := NewAnalyticsService(repo, brokenCache{}, nil, WithClock(func() time.Time { return fixedNow }))

	report, err := svc.GetMovement(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Items, 4)

	assert.Error(t, svc.InvalidateCache(context.Background()))
}
