package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/andresuchdata/inventory-analytics/internal/analytics"
	"github.com/andresuchdata/inventory-analytics/internal/cache"
	"github.com/andresuchdata/inventory-analytics/internal/config"
	"github.com/andresuchdata/inventory-analytics/internal/domain"
	"github.com/andresuchdata/inventory-analytics/internal/observability"
	"github.com/andresuchdata/inventory-analytics/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// Operation names, used for cache keys, metrics and logs.
const (
	OpForecasts   = "forecasts"
	OpAnomalies   = "anomalies"
	OpProcurement = "procurement"
	OpMovement    = "movement"
	OpDashboard   = "dashboard"
)

const dateLayout = "2006-01-02"

const (
	defaultForecastTTL   = 6 * time.Hour
	defaultMovementTTL   = 12 * time.Hour
	defaultLedgerTimeout = 10 * time.Second
)

type AnalyticsService struct {
	reader   *analytics.LedgerReader
	engine   *analytics.Engine
	cache    cache.AnalyticsCache
	metrics  *observability.Metrics
	validate *validator.Validate
	cfg      config.AnalyticsConfig

	forecastTTL time.Duration
	movementTTL time.Duration
	now         func() time.Time
}

type Option func(*AnalyticsService)

// WithClock replaces the wall clock used to decide "today".
func WithClock(now func() time.Time) Option {
	return func(s *AnalyticsService) {
		s.now = now
	}
}

func WithMetrics(m *observability.Metrics) Option {
	return func(s *AnalyticsService) {
		s.metrics = m
	}
}

func NewAnalyticsService(repo repository.LedgerRepository, cacheImpl cache.AnalyticsCache, cfg *config.Config, opts ...Option) *AnalyticsService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopAnalyticsCache()
	}

	var (
		analyticsCfg config.AnalyticsConfig
		cacheCfg     config.CacheConfig
	)
	if cfg != nil {
		analyticsCfg = cfg.Analytics
		cacheCfg = cfg.Cache
	}
	analyticsCfg = withAnalyticsDefaults(analyticsCfg)

	s := &AnalyticsService{
		reader:      analytics.NewLedgerReader(repo),
		engine:      analytics.NewEngine(analyticsCfg.Workers),
		cache:       cacheImpl,
		validate:    newValidator(),
		cfg:         analyticsCfg,
		forecastTTL: cacheCfg.ForecastTTL(),
		movementTTL: cacheCfg.MovementTTL(),
		now:         time.Now,
	}
	if s.forecastTTL <= 0 {
		s.forecastTTL = defaultForecastTTL
	}
	if s.movementTTL <= 0 {
		s.movementTTL = defaultMovementTTL
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

func withAnalyticsDefaults(c config.AnalyticsConfig) config.AnalyticsConfig {
	if c.HistoryDays <= 0 {
		c.HistoryDays = analytics.DefaultMovementWindowDays
	}
	if c.ForecastHorizonDays <= 0 || c.ForecastHorizonDays > analytics.MaxForecastHorizonDays {
		c.ForecastHorizonDays = analytics.DefaultForecastHorizonDays
	}
	if c.SmoothingAlpha <= 0 || c.SmoothingAlpha > 1 {
		c.SmoothingAlpha = analytics.DefaultSmoothingAlpha
	}
	if c.AnomalyThreshold <= 0 {
		c.AnomalyThreshold = analytics.DefaultAnomalyThreshold
	}
	if c.MinStockDays <= 0 {
		c.MinStockDays = analytics.DefaultMinStockDays
	}
	if c.MovementWindowDays <= 0 {
		c.MovementWindowDays = analytics.DefaultMovementWindowDays
	}
	if c.LedgerTimeoutSeconds <= 0 {
		c.LedgerTimeoutSeconds = int(defaultLedgerTimeout / time.Second)
	}
	return c
}

func (s *AnalyticsService) DefaultForecastParams() ForecastParams {
	return ForecastParams{HorizonDays: s.cfg.ForecastHorizonDays}
}

func (s *AnalyticsService) DefaultAnomalyParams() AnomalyParams {
	return AnomalyParams{Threshold: s.cfg.AnomalyThreshold}
}

func (s *AnalyticsService) DefaultProcurementParams() ProcurementParams {
	return ProcurementParams{MinStockDays: s.cfg.MinStockDays}
}

func (s *AnalyticsService) today() time.Time {
	return analytics.DateOnly(s.now())
}

// GetForecasts projects demand for every item with ledger activity in the
// history window.
func (s *AnalyticsService) GetForecasts(ctx context.Context, params ForecastParams) (domain.ForecastReport, error) {
	if err := validateParams(s.validate, params); err != nil {
		return domain.ForecastReport{}, err
	}

	today := s.today()
	key := cache.BuildKey(OpForecasts, map[string]string{
		"today":                 today.Format(dateLayout),
		"history_days":          strconv.Itoa(s.cfg.HistoryDays),
		"forecast_horizon_days": strconv.Itoa(params.HorizonDays),
		"alpha":                 strconv.FormatFloat(s.cfg.SmoothingAlpha, 'f', -1, 64),
	})

	return cached(ctx, s, OpForecasts, key, s.forecastTTL, func(ctx context.Context) (domain.ForecastReport, error) {
		histories, err := s.loadHistory(ctx, today, s.cfg.HistoryDays)
		if err != nil {
			return domain.ForecastReport{}, err
		}
		report, _, err := s.engine.ForecastReport(ctx, histories, params.HorizonDays, s.cfg.SmoothingAlpha, today)
		return report, err
	})
}

// GetAnomalies flags statistically unusual days of outgoing demand.
func (s *AnalyticsService) GetAnomalies(ctx context.Context, params AnomalyParams) (domain.AnomalyReport, error) {
	if err := validateParams(s.validate, params); err != nil {
		return domain.AnomalyReport{}, err
	}
	if err := analytics.ValidateThreshold(params.Threshold); err != nil {
		return domain.AnomalyReport{}, err
	}

	today := s.today()
	key := cache.BuildKey(OpAnomalies, map[string]string{
		"today":        today.Format(dateLayout),
		"history_days": strconv.Itoa(s.cfg.HistoryDays),
		"threshold":    strconv.FormatFloat(params.Threshold, 'f', -1, 64),
	})

	return cached(ctx, s, OpAnomalies, key, s.forecastTTL, func(ctx context.Context) (domain.AnomalyReport, error) {
		histories, err := s.loadHistory(ctx, today, s.cfg.HistoryDays)
		if err != nil {
			return domain.AnomalyReport{}, err
		}
		return s.engine.Anomalies(ctx, histories, params.Threshold, s.cfg.HistoryDays)
	})
}

// GetProcurement recommends purchases sized from fresh forecasts.
func (s *AnalyticsService) GetProcurement(ctx context.Context, params ProcurementParams) (domain.ProcurementReport, error) {
	if err := validateParams(s.validate, params); err != nil {
		return domain.ProcurementReport{}, err
	}

	today := s.today()
	key := cache.BuildKey(OpProcurement, map[string]string{
		"today":                 today.Format(dateLayout),
		"history_days":          strconv.Itoa(s.cfg.HistoryDays),
		"forecast_horizon_days": strconv.Itoa(s.cfg.ForecastHorizonDays),
		"alpha":                 strconv.FormatFloat(s.cfg.SmoothingAlpha, 'f', -1, 64),
		"min_stock_days":        strconv.Itoa(params.MinStockDays),
	})

	return cached(ctx, s, OpProcurement, key, s.forecastTTL, func(ctx context.Context) (domain.ProcurementReport, error) {
		histories, err := s.loadHistory(ctx, today, s.cfg.HistoryDays)
		if err != nil {
			return domain.ProcurementReport{}, err
		}
		return s.engine.Procurement(ctx, histories, params.MinStockDays, s.cfg.ForecastHorizonDays, s.cfg.SmoothingAlpha, today)
	})
}

// GetMovement classifies every item in the store by velocity.
func (s *AnalyticsService) GetMovement(ctx context.Context) (domain.MovementReport, error) {
	today := s.today()
	key := cache.BuildKey(OpMovement, map[string]string{
		"today":       today.Format(dateLayout),
		"window_days": strconv.Itoa(s.cfg.MovementWindowDays),
	})

	return cached(ctx, s, OpMovement, key, s.movementTTL, func(ctx context.Context) (domain.MovementReport, error) {
		snap, err := s.loadSnapshot(ctx, today, s.cfg.MovementWindowDays)
		if err != nil {
			return domain.MovementReport{}, err
		}
		return s.engine.Movement(ctx, snap.Items, snap.Histories, today, s.cfg.MovementWindowDays)
	})
}

// GetDashboard composes all reports from a single ledger snapshot using the
// configured defaults.
func (s *AnalyticsService) GetDashboard(ctx context.Context) (*domain.Dashboard, error) {
	today := s.today()
	key := cache.BuildKey(OpDashboard, map[string]string{
		"today":                 today.Format(dateLayout),
		"history_days":          strconv.Itoa(s.cfg.HistoryDays),
		"forecast_horizon_days": strconv.Itoa(s.cfg.ForecastHorizonDays),
		"alpha":                 strconv.FormatFloat(s.cfg.SmoothingAlpha, 'f', -1, 64),
		"threshold":             strconv.FormatFloat(s.cfg.AnomalyThreshold, 'f', -1, 64),
		"min_stock_days":        strconv.Itoa(s.cfg.MinStockDays),
		"window_days":           strconv.Itoa(s.cfg.MovementWindowDays),
	})

	return cached(ctx, s, OpDashboard, key, s.forecastTTL, func(ctx context.Context) (*domain.Dashboard, error) {
		return s.buildDashboard(ctx, today)
	})
}

func (s *AnalyticsService) buildDashboard(ctx context.Context, today time.Time) (*domain.Dashboard, error) {
	window := s.cfg.HistoryDays
	if s.cfg.MovementWindowDays > window {
		window = s.cfg.MovementWindowDays
	}

	snap, err := s.loadSnapshot(ctx, today, window)
	if err != nil {
		return nil, err
	}
	histories := analytics.TrimHistories(snap.Histories, s.cfg.HistoryDays)

	forecasts, forecastModels, err := s.engine.ForecastReport(ctx, histories, s.cfg.ForecastHorizonDays, s.cfg.SmoothingAlpha, today)
	if err != nil {
		return nil, err
	}
	anomalies, err := s.engine.Anomalies(ctx, histories, s.cfg.AnomalyThreshold, s.cfg.HistoryDays)
	if err != nil {
		return nil, err
	}
	if err := analytics.ValidateMinStockDays(s.cfg.MinStockDays); err != nil {
		return nil, err
	}
	procurement := analytics.BuildProcurementReport(forecastModels, s.cfg.MinStockDays)

	movement, err := s.engine.Movement(ctx, snap.Items, analytics.TrimHistories(snap.Histories, s.cfg.MovementWindowDays), today, s.cfg.MovementWindowDays)
	if err != nil {
		return nil, err
	}

	urgent := 0
	for _, rec := range procurement.Items {
		if rec.Urgency == domain.UrgencyHigh {
			urgent++
		}
	}

	return &domain.Dashboard{
		GeneratedFor: today.Format(dateLayout),
		Summary: domain.DashboardSummary{
			TotalForecastedDemand: forecasts.TotalForecastDemand,
			ForecastTrend:         s.engine.Trend(histories),
			ItemsToReorder:        len(procurement.Items),
			UrgentItems:           urgent,
			AnomalyCount:          anomalies.Summary.Total,
			AnomalyPeriodDays:     s.cfg.HistoryDays,
			FastMovingCount:       movement.Summary.FastMovingCount,
			FastMovingPercentage:  movement.Summary.FastMovingPercentage,
		},
		Forecasts:   forecasts,
		Anomalies:   anomalies,
		Procurement: procurement,
		Movement:    movement,
	}, nil
}

// InvalidateCache drops every cached analytics result.
func (s *AnalyticsService) InvalidateCache(ctx context.Context) error {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Error().Err(err).Msg("analytics: cache invalidation failed")
		return err
	}
	log.Info().Msg("analytics: cache cleared")
	return nil
}

func (s *AnalyticsService) loadHistory(ctx context.Context, today time.Time, windowDays int) ([]domain.ItemHistory, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.LedgerTimeout())
	defer cancel()
	return s.reader.LoadHistory(ctx, today, windowDays)
}

func (s *AnalyticsService) loadSnapshot(ctx context.Context, today time.Time, windowDays int) (*analytics.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.LedgerTimeout())
	defer cancel()
	return s.reader.LoadSnapshot(ctx, today, windowDays)
}

// cached serves key from the cache or computes, stores and returns it.
// Cache failures are logged and otherwise ignored.
func cached[T any](ctx context.Context, s *AnalyticsService, op, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	var result T
	hit, err := s.cache.Get(ctx, key, &result)
	if err != nil {
		log.Warn().Err(err).Str("operation", op).Msg("analytics: cache get failed")
	}
	s.metrics.ObserveCacheLookup(op, hit && err == nil)
	if hit && err == nil {
		return result, nil
	}

	start := time.Now()
	result, err = compute(ctx)
	s.metrics.ObserveComputation(op, err, time.Since(start))
	if err != nil {
		logComputeError(op, err)
		var zero T
		return zero, err
	}

	if err := s.cache.Set(ctx, key, result, ttl); err != nil {
		log.Warn().Err(err).Str("operation", op).Msg("analytics: cache set failed")
	}
	return result, nil
}

func logComputeError(op string, err error) {
	if domain.IsValidation(err) {
		return
	}
	event := log.Error().Err(err).Str("operation", op)
	var dae *domain.DataAccessError
	if errors.As(err, &dae) {
		event = event.Str("stage", dae.Stage).Bool("retryable", dae.Retryable())
		if dae.ItemID != 0 {
			event = event.Int64("item_id", dae.ItemID)
		}
	}
	event.Msg("analytics: computation failed")
}
