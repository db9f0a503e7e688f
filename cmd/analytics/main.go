// cmd/analytics/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/andresuchdata/inventory-analytics/internal/cache"
	"github.com/andresuchdata/inventory-analytics/internal/config"
	"github.com/andresuchdata/inventory-analytics/internal/repository/postgres"
	"github.com/andresuchdata/inventory-analytics/internal/service"
	"github.com/andresuchdata/inventory-analytics/pkg/logger"
	"github.com/urfave/cli/v2"
)

type ctxKey string

const serviceKey ctxKey = "analytics-service"

type closer func() error

func main() {
	var shutdown []closer

	app := &cli.App{
		Name:  "analytics",
		Usage: "Run inventory analytics against the ledger and print JSON",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "no-cache", Usage: "Bypass the shared analytics cache"},
			&cli.BoolFlag{Name: "compact", Usage: "Print single-line JSON"},
		},
		Before: func(c *cli.Context) error {
			logger.Configure(os.Stderr, true)
			logger.SetLevel(config.Load().LogLevel)
			return nil
		},
		After: func(c *cli.Context) error {
			for _, fn := range shutdown {
				if err := fn(); err != nil {
					logger.Log.Warn().Err(err).Msg("shutdown")
				}
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "forecasts",
				Usage:  "Daily demand forecast and days of stock remaining per item",
				Before: openService(&shutdown),
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "horizon", Usage: "Forecast horizon in days (default from ANALYTICS_FORECAST_HORIZON_DAYS)"},
				},
				Action: func(c *cli.Context) error {
					svc := serviceFrom(c)
					params := svc.DefaultForecastParams()
					if c.IsSet("horizon") {
						params.HorizonDays = c.Int("horizon")
					}
					report, err := svc.GetForecasts(c.Context, params)
					return printResult(c, report, err)
				},
			},
			{
				Name:   "anomalies",
				Usage:  "Days of unusual outgoing demand",
				Before: openService(&shutdown),
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "threshold", Usage: "Z-score threshold (default from ANALYTICS_ANOMALY_THRESHOLD)"},
				},
				Action: func(c *cli.Context) error {
					svc := serviceFrom(c)
					params := svc.DefaultAnomalyParams()
					if c.IsSet("threshold") {
						params.Threshold = c.Float64("threshold")
					}
					report, err := svc.GetAnomalies(c.Context, params)
					return printResult(c, report, err)
				},
			},
			{
				Name:   "procurement",
				Usage:  "Purchase recommendations ranked by urgency",
				Before: openService(&shutdown),
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "min-stock-days", Usage: "Days of cover to keep (default from ANALYTICS_MIN_STOCK_DAYS)"},
				},
				Action: func(c *cli.Context) error {
					svc := serviceFrom(c)
					params := svc.DefaultProcurementParams()
					if c.IsSet("min-stock-days") {
						params.MinStockDays = c.Int("min-stock-days")
					}
					report, err := svc.GetProcurement(c.Context, params)
					return printResult(c, report, err)
				},
			},
			{
				Name:   "movement",
				Usage:  "Fast, slow and dead stock classification",
				Before: openService(&shutdown),
				Action: func(c *cli.Context) error {
					report, err := serviceFrom(c).GetMovement(c.Context)
					return printResult(c, report, err)
				},
			},
			{
				Name:   "dashboard",
				Usage:  "Combined summary of all reports",
				Before: openService(&shutdown),
				Action: func(c *cli.Context) error {
					dashboard, err := serviceFrom(c).GetDashboard(c.Context)
					return printResult(c, dashboard, err)
				},
			},
			{
				Name:  "clear-cache",
				Usage: "Drop every cached analytics result",
				Action: func(c *cli.Context) error {
					analyticsCache, err := cacheForClear(config.Load().Cache, c.Bool("no-cache"))
					if err != nil {
						return err
					}
					if err := analyticsCache.InvalidateAll(c.Context); err != nil {
						return err
					}
					logger.Log.Info().Msg("analytics cache cleared")
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("analytics failed")
	}
}

// openService connects to the ledger and cache for the commands that compute
// reports. Connections are registered on shutdown for the app's After hook.
func openService(shutdown *[]closer) cli.BeforeFunc {
	return func(c *cli.Context) error {
		cfg := config.Load()

		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		*shutdown = append(*shutdown, db.Close)

		analyticsCache := cache.NewNoopAnalyticsCache()
		if !c.Bool("no-cache") {
			if redisCache, err := cache.NewAnalyticsCache(cfg.Cache); err != nil {
				logger.Log.Warn().Err(err).Msg("analytics cache unavailable, continuing without cache")
			} else {
				analyticsCache = redisCache
			}
		}

		svc := service.NewAnalyticsService(postgres.NewLedgerRepository(db), analyticsCache, cfg)
		c.Context = context.WithValue(c.Context, serviceKey, svc)
		return nil
	}
}

// cacheForClear returns the shared cache, refusing setups where clearing
// would silently do nothing.
func cacheForClear(cfg config.CacheConfig, noCache bool) (cache.AnalyticsCache, error) {
	if noCache {
		return nil, fmt.Errorf("clear-cache cannot be combined with --no-cache")
	}
	if !cfg.Enabled {
		return nil, fmt.Errorf("analytics cache is disabled (CACHE_ENABLED=false)")
	}
	analyticsCache, err := cache.NewAnalyticsCache(cfg)
	if err != nil {
		return nil, fmt.Errorf("analytics cache unavailable: %w", err)
	}
	return analyticsCache, nil
}

func serviceFrom(c *cli.Context) *service.AnalyticsService {
	return c.Context.Value(serviceKey).(*service.AnalyticsService)
}

func printResult(c *cli.Context, v any, err error) error {
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, v, !c.Bool("compact"))
}

func writeJSON(w io.Writer, v any, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
