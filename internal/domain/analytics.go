package domain

// ForecastPoint is the projected demand for one future date.
type ForecastPoint struct {
	Date     string  `json:"date"`
	Forecast float64 `json:"forecast"`
}

// ForecastResult is the display form of an item's demand forecast.
type ForecastResult struct {
	ItemID              int64           `json:"item_id"`
	ItemName            string          `json:"item_name"`
	Category            string          `json:"category"`
	CurrentStock        int             `json:"current_stock"`
	AvgDailyDemand      float64         `json:"avg_daily_demand"`
	StdDeviation        float64         `json:"std_deviation"`
	DaysRemaining       int             `json:"days_remaining"`
	HistoricalDaily     []DailyBucket   `json:"historical_data"`
	ForecastDaily       []ForecastPoint `json:"forecast_data"`
	TotalForecastDemand float64         `json:"total_forecast_demand"`
}

type ForecastReport struct {
	HorizonDays         int              `json:"horizon_days"`
	Items               []ForecastResult `json:"items"`
	TotalForecastDemand float64          `json:"total_forecast_demand"`
}

// AnomalyKind labels the direction of an outlier.
type AnomalyKind string

const (
	AnomalySurge AnomalyKind = "surge"
	AnomalyDrop  AnomalyKind = "drop"
)

// AnomalyRecord is a single statistically unusual day for an item.
type AnomalyRecord struct {
	ItemID       int64       `json:"item_id"`
	ItemName     string      `json:"item_name"`
	Date         string      `json:"date"`
	Quantity     int         `json:"quantity"`
	ExpectedMean float64     `json:"expected_mean"`
	ZScore       float64     `json:"z_score"`
	Kind         AnomalyKind `json:"type"`
	Description  string      `json:"description"`
}

// ItemAnomalies groups the flagged days of one item with its baseline.
type ItemAnomalies struct {
	ItemID       int64           `json:"item_id"`
	ItemName     string          `json:"item_name"`
	Category     string          `json:"category"`
	MeanDemand   float64         `json:"mean_demand"`
	StdDeviation float64         `json:"std_deviation"`
	Anomalies    []AnomalyRecord `json:"anomalies"`
}

type AnomalySummary struct {
	Total      int `json:"total"`
	SurgeCount int `json:"surge_count"`
	DropCount  int `json:"drop_count"`
}

type AnomalyReport struct {
	Threshold  float64         `json:"threshold"`
	WindowDays int             `json:"window_days"`
	Items      []ItemAnomalies `json:"items"`
	Anomalies  []AnomalyRecord `json:"anomalies"`
	Summary    AnomalySummary  `json:"summary"`
}

// Urgency ranks how soon a reorder is needed.
type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

// Rank orders urgencies from most to least urgent.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyHigh:
		return 0
	case UrgencyMedium:
		return 1
	default:
		return 2
	}
}

type ProcurementRecommendation struct {
	ItemID              int64   `json:"item_id"`
	ItemName            string  `json:"item_name"`
	Category            string  `json:"category"`
	CurrentStock        int     `json:"current_stock"`
	AvgDailyDemand      float64 `json:"avg_daily_demand"`
	Forecast30d         float64 `json:"forecast_30_days"`
	SafetyStock         float64 `json:"safety_stock"`
	RecommendedPurchase int     `json:"recommended_purchase"`
	DaysRemaining       int     `json:"days_remaining"`
	Urgency             Urgency `json:"urgency"`
}

type ProcurementReport struct {
	MinStockDays int                         `json:"min_stock_days"`
	Items        []ProcurementRecommendation `json:"items"`
}

// MovementClassification is the velocity tier of an item.
type MovementClassification string

const (
	FastMoving   MovementClassification = "Fast Moving"
	MediumMoving MovementClassification = "Medium Moving"
	SlowMoving   MovementClassification = "Slow Moving"
	DeadStock    MovementClassification = "Dead Stock"
)

type MovementClass struct {
	ItemID                   int64                  `json:"id"`
	ItemName                 string                 `json:"name"`
	Category                 string                 `json:"category"`
	CurrentStock             int                    `json:"current_stock"`
	TransactionFrequency     int                    `json:"transaction_frequency"`
	TransactionVolume        int                    `json:"transaction_volume"`
	DaysSinceLastTransaction int                    `json:"days_since_last_transaction"`
	Classification           MovementClassification `json:"classification"`
}

type MovementSummary struct {
	FastMovingCount      int `json:"fast_moving_count"`
	MediumMovingCount    int `json:"medium_moving_count"`
	SlowMovingCount      int `json:"slow_moving_count"`
	DeadStockCount       int `json:"dead_stock_count"`
	TotalItems           int `json:"total_items"`
	FastMovingPercentage int `json:"fast_moving_percentage"`
}

type MovementReport struct {
	WindowDays int             `json:"window_days"`
	Items      []MovementClass `json:"items"`
	Summary    MovementSummary `json:"summary"`
}

// DashboardSummary holds the headline numbers shown above the analytics panels.
type DashboardSummary struct {
	TotalForecastedDemand float64 `json:"total_forecasted_demand"`
	ForecastTrend         int     `json:"forecast_trend"`
	ItemsToReorder        int     `json:"items_to_reorder"`
	UrgentItems           int     `json:"urgent_items"`
	AnomalyCount          int     `json:"anomaly_count"`
	AnomalyPeriodDays     int     `json:"anomaly_period_days"`
	FastMovingCount       int     `json:"fast_moving_count"`
	FastMovingPercentage  int     `json:"fast_moving_percentage"`
}

type Dashboard struct {
	GeneratedFor string            `json:"generated_for"`
	Summary      DashboardSummary  `json:"summary"`
	Forecasts    ForecastReport    `json:"forecasts"`
	Anomalies    AnomalyReport     `json:"anomalies"`
	Procurement  ProcurementReport `json:"procurement"`
	Movement     MovementReport    `json:"movement"`
}
