package analytics

import (
	"math"
	"sort"

	"github.com/andresuchdata/inventory-analytics/internal/domain"
)

const (
	DefaultMinStockDays = 14

	// HighUrgencyDays is the stock cover at or below which a reorder is urgent.
	HighUrgencyDays = 7
)

// ValidateMinStockDays rejects a non-positive safety stock window.
func ValidateMinStockDays(minStockDays int) error {
	if minStockDays <= 0 {
		return domain.NewValidationError("min_stock_days", "must be a positive number")
	}
	return nil
}

// Recommend sizes a purchase for one forecast. It reports false for items
// without demand or with enough stock to cover forecast plus safety stock.
func Recommend(f Forecast, minStockDays int) (domain.ProcurementRecommendation, bool) {
	if f.AvgDailyDemand <= 0 {
		return domain.ProcurementRecommendation{}, false
	}

	safetyStock := f.AvgDailyDemand * float64(minStockDays)
	purchase := PurchaseQuantity(f.TotalDemand, safetyStock, f.History.CurrentStock)
	if purchase <= 0 {
		return domain.ProcurementRecommendation{}, false
	}

	return domain.ProcurementRecommendation{
		ItemID:              f.History.ItemID,
		ItemName:            f.History.ItemName,
		Category:            f.History.Category,
		CurrentStock:        f.History.CurrentStock,
		AvgDailyDemand:      Round(f.AvgDailyDemand, 2),
		Forecast30d:         Round(f.TotalDemand, 2),
		SafetyStock:         Round(safetyStock, 2),
		RecommendedPurchase: purchase,
		DaysRemaining:       int(math.Round(f.DaysRemaining)),
		Urgency:             UrgencyFor(f.DaysRemaining, minStockDays),
	}, true
}

// PurchaseQuantity is ceil(max(0, forecast + safety - stock)).
func PurchaseQuantity(forecastDemand, safetyStock float64, currentStock int) int {
	need := forecastDemand + safetyStock - float64(currentStock)
	if need <= 0 {
		return 0
	}
	return int(math.Ceil(need))
}

// UrgencyFor tiers a reorder by the remaining stock cover in days.
func UrgencyFor(daysRemaining float64, minStockDays int) domain.Urgency {
	switch {
	case daysRemaining <= HighUrgencyDays:
		return domain.UrgencyHigh
	case daysRemaining <= float64(minStockDays):
		return domain.UrgencyMedium
	default:
		return domain.UrgencyLow
	}
}

// BuildProcurementReport recommends purchases for forecasts and orders them
// by urgency, then by how soon stock runs out.
func BuildProcurementReport(forecasts []Forecast, minStockDays int) domain.ProcurementReport {
	type candidate struct {
		rec  domain.ProcurementRecommendation
		days float64
	}

	candidates := make([]candidate, 0, len(forecasts))
	for _, f := range forecasts {
		rec, ok := Recommend(f, minStockDays)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate{rec: rec, days: f.DaysRemaining})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ri, rj := candidates[i].rec.Urgency.Rank(), candidates[j].rec.Urgency.Rank()
		if ri != rj {
			return ri < rj
		}
		return candidates[i].days < candidates[j].days
	})

	report := domain.ProcurementReport{
		MinStockDays: minStockDays,
		Items:        make([]domain.ProcurementRecommendation, len(candidates)),
	}
	for i, c := range candidates {
		report.Items[i] = c.rec
	}
	return report
}
