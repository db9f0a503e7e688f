package analytics

import (
	"math"
	"time"

	"github.com/andresuchdata/inventory-analytics/internal/domain"
)

const DefaultMovementWindowDays = 90

// Movement thresholds, checked in order.
const (
	fastMinFrequency   = 15
	fastMinVolume      = 100
	mediumMinFrequency = 5
	mediumMinVolume    = 30
)

// MovementMetrics summarizes an item's outgoing activity over a window.
type MovementMetrics struct {
	Frequency          int
	Volume             int
	DaysSinceLastOut   int
	HasOutgoingHistory bool
}

// ComputeMovementMetrics derives frequency, volume and recency from the
// outgoing side of h. A nil history means no activity in the window.
func ComputeMovementMetrics(h *domain.ItemHistory, today time.Time, windowDays int) MovementMetrics {
	metrics := MovementMetrics{DaysSinceLastOut: windowDays}
	if h == nil {
		return metrics
	}

	lastOut := ""
	for _, b := range h.DailyBuckets {
		if b.QuantityOut <= 0 {
			continue
		}
		metrics.Frequency++
		metrics.Volume += b.QuantityOut
		lastOut = b.Date
	}
	if lastOut == "" {
		return metrics
	}

	last, err := time.Parse(dateLayout, lastOut)
	if err != nil {
		return metrics
	}
	metrics.HasOutgoingHistory = true
	metrics.DaysSinceLastOut = int(math.Round(DateOnly(today).Sub(last).Hours() / 24))
	return metrics
}

// Classify maps frequency and volume onto a movement tier.
func Classify(frequency, volume int) domain.MovementClassification {
	switch {
	case frequency >= fastMinFrequency && volume >= fastMinVolume:
		return domain.FastMoving
	case frequency >= mediumMinFrequency && volume >= mediumMinVolume:
		return domain.MediumMoving
	case frequency > 0 || volume > 0:
		return domain.SlowMoving
	default:
		return domain.DeadStock
	}
}

// ClassifyItem builds the movement record of one item.
func ClassifyItem(item domain.Item, h *domain.ItemHistory, today time.Time, windowDays int) domain.MovementClass {
	m := ComputeMovementMetrics(h, today, windowDays)
	return domain.MovementClass{
		ItemID:                   item.ID,
		ItemName:                 item.Name,
		Category:                 categoryOrDefault(item.Category),
		CurrentStock:             item.CurrentStock,
		TransactionFrequency:     m.Frequency,
		TransactionVolume:        m.Volume,
		DaysSinceLastTransaction: m.DaysSinceLastOut,
		Classification:           Classify(m.Frequency, m.Volume),
	}
}

// BuildMovementReport counts classes over all records.
func BuildMovementReport(records []domain.MovementClass, windowDays int) domain.MovementReport {
	report := domain.MovementReport{
		WindowDays: windowDays,
		Items:      records,
	}
	if report.Items == nil {
		report.Items = []domain.MovementClass{}
	}

	for _, r := range report.Items {
		switch r.Classification {
		case domain.FastMoving:
			report.Summary.FastMovingCount++
		case domain.MediumMoving:
			report.Summary.MediumMovingCount++
		case domain.SlowMoving:
			report.Summary.SlowMovingCount++
		default:
			report.Summary.DeadStockCount++
		}
	}
	report.Summary.TotalItems = len(report.Items)
	if report.Summary.TotalItems > 0 {
		pct := float64(report.Summary.FastMovingCount) / float64(report.Summary.TotalItems) * 100
		report.Summary.FastMovingPercentage = int(math.Round(pct))
	}
	return report
}
