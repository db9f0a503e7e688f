package analytics

import (
	"fmt"
	"math"
	"sort"

	"github.com/andresuchdata/inventory-analytics/internal/domain"
)

const (
	DefaultAnomalyThreshold = 2.5

	// MinActiveDays is the number of days with outgoing activity an item
	// needs before its series is scanned for outliers.
	MinActiveDays = 5

	// MinStdDev below which a series is considered flat.
	MinStdDev = 0.1
)

// ValidateThreshold rejects non-positive or non-finite Z thresholds.
func ValidateThreshold(threshold float64) error {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) || threshold <= 0 {
		return domain.NewValidationError("threshold", "must be a positive number")
	}
	return nil
}

// DetectItemAnomalies flags the days of h whose outgoing quantity lies at
// least threshold standard deviations from the mean. The second return value
// is false when the item was skipped (too little activity or a flat series).
func DetectItemAnomalies(h domain.ItemHistory, threshold float64) (domain.ItemAnomalies, bool) {
	series := h.OutSeries()
	if activeDays(series) < MinActiveDays {
		return domain.ItemAnomalies{}, false
	}

	mean := Mean(series)
	std := StdDev(series)
	if std < MinStdDev {
		return domain.ItemAnomalies{}, false
	}

	result := domain.ItemAnomalies{
		ItemID:       h.ItemID,
		ItemName:     h.ItemName,
		Category:     h.Category,
		MeanDemand:   Round(mean, 2),
		StdDeviation: Round(std, 2),
		Anomalies:    []domain.AnomalyRecord{},
	}

	for i, b := range h.DailyBuckets {
		qty := series[i]
		if qty <= 0 {
			continue
		}
		z := ZScore(qty, mean, std)
		if math.Abs(z) < threshold {
			continue
		}

		kind := domain.AnomalyDrop
		if z > 0 {
			kind = domain.AnomalySurge
		}
		result.Anomalies = append(result.Anomalies, domain.AnomalyRecord{
			ItemID:       h.ItemID,
			ItemName:     h.ItemName,
			Date:         b.Date,
			Quantity:     b.QuantityOut,
			ExpectedMean: Round(mean, 2),
			ZScore:       Round(z, 2),
			Kind:         kind,
			Description:  describeAnomaly(kind, b.QuantityOut, mean),
		})
	}

	return result, true
}

// BuildAnomalyReport assembles per-item groups (only items with at least one
// flag) into a report whose flat list is sorted most recent first.
func BuildAnomalyReport(groups []domain.ItemAnomalies, threshold float64, windowDays int) domain.AnomalyReport {
	report := domain.AnomalyReport{
		Threshold:  threshold,
		WindowDays: windowDays,
		Items:      []domain.ItemAnomalies{},
		Anomalies:  []domain.AnomalyRecord{},
	}

	for _, g := range groups {
		if len(g.Anomalies) == 0 {
			continue
		}
		report.Items = append(report.Items, g)
		for _, a := range g.Anomalies {
			report.Anomalies = append(report.Anomalies, a)
			if a.Kind == domain.AnomalySurge {
				report.Summary.SurgeCount++
			} else {
				report.Summary.DropCount++
			}
		}
	}
	report.Summary.Total = len(report.Anomalies)

	// ISO dates sort lexically.
	sort.SliceStable(report.Anomalies, func(i, j int) bool {
		return report.Anomalies[i].Date > report.Anomalies[j].Date
	})

	return report
}

func describeAnomaly(kind domain.AnomalyKind, qty int, mean float64) string {
	if kind == domain.AnomalySurge {
		return fmt.Sprintf("Unusually high demand of %d units (normally around %s units)", qty, formatMean(mean))
	}
	return fmt.Sprintf("Unusually low demand of %d units (normally around %s units)", qty, formatMean(mean))
}

func formatMean(mean float64) string {
	return fmt.Sprintf("%g", Round(mean, 1))
}

func activeDays(series []float64) int {
	n := 0
	for _, x := range series {
		if x > 0 {
			n++
		}
	}
	return n
}
