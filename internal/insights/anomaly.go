package insights

import (
	"fmt"
	"math"
	"sort"

	"github.com/fincast/fincast/internal/model"
)

// Category-level z-score thresholds.
const (
	minCategorySample = 5

	zScoreFlag   = 2.0
	zScoreMedium = 3.0
	zScoreHigh   = 4.0
)

// Pattern-level thresholds. These are deliberately distinct from the
// category-level tiers; do not unify them.
const (
	recentWindow = 3

	amountDeviationFlag   = 0.2
	amountDeviationMedium = 0.5
	amountDeviationHigh   = 1.0

	timingConfidenceCutoff = 0.8
	timeDeviationFlag      = 0.2
	timeDeviationMedium    = 0.4
	timeDeviationHigh      = 0.6
)

// Expected period in days per frequency, for the timing check.
const (
	monthlyPeriodDays = 30.0
	weeklyPeriodDays  = 7.0
	yearlyPeriodDays  = 365.0
)

// DetectAnomalies flags transactions that deviate abnormally from their
// category's amount distribution or from a recurring pattern's amount/timing
// norm. The two sources are independent and concatenated; a transaction may
// appear more than once with different reasons.
func DetectAnomalies(txns []model.Transaction, patterns []RecurringPattern) []Anomaly {
	anomalies := detectCategoryOutliers(txns)
	anomalies = append(anomalies, detectPatternOutliers(patterns)...)
	return anomalies
}

// detectCategoryOutliers flags amount outliers within each category using
// z-scores over the whole category population.
func detectCategoryOutliers(txns []model.Transaction) []Anomaly {
	byCategory := make(map[string][]model.Transaction)
	for _, t := range txns {
		key := categoryOrSentinel(t.CategoryID)
		byCategory[key] = append(byCategory[key], t)
	}

	// Sorted keys keep output deterministic across calls.
	keys := make([]string, 0, len(byCategory))
	for key := range byCategory {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var anomalies []Anomaly
	for _, key := range keys {
		group := byCategory[key]
		if len(group) < minCategorySample {
			continue
		}

		amounts := make([]float64, len(group))
		for i, t := range group {
			amounts[i] = t.Amount
		}
		m := mean(amounts)
		sd := stdDev(amounts)
		// A constant series is by definition not anomalous.
		if sd == 0 {
			continue
		}

		for _, t := range group {
			score := math.Abs(t.Amount-m) / sd
			if score <= zScoreFlag {
				continue
			}
			anomalies = append(anomalies, Anomaly{
				Transaction: t,
				Reason: fmt.Sprintf("amount %.2f is %.1f standard deviations from the category average of %.2f",
					t.Amount, score, m),
				Severity:        zScoreSeverity(score),
				AmountDeviation: score,
			})
		}
	}
	return anomalies
}

// detectPatternOutliers inspects the most recent transactions of each
// recurring pattern for amount drift and schedule slips.
func detectPatternOutliers(patterns []RecurringPattern) []Anomaly {
	var anomalies []Anomaly
	for _, p := range patterns {
		recent := recentTransactions(p.Transactions, recentWindow)
		if len(recent) == 0 {
			continue
		}

		// Amount check: the single most recent occurrence against the
		// pattern's average. A zero average cannot serve as a
		// relative-deviation denominator; skip rather than divide.
		latest := recent[0]
		if p.AverageAmount != 0 {
			dev := math.Abs(latest.Amount-p.AverageAmount) / math.Abs(p.AverageAmount)
			if dev > amountDeviationFlag {
				anomalies = append(anomalies, Anomaly{
					Transaction: latest,
					Reason: fmt.Sprintf("amount %.2f deviates %.0f%% from the usual %.2f for %s",
						latest.Amount, dev*100, p.AverageAmount, p.Payee),
					Severity:        amountSeverity(dev),
					AmountDeviation: dev,
				})
			}
		}

		// Timing check: only for high-confidence patterns with at least two
		// recent occurrences to measure a gap from.
		if p.ConfidenceScore > timingConfidenceCutoff && len(recent) >= 2 {
			actual := daysBetween(recent[1].Date, recent[0].Date)
			expected := expectedPeriodDays(p.Frequency)
			dev := math.Abs(actual-expected) / expected
			if dev > timeDeviationFlag {
				anomalies = append(anomalies, Anomaly{
					Transaction: latest,
					Reason: fmt.Sprintf("arrived %.0f days after the previous occurrence, expected about %.0f for %s",
						actual, expected, p.Payee),
					Severity:      timeSeverity(dev),
					TimeDeviation: dev,
				})
			}
		}
	}
	return anomalies
}

// recentTransactions returns up to n transactions ordered most recent first.
// Pattern members are already sorted ascending by date.
func recentTransactions(txns []model.Transaction, n int) []model.Transaction {
	out := make([]model.Transaction, 0, n)
	for i := len(txns) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, txns[i])
	}
	return out
}

func expectedPeriodDays(freq Frequency) float64 {
	switch freq {
	case FrequencyWeekly:
		return weeklyPeriodDays
	case FrequencyYearly:
		return yearlyPeriodDays
	default:
		return monthlyPeriodDays
	}
}

func zScoreSeverity(score float64) Severity {
	switch {
	case score > zScoreHigh:
		return SeverityHigh
	case score > zScoreMedium:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func amountSeverity(dev float64) Severity {
	switch {
	case dev > amountDeviationHigh:
		return SeverityHigh
	case dev > amountDeviationMedium:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func timeSeverity(dev float64) Severity {
	switch {
	case dev > timeDeviationHigh:
		return SeverityHigh
	case dev > timeDeviationMedium:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
