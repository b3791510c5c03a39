package insights

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/fincast/fincast/internal/model"
)

// Pattern detection thresholds. These are product decisions, not statistics to
// be re-derived: changing them changes which subscriptions users see.
const (
	// minPatternOccurrences is the smallest group that can establish a cadence.
	minPatternOccurrences = 2
	// regularGapStdDevDays separates regular from irregular cadences.
	regularGapStdDevDays = 3.0
	// patternEmitThreshold is the minimum confidence for a pattern to surface.
	patternEmitThreshold = 0.6
)

// Frequency band boundaries (mean gap in days) and the divisor that converts
// gap deviation into a confidence penalty within each band.
const (
	monthlyGapMin, monthlyGapMax = 25.0, 35.0
	weeklyGapMin, weeklyGapMax   = 5.0, 9.0
	yearlyGapMin, yearlyGapMax   = 350.0, 380.0

	monthlyPenaltyDivisor = 30.0
	weeklyPenaltyDivisor  = 7.0
	yearlyPenaltyDivisor  = 365.0

	bandBaseConfidence      = 0.9
	irregularBaseConfidence = 0.5
)

// DetectRecurringPatterns groups transactions by payee (description fallback)
// and category, measures the regularity of the gaps between occurrences, and
// returns every group regular enough to surface as a recurring pattern.
//
// The function does not filter by transaction type; callers wanting
// expense-only detection must pre-filter. Output is sorted by confidence
// descending (payee, then category, as tie-breakers) so repeated calls over
// the same input produce identical results.
func DetectRecurringPatterns(txns []model.Transaction) []RecurringPattern {
	type groupKey struct {
		merchant   string
		categoryID string
	}
	groups := make(map[groupKey][]model.Transaction)
	for _, t := range txns {
		key := groupKey{
			merchant:   normalizeMerchant(merchantName(t)),
			categoryID: categoryOrSentinel(t.CategoryID),
		}
		groups[key] = append(groups[key], t)
	}

	var patterns []RecurringPattern
	for key, group := range groups {
		if len(group) < minPatternOccurrences {
			continue
		}

		// Stable sort keeps the original relative order for equal dates.
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Date.Before(group[j].Date)
		})

		var total float64
		for _, t := range group {
			total += t.Amount
		}
		avgAmount := total / float64(len(group))

		gaps := make([]float64, 0, len(group)-1)
		for i := 1; i < len(group); i++ {
			gaps = append(gaps, daysBetween(group[i-1].Date, group[i].Date))
		}
		gapMean := mean(gaps)
		gapStdDev := stdDev(gaps)

		// An erratic cadence never becomes a pattern; its confidence stays 0.
		if gapStdDev >= regularGapStdDevDays {
			continue
		}

		freq, confidence := classifyFrequency(gapMean, gapStdDev)
		if confidence <= patternEmitThreshold {
			continue
		}

		last := group[len(group)-1].Date
		next := predictNextDate(last, freq, gapMean)

		patterns = append(patterns, RecurringPattern{
			Payee:               merchantName(group[0]),
			CategoryID:          key.categoryID,
			AverageAmount:       avgAmount,
			Frequency:           freq,
			ConfidenceScore:     confidence,
			LastTransactionDate: last,
			NextPredictedDate:   &next,
			Transactions:        group,
		})
	}

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].ConfidenceScore != patterns[j].ConfidenceScore {
			return patterns[i].ConfidenceScore > patterns[j].ConfidenceScore
		}
		if patterns[i].Payee != patterns[j].Payee {
			return patterns[i].Payee < patterns[j].Payee
		}
		return patterns[i].CategoryID < patterns[j].CategoryID
	})

	return patterns
}

// classifyFrequency maps a mean inter-transaction gap onto a frequency band.
// Higher gap deviation lowers confidence within the band.
func classifyFrequency(gapMean, gapStdDev float64) (Frequency, float64) {
	switch {
	case gapMean >= monthlyGapMin && gapMean <= monthlyGapMax:
		return FrequencyMonthly, bandBaseConfidence - gapStdDev/monthlyPenaltyDivisor
	case gapMean >= weeklyGapMin && gapMean <= weeklyGapMax:
		return FrequencyWeekly, bandBaseConfidence - gapStdDev/weeklyPenaltyDivisor
	case gapMean >= yearlyGapMin && gapMean <= yearlyGapMax:
		return FrequencyYearly, bandBaseConfidence - gapStdDev/yearlyPenaltyDivisor
	default:
		return FrequencyIrregular, irregularBaseConfidence - gapStdDev/monthlyPenaltyDivisor
	}
}

// predictNextDate advances the last occurrence by one period. Irregular
// patterns step by their rounded mean gap.
func predictNextDate(last time.Time, freq Frequency, gapMean float64) time.Time {
	switch freq {
	case FrequencyMonthly:
		return last.AddDate(0, 1, 0)
	case FrequencyWeekly:
		return last.AddDate(0, 0, 7)
	case FrequencyYearly:
		return last.AddDate(1, 0, 0)
	default:
		return last.AddDate(0, 0, int(math.Round(gapMean)))
	}
}

// merchantName is the identity key for recurrence grouping: the payee, or the
// free-text description when no distinct payee exists. Two merchants with
// slightly different description text will not group — a known precision
// limitation kept for compatibility.
func merchantName(t model.Transaction) string {
	if t.Payee != "" {
		return t.Payee
	}
	return t.Description
}

func normalizeMerchant(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// daysBetween returns the gap between two timestamps in whole days.
func daysBetween(a, b time.Time) float64 {
	return math.Round(b.Sub(a).Hours() / 24)
}
