package insights

import (
	"sort"
	"time"

	"github.com/fincast/fincast/internal/model"
)

// Monthly forecast confidence weights. The four weights sum to 1 and are
// product decisions; keep them as-is for behavioral parity.
const (
	historyWeight   = 0.3
	stabilityWeight = 0.2
	patternWeight   = 0.3
	distanceWeight  = 0.2

	distanceDecayPerMonth = 0.1
	fullHistoryMonths     = 12.0

	// contributionConfidenceCutoff gates which patterns feed the forecast.
	contributionConfidenceCutoff = 0.7

	monthlyForecastFloor   = 0.3
	monthlyForecastCeiling = 0.95
)

// Category forecast parameters.
const (
	minCategoryTransactions = 3
	minCategoryMonths       = 2

	// trendBand: slope beyond ±5% of the mean monthly spend counts as a trend.
	trendBand = 0.05

	categoryFitWeight     = 0.8
	categoryHistoryWeight = 0.2
	categoryForecastCeil  = 0.95
)

const monthKeyLayout = "2006-01"

// ForecastMonthly projects total income, expenses, and savings for the next
// monthsToForecast calendar months after now. It extrapolates an OLS trend
// over the historical monthly totals and layers confident recurring patterns
// on top. now is the reference clock; passing it explicitly keeps the
// function pure.
func ForecastMonthly(txns []model.Transaction, patterns []RecurringPattern, monthsToForecast int, now time.Time) []MonthlyForecast {
	incomeByMonth := make(map[string]float64)
	expenseByMonth := make(map[string]float64)
	monthSet := make(map[string]bool)

	for _, t := range txns {
		key := t.Date.Format(monthKeyLayout)
		switch t.Type {
		case model.TransactionTypeIncome:
			incomeByMonth[key] += t.Amount
		case model.TransactionTypeExpense:
			expenseByMonth[key] += t.Amount
		default:
			continue // transfers move money, they are neither income nor expense
		}
		monthSet[key] = true
	}

	months := make([]string, 0, len(monthSet))
	for key := range monthSet {
		months = append(months, key)
	}
	sort.Strings(months)
	n := len(months)

	incomeSeries := make([]float64, n)
	expenseSeries := make([]float64, n)
	for i, key := range months {
		incomeSeries[i] = incomeByMonth[key]
		expenseSeries[i] = expenseByMonth[key]
	}

	var incomeSlope, incomeBase, expenseSlope, expenseBase float64
	if n >= 2 {
		incomeSlope, incomeBase, _ = linearRegression(incomeSeries)
		expenseSlope, expenseBase, _ = linearRegression(expenseSeries)
	}

	stability := seriesStability(incomeSeries, expenseSeries)

	forecasts := make([]MonthlyForecast, 0, monthsToForecast)
	currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	for i := 1; i <= monthsToForecast; i++ {
		target := currentMonth.AddDate(0, i, 0)

		income := incomeBase + incomeSlope*float64(n+i)
		expenses := expenseBase + expenseSlope*float64(n+i)

		var contributingConfidence []float64
		for _, p := range patterns {
			if p.ConfidenceScore < contributionConfidenceCutoff {
				continue
			}
			amount := patternContribution(p, target)
			if amount == 0 {
				continue
			}
			switch patternChannel(p) {
			case model.TransactionTypeIncome:
				income += amount
			case model.TransactionTypeExpense:
				expenses += amount
			default:
				continue
			}
			contributingConfidence = append(contributingConfidence, p.ConfidenceScore)
		}

		if income < 0 {
			income = 0
		}
		if expenses < 0 {
			expenses = 0
		}

		confidence := historyWeight*minFloat(1, float64(n)/fullHistoryMonths) +
			stabilityWeight*stability +
			patternWeight*mean(contributingConfidence) +
			distanceWeight*(1-distanceDecayPerMonth*float64(i))

		forecasts = append(forecasts, MonthlyForecast{
			Month:             target.Format(monthKeyLayout),
			PredictedIncome:   income,
			PredictedExpenses: expenses,
			PredictedSavings:  income - expenses,
			ConfidenceScore:   clamp(confidence, monthlyForecastFloor, monthlyForecastCeiling),
		})
	}
	return forecasts
}

// ForecastCategories fits a per-category spending trend over monthly expense
// totals and projects the current and next month.
func ForecastCategories(txns []model.Transaction, categories []model.Category) []CategoryForecast {
	var forecasts []CategoryForecast
	for _, cat := range categories {
		var catTxns []model.Transaction
		for _, t := range txns {
			if t.Type == model.TransactionTypeExpense && t.CategoryID == cat.ID {
				catTxns = append(catTxns, t)
			}
		}
		if len(catTxns) < minCategoryTransactions {
			continue
		}

		totals := make(map[string]float64)
		for _, t := range catTxns {
			totals[t.Date.Format(monthKeyLayout)] += t.Amount
		}
		if len(totals) < minCategoryMonths {
			continue
		}

		months := make([]string, 0, len(totals))
		for key := range totals {
			months = append(months, key)
		}
		sort.Strings(months)

		series := make([]float64, len(months))
		for i, key := range months {
			series[i] = totals[key]
		}

		slope, intercept, rSquared := linearRegression(series)
		n := float64(len(series))

		current := intercept + slope*n
		next := intercept + slope*(n+1)
		if current < 0 {
			current = 0
		}
		if next < 0 {
			next = 0
		}

		monthlyMean := mean(series)
		trend := TrendStable
		switch {
		case slope > trendBand*monthlyMean:
			trend = TrendIncreasing
		case slope < -trendBand*monthlyMean:
			trend = TrendDecreasing
		}

		confidence := rSquared*categoryFitWeight +
			minFloat(1, n/fullHistoryMonths)*categoryHistoryWeight

		forecasts = append(forecasts, CategoryForecast{
			CategoryID:             cat.ID,
			CategoryName:           cat.Name,
			CurrentMonthPrediction: current,
			NextMonthPrediction:    next,
			Trend:                  trend,
			ConfidenceScore:        clamp(confidence, 0, categoryForecastCeil),
		})
	}
	return forecasts
}

// patternContribution returns the amount a recurring pattern adds to the
// target calendar month, 0 if it does not land there.
func patternContribution(p RecurringPattern, monthStart time.Time) float64 {
	monthEnd := monthStart.AddDate(0, 1, 0) // exclusive

	switch p.Frequency {
	case FrequencyMonthly:
		if p.NextPredictedDate != nil && inRange(*p.NextPredictedDate, monthStart, monthEnd) {
			return p.AverageAmount
		}
		// A monthly cadence lands in every month at a whole number of
		// month-steps after the last occurrence.
		if monthsBetween(p.LastTransactionDate, monthStart) >= 1 {
			return p.AverageAmount
		}
		return 0
	case FrequencyWeekly:
		if p.NextPredictedDate == nil {
			return 0
		}
		occurrences := 0
		for d := *p.NextPredictedDate; d.Before(monthEnd); d = d.AddDate(0, 0, 7) {
			if !d.Before(monthStart) {
				occurrences++
			}
		}
		return p.AverageAmount * float64(occurrences)
	case FrequencyYearly:
		diff := monthsBetween(p.LastTransactionDate, monthStart)
		if diff > 0 && diff%12 == 0 {
			return p.AverageAmount
		}
		return 0
	default:
		return 0
	}
}

// patternChannel decides whether a pattern feeds the income or expense
// projection, by the type of its most recent member transaction.
func patternChannel(p RecurringPattern) model.TransactionType {
	if len(p.Transactions) == 0 {
		return model.TransactionTypeTransfer
	}
	return p.Transactions[len(p.Transactions)-1].Type
}

// seriesStability converts the combined coefficient of variation of the two
// monthly series into a [0,1] stability weight. A channel with a non-positive
// mean contributes the worst case rather than dividing by zero.
func seriesStability(incomeSeries, expenseSeries []float64) float64 {
	cov := func(series []float64) float64 {
		m := mean(series)
		if m <= 0 {
			return 1
		}
		return stdDev(series) / m
	}
	combined := (cov(incomeSeries) + cov(expenseSeries)) / 2
	return clamp(1-combined, 0, 1)
}

func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
