package insights

import "fmt"

// Narrate turns the structured analysis into short human-readable sentences
// for the dashboard. This is presentation glue over the engine's output; it
// adds no analysis of its own.
func Narrate(patterns []RecurringPattern, anomalies []Anomaly, monthly []MonthlyForecast, categories []CategoryForecast) []string {
	var insights []string

	if len(patterns) > 0 {
		largest := patterns[0]
		for _, p := range patterns[1:] {
			if p.AverageAmount > largest.AverageAmount {
				largest = p
			}
		}
		insights = append(insights, fmt.Sprintf(
			"You have %d recurring payment(s); the largest is %s at about %.2f per %s cycle.",
			len(patterns), largest.Payee, largest.AverageAmount, largest.Frequency))
	}

	if len(anomalies) > 0 {
		high := 0
		for _, a := range anomalies {
			if a.Severity == SeverityHigh {
				high++
			}
		}
		if high > 0 {
			insights = append(insights, fmt.Sprintf(
				"%d transaction(s) look unusual for your history, %d of them significantly so. Worth a quick review.",
				len(anomalies), high))
		} else {
			insights = append(insights, fmt.Sprintf(
				"%d transaction(s) deviate mildly from your usual spending. Nothing alarming.",
				len(anomalies)))
		}
	}

	if len(monthly) > 0 {
		next := monthly[0]
		if next.PredictedSavings >= 0 {
			insights = append(insights, fmt.Sprintf(
				"Next month you are on track to save about %.2f (income %.2f, expenses %.2f).",
				next.PredictedSavings, next.PredictedIncome, next.PredictedExpenses))
		} else {
			insights = append(insights, fmt.Sprintf(
				"Next month expenses are projected to exceed income by %.2f. Consider trimming flexible categories.",
				-next.PredictedSavings))
		}
	}

	for _, cf := range categories {
		if cf.Trend == TrendIncreasing {
			insights = append(insights, fmt.Sprintf(
				"Spending in %s is trending up; next month is projected at %.2f.",
				cf.CategoryName, cf.NextMonthPrediction))
			break
		}
	}

	return insights
}
