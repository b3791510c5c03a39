package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fincast/fincast/internal/model"
)

func TestNarrateEmptyAnalysis(t *testing.T) {
	assert.Empty(t, Narrate(nil, nil, nil, nil))
}

func TestNarrateRecurringAndForecast(t *testing.T) {
	patterns := []RecurringPattern{
		{Payee: "Netflix", AverageAmount: 15, Frequency: FrequencyMonthly},
		{Payee: "Rent", AverageAmount: 1800, Frequency: FrequencyMonthly},
	}
	monthly := []MonthlyForecast{
		{Month: "2025-09", PredictedIncome: 3000, PredictedExpenses: 2000, PredictedSavings: 1000},
	}

	insights := Narrate(patterns, nil, monthly, nil)
	require.Len(t, insights, 2)
	assert.Contains(t, insights[0], "Rent")
	assert.Contains(t, insights[0], "2 recurring")
	assert.Contains(t, insights[1], "save about 1000.00")
}

func TestNarrateAnomalySeverityWording(t *testing.T) {
	txn := model.Transaction{ID: "t1", Amount: 900, Date: time.Date(2025, time.July, 3, 0, 0, 0, 0, time.UTC)}

	t.Run("high severity prompts a review", func(t *testing.T) {
		anomalies := []Anomaly{
			{Transaction: txn, Severity: SeverityHigh},
			{Transaction: txn, Severity: SeverityLow},
		}
		insights := Narrate(nil, anomalies, nil, nil)
		require.Len(t, insights, 1)
		assert.Contains(t, insights[0], "Worth a quick review")
	})

	t.Run("mild deviations are played down", func(t *testing.T) {
		anomalies := []Anomaly{{Transaction: txn, Severity: SeverityLow}}
		insights := Narrate(nil, anomalies, nil, nil)
		require.Len(t, insights, 1)
		assert.Contains(t, insights[0], "Nothing alarming")
	})
}

func TestNarrateOverspendWarning(t *testing.T) {
	monthly := []MonthlyForecast{
		{Month: "2025-09", PredictedIncome: 2000, PredictedExpenses: 2400, PredictedSavings: -400},
	}
	insights := Narrate(nil, nil, monthly, nil)
	require.Len(t, insights, 1)
	assert.Contains(t, insights[0], "exceed income by 400.00")
}

func TestNarrateRisingCategory(t *testing.T) {
	categories := []CategoryForecast{
		{CategoryID: "cat-flat", CategoryName: "Utilities", Trend: TrendStable},
		{CategoryID: "cat-dining", CategoryName: "Dining", Trend: TrendIncreasing, NextMonthPrediction: 480},
		{CategoryID: "cat-travel", CategoryName: "Travel", Trend: TrendIncreasing, NextMonthPrediction: 900},
	}
	insights := Narrate(nil, nil, nil, categories)
	require.Len(t, insights, 1)
	// Only the first rising category is called out.
	assert.Contains(t, insights[0], "Dining")
	assert.NotContains(t, insights[0], "Travel")
}
