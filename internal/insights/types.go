// Package insights implements the financial analytics engine: recurring
// pattern detection, statistical anomaly detection, and income/expense
// forecasting. Every function in this package is a pure function of the
// transaction history passed to it — no I/O, no shared state, no caching.
package insights

import (
	"time"

	"github.com/fincast/fincast/internal/model"
)

// Frequency classifies the cadence of a recurring pattern.
type Frequency string

const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyYearly    Frequency = "yearly"
	FrequencyIrregular Frequency = "irregular"
)

// RecurringPattern is a detected group of transactions sharing payee and
// category that repeat with near-constant period. It is recomputed on every
// call and has no identity beyond its content.
type RecurringPattern struct {
	Payee               string              `json:"payee"`
	CategoryID          string              `json:"categoryId"`
	AverageAmount       float64             `json:"averageAmount"`
	Frequency           Frequency           `json:"frequency"`
	ConfidenceScore     float64             `json:"confidenceScore"`
	LastTransactionDate time.Time           `json:"lastTransactionDate"`
	NextPredictedDate   *time.Time          `json:"nextPredictedDate,omitempty"`
	Transactions        []model.Transaction `json:"transactions"`
}

// Severity ranks how far an anomalous transaction deviates from its norm.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Anomaly flags a transaction whose amount or timing deviates abnormally
// from its category's or pattern's history. A transaction can be flagged more
// than once with different reasons.
type Anomaly struct {
	Transaction     model.Transaction `json:"transaction"`
	Reason          string            `json:"reason"`
	Severity        Severity          `json:"severity"`
	AmountDeviation float64           `json:"amountDeviation,omitempty"`
	TimeDeviation   float64           `json:"timeDeviation,omitempty"`
}

// MonthlyForecast projects one future calendar month.
type MonthlyForecast struct {
	Month             string  `json:"month"` // YYYY-MM
	PredictedIncome   float64 `json:"predictedIncome"`
	PredictedExpenses float64 `json:"predictedExpenses"`
	PredictedSavings  float64 `json:"predictedSavings"`
	ConfidenceScore   float64 `json:"confidenceScore"`
}

// Trend classifies the direction of a category's spending.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// CategoryForecast projects a single category's spend for the current and
// next month index.
type CategoryForecast struct {
	CategoryID             string  `json:"categoryId"`
	CategoryName           string  `json:"categoryName"`
	CurrentMonthPrediction float64 `json:"currentMonthPrediction"`
	NextMonthPrediction    float64 `json:"nextMonthPrediction"`
	Trend                  Trend   `json:"trend"`
	ConfidenceScore        float64 `json:"confidenceScore"`
}

// uncategorizedKey stands in for a missing category reference so that
// uncategorized transactions still group together.
const uncategorizedKey = "uncategorized"

func categoryOrSentinel(categoryID string) string {
	if categoryID == "" {
		return uncategorizedKey
	}
	return categoryID
}
