package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/fincast/fincast/internal/auth"
	"github.com/fincast/fincast/internal/insights"
	"github.com/fincast/fincast/internal/model"
	"github.com/fincast/fincast/internal/store"
)

const (
	defaultInsightsMonths         = 6
	defaultAdvancedInsightsMonths = 12
	defaultForecastMonths         = 3
	maxHistoryMonths              = 60
	maxForecastMonths             = 24
)

type insightsResponse struct {
	RecurringPatterns []insights.RecurringPattern `json:"recurringPatterns"`
	Anomalies         []insights.Anomaly          `json:"anomalies"`
	Insights          []string                    `json:"insights"`
}

type advancedInsightsResponse struct {
	RecurringPatterns []insights.RecurringPattern `json:"recurringPatterns"`
	Anomalies         []insights.Anomaly          `json:"anomalies"`
	MonthlyForecasts  []insights.MonthlyForecast  `json:"monthlyForecasts"`
	CategoryForecasts []insights.CategoryForecast `json:"categoryForecasts"`
	Insights          []string                    `json:"insights"`
}

// HandleGetInsights runs recurring-pattern and anomaly detection over the
// caller's recent history.
func (s *FinanceService) HandleGetInsights(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	months, ok := monthsParam(w, r, "months", defaultInsightsMonths, maxHistoryMonths)
	if !ok {
		return
	}

	cacheKey := insightsCacheKey(userID, "basic", months, 0)
	if cached, found := s.cache.Get(cacheKey); found {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	txns, err := s.loadHistory(r.Context(), userID, months)
	if err != nil {
		s.storeError(w, err)
		return
	}

	patterns := insights.DetectRecurringPatterns(txns)
	anomalies := insights.DetectAnomalies(txns, patterns)

	resp := insightsResponse{
		RecurringPatterns: nonNilPatterns(patterns),
		Anomalies:         nonNilAnomalies(anomalies),
		Insights:          nonNilStrings(insights.Narrate(patterns, anomalies, nil, nil)),
	}
	s.cache.Set(cacheKey, resp, cache.DefaultExpiration)
	writeJSON(w, http.StatusOK, resp)
}

// HandleGetAdvancedInsights adds the monthly and per-category forecasts on
// top of pattern and anomaly detection.
func (s *FinanceService) HandleGetAdvancedInsights(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	months, ok := monthsParam(w, r, "months", defaultAdvancedInsightsMonths, maxHistoryMonths)
	if !ok {
		return
	}
	forecastMonths, ok := monthsParam(w, r, "forecastMonths", defaultForecastMonths, maxForecastMonths)
	if !ok {
		return
	}

	cacheKey := insightsCacheKey(userID, "advanced", months, forecastMonths)
	if cached, found := s.cache.Get(cacheKey); found {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	txns, err := s.loadHistory(r.Context(), userID, months)
	if err != nil {
		s.storeError(w, err)
		return
	}
	categoryPtrs, err := s.store.ListCategories(r.Context(), userID)
	if err != nil {
		s.storeError(w, err)
		return
	}
	categories := make([]model.Category, 0, len(categoryPtrs))
	for _, c := range categoryPtrs {
		categories = append(categories, *c)
	}

	now := time.Now().UTC()
	patterns := insights.DetectRecurringPatterns(txns)
	anomalies := insights.DetectAnomalies(txns, patterns)
	monthly := insights.ForecastMonthly(txns, patterns, forecastMonths, now)
	perCategory := insights.ForecastCategories(txns, categories)

	resp := advancedInsightsResponse{
		RecurringPatterns: nonNilPatterns(patterns),
		Anomalies:         nonNilAnomalies(anomalies),
		MonthlyForecasts:  monthly,
		CategoryForecasts: nonNilCategoryForecasts(perCategory),
		Insights:          nonNilStrings(insights.Narrate(patterns, anomalies, monthly, perCategory)),
	}
	s.cache.Set(cacheKey, resp, cache.DefaultExpiration)
	writeJSON(w, http.StatusOK, resp)
}

// loadHistory pulls every transaction in the trailing window, walking the
// store's pagination.
func (s *FinanceService) loadHistory(ctx context.Context, userID string, months int) ([]model.Transaction, error) {
	start := time.Now().UTC().AddDate(0, -months, 0)
	filter := store.TransactionFilter{StartDate: &start}

	var txns []model.Transaction
	pageToken := ""
	for {
		page, nextToken, err := s.store.ListTransactions(ctx, userID, filter, 500, pageToken)
		if err != nil {
			return nil, err
		}
		for _, t := range page {
			txns = append(txns, *t)
		}
		if nextToken == "" {
			return txns, nil
		}
		pageToken = nextToken
	}
}

// invalidateInsights drops all cached analytics for a user after their ledger
// changes.
func (s *FinanceService) invalidateInsights(userID string) {
	prefix := "insights:" + userID + ":"
	for key := range s.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			s.cache.Delete(key)
		}
	}
}

func insightsCacheKey(userID, kind string, months, forecastMonths int) string {
	return fmt.Sprintf("insights:%s:%s:%d:%d", userID, kind, months, forecastMonths)
}

func monthsParam(w http.ResponseWriter, r *http.Request, name string, fallback, max int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > max {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s must be an integer between 1 and %d", name, max))
		return 0, false
	}
	return n, true
}

// The JSON API always returns arrays, never null.

func nonNilPatterns(v []insights.RecurringPattern) []insights.RecurringPattern {
	if v == nil {
		return []insights.RecurringPattern{}
	}
	return v
}

func nonNilAnomalies(v []insights.Anomaly) []insights.Anomaly {
	if v == nil {
		return []insights.Anomaly{}
	}
	return v
}

func nonNilCategoryForecasts(v []insights.CategoryForecast) []insights.CategoryForecast {
	if v == nil {
		return []insights.CategoryForecast{}
	}
	return v
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
