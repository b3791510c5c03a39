package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fincast/fincast/internal/model"
)

func newSQLiteTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "fincast_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteUserRoundTrip(t *testing.T) {
	s := newSQLiteTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	user := &model.User{
		Email:        "alice@example.com",
		DisplayName:  "Alice",
		PasswordHash: "hashed",
		WeeklyDigest: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.CreateUser(ctx, user))
	require.NotEmpty(t, user.ID)

	got, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.True(t, got.WeeklyDigest)

	byEmail, err := s.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	t.Run("duplicate email rejected", func(t *testing.T) {
		dup := &model.User{Email: "alice@example.com", PasswordHash: "x", CreatedAt: now, UpdatedAt: now}
		assert.Error(t, s.CreateUser(ctx, dup))
	})

	t.Run("missing user maps to ErrNotFound", func(t *testing.T) {
		_, err := s.GetUser(ctx, "no-such-id")
		assert.ErrorIs(t, err, ErrNotFound)

		err = s.UpdateUser(ctx, &model.User{ID: "no-such-id", Email: "x@example.com"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("digest subscribers", func(t *testing.T) {
		optedOut := &model.User{Email: "bob@example.com", PasswordHash: "x", CreatedAt: now, UpdatedAt: now}
		require.NoError(t, s.CreateUser(ctx, optedOut))

		subs, err := s.ListDigestSubscribers(ctx)
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, user.ID, subs[0].ID)
	})
}

func TestSQLiteTransactionListing(t *testing.T) {
	s := newSQLiteTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 25; i++ {
		txn := &model.Transaction{
			UserID:      "user-1",
			CategoryID:  "cat-food",
			Description: fmt.Sprintf("purchase %d", i),
			Amount:      float64(10 + i),
			Type:        model.TransactionTypeExpense,
			Date:        base.AddDate(0, 0, i),
			CreatedAt:   base,
			UpdatedAt:   base,
		}
		require.NoError(t, s.CreateTransaction(ctx, txn))
	}
	other := &model.Transaction{
		UserID: "user-2", Amount: 1, Type: model.TransactionTypeIncome,
		Date: base, CreatedAt: base, UpdatedAt: base,
	}
	require.NoError(t, s.CreateTransaction(ctx, other))

	t.Run("paginates without duplicates", func(t *testing.T) {
		seen := make(map[string]bool)
		pageToken := ""
		pages := 0
		for {
			page, next, err := s.ListTransactions(ctx, "user-1", TransactionFilter{}, 10, pageToken)
			require.NoError(t, err)
			pages++
			for _, txn := range page {
				assert.False(t, seen[txn.ID], "duplicate id %s", txn.ID)
				seen[txn.ID] = true
			}
			if next == "" {
				break
			}
			pageToken = next
		}
		assert.Equal(t, 3, pages)
		assert.Len(t, seen, 25)
	})

	t.Run("date range filter", func(t *testing.T) {
		from := base.AddDate(0, 0, 10)
		to := base.AddDate(0, 0, 14)
		page, _, err := s.ListTransactions(ctx, "user-1", TransactionFilter{StartDate: &from, EndDate: &to}, 0, "")
		require.NoError(t, err)
		assert.Len(t, page, 5)
	})

	t.Run("scoped to user", func(t *testing.T) {
		page, _, err := s.ListTransactions(ctx, "user-2", TransactionFilter{}, 0, "")
		require.NoError(t, err)
		assert.Len(t, page, 1)
	})

	t.Run("update and delete", func(t *testing.T) {
		page, _, err := s.ListTransactions(ctx, "user-1", TransactionFilter{}, 1, "")
		require.NoError(t, err)
		require.Len(t, page, 1)
		txn := page[0]

		txn.Amount = 999
		txn.UpdatedAt = base.AddDate(0, 1, 0)
		require.NoError(t, s.UpdateTransaction(ctx, txn))

		got, err := s.GetTransaction(ctx, txn.ID)
		require.NoError(t, err)
		assert.Equal(t, 999.0, got.Amount)

		require.NoError(t, s.DeleteTransaction(ctx, txn.ID))
		_, err = s.GetTransaction(ctx, txn.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSQLiteBudgetProgress(t *testing.T) {
	s := newSQLiteTestStore(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)

	budget := &model.Budget{
		UserID:      "user-1",
		Name:        "March groceries",
		CategoryIDs: []string{"cat-food", "cat-household"},
		Amount:      400,
		StartDate:   start,
		EndDate:     end,
		IsActive:    true,
		CreatedAt:   start,
		UpdatedAt:   start,
	}
	require.NoError(t, s.CreateBudget(ctx, budget))

	seed := []struct {
		categoryID string
		amount     float64
		date       time.Time
		typ        model.TransactionType
	}{
		{"cat-food", 120, start.AddDate(0, 0, 5), model.TransactionTypeExpense},
		{"cat-household", 80, start.AddDate(0, 0, 10), model.TransactionTypeExpense},
		{"cat-fun", 50, start.AddDate(0, 0, 12), model.TransactionTypeExpense},   // outside categories
		{"cat-food", 999, start.AddDate(0, -1, 0), model.TransactionTypeExpense}, // outside period
		{"cat-food", 75, start.AddDate(0, 0, 15), model.TransactionTypeIncome},   // refund, not spend
	}
	for _, txn := range seed {
		require.NoError(t, s.CreateTransaction(ctx, &model.Transaction{
			UserID: "user-1", CategoryID: txn.categoryID, Amount: txn.amount,
			Type: txn.typ, Date: txn.date, CreatedAt: txn.date, UpdatedAt: txn.date,
		}))
	}

	progress, err := s.GetBudgetProgress(ctx, budget.ID, end)
	require.NoError(t, err)
	assert.InDelta(t, 200.0, progress.SpentAmount, 1e-9)
	assert.InDelta(t, 200.0, progress.RemainingAmount, 1e-9)
	assert.InDelta(t, 50.0, progress.PercentageUsed, 1e-9)

	t.Run("round-trips category ids", func(t *testing.T) {
		got, err := s.GetBudget(ctx, budget.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"cat-food", "cat-household"}, got.CategoryIDs)
	})

	t.Run("inactive budgets hidden by default", func(t *testing.T) {
		budget.IsActive = false
		budget.UpdatedAt = end
		require.NoError(t, s.UpdateBudget(ctx, budget))

		active, _, err := s.ListBudgets(ctx, "user-1", false, 0, "")
		require.NoError(t, err)
		assert.Empty(t, active)

		all, _, err := s.ListBudgets(ctx, "user-1", true, 0, "")
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestSQLiteGoals(t *testing.T) {
	s := newSQLiteTestStore(t)
	ctx := context.Background()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	goal := &model.Goal{
		UserID:        "user-1",
		Name:          "Emergency fund",
		TargetAmount:  1000,
		CurrentAmount: 400,
		StartDate:     start,
		TargetDate:    start.AddDate(0, 0, 200),
		Status:        model.GoalStatusActive,
		CreatedAt:     start,
		UpdatedAt:     start,
	}
	require.NoError(t, s.CreateGoal(ctx, goal))

	abandoned := &model.Goal{
		UserID: "user-1", Name: "Boat", TargetAmount: 50000,
		StartDate: start, Status: model.GoalStatusAbandoned,
		CreatedAt: start, UpdatedAt: start,
	}
	require.NoError(t, s.CreateGoal(ctx, abandoned))

	t.Run("status filter", func(t *testing.T) {
		active, _, err := s.ListGoals(ctx, "user-1", model.GoalStatusActive, 0, "")
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, goal.ID, active[0].ID)

		all, _, err := s.ListGoals(ctx, "user-1", "", 0, "")
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("progress at midpoint", func(t *testing.T) {
		asOf := start.AddDate(0, 0, 100)
		progress, err := s.GetGoalProgress(ctx, goal.ID, asOf)
		require.NoError(t, err)
		assert.InDelta(t, 40.0, progress.PercentageComplete, 1e-9)
		assert.Equal(t, 100, progress.DaysRemaining)
		assert.InDelta(t, 6.0, progress.RequiredDailyRate, 1e-9)
		assert.InDelta(t, 4.0, progress.ActualDailyRate, 1e-9)
		assert.False(t, progress.OnTrack)
	})
}
