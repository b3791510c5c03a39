package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fincast/fincast/internal/model"
)

func TestMemoryStoreUserLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	user := &model.User{Email: "alex@example.com", PasswordHash: "hash"}
	require.NoError(t, s.CreateUser(ctx, user))
	require.NotEmpty(t, user.ID)

	got, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alex@example.com", got.Email)

	byEmail, err := s.GetUserByEmail(ctx, "alex@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	dup := &model.User{Email: "alex@example.com", PasswordHash: "other"}
	assert.Error(t, s.CreateUser(ctx, dup))

	_, err = s.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDigestSubscribers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.CreateUser(ctx, &model.User{Email: "a@example.com", WeeklyDigest: true}))
	require.NoError(t, s.CreateUser(ctx, &model.User{Email: "b@example.com", WeeklyDigest: false}))
	require.NoError(t, s.CreateUser(ctx, &model.User{Email: "c@example.com", WeeklyDigest: true}))

	subs, err := s.ListDigestSubscribers(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	for _, u := range subs {
		assert.True(t, u.WeeklyDigest)
	}
}

func TestMemoryStoreTransactionPagination(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for i := 0; i < 25; i++ {
		require.NoError(t, s.CreateTransaction(ctx, &model.Transaction{
			ID:     fmt.Sprintf("txn-%02d", i),
			UserID: "user-1",
			Amount: float64(i),
			Type:   model.TransactionTypeExpense,
			Date:   time.Date(2025, time.January, 1+i, 0, 0, 0, 0, time.UTC),
		}))
	}

	var seen []string
	token := ""
	pages := 0
	for {
		txns, next, err := s.ListTransactions(ctx, "user-1", TransactionFilter{}, 10, token)
		require.NoError(t, err)
		pages++
		for _, txn := range txns {
			seen = append(seen, txn.ID)
		}
		if next == "" {
			break
		}
		token = next
	}

	assert.Equal(t, 3, pages)
	require.Len(t, seen, 25)
	// Cursor pagination must not repeat or skip records.
	unique := make(map[string]bool)
	for _, id := range seen {
		unique[id] = true
	}
	assert.Len(t, unique, 25)
}

func TestMemoryStoreTransactionFilters(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	jan := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, time.February, 15, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateTransaction(ctx, &model.Transaction{
		ID: "t1", UserID: "user-1", CategoryID: "cat-food", Type: model.TransactionTypeExpense, Amount: 20, Date: jan,
	}))
	require.NoError(t, s.CreateTransaction(ctx, &model.Transaction{
		ID: "t2", UserID: "user-1", CategoryID: "cat-rent", Type: model.TransactionTypeExpense, Amount: 900, Date: feb,
	}))
	require.NoError(t, s.CreateTransaction(ctx, &model.Transaction{
		ID: "t3", UserID: "user-1", Type: model.TransactionTypeIncome, Amount: 3000, Date: feb,
	}))
	require.NoError(t, s.CreateTransaction(ctx, &model.Transaction{
		ID: "t4", UserID: "user-2", CategoryID: "cat-food", Type: model.TransactionTypeExpense, Amount: 55, Date: jan,
	}))

	t.Run("by user", func(t *testing.T) {
		txns, _, err := s.ListTransactions(ctx, "user-1", TransactionFilter{}, 0, "")
		require.NoError(t, err)
		assert.Len(t, txns, 3)
	})

	t.Run("by category", func(t *testing.T) {
		txns, _, err := s.ListTransactions(ctx, "user-1", TransactionFilter{CategoryID: "cat-food"}, 0, "")
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, "t1", txns[0].ID)
	})

	t.Run("by type", func(t *testing.T) {
		txns, _, err := s.ListTransactions(ctx, "user-1", TransactionFilter{Type: model.TransactionTypeIncome}, 0, "")
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, "t3", txns[0].ID)
	})

	t.Run("by date range", func(t *testing.T) {
		start := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
		txns, _, err := s.ListTransactions(ctx, "user-1", TransactionFilter{StartDate: &start}, 0, "")
		require.NoError(t, err)
		assert.Len(t, txns, 2)
	})
}

func TestMemoryStoreBudgetProgress(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	budget := &model.Budget{
		ID:          "budget-1",
		UserID:      "user-1",
		Name:        "Food",
		CategoryIDs: []string{"cat-food"},
		Amount:      400,
		StartDate:   time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC),
		IsActive:    true,
	}
	require.NoError(t, s.CreateBudget(ctx, budget))

	mkTxn := func(id, categoryID string, amount float64, d time.Time, typ model.TransactionType) {
		require.NoError(t, s.CreateTransaction(ctx, &model.Transaction{
			ID: id, UserID: "user-1", CategoryID: categoryID, Amount: amount, Type: typ, Date: d,
		}))
	}
	mkTxn("in", "cat-food", 120, time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC), model.TransactionTypeExpense)
	mkTxn("in2", "cat-food", 80, time.Date(2025, time.June, 20, 0, 0, 0, 0, time.UTC), model.TransactionTypeExpense)
	mkTxn("wrong-cat", "cat-fun", 500, time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC), model.TransactionTypeExpense)
	mkTxn("wrong-month", "cat-food", 90, time.Date(2025, time.July, 2, 0, 0, 0, 0, time.UTC), model.TransactionTypeExpense)
	mkTxn("not-expense", "cat-food", 50, time.Date(2025, time.June, 12, 0, 0, 0, 0, time.UTC), model.TransactionTypeIncome)

	progress, err := s.GetBudgetProgress(ctx, "budget-1", time.Date(2025, time.June, 25, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.InDelta(t, 200, progress.SpentAmount, 1e-9)
	assert.InDelta(t, 200, progress.RemainingAmount, 1e-9)
	assert.InDelta(t, 50, progress.PercentageUsed, 1e-9)
}

func TestMemoryStoreGoalProgress(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	goal := &model.Goal{
		ID:            "goal-1",
		UserID:        "user-1",
		Name:          "Emergency fund",
		TargetAmount:  1000,
		CurrentAmount: 400,
		StartDate:     time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		TargetDate:    time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC),
		Status:        model.GoalStatusActive,
	}
	require.NoError(t, s.CreateGoal(ctx, goal))

	asOf := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	progress, err := s.GetGoalProgress(ctx, "goal-1", asOf)
	require.NoError(t, err)

	assert.InDelta(t, 40, progress.PercentageComplete, 1e-9)
	assert.Equal(t, 244, progress.DaysRemaining)
	// 600 remaining over 244 days vs 400 saved over 120 days.
	assert.InDelta(t, 600.0/244, progress.RequiredDailyRate, 1e-9)
	assert.InDelta(t, 400.0/120, progress.ActualDailyRate, 1e-9)
	assert.True(t, progress.OnTrack)
}

func TestMemoryStoreGoalFilters(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.CreateGoal(ctx, &model.Goal{ID: "g1", UserID: "user-1", Status: model.GoalStatusActive}))
	require.NoError(t, s.CreateGoal(ctx, &model.Goal{ID: "g2", UserID: "user-1", Status: model.GoalStatusAchieved}))
	require.NoError(t, s.CreateGoal(ctx, &model.Goal{ID: "g3", UserID: "user-2", Status: model.GoalStatusActive}))

	goals, _, err := s.ListGoals(ctx, "user-1", model.GoalStatusActive, 0, "")
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "g1", goals[0].ID)
}

func TestMemoryStoreBudgetListing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.CreateBudget(ctx, &model.Budget{ID: "b1", UserID: "user-1", IsActive: true}))
	require.NoError(t, s.CreateBudget(ctx, &model.Budget{ID: "b2", UserID: "user-1", IsActive: false}))

	active, _, err := s.ListBudgets(ctx, "user-1", false, 0, "")
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, _, err := s.ListBudgets(ctx, "user-1", true, 0, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMemoryStoreUpdateMissingRecords(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	assert.ErrorIs(t, s.UpdateTransaction(ctx, &model.Transaction{ID: "nope"}), ErrNotFound)
	assert.ErrorIs(t, s.UpdateBudget(ctx, &model.Budget{ID: "nope"}), ErrNotFound)
	assert.ErrorIs(t, s.UpdateGoal(ctx, &model.Goal{ID: "nope"}), ErrNotFound)
	assert.ErrorIs(t, s.UpdateAccount(ctx, &model.Account{ID: "nope"}), ErrNotFound)
}

func TestPageTokenRoundTrip(t *testing.T) {
	token := EncodePageToken("txn-42")
	require.NotEmpty(t, token)

	id, err := DecodePageToken(token)
	require.NoError(t, err)
	assert.Equal(t, "txn-42", id)

	empty, err := DecodePageToken("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = DecodePageToken("not base64!!!")
	assert.Error(t, err)
}
