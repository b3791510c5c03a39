package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fincast/fincast/internal/model"
)

// MemoryStore implements Store with in-memory maps. It backs local
// development and tests; data does not survive a restart.
type MemoryStore struct {
	mu sync.RWMutex

	users        map[string]*model.User
	accounts     map[string]*model.Account
	categories   map[string]*model.Category
	transactions map[string]*model.Transaction
	budgets      map[string]*model.Budget
	goals        map[string]*model.Goal
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[string]*model.User),
		accounts:     make(map[string]*model.Account),
		categories:   make(map[string]*model.Category),
		transactions: make(map[string]*model.Transaction),
		budgets:      make(map[string]*model.Budget),
		goals:        make(map[string]*model.Goal),
	}
}

// paginateIDs applies cursor-based pagination to a slice of IDs.
// Returns the paginated IDs and the next page token (empty if no more pages).
func paginateIDs(ids []string, pageSize int32, pageToken string) ([]string, string) {
	if pageSize <= 0 {
		pageSize = 100
	}

	sort.Strings(ids)

	startIdx := 0
	if pageToken != "" {
		cursorID, err := DecodePageToken(pageToken)
		if err == nil {
			for i, id := range ids {
				if id > cursorID {
					startIdx = i
					break
				}
				if i == len(ids)-1 {
					return nil, ""
				}
			}
		}
	}

	ids = ids[startIdx:]

	var nextToken string
	if int32(len(ids)) > pageSize {
		nextToken = EncodePageToken(ids[pageSize-1])
		ids = ids[:pageSize]
	}

	return ids, nextToken
}

// User operations

func (m *MemoryStore) CreateUser(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return fmt.Errorf("user with email %s already exists", user.Email)
		}
	}

	m.users[user.ID] = user
	return nil
}

func (m *MemoryStore) GetUser(ctx context.Context, userID string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return user, nil
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, fmt.Errorf("user with email %s: %w", email, ErrNotFound)
}

func (m *MemoryStore) UpdateUser(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; !ok {
		return fmt.Errorf("user %s: %w", user.ID, ErrNotFound)
	}
	m.users[user.ID] = user
	return nil
}

func (m *MemoryStore) ListDigestSubscribers(ctx context.Context) ([]*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []string
	for id, user := range m.users {
		if user.WeeklyDigest {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	subscribers := make([]*model.User, 0, len(ids))
	for _, id := range ids {
		subscribers = append(subscribers, m.users[id])
	}
	return subscribers, nil
}

// Account operations

func (m *MemoryStore) CreateAccount(ctx context.Context, account *model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	m.accounts[account.ID] = account
	return nil
}

func (m *MemoryStore) GetAccount(ctx context.Context, accountID string) (*model.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	account, ok := m.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", accountID, ErrNotFound)
	}
	return account, nil
}

func (m *MemoryStore) UpdateAccount(ctx context.Context, account *model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[account.ID]; !ok {
		return fmt.Errorf("account %s: %w", account.ID, ErrNotFound)
	}
	m.accounts[account.ID] = account
	return nil
}

func (m *MemoryStore) DeleteAccount(ctx context.Context, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.accounts, accountID)
	return nil
}

func (m *MemoryStore) ListAccounts(ctx context.Context, userID string) ([]*model.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []string
	for id, account := range m.accounts {
		if userID != "" && account.UserID != userID {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	accounts := make([]*model.Account, 0, len(ids))
	for _, id := range ids {
		accounts = append(accounts, m.accounts[id])
	}
	return accounts, nil
}

// Category operations

func (m *MemoryStore) CreateCategory(ctx context.Context, category *model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	m.categories[category.ID] = category
	return nil
}

func (m *MemoryStore) GetCategory(ctx context.Context, categoryID string) (*model.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	category, ok := m.categories[categoryID]
	if !ok {
		return nil, fmt.Errorf("category %s: %w", categoryID, ErrNotFound)
	}
	return category, nil
}

func (m *MemoryStore) UpdateCategory(ctx context.Context, category *model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.categories[category.ID]; !ok {
		return fmt.Errorf("category %s: %w", category.ID, ErrNotFound)
	}
	m.categories[category.ID] = category
	return nil
}

func (m *MemoryStore) DeleteCategory(ctx context.Context, categoryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.categories, categoryID)
	return nil
}

func (m *MemoryStore) ListCategories(ctx context.Context, userID string) ([]*model.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []string
	for id, category := range m.categories {
		if userID != "" && category.UserID != userID {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	categories := make([]*model.Category, 0, len(ids))
	for _, id := range ids {
		categories = append(categories, m.categories[id])
	}
	return categories, nil
}

// Transaction operations

func (m *MemoryStore) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	m.transactions[txn.ID] = txn
	return nil
}

func (m *MemoryStore) GetTransaction(ctx context.Context, txnID string) (*model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	txn, ok := m.transactions[txnID]
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w", txnID, ErrNotFound)
	}
	return txn, nil
}

func (m *MemoryStore) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.transactions[txn.ID]; !ok {
		return fmt.Errorf("transaction %s: %w", txn.ID, ErrNotFound)
	}
	m.transactions[txn.ID] = txn
	return nil
}

func (m *MemoryStore) DeleteTransaction(ctx context.Context, txnID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.transactions, txnID)
	return nil
}

func (m *MemoryStore) ListTransactions(ctx context.Context, userID string, filter TransactionFilter, pageSize int32, pageToken string) ([]*model.Transaction, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matchingIDs []string
	for id, txn := range m.transactions {
		if !matchesTransaction(txn, userID, filter) {
			continue
		}
		matchingIDs = append(matchingIDs, id)
	}

	paginatedIDs, nextToken := paginateIDs(matchingIDs, pageSize, pageToken)
	result := make([]*model.Transaction, 0, len(paginatedIDs))
	for _, id := range paginatedIDs {
		result = append(result, m.transactions[id])
	}
	return result, nextToken, nil
}

func matchesTransaction(txn *model.Transaction, userID string, filter TransactionFilter) bool {
	if userID != "" && txn.UserID != userID {
		return false
	}
	if filter.AccountID != "" && txn.AccountID != filter.AccountID {
		return false
	}
	if filter.CategoryID != "" && txn.CategoryID != filter.CategoryID {
		return false
	}
	if filter.Type != "" && txn.Type != filter.Type {
		return false
	}
	if filter.StartDate != nil && txn.Date.Before(*filter.StartDate) {
		return false
	}
	if filter.EndDate != nil && txn.Date.After(*filter.EndDate) {
		return false
	}
	return true
}

// Budget operations

func (m *MemoryStore) CreateBudget(ctx context.Context, budget *model.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if budget.ID == "" {
		budget.ID = uuid.New().String()
	}
	m.budgets[budget.ID] = budget
	return nil
}

func (m *MemoryStore) GetBudget(ctx context.Context, budgetID string) (*model.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	budget, ok := m.budgets[budgetID]
	if !ok {
		return nil, fmt.Errorf("budget %s: %w", budgetID, ErrNotFound)
	}
	return budget, nil
}

func (m *MemoryStore) UpdateBudget(ctx context.Context, budget *model.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.budgets[budget.ID]; !ok {
		return fmt.Errorf("budget %s: %w", budget.ID, ErrNotFound)
	}
	m.budgets[budget.ID] = budget
	return nil
}

func (m *MemoryStore) DeleteBudget(ctx context.Context, budgetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.budgets, budgetID)
	return nil
}

func (m *MemoryStore) ListBudgets(ctx context.Context, userID string, includeInactive bool, pageSize int32, pageToken string) ([]*model.Budget, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matchingIDs []string
	for id, budget := range m.budgets {
		if userID != "" && budget.UserID != userID {
			continue
		}
		if !includeInactive && !budget.IsActive {
			continue
		}
		matchingIDs = append(matchingIDs, id)
	}

	paginatedIDs, nextToken := paginateIDs(matchingIDs, pageSize, pageToken)
	result := make([]*model.Budget, 0, len(paginatedIDs))
	for _, id := range paginatedIDs {
		result = append(result, m.budgets[id])
	}
	return result, nextToken, nil
}

func (m *MemoryStore) GetBudgetProgress(ctx context.Context, budgetID string, asOfDate time.Time) (*model.BudgetProgress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	budget, ok := m.budgets[budgetID]
	if !ok {
		return nil, fmt.Errorf("budget %s: %w", budgetID, ErrNotFound)
	}

	var spentAmount float64
	for _, txn := range m.transactions {
		if txn.UserID != budget.UserID || txn.Type != model.TransactionTypeExpense {
			continue
		}
		if len(budget.CategoryIDs) > 0 {
			categoryMatch := false
			for _, catID := range budget.CategoryIDs {
				if txn.CategoryID == catID {
					categoryMatch = true
					break
				}
			}
			if !categoryMatch {
				continue
			}
		}
		if txn.Date.Before(budget.StartDate) || txn.Date.After(budget.EndDate) {
			continue
		}
		spentAmount += txn.Amount
	}

	progress := &model.BudgetProgress{
		BudgetID:        budgetID,
		SpentAmount:     spentAmount,
		RemainingAmount: budget.Amount - spentAmount,
	}
	if budget.Amount > 0 {
		progress.PercentageUsed = (spentAmount / budget.Amount) * 100
	}
	return progress, nil
}

// Goal operations

func (m *MemoryStore) CreateGoal(ctx context.Context, goal *model.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if goal.ID == "" {
		goal.ID = uuid.New().String()
	}
	m.goals[goal.ID] = goal
	return nil
}

func (m *MemoryStore) GetGoal(ctx context.Context, goalID string) (*model.Goal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	goal, ok := m.goals[goalID]
	if !ok {
		return nil, fmt.Errorf("goal %s: %w", goalID, ErrNotFound)
	}
	return goal, nil
}

func (m *MemoryStore) UpdateGoal(ctx context.Context, goal *model.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.goals[goal.ID]; !ok {
		return fmt.Errorf("goal %s: %w", goal.ID, ErrNotFound)
	}
	m.goals[goal.ID] = goal
	return nil
}

func (m *MemoryStore) DeleteGoal(ctx context.Context, goalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.goals, goalID)
	return nil
}

func (m *MemoryStore) ListGoals(ctx context.Context, userID string, status model.GoalStatus, pageSize int32, pageToken string) ([]*model.Goal, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matchingIDs []string
	for id, goal := range m.goals {
		if userID != "" && goal.UserID != userID {
			continue
		}
		if status != "" && goal.Status != status {
			continue
		}
		matchingIDs = append(matchingIDs, id)
	}

	paginatedIDs, nextToken := paginateIDs(matchingIDs, pageSize, pageToken)
	result := make([]*model.Goal, 0, len(paginatedIDs))
	for _, id := range paginatedIDs {
		result = append(result, m.goals[id])
	}
	return result, nextToken, nil
}

func (m *MemoryStore) GetGoalProgress(ctx context.Context, goalID string, asOfDate time.Time) (*model.GoalProgress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	goal, ok := m.goals[goalID]
	if !ok {
		return nil, fmt.Errorf("goal %s: %w", goalID, ErrNotFound)
	}
	return computeGoalProgress(goal, asOfDate), nil
}

// computeGoalProgress derives the point-in-time progress snapshot for a goal.
// Shared by the memory and sqlite stores.
func computeGoalProgress(goal *model.Goal, asOfDate time.Time) *model.GoalProgress {
	percentageComplete := 0.0
	if goal.TargetAmount > 0 {
		percentageComplete = (goal.CurrentAmount / goal.TargetAmount) * 100
	}

	daysRemaining := 0
	if !goal.TargetDate.IsZero() && asOfDate.Before(goal.TargetDate) {
		daysRemaining = int(goal.TargetDate.Sub(asOfDate).Hours() / 24)
	}

	remainingAmount := goal.TargetAmount - goal.CurrentAmount
	requiredDailyRate := 0.0
	if daysRemaining > 0 && remainingAmount > 0 {
		requiredDailyRate = remainingAmount / float64(daysRemaining)
	}

	actualDailyRate := 0.0
	if !goal.StartDate.IsZero() {
		daysSinceStart := asOfDate.Sub(goal.StartDate).Hours() / 24
		if daysSinceStart > 0 {
			actualDailyRate = goal.CurrentAmount / daysSinceStart
		}
	}

	onTrack := actualDailyRate >= requiredDailyRate || percentageComplete >= 100

	return &model.GoalProgress{
		GoalID:             goal.ID,
		CurrentAmount:      goal.CurrentAmount,
		TargetAmount:       goal.TargetAmount,
		PercentageComplete: percentageComplete,
		DaysRemaining:      daysRemaining,
		RequiredDailyRate:  requiredDailyRate,
		ActualDailyRate:    actualDailyRate,
		OnTrack:            onTrack,
	}
}
