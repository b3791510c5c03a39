package store

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/fincast/fincast/internal/model"
)

// ErrNotFound is returned when a requested record does not exist. Callers
// match it with errors.Is to map storage misses to 404s.
var ErrNotFound = errors.New("not found")

// TransactionFilter narrows ListTransactions. Zero values mean "no filter".
type TransactionFilter struct {
	AccountID  string
	CategoryID string
	Type       model.TransactionType
	StartDate  *time.Time
	EndDate    *time.Time
}

// Store defines the interface for all database operations used by the service
type Store interface {
	// User operations
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, userID string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	ListDigestSubscribers(ctx context.Context) ([]*model.User, error)

	// Account operations
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, accountID string) (*model.Account, error)
	UpdateAccount(ctx context.Context, account *model.Account) error
	DeleteAccount(ctx context.Context, accountID string) error
	ListAccounts(ctx context.Context, userID string) ([]*model.Account, error)

	// Category operations
	CreateCategory(ctx context.Context, category *model.Category) error
	GetCategory(ctx context.Context, categoryID string) (*model.Category, error)
	UpdateCategory(ctx context.Context, category *model.Category) error
	DeleteCategory(ctx context.Context, categoryID string) error
	ListCategories(ctx context.Context, userID string) ([]*model.Category, error)

	// Transaction operations
	CreateTransaction(ctx context.Context, txn *model.Transaction) error
	GetTransaction(ctx context.Context, txnID string) (*model.Transaction, error)
	UpdateTransaction(ctx context.Context, txn *model.Transaction) error
	DeleteTransaction(ctx context.Context, txnID string) error
	ListTransactions(ctx context.Context, userID string, filter TransactionFilter, pageSize int32, pageToken string) ([]*model.Transaction, string, error)

	// Budget operations
	CreateBudget(ctx context.Context, budget *model.Budget) error
	GetBudget(ctx context.Context, budgetID string) (*model.Budget, error)
	UpdateBudget(ctx context.Context, budget *model.Budget) error
	DeleteBudget(ctx context.Context, budgetID string) error
	ListBudgets(ctx context.Context, userID string, includeInactive bool, pageSize int32, pageToken string) ([]*model.Budget, string, error)
	GetBudgetProgress(ctx context.Context, budgetID string, asOfDate time.Time) (*model.BudgetProgress, error)

	// Goal operations
	CreateGoal(ctx context.Context, goal *model.Goal) error
	GetGoal(ctx context.Context, goalID string) (*model.Goal, error)
	UpdateGoal(ctx context.Context, goal *model.Goal) error
	DeleteGoal(ctx context.Context, goalID string) error
	ListGoals(ctx context.Context, userID string, status model.GoalStatus, pageSize int32, pageToken string) ([]*model.Goal, string, error)
	GetGoalProgress(ctx context.Context, goalID string, asOfDate time.Time) (*model.GoalProgress, error)
}

// EncodePageToken encodes a record ID into a page token.
func EncodePageToken(recordID string) string {
	if recordID == "" {
		return ""
	}
	return base64.URLEncoding.EncodeToString([]byte(recordID))
}

// DecodePageToken decodes a page token back to a record ID.
func DecodePageToken(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
