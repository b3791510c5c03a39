package model

import "time"

// TransactionType distinguishes money in, money out, and internal movement.
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "INCOME"
	TransactionTypeExpense  TransactionType = "EXPENSE"
	TransactionTypeTransfer TransactionType = "TRANSFER"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeTransfer:
		return true
	}
	return false
}

// Transaction is a single ledger entry. Amount is always a non-negative
// magnitude; the direction is carried by Type.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	AccountID   string          `json:"accountId,omitempty"`
	CategoryID  string          `json:"categoryId,omitempty"`
	Payee       string          `json:"payee,omitempty"`
	Description string          `json:"description"`
	Amount      float64         `json:"amount"`
	Type        TransactionType `json:"type"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Category groups transactions for budgeting and analytics.
type Category struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind,omitempty"` // e.g. "expense", "income"
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Account is a container transactions are logged against.
type Account struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Name           string    `json:"name"`
	Kind           string    `json:"kind,omitempty"` // e.g. "checking", "savings", "credit"
	OpeningBalance float64   `json:"openingBalance"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Budget caps spending for a set of categories over a period.
type Budget struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	CategoryIDs []string  `json:"categoryIds,omitempty"`
	Amount      float64   `json:"amount"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BudgetProgress is computed from the expenses matching a budget's categories
// and period; it is never stored.
type BudgetProgress struct {
	BudgetID        string  `json:"budgetId"`
	SpentAmount     float64 `json:"spentAmount"`
	RemainingAmount float64 `json:"remainingAmount"`
	PercentageUsed  float64 `json:"percentageUsed"`
}

// GoalStatus tracks a savings goal's lifecycle.
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusAchieved  GoalStatus = "achieved"
	GoalStatusAbandoned GoalStatus = "abandoned"
)

// Goal is a savings target.
type Goal struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Name          string     `json:"name"`
	TargetAmount  float64    `json:"targetAmount"`
	CurrentAmount float64    `json:"currentAmount"`
	StartDate     time.Time  `json:"startDate"`
	TargetDate    time.Time  `json:"targetDate,omitempty"`
	Status        GoalStatus `json:"status"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// GoalProgress is derived from a goal at a point in time; never stored.
type GoalProgress struct {
	GoalID             string  `json:"goalId"`
	CurrentAmount      float64 `json:"currentAmount"`
	TargetAmount       float64 `json:"targetAmount"`
	PercentageComplete float64 `json:"percentageComplete"`
	DaysRemaining      int     `json:"daysRemaining"`
	RequiredDailyRate  float64 `json:"requiredDailyRate"`
	ActualDailyRate    float64 `json:"actualDailyRate"`
	OnTrack            bool    `json:"onTrack"`
}

// User is an authenticated account holder. PasswordHash never leaves the
// server.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName,omitempty"`
	PasswordHash string    `json:"-"`
	WeeklyDigest bool      `json:"weeklyDigest"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
