package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/fincast/fincast/internal/model"
)

// SQLiteStore implements Store on a local sqlite database file.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	display_name TEXT,
	password_hash TEXT NOT NULL,
	weekly_digest BOOLEAN DEFAULT FALSE,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS accounts (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	kind TEXT,
	opening_balance REAL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS categories (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	kind TEXT,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	account_id TEXT,
	category_id TEXT,
	payee TEXT,
	description TEXT,
	amount REAL NOT NULL,
	type TEXT NOT NULL,
	date TIMESTAMP NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions(user_id, date);

CREATE TABLE IF NOT EXISTS budgets (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	category_ids TEXT,
	amount REAL NOT NULL,
	start_date TIMESTAMP NOT NULL,
	end_date TIMESTAMP NOT NULL,
	is_active BOOLEAN DEFAULT TRUE,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS goals (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	target_amount REAL NOT NULL,
	current_amount REAL DEFAULT 0,
	start_date TIMESTAMP NOT NULL,
	target_date TIMESTAMP,
	status TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id)
);
`

// NewSQLiteStore opens (or creates) the database file at path and ensures the
// schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// User operations

func (s *SQLiteStore) CreateUser(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, display_name, password_hash, weekly_digest, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.DisplayName, user.PasswordHash, user.WeeklyDigest, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, password_hash, weekly_digest, created_at, updated_at
		 FROM users WHERE id = ?`, userID)
	return scanUser(row, userID)
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, password_hash, weekly_digest, created_at, updated_at
		 FROM users WHERE email = ?`, email)
	return scanUser(row, email)
}

func scanUser(row *sql.Row, key string) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.WeeklyDigest, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return &u, nil
}

func (s *SQLiteStore) UpdateUser(ctx context.Context, user *model.User) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET email = ?, display_name = ?, password_hash = ?, weekly_digest = ?, updated_at = ?
		 WHERE id = ?`,
		user.Email, user.DisplayName, user.PasswordHash, user.WeeklyDigest, user.UpdatedAt, user.ID)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return requireRow(res, "user", user.ID)
}

func (s *SQLiteStore) ListDigestSubscribers(ctx context.Context) ([]*model.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, email, display_name, password_hash, weekly_digest, created_at, updated_at
		 FROM users WHERE weekly_digest = TRUE ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing digest subscribers: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.WeeklyDigest, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

// Account operations

func (s *SQLiteStore) CreateAccount(ctx context.Context, account *model.Account) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, user_id, name, kind, opening_balance, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		account.ID, account.UserID, account.Name, account.Kind, account.OpeningBalance, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating account: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetAccount(ctx context.Context, accountID string) (*model.Account, error) {
	var a model.Account
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, kind, opening_balance, created_at, updated_at
		 FROM accounts WHERE id = ?`, accountID).
		Scan(&a.ID, &a.UserID, &a.Name, &a.Kind, &a.OpeningBalance, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", accountID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning account: %w", err)
	}
	return &a, nil
}

func (s *SQLiteStore) UpdateAccount(ctx context.Context, account *model.Account) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET name = ?, kind = ?, opening_balance = ?, updated_at = ? WHERE id = ?`,
		account.Name, account.Kind, account.OpeningBalance, account.UpdatedAt, account.ID)
	if err != nil {
		return fmt.Errorf("updating account: %w", err)
	}
	return requireRow(res, "account", account.ID)
}

func (s *SQLiteStore) DeleteAccount(ctx context.Context, accountID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, accountID)
	return err
}

func (s *SQLiteStore) ListAccounts(ctx context.Context, userID string) ([]*model.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, kind, opening_balance, created_at, updated_at
		 FROM accounts WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Kind, &a.OpeningBalance, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		accounts = append(accounts, &a)
	}
	return accounts, rows.Err()
}

// Category operations

func (s *SQLiteStore) CreateCategory(ctx context.Context, category *model.Category) error {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, user_id, name, kind, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		category.ID, category.UserID, category.Name, category.Kind, category.CreatedAt, category.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating category: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetCategory(ctx context.Context, categoryID string) (*model.Category, error) {
	var c model.Category
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, kind, created_at, updated_at FROM categories WHERE id = ?`, categoryID).
		Scan(&c.ID, &c.UserID, &c.Name, &c.Kind, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %s: %w", categoryID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning category: %w", err)
	}
	return &c, nil
}

func (s *SQLiteStore) UpdateCategory(ctx context.Context, category *model.Category) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, kind = ?, updated_at = ? WHERE id = ?`,
		category.Name, category.Kind, category.UpdatedAt, category.ID)
	if err != nil {
		return fmt.Errorf("updating category: %w", err)
	}
	return requireRow(res, "category", category.ID)
}

func (s *SQLiteStore) DeleteCategory(ctx context.Context, categoryID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, categoryID)
	return err
}

func (s *SQLiteStore) ListCategories(ctx context.Context, userID string) ([]*model.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, kind, created_at, updated_at
		 FROM categories WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []*model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Kind, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}

// Transaction operations

func (s *SQLiteStore) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, account_id, category_id, payee, description, amount, type, date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.UserID, txn.AccountID, txn.CategoryID, txn.Payee, txn.Description,
		txn.Amount, string(txn.Type), txn.Date, txn.CreatedAt, txn.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetTransaction(ctx context.Context, txnID string) (*model.Transaction, error) {
	var t model.Transaction
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, account_id, category_id, payee, description, amount, type, date, created_at, updated_at
		 FROM transactions WHERE id = ?`, txnID).
		Scan(&t.ID, &t.UserID, &t.AccountID, &t.CategoryID, &t.Payee, &t.Description,
			&t.Amount, &t.Type, &t.Date, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", txnID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning transaction: %w", err)
	}
	return &t, nil
}

func (s *SQLiteStore) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET account_id = ?, category_id = ?, payee = ?, description = ?,
		 amount = ?, type = ?, date = ?, updated_at = ? WHERE id = ?`,
		txn.AccountID, txn.CategoryID, txn.Payee, txn.Description,
		txn.Amount, string(txn.Type), txn.Date, txn.UpdatedAt, txn.ID)
	if err != nil {
		return fmt.Errorf("updating transaction: %w", err)
	}
	return requireRow(res, "transaction", txn.ID)
}

func (s *SQLiteStore) DeleteTransaction(ctx context.Context, txnID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, txnID)
	return err
}

func (s *SQLiteStore) ListTransactions(ctx context.Context, userID string, filter TransactionFilter, pageSize int32, pageToken string) ([]*model.Transaction, string, error) {
	if pageSize <= 0 {
		pageSize = 100
	}
	cursorID, err := DecodePageToken(pageToken)
	if err != nil {
		return nil, "", fmt.Errorf("decoding page token: %w", err)
	}

	query := `SELECT id, user_id, account_id, category_id, payee, description, amount, type, date, created_at, updated_at
	 FROM transactions WHERE user_id = ?`
	args := []any{userID}

	if filter.AccountID != "" {
		query += ` AND account_id = ?`
		args = append(args, filter.AccountID)
	}
	if filter.CategoryID != "" {
		query += ` AND category_id = ?`
		args = append(args, filter.CategoryID)
	}
	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(filter.Type))
	}
	if filter.StartDate != nil {
		query += ` AND date >= ?`
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		query += ` AND date <= ?`
		args = append(args, *filter.EndDate)
	}
	if cursorID != "" {
		query += ` AND id > ?`
		args = append(args, cursorID)
	}
	query += ` ORDER BY id LIMIT ?`
	args = append(args, pageSize+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txns []*model.Transaction
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.AccountID, &t.CategoryID, &t.Payee, &t.Description,
			&t.Amount, &t.Type, &t.Date, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, "", fmt.Errorf("scanning transaction: %w", err)
		}
		txns = append(txns, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	var nextToken string
	if int32(len(txns)) > pageSize {
		txns = txns[:pageSize]
		nextToken = EncodePageToken(txns[len(txns)-1].ID)
	}
	return txns, nextToken, nil
}

// Budget operations

func (s *SQLiteStore) CreateBudget(ctx context.Context, budget *model.Budget) error {
	if budget.ID == "" {
		budget.ID = uuid.New().String()
	}
	categoryIDs, err := json.Marshal(budget.CategoryIDs)
	if err != nil {
		return fmt.Errorf("encoding category ids: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO budgets (id, user_id, name, category_ids, amount, start_date, end_date, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		budget.ID, budget.UserID, budget.Name, string(categoryIDs), budget.Amount,
		budget.StartDate, budget.EndDate, budget.IsActive, budget.CreatedAt, budget.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating budget: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetBudget(ctx context.Context, budgetID string) (*model.Budget, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, category_ids, amount, start_date, end_date, is_active, created_at, updated_at
		 FROM budgets WHERE id = ?`, budgetID)
	b, err := scanBudget(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("budget %s: %w", budgetID, ErrNotFound)
	}
	return b, err
}

func scanBudget(scan func(...any) error) (*model.Budget, error) {
	var b model.Budget
	var categoryIDs string
	if err := scan(&b.ID, &b.UserID, &b.Name, &categoryIDs, &b.Amount,
		&b.StartDate, &b.EndDate, &b.IsActive, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if categoryIDs != "" {
		if err := json.Unmarshal([]byte(categoryIDs), &b.CategoryIDs); err != nil {
			return nil, fmt.Errorf("decoding category ids: %w", err)
		}
	}
	return &b, nil
}

func (s *SQLiteStore) UpdateBudget(ctx context.Context, budget *model.Budget) error {
	categoryIDs, err := json.Marshal(budget.CategoryIDs)
	if err != nil {
		return fmt.Errorf("encoding category ids: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE budgets SET name = ?, category_ids = ?, amount = ?, start_date = ?, end_date = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		budget.Name, string(categoryIDs), budget.Amount, budget.StartDate, budget.EndDate,
		budget.IsActive, budget.UpdatedAt, budget.ID)
	if err != nil {
		return fmt.Errorf("updating budget: %w", err)
	}
	return requireRow(res, "budget", budget.ID)
}

func (s *SQLiteStore) DeleteBudget(ctx context.Context, budgetID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, budgetID)
	return err
}

func (s *SQLiteStore) ListBudgets(ctx context.Context, userID string, includeInactive bool, pageSize int32, pageToken string) ([]*model.Budget, string, error) {
	if pageSize <= 0 {
		pageSize = 100
	}
	cursorID, err := DecodePageToken(pageToken)
	if err != nil {
		return nil, "", fmt.Errorf("decoding page token: %w", err)
	}

	query := `SELECT id, user_id, name, category_ids, amount, start_date, end_date, is_active, created_at, updated_at
	 FROM budgets WHERE user_id = ?`
	args := []any{userID}
	if !includeInactive {
		query += ` AND is_active = TRUE`
	}
	if cursorID != "" {
		query += ` AND id > ?`
		args = append(args, cursorID)
	}
	query += ` ORDER BY id LIMIT ?`
	args = append(args, pageSize+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("listing budgets: %w", err)
	}
	defer rows.Close()

	var budgets []*model.Budget
	for rows.Next() {
		b, err := scanBudget(rows.Scan)
		if err != nil {
			return nil, "", fmt.Errorf("scanning budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	var nextToken string
	if int32(len(budgets)) > pageSize {
		budgets = budgets[:pageSize]
		nextToken = EncodePageToken(budgets[len(budgets)-1].ID)
	}
	return budgets, nextToken, nil
}

func (s *SQLiteStore) GetBudgetProgress(ctx context.Context, budgetID string, asOfDate time.Time) (*model.BudgetProgress, error) {
	budget, err := s.GetBudget(ctx, budgetID)
	if err != nil {
		return nil, err
	}

	query := `SELECT COALESCE(SUM(amount), 0) FROM transactions
	 WHERE user_id = ? AND type = ? AND date >= ? AND date <= ?`
	args := []any{budget.UserID, string(model.TransactionTypeExpense), budget.StartDate, budget.EndDate}

	if len(budget.CategoryIDs) > 0 {
		query += ` AND category_id IN (?` + repeatPlaceholder(len(budget.CategoryIDs)-1) + `)`
		for _, id := range budget.CategoryIDs {
			args = append(args, id)
		}
	}

	var spentAmount float64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&spentAmount); err != nil {
		return nil, fmt.Errorf("summing budget spend: %w", err)
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

func (s *SQLiteStore) CreateGoal(ctx context.Context, goal *model.Goal) error {
	if goal.ID == "" {
		goal.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO goals (id, user_id, name, target_amount, current_amount, start_date, target_date, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		goal.ID, goal.UserID, goal.Name, goal.TargetAmount, goal.CurrentAmount,
		goal.StartDate, goal.TargetDate, string(goal.Status), goal.CreatedAt, goal.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating goal: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetGoal(ctx context.Context, goalID string) (*model.Goal, error) {
	var g model.Goal
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, target_amount, current_amount, start_date, target_date, status, created_at, updated_at
		 FROM goals WHERE id = ?`, goalID).
		Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount,
			&g.StartDate, &g.TargetDate, &g.Status, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("goal %s: %w", goalID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning goal: %w", err)
	}
	return &g, nil
}

func (s *SQLiteStore) UpdateGoal(ctx context.Context, goal *model.Goal) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE goals SET name = ?, target_amount = ?, current_amount = ?, start_date = ?, target_date = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		goal.Name, goal.TargetAmount, goal.CurrentAmount, goal.StartDate, goal.TargetDate,
		string(goal.Status), goal.UpdatedAt, goal.ID)
	if err != nil {
		return fmt.Errorf("updating goal: %w", err)
	}
	return requireRow(res, "goal", goal.ID)
}

func (s *SQLiteStore) DeleteGoal(ctx context.Context, goalID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, goalID)
	return err
}

func (s *SQLiteStore) ListGoals(ctx context.Context, userID string, status model.GoalStatus, pageSize int32, pageToken string) ([]*model.Goal, string, error) {
	if pageSize <= 0 {
		pageSize = 100
	}
	cursorID, err := DecodePageToken(pageToken)
	if err != nil {
		return nil, "", fmt.Errorf("decoding page token: %w", err)
	}

	query := `SELECT id, user_id, name, target_amount, current_amount, start_date, target_date, status, created_at, updated_at
	 FROM goals WHERE user_id = ?`
	args := []any{userID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	if cursorID != "" {
		query += ` AND id > ?`
		args = append(args, cursorID)
	}
	query += ` ORDER BY id LIMIT ?`
	args = append(args, pageSize+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("listing goals: %w", err)
	}
	defer rows.Close()

	var goals []*model.Goal
	for rows.Next() {
		var g model.Goal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount,
			&g.StartDate, &g.TargetDate, &g.Status, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, "", fmt.Errorf("scanning goal: %w", err)
		}
		goals = append(goals, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	var nextToken string
	if int32(len(goals)) > pageSize {
		goals = goals[:pageSize]
		nextToken = EncodePageToken(goals[len(goals)-1].ID)
	}
	return goals, nextToken, nil
}

func (s *SQLiteStore) GetGoalProgress(ctx context.Context, goalID string, asOfDate time.Time) (*model.GoalProgress, error) {
	goal, err := s.GetGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}
	return computeGoalProgress(goal, asOfDate), nil
}

func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

func repeatPlaceholder(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += ", ?"
	}
	return out
}
