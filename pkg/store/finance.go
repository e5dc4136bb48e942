package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/QinMou000/SuiJi/pkg/live"
)

const (
	upsertTransactionStatement = `
	INSERT INTO transactions (id, amount, type, category_id, account_id, date, note, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		amount = excluded.amount,
		type = excluded.type,
		category_id = excluded.category_id,
		account_id = excluded.account_id,
		date = excluded.date,
		note = excluded.note,
		created_at = excluded.created_at,
		updated_at = excluded.updated_at
	`

	getTransactionStatement = `
	SELECT id, amount, type, category_id, account_id, date, note, created_at, updated_at
	FROM transactions
	WHERE id = ?
	`

	deleteTransactionStatement = `
	DELETE FROM transactions
	WHERE id = ?
	`

	upsertCategoryStatement = `
	INSERT INTO categories (id, name, icon, type, color, is_default)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		icon = excluded.icon,
		type = excluded.type,
		color = excluded.color,
		is_default = excluded.is_default
	`

	getCategoryStatement = `
	SELECT id, name, icon, type, color, is_default
	FROM categories
	WHERE id = ?
	`

	listCategoriesStatement = `
	SELECT id, name, icon, type, color, is_default
	FROM categories
	WHERE type = ? OR ? = ''
	ORDER BY is_default DESC, id ASC
	`

	upsertAccountStatement = `
	INSERT INTO accounts (id, name, type, balance, icon)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		type = excluded.type,
		balance = excluded.balance,
		icon = excluded.icon
	`

	getAccountStatement = `
	SELECT id, name, type, balance, icon
	FROM accounts
	WHERE id = ?
	`

	listAccountsStatement = `
	SELECT id, name, type, balance, icon
	FROM accounts
	ORDER BY id ASC
	`
)

var validAccountTypes = map[AccountType]bool{
	AccountCash:   true,
	AccountBank:   true,
	AccountWeChat: true,
	AccountAlipay: true,
	AccountOther:  true,
}

// TransactionFilter narrows ListTransactions. Zero-valued fields are
// ignored. The date bounds are inclusive unless the matching Exclusive flag
// is set.
type TransactionFilter struct {
	Type          TransactionType
	CategoryID    string
	AccountID     string
	DateFrom      *int64
	DateTo        *int64
	FromExclusive bool
	ToExclusive   bool
}

// SaveTransaction validates and upserts a ledger entry. Validation rejects
// the write before anything is touched: the amount must be positive and the
// referenced category and account must exist.
func (s *Store) SaveTransaction(ctx context.Context, t Transaction) (Transaction, error) {
	if t.Amount <= 0 {
		return Transaction{}, &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if t.Type != TypeExpense && t.Type != TypeIncome {
		return Transaction{}, &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown transaction type %q", t.Type)}
	}
	if t.CategoryID == "" {
		return Transaction{}, &ValidationError{Field: "categoryId", Reason: "required"}
	}
	if _, err := s.GetCategory(ctx, t.CategoryID); err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return Transaction{}, &ValidationError{Field: "categoryId", Reason: fmt.Sprintf("unknown category %q", t.CategoryID)}
		}
		return Transaction{}, err
	}
	if t.AccountID == "" {
		return Transaction{}, &ValidationError{Field: "accountId", Reason: "required"}
	}
	if _, err := s.GetAccount(ctx, t.AccountID); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return Transaction{}, &ValidationError{Field: "accountId", Reason: fmt.Sprintf("unknown account %q", t.AccountID)}
		}
		return Transaction{}, err
	}

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UnixMilli()
	if t.Date == 0 {
		t.Date = now
	}
	existing, err := s.GetTransaction(ctx, t.ID)
	switch {
	case err == nil:
		t.CreatedAt = existing.CreatedAt
	case errors.Is(err, ErrTransactionNotFound):
		if t.CreatedAt == 0 {
			t.CreatedAt = now
		}
	default:
		return Transaction{}, err
	}
	t.UpdatedAt = now
	if t.UpdatedAt < t.CreatedAt {
		t.UpdatedAt = t.CreatedAt
	}

	_, err = s.db.ExecContext(ctx, upsertTransactionStatement,
		t.ID, t.Amount, string(t.Type), t.CategoryID, t.AccountID, t.Date, t.Note, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to upsert transaction: %w", err)
	}
	s.bus.Publish(live.Transactions)
	return t, nil
}

// GetTransaction retrieves one ledger entry.
func (s *Store) GetTransaction(ctx context.Context, id string) (Transaction, error) {
	return scanTransaction(s.db.QueryRowContext(ctx, getTransactionStatement, id))
}

// DeleteTransaction removes one ledger entry.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, deleteTransactionStatement, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrTransactionNotFound
	}
	s.bus.Publish(live.Transactions)
	return nil
}

// ListTransactions returns ledger entries matching the filter, newest
// transaction date first.
func (s *Store) ListTransactions(ctx context.Context, f TransactionFilter) ([]Transaction, error) {
	var clauses []string
	var args []any

	if f.Type != "" {
		clauses = append(clauses, "type = ?")
		args = append(args, string(f.Type))
	}
	if f.CategoryID != "" {
		clauses = append(clauses, "category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.AccountID != "" {
		clauses = append(clauses, "account_id = ?")
		args = append(args, f.AccountID)
	}
	if f.DateFrom != nil {
		op := ">="
		if f.FromExclusive {
			op = ">"
		}
		clauses = append(clauses, "date "+op+" ?")
		args = append(args, *f.DateFrom)
	}
	if f.DateTo != nil {
		op := "<="
		if f.ToExclusive {
			op = "<"
		}
		clauses = append(clauses, "date "+op+" ?")
		args = append(args, *f.DateTo)
	}

	query := `
	SELECT id, amount, type, category_id, account_id, date, note, created_at, updated_at
	FROM transactions`
	if len(clauses) > 0 {
		query += "\n\tWHERE " + strings.Join(clauses, " AND ")
	}
	query += "\n\tORDER BY date DESC, created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var items []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return items, nil
}

// SaveCategory upserts a category. Defaults seeded at migration time carry
// IsDefault; user-added categories usually do not.
func (s *Store) SaveCategory(ctx context.Context, c Category) (Category, error) {
	if c.Name == "" {
		return Category{}, &ValidationError{Field: "name", Reason: "required"}
	}
	if c.Type != TypeExpense && c.Type != TypeIncome {
		return Category{}, &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown category type %q", c.Type)}
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, upsertCategoryStatement,
		c.ID, c.Name, c.Icon, string(c.Type), c.Color, c.IsDefault)
	if err != nil {
		return Category{}, fmt.Errorf("failed to upsert category: %w", err)
	}
	s.bus.Publish(live.Categories)
	return c, nil
}

// GetCategory retrieves one category.
func (s *Store) GetCategory(ctx context.Context, id string) (Category, error) {
	var c Category
	var catType string
	err := s.db.QueryRowContext(ctx, getCategoryStatement, id).Scan(
		&c.ID, &c.Name, &c.Icon, &catType, &c.Color, &c.IsDefault)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Category{}, ErrCategoryNotFound
		}
		return Category{}, fmt.Errorf("failed to scan category row: %w", err)
	}
	c.Type = TransactionType(catType)
	return c, nil
}

// ListCategories returns categories, optionally narrowed to one transaction
// type (empty means all). Defaults sort first.
func (s *Store) ListCategories(ctx context.Context, t TransactionType) ([]Category, error) {
	rows, err := s.db.QueryContext(ctx, listCategoriesStatement, string(t), string(t))
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var items []Category
	for rows.Next() {
		var c Category
		var catType string
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &catType, &c.Color, &c.IsDefault); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		c.Type = TransactionType(catType)
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}
	return items, nil
}

// SaveAccount upserts an account. Balance is stored as given: the store
// never derives it from transactions.
func (s *Store) SaveAccount(ctx context.Context, a Account) (Account, error) {
	if a.Name == "" {
		return Account{}, &ValidationError{Field: "name", Reason: "required"}
	}
	if !validAccountTypes[a.Type] {
		return Account{}, &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown account type %q", a.Type)}
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, upsertAccountStatement,
		a.ID, a.Name, string(a.Type), a.Balance, a.Icon)
	if err != nil {
		return Account{}, fmt.Errorf("failed to upsert account: %w", err)
	}
	s.bus.Publish(live.Accounts)
	return a, nil
}

// GetAccount retrieves one account.
func (s *Store) GetAccount(ctx context.Context, id string) (Account, error) {
	var a Account
	var acctType string
	err := s.db.QueryRowContext(ctx, getAccountStatement, id).Scan(
		&a.ID, &a.Name, &acctType, &a.Balance, &a.Icon)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, fmt.Errorf("failed to scan account row: %w", err)
	}
	a.Type = AccountType(acctType)
	return a, nil
}

// ListAccounts returns every account.
func (s *Store) ListAccounts(ctx context.Context) ([]Account, error) {
	rows, err := s.db.QueryContext(ctx, listAccountsStatement)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var items []Account
	for rows.Next() {
		var a Account
		var acctType string
		if err := rows.Scan(&a.ID, &a.Name, &acctType, &a.Balance, &a.Icon); err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		a.Type = AccountType(acctType)
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return items, nil
}

func scanTransaction(row rowScanner) (Transaction, error) {
	var t Transaction
	var txType string
	err := row.Scan(&t.ID, &t.Amount, &txType, &t.CategoryID, &t.AccountID, &t.Date, &t.Note, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Transaction{}, ErrTransactionNotFound
		}
		return Transaction{}, fmt.Errorf("failed to scan transaction row: %w", err)
	}
	t.Type = TransactionType(txType)
	return t, nil
}
