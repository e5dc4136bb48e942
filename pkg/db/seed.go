package db

import (
	"context"
	"fmt"
)

// DefaultCategory describes one row of the fixed default category set.
type DefaultCategory struct {
	ID    string
	Name  string
	Icon  string
	Type  string
	Color string
}

// DefaultAccount describes one row of the fixed default account set.
type DefaultAccount struct {
	ID   string
	Name string
	Type string
	Icon string
}

// DefaultCategories is the fixed category set seeded on first run: seven
// expense categories followed by four income categories.
var DefaultCategories = []DefaultCategory{
	{ID: "c_food", Name: "餐饮", Icon: "Utensils", Type: "expense", Color: "#ef4444"},
	{ID: "c_transport", Name: "交通", Icon: "Bus", Type: "expense", Color: "#3b82f6"},
	{ID: "c_shopping", Name: "购物", Icon: "ShoppingBag", Type: "expense", Color: "#f59e0b"},
	{ID: "c_entertainment", Name: "娱乐", Icon: "Gamepad2", Type: "expense", Color: "#8b5cf6"},
	{ID: "c_house", Name: "居住", Icon: "Home", Type: "expense", Color: "#10b981"},
	{ID: "c_medical", Name: "医疗", Icon: "Stethoscope", Type: "expense", Color: "#ef4444"},
	{ID: "c_other", Name: "其他", Icon: "MoreHorizontal", Type: "expense", Color: "#6b7280"},
	{ID: "c_salary", Name: "工资", Icon: "Banknote", Type: "income", Color: "#10b981"},
	{ID: "c_bonus", Name: "奖金", Icon: "Gift", Type: "income", Color: "#f59e0b"},
	{ID: "c_invest", Name: "理财", Icon: "TrendingUp", Type: "income", Color: "#3b82f6"},
	{ID: "c_other_in", Name: "其他", Icon: "MoreHorizontal", Type: "income", Color: "#6b7280"},
}

// DefaultAccounts is the fixed account set seeded on first run.
var DefaultAccounts = []DefaultAccount{
	{ID: "a_cash", Name: "现金", Type: "cash", Icon: "Wallet"},
	{ID: "a_wechat", Name: "微信", Type: "wechat", Icon: "MessageCircle"},
	{ID: "a_alipay", Name: "支付宝", Type: "alipay", Icon: "CreditCard"},
	{ID: "a_bank", Name: "银行卡", Type: "bank", Icon: "Landmark"},
}

// SeedDefaults inserts the default category and account sets, each if and
// only if its collection is currently empty. The two emptiness checks are
// independent and both run on every call, so the function is an idempotent
// no-op after the first successful seed and never overwrites user rows.
func SeedDefaults(ctx context.Context, q Querier) (seededCategories, seededAccounts bool, err error) {
	var categoryCount int64
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&categoryCount); err != nil {
		return false, false, fmt.Errorf("failed to count categories: %w", err)
	}
	if categoryCount == 0 {
		for _, c := range DefaultCategories {
			_, err := q.ExecContext(ctx,
				`INSERT INTO categories (id, name, icon, type, color, is_default) VALUES (?, ?, ?, ?, ?, 1)`,
				c.ID, c.Name, c.Icon, c.Type, c.Color,
			)
			if err != nil {
				return false, false, fmt.Errorf("failed to seed category %s: %w", c.ID, err)
			}
		}
		seededCategories = true
	}

	var accountCount int64
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&accountCount); err != nil {
		return seededCategories, false, fmt.Errorf("failed to count accounts: %w", err)
	}
	if accountCount == 0 {
		for _, a := range DefaultAccounts {
			_, err := q.ExecContext(ctx,
				`INSERT INTO accounts (id, name, type, balance, icon) VALUES (?, ?, ?, 0, ?)`,
				a.ID, a.Name, a.Type, a.Icon,
			)
			if err != nil {
				return seededCategories, false, fmt.Errorf("failed to seed account %s: %w", a.ID, err)
			}
		}
		seededAccounts = true
	}

	return seededCategories, seededAccounts, nil
}
