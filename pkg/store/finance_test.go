package store

import (
	"context"
	"errors"
	"testing"
)

func TestSaveTransactionAmountValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := Transaction{Type: TypeExpense, CategoryID: "c_food", AccountID: "a_cash"}

	for _, amount := range []float64{0, -5} {
		tx := base
		tx.Amount = amount
		if _, err := s.SaveTransaction(ctx, tx); !IsValidation(err) {
			t.Errorf("Amount %v should be rejected with ValidationError, got: %v", amount, err)
		}
	}

	tx := base
	tx.Amount = 0.01
	saved, err := s.SaveTransaction(ctx, tx)
	if err != nil {
		t.Fatalf("Amount 0.01 should be accepted, got: %v", err)
	}
	if saved.ID == "" || saved.Date == 0 {
		t.Errorf("SaveTransaction did not fill defaults: %+v", saved)
	}
}

func TestSaveTransactionReferenceValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cases := []Transaction{
		{Amount: 10, Type: TypeExpense, CategoryID: "", AccountID: "a_cash"},
		{Amount: 10, Type: TypeExpense, CategoryID: "c_missing", AccountID: "a_cash"},
		{Amount: 10, Type: TypeExpense, CategoryID: "c_food", AccountID: ""},
		{Amount: 10, Type: TypeExpense, CategoryID: "c_food", AccountID: "a_missing"},
		{Amount: 10, Type: TransactionType("transfer"), CategoryID: "c_food", AccountID: "a_cash"},
	}
	for i, tx := range cases {
		if _, err := s.SaveTransaction(ctx, tx); !IsValidation(err) {
			t.Errorf("Case %d should be rejected with ValidationError, got: %v", i, err)
		}
	}

	// Nothing may have been written by the rejected saves.
	all, err := s.ListTransactions(ctx, TransactionFilter{})
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("Rejected saves left %d rows behind", len(all))
	}
}

func TestListTransactionsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seed := []Transaction{
		{ID: "t1", Amount: 12.5, Type: TypeExpense, CategoryID: "c_food", AccountID: "a_cash", Date: 1000},
		{ID: "t2", Amount: 80, Type: TypeExpense, CategoryID: "c_transport", AccountID: "a_wechat", Date: 2000},
		{ID: "t3", Amount: 5000, Type: TypeIncome, CategoryID: "c_salary", AccountID: "a_bank", Date: 3000},
	}
	for _, tx := range seed {
		if _, err := s.SaveTransaction(ctx, tx); err != nil {
			t.Fatalf("SaveTransaction %s failed: %v", tx.ID, err)
		}
	}

	expense, err := s.ListTransactions(ctx, TransactionFilter{Type: TypeExpense})
	if err != nil {
		t.Fatalf("ListTransactions by type failed: %v", err)
	}
	if len(expense) != 2 {
		t.Errorf("Expected 2 expense rows, got %d", len(expense))
	}

	byAccount, err := s.ListTransactions(ctx, TransactionFilter{AccountID: "a_bank"})
	if err != nil {
		t.Fatalf("ListTransactions by account failed: %v", err)
	}
	if len(byAccount) != 1 || byAccount[0].ID != "t3" {
		t.Errorf("Expected only t3 for a_bank, got %+v", byAccount)
	}

	from, to := int64(1000), int64(3000)
	inclusive, err := s.ListTransactions(ctx, TransactionFilter{DateFrom: &from, DateTo: &to})
	if err != nil {
		t.Fatalf("ListTransactions by date failed: %v", err)
	}
	if len(inclusive) != 3 {
		t.Errorf("Inclusive date range should match 3 rows, got %d", len(inclusive))
	}

	exclusive, err := s.ListTransactions(ctx, TransactionFilter{
		DateFrom: &from, DateTo: &to, FromExclusive: true, ToExclusive: true,
	})
	if err != nil {
		t.Fatalf("ListTransactions by exclusive date failed: %v", err)
	}
	if len(exclusive) != 1 || exclusive[0].ID != "t2" {
		t.Errorf("Exclusive date range should match only t2, got %+v", exclusive)
	}
}

func TestTransactionUpdatePreservesCreatedAt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saved, err := s.SaveTransaction(ctx, Transaction{Amount: 10, Type: TypeExpense, CategoryID: "c_food", AccountID: "a_cash"})
	if err != nil {
		t.Fatalf("SaveTransaction failed: %v", err)
	}

	saved.Amount = 20
	updated, err := s.SaveTransaction(ctx, saved)
	if err != nil {
		t.Fatalf("SaveTransaction update failed: %v", err)
	}
	if updated.CreatedAt != saved.CreatedAt {
		t.Errorf("CreatedAt changed on update: %d -> %d", saved.CreatedAt, updated.CreatedAt)
	}

	got, err := s.GetTransaction(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetTransaction failed: %v", err)
	}
	if got.Amount != 20 {
		t.Errorf("Upsert did not replace the row, amount = %v", got.Amount)
	}
}

func TestDeleteTransaction(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saved, err := s.SaveTransaction(ctx, Transaction{Amount: 10, Type: TypeExpense, CategoryID: "c_food", AccountID: "a_cash"})
	if err != nil {
		t.Fatalf("SaveTransaction failed: %v", err)
	}
	if err := s.DeleteTransaction(ctx, saved.ID); err != nil {
		t.Fatalf("DeleteTransaction failed: %v", err)
	}
	if _, err := s.GetTransaction(ctx, saved.ID); !errors.Is(err, ErrTransactionNotFound) {
		t.Errorf("Expected ErrTransactionNotFound, got: %v", err)
	}
	if err := s.DeleteTransaction(ctx, saved.ID); !errors.Is(err, ErrTransactionNotFound) {
		t.Errorf("Second delete should return ErrTransactionNotFound, got: %v", err)
	}
}

func TestSaveCategoryAndAccountValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.SaveCategory(ctx, Category{Name: "", Type: TypeExpense}); !IsValidation(err) {
		t.Errorf("Nameless category should be rejected, got: %v", err)
	}
	if _, err := s.SaveCategory(ctx, Category{Name: "旅行", Type: TransactionType("other")}); !IsValidation(err) {
		t.Errorf("Bad category type should be rejected, got: %v", err)
	}
	custom, err := s.SaveCategory(ctx, Category{Name: "旅行", Icon: "Plane", Type: TypeExpense})
	if err != nil {
		t.Fatalf("SaveCategory failed: %v", err)
	}
	if custom.ID == "" {
		t.Error("SaveCategory did not assign an id")
	}

	if _, err := s.SaveAccount(ctx, Account{Name: "股票", Type: AccountType("broker")}); !IsValidation(err) {
		t.Errorf("Bad account type should be rejected, got: %v", err)
	}
	if _, err := s.SaveAccount(ctx, Account{Name: "股票", Type: AccountOther, Balance: 100}); err != nil {
		t.Fatalf("SaveAccount failed: %v", err)
	}

	expenseCats, err := s.ListCategories(ctx, TypeExpense)
	if err != nil {
		t.Fatalf("ListCategories failed: %v", err)
	}
	// 7 seeded expense defaults plus the custom one.
	if len(expenseCats) != 8 {
		t.Errorf("Expected 8 expense categories, got %d", len(expenseCats))
	}
}
