package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/QinMou000/SuiJi/pkg/store"
)

var transactionsCmd = &cobra.Command{
	Use:   "transactions",
	Short: "Manage finance transactions",
	Long:  `Provides commands for recording, listing, and deleting expense and income transactions.`,
}

var transactionAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a transaction",
	Long:  `Records an expense or income transaction against an existing category and account.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, _ := cmd.Flags().GetFloat64("amount")
		txType, _ := cmd.Flags().GetString("type")
		categoryID, _ := cmd.Flags().GetString("category")
		accountID, _ := cmd.Flags().GetString("account")
		note, _ := cmd.Flags().GetString("note")

		s, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer s.Close()

		tx, err := s.SaveTransaction(cmd.Context(), store.Transaction{
			Amount:     amount,
			Type:       store.TransactionType(txType),
			CategoryID: categoryID,
			AccountID:  accountID,
			Note:       note,
		})
		if err != nil {
			return fmt.Errorf("failed to record transaction: %w", err)
		}

		fmt.Println("Transaction recorded successfully:")
		return printJSON(tx)
	},
}

var transactionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions",
	Long:  `Lists transactions newest-first, optionally filtered by type, category, or account.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		txType, _ := cmd.Flags().GetString("type")
		categoryID, _ := cmd.Flags().GetString("category")
		accountID, _ := cmd.Flags().GetString("account")

		s, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer s.Close()

		transactions, err := s.ListTransactions(cmd.Context(), store.TransactionFilter{
			Type:       store.TransactionType(txType),
			CategoryID: categoryID,
			AccountID:  accountID,
		})
		if err != nil {
			return fmt.Errorf("failed to list transactions: %w", err)
		}
		if len(transactions) == 0 {
			fmt.Println("No transactions found matching the criteria.")
			return nil
		}
		fmt.Println("Transactions:")
		return printJSON(transactions)
	},
}

var transactionDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a transaction by its ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer s.Close()

		if err := s.DeleteTransaction(cmd.Context(), args[0]); err != nil {
			if errors.Is(err, store.ErrTransactionNotFound) {
				fmt.Printf("Transaction with ID %s not found.\n", args[0])
				return nil
			}
			return fmt.Errorf("failed to delete transaction: %w", err)
		}
		fmt.Printf("Transaction with ID %s deleted successfully.\n", args[0])
		return nil
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Manage transaction categories",
	Long:  `Provides commands for listing and creating transaction categories.`,
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	Long:  `Lists transaction categories with the seeded defaults first, optionally filtered by type.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		catType, _ := cmd.Flags().GetString("type")

		s, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer s.Close()

		categories, err := s.ListCategories(cmd.Context(), store.TransactionType(catType))
		if err != nil {
			return fmt.Errorf("failed to list categories: %w", err)
		}
		fmt.Println("Categories:")
		return printJSON(categories)
	},
}

var categoryCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a custom category",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		icon, _ := cmd.Flags().GetString("icon")
		catType, _ := cmd.Flags().GetString("type")
		color, _ := cmd.Flags().GetString("color")

		s, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer s.Close()

		category, err := s.SaveCategory(cmd.Context(), store.Category{
			Name:  name,
			Icon:  icon,
			Type:  store.TransactionType(catType),
			Color: color,
		})
		if err != nil {
			return fmt.Errorf("failed to create category: %w", err)
		}
		fmt.Println("Category created successfully:")
		return printJSON(category)
	},
}

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Manage money accounts",
	Long:  `Provides commands for listing and creating accounts.`,
}

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer s.Close()

		accounts, err := s.ListAccounts(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list accounts: %w", err)
		}
		fmt.Println("Accounts:")
		return printJSON(accounts)
	},
}

var accountCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		accType, _ := cmd.Flags().GetString("type")
		balance, _ := cmd.Flags().GetFloat64("balance")
		icon, _ := cmd.Flags().GetString("icon")

		s, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer s.Close()

		account, err := s.SaveAccount(cmd.Context(), store.Account{
			Name:    name,
			Type:    store.AccountType(accType),
			Balance: balance,
			Icon:    icon,
		})
		if err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}
		fmt.Println("Account created successfully:")
		return printJSON(account)
	},
}

func initFinanceCmd() {
	transactionAddCmd.Flags().Float64P("amount", "a", 0, "Transaction amount (required, must be positive)")
	transactionAddCmd.MarkFlagRequired("amount")
	transactionAddCmd.Flags().StringP("type", "t", "expense", "Transaction type: expense or income")
	transactionAddCmd.Flags().StringP("category", "c", "", "Category ID, e.g. c_food (required)")
	transactionAddCmd.MarkFlagRequired("category")
	transactionAddCmd.Flags().String("account", "", "Account ID, e.g. a_cash (required)")
	transactionAddCmd.MarkFlagRequired("account")
	transactionAddCmd.Flags().StringP("note", "n", "", "Optional free-text remark")

	transactionListCmd.Flags().StringP("type", "t", "", "Filter by type: expense or income")
	transactionListCmd.Flags().StringP("category", "c", "", "Filter by category ID")
	transactionListCmd.Flags().String("account", "", "Filter by account ID")

	transactionsCmd.AddCommand(transactionAddCmd, transactionListCmd, transactionDeleteCmd)

	categoryListCmd.Flags().StringP("type", "t", "", "Filter by type: expense or income")
	categoryCreateCmd.Flags().StringP("name", "n", "", "Category name (required)")
	categoryCreateCmd.MarkFlagRequired("name")
	categoryCreateCmd.Flags().String("icon", "", "Icon name for the category")
	categoryCreateCmd.Flags().StringP("type", "t", "expense", "Category type: expense or income")
	categoryCreateCmd.Flags().String("color", "", "Display color for the category")
	categoriesCmd.AddCommand(categoryListCmd, categoryCreateCmd)

	accountCreateCmd.Flags().StringP("name", "n", "", "Account name (required)")
	accountCreateCmd.MarkFlagRequired("name")
	accountCreateCmd.Flags().StringP("type", "t", "cash", "Account type: cash, bank, wechat, alipay, or other")
	accountCreateCmd.Flags().Float64P("balance", "b", 0, "Initial balance")
	accountCreateCmd.Flags().String("icon", "", "Icon name for the account")
	accountsCmd.AddCommand(accountListCmd, accountCreateCmd)
}
