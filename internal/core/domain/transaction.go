package domain

import (
	"errors"
	"time"
)

// TransactionKind distinguishes the two ledger sides. Incomes and expenses
// share the same shape and differ only in sign when aggregated.
type TransactionKind string

const (
	KindIncome  TransactionKind = "income"
	KindExpense TransactionKind = "expense"
)

var ErrTransactionNotFound = errors.New("transaction not found")
var ErrNoTransactions = errors.New("no transactions found")
var ErrBalanceExceeded = errors.New("expense amount exceeds available balance")
var ErrNoFieldsToUpdate = errors.New("at least one field is required for update")
var ErrNoChangesDetected = errors.New("no changes detected")

// incomeCategories and expenseCategories are the closed category sets.
// Membership is checked by ValidateCategory; no other categories are accepted.
var incomeCategories = map[string]struct{}{
	"salary":      {},
	"freelance":   {},
	"investments": {},
	"youtube":     {},
	"rent":        {},
	"bitcoin":     {},
	"other":       {},
}

var expenseCategories = map[string]struct{}{
	"groceries":      {},
	"utilities":      {},
	"transportation": {},
	"healthcare":     {},
	"entertainment":  {},
	"clothing":       {},
	"other":          {},
}

// ValidCategory reports whether category belongs to the closed set for kind.
func (k TransactionKind) ValidCategory(category string) bool {
	switch k {
	case KindIncome:
		_, ok := incomeCategories[category]
		return ok
	case KindExpense:
		_, ok := expenseCategories[category]
		return ok
	}
	return false
}

// Transaction is a single income or expense entry owned by exactly one user.
// Date is kept as the raw YYYY-MM-DD string the client submitted.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Kind        TransactionKind `json:"-"`
	Title       string          `json:"title"`
	Amount      float64         `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
