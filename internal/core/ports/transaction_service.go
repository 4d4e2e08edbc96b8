package ports

import (
	"context"

	"github.com/davinci-it/expense-tracker/internal/core/domain"
)

// AddTransactionInput carries a fully specified new income or expense.
type AddTransactionInput struct {
	Kind        domain.TransactionKind
	UserID      string
	Title       string
	Amount      float64
	Category    string
	Description string
	Date        string
}

// UpdateTransactionInput carries a partial update. Nil fields keep their
// prior value; supplied fields are validated individually.
type UpdateTransactionInput struct {
	Kind        domain.TransactionKind
	ID          string
	UserID      string
	Title       *string
	Amount      *float64
	Category    *string
	Description *string
	Date        *string
}

// ListTransactionsInput carries the paginated list parameters.
type ListTransactionsInput struct {
	Kind     domain.TransactionKind
	UserID   string
	Page     int
	PageSize int
}

// TransactionPage is one page of results plus the aggregates for the entire
// collection, not just the page.
type TransactionPage struct {
	Items             []*domain.Transaction
	Page              int
	PageSize          int
	TotalCount        int64
	TotalPages        int
	Total             float64
	ExpensePercentage float64
}

// TransactionList is the unpaged variant.
type TransactionList struct {
	Items             []*domain.Transaction
	Total             float64
	ExpensePercentage float64
}

// TransactionService defines the add/update/delete/list use cases shared by
// incomes and expenses. Expense mutations additionally enforce the
// balance-sufficiency rule; every mutation drives the alert machine.
type TransactionService interface {
	Add(ctx context.Context, in AddTransactionInput) (*domain.Transaction, error)
	Update(ctx context.Context, in UpdateTransactionInput) (*domain.Transaction, error)
	Delete(ctx context.Context, kind domain.TransactionKind, id, userID string) error
	List(ctx context.Context, in ListTransactionsInput) (*TransactionPage, error)
	ListAll(ctx context.Context, kind domain.TransactionKind, userID string) (*TransactionList, error)
}
