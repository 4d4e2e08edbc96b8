package ports

import (
	"context"

	"github.com/davinci-it/expense-tracker/internal/core/domain"
)

// ListPage carries pagination parameters for transaction listings.
// Page is 1-based.
type ListPage struct {
	Page     int
	PageSize int
}

// TransactionRepository defines persistence for incomes and expenses. Every
// operation is scoped by kind; incomes and expenses live in separate
// collections but share one contract.
type TransactionRepository interface {
	Create(ctx context.Context, t *domain.Transaction) (*domain.Transaction, error)
	// FindOwned retrieves the transaction matching (id, userID). A transaction
	// owned by someone else is indistinguishable from a missing one:
	// domain.ErrTransactionNotFound either way.
	FindOwned(ctx context.Context, kind domain.TransactionKind, id, userID string) (*domain.Transaction, error)
	Update(ctx context.Context, t *domain.Transaction) error
	// DeleteOwned removes the transaction matching (id, userID), with the same
	// ownership conflation as FindOwned.
	DeleteOwned(ctx context.Context, kind domain.TransactionKind, id, userID string) error
	// List returns one page of the user's transactions in insertion order
	// (created_at ascending, _id tiebreak) plus the total count.
	List(ctx context.Context, kind domain.TransactionKind, userID string, page ListPage) ([]*domain.Transaction, int64, error)
	ListAll(ctx context.Context, kind domain.TransactionKind, userID string) ([]*domain.Transaction, error)
	// SumAmounts returns the aggregate sum of the user's amounts for kind,
	// 0 when the user has no transactions of that kind.
	SumAmounts(ctx context.Context, kind domain.TransactionKind, userID string) (float64, error)
}
