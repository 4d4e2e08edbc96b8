package ports

import "context"

// LedgerSnapshot is the derived financial state of one user, recomputed from
// the full transaction set on every call and never cached.
type LedgerSnapshot struct {
	TotalIncome       float64
	TotalExpense      float64
	Balance           float64
	ExpensePercentage float64
}

// LedgerQuery exposes the aggregate reads over a user's transactions.
// ExpensePercentage is defined as 0 when total income is 0; that is a display
// policy, the alert machine applies its own zero-income rule.
type LedgerQuery interface {
	TotalIncome(ctx context.Context, userID string) (float64, error)
	TotalExpense(ctx context.Context, userID string) (float64, error)
	Balance(ctx context.Context, userID string) (float64, error)
	ExpensePercentage(ctx context.Context, userID string) (float64, error)
	Snapshot(ctx context.Context, userID string) (*LedgerSnapshot, error)
}
