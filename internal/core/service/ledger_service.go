package service

import (
	"context"

	"github.com/davinci-it/expense-tracker/internal/core/domain"
	"github.com/davinci-it/expense-tracker/internal/core/ports"
)

// LedgerService derives balance figures from the transaction store. Nothing
// is cached or persisted: every call re-aggregates the user's full
// transaction set, so the result is always consistent with the current data
// at the cost of an aggregate scan.
type LedgerService struct {
	repo ports.TransactionRepository
}

func NewLedgerService(repo ports.TransactionRepository) *LedgerService {
	return &LedgerService{repo: repo}
}

// TotalIncome is the sum of the user's income amounts, 0 when there are none.
func (s *LedgerService) TotalIncome(ctx context.Context, userID string) (float64, error) {
	return s.repo.SumAmounts(ctx, domain.KindIncome, userID)
}

// TotalExpense is the sum of the user's expense amounts, 0 when there are none.
func (s *LedgerService) TotalExpense(ctx context.Context, userID string) (float64, error) {
	return s.repo.SumAmounts(ctx, domain.KindExpense, userID)
}

// Balance is total income minus total expense; it may be negative.
func (s *LedgerService) Balance(ctx context.Context, userID string) (float64, error) {
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return 0, err
	}
	return snap.Balance, nil
}

// ExpensePercentage is totalExpense/totalIncome*100, defined as 0 when total
// income is 0. Percentage of spend against zero income is reported as zero,
// not infinite.
func (s *LedgerService) ExpensePercentage(ctx context.Context, userID string) (float64, error) {
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return 0, err
	}
	return snap.ExpensePercentage, nil
}

// Snapshot computes all four derived figures in one pass over the two
// aggregates.
func (s *LedgerService) Snapshot(ctx context.Context, userID string) (*ports.LedgerSnapshot, error) {
	income, err := s.repo.SumAmounts(ctx, domain.KindIncome, userID)
	if err != nil {
		return nil, err
	}
	expense, err := s.repo.SumAmounts(ctx, domain.KindExpense, userID)
	if err != nil {
		return nil, err
	}

	snap := &ports.LedgerSnapshot{
		TotalIncome:  income,
		TotalExpense: expense,
		Balance:      income - expense,
	}
	if income > 0 {
		snap.ExpensePercentage = expense / income * 100
	}
	return snap, nil
}
