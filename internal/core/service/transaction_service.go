package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/davinci-it/expense-tracker/internal/api/metrics"
	"github.com/davinci-it/expense-tracker/internal/core/domain"
	"github.com/davinci-it/expense-tracker/internal/core/ports"
)

// TransactionService implements the income and expense use cases. Expense
// mutations are gated by the balance-sufficiency rule; every mutation, income
// mutations included, re-derives the balance and drives the alert machine
// with the post-mutation state.
type TransactionService struct {
	repo   ports.TransactionRepository
	users  ports.UserRepository
	ledger ports.LedgerQuery
	alerts ports.AlertEvaluator
	logger zerolog.Logger
}

func NewTransactionService(
	repo ports.TransactionRepository,
	users ports.UserRepository,
	ledger ports.LedgerQuery,
	alerts ports.AlertEvaluator,
	logger zerolog.Logger,
) *TransactionService {
	return &TransactionService{repo: repo, users: users, ledger: ledger, alerts: alerts, logger: logger}
}

// Add validates, applies the expense balance gate, persists, and drives the
// alert machine. An expense equal to the full remaining balance is allowed;
// the balance may reach exactly zero but never go below through Add.
func (s *TransactionService) Add(ctx context.Context, in ports.AddTransactionInput) (*domain.Transaction, error) {
	if err := domain.ValidateTransactionFields(in.Kind, in.Title, in.Description, in.Category, in.Amount, in.Date); err != nil {
		return nil, err
	}

	if in.Kind == domain.KindExpense {
		balance, err := s.ledger.Balance(ctx, in.UserID)
		if err != nil {
			return nil, fmt.Errorf("add expense: %w", err)
		}
		if in.Amount > balance {
			metrics.BalanceRejectionsTotal.WithLabelValues("add").Inc()
			return nil, domain.ErrBalanceExceeded
		}
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.Transaction{
		UserID:      in.UserID,
		Kind:        in.Kind,
		Title:       in.Title,
		Amount:      in.Amount,
		Category:    in.Category,
		Description: in.Description,
		Date:        in.Date,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("kind", string(in.Kind)).Msg("failed to create transaction")
		return nil, err
	}

	metrics.TransactionsCreatedTotal.WithLabelValues(string(in.Kind), in.Category).Inc()
	s.logger.Info().
		Str("transaction_id", created.ID).
		Str("user_id", in.UserID).
		Str("kind", string(in.Kind)).
		Float64("amount", in.Amount).
		Msg("transaction created")

	s.driveAlerts(ctx, in.UserID)
	return created, nil
}

// Update applies a partial update: only supplied fields are validated and
// changed. When an expense amount changes, the increase is checked against a
// balance computed before the update; that balance does not exclude the row
// being edited, so available headroom is under-counted by the row's old
// amount. Deliberately kept: this matches the observable behavior the
// endpoint has always had.
func (s *TransactionService) Update(ctx context.Context, in ports.UpdateTransactionInput) (*domain.Transaction, error) {
	existing, err := s.repo.FindOwned(ctx, in.Kind, in.ID, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Title == nil && in.Amount == nil && in.Category == nil && in.Description == nil && in.Date == nil {
		return nil, domain.ErrNoFieldsToUpdate
	}
	if noChanges(existing, in) {
		return nil, domain.ErrNoChangesDetected
	}

	if in.Title != nil {
		if err := domain.ValidateTitle(*in.Title); err != nil {
			return nil, err
		}
	}
	if in.Description != nil {
		if err := domain.ValidateDescription(*in.Description); err != nil {
			return nil, err
		}
	}
	if in.Category != nil {
		if err := domain.ValidateCategory(in.Kind, *in.Category); err != nil {
			return nil, err
		}
	}
	if in.Amount != nil {
		if err := domain.ValidateAmount(*in.Amount); err != nil {
			return nil, err
		}
	}
	if in.Date != nil {
		if err := domain.ValidateDate(*in.Date); err != nil {
			return nil, err
		}
	}

	if in.Kind == domain.KindExpense && in.Amount != nil && *in.Amount != existing.Amount {
		balance, err := s.ledger.Balance(ctx, in.UserID)
		if err != nil {
			return nil, fmt.Errorf("update expense: %w", err)
		}
		if *in.Amount-existing.Amount > balance {
			metrics.BalanceRejectionsTotal.WithLabelValues("update").Inc()
			return nil, domain.ErrBalanceExceeded
		}
	}

	if in.Title != nil {
		existing.Title = *in.Title
	}
	if in.Amount != nil {
		existing.Amount = *in.Amount
	}
	if in.Category != nil {
		existing.Category = *in.Category
	}
	if in.Description != nil {
		existing.Description = *in.Description
	}
	if in.Date != nil {
		existing.Date = *in.Date
	}
	existing.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, existing); err != nil {
		s.logger.Error().Err(err).Str("transaction_id", in.ID).Msg("failed to update transaction")
		return nil, err
	}

	s.logger.Info().
		Str("transaction_id", in.ID).
		Str("user_id", in.UserID).
		Str("kind", string(in.Kind)).
		Msg("transaction updated")

	s.driveAlerts(ctx, in.UserID)
	return existing, nil
}

// Delete removes the user's transaction and re-evaluates alerts. Deleting an
// expense only increases the balance, so no sufficiency check applies.
func (s *TransactionService) Delete(ctx context.Context, kind domain.TransactionKind, id, userID string) error {
	if err := s.repo.DeleteOwned(ctx, kind, id, userID); err != nil {
		return err
	}

	s.logger.Info().
		Str("transaction_id", id).
		Str("user_id", userID).
		Str("kind", string(kind)).
		Msg("transaction deleted")

	s.driveAlerts(ctx, userID)
	return nil
}

// List returns one page plus aggregates over the whole collection. An empty
// result is reported as domain.ErrNoTransactions, a distinct outcome rather
// than an empty page.
func (s *TransactionService) List(ctx context.Context, in ports.ListTransactionsInput) (*ports.TransactionPage, error) {
	if err := domain.ValidatePagination(in.Page, in.PageSize); err != nil {
		return nil, err
	}

	items, totalCount, err := s.repo.List(ctx, in.Kind, in.UserID, ports.ListPage{Page: in.Page, PageSize: in.PageSize})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrNoTransactions
	}

	total, err := s.repo.SumAmounts(ctx, in.Kind, in.UserID)
	if err != nil {
		return nil, err
	}

	page := &ports.TransactionPage{
		Items:      items,
		Page:       in.Page,
		PageSize:   in.PageSize,
		TotalCount: totalCount,
		TotalPages: int(math.Ceil(float64(totalCount) / float64(in.PageSize))),
		Total:      total,
	}
	if in.Kind == domain.KindExpense {
		pct, err := s.ledger.ExpensePercentage(ctx, in.UserID)
		if err != nil {
			return nil, err
		}
		page.ExpensePercentage = pct
	}
	return page, nil
}

// ListAll returns every transaction of the kind plus the aggregate total.
func (s *TransactionService) ListAll(ctx context.Context, kind domain.TransactionKind, userID string) (*ports.TransactionList, error) {
	items, err := s.repo.ListAll(ctx, kind, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrNoTransactions
	}

	var total float64
	for _, t := range items {
		total += t.Amount
	}

	list := &ports.TransactionList{Items: items, Total: total}
	if kind == domain.KindExpense {
		pct, err := s.ledger.ExpensePercentage(ctx, userID)
		if err != nil {
			return nil, err
		}
		list.ExpensePercentage = pct
	}
	return list, nil
}

// driveAlerts hands the post-mutation state to the alert machine. Alert
// delivery is best-effort: failures are logged and never surfaced to the
// caller, whose transaction has already been persisted.
func (s *TransactionService) driveAlerts(ctx context.Context, userID string) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("alert evaluation skipped: user lookup failed")
		return
	}
	if err := s.alerts.Evaluate(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("alert evaluation failed")
	}
}

// noChanges reports whether every supplied field equals the stored value.
func noChanges(t *domain.Transaction, in ports.UpdateTransactionInput) bool {
	if in.Title != nil && *in.Title != t.Title {
		return false
	}
	if in.Amount != nil && *in.Amount != t.Amount {
		return false
	}
	if in.Category != nil && *in.Category != t.Category {
		return false
	}
	if in.Description != nil && *in.Description != t.Description {
		return false
	}
	if in.Date != nil && *in.Date != t.Date {
		return false
	}
	return true
}
