package ports

import (
	"context"

	"github.com/davinci-it/expense-tracker/internal/core/domain"
)

// AlertEvaluator is the per-user threshold notification state machine. It is
// invoked after every balance-affecting mutation, always with the
// post-mutation state. Failures inside the machine are best-effort and must
// not fail the triggering command.
type AlertEvaluator interface {
	// Evaluate recomputes the user's expense percentage, fires or resets
	// threshold flags, and persists the user. The user's flags may be mutated
	// in place.
	Evaluate(ctx context.Context, user *domain.User) error
}
