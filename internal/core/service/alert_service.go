package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/davinci-it/expense-tracker/internal/api/metrics"
	"github.com/davinci-it/expense-tracker/internal/core/domain"
	"github.com/davinci-it/expense-tracker/internal/core/ports"
)

// AlertService is the per-user threshold notification state machine. Each
// user carries five independent flags, one per level in domain.AlertLevels.
// Crossing a level upward with a clear flag sends a mail and sets the flag;
// dropping back below a level clears it so a later crossing re-fires.
type AlertService struct {
	ledger ports.LedgerQuery
	users  ports.UserRepository
	mailer ports.Mailer
	log    zerolog.Logger
}

func NewAlertService(ledger ports.LedgerQuery, users ports.UserRepository, mailer ports.Mailer, log zerolog.Logger) *AlertService {
	return &AlertService{ledger: ledger, users: users, mailer: mailer, log: log}
}

// Evaluate runs one transition of the machine against the user's current
// expense percentage and persists the user afterwards. Mail failures leave
// the flag clear (the alert re-fires on the next evaluation that still
// crosses the level); they never fail the evaluation itself.
func (s *AlertService) Evaluate(ctx context.Context, user *domain.User) error {
	start := time.Now()
	defer func() {
		metrics.AlertEvaluationDuration.Observe(time.Since(start).Seconds())
	}()

	snap, err := s.ledger.Snapshot(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("alert evaluation: %w", err)
	}

	// Without income the percentage is degenerate, not meaningfully zero:
	// skip evaluation entirely and leave every flag untouched.
	if snap.TotalIncome == 0 {
		s.log.Debug().Str("user_id", user.ID).Msg("no income recorded, skipping alert evaluation")
		return nil
	}

	pct := snap.ExpensePercentage
	s.log.Debug().Str("user_id", user.ID).Float64("expense_percentage", pct).Msg("evaluating alert thresholds")

	for _, level := range domain.AlertLevels {
		notified := user.AlertThresholds.Flag(level)

		switch {
		case pct >= float64(level) && !notified:
			subject := fmt.Sprintf("Spending Alert %d%%", level)
			if err := s.mailer.Send(ctx, user.Email, subject, alertBody(user.Username, level)); err != nil {
				metrics.AlertSendFailuresTotal.WithLabelValues(strconv.Itoa(level)).Inc()
				s.log.Error().Err(err).
					Str("user_id", user.ID).
					Int("threshold", level).
					Msg("alert email failed, will retry on next evaluation")
				continue
			}
			user.AlertThresholds.SetFlag(level, true)
			metrics.AlertsSentTotal.WithLabelValues(strconv.Itoa(level)).Inc()
			s.log.Info().
				Str("user_id", user.ID).
				Int("threshold", level).
				Float64("expense_percentage", pct).
				Msg("threshold alert sent")

		case pct < float64(level) && notified:
			user.AlertThresholds.SetFlag(level, false)
			metrics.AlertsResetTotal.WithLabelValues(strconv.Itoa(level)).Inc()
			s.log.Info().
				Str("user_id", user.ID).
				Int("threshold", level).
				Msg("threshold re-armed")
		}
	}

	// Persist unconditionally; a no-op write is acceptable and keeps the
	// stored flags in step with what was just evaluated.
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("alert evaluation: persist flags: %w", err)
	}
	return nil
}

func alertBody(username string, level int) string {
	return fmt.Sprintf(`Hello %s,

You have spent %d%% of your income.

We would like to let you know that you have already spent %d%% of your
recorded income. At this rate you may not finish the month in the best
financial shape. We encourage you to keep a close eye on your expenses and
adjust your budget if necessary.

If you have any questions or need help managing your finances, do not
hesitate to contact us.

Kind regards,
The Expense Tracker team`, username, level, level)
}
