package ports

import "context"

// Mailer is the outbound notification gateway. Implementations must not
// panic; a non-nil error means "not yet delivered" and callers are free to
// retry on a later evaluation.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
