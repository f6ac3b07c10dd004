package ports

import "context"

// Mailer is the outbound email capability. Send either delivers the
// message or returns an error; there is no partial outcome and no retry
// here.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
