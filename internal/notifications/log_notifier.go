package notifications

import (
	"context"
	"log/slog"
)

// LogNotifier stands in for a real mail provider; it just writes the
// welcome message to the log.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendAccountWelcome(ctx context.Context, in SendAccountWelcomeInput) error {
	n.log.InfoContext(ctx, "notification.account_welcome",
		"email", in.Email,
		"firstName", in.FirstName,
		"role", in.Role,
	)
	return nil
}
