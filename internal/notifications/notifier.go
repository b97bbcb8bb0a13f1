package notifications

import "context"

type SendAccountWelcomeInput struct {
	Email     string
	FirstName string
	Role      string
}

// Notifier delivers the post-registration welcome message. Delivery is
// best-effort: registration never fails because a provider is down.
type Notifier interface {
	SendAccountWelcome(ctx context.Context, input SendAccountWelcomeInput) error
}
