package ports

import (
	"context"

	"github.com/hive-corporation/f2b-notifier/internal/core/domain"
)

// Notifier defines the interface for sending notifications to external systems
type Notifier interface {
	// Notify posts text to the chat destination identified by webhookPath.
	// Failures are reported in the returned Delivery, never as a panic or exit.
	Notify(ctx context.Context, webhookPath, text string) domain.Delivery
}
