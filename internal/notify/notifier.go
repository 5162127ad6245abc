// Package notify pushes engine events to external channels. Notifications go
// to every registered sender (Telegram, Discord) and can be filtered by event
// type so operators only hear about the refreshes they care about.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Event types emitted by the engine and the demo loader.
const (
	EventRefreshCompleted = "refresh_completed"
	EventRefreshFailed    = "refresh_failed"
	EventDemoLoaded       = "demo_loaded"
	EventExportCompleted  = "export_completed"
)

// Sender is one delivery channel.
type Sender interface {
	// Send delivers a notification with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name identifies the sender in logs, e.g. "telegram".
	Name() string
}

// Notifier fans a notification out to all senders. Notify drops events whose
// type is not in the configured allow list; an empty list allows everything.
type Notifier struct {
	senders []Sender
	events  map[string]bool
	logger  *slog.Logger
}

// NewNotifier creates a Notifier delivering to the given senders.
func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		allowed[strings.TrimSpace(e)] = true
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Notify delivers to all senders when the event type passes the filter.
func (n *Notifier) Notify(ctx context.Context, event, title, message string) error {
	if len(n.events) > 0 && !n.events[event] {
		n.logger.DebugContext(ctx, "event filtered out",
			slog.String("event", event),
		)
		return nil
	}
	return n.dispatch(ctx, title, message)
}

// RefreshCompleted reports a finished refresh pass with its counters.
func (n *Notifier) RefreshCompleted(ctx context.Context, userID string, updated, considered, skipped int) error {
	title := "Refresh completed"
	message := fmt.Sprintf("user %s: %d opportunities updated (%d listings considered, %d skipped)",
		userID, updated, considered, skipped)
	return n.Notify(ctx, EventRefreshCompleted, title, message)
}

// RefreshFailed reports a refresh pass that aborted with an error.
func (n *Notifier) RefreshFailed(ctx context.Context, userID string, cause error) error {
	title := "Refresh failed"
	message := fmt.Sprintf("user %s: %v", userID, cause)
	return n.Notify(ctx, EventRefreshFailed, title, message)
}

// DemoLoaded reports a seeded demo dataset.
func (n *Notifier) DemoLoaded(ctx context.Context, userID string, products, listings, sales int) error {
	title := "Demo data loaded"
	message := fmt.Sprintf("user %s: %d products, %d listings, %d observed sales",
		userID, products, listings, sales)
	return n.Notify(ctx, EventDemoLoaded, title, message)
}

// ExportCompleted reports an uploaded opportunity snapshot.
func (n *Notifier) ExportCompleted(ctx context.Context, userID, path string, count int) error {
	title := "Export completed"
	message := fmt.Sprintf("user %s: %d opportunities written to %s", userID, count, path)
	return n.Notify(ctx, EventExportCompleted, title, message)
}

// dispatch sends to every sender, collecting failures so one broken channel
// does not block the rest.
func (n *Notifier) dispatch(ctx context.Context, title, message string) error {
	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
			continue
		}
		n.logger.DebugContext(ctx, "notification sent",
			slog.String("sender", s.Name()),
			slog.String("title", title),
		)
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}
