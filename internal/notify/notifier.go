package notify

import (
	"context"
	"fmt"
)

// Notifier delivers out-of-app notifications (email and browser push).
// In-app notification rows and SSE broadcasts are written by services
// inside the transaction; this interface only covers the slow channels.
type Notifier interface {
	NotifyStatusChanged(ctx context.Context, e StatusChangedEvent) error
	NotifyQuoteApprovalNeeded(ctx context.Context, e QuoteApprovalNeededEvent) error
	NotifyQuoteDecision(ctx context.Context, e QuoteDecisionEvent) error
	NotifyNoteMention(ctx context.Context, e NoteMentionEvent) error
	NotifyFollowUpReminder(ctx context.Context, e FollowUpReminderEvent) error
}

// NoopNotifier is used when mail and push are disabled.
type NoopNotifier struct{}

func (NoopNotifier) NotifyStatusChanged(context.Context, StatusChangedEvent) error { return nil }
func (NoopNotifier) NotifyQuoteApprovalNeeded(context.Context, QuoteApprovalNeededEvent) error {
	return nil
}
func (NoopNotifier) NotifyQuoteDecision(context.Context, QuoteDecisionEvent) error     { return nil }
func (NoopNotifier) NotifyNoteMention(context.Context, NoteMentionEvent) error         { return nil }
func (NoopNotifier) NotifyFollowUpReminder(context.Context, FollowUpReminderEvent) error {
	return nil
}

// QueueNotifier turns events into queue jobs: one email job and one
// push job per recipient.
type QueueNotifier struct {
	queue   *Queue
	siteURL string
}

func NewQueueNotifier(queue *Queue, siteURL string) *QueueNotifier {
	return &QueueNotifier{queue: queue, siteURL: siteURL}
}

func (n *QueueNotifier) link(workOrderID uint) string {
	return fmt.Sprintf("%s/requests/%d", n.siteURL, workOrderID)
}

func (n *QueueNotifier) fanOut(ctx context.Context, userID uint, email, subject, body, link string) error {
	var firstErr error
	if email != "" {
		if err := n.queue.Enqueue(ctx, Job{
			Kind: JobEmail, UserID: userID, Recipient: email,
			Subject: subject, Body: body, Link: link,
		}); err != nil {
			firstErr = err
		}
	}
	if err := n.queue.Enqueue(ctx, Job{
		Kind: JobPush, UserID: userID,
		Subject: subject, Body: body, Link: link,
	}); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (n *QueueNotifier) NotifyStatusChanged(ctx context.Context, e StatusChangedEvent) error {
	subject := fmt.Sprintf("Status Update for Request #%d", e.WorkOrderID)
	body := fmt.Sprintf("The status of your Request #%d for property %s was changed from %s to %s.",
		e.WorkOrderID, e.Property, e.OldStatus, e.NewStatus)
	return n.fanOut(ctx, e.RecipientID, e.RecipientEmail, subject, body, n.link(e.WorkOrderID))
}

func (n *QueueNotifier) NotifyQuoteApprovalNeeded(ctx context.Context, e QuoteApprovalNeededEvent) error {
	subject := fmt.Sprintf("Quote Approval Needed for Request #%d", e.WorkOrderID)
	body := fmt.Sprintf("A quote has been sent and requires your approval for Request #%d at %s.",
		e.WorkOrderID, e.Property)
	return n.fanOut(ctx, e.RecipientID, e.RecipientEmail, subject, body, n.link(e.WorkOrderID))
}

func (n *QueueNotifier) NotifyQuoteDecision(ctx context.Context, e QuoteDecisionEvent) error {
	subject := fmt.Sprintf("Quote %s for Request #%d", e.Decision, e.WorkOrderID)
	body := fmt.Sprintf("The quote from %s on Request #%d was %s.",
		e.VendorName, e.WorkOrderID, e.Decision)
	return n.fanOut(ctx, e.RecipientID, e.RecipientEmail, subject, body, n.link(e.WorkOrderID))
}

func (n *QueueNotifier) NotifyNoteMention(ctx context.Context, e NoteMentionEvent) error {
	subject := fmt.Sprintf("You were mentioned on Request #%d", e.WorkOrderID)
	body := fmt.Sprintf("%s mentioned you in a note on Request #%d.", e.AuthorName, e.WorkOrderID)
	return n.fanOut(ctx, e.RecipientID, e.RecipientEmail, subject, body, n.link(e.WorkOrderID))
}

func (n *QueueNotifier) NotifyFollowUpReminder(ctx context.Context, e FollowUpReminderEvent) error {
	subject := fmt.Sprintf("Follow-up Reminder for Request #%d", e.WorkOrderID)
	body := fmt.Sprintf("Follow-up reminder for Request #%d (%s)", e.WorkOrderID, e.Property)
	return n.fanOut(ctx, e.RecipientID, e.RecipientEmail, subject, body, n.link(e.WorkOrderID))
}

var _ Notifier = (*QueueNotifier)(nil)
