package notify

// Events carry everything a delivery channel needs so workers never
// reach back into request state.

type StatusChangedEvent struct {
	WorkOrderID    uint
	Property       string
	OldStatus      string
	NewStatus      string
	RecipientID    uint
	RecipientName  string
	RecipientEmail string
}

// QuoteApprovalNeededEvent goes to the responsible property manager
// when a work order moves to Quote Sent.
type QuoteApprovalNeededEvent struct {
	WorkOrderID    uint
	Property       string
	RecipientID    uint
	RecipientName  string
	RecipientEmail string
}

type QuoteDecisionEvent struct {
	WorkOrderID    uint
	VendorName     string
	Decision       string
	RecipientID    uint
	RecipientName  string
	RecipientEmail string
}

type NoteMentionEvent struct {
	WorkOrderID    uint
	AuthorName     string
	RecipientID    uint
	RecipientName  string
	RecipientEmail string
}

type FollowUpReminderEvent struct {
	WorkOrderID    uint
	Property       string
	RecipientID    uint
	RecipientName  string
	RecipientEmail string
}
