package lifecycle

import "time"

type Status string

const (
	StatusNew            Status = "New"
	StatusOpen           Status = "Open"
	StatusPending        Status = "Pending"
	StatusQuoteRequested Status = "Quote Requested"
	StatusQuoteSent      Status = "Quote Sent"
	StatusApproved       Status = "Approved"
	StatusQuoteDeclined  Status = "Quote Declined"
	StatusScheduled      Status = "Scheduled"
	StatusCompleted      Status = "Completed"
	StatusClosed         Status = "Closed"
	StatusCancelled      Status = "Cancelled"
)

var allStatuses = []Status{
	StatusNew, StatusOpen, StatusPending, StatusQuoteRequested,
	StatusQuoteSent, StatusApproved, StatusQuoteDeclined,
	StatusScheduled, StatusCompleted, StatusClosed, StatusCancelled,
}

func Statuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

func (s Status) Valid() bool {
	for _, v := range allStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Selectable reports whether staff can pick the status from the status
// dropdown. Approved and Quote Declined are owned by the quote
// decision flow and never set directly. New is assigned at creation
// and left behind on the first staff view.
func (s Status) Selectable() bool {
	switch s {
	case StatusNew, StatusApproved, StatusQuoteDeclined:
		return false
	}
	return s.Valid()
}

// Finishing statuses mark the work as done and carry the Completed tag.
func (s Status) Finishing() bool {
	return s == StatusCompleted || s == StatusClosed
}

// DateLayout is the scheduling and follow-up date format (MM/DD/YYYY).
const DateLayout = "01/02/2006"

func FormatDate(t time.Time) string { return t.Format(DateLayout) }

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
