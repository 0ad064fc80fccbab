package lifecycle

import "fmt"

// QuoteState is the decision snapshot of a single quote. Quotes start
// out Pending; a nil Decision means a property manager's decision was
// cleared, which is distinct from never having decided.
type QuoteState struct {
	ID         uint
	VendorName string
	Decision   *string
}

const (
	DecisionPending  = "Pending"
	DecisionApproved = "Approved"
	DecisionDeclined = "Declined"
)

func (q *QuoteState) approved() bool {
	return q.Decision != nil && *q.Decision == DecisionApproved
}

func (q *QuoteState) declined() bool {
	return q.Decision != nil && *q.Decision == DecisionDeclined
}

func anyApproved(quotes []*QuoteState) bool {
	for _, q := range quotes {
		if q.approved() {
			return true
		}
	}
	return false
}

func anyDeclined(quotes []*QuoteState) bool {
	for _, q := range quotes {
		if q.declined() {
			return true
		}
	}
	return false
}

// anyActive reports whether any quote is still in play: pending or
// decided, as opposed to cleared.
func anyActive(quotes []*QuoteState) bool {
	for _, q := range quotes {
		if q.Decision != nil {
			return true
		}
	}
	return false
}

// ApproveQuote marks a quote approved, points the work order at it and
// promotes Quote Sent to Approved. Approval always displaces any
// Declined tag.
func ApproveQuote(st *State, q *QuoteState) (*Result, error) {
	if q.approved() {
		return noop("Quote from %s is already approved.", q.VendorName), nil
	}

	d := DecisionApproved
	q.Decision = &d
	id := q.ID
	st.ApprovedQuoteID = &id
	st.Tags.Add(TagApproved)
	st.Tags.Remove(TagDeclined)

	line := fmt.Sprintf("Quote from %s approved.", q.VendorName)
	if st.Status == StatusQuoteSent {
		st.Status = StatusApproved
		line += fmt.Sprintf(" Work Order status changed to %s.", st.Status)
	}
	return &Result{Changed: true, Audit: []string{line}, NotifyAuthor: true}, nil
}

// DeclineQuote marks a quote declined. The work order only carries the
// Declined tag and status while no other quote remains approved;
// approval takes precedence.
func DeclineQuote(st *State, q *QuoteState, others []*QuoteState) (*Result, error) {
	if q.declined() {
		return noop("Quote from %s is already declined.", q.VendorName), nil
	}

	d := DecisionDeclined
	q.Decision = &d
	if st.ApprovedQuoteID != nil && *st.ApprovedQuoteID == q.ID {
		st.ApprovedQuoteID = nil
	}

	otherApproved := anyApproved(others)
	if !otherApproved {
		st.Tags.Remove(TagApproved)
		st.Tags.Add(TagDeclined)
	} else {
		st.Tags.Remove(TagDeclined)
	}

	line := fmt.Sprintf("Quote from %s declined.", q.VendorName)
	if (st.Status == StatusQuoteSent || st.Status == StatusApproved) && !otherApproved {
		st.Status = StatusQuoteDeclined
		line += fmt.Sprintf(" Work Order status changed to %s.", st.Status)
	}
	return &Result{Changed: true, Audit: []string{line}, NotifyAuthor: true}, nil
}

// ClearQuoteDecision wipes a quote's decision and re-derives the work
// order's tags and status from the remaining quotes. While a sibling
// is still pending the order falls back to Quote Sent rather than
// Open.
func ClearQuoteDecision(st *State, q *QuoteState, others []*QuoteState) (*Result, error) {
	if !q.approved() && !q.declined() {
		return noop("Quote from %s has no decision to clear.", q.VendorName), nil
	}

	original := *q.Decision
	q.Decision = nil
	if st.ApprovedQuoteID != nil && *st.ApprovedQuoteID == q.ID {
		st.ApprovedQuoteID = nil
	}

	otherApproved := anyApproved(others)
	otherDeclined := anyDeclined(others)
	if !otherApproved {
		st.Tags.Remove(TagApproved)
	}
	if !otherDeclined {
		st.Tags.Remove(TagDeclined)
	}

	line := fmt.Sprintf("Status '%s' for quote from %s cleared.", original, q.VendorName)

	if (st.Status == StatusApproved || st.Status == StatusQuoteDeclined) && !otherApproved && !otherDeclined {
		if anyActive(others) {
			st.Status = StatusQuoteSent
		} else {
			st.Status = StatusOpen
		}
		line += fmt.Sprintf(" Work Order status reset to %s.", st.Status)
	} else if st.Status == StatusQuoteDeclined && otherApproved {
		st.Status = StatusApproved
		line += fmt.Sprintf(" Work Order status reset to %s.", st.Status)
	}

	return &Result{Changed: true, Audit: []string{line}}, nil
}

// RemoveQuote performs the lifecycle bookkeeping for deleting a quote:
// the approved reference is released and the Approved tag dropped when
// no other approved quote remains. The Declined tag is left alone.
func RemoveQuote(st *State, q *QuoteState, others []*QuoteState) *Result {
	var audit []string
	if st.ApprovedQuoteID != nil && *st.ApprovedQuoteID == q.ID {
		st.ApprovedQuoteID = nil
		audit = append(audit, "Approved quote reference cleared due to quote deletion.")
	}
	if !anyApproved(others) {
		st.Tags.Remove(TagApproved)
	}
	return &Result{Changed: true, Audit: audit}
}
