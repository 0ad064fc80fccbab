package lifecycle

import (
	"fmt"
	"time"
)

// State is the mutable lifecycle snapshot of a work order. Services
// load it from the row, apply an operation, and write the result back
// inside the same transaction.
type State struct {
	Status          Status
	Tags            TagSet
	VendorAssigned  bool
	ScheduledDate   *time.Time
	DateCompleted   *time.Time
	FollowUpDate    *time.Time
	LastFollowUp    *time.Time
	ApprovedQuoteID *uint
	Deleted         bool
}

// Result reports what an operation did. Notice is set instead of Audit
// when the operation was an informational no-op.
type Result struct {
	Changed       bool
	Notice        string
	Audit         []string
	NotifyAuthor  bool
	NotifyManager bool
}

func noop(format string, args ...interface{}) *Result {
	return &Result{Notice: fmt.Sprintf(format, args...)}
}

func sameDay(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ChangeStatus applies a staff-selected status. Scheduling requires an
// assigned vendor and a date; moving anywhere else clears the
// scheduled date. Finishing statuses pick up the Completed tag and
// stamp the completion time once.
func ChangeStatus(st *State, to Status, scheduled *time.Time, now time.Time) (*Result, error) {
	if !to.Valid() {
		return nil, Invalid("unknown status %q", to)
	}
	if !to.Selectable() {
		if to == StatusNew {
			return nil, Invalid("status %q is assigned at creation and cannot be selected", to)
		}
		return nil, Invalid("status %q is set by the quote workflow and cannot be selected", to)
	}
	if to == StatusScheduled {
		if !st.VendorAssigned {
			return nil, Invalid("a vendor must be assigned before scheduling")
		}
		if scheduled == nil {
			return nil, Invalid("a scheduled date is required to change the status to \"Scheduled\"")
		}
	}

	old := st.Status
	if old == to {
		if to == StatusScheduled && !sameDay(st.ScheduledDate, scheduled) {
			st.ScheduledDate = scheduled
			return &Result{
				Changed: true,
				Audit:   []string{fmt.Sprintf("Scheduled date updated to %s.", FormatDate(*scheduled))},
			}, nil
		}
		return noop("Status is already set to the selected value."), nil
	}

	st.Status = to
	line := fmt.Sprintf("Changed status from %s to %s.", old, to)

	if to == StatusScheduled {
		st.ScheduledDate = scheduled
		line = fmt.Sprintf("Changed status from %s to %s for %s.", old, to, FormatDate(*scheduled))
	} else {
		st.ScheduledDate = nil
	}

	if to.Finishing() {
		st.Tags.Add(TagCompleted)
		if st.DateCompleted == nil {
			t := now
			st.DateCompleted = &t
		}
		line += " Tagged as 'Completed'."
	} else if old.Finishing() {
		st.Tags.Remove(TagCompleted)
	}

	return &Result{
		Changed:       true,
		Audit:         []string{line},
		NotifyAuthor:  true,
		NotifyManager: to == StatusQuoteSent,
	}, nil
}

// FirstView promotes a New work order to Open when staff first opens it.
func FirstView(st *State) *Result {
	if st.Status != StatusNew {
		return &Result{}
	}
	st.Status = StatusOpen
	return &Result{
		Changed:      true,
		Audit:        []string{"Status changed to Open upon first view by admin staff."},
		NotifyAuthor: true,
	}
}

// Cancel terminates a work order and clears the scheduling and quote
// approval fields. Tags are deliberately kept.
func Cancel(st *State, actorName, actorRole string) (*Result, error) {
	if st.Status == StatusClosed || st.Status == StatusCancelled {
		return nil, Conflict("this request cannot be cancelled as it is already %s", st.Status)
	}
	if st.Deleted {
		return nil, Conflict("cannot cancel a deleted request; restore it first")
	}
	old := st.Status
	st.Status = StatusCancelled
	st.ScheduledDate = nil
	st.FollowUpDate = nil
	st.ApprovedQuoteID = nil
	return &Result{
		Changed:      true,
		Audit:        []string{fmt.Sprintf("Request cancelled by %s (%s). Status changed from %s.", actorName, actorRole, old)},
		NotifyAuthor: true,
	}, nil
}

// AddTag handles staff-managed tags. Follow-up needed always requires
// a date; re-adding it with a new date only moves the date.
func AddTag(st *State, name string, followUp *time.Time) (*Result, error) {
	if !KnownTag(name) {
		return nil, Invalid("unknown tag %q", name)
	}
	if WorkflowTag(name) {
		return nil, Invalid("the %q tag is managed by the workflow and cannot be added directly", name)
	}

	if name == TagFollowUp {
		if followUp == nil {
			return nil, Invalid("a follow-up date is required when adding the \"Follow-up needed\" tag")
		}
		had := st.Tags.Has(name)
		dateChanged := !sameDay(st.FollowUpDate, followUp)
		if had && !dateChanged {
			return noop("Request is already tagged as '%s' with the specified date.", name), nil
		}
		st.FollowUpDate = followUp
		if !had {
			st.Tags.Add(name)
			return &Result{
				Changed: true,
				Audit:   []string{fmt.Sprintf("Request tagged as '%s'. Date set to %s.", name, FormatDate(*followUp))},
			}, nil
		}
		return &Result{
			Changed: true,
			Audit:   []string{fmt.Sprintf("Follow-up date updated to %s.", FormatDate(*followUp))},
		}, nil
	}

	if st.Tags.Has(name) {
		return noop("Request is already tagged as '%s'.", name), nil
	}
	st.Tags.Add(name)
	return &Result{
		Changed: true,
		Audit:   []string{fmt.Sprintf("Request tagged as '%s'.", name)},
	}, nil
}

// RemoveTag drops a tag. Removing Follow-up needed also clears its
// date. Permission checks for workflow tags live with the caller.
func RemoveTag(st *State, name string) (*Result, error) {
	if !KnownTag(name) {
		return nil, Invalid("unknown tag %q", name)
	}
	if name == TagCompleted {
		return nil, Invalid("the %q tag is cleared by status changes and cannot be removed directly", name)
	}
	if !st.Tags.Has(name) {
		return noop("Tag '%s' was not found.", name), nil
	}
	st.Tags.Remove(name)
	line := fmt.Sprintf("Tag '%s' removed.", name)
	if name == TagFollowUp {
		st.FollowUpDate = nil
		line += " Follow-up date cleared."
	}
	return &Result{Changed: true, Audit: []string{line}}, nil
}

// FollowUpDue reports whether the reminder sweep should fire for this
// state on the given day.
func FollowUpDue(st *State, today time.Time) bool {
	if st.Deleted || st.FollowUpDate == nil || !st.Tags.Has(TagFollowUp) {
		return false
	}
	y, m, d := today.Date()
	cutoff := time.Date(y, m, d, 23, 59, 59, 0, today.Location())
	return !st.FollowUpDate.After(cutoff)
}

// ApplyFollowUpReminder clears the follow-up tag and date after a
// reminder goes out and records when it was sent.
func ApplyFollowUpReminder(st *State, now time.Time) *Result {
	st.Tags.Remove(TagFollowUp)
	st.FollowUpDate = nil
	t := now
	st.LastFollowUp = &t
	return &Result{
		Changed: true,
		Audit:   []string{"Automated follow-up reminder sent; tag/date cleared."},
	}
}
