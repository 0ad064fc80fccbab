package lifecycle

import "testing"

func quote(id uint, vendor string, decision *string) *QuoteState {
	return &QuoteState{ID: id, VendorName: vendor, Decision: decision}
}

func decided(d string) *string { return &d }

func TestApproveQuote(t *testing.T) {
	st := newState(StatusQuoteSent)
	q := quote(1, "ACME Plumbing", nil)

	res, err := ApproveQuote(st, q)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if q.Decision == nil || *q.Decision != DecisionApproved {
		t.Fatal("quote should be approved")
	}
	if st.ApprovedQuoteID == nil || *st.ApprovedQuoteID != 1 {
		t.Fatal("work order should reference the approved quote")
	}
	if !st.Tags.Has(TagApproved) || st.Tags.Has(TagDeclined) {
		t.Fatalf("unexpected tags: %v", st.Tags.List())
	}
	if st.Status != StatusApproved {
		t.Fatalf("expected Approved, got %s", st.Status)
	}
	if res.Audit[0] != "Quote from ACME Plumbing approved. Work Order status changed to Approved." {
		t.Fatalf("unexpected audit: %v", res.Audit)
	}
}

func TestApproveQuoteIsIdempotent(t *testing.T) {
	st := newState(StatusApproved)
	q := quote(1, "ACME Plumbing", decided(DecisionApproved))

	res, err := ApproveQuote(st, q)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if res.Changed || res.Notice == "" {
		t.Fatalf("expected informational no-op, got %+v", res)
	}
}

func TestApproveQuoteOutsideQuoteSentKeepsStatus(t *testing.T) {
	st := newState(StatusScheduled)
	q := quote(1, "ACME Plumbing", nil)

	res, err := ApproveQuote(st, q)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if st.Status != StatusScheduled {
		t.Fatalf("status should stay Scheduled, got %s", st.Status)
	}
	if res.Audit[0] != "Quote from ACME Plumbing approved." {
		t.Fatalf("unexpected audit: %v", res.Audit)
	}
}

func TestDeclineQuoteMovesStatusWhenNoOtherApproved(t *testing.T) {
	st := newState(StatusQuoteSent)
	q := quote(1, "ACME Plumbing", nil)

	res, err := DeclineQuote(st, q, nil)
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if !st.Tags.Has(TagDeclined) || st.Tags.Has(TagApproved) {
		t.Fatalf("unexpected tags: %v", st.Tags.List())
	}
	if st.Status != StatusQuoteDeclined {
		t.Fatalf("expected Quote Declined, got %s", st.Status)
	}
	if res.Audit[0] != "Quote from ACME Plumbing declined. Work Order status changed to Quote Declined." {
		t.Fatalf("unexpected audit: %v", res.Audit)
	}
}

func TestDeclineQuoteApprovalTakesPrecedence(t *testing.T) {
	st := newState(StatusApproved)
	st.Tags.Add(TagApproved)
	winner := uint(2)
	st.ApprovedQuoteID = &winner

	q := quote(1, "ACME Plumbing", nil)
	other := quote(2, "Best Electric", decided(DecisionApproved))

	_, err := DeclineQuote(st, q, []*QuoteState{other})
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if st.Status != StatusApproved {
		t.Fatalf("approved work order must keep its status, got %s", st.Status)
	}
	if !st.Tags.Has(TagApproved) || st.Tags.Has(TagDeclined) {
		t.Fatalf("approval should outweigh the decline: %v", st.Tags.List())
	}
	if st.ApprovedQuoteID == nil || *st.ApprovedQuoteID != 2 {
		t.Fatal("approved quote reference must survive")
	}
}

func TestDeclineApprovedQuoteReleasesReference(t *testing.T) {
	st := newState(StatusApproved)
	st.Tags.Add(TagApproved)
	id := uint(1)
	st.ApprovedQuoteID = &id

	q := quote(1, "ACME Plumbing", decided(DecisionApproved))
	if _, err := DeclineQuote(st, q, nil); err != nil {
		t.Fatalf("decline: %v", err)
	}
	if st.ApprovedQuoteID != nil {
		t.Fatal("reference to the declined quote must clear")
	}
	if st.Status != StatusQuoteDeclined {
		t.Fatalf("expected Quote Declined, got %s", st.Status)
	}
}

func TestClearQuoteDecisionResetsToOpen(t *testing.T) {
	st := newState(StatusApproved)
	st.Tags.Add(TagApproved)
	id := uint(1)
	st.ApprovedQuoteID = &id

	q := quote(1, "ACME Plumbing", decided(DecisionApproved))
	res, err := ClearQuoteDecision(st, q, nil)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if q.Decision != nil || st.ApprovedQuoteID != nil {
		t.Fatal("decision and reference must clear")
	}
	if st.Tags.Has(TagApproved) || st.Tags.Has(TagDeclined) {
		t.Fatalf("tags should clear: %v", st.Tags.List())
	}
	if st.Status != StatusOpen {
		t.Fatalf("expected Open with no quotes left decided, got %s", st.Status)
	}
	if res.Audit[0] != "Status 'Approved' for quote from ACME Plumbing cleared. Work Order status reset to Open." {
		t.Fatalf("unexpected audit: %v", res.Audit)
	}
}

func TestClearWithDeclinedSiblingKeepsState(t *testing.T) {
	st := newState(StatusQuoteDeclined)
	st.Tags.Add(TagDeclined)

	q := quote(1, "ACME Plumbing", decided(DecisionDeclined))
	other := quote(2, "Best Electric", decided(DecisionDeclined))

	res, err := ClearQuoteDecision(st, q, []*QuoteState{other})
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	// Another quote is still declined: tag and status stand.
	if !st.Tags.Has(TagDeclined) || st.Status != StatusQuoteDeclined {
		t.Fatalf("unexpected state: status=%s tags=%v", st.Status, st.Tags.List())
	}
	if res.Audit[0] != "Status 'Declined' for quote from ACME Plumbing cleared." {
		t.Fatalf("unexpected audit: %v", res.Audit)
	}

	// The first quote's decision is now gone, so clearing the last
	// declined one leaves no quote in play and the order goes back to
	// Open.
	if _, err := ClearQuoteDecision(st, other, []*QuoteState{q}); err != nil {
		t.Fatalf("clear other: %v", err)
	}
	if st.Status != StatusOpen {
		t.Fatalf("expected Open, got %s", st.Status)
	}
}

func TestClearApprovalWithPendingSiblingFallsBackToQuoteSent(t *testing.T) {
	st := newState(StatusApproved)
	st.Tags.Add(TagApproved)
	id := uint(1)
	st.ApprovedQuoteID = &id

	q := quote(1, "ACME Plumbing", decided(DecisionApproved))
	other := quote(2, "Best Electric", decided(DecisionPending))

	res, err := ClearQuoteDecision(st, q, []*QuoteState{other})
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if st.ApprovedQuoteID != nil || st.Tags.Has(TagApproved) {
		t.Fatal("approval must release")
	}
	if st.Status != StatusQuoteSent {
		t.Fatalf("a pending sibling keeps the order at Quote Sent, got %s", st.Status)
	}
	if res.Audit[0] != "Status 'Approved' for quote from ACME Plumbing cleared. Work Order status reset to Quote Sent." {
		t.Fatalf("unexpected audit: %v", res.Audit)
	}
}

func TestClearDeclinedQuoteWithApprovedSiblingRestoresApproved(t *testing.T) {
	st := newState(StatusQuoteDeclined)
	st.Tags.Add(TagDeclined)

	q := quote(1, "ACME Plumbing", decided(DecisionDeclined))
	other := quote(2, "Best Electric", decided(DecisionApproved))

	_, err := ClearQuoteDecision(st, q, []*QuoteState{other})
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if st.Status != StatusApproved {
		t.Fatalf("expected Approved with approved sibling, got %s", st.Status)
	}
	if st.Tags.Has(TagDeclined) {
		t.Fatal("Declined tag should drop when no declined quotes remain")
	}
}

func TestClearUndecidedQuoteIsNoop(t *testing.T) {
	for _, decision := range []*string{nil, decided(DecisionPending)} {
		st := newState(StatusOpen)
		q := quote(1, "ACME Plumbing", decision)
		res, err := ClearQuoteDecision(st, q, nil)
		if err != nil {
			t.Fatalf("clear: %v", err)
		}
		if res.Changed {
			t.Fatal("expected no-op")
		}
	}
}

func TestRemoveQuoteReleasesApprovalWithoutDeclining(t *testing.T) {
	st := newState(StatusApproved)
	st.Tags.Add(TagApproved)
	id := uint(1)
	st.ApprovedQuoteID = &id

	q := quote(1, "ACME Plumbing", decided(DecisionApproved))
	res := RemoveQuote(st, q, nil)
	if st.ApprovedQuoteID != nil {
		t.Fatal("approved reference must clear on deletion")
	}
	if st.Tags.Has(TagApproved) {
		t.Fatal("Approved tag should drop with no approved quotes left")
	}
	if st.Tags.Has(TagDeclined) {
		t.Fatal("deletion must not introduce a Declined tag")
	}
	if len(res.Audit) != 1 || res.Audit[0] != "Approved quote reference cleared due to quote deletion." {
		t.Fatalf("unexpected audit: %v", res.Audit)
	}

	// Deleting a non-approved quote leaves the reference alone.
	st2 := newState(StatusApproved)
	st2.Tags.Add(TagApproved)
	st2.ApprovedQuoteID = &id
	other := quote(1, "ACME Plumbing", decided(DecisionApproved))
	res2 := RemoveQuote(st2, quote(2, "Best Electric", nil), []*QuoteState{other})
	if st2.ApprovedQuoteID == nil || !st2.Tags.Has(TagApproved) {
		t.Fatal("approval must survive deleting an unrelated quote")
	}
	if len(res2.Audit) != 0 {
		t.Fatalf("unexpected audit: %v", res2.Audit)
	}
}
