package service

import (
	"testing"

	"github.com/raymondpolo/brc-vendor-form/internal/lifecycle"
	"github.com/raymondpolo/brc-vendor-form/internal/model"
)

func (f *fixture) addQuote(t *testing.T, workOrderID uint, vendorID uint, amount float64) *model.Quote {
	t.Helper()
	q, err := f.quotes.Create(workOrderID, f.scheduler, CreateQuoteInput{
		VendorID: vendorID,
		Amount:   amount,
	})
	if err != nil {
		t.Fatalf("create quote: %v", err)
	}
	return q
}

func TestQuoteCreateRequiresStaff(t *testing.T) {
	f := newFixture(t)
	wo := f.create(t, "Leaky faucet")

	_, err := f.quotes.Create(wo.ID, f.requester, CreateQuoteInput{VendorID: f.vendor.ID, Amount: 100})
	if err == nil {
		t.Fatal("expected permission error")
	}
}

func TestQuoteCreateWithAttachment(t *testing.T) {
	f := newFixture(t)
	wo := f.create(t, "Leaky faucet")

	q, err := f.quotes.Create(wo.ID, f.scheduler, CreateQuoteInput{
		VendorID: f.vendor.ID,
		Amount:   300,
		FileName: "estimate.pdf", StorageKey: "key-1", ContentType: "application/pdf", Size: 4096,
	})
	if err != nil {
		t.Fatalf("create quote: %v", err)
	}

	var att model.Attachment
	if err := f.db.Where("quote_id = ?", q.ID).First(&att).Error; err != nil {
		t.Fatalf("attachment missing: %v", err)
	}
	if att.WorkOrderID == nil || *att.WorkOrderID != wo.ID || att.UploaderID != f.scheduler.ID {
		t.Fatal("attachment not linked")
	}
	if !hasAudit(f.auditTexts(t, wo.ID), "Quote 'estimate.pdf' for vendor 'Ace Plumbing' uploaded.") {
		t.Fatal("missing upload audit entry")
	}
	if q.Status == nil || *q.Status != model.QuotePending {
		t.Fatal("new quotes must start out Pending")
	}
	if q.DateSent.IsZero() {
		t.Fatal("date_sent not stamped")
	}
}

func TestApproveQuoteMovesWorkOrderToApproved(t *testing.T) {
	f := newFixture(t)
	wo := f.create(t, "Leaky faucet")
	q := f.addQuote(t, wo.ID, f.vendor.ID, 300)

	if _, _, err := f.workOrder.ChangeStatus(wo.ID, f.scheduler, string(lifecycle.StatusQuoteSent), ""); err != nil {
		t.Fatalf("quote sent: %v", err)
	}

	// Only the responsible property manager (or a super user) decides.
	if _, err := f.quotes.Decide(wo.ID, q.ID, "approve", f.scheduler); err == nil {
		t.Fatal("scheduler must not decide quotes")
	}

	res, err := f.quotes.Decide(wo.ID, q.ID, "approve", f.manager)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !res.Changed {
		t.Fatal("expected a change")
	}

	got := f.reload(t, wo.ID)
	if got.Status != string(lifecycle.StatusApproved) {
		t.Fatalf("status = %q, want Approved", got.Status)
	}
	if got.ApprovedQuoteID == nil || *got.ApprovedQuoteID != q.ID {
		t.Fatal("approved quote reference missing")
	}
	if !lifecycle.ParseTags(got.Tags).Has(lifecycle.TagApproved) {
		t.Fatal("Approved tag missing")
	}

	var quote model.Quote
	f.db.First(&quote, q.ID)
	if quote.Status == nil || *quote.Status != model.QuoteApproved {
		t.Fatal("quote status not persisted")
	}

	// The author hears about it.
	var n model.Notification
	if err := f.db.Where("user_id = ?", f.requester.ID).Order("id desc").First(&n).Error; err != nil {
		t.Fatalf("author notification missing: %v", err)
	}

	// Approving again is a no-op.
	res, err = f.quotes.Decide(wo.ID, q.ID, "approve", f.manager)
	if err != nil {
		t.Fatalf("repeat approve: %v", err)
	}
	if res.Changed {
		t.Fatal("second approve should be a no-op")
	}
}

func TestDeclineKeepsApprovalOfSibling(t *testing.T) {
	f := newFixture(t)
	wo := f.create(t, "Leaky faucet")
	otherVendor := seedVendor(t, f.db, "Best Pipes")
	q1 := f.addQuote(t, wo.ID, f.vendor.ID, 300)
	q2 := f.addQuote(t, wo.ID, otherVendor.ID, 450)

	if _, _, err := f.workOrder.ChangeStatus(wo.ID, f.scheduler, string(lifecycle.StatusQuoteSent), ""); err != nil {
		t.Fatalf("quote sent: %v", err)
	}
	if _, err := f.quotes.Decide(wo.ID, q1.ID, "approve", f.manager); err != nil {
		t.Fatalf("approve q1: %v", err)
	}
	if _, err := f.quotes.Decide(wo.ID, q2.ID, "decline", f.manager); err != nil {
		t.Fatalf("decline q2: %v", err)
	}

	got := f.reload(t, wo.ID)
	if got.Status != string(lifecycle.StatusApproved) {
		t.Fatalf("declining a sibling must not override the approval, status = %q", got.Status)
	}
	tags := lifecycle.ParseTags(got.Tags)
	if !tags.Has(lifecycle.TagApproved) || tags.Has(lifecycle.TagDeclined) {
		t.Fatalf("tags = %v", tags.List())
	}
}

func TestDeclineOnlyQuoteMovesToQuoteDeclined(t *testing.T) {
	f := newFixture(t)
	wo := f.create(t, "Leaky faucet")
	q := f.addQuote(t, wo.ID, f.vendor.ID, 300)

	if _, _, err := f.workOrder.ChangeStatus(wo.ID, f.scheduler, string(lifecycle.StatusQuoteSent), ""); err != nil {
		t.Fatalf("quote sent: %v", err)
	}
	if _, err := f.quotes.Decide(wo.ID, q.ID, "decline", f.manager); err != nil {
		t.Fatalf("decline: %v", err)
	}

	got := f.reload(t, wo.ID)
	if got.Status != string(lifecycle.StatusQuoteDeclined) {
		t.Fatalf("status = %q, want Quote Declined", got.Status)
	}
	if !lifecycle.ParseTags(got.Tags).Has(lifecycle.TagDeclined) {
		t.Fatal("Declined tag missing")
	}
}

func TestClearDecisionResetsWorkOrder(t *testing.T) {
	f := newFixture(t)
	wo := f.create(t, "Leaky faucet")
	q := f.addQuote(t, wo.ID, f.vendor.ID, 300)

	if _, _, err := f.workOrder.ChangeStatus(wo.ID, f.scheduler, string(lifecycle.StatusQuoteSent), ""); err != nil {
		t.Fatalf("quote sent: %v", err)
	}
	if _, err := f.quotes.Decide(wo.ID, q.ID, "approve", f.superUser); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := f.quotes.Decide(wo.ID, q.ID, "clear", f.superUser); err != nil {
		t.Fatalf("clear: %v", err)
	}

	got := f.reload(t, wo.ID)
	if got.Status != string(lifecycle.StatusOpen) {
		t.Fatalf("status = %q, want Open", got.Status)
	}
	if got.ApprovedQuoteID != nil {
		t.Fatal("approved quote reference should clear")
	}
	var quote model.Quote
	f.db.First(&quote, q.ID)
	if quote.Status != nil {
		t.Fatalf("quote status should be NULL, got %q", *quote.Status)
	}
}

func TestClearApprovalKeepsQuoteSentWhilePendingSiblingRemains(t *testing.T) {
	f := newFixture(t)
	wo := f.create(t, "Leaky faucet")
	otherVendor := seedVendor(t, f.db, "Best Pipes")
	q1 := f.addQuote(t, wo.ID, f.vendor.ID, 300)
	q2 := f.addQuote(t, wo.ID, otherVendor.ID, 450)

	if _, _, err := f.workOrder.ChangeStatus(wo.ID, f.scheduler, string(lifecycle.StatusQuoteSent), ""); err != nil {
		t.Fatalf("quote sent: %v", err)
	}
	if _, err := f.quotes.Decide(wo.ID, q1.ID, "approve", f.manager); err != nil {
		t.Fatalf("approve q1: %v", err)
	}
	if _, err := f.quotes.Decide(wo.ID, q1.ID, "clear", f.manager); err != nil {
		t.Fatalf("clear q1: %v", err)
	}

	got := f.reload(t, wo.ID)
	if got.Status != string(lifecycle.StatusQuoteSent) {
		t.Fatalf("status = %q, want Quote Sent while a pending quote remains", got.Status)
	}
	if got.ApprovedQuoteID != nil {
		t.Fatal("approved quote reference should clear")
	}
	if lifecycle.ParseTags(got.Tags).Has(lifecycle.TagApproved) {
		t.Fatal("Approved tag should drop")
	}

	var sibling model.Quote
	f.db.First(&sibling, q2.ID)
	if sibling.Status == nil || *sibling.Status != model.QuotePending {
		t.Fatal("the pending sibling must keep its Pending status")
	}
}

func TestQuoteFromOtherWorkOrderIsNotFound(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, "Leaky faucet")
	b := f.create(t, "Broken window")
	q := f.addQuote(t, a.ID, f.vendor.ID, 300)

	if _, err := f.quotes.Decide(b.ID, q.ID, "approve", f.superUser); err == nil {
		t.Fatal("expected not-found for mismatched work order")
	}
}

func TestDeleteApprovedQuoteReleasesApproval(t *testing.T) {
	f := newFixture(t)
	wo := f.create(t, "Leaky faucet")
	q, err := f.quotes.Create(wo.ID, f.scheduler, CreateQuoteInput{
		VendorID: f.vendor.ID,
		Amount:   300,
		FileName: "estimate.pdf", StorageKey: "key-2", ContentType: "application/pdf", Size: 4096,
	})
	if err != nil {
		t.Fatalf("create quote: %v", err)
	}
	if _, err := f.quotes.Decide(wo.ID, q.ID, "approve", f.manager); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if err := f.quotes.Delete(wo.ID, q.ID, f.scheduler); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got := f.reload(t, wo.ID)
	if got.ApprovedQuoteID != nil {
		t.Fatal("approved quote reference should clear on delete")
	}
	tags := lifecycle.ParseTags(got.Tags)
	if tags.Has(lifecycle.TagApproved) || tags.Has(lifecycle.TagDeclined) {
		t.Fatalf("deleting an approved quote must not leave workflow tags: %v", tags.List())
	}

	var n int64
	f.db.Unscoped().Model(&model.Quote{}).Where("id = ?", q.ID).Count(&n)
	if n != 0 {
		t.Fatal("quote row not removed")
	}
	f.db.Unscoped().Model(&model.Attachment{}).Where("quote_id = ?", q.ID).Count(&n)
	if n != 0 {
		t.Fatal("attachment row not removed")
	}
	if !hasAudit(f.auditTexts(t, wo.ID), "Deleted quote 'estimate.pdf' from vendor 'Ace Plumbing'.") {
		t.Fatal("missing deletion audit entry")
	}
}
