package service

import (
	"testing"

	"github.com/raymondpolo/brc-vendor-form/internal/lifecycle"
	"github.com/raymondpolo/brc-vendor-form/internal/model"
)

func TestCreateWorkOrderDenormalizesAndAudits(t *testing.T) {
	f := newFixture(t)
	wo := f.create(t, "Leaky faucet")

	if wo.Status != string(lifecycle.StatusNew) {
		t.Fatalf("status = %q, want New", wo.Status)
	}
	if wo.PropertyName != "Oakwood" || wo.PropertyManager != f.manager.Name {
		t.Fatalf("property not denormalized: %q / %q", wo.PropertyName, wo.PropertyManager)
	}
	if wo.RequestTypeName != "Plumbing" {
		t.Fatalf("request type not denormalized: %q", wo.RequestTypeName)
	}
	if wo.AuthorID == nil || *wo.AuthorID != f.requester.ID || wo.AuthorName != f.requester.Name {
		t.Fatal("author not recorded")
	}
	if !hasAudit(f.auditTexts(t, wo.ID), "Request created.") {
		t.Fatal("missing creation audit entry")
	}
}

func TestFirstStaffViewOpensRequestOnce(t *testing.T) {
	f := newFixture(t)
	wo := f.create(t, "Leaky faucet")

	viewed, err := f.workOrder.View(wo.ID, f.scheduler)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if viewed.Status != string(lifecycle.StatusOpen) {
		t.Fatalf("status after first staff view = %q, want Open", viewed.Status)
	}

	texts := f.auditTexts(t, wo.ID)
	if !hasAudit(texts, "Status changed to Open upon first view by admin staff.") {
		t.Fatal("missing first-view audit entry")
	}
	if !hasAudit(texts, "Viewed the request.") {
		t.Fatal("missing viewed audit entry")
	}

	// A second view must not produce another status change.
	if _, err := f.workOrder.View(wo.ID, f.admin); err != nil {
		t.Fatalf("second view: %v", err)
	}
	count := 0
	for _, s := range f.auditTexts(t, wo.ID) {
		if s == "Status changed to Open upon first view by admin staff." {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("first-view audit recorded %d times, want 1", count)
	}
}

func TestRequesterCannotViewOthersRequest(t *testing.T) {
	f := newFixture(t)
	wo := f.create(t, "Leaky faucet")

	other := seedUser(t, f.db, "Other Requester", "other@example.com", model.RoleRequester)
	if _, err := f.workOrder.View(wo.ID, other); err == nil {
		t.Fatal("expected permission error")
	}
	if _, err := f.workOrder.View(wo.ID, f.requester); err != nil {
		t.Fatalf("author view: %v", err)
	}
}

func TestChangeStatusRequiresStaff(t *testing.T) {
	f := newFixture(t)
	wo := f.create(t, "Leaky faucet")

	if _, _, err := f.workOrder.ChangeStatus(wo.ID, f.requester, string(lifecycle.StatusOpen), ""); err == nil {
		t.Fatal("expected permission error for requester")
	}
}

func TestChangeStatusScheduledNeedsVendorAndDate(t *testing.T) {
	f := newFixture(t)
	wo := f.create(t, "Leaky faucet")

	if _, _, err := f.workOrder.ChangeStatus(wo.ID, f.scheduler, string(lifecycle.StatusScheduled), "06/15/2026"); err == nil {
		t.Fatal("expected error without a vendor")
	}

	if _, err := f.workOrder.AssignVendor(wo.ID, f.vendor.ID, f.scheduler); err != nil {
		t.Fatalf("assign vendor: %v", err)
	}
	if _, _, err := f.workOrder.ChangeStatus(wo.ID, f.scheduler, string(lifecycle.StatusScheduled), ""); err == nil {
		t.Fatal("expected error without a date")
	}

	updated, res, err := f.workOrder.ChangeStatus(wo.ID, f.scheduler, string(lifecycle.StatusScheduled), "06/15/2026")
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if !res.Changed {
		t.Fatal("expected a change")
	}
	if updated.Status != string(lifecycle.StatusScheduled) {
		t.Fatalf("status = %q, want Scheduled", updated.Status)
	}
	want := mmdd(t, "06/15/2026")
	if updated.ScheduledDate == nil || !updated.ScheduledDate.Equal(*want) {
		t.Fatal("scheduled date not persisted")
	}
	if !hasAudit(f.auditTexts(t, wo.ID), "Changed status from New to Scheduled for 06/15/2026.") {
		t.Fatal("missing scheduling audit entry")
	}

	// Leaving Scheduled clears the date.
	updated, _, err = f.workOrder.ChangeStatus(wo.ID, f.scheduler, string(lifecycle.StatusOpen), "")
	if err != nil {
		t.Fatalf("back to open: %v", err)
	}
	if updated.ScheduledDate != nil {
		t.Fatal("scheduled date should clear when leaving Scheduled")
	}
}

func TestChangeStatusRejectsBadDate(t *testing.T) {
	f := newFixture(t)
	wo := f.create(t, "Leaky faucet")

	_, _, err := f.workOrder.ChangeStatus(wo.ID, f.scheduler, string(lifecycle.StatusScheduled), "2026-06-15")
	if err == nil {
		t.Fatal("expected date format error")
	}
}

func TestQuoteSentNotifiesAuthorAndManager(t *testing.T) {
	f := newFixture(t)
	wo := f.create(t, "Leaky faucet")

	if _, _, err := f.workOrder.ChangeStatus(wo.ID, f.scheduler, string(lifecycle.StatusQuoteSent), ""); err != nil {
		t.Fatalf("change status: %v", err)
	}

	var authorNotes int64
	f.db.Model(&model.Notification{}).Where("user_id = ?", f.requester.ID).Count(&authorNotes)
	if authorNotes != 1 {
		t.Fatalf("author notifications = %d, want 1", authorNotes)
	}

	var managerNote model.Notification
	if err := f.db.Where("user_id = ?", f.manager.ID).First(&managerNote).Error; err != nil {
		t.Fatalf("manager notification missing: %v", err)
	}
	if managerNote.WorkOrderID == nil || *managerNote.WorkOrderID != wo.ID {
		t.Fatal("manager notification not linked to work order")
	}
}

func TestCompletedTagsAndStampsDate(t *testing.T) {
	f := newFixture(t)
	wo := f.create(t, "Leaky faucet")

	updated, _, err := f.workOrder.ChangeStatus(wo.ID, f.scheduler, string(lifecycle.StatusCompleted), "")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if updated.DateCompleted == nil {
		t.Fatal("date completed not stamped")
	}
	tags := lifecycle.ParseTags(updated.Tags)
	if !tags.Has(lifecycle.TagCompleted) {
		t.Fatal("Completed tag missing")
	}
}

func TestMarkCompletedByAuthor(t *testing.T) {
	f := newFixture(t)
	wo := f.create(t, "Leaky faucet")

	res, err := f.workOrder.MarkCompleted(wo.ID, f.requester)
	if err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	if !res.Changed {
		t.Fatal("expected a change")
	}
	if got := f.reload(t, wo.ID).Status; got != string(lifecycle.StatusCompleted) {
		t.Fatalf("status = %q, want Completed", got)
	}
	if !hasAudit(f.auditTexts(t, wo.ID), "Request marked as completed (Status changed from New).") {
		t.Fatal("missing completion audit entry")
	}

	// Second call is a no-op with a notice.
	res, err = f.workOrder.MarkCompleted(wo.ID, f.requester)
	if err != nil {
		t.Fatalf("repeat mark completed: %v", err)
	}
	if res.Changed || res.Notice == "" {
		t.Fatalf("expected unchanged notice, got %+v", res)
	}

	other := seedUser(t, f.db, "Other Requester", "other2@example.com", model.RoleRequester)
	if _, err := f.workOrder.MarkCompleted(wo.ID, other); err == nil {
		t.Fatal("expected permission error for non-author requester")
	}
}

func TestCancelClearsScheduleAndBlocksRepeat(t *testing.T) {
	f := newFixture(t)
	wo := f.create(t, "Leaky faucet")

	if _, err := f.workOrder.AssignVendor(wo.ID, f.vendor.ID, f.scheduler); err != nil {
		t.Fatalf("assign vendor: %v", err)
	}
	if _, _, err := f.workOrder.ChangeStatus(wo.ID, f.scheduler, string(lifecycle.StatusScheduled), "06/15/2026"); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	if _, err := f.workOrder.Cancel(wo.ID, f.requester); err != nil {
		t.Fatalf("author cancel: %v", err)
	}
	got := f.reload(t, wo.ID)
	if got.Status != string(lifecycle.StatusCancelled) {
		t.Fatalf("status = %q, want Cancelled", got.Status)
	}
	if got.ScheduledDate != nil {
		t.Fatal("cancel should clear the scheduled date")
	}

	if _, err := f.workOrder.Cancel(wo.ID, f.requester); err == nil {
		t.Fatal("expected conflict cancelling twice")
	}
}

func TestVendorAssignmentAudits(t *testing.T) {
	f := newFixture(t)
	wo := f.create(t, "Leaky faucet")

	if _, err := f.workOrder.AssignVendor(wo.ID, f.vendor.ID, f.scheduler); err != nil {
		t.Fatalf("assign: %v", err)
	}
	res, err := f.workOrder.AssignVendor(wo.ID, f.vendor.ID, f.scheduler)
	if err != nil {
		t.Fatalf("repeat assign: %v", err)
	}
	if res.Changed {
		t.Fatal("assigning the same vendor twice should be a no-op")
	}

	if _, err := f.workOrder.UnassignVendor(wo.ID, f.scheduler); err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if f.reload(t, wo.ID).VendorID != nil {
		t.Fatal("vendor_id should be NULL after unassign")
	}

	texts := f.auditTexts(t, wo.ID)
	if !hasAudit(texts, "Vendor 'Ace Plumbing' assigned.") || !hasAudit(texts, "Vendor 'Ace Plumbing' unassigned.") {
		t.Fatalf("vendor audit entries missing: %v", texts)
	}
}

func TestFollowUpTagNeedsDate(t *testing.T) {
	f := newFixture(t)
	wo := f.create(t, "Leaky faucet")

	if _, err := f.workOrder.AddTag(wo.ID, f.scheduler, lifecycle.TagFollowUp, ""); err == nil {
		t.Fatal("expected error without a date")
	}
	if _, err := f.workOrder.AddTag(wo.ID, f.scheduler, lifecycle.TagFollowUp, "07/01/2026"); err != nil {
		t.Fatalf("add follow-up: %v", err)
	}
	got := f.reload(t, wo.ID)
	if got.FollowUpDate == nil {
		t.Fatal("follow-up date not persisted")
	}

	if _, err := f.workOrder.RemoveTag(wo.ID, f.scheduler, lifecycle.TagFollowUp); err != nil {
		t.Fatalf("remove tag: %v", err)
	}
	got = f.reload(t, wo.ID)
	if got.FollowUpDate != nil {
		t.Fatal("removing the tag should clear the date")
	}
	if lifecycle.ParseTags(got.Tags).Has(lifecycle.TagFollowUp) {
		t.Fatal("tag still present")
	}
}

func TestUpdateRecordsChangedFields(t *testing.T) {
	f := newFixture(t)
	wo := f.create(t, "Leaky faucet")

	title := "Burst pipe"
	if _, err := f.workOrder.Update(wo.ID, f.admin, UpdateWorkOrderInput{Title: &title}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := f.reload(t, wo.ID).Title; got != "Burst pipe" {
		t.Fatalf("title = %q", got)
	}

	var entry model.AuditLog
	if err := f.db.Where("work_order_id = ? AND text = ?", wo.ID, "Request details updated.").First(&entry).Error; err != nil {
		t.Fatalf("update audit entry missing: %v", err)
	}
	if entry.Detail == nil {
		t.Fatal("audit detail missing")
	}
	if _, ok := entry.Detail["title"]; !ok {
		t.Fatalf("detail should record the title change, got %v", entry.Detail)
	}

	// No-op update still leaves a trace.
	if _, err := f.workOrder.Update(wo.ID, f.admin, UpdateWorkOrderInput{Title: &title}); err != nil {
		t.Fatalf("no-op update: %v", err)
	}
	if !hasAudit(f.auditTexts(t, wo.ID), "Submitted edit form, no changes detected.") {
		t.Fatal("missing no-change audit entry")
	}
}

func TestSoftDeleteRestoreLifecycle(t *testing.T) {
	f := newFixture(t)
	wo := f.create(t, "Leaky faucet")

	if err := f.workOrder.SoftDelete(wo.ID, f.admin); err == nil {
		t.Fatal("admins must not soft-delete")
	}
	if err := f.workOrder.SoftDelete(wo.ID, f.superUser); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if err := f.workOrder.SoftDelete(wo.ID, f.superUser); err == nil {
		t.Fatal("expected conflict on double delete")
	}

	if _, err := f.workOrder.GetByID(wo.ID, false); err == nil {
		t.Fatal("deleted row should be hidden by default")
	}
	if _, err := f.workOrder.GetByID(wo.ID, true); err != nil {
		t.Fatalf("super user load: %v", err)
	}

	if err := f.workOrder.Restore(wo.ID, f.superUser); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if _, err := f.workOrder.GetByID(wo.ID, false); err != nil {
		t.Fatalf("restored row should be visible: %v", err)
	}

	texts := f.auditTexts(t, wo.ID)
	if !hasAudit(texts, "Request soft-deleted.") || !hasAudit(texts, "Request restored from deleted items.") {
		t.Fatalf("delete/restore audit entries missing: %v", texts)
	}
}

func TestPermanentDeleteCascades(t *testing.T) {
	f := newFixture(t)
	wo := f.create(t, "Leaky faucet")

	if _, err := f.quotes.Create(wo.ID, f.scheduler, CreateQuoteInput{
		VendorID: f.vendor.ID,
		Amount:   250,
		FileName: "quote.pdf", StorageKey: "k1", ContentType: "application/pdf", Size: 1024,
	}); err != nil {
		t.Fatalf("create quote: %v", err)
	}
	notes := NewNoteService(f.db, nil)
	if _, err := notes.Create(wo.ID, f.scheduler, "checking on this"); err != nil {
		t.Fatalf("create note: %v", err)
	}

	if err := f.workOrder.PermanentDelete(wo.ID, f.superUser); err != nil {
		t.Fatalf("permanent delete: %v", err)
	}

	counts := map[string]interface{}{
		"quotes":        &model.Quote{},
		"attachments":   &model.Attachment{},
		"notes":         &model.Note{},
		"audit logs":    &model.AuditLog{},
		"notifications": &model.Notification{},
	}
	for name, m := range counts {
		var n int64
		f.db.Unscoped().Model(m).Where("work_order_id = ?", wo.ID).Count(&n)
		if n != 0 {
			t.Fatalf("%s not purged: %d rows left", name, n)
		}
	}
	var n int64
	f.db.Unscoped().Model(&model.WorkOrder{}).Where("id = ?", wo.ID).Count(&n)
	if n != 0 {
		t.Fatal("work order row not purged")
	}
}

func TestListFiltersByStatusTagAndAuthor(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, "Leaky faucet")
	b := f.create(t, "Broken window")

	if _, _, err := f.workOrder.ChangeStatus(a.ID, f.scheduler, string(lifecycle.StatusOpen), ""); err != nil {
		t.Fatalf("change status: %v", err)
	}
	if _, err := f.workOrder.AddTag(b.ID, f.scheduler, "Go-back", ""); err != nil {
		t.Fatalf("tag: %v", err)
	}

	got, total, err := f.workOrder.List(ListWorkOrdersInput{Status: string(lifecycle.StatusOpen), Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if total != 1 || len(got) != 1 || got[0].ID != a.ID {
		t.Fatalf("status filter returned %d rows", total)
	}

	got, total, err = f.workOrder.List(ListWorkOrdersInput{Tag: "Go-back", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list by tag: %v", err)
	}
	if total != 1 || got[0].ID != b.ID {
		t.Fatalf("tag filter returned %d rows", total)
	}

	_, total, err = f.workOrder.List(ListWorkOrdersInput{AuthorID: &f.requester.ID, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list by author: %v", err)
	}
	if total != 2 {
		t.Fatalf("author filter returned %d rows, want 2", total)
	}
}

func TestReassignChangesAuthor(t *testing.T) {
	f := newFixture(t)
	wo := f.create(t, "Leaky faucet")
	other := seedUser(t, f.db, "New Owner", "owner@example.com", model.RoleRequester)

	if err := f.workOrder.Reassign(wo.ID, other.ID, f.scheduler); err == nil {
		t.Fatal("schedulers must not reassign")
	}
	if err := f.workOrder.Reassign(wo.ID, other.ID, f.admin); err != nil {
		t.Fatalf("reassign: %v", err)
	}
	got := f.reload(t, wo.ID)
	if got.AuthorID == nil || *got.AuthorID != other.ID || got.AuthorName != other.Name {
		t.Fatal("author not reassigned")
	}
}
