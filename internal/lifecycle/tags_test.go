package lifecycle

import "testing"

func strptr(s string) *string { return &s }

func TestParseTagsAndColumn(t *testing.T) {
	tags := ParseTags(strptr("Go-back,Approved"))
	if !tags.Has(TagGoBack) || !tags.Has(TagApproved) || len(tags) != 2 {
		t.Fatalf("unexpected parse: %v", tags.List())
	}

	tags.Add(TagDeclined)
	tags.Remove(TagApproved)
	col := tags.Column()
	if col == nil || *col != "Declined,Go-back" {
		t.Fatalf("expected sorted column, got %v", col)
	}
}

func TestParseTagsEmpty(t *testing.T) {
	if tags := ParseTags(nil); len(tags) != 0 {
		t.Fatalf("nil column should parse empty, got %v", tags.List())
	}
	if tags := ParseTags(strptr("  ")); len(tags) != 0 {
		t.Fatalf("blank column should parse empty, got %v", tags.List())
	}
	if col := (TagSet{}).Column(); col != nil {
		t.Fatalf("empty set should store NULL, got %q", *col)
	}
}

func TestParseTagsTrimsAndSkipsBlanks(t *testing.T) {
	tags := ParseTags(strptr("Go-back, ,Follow-up needed"))
	if len(tags) != 2 || !tags.Has(TagFollowUp) {
		t.Fatalf("unexpected parse: %v", tags.List())
	}
}

func TestCapabilities(t *testing.T) {
	pm := Actor{ID: 1, Name: "Pat Miller", Role: RolePropertyManager}
	super := Actor{ID: 2, Name: "Sam", Role: RoleSuperUser}
	requester := Actor{ID: 3, Name: "Riley", Role: RoleRequester}
	scheduler := Actor{ID: 4, Name: "Drew", Role: RoleScheduler}

	if !pm.CanDecideQuote("Pat Miller") {
		t.Fatal("responsible PM must decide quotes")
	}
	if pm.CanDecideQuote("Someone Else") {
		t.Fatal("PM of another property must not decide quotes")
	}
	if !super.CanDecideQuote("") {
		t.Fatal("super user decides quotes anywhere")
	}
	if scheduler.CanDecideQuote("Pat Miller") {
		t.Fatal("scheduler must not decide quotes")
	}

	author := uint(3)
	if !requester.CanCancel(&author, "") {
		t.Fatal("author cancels own request")
	}
	other := uint(9)
	if requester.CanCancel(&other, "") {
		t.Fatal("requester cannot cancel someone else's request")
	}
	if !scheduler.CanCancel(&other, "") {
		t.Fatal("admin staff can cancel")
	}

	if scheduler.CanRemoveTag(TagApproved, "Pat Miller") {
		t.Fatal("scheduler cannot remove quote-decision tags")
	}
	if !pm.CanRemoveTag(TagApproved, "Pat Miller") {
		t.Fatal("responsible PM removes quote-decision tags")
	}
	if !scheduler.CanRemoveTag(TagGoBack, "") {
		t.Fatal("staff removes general tags")
	}
	if requester.CanRemoveTag(TagGoBack, "") {
		t.Fatal("requesters do not manage tags")
	}

	if !super.CanModerate() || pm.CanModerate() {
		t.Fatal("only super users moderate deletions")
	}
	if !super.CanManageCatalog() || scheduler.CanManageCatalog() {
		t.Fatal("catalog management is Admin/Super User only")
	}
}
