package lifecycle

import (
	"sort"
	"strings"
)

const (
	TagCompleted = "Completed"
	TagApproved  = "Approved"
	TagDeclined  = "Declined"
	TagFollowUp  = "Follow-up needed"
	TagGoBack    = "Go-back"
)

// workflowTags are set and cleared by status and quote transitions,
// never added by hand. Follow-up needed and Go-back are the only tags
// staff manage directly.
var workflowTags = map[string]bool{
	TagCompleted: true,
	TagApproved:  true,
	TagDeclined:  true,
}

func KnownTag(name string) bool {
	switch name {
	case TagCompleted, TagApproved, TagDeclined, TagFollowUp, TagGoBack:
		return true
	}
	return false
}

func WorkflowTag(name string) bool { return workflowTags[name] }

// TagSet holds a work order's tags. The database column stores them as
// a sorted comma-joined string, NULL when empty.
type TagSet map[string]struct{}

func ParseTags(column *string) TagSet {
	t := make(TagSet)
	if column == nil || strings.TrimSpace(*column) == "" {
		return t
	}
	for _, name := range strings.Split(*column, ",") {
		if name = strings.TrimSpace(name); name != "" {
			t[name] = struct{}{}
		}
	}
	return t
}

func (t TagSet) Has(name string) bool {
	_, ok := t[name]
	return ok
}

func (t TagSet) Add(name string)    { t[name] = struct{}{} }
func (t TagSet) Remove(name string) { delete(t, name) }

func (t TagSet) List() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Column renders the set for storage; nil means no tags.
func (t TagSet) Column() *string {
	if len(t) == 0 {
		return nil
	}
	s := strings.Join(t.List(), ",")
	return &s
}
