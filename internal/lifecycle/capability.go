package lifecycle

// Roles mirror the values stored on user rows.
const (
	RoleRequester       = "Requester"
	RolePropertyManager = "Property Manager"
	RoleScheduler       = "Scheduler"
	RoleAdmin           = "Admin"
	RoleSuperUser       = "Super User"
)

// Actor is the acting user as lifecycle rules see them.
type Actor struct {
	ID   uint
	Name string
	Role string
}

func (a Actor) Staff() bool {
	switch a.Role {
	case RolePropertyManager, RoleScheduler, RoleAdmin, RoleSuperUser:
		return true
	}
	return false
}

// AdminStaff excludes property managers: these roles run the queue day
// to day and get the automatic New-to-Open promotion on first view.
func (a Actor) AdminStaff() bool {
	switch a.Role {
	case RoleScheduler, RoleAdmin, RoleSuperUser:
		return true
	}
	return false
}

// ManagesProperty reports whether the actor is the property manager
// responsible for a work order, matched by the denormalized manager
// name on the row.
func (a Actor) ManagesProperty(propertyManager string) bool {
	return a.Role == RolePropertyManager && propertyManager != "" && a.Name == propertyManager
}

// CanDecideQuote: only the responsible property manager or a super
// user may approve, decline or clear quotes.
func (a Actor) CanDecideQuote(propertyManager string) bool {
	return a.ManagesProperty(propertyManager) || a.Role == RoleSuperUser
}

// CanCancel: the requester who filed it, the responsible property
// manager, or any admin-side staff.
func (a Actor) CanCancel(authorID *uint, propertyManager string) bool {
	if authorID != nil && *authorID == a.ID {
		return true
	}
	return a.ManagesProperty(propertyManager) || a.AdminStaff()
}

// CanRemoveTag: the quote-decision tags need the responsible property
// manager or a super user; everything else is open to staff.
func (a Actor) CanRemoveTag(tag, propertyManager string) bool {
	if tag == TagApproved || tag == TagDeclined {
		return a.CanDecideQuote(propertyManager)
	}
	return a.Staff()
}

// CanModerate covers soft delete, restore and permanent delete.
func (a Actor) CanModerate() bool { return a.Role == RoleSuperUser }

// CanManageCatalog covers users, vendors, properties and request types.
func (a Actor) CanManageCatalog() bool {
	return a.Role == RoleAdmin || a.Role == RoleSuperUser
}
