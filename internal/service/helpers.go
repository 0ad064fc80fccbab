package service

import (
	"gorm.io/gorm"

	"github.com/raymondpolo/brc-vendor-form/internal/lifecycle"
	"github.com/raymondpolo/brc-vendor-form/internal/model"
)

func actorOf(u *model.User) lifecycle.Actor {
	return lifecycle.Actor{ID: u.ID, Name: u.Name, Role: u.Role}
}

// stateOf lifts the lifecycle-relevant columns off a work order row.
func stateOf(wo *model.WorkOrder) *lifecycle.State {
	return &lifecycle.State{
		Status:          lifecycle.Status(wo.Status),
		Tags:            lifecycle.ParseTags(wo.Tags),
		VendorAssigned:  wo.VendorID != nil,
		ScheduledDate:   wo.ScheduledDate,
		DateCompleted:   wo.DateCompleted,
		FollowUpDate:    wo.FollowUpDate,
		LastFollowUp:    wo.LastFollowUpSent,
		ApprovedQuoteID: wo.ApprovedQuoteID,
		Deleted:         wo.DeletedAt.Valid,
	}
}

// applyState writes a mutated state back onto the row.
func applyState(wo *model.WorkOrder, st *lifecycle.State) {
	wo.Status = string(st.Status)
	wo.Tags = st.Tags.Column()
	wo.ScheduledDate = st.ScheduledDate
	wo.DateCompleted = st.DateCompleted
	wo.FollowUpDate = st.FollowUpDate
	wo.LastFollowUpSent = st.LastFollowUp
	wo.ApprovedQuoteID = st.ApprovedQuoteID
}

// stateColumns is the update set applyState touches; saving via a map
// keeps gorm writing NULLs for cleared pointer fields.
func stateUpdates(wo *model.WorkOrder) map[string]interface{} {
	return map[string]interface{}{
		"status":              wo.Status,
		"tags":                wo.Tags,
		"scheduled_date":      wo.ScheduledDate,
		"date_completed":      wo.DateCompleted,
		"follow_up_date":      wo.FollowUpDate,
		"last_follow_up_sent": wo.LastFollowUpSent,
		"approved_quote_id":   wo.ApprovedQuoteID,
		"vendor_id":           wo.VendorID,
	}
}

func addAudit(tx *gorm.DB, workOrderID uint, user *model.User, lines []string, detail model.JSONMap) error {
	for _, line := range lines {
		entry := model.AuditLog{
			WorkOrderID: workOrderID,
			Text:        line,
			Detail:      detail,
		}
		if user != nil {
			id := user.ID
			entry.UserID = &id
			entry.UserName = user.Name
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
	}
	return nil
}

func addNotification(tx *gorm.DB, userID uint, workOrderID *uint, message, link string) (*model.Notification, error) {
	n := model.Notification{
		UserID:      userID,
		WorkOrderID: workOrderID,
		Message:     message,
		Link:        link,
	}
	if err := tx.Create(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}
