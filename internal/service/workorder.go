package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/raymondpolo/brc-vendor-form/internal/lifecycle"
	"github.com/raymondpolo/brc-vendor-form/internal/metrics"
	"github.com/raymondpolo/brc-vendor-form/internal/model"
	"github.com/raymondpolo/brc-vendor-form/internal/notify"
	"github.com/raymondpolo/brc-vendor-form/internal/sse"
)

type WorkOrderService struct {
	db       *gorm.DB
	hub      *sse.Hub
	notifier notify.Notifier
}

func NewWorkOrderService(db *gorm.DB, hub *sse.Hub) *WorkOrderService {
	return &WorkOrderService{db: db, hub: hub, notifier: notify.NoopNotifier{}}
}

func (s *WorkOrderService) SetNotifier(n notify.Notifier) {
	if n != nil {
		s.notifier = n
	}
}

// broadcast pushes a committed notification row to the recipient's
// live stream. Broadcasts always happen after commit so clients never
// see state that later rolls back.
func (s *WorkOrderService) broadcast(n *model.Notification) {
	if s.hub == nil || n == nil {
		return
	}
	s.hub.Broadcast(sse.UserTopic(n.UserID), sse.Event{Type: "notification", Data: n})
}

func (s *WorkOrderService) broadcastWorkOrder(workOrderID uint, eventType string, data interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(sse.WorkOrderTopic(workOrderID), sse.Event{Type: eventType, Data: data})
}

type CreateWorkOrderInput struct {
	WONumber      string
	Title         string
	Description   string
	Unit          string
	TenantName    string
	TenantPhone   string
	PropertyID    uint
	RequestTypeID uint
}

func (s *WorkOrderService) Create(in CreateWorkOrderInput, author *model.User) (*model.WorkOrder, error) {
	var prop model.Property
	if err := s.db.First(&prop, in.PropertyID).Error; err != nil {
		return nil, lifecycle.NotFound("property not found")
	}
	var rt model.RequestType
	if err := s.db.First(&rt, in.RequestTypeID).Error; err != nil {
		return nil, lifecycle.NotFound("request type not found")
	}

	authorID := author.ID
	wo := &model.WorkOrder{
		WONumber:        in.WONumber,
		Title:           in.Title,
		Description:     in.Description,
		Unit:            in.Unit,
		TenantName:      in.TenantName,
		TenantPhone:     in.TenantPhone,
		PropertyID:      prop.ID,
		PropertyName:    prop.Name,
		PropertyAddress: prop.Address,
		PropertyManager: prop.Manager,
		RequestTypeID:   rt.ID,
		RequestTypeName: rt.Name,
		Status:          string(lifecycle.StatusNew),
		AuthorID:        &authorID,
		AuthorName:      author.Name,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(wo).Error; err != nil {
			return err
		}
		return addAudit(tx, wo.ID, author, []string{"Request created."}, nil)
	})
	if err != nil {
		return nil, err
	}
	if metrics.WorkOrdersCreated != nil {
		metrics.WorkOrdersCreated.Inc()
	}
	return s.GetByID(wo.ID, author.IsSuperUser())
}

// GetByID loads a work order with its relations. Soft-deleted rows are
// only visible when includeDeleted is set (super users).
func (s *WorkOrderService) GetByID(id uint, includeDeleted bool) (*model.WorkOrder, error) {
	q := s.db
	if includeDeleted {
		q = q.Unscoped()
	}
	var wo model.WorkOrder
	err := q.Preload("Author").Preload("Vendor").Preload("Property").Preload("RequestType").
		Preload("Quotes").Preload("Quotes.Vendor").Preload("Quotes.Attachment").
		First(&wo, id).Error
	if err != nil {
		return nil, lifecycle.NotFound("work order not found")
	}
	return &wo, nil
}

// View applies the read-side rules: requesters only see their own
// submissions, the first look by admin staff promotes New to Open, and
// every staff view leaves an audit entry and a viewer record.
func (s *WorkOrderService) View(id uint, viewer *model.User) (*model.WorkOrder, error) {
	wo, err := s.GetByID(id, viewer.IsSuperUser())
	if err != nil {
		return nil, err
	}

	actor := actorOf(viewer)
	if !actor.Staff() {
		if wo.AuthorID == nil || *wo.AuthorID != viewer.ID {
			return nil, lifecycle.Denied("you do not have permission to view this request")
		}
		return wo, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if actor.AdminStaff() && !wo.DeletedAt.Valid {
			st := stateOf(wo)
			if res := lifecycle.FirstView(st); res.Changed {
				applyState(wo, st)
				if err := tx.Model(&model.WorkOrder{}).Where("id = ?", wo.ID).
					Updates(map[string]interface{}{"status": wo.Status}).Error; err != nil {
					return err
				}
				if err := addAudit(tx, wo.ID, viewer, res.Audit, nil); err != nil {
					return err
				}
				metrics.RecordTransition(string(lifecycle.StatusNew), wo.Status)
			}
		}
		if err := addAudit(tx, wo.ID, viewer, []string{"Viewed the request."}, nil); err != nil {
			return err
		}
		return tx.Model(wo).Association("Viewers").Append(viewer)
	})
	if err != nil {
		return nil, err
	}
	return wo, nil
}

type ListWorkOrdersInput struct {
	Status         string
	Tag            string
	PropertyID     *uint
	VendorID       *uint
	Keyword        string
	AuthorID       *uint
	ViewerID       *uint
	DeletedOnly    bool
	IncludeDeleted bool
	Page           int
	PageSize       int
}

func (s *WorkOrderService) List(in ListWorkOrdersInput) ([]model.WorkOrder, int64, error) {
	q := s.db.Model(&model.WorkOrder{})
	if in.DeletedOnly {
		q = q.Unscoped().Where("deleted_at IS NOT NULL")
	} else if in.IncludeDeleted {
		q = q.Unscoped()
	}
	if in.Status != "" {
		q = q.Where("status = ?", in.Status)
	}
	if in.Tag != "" {
		q = q.Where("tags LIKE ?", "%"+in.Tag+"%")
	}
	if in.PropertyID != nil {
		q = q.Where("property_id = ?", *in.PropertyID)
	}
	if in.VendorID != nil {
		q = q.Where("vendor_id = ?", *in.VendorID)
	}
	if in.AuthorID != nil {
		q = q.Where("author_id = ?", *in.AuthorID)
	}
	if in.ViewerID != nil {
		q = q.Joins("JOIN work_order_viewers ON work_order_viewers.work_order_id = work_orders.id").
			Where("work_order_viewers.user_id = ?", *in.ViewerID)
	}
	if in.Keyword != "" {
		kw := "%" + in.Keyword + "%"
		q = q.Where("wo_number LIKE ? OR title LIKE ? OR description LIKE ? OR property_name LIKE ?", kw, kw, kw, kw)
	}

	var total int64
	q.Count(&total)

	var orders []model.WorkOrder
	err := q.Preload("Author").Preload("Vendor").
		Order("created_at desc").
		Offset((in.Page - 1) * in.PageSize).Limit(in.PageSize).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ChangeStatus runs the status state machine and fans out the
// notifications the transition calls for.
func (s *WorkOrderService) ChangeStatus(id uint, actor *model.User, newStatus, scheduledDate string) (*model.WorkOrder, *lifecycle.Result, error) {
	if !actorOf(actor).Staff() {
		return nil, nil, lifecycle.Denied("you do not have permission to change the status")
	}

	var sched *time.Time
	if scheduledDate != "" {
		t, err := lifecycle.ParseDate(scheduledDate)
		if err != nil {
			return nil, nil, lifecycle.Invalid("invalid date format for scheduled date (MM/DD/YYYY)")
		}
		sched = &t
	}

	var (
		result   *lifecycle.Result
		oldState string
		pending  []*model.Notification
		events   []func(context.Context)
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var wo model.WorkOrder
		if err := tx.First(&wo, id).Error; err != nil {
			return lifecycle.NotFound("work order not found")
		}
		oldState = wo.Status

		st := stateOf(&wo)
		res, err := lifecycle.ChangeStatus(st, lifecycle.Status(newStatus), sched, time.Now())
		if err != nil {
			return err
		}
		result = res
		if !res.Changed {
			return nil
		}
		applyState(&wo, st)
		if err := tx.Model(&model.WorkOrder{}).Where("id = ?", wo.ID).Updates(stateUpdates(&wo)).Error; err != nil {
			return err
		}
		if err := addAudit(tx, wo.ID, actor, res.Audit, nil); err != nil {
			return err
		}

		link := fmt.Sprintf("/requests/%d", wo.ID)

		if res.NotifyAuthor && wo.AuthorID != nil && *wo.AuthorID != actor.ID {
			var author model.User
			if err := tx.First(&author, *wo.AuthorID).Error; err == nil {
				text := fmt.Sprintf("Status for Request #%d changed to %s.", wo.ID, wo.Status)
				n, err := addNotification(tx, author.ID, &wo.ID, text, link)
				if err != nil {
					return err
				}
				pending = append(pending, n)
				ev := notify.StatusChangedEvent{
					WorkOrderID:    wo.ID,
					Property:       wo.PropertyName,
					OldStatus:      oldState,
					NewStatus:      wo.Status,
					RecipientID:    author.ID,
					RecipientName:  author.Name,
					RecipientEmail: author.Email,
				}
				events = append(events, func(ctx context.Context) { _ = s.notifier.NotifyStatusChanged(ctx, ev) })
			}
		}

		if res.NotifyManager && wo.PropertyManager != "" {
			var manager model.User
			err := tx.Where("name = ? AND role = ?", wo.PropertyManager, model.RolePropertyManager).
				First(&manager).Error
			if err == nil && manager.ID != actor.ID {
				text := fmt.Sprintf("A quote has been sent for Request #%d at %s.", wo.ID, wo.PropertyName)
				n, err := addNotification(tx, manager.ID, &wo.ID, text, link)
				if err != nil {
					return err
				}
				pending = append(pending, n)
				ev := notify.QuoteApprovalNeededEvent{
					WorkOrderID:    wo.ID,
					Property:       wo.PropertyName,
					RecipientID:    manager.ID,
					RecipientName:  manager.Name,
					RecipientEmail: manager.Email,
				}
				events = append(events, func(ctx context.Context) { _ = s.notifier.NotifyQuoteApprovalNeeded(ctx, ev) })
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if result.Changed {
		metrics.RecordTransition(oldState, newStatus)
		for _, n := range pending {
			s.broadcast(n)
		}
		s.broadcastWorkOrder(id, "status", map[string]interface{}{"status": newStatus})
		for _, fire := range events {
			go fire(context.Background())
		}
	}

	wo, err := s.GetByID(id, actor.IsSuperUser())
	return wo, result, err
}

// MarkCompleted is the requester-facing shortcut: the author (or
// staff) closes out their own request in one step.
func (s *WorkOrderService) MarkCompleted(id uint, actor *model.User) (*lifecycle.Result, error) {
	var result *lifecycle.Result
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var wo model.WorkOrder
		if err := tx.First(&wo, id).Error; err != nil {
			return lifecycle.NotFound("work order not found")
		}
		a := actorOf(actor)
		isAuthor := wo.AuthorID != nil && *wo.AuthorID == actor.ID
		if !isAuthor && !a.Staff() {
			return lifecycle.Denied("you do not have permission to mark this request as completed")
		}

		st := stateOf(&wo)
		if st.Status.Finishing() {
			result = &lifecycle.Result{Notice: fmt.Sprintf("Request status is already %s.", wo.Status)}
			return nil
		}
		old := wo.Status
		res, err := lifecycle.ChangeStatus(st, lifecycle.StatusCompleted, nil, time.Now())
		if err != nil {
			return err
		}
		result = res
		applyState(&wo, st)
		if err := tx.Model(&model.WorkOrder{}).Where("id = ?", wo.ID).Updates(stateUpdates(&wo)).Error; err != nil {
			return err
		}
		line := fmt.Sprintf("Request marked as completed (Status changed from %s).", old)
		return addAudit(tx, wo.ID, actor, []string{line}, nil)
	})
	return result, err
}

func (s *WorkOrderService) Cancel(id uint, actor *model.User) (*lifecycle.Result, error) {
	var result *lifecycle.Result
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var wo model.WorkOrder
		if err := tx.Unscoped().First(&wo, id).Error; err != nil {
			return lifecycle.NotFound("work order not found")
		}
		if !actorOf(actor).CanCancel(wo.AuthorID, wo.PropertyManager) {
			return lifecycle.Denied("you do not have permission to cancel this request")
		}

		st := stateOf(&wo)
		res, err := lifecycle.Cancel(st, actor.Name, actor.Role)
		if err != nil {
			return err
		}
		result = res
		applyState(&wo, st)
		if err := tx.Model(&model.WorkOrder{}).Where("id = ?", wo.ID).Updates(stateUpdates(&wo)).Error; err != nil {
			return err
		}
		return addAudit(tx, wo.ID, actor, res.Audit, nil)
	})
	if err == nil && result != nil && result.Changed {
		s.broadcastWorkOrder(id, "status", map[string]interface{}{"status": string(lifecycle.StatusCancelled)})
	}
	return result, err
}

func (s *WorkOrderService) AssignVendor(id, vendorID uint, actor *model.User) (*lifecycle.Result, error) {
	if !actorOf(actor).Staff() {
		return nil, lifecycle.Denied("you do not have permission to assign vendors")
	}
	var result *lifecycle.Result
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var wo model.WorkOrder
		if err := tx.First(&wo, id).Error; err != nil {
			return lifecycle.NotFound("work order not found")
		}
		var vendor model.Vendor
		if err := tx.First(&vendor, vendorID).Error; err != nil {
			return lifecycle.NotFound("vendor not found")
		}
		if wo.VendorID != nil && *wo.VendorID == vendor.ID {
			result = &lifecycle.Result{Notice: fmt.Sprintf("Vendor '%s' is already assigned.", vendor.Name)}
			return nil
		}
		if err := tx.Model(&model.WorkOrder{}).Where("id = ?", wo.ID).
			Update("vendor_id", vendor.ID).Error; err != nil {
			return err
		}
		result = &lifecycle.Result{Changed: true}
		return addAudit(tx, wo.ID, actor, []string{fmt.Sprintf("Vendor '%s' assigned.", vendor.Name)}, nil)
	})
	return result, err
}

func (s *WorkOrderService) UnassignVendor(id uint, actor *model.User) (*lifecycle.Result, error) {
	if !actorOf(actor).Staff() {
		return nil, lifecycle.Denied("you do not have permission to assign vendors")
	}
	var result *lifecycle.Result
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var wo model.WorkOrder
		if err := tx.Preload("Vendor").First(&wo, id).Error; err != nil {
			return lifecycle.NotFound("work order not found")
		}
		if wo.VendorID == nil {
			result = &lifecycle.Result{Notice: "No vendor was assigned to this request."}
			return nil
		}
		name := ""
		if wo.Vendor != nil {
			name = wo.Vendor.Name
		}
		if err := tx.Model(&model.WorkOrder{}).Where("id = ?", wo.ID).
			Update("vendor_id", nil).Error; err != nil {
			return err
		}
		result = &lifecycle.Result{Changed: true}
		return addAudit(tx, wo.ID, actor, []string{fmt.Sprintf("Vendor '%s' unassigned.", name)}, nil)
	})
	return result, err
}

func (s *WorkOrderService) AddTag(id uint, actor *model.User, tag, followUpDate string) (*lifecycle.Result, error) {
	if !actorOf(actor).Staff() {
		return nil, lifecycle.Denied("you do not have permission to add the '%s' tag", tag)
	}
	var followUp *time.Time
	if followUpDate != "" {
		t, err := lifecycle.ParseDate(followUpDate)
		if err != nil {
			return nil, lifecycle.Invalid("a valid MM/DD/YYYY date is required")
		}
		followUp = &t
	}

	var result *lifecycle.Result
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var wo model.WorkOrder
		if err := tx.First(&wo, id).Error; err != nil {
			return lifecycle.NotFound("work order not found")
		}
		st := stateOf(&wo)
		res, err := lifecycle.AddTag(st, tag, followUp)
		if err != nil {
			return err
		}
		result = res
		if !res.Changed {
			return nil
		}
		applyState(&wo, st)
		if err := tx.Model(&model.WorkOrder{}).Where("id = ?", wo.ID).Updates(stateUpdates(&wo)).Error; err != nil {
			return err
		}
		return addAudit(tx, wo.ID, actor, res.Audit, nil)
	})
	return result, err
}

func (s *WorkOrderService) RemoveTag(id uint, actor *model.User, tag string) (*lifecycle.Result, error) {
	var result *lifecycle.Result
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var wo model.WorkOrder
		if err := tx.First(&wo, id).Error; err != nil {
			return lifecycle.NotFound("work order not found")
		}
		if !actorOf(actor).CanRemoveTag(tag, wo.PropertyManager) {
			return lifecycle.Denied("you do not have permission to remove the '%s' tag", tag)
		}
		st := stateOf(&wo)
		res, err := lifecycle.RemoveTag(st, tag)
		if err != nil {
			return err
		}
		result = res
		if !res.Changed {
			return nil
		}
		applyState(&wo, st)
		if err := tx.Model(&model.WorkOrder{}).Where("id = ?", wo.ID).Updates(stateUpdates(&wo)).Error; err != nil {
			return err
		}
		return addAudit(tx, wo.ID, actor, res.Audit, nil)
	})
	return result, err
}

type UpdateWorkOrderInput struct {
	WONumber    *string
	Title       *string
	Description *string
	Unit        *string
	TenantName  *string
	TenantPhone *string
}

// Update edits the descriptive fields. Changes land in the audit
// detail so the trail shows what moved.
func (s *WorkOrderService) Update(id uint, actor *model.User, in UpdateWorkOrderInput) (*model.WorkOrder, error) {
	if !actorOf(actor).Staff() {
		return nil, lifecycle.Denied("you do not have permission to edit this request")
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var wo model.WorkOrder
		if err := tx.First(&wo, id).Error; err != nil {
			return lifecycle.NotFound("work order not found")
		}

		updates := map[string]interface{}{}
		detail := model.JSONMap{}
		set := func(col, old string, val *string) {
			if val != nil && *val != old {
				updates[col] = *val
				detail[col] = map[string]interface{}{"from": old, "to": *val}
			}
		}
		set("wo_number", wo.WONumber, in.WONumber)
		set("title", wo.Title, in.Title)
		set("description", wo.Description, in.Description)
		set("unit", wo.Unit, in.Unit)
		set("tenant_name", wo.TenantName, in.TenantName)
		set("tenant_phone", wo.TenantPhone, in.TenantPhone)

		if len(updates) == 0 {
			return addAudit(tx, wo.ID, actor, []string{"Submitted edit form, no changes detected."}, nil)
		}
		if err := tx.Model(&model.WorkOrder{}).Where("id = ?", wo.ID).Updates(updates).Error; err != nil {
			return err
		}
		return addAudit(tx, wo.ID, actor, []string{"Request details updated."}, detail)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(id, actor.IsSuperUser())
}

// Reassign moves a request to a different requester.
func (s *WorkOrderService) Reassign(id, newAuthorID uint, actor *model.User) error {
	if !actorOf(actor).CanManageCatalog() {
		return lifecycle.Denied("you do not have permission to reassign requests")
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var wo model.WorkOrder
		if err := tx.First(&wo, id).Error; err != nil {
			return lifecycle.NotFound("work order not found")
		}
		var user model.User
		if err := tx.First(&user, newAuthorID).Error; err != nil {
			return lifecycle.NotFound("user not found")
		}
		if err := tx.Model(&model.WorkOrder{}).Where("id = ?", wo.ID).
			Updates(map[string]interface{}{"author_id": user.ID, "author_name": user.Name}).Error; err != nil {
			return err
		}
		return addAudit(tx, wo.ID, actor, []string{fmt.Sprintf("Request reassigned to %s", user.Name)}, nil)
	})
}

func (s *WorkOrderService) SoftDelete(id uint, actor *model.User) error {
	if !actorOf(actor).CanModerate() {
		return lifecycle.Denied("only a Super User can delete requests")
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var wo model.WorkOrder
		if err := tx.Unscoped().First(&wo, id).Error; err != nil {
			return lifecycle.NotFound("work order not found")
		}
		if wo.DeletedAt.Valid {
			return lifecycle.Conflict("request #%d is already deleted", wo.ID)
		}
		if err := addAudit(tx, wo.ID, actor, []string{"Request soft-deleted."}, nil); err != nil {
			return err
		}
		return tx.Delete(&model.WorkOrder{}, wo.ID).Error
	})
}

func (s *WorkOrderService) Restore(id uint, actor *model.User) error {
	if !actorOf(actor).CanModerate() {
		return lifecycle.Denied("only a Super User can restore requests")
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var wo model.WorkOrder
		if err := tx.Unscoped().First(&wo, id).Error; err != nil {
			return lifecycle.NotFound("work order not found")
		}
		if !wo.DeletedAt.Valid {
			return lifecycle.Conflict("request #%d is not deleted", wo.ID)
		}
		if err := tx.Unscoped().Model(&model.WorkOrder{}).Where("id = ?", wo.ID).
			Update("deleted_at", nil).Error; err != nil {
			return err
		}
		return addAudit(tx, wo.ID, actor, []string{"Request restored from deleted items."}, nil)
	})
}

// PermanentDelete removes the row and everything hanging off it,
// including the audit trail.
func (s *WorkOrderService) PermanentDelete(id uint, actor *model.User) error {
	if !actorOf(actor).CanModerate() {
		return lifecycle.Denied("only a Super User can permanently delete requests")
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var wo model.WorkOrder
		if err := tx.Unscoped().First(&wo, id).Error; err != nil {
			return lifecycle.NotFound("work order not found")
		}
		if err := tx.Unscoped().Where("work_order_id = ?", wo.ID).Delete(&model.Note{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("work_order_id = ?", wo.ID).Delete(&model.AuditLog{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("work_order_id = ?", wo.ID).Delete(&model.Attachment{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("work_order_id = ?", wo.ID).Delete(&model.Quote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("work_order_id = ?", wo.ID).Delete(&model.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM work_order_viewers WHERE work_order_id = ?", wo.ID).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&model.WorkOrder{}, wo.ID).Error
	})
}

// AuditTrail returns the activity log, newest first.
func (s *WorkOrderService) AuditTrail(id uint, actor *model.User) ([]model.AuditLog, error) {
	if !actorOf(actor).Staff() {
		return nil, lifecycle.Denied("you do not have permission to view the activity log")
	}
	var logs []model.AuditLog
	err := s.db.Where("work_order_id = ?", id).Order("created_at desc, id desc").Find(&logs).Error
	return logs, err
}
