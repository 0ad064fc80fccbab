package reminder

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/raymondpolo/brc-vendor-form/internal/lifecycle"
	"github.com/raymondpolo/brc-vendor-form/internal/logger"
	"github.com/raymondpolo/brc-vendor-form/internal/metrics"
	"github.com/raymondpolo/brc-vendor-form/internal/model"
	"github.com/raymondpolo/brc-vendor-form/internal/notify"
	"github.com/raymondpolo/brc-vendor-form/internal/sse"
)

// Sweeper periodically finds work orders whose follow-up date has passed,
// notifies admin staff and clears the follow-up marker.
type Sweeper struct {
	db       *gorm.DB
	hub      *sse.Hub
	notifier notify.Notifier
	interval time.Duration
}

func NewSweeper(db *gorm.DB, hub *sse.Hub, notifier notify.Notifier, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Sweeper{db: db, hub: hub, notifier: notifier, interval: interval}
}

func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.RunOnce(ctx); err != nil {
					logger.L().Error("follow-up reminder sweep failed", zap.Error(err))
				}
			}
		}
	}()
}

// RunOnce performs a single sweep. Exposed for tests and for running the
// sweep on demand.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	now := time.Now()
	endOfToday := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())

	var due []model.WorkOrder
	err := s.db.Where("follow_up_date IS NOT NULL AND follow_up_date <= ? AND tags LIKE ?",
		endOfToday, "%"+lifecycle.TagFollowUp+"%").Find(&due).Error
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}

	var staff []model.User
	if err := s.db.Where("role IN ? AND status = 1",
		[]string{model.RoleScheduler, model.RoleAdmin, model.RoleSuperUser}).Find(&staff).Error; err != nil {
		return err
	}

	system := s.systemActor()

	for i := range due {
		wo := &due[i]
		if err := s.remind(ctx, wo, staff, system); err != nil {
			logger.L().Error("follow-up reminder failed",
				zap.Uint("work_order_id", wo.ID), zap.Error(err))
			continue
		}
		metrics.RecordReminderSent()
	}
	return nil
}

func (s *Sweeper) remind(ctx context.Context, wo *model.WorkOrder, staff []model.User, system lifecycle.Actor) error {
	st := &lifecycle.State{
		Status:       lifecycle.Status(wo.Status),
		Tags:         lifecycle.ParseTags(wo.Tags),
		FollowUpDate: wo.FollowUpDate,
		LastFollowUp: wo.LastFollowUpSent,
	}
	res := lifecycle.ApplyFollowUpReminder(st, time.Now())
	if !res.Changed {
		return nil
	}

	message := fmt.Sprintf("Follow-up reminder for Request #%d (%s)", wo.ID, wo.PropertyName)
	link := fmt.Sprintf("/requests/%d", wo.ID)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"tags":                st.Tags.Column(),
			"follow_up_date":      st.FollowUpDate,
			"last_follow_up_sent": st.LastFollowUp,
		}
		if err := tx.Model(&model.WorkOrder{}).Where("id = ?", wo.ID).Updates(updates).Error; err != nil {
			return err
		}
		for _, line := range res.Audit {
			entry := model.AuditLog{
				WorkOrderID: wo.ID,
				UserID:      &system.ID,
				UserName:    system.Name,
				Text:        line,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}
		for _, u := range staff {
			n := model.Notification{
				UserID:      u.ID,
				WorkOrderID: &wo.ID,
				Message:     message,
				Link:        link,
			}
			if err := tx.Create(&n).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.hub != nil {
		for _, u := range staff {
			s.hub.Broadcast(sse.UserTopic(u.ID), sse.Event{Type: "notification", Data: map[string]interface{}{
				"message": message,
				"link":    link,
			}})
		}
	}
	if s.notifier != nil {
		for _, u := range staff {
			ev := notify.FollowUpReminderEvent{
				WorkOrderID:    wo.ID,
				Property:       wo.PropertyName,
				RecipientID:    u.ID,
				RecipientName:  u.Name,
				RecipientEmail: u.Email,
			}
			go s.notifier.NotifyFollowUpReminder(ctx, ev)
		}
	}
	return nil
}

// Reminder audits are attributed to the first Super User account, so the
// trail always names a real administrator.
func (s *Sweeper) systemActor() lifecycle.Actor {
	var su model.User
	if err := s.db.Where("role = ?", model.RoleSuperUser).Order("id").First(&su).Error; err == nil {
		return lifecycle.Actor{ID: su.ID, Name: su.Name, Role: su.Role}
	}
	return lifecycle.Actor{ID: 1, Name: "System", Role: model.RoleSuperUser}
}
