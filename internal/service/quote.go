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

type QuoteService struct {
	db       *gorm.DB
	hub      *sse.Hub
	notifier notify.Notifier
}

func NewQuoteService(db *gorm.DB, hub *sse.Hub) *QuoteService {
	return &QuoteService{db: db, hub: hub, notifier: notify.NoopNotifier{}}
}

func (s *QuoteService) SetNotifier(n notify.Notifier) {
	if n != nil {
		s.notifier = n
	}
}

type CreateQuoteInput struct {
	VendorID    uint
	Amount      float64
	Description string
	// Optional storage reference for the quote document.
	FileName    string
	StorageKey  string
	ContentType string
	Size        int64
}

func (s *QuoteService) Create(workOrderID uint, actor *model.User, in CreateQuoteInput) (*model.Quote, error) {
	if !actorOf(actor).Staff() {
		return nil, lifecycle.Denied("you do not have permission to add quotes")
	}

	var quote *model.Quote
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var wo model.WorkOrder
		if err := tx.First(&wo, workOrderID).Error; err != nil {
			return lifecycle.NotFound("work order not found")
		}
		var vendor model.Vendor
		if err := tx.First(&vendor, in.VendorID).Error; err != nil {
			return lifecycle.NotFound("vendor not found")
		}

		pending := model.QuotePending
		quote = &model.Quote{
			WorkOrderID: wo.ID,
			VendorID:    vendor.ID,
			Amount:      in.Amount,
			Description: in.Description,
			Status:      &pending,
			DateSent:    time.Now(),
		}
		if err := tx.Create(quote).Error; err != nil {
			return err
		}

		line := fmt.Sprintf("Quote for vendor '%s' added.", vendor.Name)
		if in.StorageKey != "" {
			att := model.Attachment{
				QuoteID:     &quote.ID,
				WorkOrderID: &wo.ID,
				FileName:    in.FileName,
				StorageKey:  in.StorageKey,
				ContentType: in.ContentType,
				Size:        in.Size,
				UploaderID:  actor.ID,
			}
			if err := tx.Create(&att).Error; err != nil {
				return err
			}
			line = fmt.Sprintf("Quote '%s' for vendor '%s' uploaded.", in.FileName, vendor.Name)
		}
		return addAudit(tx, wo.ID, actor, []string{line}, nil)
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// Decide applies an approve, decline or clear action to a quote and
// lets the lifecycle rules ripple through the work order.
func (s *QuoteService) Decide(workOrderID, quoteID uint, action string, actor *model.User) (*lifecycle.Result, error) {
	var (
		result  *lifecycle.Result
		pending *model.Notification
		event   func(context.Context)
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var wo model.WorkOrder
		if err := tx.First(&wo, workOrderID).Error; err != nil {
			return lifecycle.NotFound("work order not found")
		}
		if !actorOf(actor).CanDecideQuote(wo.PropertyManager) {
			return lifecycle.Denied("you do not have permission to approve or decline quotes")
		}

		var quote model.Quote
		if err := tx.Preload("Vendor").First(&quote, quoteID).Error; err != nil {
			return lifecycle.NotFound("quote not found")
		}
		if quote.WorkOrderID != wo.ID {
			return lifecycle.NotFound("quote not found")
		}

		var siblings []model.Quote
		if err := tx.Where("work_order_id = ? AND id <> ?", wo.ID, quote.ID).Find(&siblings).Error; err != nil {
			return err
		}

		st := stateOf(&wo)
		vendorName := ""
		if quote.Vendor != nil {
			vendorName = quote.Vendor.Name
		}
		q := &lifecycle.QuoteState{ID: quote.ID, VendorName: vendorName, Decision: quote.Status}
		others := make([]*lifecycle.QuoteState, 0, len(siblings))
		for i := range siblings {
			others = append(others, &lifecycle.QuoteState{ID: siblings[i].ID, Decision: siblings[i].Status})
		}

		var res *lifecycle.Result
		var err error
		switch action {
		case "approve":
			res, err = lifecycle.ApproveQuote(st, q)
		case "decline":
			res, err = lifecycle.DeclineQuote(st, q, others)
		case "clear":
			res, err = lifecycle.ClearQuoteDecision(st, q, others)
		default:
			return lifecycle.Invalid("invalid action %q", action)
		}
		if err != nil {
			return err
		}
		result = res
		if !res.Changed {
			return nil
		}

		if err := tx.Model(&model.Quote{}).Where("id = ?", quote.ID).
			Update("status", q.Decision).Error; err != nil {
			return err
		}
		applyState(&wo, st)
		if err := tx.Model(&model.WorkOrder{}).Where("id = ?", wo.ID).Updates(stateUpdates(&wo)).Error; err != nil {
			return err
		}
		if err := addAudit(tx, wo.ID, actor, res.Audit, nil); err != nil {
			return err
		}

		if res.NotifyAuthor && wo.AuthorID != nil && *wo.AuthorID != actor.ID {
			var author model.User
			if err := tx.First(&author, *wo.AuthorID).Error; err == nil {
				decision := "approved"
				if action == "decline" {
					decision = "declined"
				}
				text := fmt.Sprintf("The quote from %s on Request #%d was %s.", vendorName, wo.ID, decision)
				link := fmt.Sprintf("/requests/%d", wo.ID)
				n, err := addNotification(tx, author.ID, &wo.ID, text, link)
				if err != nil {
					return err
				}
				pending = n
				ev := notify.QuoteDecisionEvent{
					WorkOrderID:    wo.ID,
					VendorName:     vendorName,
					Decision:       decision,
					RecipientID:    author.ID,
					RecipientName:  author.Name,
					RecipientEmail: author.Email,
				}
				event = func(ctx context.Context) { _ = s.notifier.NotifyQuoteDecision(ctx, ev) }
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Changed {
		metrics.RecordQuoteDecision(action)
		if pending != nil && s.hub != nil {
			s.hub.Broadcast(sse.UserTopic(pending.UserID), sse.Event{Type: "notification", Data: pending})
		}
		if s.hub != nil {
			s.hub.Broadcast(sse.WorkOrderTopic(workOrderID), sse.Event{Type: "quote", Data: map[string]interface{}{
				"quote_id": quoteID,
				"action":   action,
			}})
		}
		if event != nil {
			go event(context.Background())
		}
	}
	return result, nil
}

// Delete removes a quote and its attachment. Deleting the approved
// quote releases the approval without marking anything declined.
func (s *QuoteService) Delete(workOrderID, quoteID uint, actor *model.User) error {
	if !actorOf(actor).Staff() {
		return lifecycle.Denied("you do not have permission to delete quotes")
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var wo model.WorkOrder
		if err := tx.First(&wo, workOrderID).Error; err != nil {
			return lifecycle.NotFound("work order not found")
		}
		var quote model.Quote
		if err := tx.Preload("Vendor").Preload("Attachment").First(&quote, quoteID).Error; err != nil {
			return lifecycle.NotFound("quote not found")
		}
		if quote.WorkOrderID != wo.ID {
			return lifecycle.NotFound("quote not found")
		}

		var siblings []model.Quote
		if err := tx.Where("work_order_id = ? AND id <> ?", wo.ID, quote.ID).Find(&siblings).Error; err != nil {
			return err
		}

		st := stateOf(&wo)
		vendorName := ""
		if quote.Vendor != nil {
			vendorName = quote.Vendor.Name
		}
		q := &lifecycle.QuoteState{ID: quote.ID, VendorName: vendorName, Decision: quote.Status}
		others := make([]*lifecycle.QuoteState, 0, len(siblings))
		for i := range siblings {
			others = append(others, &lifecycle.QuoteState{ID: siblings[i].ID, Decision: siblings[i].Status})
		}

		res := lifecycle.RemoveQuote(st, q, others)
		applyState(&wo, st)
		if err := tx.Model(&model.WorkOrder{}).Where("id = ?", wo.ID).Updates(stateUpdates(&wo)).Error; err != nil {
			return err
		}
		if err := addAudit(tx, wo.ID, actor, res.Audit, nil); err != nil {
			return err
		}

		fileName := ""
		if quote.Attachment != nil {
			fileName = quote.Attachment.FileName
			if err := tx.Unscoped().Delete(&model.Attachment{}, quote.Attachment.ID).Error; err != nil {
				return err
			}
		}
		if err := tx.Unscoped().Delete(&model.Quote{}, quote.ID).Error; err != nil {
			return err
		}
		line := fmt.Sprintf("Deleted quote '%s' from vendor '%s'.", fileName, vendorName)
		return addAudit(tx, wo.ID, actor, []string{line}, nil)
	})
}

func (s *QuoteService) ListByWorkOrder(workOrderID uint) ([]model.Quote, error) {
	var quotes []model.Quote
	err := s.db.Preload("Vendor").Preload("Attachment").
		Where("work_order_id = ?", workOrderID).
		Order("created_at asc").Find(&quotes).Error
	return quotes, err
}
