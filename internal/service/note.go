package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/raymondpolo/brc-vendor-form/internal/lifecycle"
	"github.com/raymondpolo/brc-vendor-form/internal/model"
	"github.com/raymondpolo/brc-vendor-form/internal/notify"
	"github.com/raymondpolo/brc-vendor-form/internal/sse"
)

// mentionPattern matches "@First" or "@First Last".
var mentionPattern = regexp.MustCompile(`@(\w+(?:\s\w+)?)`)

type NoteService struct {
	db       *gorm.DB
	hub      *sse.Hub
	notifier notify.Notifier
}

func NewNoteService(db *gorm.DB, hub *sse.Hub) *NoteService {
	return &NoteService{db: db, hub: hub, notifier: notify.NoopNotifier{}}
}

func (s *NoteService) SetNotifier(n notify.Notifier) {
	if n != nil {
		s.notifier = n
	}
}

// Create posts a note, broadcasts it to the work order's live stream
// and notifies @mentioned users. Mentioned users also become viewers
// so the request shows up in their feed.
func (s *NoteService) Create(workOrderID uint, actor *model.User, body string) (*model.Note, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, lifecycle.Invalid("note body cannot be empty")
	}

	var (
		note    *model.Note
		pending []*model.Notification
		events  []func(context.Context)
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var wo model.WorkOrder
		if err := tx.First(&wo, workOrderID).Error; err != nil {
			return lifecycle.NotFound("work order not found")
		}
		a := actorOf(actor)
		if !a.Staff() && (wo.AuthorID == nil || *wo.AuthorID != actor.ID) {
			return lifecycle.Denied("you do not have permission to comment on this request")
		}

		note = &model.Note{WorkOrderID: wo.ID, UserID: actor.ID, Body: body}
		if err := tx.Create(note).Error; err != nil {
			return err
		}
		note.User = actor

		link := fmt.Sprintf("/requests/%d", wo.ID)
		for _, m := range mentionPattern.FindAllStringSubmatch(body, -1) {
			var mentioned model.User
			if err := tx.Where("name = ?", m[1]).First(&mentioned).Error; err != nil {
				continue
			}
			if mentioned.ID == actor.ID {
				continue
			}
			if err := tx.Model(&wo).Association("Viewers").Append(&mentioned); err != nil {
				return err
			}
			text := fmt.Sprintf("%s mentioned you in a note on Request #%d.", actor.Name, wo.ID)
			n, err := addNotification(tx, mentioned.ID, &wo.ID, text, link)
			if err != nil {
				return err
			}
			pending = append(pending, n)
			ev := notify.NoteMentionEvent{
				WorkOrderID:    wo.ID,
				AuthorName:     actor.Name,
				RecipientID:    mentioned.ID,
				RecipientName:  mentioned.Name,
				RecipientEmail: mentioned.Email,
			}
			events = append(events, func(ctx context.Context) { _ = s.notifier.NotifyNoteMention(ctx, ev) })
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.Broadcast(sse.WorkOrderTopic(workOrderID), sse.Event{Type: "note", Data: note})
		for _, n := range pending {
			s.hub.Broadcast(sse.UserTopic(n.UserID), sse.Event{Type: "notification", Data: n})
		}
	}
	for _, fire := range events {
		go fire(context.Background())
	}
	return note, nil
}

func (s *NoteService) ListByWorkOrder(workOrderID uint) ([]model.Note, error) {
	var notes []model.Note
	err := s.db.Preload("User").
		Where("work_order_id = ?", workOrderID).
		Order("created_at asc").Find(&notes).Error
	return notes, err
}
