package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/raymondpolo/brc-vendor-form/internal/lifecycle"
	"github.com/raymondpolo/brc-vendor-form/internal/middleware"
	"github.com/raymondpolo/brc-vendor-form/internal/model"
)

type CalendarHandler struct {
	db *gorm.DB
}

func NewCalendarHandler(db *gorm.DB) *CalendarHandler {
	return &CalendarHandler{db: db}
}

// GET /calendar/events
//
// Returns scheduled visits and follow-up deadlines as a flat event
// list, scoped the same way the work order list is: requesters see
// their own requests, property managers their properties, other staff
// everything. Optional from/to bounds use the 2006-01-02 layout.
func (h *CalendarHandler) Events(c *gin.Context) {
	user := middleware.GetCurrentUser(c)

	from, to, err := parseDateRange(c)
	if err != nil {
		Fail(c, err)
		return
	}

	scoped := func(col string) *gorm.DB {
		q := h.db.Model(&model.WorkOrder{}).Where(col + " IS NOT NULL")
		if !from.IsZero() {
			q = q.Where(col+" >= ?", from)
		}
		if !to.IsZero() {
			q = q.Where(col+" < ?", to.AddDate(0, 0, 1))
		}
		if !user.IsStaff() {
			q = q.Where("author_id = ?", user.ID)
		} else if user.Role == model.RolePropertyManager {
			q = q.Where("property_manager = ?", user.Name)
		}
		return q
	}

	var scheduled []model.WorkOrder
	if err := scoped("scheduled_date").
		Where("status = ?", string(lifecycle.StatusScheduled)).
		Preload("Vendor").Find(&scheduled).Error; err != nil {
		InternalError(c, err.Error())
		return
	}

	var followUps []model.WorkOrder
	if err := scoped("follow_up_date").
		Where("tags LIKE ?", "%"+lifecycle.TagFollowUp+"%").
		Find(&followUps).Error; err != nil {
		InternalError(c, err.Error())
		return
	}

	events := make([]gin.H, 0, len(scheduled)+len(followUps))
	for _, wo := range scheduled {
		e := gin.H{
			"type":          "scheduled",
			"date":          wo.ScheduledDate,
			"work_order_id": wo.ID,
			"title":         wo.Title,
			"property_name": wo.PropertyName,
		}
		if wo.Vendor != nil {
			e["vendor_name"] = wo.Vendor.Name
		}
		events = append(events, e)
	}
	for _, wo := range followUps {
		events = append(events, gin.H{
			"type":          "follow_up",
			"date":          wo.FollowUpDate,
			"work_order_id": wo.ID,
			"title":         wo.Title,
			"property_name": wo.PropertyName,
		})
	}

	Success(c, events)
}

func parseDateRange(c *gin.Context) (from, to time.Time, err error) {
	if s := c.Query("from"); s != "" {
		from, err = time.Parse("2006-01-02", s)
		if err != nil {
			return from, to, lifecycle.Invalid("invalid from date, expected YYYY-MM-DD")
		}
	}
	if s := c.Query("to"); s != "" {
		to, err = time.Parse("2006-01-02", s)
		if err != nil {
			return from, to, lifecycle.Invalid("invalid to date, expected YYYY-MM-DD")
		}
	}
	return from, to, nil
}
