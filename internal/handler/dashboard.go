package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/raymondpolo/brc-vendor-form/internal/lifecycle"
	"github.com/raymondpolo/brc-vendor-form/internal/middleware"
	"github.com/raymondpolo/brc-vendor-form/internal/model"
)

type DashboardHandler struct {
	db *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// GET /dashboard/stats
func (h *DashboardHandler) GetStats(c *gin.Context) {
	user := middleware.GetCurrentUser(c)

	scoped := func() *gorm.DB {
		q := h.db.Model(&model.WorkOrder{})
		if !user.IsStaff() {
			q = q.Where("author_id = ?", user.ID)
		} else if user.Role == model.RolePropertyManager {
			q = q.Where("property_manager = ?", user.Name)
		}
		return q
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var rows []statusCount
	scoped().Select("status, count(*) as count").Group("status").Scan(&rows)

	byStatus := make(map[string]int64, len(rows))
	var total int64
	for _, r := range rows {
		byStatus[r.Status] = r.Count
		total += r.Count
	}

	var open int64
	for _, s := range lifecycle.Statuses() {
		if !s.Finishing() && s != lifecycle.StatusCancelled {
			open += byStatus[string(s)]
		}
	}

	var awaitingApproval int64
	scoped().Where("status = ?", string(lifecycle.StatusQuoteSent)).Count(&awaitingApproval)

	now := time.Now()
	endOfToday := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
	var followUpsDue int64
	scoped().Where("follow_up_date IS NOT NULL AND follow_up_date <= ? AND tags LIKE ?",
		endOfToday, "%"+lifecycle.TagFollowUp+"%").Count(&followUpsDue)

	// Tag counts come out of the comma-joined column, so they are
	// parsed in process rather than grouped in SQL.
	var tagCols []*string
	scoped().Where("tags IS NOT NULL").Pluck("tags", &tagCols)
	byTag := make(map[string]int64)
	for _, col := range tagCols {
		for tag := range lifecycle.ParseTags(col) {
			byTag[tag]++
		}
	}

	// Go-backs grouped by the assigned vendor.
	type vendorCount struct {
		VendorName string
		Count      int64
	}
	var goBacks []vendorCount
	scoped().Select("vendors.name as vendor_name, count(*) as count").
		Joins("JOIN vendors ON vendors.id = work_orders.vendor_id").
		Where("work_orders.tags LIKE ?", "%"+lifecycle.TagGoBack+"%").
		Group("vendors.name").Scan(&goBacks)

	goBacksByVendor := make(map[string]int64, len(goBacks))
	for _, r := range goBacks {
		goBacksByVendor[r.VendorName] = r.Count
	}

	// Quote decisions grouped by property manager.
	type decisionCount struct {
		PropertyManager string
		Status          string
		Count           int64
	}
	var decisions []decisionCount
	decisionQ := h.db.Model(&model.Quote{}).
		Select("work_orders.property_manager as property_manager, quotes.status as status, count(*) as count").
		Joins("JOIN work_orders ON work_orders.id = quotes.work_order_id").
		Where("work_orders.deleted_at IS NULL AND quotes.status IN ?", []string{model.QuoteApproved, model.QuoteDeclined})
	if !user.IsStaff() {
		decisionQ = decisionQ.Where("work_orders.author_id = ?", user.ID)
	} else if user.Role == model.RolePropertyManager {
		decisionQ = decisionQ.Where("work_orders.property_manager = ?", user.Name)
	}
	decisionQ.Group("work_orders.property_manager, quotes.status").Scan(&decisions)

	decisionsByManager := make(map[string]gin.H)
	for _, r := range decisions {
		row, ok := decisionsByManager[r.PropertyManager]
		if !ok {
			row = gin.H{"approved": int64(0), "declined": int64(0)}
			decisionsByManager[r.PropertyManager] = row
		}
		switch r.Status {
		case model.QuoteApproved:
			row["approved"] = r.Count
		case model.QuoteDeclined:
			row["declined"] = r.Count
		}
	}

	// Recent activity (last 10 audit entries across visible work orders)
	var recent []model.AuditLog
	auditQ := h.db.Model(&model.AuditLog{}).
		Joins("JOIN work_orders ON work_orders.id = audit_logs.work_order_id").
		Where("work_orders.deleted_at IS NULL")
	if !user.IsStaff() {
		auditQ = auditQ.Where("work_orders.author_id = ?", user.ID)
	} else if user.Role == model.RolePropertyManager {
		auditQ = auditQ.Where("work_orders.property_manager = ?", user.Name)
	}
	auditQ.Order("audit_logs.created_at desc").Limit(10).Find(&recent)

	recentActivity := make([]gin.H, 0, len(recent))
	for _, e := range recent {
		recentActivity = append(recentActivity, gin.H{
			"work_order_id": e.WorkOrderID,
			"user_name":     e.UserName,
			"text":          e.Text,
			"time":          e.CreatedAt,
		})
	}

	Success(c, gin.H{
		"total":              total,
		"open":               open,
		"by_status":          byStatus,
		"awaiting_approval":  awaitingApproval,
		"follow_ups_due":     followUpsDue,
		"by_tag":             byTag,
		"go_backs_by_vendor": goBacksByVendor,
		"quote_decisions":    decisionsByManager,
		"recent_activity":    recentActivity,
	})
}
