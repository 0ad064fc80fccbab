package service

import (
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/raymondpolo/brc-vendor-form/internal/model"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(
		&model.User{},
		&model.Property{},
		&model.Vendor{},
		&model.RequestType{},
		&model.WorkOrder{},
		&model.Quote{},
		&model.Attachment{},
		&model.Note{},
		&model.Notification{},
		&model.AuditLog{},
		&model.PushSubscription{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name, email, role string) *model.User {
	t.Helper()
	u := &model.User{Name: name, Email: email, Role: role, Status: 1}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	return u
}

func seedProperty(t *testing.T, db *gorm.DB, name, manager string) *model.Property {
	t.Helper()
	p := &model.Property{Name: name, Address: "100 Main St", Manager: manager}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed property %s: %v", name, err)
	}
	return p
}

func seedVendor(t *testing.T, db *gorm.DB, name string) *model.Vendor {
	t.Helper()
	v := &model.Vendor{Name: name, Trade: "Plumbing", Email: name + "@vendors.example.com"}
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("seed vendor %s: %v", name, err)
	}
	return v
}

func seedRequestType(t *testing.T, db *gorm.DB, name string) *model.RequestType {
	t.Helper()
	rt := &model.RequestType{Name: name}
	if err := db.Create(rt).Error; err != nil {
		t.Fatalf("seed request type %s: %v", name, err)
	}
	return rt
}

type fixture struct {
	db        *gorm.DB
	workOrder *WorkOrderService
	quotes    *QuoteService

	requester *model.User
	manager   *model.User
	scheduler *model.User
	admin     *model.User
	superUser *model.User

	property    *model.Property
	vendor      *model.Vendor
	requestType *model.RequestType
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupDB(t)

	f := &fixture{
		db:        db,
		workOrder: NewWorkOrderService(db, nil),
		quotes:    NewQuoteService(db, nil),

		requester: seedUser(t, db, "Rita Requester", "rita@example.com", model.RoleRequester),
		manager:   seedUser(t, db, "Pat Manager", "pat@example.com", model.RolePropertyManager),
		scheduler: seedUser(t, db, "Sam Scheduler", "sam@example.com", model.RoleScheduler),
		admin:     seedUser(t, db, "Ada Admin", "ada@example.com", model.RoleAdmin),
		superUser: seedUser(t, db, "Sue Super", "sue@example.com", model.RoleSuperUser),

		vendor:      seedVendor(t, db, "Ace Plumbing"),
		requestType: seedRequestType(t, db, "Plumbing"),
	}
	f.property = seedProperty(t, db, "Oakwood", f.manager.Name)
	return f
}

func (f *fixture) create(t *testing.T, title string) *model.WorkOrder {
	t.Helper()
	wo, err := f.workOrder.Create(CreateWorkOrderInput{
		Title:         title,
		Description:   "leaky faucet",
		Unit:          "4B",
		PropertyID:    f.property.ID,
		RequestTypeID: f.requestType.ID,
	}, f.requester)
	if err != nil {
		t.Fatalf("create work order: %v", err)
	}
	return wo
}

func (f *fixture) auditTexts(t *testing.T, workOrderID uint) []string {
	t.Helper()
	var logs []model.AuditLog
	if err := f.db.Where("work_order_id = ?", workOrderID).Order("id").Find(&logs).Error; err != nil {
		t.Fatalf("load audit logs: %v", err)
	}
	texts := make([]string, 0, len(logs))
	for _, l := range logs {
		texts = append(texts, l.Text)
	}
	return texts
}

func hasAudit(texts []string, want string) bool {
	for _, s := range texts {
		if s == want {
			return true
		}
	}
	return false
}

func (f *fixture) reload(t *testing.T, id uint) *model.WorkOrder {
	t.Helper()
	var wo model.WorkOrder
	if err := f.db.Unscoped().First(&wo, id).Error; err != nil {
		t.Fatalf("reload work order %d: %v", id, err)
	}
	return &wo
}

func mmdd(t *testing.T, s string) *time.Time {
	t.Helper()
	tt, err := time.Parse("01/02/2006", s)
	if err != nil {
		t.Fatalf("parse date %s: %v", s, err)
	}
	return &tt
}
