package model

import (
	"time"

	"gorm.io/gorm"
)

// WorkOrder is a maintenance request against a property unit. Property
// name, address and manager are denormalized onto the row so history
// survives property edits; edits propagate forward explicitly.
type WorkOrder struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	WONumber    string `gorm:"type:varchar(32);index:idx_wo_number" json:"wo_number"`
	Title       string `gorm:"type:varchar(256);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Unit        string `gorm:"type:varchar(32)" json:"unit"`
	TenantName  string `gorm:"type:varchar(64)" json:"tenant_name"`
	TenantPhone string `gorm:"type:varchar(32)" json:"tenant_phone"`

	PropertyID      uint   `gorm:"not null;index:idx_property_id" json:"property_id"`
	PropertyName    string `gorm:"type:varchar(128)" json:"property_name"`
	PropertyAddress string `gorm:"type:varchar(256)" json:"property_address"`
	PropertyManager string `gorm:"type:varchar(64)" json:"property_manager"`

	RequestTypeID   uint   `gorm:"index:idx_request_type_id" json:"request_type_id"`
	RequestTypeName string `gorm:"type:varchar(64)" json:"request_type_name"`

	Status string  `gorm:"type:varchar(20);not null;default:New;index:idx_status" json:"status"`
	Tags   *string `gorm:"type:varchar(256)" json:"tags"`

	VendorID        *uint `gorm:"index:idx_vendor_id" json:"vendor_id"`
	ApprovedQuoteID *uint `json:"approved_quote_id"`

	ScheduledDate    *time.Time `json:"scheduled_date"`
	DateCompleted    *time.Time `json:"date_completed"`
	FollowUpDate     *time.Time `json:"follow_up_date"`
	LastFollowUpSent *time.Time `json:"last_follow_up_sent"`

	// AuthorID goes nil when the original requester account is removed;
	// AuthorName keeps the display name for old rows.
	AuthorID   *uint  `gorm:"index:idx_author_id" json:"author_id"`
	AuthorName string `gorm:"type:varchar(64)" json:"author_name"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Author      *User        `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Vendor      *Vendor      `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
	Property    *Property    `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	RequestType *RequestType `gorm:"foreignKey:RequestTypeID" json:"request_type,omitempty"`
	Quotes      []Quote      `gorm:"foreignKey:WorkOrderID" json:"quotes,omitempty"`
	Viewers     []User       `gorm:"many2many:work_order_viewers" json:"-"`
}

func (WorkOrder) TableName() string { return "work_orders" }
