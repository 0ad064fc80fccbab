package model

import (
	"time"

	"gorm.io/gorm"
)

// Quote decision values. Quotes are created Pending; a NULL Status
// means a decision was cleared.
const (
	QuotePending  = "Pending"
	QuoteApproved = "Approved"
	QuoteDeclined = "Declined"
)

type Quote struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	WorkOrderID uint           `gorm:"not null;index:idx_work_order_id" json:"work_order_id"`
	VendorID    uint           `gorm:"not null;index:idx_quote_vendor_id" json:"vendor_id"`
	Amount      float64        `gorm:"not null" json:"amount"`
	Description string         `gorm:"type:text" json:"description"`
	Status      *string        `gorm:"type:varchar(10)" json:"status"`
	DateSent    time.Time      `json:"date_sent"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Vendor     *Vendor     `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
	Attachment *Attachment `gorm:"foreignKey:QuoteID" json:"attachment,omitempty"`
}

func (Quote) TableName() string { return "quotes" }
