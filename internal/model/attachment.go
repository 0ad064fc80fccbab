package model

import (
	"time"

	"gorm.io/gorm"
)

// Attachment records a file already placed in external storage. The
// server never handles file bytes; clients register the storage key.
type Attachment struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	WorkOrderID *uint          `gorm:"index:idx_att_work_order_id" json:"work_order_id"`
	QuoteID     *uint          `gorm:"index:idx_att_quote_id" json:"quote_id"`
	FileName    string         `gorm:"type:varchar(256);not null" json:"file_name"`
	StorageKey  string         `gorm:"type:varchar(128);uniqueIndex:idx_storage_key;not null" json:"storage_key"`
	ContentType string         `gorm:"type:varchar(128)" json:"content_type"`
	Size        int64          `json:"size"`
	UploaderID  uint           `json:"uploader_id"`
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Attachment) TableName() string { return "attachments" }
