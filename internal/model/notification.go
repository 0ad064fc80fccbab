package model

import "time"

type Notification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index:idx_notif_user_id" json:"user_id"`
	WorkOrderID *uint     `gorm:"index:idx_notif_work_order_id" json:"work_order_id"`
	Message     string    `gorm:"type:varchar(512);not null" json:"message"`
	Link        string    `gorm:"type:varchar(256)" json:"link"`
	Read        bool      `gorm:"default:false;index:idx_notif_read" json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
