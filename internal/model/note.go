package model

import (
	"time"

	"gorm.io/gorm"
)

type Note struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	WorkOrderID uint           `gorm:"not null;index:idx_note_work_order_id" json:"work_order_id"`
	UserID      uint           `gorm:"not null" json:"user_id"`
	Body        string         `gorm:"type:text;not null" json:"body"`
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Note) TableName() string { return "notes" }
