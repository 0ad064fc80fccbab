package model

import (
	"time"

	"gorm.io/gorm"
)

type Vendor struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(128);uniqueIndex:idx_vendor_name;not null" json:"name"`
	Trade     string         `gorm:"type:varchar(64)" json:"trade"`
	Email     string         `gorm:"type:varchar(128)" json:"email"`
	Phone     string         `gorm:"type:varchar(32)" json:"phone"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Vendor) TableName() string { return "vendors" }
