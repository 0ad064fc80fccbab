package model

import (
	"time"

	"gorm.io/gorm"
)

type Property struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(128);uniqueIndex:idx_property_name;not null" json:"name"`
	Address   string         `gorm:"type:varchar(256)" json:"address"`
	Manager   string         `gorm:"type:varchar(64)" json:"manager"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Property) TableName() string { return "properties" }
