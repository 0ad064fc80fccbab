package model

import (
	"time"

	"gorm.io/gorm"
)

type RequestType struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(64);uniqueIndex:idx_request_type_name;not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (RequestType) TableName() string { return "request_types" }
