package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

type JSONMap map[string]interface{}

func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	return string(b), err
}

func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case string:
		bytes = []byte(v)
	case []byte:
		bytes = v
	}
	return json.Unmarshal(bytes, j)
}

// AuditLog is the per-work-order activity trail. UserName is stored
// alongside UserID so entries stay readable after account removal.
type AuditLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	WorkOrderID uint      `gorm:"not null;index:idx_audit_work_order_id" json:"work_order_id"`
	UserID      *uint     `gorm:"index:idx_audit_user_id" json:"user_id"`
	UserName    string    `gorm:"type:varchar(64)" json:"user_name"`
	Text        string    `gorm:"type:varchar(512);not null" json:"text"`
	Detail      JSONMap   `gorm:"type:json" json:"detail"`
	CreatedAt   time.Time `gorm:"index:idx_audit_created_at" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }
