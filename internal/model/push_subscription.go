package model

import "time"

// PushSubscription stores a browser push subscription. The raw
// subscription JSON is AES-encrypted at rest; EndpointHash is kept in
// the clear for dedup lookups.
type PushSubscription struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index:idx_push_user_id" json:"user_id"`
	EndpointHash string    `gorm:"type:varchar(64);uniqueIndex:idx_endpoint_hash;not null" json:"-"`
	Ciphertext   string    `gorm:"type:text;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (PushSubscription) TableName() string { return "push_subscriptions" }
