package model

import (
	"time"

	"gorm.io/gorm"
)

// Role values. Staff roles can work the maintenance queue; requesters
// only see their own submissions.
const (
	RoleRequester       = "Requester"
	RolePropertyManager = "Property Manager"
	RoleScheduler       = "Scheduler"
	RoleAdmin           = "Admin"
	RoleSuperUser       = "Super User"
)

type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(64);not null" json:"name"`
	Email       string         `gorm:"type:varchar(128);uniqueIndex:idx_email;not null" json:"email"`
	Role        string         `gorm:"type:varchar(20);not null;default:Requester;index:idx_role" json:"role"`
	Status      int            `gorm:"default:1" json:"status"`
	LastLoginAt *time.Time     `json:"last_login_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

func (u *User) IsStaff() bool {
	switch u.Role {
	case RolePropertyManager, RoleScheduler, RoleAdmin, RoleSuperUser:
		return true
	}
	return false
}

func (u *User) IsSuperUser() bool { return u.Role == RoleSuperUser }

type UserBrief struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

func (u *User) Brief() UserBrief {
	return UserBrief{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
