package service

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/raymondpolo/brc-vendor-form/internal/lifecycle"
	"github.com/raymondpolo/brc-vendor-form/internal/model"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func validRole(role string) bool {
	switch role {
	case model.RoleRequester, model.RolePropertyManager, model.RoleScheduler, model.RoleAdmin, model.RoleSuperUser:
		return true
	}
	return false
}

func (s *UserService) Create(u *model.User) error {
	if !validRole(u.Role) {
		return lifecycle.Invalid("unknown role %q", u.Role)
	}
	var count int64
	s.db.Model(&model.User{}).Where("email = ?", u.Email).Count(&count)
	if count > 0 {
		return lifecycle.Conflict("a user with this email already exists")
	}
	return s.db.Create(u).Error
}

func (s *UserService) List(role, keyword string, page, pageSize int) ([]model.User, int64, error) {
	q := s.db.Model(&model.User{})
	if role != "" {
		q = q.Where("role = ?", role)
	}
	if keyword != "" {
		kw := "%" + keyword + "%"
		q = q.Where("name LIKE ? OR email LIKE ?", kw, kw)
	}
	var total int64
	q.Count(&total)

	var users []model.User
	err := q.Order("name asc").Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error
	return users, total, err
}

func (s *UserService) GetByID(id uint) (*model.User, error) {
	var u model.User
	if err := s.db.First(&u, id).Error; err != nil {
		return nil, lifecycle.NotFound("user not found")
	}
	return &u, nil
}

func (s *UserService) UpdateRole(id uint, role string) (*model.User, error) {
	if !validRole(role) {
		return nil, lifecycle.Invalid("unknown role %q", role)
	}
	if err := s.db.Model(&model.User{}).Where("id = ?", id).Update("role", role).Error; err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

func (s *UserService) UpdateStatus(actor *model.User, id uint, status int) (*model.User, error) {
	if actor.ID == id {
		return nil, lifecycle.Invalid("you cannot disable your own account")
	}
	target, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if target.Role == model.RoleSuperUser && actor.Role != model.RoleSuperUser {
		return nil, lifecycle.Denied("admins do not have permission to disable Super Users")
	}
	if err := s.db.Model(&model.User{}).Where("id = ?", id).Update("status", status).Error; err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// Delete removes a user. Their managed work orders lose the manager
// name, and requests they filed are disassociated with an audit entry
// naming the original requester.
func (s *UserService) Delete(actor *model.User, id uint) error {
	if actor.ID == id {
		return lifecycle.Invalid("you cannot delete your own account")
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.First(&user, id).Error; err != nil {
			return lifecycle.NotFound("user not found")
		}

		if user.Role == model.RolePropertyManager {
			if err := tx.Unscoped().Model(&model.WorkOrder{}).
				Where("property_manager = ?", user.Name).
				Update("property_manager", "").Error; err != nil {
				return err
			}
		}

		var orders []model.WorkOrder
		if err := tx.Unscoped().Where("author_id = ?", user.ID).Find(&orders).Error; err != nil {
			return err
		}
		for _, wo := range orders {
			line := fmt.Sprintf("Original requester '%s' has been deleted. The request is now unassigned.", user.Name)
			if err := addAudit(tx, wo.ID, actor, []string{line}, nil); err != nil {
				return err
			}
			if err := tx.Unscoped().Model(&model.WorkOrder{}).Where("id = ?", wo.ID).
				Update("author_id", nil).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&model.User{}, user.ID).Error
	})
}
