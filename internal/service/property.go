package service

import (
	"gorm.io/gorm"

	"github.com/raymondpolo/brc-vendor-form/internal/lifecycle"
	"github.com/raymondpolo/brc-vendor-form/internal/model"
)

type PropertyService struct {
	db *gorm.DB
}

func NewPropertyService(db *gorm.DB) *PropertyService {
	return &PropertyService{db: db}
}

func (s *PropertyService) Create(p *model.Property) error {
	var count int64
	s.db.Model(&model.Property{}).Where("name = ?", p.Name).Count(&count)
	if count > 0 {
		return lifecycle.Conflict("a property with this name already exists")
	}
	return s.db.Create(p).Error
}

func (s *PropertyService) List(keyword string, page, pageSize int) ([]model.Property, int64, error) {
	q := s.db.Model(&model.Property{})
	if keyword != "" {
		kw := "%" + keyword + "%"
		q = q.Where("name LIKE ? OR address LIKE ?", kw, kw)
	}
	var total int64
	q.Count(&total)

	var props []model.Property
	err := q.Order("name asc").Offset((page - 1) * pageSize).Limit(pageSize).Find(&props).Error
	return props, total, err
}

func (s *PropertyService) GetByID(id uint) (*model.Property, error) {
	var p model.Property
	if err := s.db.First(&p, id).Error; err != nil {
		return nil, lifecycle.NotFound("property not found")
	}
	return &p, nil
}

// Update edits the property and propagates the denormalized name,
// address and manager onto every associated work order, leaving an
// audit entry on each one.
func (s *PropertyService) Update(id uint, actor *model.User, updates map[string]interface{}) (*model.Property, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var prop model.Property
		if err := tx.First(&prop, id).Error; err != nil {
			return lifecycle.NotFound("property not found")
		}
		if name, ok := updates["name"].(string); ok && name != prop.Name {
			var count int64
			tx.Model(&model.Property{}).Where("name = ? AND id <> ?", name, id).Count(&count)
			if count > 0 {
				return lifecycle.Conflict("a property with this name already exists")
			}
		}
		if err := tx.Model(&model.Property{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.First(&prop, id).Error; err != nil {
			return err
		}

		var orders []model.WorkOrder
		if err := tx.Unscoped().Where("property_id = ?", id).Find(&orders).Error; err != nil {
			return err
		}
		for _, wo := range orders {
			if err := tx.Unscoped().Model(&model.WorkOrder{}).Where("id = ?", wo.ID).Updates(map[string]interface{}{
				"property_name":    prop.Name,
				"property_address": prop.Address,
				"property_manager": prop.Manager,
			}).Error; err != nil {
				return err
			}
			line := "Property details updated automatically due to master property edit."
			if err := addAudit(tx, wo.ID, actor, []string{line}, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// Delete refuses while work orders reference the property.
func (s *PropertyService) Delete(id uint) error {
	var count int64
	s.db.Unscoped().Model(&model.WorkOrder{}).Where("property_id = ?", id).Count(&count)
	if count > 0 {
		return lifecycle.Conflict("cannot delete property: it is associated with existing work orders")
	}
	return s.db.Delete(&model.Property{}, id).Error
}
