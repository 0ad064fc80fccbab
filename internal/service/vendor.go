package service

import (
	"gorm.io/gorm"

	"github.com/raymondpolo/brc-vendor-form/internal/lifecycle"
	"github.com/raymondpolo/brc-vendor-form/internal/model"
)

type VendorService struct {
	db *gorm.DB
}

func NewVendorService(db *gorm.DB) *VendorService {
	return &VendorService{db: db}
}

func (s *VendorService) Create(v *model.Vendor) error {
	var count int64
	s.db.Model(&model.Vendor{}).Where("name = ?", v.Name).Count(&count)
	if count > 0 {
		return lifecycle.Conflict("a vendor with this company name already exists")
	}
	if v.Email != "" {
		s.db.Model(&model.Vendor{}).Where("email = ?", v.Email).Count(&count)
		if count > 0 {
			return lifecycle.Conflict("a vendor with this email already exists")
		}
	}
	return s.db.Create(v).Error
}

func (s *VendorService) List(keyword string, page, pageSize int) ([]model.Vendor, int64, error) {
	q := s.db.Model(&model.Vendor{})
	if keyword != "" {
		kw := "%" + keyword + "%"
		q = q.Where("name LIKE ? OR trade LIKE ?", kw, kw)
	}
	var total int64
	q.Count(&total)

	var vendors []model.Vendor
	err := q.Order("name asc").Offset((page - 1) * pageSize).Limit(pageSize).Find(&vendors).Error
	return vendors, total, err
}

func (s *VendorService) GetByID(id uint) (*model.Vendor, error) {
	var v model.Vendor
	if err := s.db.First(&v, id).Error; err != nil {
		return nil, lifecycle.NotFound("vendor not found")
	}
	return &v, nil
}

func (s *VendorService) Update(id uint, updates map[string]interface{}) (*model.Vendor, error) {
	if email, ok := updates["email"].(string); ok && email != "" {
		var count int64
		s.db.Model(&model.Vendor{}).Where("email = ? AND id <> ?", email, id).Count(&count)
		if count > 0 {
			return nil, lifecycle.Conflict("that email is already in use by another vendor")
		}
	}
	if err := s.db.Model(&model.Vendor{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// Delete refuses while the vendor is referenced by work orders or quotes.
func (s *VendorService) Delete(id uint) error {
	var count int64
	s.db.Model(&model.WorkOrder{}).Where("vendor_id = ?", id).Count(&count)
	if count > 0 {
		return lifecycle.Conflict("cannot delete vendor: they are associated with existing work orders")
	}
	s.db.Model(&model.Quote{}).Where("vendor_id = ?", id).Count(&count)
	if count > 0 {
		return lifecycle.Conflict("cannot delete vendor: they are associated with existing quotes")
	}
	return s.db.Delete(&model.Vendor{}, id).Error
}
