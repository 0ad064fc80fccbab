package service

import (
	"gorm.io/gorm"

	"github.com/raymondpolo/brc-vendor-form/internal/lifecycle"
	"github.com/raymondpolo/brc-vendor-form/internal/model"
)

type RequestTypeService struct {
	db *gorm.DB
}

func NewRequestTypeService(db *gorm.DB) *RequestTypeService {
	return &RequestTypeService{db: db}
}

func (s *RequestTypeService) Create(rt *model.RequestType) error {
	var count int64
	s.db.Model(&model.RequestType{}).Where("name = ?", rt.Name).Count(&count)
	if count > 0 {
		return lifecycle.Conflict("that request type already exists")
	}
	return s.db.Create(rt).Error
}

func (s *RequestTypeService) List() ([]model.RequestType, error) {
	var types []model.RequestType
	err := s.db.Order("name asc").Find(&types).Error
	return types, err
}

func (s *RequestTypeService) Update(id uint, name string) (*model.RequestType, error) {
	var count int64
	s.db.Model(&model.RequestType{}).Where("name = ? AND id <> ?", name, id).Count(&count)
	if count > 0 {
		return nil, lifecycle.Conflict("that request type already exists")
	}
	if err := s.db.Model(&model.RequestType{}).Where("id = ?", id).Update("name", name).Error; err != nil {
		return nil, err
	}
	var rt model.RequestType
	if err := s.db.First(&rt, id).Error; err != nil {
		return nil, lifecycle.NotFound("request type not found")
	}
	return &rt, nil
}

// Delete refuses while work orders reference the type.
func (s *RequestTypeService) Delete(id uint) error {
	var count int64
	s.db.Unscoped().Model(&model.WorkOrder{}).Where("request_type_id = ?", id).Count(&count)
	if count > 0 {
		return lifecycle.Conflict("cannot delete request type: it is associated with existing work orders")
	}
	return s.db.Delete(&model.RequestType{}, id).Error
}
