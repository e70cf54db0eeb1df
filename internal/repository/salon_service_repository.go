package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/glowbook/salon-backend/internal/domain"
)

var ErrSalonServiceNotFound = errors.New("salon service not found")

type SalonServiceRepository interface {
	FindByID(id uint) (*domain.SalonService, error)
	Create(svc *domain.SalonService) error
	Update(id uint, fields map[string]any) error
	ListPaged(req PageRequest, category string, activeOnly bool) (PageResult[domain.SalonService], error)
	Delete(id uint) error
}

type GormSalonServiceRepository struct{ db *gorm.DB }

func NewSalonServiceRepository(db *gorm.DB) SalonServiceRepository {
	return &GormSalonServiceRepository{db: db}
}

func (r *GormSalonServiceRepository) FindByID(id uint) (*domain.SalonService, error) {
	var s domain.SalonService
	if err := r.db.First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSalonServiceNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *GormSalonServiceRepository) Create(svc *domain.SalonService) error {
	return r.db.Create(svc).Error
}

func (r *GormSalonServiceRepository) Update(id uint, fields map[string]any) error {
	tx := r.db.Model(&domain.SalonService{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrSalonServiceNotFound
	}
	return nil
}

func (r *GormSalonServiceRepository) ListPaged(req PageRequest, category string, activeOnly bool) (PageResult[domain.SalonService], error) {
	req = req.Normalize()
	q := r.db.Model(&domain.SalonService{})
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return PageResult[domain.SalonService]{}, err
	}
	var items []domain.SalonService
	err := q.Order("name ASC").
		Limit(req.PageSize).
		Offset(req.Offset()).
		Find(&items).Error
	if err != nil {
		return PageResult[domain.SalonService]{}, err
	}
	return newPageResult(items, req, total), nil
}

func (r *GormSalonServiceRepository) Delete(id uint) error {
	tx := r.db.Delete(&domain.SalonService{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrSalonServiceNotFound
	}
	return nil
}
