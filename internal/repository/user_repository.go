package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/glowbook/salon-backend/internal/domain"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailDuplicate = errors.New("email already registered")
)

type UserRepository interface {
	FindByID(id uint) (*domain.User, error)
	FindByEmail(email string) (*domain.User, error)
	Create(user *domain.User) error
	Update(user *domain.User) error
	UpdateFields(id uint, fields map[string]any) error
	ListPaged(req PageRequest) (PageResult[domain.User], error)
	Delete(id uint) error
}

type GormUserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &GormUserRepository{db: db} }

func (r *GormUserRepository) FindByID(id uint) (*domain.User, error) {
	var u domain.User
	if err := r.db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *GormUserRepository) FindByEmail(email string) (*domain.User, error) {
	var u domain.User
	if err := r.db.Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts the record, translating the store's uniqueness violation into
// ErrEmailDuplicate so a registration race surfaces as the same conflict the
// caller's pre-check would have produced.
func (r *GormUserRepository) Create(user *domain.User) error {
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailDuplicate
		}
		return err
	}
	return nil
}

func (r *GormUserRepository) Update(user *domain.User) error {
	return r.db.Save(user).Error
}

func (r *GormUserRepository) UpdateFields(id uint, fields map[string]any) error {
	tx := r.db.Model(&domain.User{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *GormUserRepository) ListPaged(req PageRequest) (PageResult[domain.User], error) {
	req = req.Normalize()
	var total int64
	if err := r.db.Model(&domain.User{}).Count(&total).Error; err != nil {
		return PageResult[domain.User]{}, err
	}
	var users []domain.User
	err := r.db.Order("created_at DESC").
		Limit(req.PageSize).
		Offset(req.Offset()).
		Find(&users).Error
	if err != nil {
		return PageResult[domain.User]{}, err
	}
	return newPageResult(users, req, total), nil
}

func (r *GormUserRepository) Delete(id uint) error {
	tx := r.db.Delete(&domain.User{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
