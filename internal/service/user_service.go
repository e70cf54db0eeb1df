package service

import (
	"errors"
	"strings"

	"github.com/glowbook/salon-backend/internal/domain"
	"github.com/glowbook/salon-backend/internal/repository"
	"github.com/glowbook/salon-backend/internal/security"
)

var ErrSamePassword = errors.New("new password must differ from current password")

type UpdateProfileInput struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
}

var ErrNoProfileUpdates = errors.New("no updates provided")

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetByID(id uint) (*domain.User, error) {
	u, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	return u.Sanitize(), nil
}

func (s *UserService) UpdateProfile(userID uint, in UpdateProfileInput) (*domain.User, error) {
	updates := map[string]any{}
	if in.FirstName != nil {
		name := strings.TrimSpace(*in.FirstName)
		if name == "" {
			return nil, errors.New("first name must not be empty")
		}
		updates["first_name"] = name
	}
	if in.LastName != nil {
		name := strings.TrimSpace(*in.LastName)
		if name == "" {
			return nil, errors.New("last name must not be empty")
		}
		updates["last_name"] = name
	}
	if in.Phone != nil {
		updates["phone"] = strings.TrimSpace(*in.Phone)
	}
	if len(updates) == 0 {
		return nil, ErrNoProfileUpdates
	}
	if err := s.userRepo.UpdateFields(userID, updates); err != nil {
		return nil, err
	}
	u, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	return u.Sanitize(), nil
}

func (s *UserService) ChangePassword(userID uint, currentPassword, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	u, err := s.userRepo.FindByID(userID)
	if err != nil {
		return err
	}
	ok, err := security.VerifyPassword(u.PasswordHash, currentPassword)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCredentials
	}
	if currentPassword == newPassword {
		return ErrSamePassword
	}
	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.userRepo.UpdateFields(userID, map[string]any{"password_hash": hash})
}

// Deactivate flips the account off. Outstanding access tokens stay valid
// until they expire because the auth gate does not re-read the account
// per request; login and refresh are refused immediately.
func (s *UserService) Deactivate(userID uint) error {
	return s.userRepo.UpdateFields(userID, map[string]any{"is_active": false})
}

func (s *UserService) Activate(userID uint) error {
	return s.userRepo.UpdateFields(userID, map[string]any{"is_active": true})
}

func (s *UserService) ListPaged(req repository.PageRequest) (repository.PageResult[domain.User], error) {
	res, err := s.userRepo.ListPaged(req)
	if err != nil {
		return repository.PageResult[domain.User]{}, err
	}
	for i := range res.Items {
		res.Items[i].PasswordHash = ""
	}
	return res, nil
}

func (s *UserService) Delete(userID uint) error {
	return s.userRepo.Delete(userID)
}
