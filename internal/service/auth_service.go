package service

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/glowbook/salon-backend/internal/config"
	"github.com/glowbook/salon-backend/internal/domain"
	"github.com/glowbook/salon-backend/internal/repository"
	"github.com/glowbook/salon-backend/internal/security"
)

// AuthService orchestrates registration, login and token refresh on top
// of the stateless token service. Login failures are deliberately
// indistinguishable: unknown email, wrong password and deactivated
// account all surface as ErrInvalidCredentials.
type AuthService struct {
	cfg      *config.Config
	tokenSvc *TokenService
	userRepo repository.UserRepository
}

type AuthResult struct {
	User   *domain.User `json:"user"`
	Tokens *TokenPair   `json:"tokens"`
}

var (
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrWeakPassword         = errors.New("password does not meet policy requirements")
	ErrRefreshTokenRequired = errors.New("refresh token is required")

	ErrEmailRequired     = errors.New("email is required")
	ErrEmailInvalid      = errors.New("invalid email")
	ErrFirstNameRequired = errors.New("first name is required")
	ErrLastNameRequired  = errors.New("last name is required")
)

var (
	uppercaseRe = regexp.MustCompile(`[A-Z]`)
	lowercaseRe = regexp.MustCompile(`[a-z]`)
	digitRe     = regexp.MustCompile(`[0-9]`)
)

func NewAuthService(cfg *config.Config, tokenSvc *TokenService, userRepo repository.UserRepository) *AuthService {
	return &AuthService{cfg: cfg, tokenSvc: tokenSvc, userRepo: userRepo}
}

type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

func (s *AuthService) Register(in RegisterInput) (*AuthResult, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	firstName := strings.TrimSpace(in.FirstName)
	lastName := strings.TrimSpace(in.LastName)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if firstName == "" {
		return nil, ErrFirstNameRequired
	}
	if lastName == "" {
		return nil, ErrLastNameRequired
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Phone:        strings.TrimSpace(in.Phone),
		Role:         domain.RoleCustomer,
		IsActive:     true,
	}
	if err := s.userRepo.Create(user); err != nil {
		// Concurrent registration of the same email loses the race at
		// the unique index rather than at the lookup above.
		if errors.Is(err, repository.ErrEmailDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	tokens, err := s.tokenSvc.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user.Sanitize(), Tokens: tokens}, nil
}

func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	ok, err := security.VerifyPassword(user.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.userRepo.UpdateFields(user.ID, map[string]any{"last_login_at": &now}); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now

	tokens, err := s.tokenSvc.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user.Sanitize(), Tokens: tokens}, nil
}

// Refresh validates the refresh token and issues a fresh pair. The user
// record is re-read so the new access token reflects the current role
// and an account deactivated since issuance cannot refresh.
func (s *AuthService) Refresh(refreshToken string) (*AuthResult, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, ErrRefreshTokenRequired
	}
	claims, err := s.tokenSvc.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	tokens, err := s.tokenSvc.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user.Sanitize(), Tokens: tokens}, nil
}

// CurrentUser resolves the authenticated identity behind a verified
// access token. A record that is gone or deactivated since issuance is
// treated exactly like bad credentials.
func (s *AuthService) CurrentUser(userID uint) (*domain.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	return user.Sanitize(), nil
}

func validateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrEmailInvalid
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 || !uppercaseRe.MatchString(password) ||
		!lowercaseRe.MatchString(password) || !digitRe.MatchString(password) {
		return ErrWeakPassword
	}
	return nil
}
