package service

import (
	"time"

	"github.com/glowbook/salon-backend/internal/domain"
	"github.com/glowbook/salon-backend/internal/security"
)

// TokenPair carries both halves of an issued credential set. Tokens are
// stateless JWTs; nothing is persisted server side, so revocation happens
// only through expiry.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type TokenService struct {
	jwtMgr     *security.JWTManager
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService(jwtMgr *security.JWTManager, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{jwtMgr: jwtMgr, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (s *TokenService) Issue(user *domain.User) (*TokenPair, error) {
	access, err := s.jwtMgr.SignAccessToken(user.ID, user.Email, user.Role, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwtMgr.SignRefreshToken(user.ID, user.Email, user.Role, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *TokenService) VerifyAccess(token string) (*security.Claims, error) {
	return s.jwtMgr.ParseAccessToken(token)
}

func (s *TokenService) VerifyRefresh(token string) (*security.Claims, error) {
	return s.jwtMgr.ParseRefreshToken(token)
}

func (s *TokenService) AccessTTL() time.Duration { return s.accessTTL }
