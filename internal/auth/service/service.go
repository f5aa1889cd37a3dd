// Package service implements staff authentication.
package service

import (
	"context"
	"strings"
	"time"

	"visadesk_backend/internal/auth/repository"
	"visadesk_backend/internal/auth/transport"
	"visadesk_backend/platform/apperr"
	"visadesk_backend/platform/config"
	"visadesk_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const accessTokenType = "access"

const msgInvalidCredentials = "invalid credentials"

// Service handles login and identity lookups for staff users.
type Service struct {
	repo *repository.Repository
	cfg  config.AuthServiceConfig
	log  *logger.Logger
}

func New(repo *repository.Repository, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, log: log}
}

// Login verifies credentials and issues a short-lived access token. All
// failure modes return the same unauthorized error so callers cannot probe
// which emails exist.
func (s *Service) Login(ctx context.Context, req transport.LoginRequest) (*transport.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		s.log.AuthEvent("login", email, false, "unknown email")
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.log.AuthEvent("login", email, false, "wrong password")
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}

	if !user.Active {
		s.log.AuthEvent("login", email, false, "account disabled")
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}

	ttl := s.cfg.GetAccessTokenTTL()
	accessToken, err := s.signJWT(user.ID, user.Roles, ttl)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to sign token", err)
	}

	s.log.AuthEvent("login", email, true, "")

	return &transport.LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(ttl.Seconds()),
		User:        toUserResponse(user),
	}, nil
}

// Me returns the profile of the authenticated user.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*transport.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *Service) signJWT(userID uuid.UUID, roles []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"type":  accessTokenType,
		"roles": roles,
		"exp":   now.Add(ttl).Unix(),
		"iat":   now.Unix(),
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(s.cfg.GetJWTSecret()))
}

func toUserResponse(u *repository.User) transport.UserResponse {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return transport.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Roles:     roles,
		CreatedAt: u.CreatedAt,
	}
}
