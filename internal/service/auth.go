package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/screenpulse/screenpulse/internal/audit"
	"github.com/screenpulse/screenpulse/internal/domain"
	"github.com/screenpulse/screenpulse/internal/metrics"
	"github.com/screenpulse/screenpulse/internal/security"
)

type AuthService struct {
	users     domain.UserRepository
	hasher    security.PasswordHasher
	signer    security.AccessTokenSigner
	accessTTL time.Duration
	audit     *audit.Logger
}

func NewAuthService(users domain.UserRepository, hasher security.PasswordHasher, signer security.AccessTokenSigner, accessTTL time.Duration, aud *audit.Logger) *AuthService {
	return &AuthService{users: users, hasher: hasher, signer: signer, accessTTL: accessTTL, audit: aud}
}

// AuthResult is the common output of register and login.
type AuthResult struct {
	User        domain.User
	AccessToken string
	ExpiresIn   int64 // seconds
}

func (s *AuthService) Register(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") || len(password) < 8 {
		return AuthResult{}, domain.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return AuthResult{}, err
	}

	created, err := s.users.CreateUser(ctx, domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return AuthResult{}, err
	}

	tok, err := s.signer.SignAccessToken(created.ID.String(), s.accessTTL)
	if err != nil {
		return AuthResult{}, err
	}

	if s.audit != nil {
		s.audit.UserRegistered(ctx, created.ID, created.Email)
	}
	return AuthResult{User: created, AccessToken: tok, ExpiresIn: int64(s.accessTTL.Seconds())}, nil
}

// Login must not leak whether the email exists (avoid user enumeration).
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		metrics.RecordLogin("invalid_credentials")
		return AuthResult{}, domain.ErrInvalidCredentials
	}

	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		// Hide not-found behind invalid credentials
		metrics.RecordLogin("invalid_credentials")
		return AuthResult{}, domain.ErrInvalidCredentials
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		metrics.RecordLogin("invalid_credentials")
		return AuthResult{}, domain.ErrInvalidCredentials
	}

	tok, err := s.signer.SignAccessToken(u.ID.String(), s.accessTTL)
	if err != nil {
		return AuthResult{}, err
	}

	metrics.RecordLogin("success")
	return AuthResult{User: u, AccessToken: tok, ExpiresIn: int64(s.accessTTL.Seconds())}, nil
}
