package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/mediscribe/internal/domain/entity"
	repo "github.com/oksasatya/mediscribe/internal/domain/repository"
	"github.com/oksasatya/mediscribe/pkg/helpers"
)

type AuthService struct {
	Users  repo.UserRepository
	JWT    *helpers.JWTManager
	Logger logrus.FieldLogger
}

func NewAuthService(users repo.UserRepository, jwt *helpers.JWTManager, logger logrus.FieldLogger) *AuthService {
	return &AuthService{Users: users, JWT: jwt, Logger: logger}
}

// Token is a signed bearer token and the instant it stops resolving.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Register creates a clinician account. Uniqueness is decided by the insert itself.
func (s *AuthService) Register(ctx context.Context, email, password, fullName string) (*entity.User, error) {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{Email: email, FullName: fullName, PasswordHash: hash}
	created, err := s.Users.CreateIfAbsent(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if !created {
		return nil, ErrDuplicateIdentity
	}
	s.Logger.WithField("user_id", u.ID).Info("user registered")
	return u, nil
}

func (s *AuthService) Verify(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredential
	}
	return u, nil
}

func (s *AuthService) Issue(u *entity.User) (Token, error) {
	v, exp, err := s.JWT.GenerateAccessToken(u.Email)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{Value: v, ExpiresAt: exp}, nil
}

// Login verifies credentials and issues a token for the matching user.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, Token, error) {
	u, err := s.Verify(ctx, email, password)
	if err != nil {
		return nil, Token{}, err
	}
	tok, err := s.Issue(u)
	if err != nil {
		return nil, Token{}, err
	}
	return u, tok, nil
}

// Resolve maps a bearer token to the stored user it was issued for.
func (s *AuthService) Resolve(ctx context.Context, token string) (*entity.User, error) {
	claims, err := s.JWT.ParseAccessToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	u, err := s.Users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUnknownIdentity
		}
		return nil, fmt.Errorf("lookup token subject: %w", err)
	}
	return u, nil
}

// IsAuthError reports whether err from Resolve means the caller is not
// authenticated, as opposed to a storage failure.
func (s *AuthService) IsAuthError(err error) bool {
	return errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrUnknownIdentity)
}
