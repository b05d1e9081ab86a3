package user

import (
	"context"
	"errors"

	"github.com/febrianchrisna/Sweet-Bakery-Project/internal/logger"
	"go.uber.org/zap"
)

type Service interface {
	Register(ctx context.Context, email, username, password, role string) (*User, error)
	Login(ctx context.Context, email, password string) (*User, string, string, error)
	Logout(ctx context.Context, userID uint) error
	Refresh(ctx context.Context, refreshToken string) (string, error)
	List(ctx context.Context) ([]*User, error)
	Delete(ctx context.Context, id uint) error
	UpdateProfile(ctx context.Context, userID uint, username, email string) (*User, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, email, username, password, role string) (*User, error) {
	if email == "" || username == "" || password == "" {
		return nil, errors.New("email, username and password are required")
	}
	if role == "" {
		role = RoleCustomer
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Email:    email,
		Username: username,
		Password: hash,
		Role:     role,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("user registered",
		zap.Uint("user_id", u.ID),
		zap.String("role", u.Role),
	)
	return u, nil
}

// Login verifies credentials, issues an access/refresh token pair and
// persists the refresh token so it can be revoked on logout.
func (s *service) Login(ctx context.Context, email, password string) (*User, string, string, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", "", ErrInvalidCredentials
		}
		return nil, "", "", err
	}

	if !CheckPasswordHash(password, u.Password) {
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, err := GenerateAccessToken(u)
	if err != nil {
		return nil, "", "", err
	}
	refreshToken, err := GenerateRefreshToken(u)
	if err != nil {
		return nil, "", "", err
	}

	if err := s.repo.UpdateRefreshToken(ctx, u.ID, &refreshToken); err != nil {
		return nil, "", "", err
	}

	return u, accessToken, refreshToken, nil
}

func (s *service) Logout(ctx context.Context, userID uint) error {
	return s.repo.UpdateRefreshToken(ctx, userID, nil)
}

// Refresh rotates the access token from a stored, still-valid refresh token.
func (s *service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	u, err := s.repo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrInvalidRefresh
		}
		return "", err
	}

	if _, err := ParseRefreshToken(refreshToken); err != nil {
		return "", ErrInvalidRefresh
	}

	return GenerateAccessToken(u)
}

func (s *service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

func (s *service) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) UpdateProfile(ctx context.Context, userID uint, username, email string) (*User, error) {
	return s.repo.UpdateProfile(ctx, userID, username, email)
}
