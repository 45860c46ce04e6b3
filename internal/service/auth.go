package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"coaching-payments/internal/apperror"
	"coaching-payments/internal/dto"
	"coaching-payments/internal/model"
	"coaching-payments/internal/repository"
	"coaching-payments/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const roleAdmin = "admin"

type AdminClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	CreateAdmin(ctx context.Context, email, password, name string) (*model.AdminUser, error)
	Login(ctx context.Context, req dto.AdminLoginRequest) (*dto.AdminLoginResponse, error)
	ParseToken(token string) (*AdminClaims, error)
}

type authServiceImpl struct {
	adminRepo repository.AdminUserRepository
	validator *validation.Validator
	secret    []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

func NewAuthService(adminRepo repository.AdminUserRepository, validator *validation.Validator, secret string, tokenTTL time.Duration) AuthService {
	return &authServiceImpl{
		adminRepo: adminRepo,
		validator: validator,
		secret:    []byte(secret),
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

func (s *authServiceImpl) CreateAdmin(ctx context.Context, email, password, name string) (*model.AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) < 8 {
		return nil, apperror.Validation("email and a password of at least 8 characters are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.AdminUser{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         roleAdmin,
	}
	if err := s.adminRepo.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("save admin user: %w", err)
	}
	return user, nil
}

func (s *authServiceImpl) Login(ctx context.Context, req dto.AdminLoginRequest) (*dto.AdminLoginResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.adminRepo.FindByEmail(ctx, req.Email)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.Unauthorized("Invalid credentials")
	}

	now := s.now()
	expiresAt := now.Add(s.tokenTTL)
	claims := AdminClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &dto.AdminLoginResponse{Token: token, ExpiresAt: expiresAt}, nil
}

func (s *authServiceImpl) ParseToken(token string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, apperror.Unauthorized("Invalid token")
	}
	if claims.Role != roleAdmin {
		return nil, apperror.Unauthorized("Admin role required")
	}
	return claims, nil
}
