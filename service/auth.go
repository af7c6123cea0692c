package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"agrizen/domain"
	"agrizen/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type authService struct {
	userRepo    domain.UserRepository
	otp         domain.OTPUseCase
	identity    domain.IdentityUseCase
	accessToken *utils.JWTManager
}

func NewAuthService(userRepo domain.UserRepository, otp domain.OTPUseCase, identity domain.IdentityUseCase, secret string) domain.AuthUseCase {
	return &authService{
		userRepo:    userRepo,
		otp:         otp,
		identity:    identity,
		accessToken: utils.NewJWTManager(secret, time.Hour),
	}
}

func (s *authService) Register(ctx context.Context, name, email, mobile, password, role string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	mobile = strings.TrimSpace(mobile)
	role = strings.ToUpper(strings.TrimSpace(role))

	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}

	// At most one admin account may ever exist.
	if role == domain.RoleAdmin {
		count, err := s.userRepo.CountByRole(ctx, domain.RoleAdmin)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, domain.ErrAdminExists
		}
	}

	if exists, err := s.userRepo.ExistsByEmail(ctx, email); err != nil {
		return nil, err
	} else if exists {
		return nil, domain.ErrEmailTaken
	}
	if mobile != "" {
		if exists, err := s.userRepo.ExistsByMobile(ctx, mobile); err != nil {
			return nil, err
		} else if exists {
			return nil, domain.ErrMobileTaken
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: string(hashed),
		Role:     role,
	}
	if mobile != "" {
		user.MobileNumber = &mobile
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if utils.IsUniqueViolation(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, *domain.AuthTokens, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, domain.ErrInvalidLogin
		}
		return nil, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, nil, domain.ErrInvalidLogin
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

func (s *authService) SendOTP(ctx context.Context, channel domain.Channel, identifier, role string) error {
	return s.otp.Issue(ctx, channel, identifier, role)
}

func (s *authService) VerifyOTP(ctx context.Context, channel domain.Channel, identifier, code string) (*domain.User, *domain.AuthTokens, error) {
	role, err := s.otp.Verify(ctx, channel, identifier, code)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.identity.Resolve(ctx, channel, identifier, role)
	if err != nil {
		return nil, nil, err
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

func (s *authService) Me(ctx context.Context, userID uint) (*domain.User, error) {
	return s.userRepo.GetUserByID(ctx, userID)
}

func (s *authService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.GetAllUsers(ctx)
}

func (s *authService) GetAccessTokenManager() *utils.JWTManager {
	return s.accessToken
}

func (s *authService) issueTokens(user *domain.User) (*domain.AuthTokens, error) {
	access, err := s.accessToken.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &domain.AuthTokens{AccessToken: access}, nil
}
