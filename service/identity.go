package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agrizen/domain"
	"agrizen/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

const maxNameLength = 100

// identityService reconciles a verified identifier to a durable user:
// an existing account is returned unchanged, otherwise one is created
// with the role bound at issuance, plus a farmer profile when that
// role requires it.
type identityService struct {
	userRepo   domain.UserRepository
	farmerRepo domain.FarmerRepository
}

func NewIdentityService(userRepo domain.UserRepository, farmerRepo domain.FarmerRepository) domain.IdentityUseCase {
	return &identityService{userRepo: userRepo, farmerRepo: farmerRepo}
}

func (s *identityService) Resolve(ctx context.Context, channel domain.Channel, identifier, role string) (*domain.User, error) {
	identifier = strings.TrimSpace(identifier)

	user, err := s.lookup(ctx, channel, identifier)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user, err = s.create(ctx, channel, identifier, role)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	// Existing accounts are never mutated by an OTP login, even if the
	// requested role differs; the resolved role decides the profile.
	if user.Role == domain.RoleFarmer {
		if err := s.ensureFarmerProfile(ctx, user); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (s *identityService) lookup(ctx context.Context, channel domain.Channel, identifier string) (*domain.User, error) {
	if channel == domain.ChannelEmail {
		return s.userRepo.GetUserByEmail(ctx, strings.ToLower(identifier))
	}
	return s.userRepo.GetUserByMobile(ctx, identifier)
}

func (s *identityService) create(ctx context.Context, channel domain.Channel, identifier, role string) (*domain.User, error) {
	user := &domain.User{Role: role, Password: placeholderPassword()}

	if channel == domain.ChannelEmail {
		email := strings.ToLower(identifier)
		user.Email = email
		user.Name = nameFromEmail(email)
	} else {
		digits := digitsOnly(identifier)
		user.MobileNumber = &identifier
		user.Name = nameFromMobile(digits)
		// Synthesized placeholder; unique per mobile number.
		user.Email = digits + "@otp.agrizen.com"
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if utils.IsUniqueViolation(err) {
			// Lost a first-login race; the winner's row is the account.
			log.Warn().Str("identifier", identifier).Msg("concurrent user creation, re-reading")
			return s.lookup(ctx, channel, identifier)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// ensureFarmerProfile creates the producer profile the first time a
// FARMER-role user verifies; it is never updated afterwards.
func (s *identityService) ensureFarmerProfile(ctx context.Context, user *domain.User) error {
	_, err := s.farmerRepo.GetFarmerByEmail(ctx, user.Email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("lookup farmer profile: %w", err)
	}

	farmer := &domain.Farmer{Name: user.Name, Email: user.Email}
	if err := s.farmerRepo.CreateFarmer(ctx, farmer); err != nil {
		if utils.IsUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("create farmer profile: %w", err)
	}
	return nil
}

// placeholderPassword fills the non-null password column for accounts
// provisioned through OTP. It is a sentinel for "no password set":
// random, hashed, and never matchable by the login path.
func placeholderPassword() string {
	hashed, err := bcrypt.GenerateFromPassword([]byte("otp-"+uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		// bcrypt only fails on an invalid cost.
		panic(err)
	}
	return string(hashed)
}

func nameFromEmail(email string) string {
	local := email
	if at := strings.Index(email, "@"); at > 0 {
		local = email[:at]
	}
	name := cases.Title(language.English).String(local)
	if len(name) > maxNameLength {
		name = name[:maxNameLength]
	}
	if name == "" {
		name = "User"
	}
	return name
}

func nameFromMobile(digits string) string {
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return "User " + digits
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
