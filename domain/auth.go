// domain/auth.go
package domain

import (
	"context"
	"errors"

	"agrizen/utils"
)

// Validation failures, reported before any shared state is touched.
var (
	ErrIdentifierRequired = errors.New("identifier is required")
	ErrInvalidRole        = errors.New("invalid role, use FARMER or BUYER")
	ErrAdminNotAllowed    = errors.New("admin role cannot be used for OTP login")
	ErrInvalidCode        = errors.New("invalid OTP format")
)

// ErrInvalidOrExpired covers a missing, expired, or mismatched code.
// The three causes are deliberately not distinguished to the caller.
var ErrInvalidOrExpired = errors.New("invalid or expired OTP")

// Dispatch failures. ErrNotConfigured means the transport was never
// attempted; ErrDispatchFailed wraps the underlying cause. The stored
// challenge survives either one, so a retry after fixing the transport
// can still verify.
var (
	ErrNotConfigured  = errors.New("delivery channel not configured")
	ErrDispatchFailed = errors.New("failed to send OTP")
	ErrInvalidLogin   = errors.New("invalid credentials")
	ErrEmailTaken     = errors.New("email already registered")
	ErrMobileTaken    = errors.New("mobile number already registered")
	ErrAdminExists    = errors.New("admin account already exists")
)

// OTPUseCase is the challenge orchestrator: issuance, verification and
// expiry maintenance for pending OTP challenges.
type OTPUseCase interface {
	Issue(ctx context.Context, channel Channel, identifier, role string) error
	Verify(ctx context.Context, channel Channel, identifier, code string) (string, error)
	Sweep(ctx context.Context) error
}

// IdentityUseCase maps a verified identifier to a durable user,
// creating one (and a farmer profile when the role requires it) on
// first login.
type IdentityUseCase interface {
	Resolve(ctx context.Context, channel Channel, identifier, role string) (*User, error)
}

type AuthTokens struct {
	AccessToken string `json:"access_token"`
}

// AuthUseCase is the façade consumed by the delivery layer.
type AuthUseCase interface {
	Register(ctx context.Context, name, email, mobile, password, role string) (*User, error)
	Login(ctx context.Context, email, password string) (*User, *AuthTokens, error)
	SendOTP(ctx context.Context, channel Channel, identifier, role string) error
	VerifyOTP(ctx context.Context, channel Channel, identifier, code string) (*User, *AuthTokens, error)
	Me(ctx context.Context, userID uint) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	GetAccessTokenManager() *utils.JWTManager
}
