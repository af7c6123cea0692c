package service

import (
	"context"
	"fmt"
	"strings"

	"agrizen/domain"
	"agrizen/utils"

	"github.com/rs/zerolog/log"
)

// otpService orchestrates the challenge lifecycle: issuance
// (generate, store, dispatch) and single-use verification.
type otpService struct {
	store   domain.ChallengeStore
	senders map[domain.Channel]domain.CodeSender
}

func NewOTPService(store domain.ChallengeStore, email, sms domain.CodeSender) domain.OTPUseCase {
	return &otpService{
		store: store,
		senders: map[domain.Channel]domain.CodeSender{
			domain.ChannelEmail:  email,
			domain.ChannelMobile: sms,
		},
	}
}

func (s *otpService) Issue(ctx context.Context, channel domain.Channel, identifier, role string) error {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return domain.ErrIdentifierRequired
	}
	if channel == domain.ChannelEmail {
		identifier = strings.ToLower(identifier)
	}

	role = strings.ToUpper(strings.TrimSpace(role))
	if role == domain.RoleAdmin {
		return domain.ErrAdminNotAllowed
	}
	if role != domain.RoleFarmer && role != domain.RoleBuyer {
		return domain.ErrInvalidRole
	}

	sender, ok := s.senders[channel]
	if !ok {
		return fmt.Errorf("unsupported channel %q", channel)
	}

	// Opportunistic cleanup of abandoned challenges; verification does
	// not depend on it.
	if err := s.store.Sweep(ctx); err != nil {
		log.Warn().Err(err).Msg("challenge sweep failed")
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return fmt.Errorf("generate OTP: %w", err)
	}

	// Store before dispatch: a slow or failed send must never hold the
	// store, and the challenge stays valid so a retry after fixing the
	// transport simply overwrites it.
	if err := s.store.Put(ctx, channel, identifier, code, role, domain.OTPTTL); err != nil {
		return fmt.Errorf("store challenge: %w", err)
	}

	if err := sender.SendCode(ctx, identifier, code); err != nil {
		return err
	}

	log.Info().Str("channel", string(channel)).Str("identifier", identifier).Msg("OTP issued")
	return nil
}

func (s *otpService) Verify(ctx context.Context, channel domain.Channel, identifier, code string) (string, error) {
	if len(code) != domain.OTPLength {
		return "", domain.ErrInvalidCode
	}

	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", domain.ErrIdentifierRequired
	}

	// The intended role is read before the consuming check because the
	// caller needs it regardless of which step fails.
	role, found, err := s.store.PeekRole(ctx, channel, identifier)
	if err != nil {
		return "", fmt.Errorf("peek challenge: %w", err)
	}
	if !found {
		return "", domain.ErrInvalidOrExpired
	}

	consumedRole, ok, err := s.store.Consume(ctx, channel, identifier, code)
	if err != nil {
		return "", fmt.Errorf("consume challenge: %w", err)
	}
	if !ok {
		return "", domain.ErrInvalidOrExpired
	}
	// The role bound at issuance wins; the peeked value is only a
	// fallback if the consuming read races a concurrent reissue.
	if consumedRole != "" {
		role = consumedRole
	}

	log.Info().Str("channel", string(channel)).Str("identifier", identifier).Msg("OTP verified")
	return role, nil
}

func (s *otpService) Sweep(ctx context.Context) error {
	return s.store.Sweep(ctx)
}
