package service

import (
	"context"
	"fmt"

	"agrizen/domain"
	"agrizen/utils"

	"github.com/rs/zerolog/log"
)

type emailSender struct{}

// NewEmailSender returns the EMAIL dispatch channel, delivering codes
// over the SMTP transport configured in the environment.
func NewEmailSender() domain.CodeSender {
	return emailSender{}
}

func (emailSender) SendCode(_ context.Context, to, code string) error {
	if !utils.MailerConfigured() {
		log.Warn().Str("to", to).Msg("email OTP requested but SMTP is not configured")
		return domain.ErrNotConfigured
	}

	subject := "AgriZen - Your Login OTP"
	body := fmt.Sprintf("Your OTP for login is: %s\n\nThis OTP is valid for 5 minutes.\n\nIf you didn't request this, please ignore this email.", code)

	if err := utils.SendEmail(to, subject, body); err != nil {
		log.Error().Err(err).Str("to", to).Msg("failed to send email OTP")
		return fmt.Errorf("%w: %v", domain.ErrDispatchFailed, err)
	}
	return nil
}
