package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"agrizen/domain"

	"github.com/rs/zerolog/log"
)

// smsSender delivers codes through the Twilio Messages API.
type smsSender struct {
	accountSID string
	authToken  string
	fromNumber string
	client     *http.Client
	baseURL    string
}

func NewSMSSender(accountSID, authToken, fromNumber string) domain.CodeSender {
	return &smsSender{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		client:     &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://api.twilio.com",
	}
}

func (s *smsSender) configured() bool {
	return s.accountSID != "" && s.authToken != "" && s.fromNumber != ""
}

func (s *smsSender) SendCode(ctx context.Context, to, code string) error {
	if !s.configured() {
		log.Warn().Str("to", to).Msg("SMS OTP requested but the SMS gateway is not configured")
		return domain.ErrNotConfigured
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", s.fromNumber)
	form.Set("Body", fmt.Sprintf("Your AgriZen login OTP is: %s. Valid for 5 minutes.", code))

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, s.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDispatchFailed, err)
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Error().Err(err).Str("to", to).Msg("failed to send SMS OTP")
		return fmt.Errorf("%w: %v", domain.ErrDispatchFailed, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		log.Error().Int("status", resp.StatusCode).Str("to", to).Msg("SMS gateway rejected the message")
		return fmt.Errorf("%w: gateway returned %d", domain.ErrDispatchFailed, resp.StatusCode)
	}
	return nil
}
