// domain/otp.go
package domain

import (
	"context"
	"strings"
	"time"
)

// Channel is the delivery/identification path of an OTP challenge.
type Channel string

const (
	ChannelEmail  Channel = "email"
	ChannelMobile Channel = "mobile"
)

// ParseChannel normalizes a request-supplied channel selector.
func ParseChannel(s string) (Channel, bool) {
	switch Channel(strings.ToLower(strings.TrimSpace(s))) {
	case ChannelEmail:
		return ChannelEmail, true
	case ChannelMobile:
		return ChannelMobile, true
	}
	return "", false
}

// OTPLength is the fixed width of every generated code.
const OTPLength = 5

// OTPTTL is the validity window of an issued challenge.
const OTPTTL = 5 * time.Minute

// Challenge is the stored state of a single issued OTP.
type Challenge struct {
	Channel    Channel
	Identifier string
	Code       string
	Role       string
	ExpiresAt  time.Time
}

// Expired reports whether the challenge is past its validity window.
func (c Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// ChallengeKey builds the store key for a channel+identifier pair.
// Email identifiers are lower-cased, mobile identifiers are used as
// submitted (trimmed), and the channel prefix keeps the two key spaces
// from colliding.
func ChallengeKey(channel Channel, identifier string) string {
	identifier = strings.TrimSpace(identifier)
	if channel == ChannelEmail {
		identifier = strings.ToLower(identifier)
	}
	return string(channel) + ":" + identifier
}

// ChallengeStore holds pending challenges keyed by channel+identifier.
//
// Put unconditionally replaces any existing entry for the key. Consume
// removes the entry on a code match (returning the role bound at
// issuance) and on expiry; a plain mismatch leaves the entry in place so
// the caller may retry with the right code. Two concurrent Consume calls
// for the same key cannot both win. Sweep drops every expired entry and
// is never required for correctness.
type ChallengeStore interface {
	Put(ctx context.Context, channel Channel, identifier, code, role string, ttl time.Duration) error
	PeekRole(ctx context.Context, channel Channel, identifier string) (string, bool, error)
	Consume(ctx context.Context, channel Channel, identifier, code string) (string, bool, error)
	Sweep(ctx context.Context) error
}

// CodeSender attempts delivery of a code over one channel. Delivery
// failure is an ordinary error, never a fatal condition.
type CodeSender interface {
	SendCode(ctx context.Context, to, code string) error
}
