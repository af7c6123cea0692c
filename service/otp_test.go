package service_test

import (
	"context"
	"errors"
	"testing"

	"agrizen/domain"
	"agrizen/repository"
	"agrizen/service"

	"github.com/stretchr/testify/require"
)

// fakeSender records the last delivery and can be told to fail.
type fakeSender struct {
	lastTo   string
	lastCode string
	sends    int
	err      error
}

func (f *fakeSender) SendCode(_ context.Context, to, code string) error {
	f.sends++
	if f.err != nil {
		return f.err
	}
	f.lastTo = to
	f.lastCode = code
	return nil
}

func newOTPFixture() (domain.OTPUseCase, domain.ChallengeStore, *fakeSender, *fakeSender) {
	store := repository.NewMemoryChallengeStore()
	email := &fakeSender{}
	sms := &fakeSender{}
	return service.NewOTPService(store, email, sms), store, email, sms
}

func TestIssueAndVerify(t *testing.T) {
	ctx := context.Background()
	svc, _, email, _ := newOTPFixture()

	require.NoError(t, svc.Issue(ctx, domain.ChannelEmail, "A@B.com", "farmer"))
	require.Equal(t, "a@b.com", email.lastTo)
	require.Len(t, email.lastCode, domain.OTPLength)

	role, err := svc.Verify(ctx, domain.ChannelEmail, "a@b.com", email.lastCode)
	require.NoError(t, err)
	require.Equal(t, domain.RoleFarmer, role)

	// Second verification with the same code fails: single use.
	_, err = svc.Verify(ctx, domain.ChannelEmail, "a@b.com", email.lastCode)
	require.ErrorIs(t, err, domain.ErrInvalidOrExpired)
}

func TestIssueRejectsAdmin(t *testing.T) {
	ctx := context.Background()
	svc, store, email, _ := newOTPFixture()

	err := svc.Issue(ctx, domain.ChannelEmail, "x@y.com", "ADMIN")
	require.ErrorIs(t, err, domain.ErrAdminNotAllowed)

	// Rejected before any store mutation or dispatch.
	_, found, err := store.PeekRole(ctx, domain.ChannelEmail, "x@y.com")
	require.NoError(t, err)
	require.False(t, found)
	require.Zero(t, email.sends)
}

func TestIssueRejectsUnknownRole(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newOTPFixture()

	err := svc.Issue(ctx, domain.ChannelEmail, "x@y.com", "WIZARD")
	require.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestIssueRejectsBlankIdentifier(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newOTPFixture()

	err := svc.Issue(ctx, domain.ChannelMobile, "   ", "BUYER")
	require.ErrorIs(t, err, domain.ErrIdentifierRequired)
}

func TestIssueDispatchFailureKeepsChallenge(t *testing.T) {
	ctx := context.Background()
	svc, store, email, _ := newOTPFixture()
	email.err = domain.ErrNotConfigured

	err := svc.Issue(ctx, domain.ChannelEmail, "a@b.com", "BUYER")
	require.ErrorIs(t, err, domain.ErrNotConfigured)

	// The store write is not rolled back; a retry after fixing the
	// transport overwrites it instead.
	role, found, err := store.PeekRole(ctx, domain.ChannelEmail, "a@b.com")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, domain.RoleBuyer, role)

	email.err = nil
	require.NoError(t, svc.Issue(ctx, domain.ChannelEmail, "a@b.com", "BUYER"))

	role, err = svc.Verify(ctx, domain.ChannelEmail, "a@b.com", email.lastCode)
	require.NoError(t, err)
	require.Equal(t, domain.RoleBuyer, role)
}

func TestIssueRoutesByChannel(t *testing.T) {
	ctx := context.Background()
	svc, _, email, sms := newOTPFixture()

	require.NoError(t, svc.Issue(ctx, domain.ChannelMobile, "+15550001111", "BUYER"))
	require.Zero(t, email.sends)
	require.Equal(t, "+15550001111", sms.lastTo)
}

func TestVerifyRejectsWrongLength(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newOTPFixture()

	_, err := svc.Verify(ctx, domain.ChannelEmail, "a@b.com", "123456")
	require.ErrorIs(t, err, domain.ErrInvalidCode)

	_, err = svc.Verify(ctx, domain.ChannelEmail, "a@b.com", "123")
	require.ErrorIs(t, err, domain.ErrInvalidCode)
}

func TestVerifyWithoutIssueFails(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newOTPFixture()

	_, err := svc.Verify(ctx, domain.ChannelMobile, "+15550001111", "12345")
	require.ErrorIs(t, err, domain.ErrInvalidOrExpired)
}

func TestVerifyWrongCodeKeepsChallenge(t *testing.T) {
	ctx := context.Background()
	svc, _, email, _ := newOTPFixture()

	require.NoError(t, svc.Issue(ctx, domain.ChannelEmail, "a@b.com", "FARMER"))

	wrong := "00000"
	if email.lastCode == wrong {
		wrong = "00001"
	}
	_, err := svc.Verify(ctx, domain.ChannelEmail, "a@b.com", wrong)
	require.ErrorIs(t, err, domain.ErrInvalidOrExpired)

	role, err := svc.Verify(ctx, domain.ChannelEmail, "a@b.com", email.lastCode)
	require.NoError(t, err)
	require.Equal(t, domain.RoleFarmer, role)
}

func TestReissueInvalidatesPrevious(t *testing.T) {
	ctx := context.Background()
	svc, _, email, _ := newOTPFixture()

	require.NoError(t, svc.Issue(ctx, domain.ChannelEmail, "a@b.com", "BUYER"))
	first := email.lastCode

	require.NoError(t, svc.Issue(ctx, domain.ChannelEmail, "a@b.com", "FARMER"))
	second := email.lastCode

	if first != second {
		_, err := svc.Verify(ctx, domain.ChannelEmail, "a@b.com", first)
		require.ErrorIs(t, err, domain.ErrInvalidOrExpired)
	}

	// The role bound at the latest issuance wins.
	role, err := svc.Verify(ctx, domain.ChannelEmail, "a@b.com", second)
	require.NoError(t, err)
	require.Equal(t, domain.RoleFarmer, role)
}

type failingStore struct {
	domain.ChallengeStore
}

func (failingStore) Sweep(context.Context) error { return errors.New("sweep down") }

func TestIssueToleratesSweepFailure(t *testing.T) {
	ctx := context.Background()
	inner := repository.NewMemoryChallengeStore()
	email := &fakeSender{}
	svc := service.NewOTPService(failingStore{inner}, email, &fakeSender{})

	require.NoError(t, svc.Issue(ctx, domain.ChannelEmail, "a@b.com", "BUYER"))
	require.Equal(t, 1, email.sends)
}
