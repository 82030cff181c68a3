package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/attendance/internal/notify"
)

type recordingSender struct {
	err  error
	sent map[string]string
}

func (s *recordingSender) Send(_ context.Context, to, msg string) error {
	if s.err != nil {
		return s.err
	}
	if s.sent == nil {
		s.sent = map[string]string{}
	}
	s.sent[to] = msg
	return nil
}

func newRecovery(e *testEnv, wa, mail notify.Sender) *RecoveryService {
	return &RecoveryService{
		Lookup:    e.lookup,
		Resets:    e.resets,
		WhatsApp:  wa,
		Email:     mail,
		PublicURL: "https://presenca.example/",
	}
}

func TestResetLink(t *testing.T) {
	assert.Equal(t, "https://a.b/reset-password/tok", ResetLink("https://a.b/", "tok"))
	assert.Equal(t, "https://a.b/reset-password/tok", ResetLink("https://a.b", "tok"))
}

func TestRecovery_UnknownIdentityIsSilent(t *testing.T) {
	e := newTestEnv(t)
	wa, mail := &recordingSender{}, &recordingSender{}

	res, err := newRecovery(e, wa, mail).RequestReset(context.Background(), "ghost@x.com")
	require.NoError(t, err)
	assert.Empty(t, res.Channels)
	assert.Empty(t, wa.sent)
	assert.Empty(t, mail.sent)
}

func TestRecovery_SendsLinkOnEveryChannel(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.seedUser(t, "u1", "user@x.com", "11999998888", "OldPassword1")
	wa, mail := &recordingSender{}, &recordingSender{}

	res, err := newRecovery(e, wa, mail).RequestReset(ctx, "11 99999-8888")
	require.NoError(t, err)
	assert.Equal(t, []notify.Channel{notify.WhatsApp, notify.Email}, res.Channels)

	msg := wa.sent["11999998888"]
	require.NotEmpty(t, msg)
	assert.Equal(t, msg, mail.sent["user@x.com"])

	const marker = "https://presenca.example/reset-password/"
	i := strings.Index(msg, marker)
	require.GreaterOrEqual(t, i, 0)
	token := strings.Fields(msg[i+len(marker):])[0]

	require.NoError(t, e.resets.ConsumeAndReset(ctx, token, "NewPassword1"))
	_, err = e.auth.Login(ctx, "user@x.com", "NewPassword1")
	require.NoError(t, err)
}

func TestRecovery_PartialDelivery(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "u1", "user@x.com", "11999998888", "OldPassword1")

	res, err := newRecovery(e, &recordingSender{err: errors.New("whatsapp down")}, &recordingSender{}).
		RequestReset(context.Background(), "user@x.com")
	require.NoError(t, err)
	assert.Equal(t, []notify.Channel{notify.Email}, res.Channels)
}

func TestRecovery_NoChannelSucceeded(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "u1", "user@x.com", "", "OldPassword1")

	_, err := newRecovery(e, &recordingSender{}, &recordingSender{err: errors.New("smtp down")}).
		RequestReset(context.Background(), "user@x.com")
	assert.ErrorIs(t, err, ErrDeliveryFailed)
}

func TestRecovery_RequiresIdentifier(t *testing.T) {
	e := newTestEnv(t)

	_, err := newRecovery(e, nil, nil).RequestReset(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrValidation)
}
