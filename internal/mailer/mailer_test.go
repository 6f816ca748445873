package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	msg, err := newMessage("no-reply@voters.info", "admin@example.com", "Password reset code", "Your password reset code is 12345678")
	require.NoError(t, err)
	assert.Equal(t, []string{"<admin@example.com>"}, msg.GetToString())

	_, err = newMessage("no-reply@voters.info", "not an address", "s", "b")
	assert.Error(t, err)
}

func TestLogSender_Send(t *testing.T) {
	s := NewLogSender("no-reply@voters.info")
	require.NoError(t, s.Send(context.Background(), "admin@example.com", "Password reset code", "Your password reset code is 12345678"))
	assert.Error(t, s.Send(context.Background(), "", "Password reset code", "body"))
}

func TestNewSMTPSender(t *testing.T) {
	s, err := NewSMTPSender(SMTPParams{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "user",
		Password: "pass",
		From:     "no-reply@voters.info",
	})
	require.NoError(t, err)
	assert.NotNil(t, s.client)

	_, err = NewSMTPSender(SMTPParams{Port: 587})
	assert.Error(t, err)
}
