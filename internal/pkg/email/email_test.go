package email

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestUnconfiguredServiceLogsInsteadOfSending(t *testing.T) {
	svc := NewEmailService(SMTPConfig{BaseURL: "http://localhost:8080"}, zerolog.Nop())

	assert.NoError(t, svc.SendPasswordResetEmail("aina@campus.edu.my", "Aina", "tok"))
	assert.NoError(t, svc.SendWelcomeEmail("aina@campus.edu.my", "Aina"))
}

func TestResetURL(t *testing.T) {
	svc := &EmailServiceImpl{config: SMTPConfig{BaseURL: "https://portal.campus.edu.my/"}}
	assert.Equal(t, "https://portal.campus.edu.my/reset-password?token=a+b%26c", svc.ResetURL("a b&c"))
}

func TestBuildMessage(t *testing.T) {
	svc := &EmailServiceImpl{config: SMTPConfig{FromName: "CampuSphere", FromEmail: "noreply@campus.edu.my"}}
	msg := svc.buildMessage("aina@campus.edu.my", "Hello", "<p>hi</p>")

	assert.True(t, strings.HasPrefix(msg, "From: CampuSphere <noreply@campus.edu.my>\r\nTo: aina@campus.edu.my\r\nSubject: Hello\r\n"))
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\n<p>hi</p>"))
}
