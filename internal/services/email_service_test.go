package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/createconomy/cemvp/internal/models"
)

type mockSES struct {
	input *ses.SendEmailInput
	err   error
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.input = params
	if m.err != nil {
		return nil, m.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESNotifier_Unconfigured(t *testing.T) {
	n, err := NewSESNotifier(context.Background(), "", "noreply@createconomy.com", 14, discardLogger())
	require.NoError(t, err)

	assert.False(t, n.IsConfigured())
	err = n.SendMFAPinEmail(context.Background(), "a@example.com", "123456", time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, models.ErrNotificationUnavailable)
}

func TestSESNotifier_SendMFAPinEmail(t *testing.T) {
	client := &mockSES{}
	n := newSESNotifier(client, "noreply@createconomy.com", 14, discardLogger())

	err := n.SendMFAPinEmail(context.Background(), "admin@example.com", "482913", time.Now().Add(24*time.Hour))

	require.NoError(t, err)
	require.NotNil(t, client.input)
	assert.Equal(t, "noreply@createconomy.com", aws.ToString(client.input.Source))
	assert.Equal(t, []string{"admin@example.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, mfaPinSubject, aws.ToString(client.input.Message.Subject.Data))
	assert.Contains(t, aws.ToString(client.input.Message.Body.Html.Data), "482913")
	assert.Contains(t, aws.ToString(client.input.Message.Body.Text.Data), "24 hours")
}

func TestSESNotifier_SendFailure(t *testing.T) {
	client := &mockSES{err: errors.New("throttled")}
	n := newSESNotifier(client, "noreply@createconomy.com", 14, discardLogger())

	err := n.SendAdminSetupEmail(context.Background(), "admin@example.com", AdminSetupMessage{Pin: "123456"})
	assert.Error(t, err)
}

func TestRenderAdminSetupEmail(t *testing.T) {
	content := renderAdminSetupEmail(AdminSetupMessage{
		Name:      "<Ada>",
		SetupURL:  "https://createconomy.com/auth/setup-password?token=u1&x=1",
		Pin:       "654321",
		ExpiresAt: time.Now().Add(24 * time.Hour),
	})

	assert.Equal(t, adminSetupSubject, content.Subject)
	assert.Contains(t, content.HTML, "Hello &lt;Ada&gt;")
	assert.Contains(t, content.HTML, "token=u1&amp;x=1")
	assert.Contains(t, content.HTML, "654321")
	assert.Contains(t, content.Text, "https://createconomy.com/auth/setup-password?token=u1&x=1")
	assert.True(t, strings.HasPrefix(content.Text, "Admin Account Setup"))
}

func TestValidFor(t *testing.T) {
	assert.Equal(t, "24 hours", validFor(time.Now().Add(24*time.Hour)))
	assert.Equal(t, "1 hour", validFor(time.Now().Add(time.Hour)))
	assert.Equal(t, "less than an hour", validFor(time.Now().Add(10*time.Minute)))
}
