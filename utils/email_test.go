package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-storefront/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type recordingMailer struct {
	sent []Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func TestSendPasswordResetOTP(t *testing.T) {
	mailer := &recordingMailer{}
	svc := NewEmailService(mailer)
	user := &models.User{Name: "Ada", Email: "ada@x.io"}

	require.NoError(t, svc.SendPasswordResetOTP(context.Background(), user, "004217", 15*time.Minute))

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, "ada@x.io", msg.To)
	assert.Contains(t, msg.HTMLBody, "004217")
	assert.Contains(t, msg.HTMLBody, "15 minutes")
	assert.Contains(t, msg.TextBody, "004217")
}

func TestSendOrderConfirmation(t *testing.T) {
	mailer := &recordingMailer{}
	svc := NewEmailService(mailer)
	orders := []models.Order{
		{ID: primitive.NewObjectID(), TotalAmount: 30, Items: []models.OrderItem{{Quantity: 3, Price: 10}}},
		{ID: primitive.NewObjectID(), TotalAmount: 5, Items: []models.OrderItem{{Quantity: 1, Price: 5}}},
	}

	require.NoError(t, svc.SendOrderConfirmation(context.Background(), &models.User{Name: "Ada", Email: "ada@x.io"}, orders, "35.00"))

	require.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0].HTMLBody, orders[0].ID.Hex())
	assert.Contains(t, mailer.sent[0].HTMLBody, "35.00")
}

func TestEmailServicePropagatesMailerError(t *testing.T) {
	svc := NewEmailService(&recordingMailer{err: errors.New("smtp down")})
	err := svc.SendPasswordResetOTP(context.Background(), &models.User{Email: "a@x.io"}, "000000", time.Minute)
	assert.Error(t, err)
}

func TestNewMailHTTPClient(t *testing.T) {
	client := NewMailHTTPClient(10 * time.Second)
	assert.Equal(t, 30*time.Second, client.Timeout)
	assert.NotNil(t, client.Transport)
}
