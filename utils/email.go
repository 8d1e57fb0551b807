package utils

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"go-storefront/models"

	"github.com/keighl/postmark"
	"github.com/rs/zerolog"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Message is one outgoing e-mail.
type Message struct {
	To       string
	ToName   string
	Subject  string
	HTMLBody string
	TextBody string
}

// Mailer delivers a single message. Implementations do not retry.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Sender identifies the From address of outgoing mail.
type Sender struct {
	Address string
	Name    string
}

// NewMailHTTPClient returns the HTTP client used by the mail providers, with an explicit
// connection timeout.
func NewMailHTTPClient(connectTimeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: connectTimeout, KeepAlive: 30 * time.Second}).DialContext
	transport.TLSHandshakeTimeout = connectTimeout
	return &http.Client{Transport: transport, Timeout: 3 * connectTimeout}
}

// PostmarkMailer sends mail through Postmark
type PostmarkMailer struct {
	client *postmark.Client
	from   Sender
}

func NewPostmarkMailer(apiToken string, from Sender, httpClient *http.Client) *PostmarkMailer {
	client := postmark.NewClient(apiToken, "")
	client.HTTPClient = httpClient
	return &PostmarkMailer{client: client, from: from}
}

func (m *PostmarkMailer) Send(_ context.Context, msg Message) error {
	from := m.from.Address
	if m.from.Name != "" {
		from = fmt.Sprintf("%s <%s>", m.from.Name, m.from.Address)
	}
	_, err := m.client.SendEmail(postmark.Email{
		From:     from,
		To:       msg.To,
		Subject:  msg.Subject,
		HtmlBody: msg.HTMLBody,
		TextBody: msg.TextBody,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendGridMailer sends mail through the SendGrid v3 API
type SendGridMailer struct {
	apiKey string
	client *rest.Client
	from   Sender
}

func NewSendGridMailer(apiKey string, from Sender, httpClient *http.Client) *SendGridMailer {
	return &SendGridMailer{apiKey: apiKey, client: &rest.Client{HTTPClient: httpClient}, from: from}
}

func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	email := mail.NewSingleEmail(
		mail.NewEmail(m.from.Name, m.from.Address),
		msg.Subject,
		mail.NewEmail(msg.ToName, msg.To),
		msg.TextBody,
		msg.HTMLBody,
	)
	req := sendgrid.GetRequest(m.apiKey, "/v3/mail/send", "")
	req.Method = rest.Post
	req.Body = mail.GetRequestBody(email)

	resp, err := m.client.SendWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("failed to send email: sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogMailer writes messages to the log instead of delivering them. Used when no provider is configured.
type LogMailer struct {
	logger zerolog.Logger
}

func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("mail not delivered, no provider configured")
	m.logger.Debug().Str("to", msg.To).Str("body", msg.TextBody).Msg("mail body")
	return nil
}

// EmailService renders and sends the storefront's transactional mail.
type EmailService struct {
	mailer Mailer
}

// NewEmailService initializes and returns a new EmailService instance
func NewEmailService(mailer Mailer) *EmailService {
	return &EmailService{mailer: mailer}
}

type otpData struct {
	Name          string
	Code          string
	ExpiryMinutes int
}

// SendPasswordResetOTP mails the plaintext reset code to the account holder.
func (es *EmailService) SendPasswordResetOTP(ctx context.Context, user *models.User, code string, ttl time.Duration) error {
	data := otpData{Name: user.Name, Code: code, ExpiryMinutes: int(ttl.Minutes())}
	html, err := render(otpTemplate, data)
	if err != nil {
		return err
	}
	return es.mailer.Send(ctx, Message{
		To:       user.Email,
		ToName:   user.Name,
		Subject:  "Your password reset code",
		HTMLBody: html,
		TextBody: fmt.Sprintf("Your password reset code is %s. It expires in %d minutes.", code, data.ExpiryMinutes),
	})
}

type orderData struct {
	Name   string
	Orders []models.Order
	Total  string
}

// SendOrderConfirmation mails a summary of the orders created by one checkout.
func (es *EmailService) SendOrderConfirmation(ctx context.Context, user *models.User, orders []models.Order, total string) error {
	html, err := render(orderTemplate, orderData{Name: user.Name, Orders: orders, Total: total})
	if err != nil {
		return err
	}
	return es.mailer.Send(ctx, Message{
		To:       user.Email,
		ToName:   user.Name,
		Subject:  "Order Confirmation",
		HTMLBody: html,
		TextBody: fmt.Sprintf("Thank you for your purchase! %d order(s) were placed. Total: %s", len(orders), total),
	})
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

var otpTemplate = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <p>Hi {{.Name}},</p>
  <p>Use the code below to reset your password:</p>
  <p style="font-size: 28px; letter-spacing: 6px;"><strong>{{.Code}}</strong></p>
  <p>The code expires in {{.ExpiryMinutes}} minutes. If you did not ask for a reset you can ignore this e-mail.</p>
</body>
</html>`))

var orderTemplate = template.Must(template.New("order").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <p><strong>Dear {{.Name}},</strong></p>
  <p>Thank you for your purchase! Your order has been placed successfully.</p>
  <ul>
  {{range .Orders}}<li>Order {{.ID.Hex}}: {{len .Items}} item(s), {{printf "%.2f" .TotalAmount}}</li>
  {{end}}</ul>
  <p>Total Amount: <strong>{{.Total}}</strong></p>
  <p>Thank you for shopping with us!</p>
</body>
</html>`))
