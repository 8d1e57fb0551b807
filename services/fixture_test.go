package services

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"go-storefront/models"
	"go-storefront/store"
	"go-storefront/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []utils.Message
}

func (m *recordingMailer) Send(_ context.Context, msg utils.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) Sent() []utils.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]utils.Message(nil), m.sent...)
}

var otpPattern = regexp.MustCompile(`\b\d{6}\b`)

// lastCode pulls the reset code out of the most recent mail.
func (m *recordingMailer) lastCode(t *testing.T) string {
	t.Helper()
	sent := m.Sent()
	require.NotEmpty(t, sent)
	code := otpPattern.FindString(sent[len(sent)-1].TextBody)
	require.NotEmpty(t, code)
	return code
}

// fixture wires services over a fresh in-memory store.
type fixture struct {
	ctx    context.Context
	store  *store.Store
	clock  *fakeClock
	mailer *recordingMailer
	email  *utils.EmailService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mailer := &recordingMailer{}
	return &fixture{
		ctx:    context.Background(),
		store:  store.NewMemory().Store(),
		clock:  newFakeClock(),
		mailer: mailer,
		email:  utils.NewEmailService(mailer),
	}
}

func (f *fixture) user(t *testing.T, email, role string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword("secret123")
	require.NoError(t, err)
	u := &models.User{Name: "Test " + role, Email: email, Password: hash, Role: role, CreatedAt: f.clock.Now()}
	require.NoError(t, f.store.Users.Create(f.ctx, u))
	return u
}

func (f *fixture) product(t *testing.T, vendorID primitive.ObjectID, title string, price float64, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		VendorID:    vendorID,
		Title:       title,
		Description: title + " description",
		Category:    "General",
		Price:       price,
		Stock:       stock,
		CreatedAt:   f.clock.Now(),
	}
	require.NoError(t, f.store.Products.Create(f.ctx, p))
	return p
}

func (f *fixture) stock(t *testing.T, id primitive.ObjectID) int {
	t.Helper()
	p, err := f.store.Products.FindByID(f.ctx, id)
	require.NoError(t, err)
	return p.Stock
}

// assertKind checks err is an AppError of the given kind.
func assertKind(t *testing.T, err error, kind utils.ErrorKind) *utils.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr), "expected *utils.AppError, got %T: %v", err, err)
	assert.Equal(t, kind, appErr.Kind, appErr.Message)
	return appErr
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	appErr := utils.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, status, appErr.Status(), appErr.Message)
}
