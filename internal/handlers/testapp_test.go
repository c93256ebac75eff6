package handlers_test

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cassandralabs/membership-backend/internal/config"
	"github.com/cassandralabs/membership-backend/internal/handlers"
	"github.com/cassandralabs/membership-backend/internal/models"
	"github.com/cassandralabs/membership-backend/internal/payments"
	"github.com/cassandralabs/membership-backend/internal/routes"
	"github.com/cassandralabs/membership-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testWebhookSecret = "whsec_test_secret"
	testAdminToken    = "test-admin-token"
)

type fakeGateway struct {
	lastMemberID uuid.UUID
	lastCoupon   string
	err          error
}

func (f *fakeGateway) CreateCheckoutSession(memberID uuid.UUID, email, coupon string) (*payments.CheckoutSession, error) {
	f.lastMemberID = memberID
	f.lastCoupon = coupon
	if f.err != nil {
		return nil, f.err
	}
	return &payments.CheckoutSession{ID: "cs_test_123", URL: "https://checkout.stripe.test/pay/cs_test_123"}, nil
}

func (f *fakeGateway) VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return stripe.Event{}, errors.New("not implemented")
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Member{}, &models.SystemLog{}))
	return db
}

// newTestApp wires the full route surface: the webhook path goes through real
// Stripe signature verification against testWebhookSecret, while checkout
// session creation is stubbed out.
func newTestApp(t *testing.T) (*fiber.App, *gorm.DB, *fakeGateway) {
	t.Helper()

	db := newTestDB(t)
	cfg := &config.Config{
		StripeWebhookSecret: testWebhookSecret,
		AdminToken:          testAdminToken,
		BaseURL:             "http://localhost:3000",
		CheckoutMode:        "subscription",
	}

	fake := &fakeGateway{}
	stripeGateway := payments.NewStripeGateway(cfg)

	registrationHandler := handlers.NewRegistrationHandler(services.NewRegistrationService(db, fake))
	enrollmentHandler := handlers.NewEnrollmentHandler(services.NewEnrollmentService(db))
	webhookHandler := handlers.NewWebhookHandler(stripeGateway, services.NewActivationService(db))
	healthHandler := handlers.NewHealthHandler()
	adminHandler := handlers.NewAdminHandler(db)

	app := fiber.New()
	routes.Setup(app, cfg, registrationHandler, enrollmentHandler, webhookHandler, healthHandler, adminHandler)
	return app, db, fake
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) *http.Response {
	t.Helper()

	b, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, out))
}

func signedHeader(body []byte, secret string) string {
	now := time.Now()
	sig := webhook.ComputeSignature(now, body, secret)
	return fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig))
}

func completedEventBody(t *testing.T, memberID, customer string) []byte {
	t.Helper()

	metadata := map[string]string{}
	if memberID != "" {
		metadata[payments.MetadataMemberID] = memberID
	}
	body, err := json.Marshal(map[string]interface{}{
		"id":   "evt_test_1",
		"type": "checkout.session.completed",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"metadata": metadata,
				"customer": customer,
			},
		},
	})
	require.NoError(t, err)
	return body
}

func deliverWebhook(t *testing.T, app *fiber.App, body []byte, sigHeader string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sigHeader != "" {
		req.Header.Set("Stripe-Signature", sigHeader)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}
