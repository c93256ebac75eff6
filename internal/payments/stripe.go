package payments

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cassandralabs/membership-backend/internal/config"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

// MetadataMemberID is the session metadata key carrying the member record id.
// It is the only linkage between a checkout session and a member record, so
// session creation and event extraction must both use this constant.
const MetadataMemberID = "member_id"

var (
	ErrNoMemberID  = errors.New("checkout session metadata has no member_id")
	ErrBadMemberID = errors.New("checkout session metadata member_id is not a uuid")
)

// CheckoutSession is what the intake needs back from the gateway: where to
// send the browser.
type CheckoutSession struct {
	ID  string
	URL string
}

// Gateway is the payment-processor surface used by the intake and webhook
// paths. Split out so tests can run without Stripe.
type Gateway interface {
	CreateCheckoutSession(memberID uuid.UUID, email, coupon string) (*CheckoutSession, error)
	VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error)
}

type StripeGateway struct {
	priceID       string
	mode          string
	baseURL       string
	webhookSecret string
}

func NewStripeGateway(cfg *config.Config) *StripeGateway {
	stripe.Key = cfg.StripeSecretKey
	return &StripeGateway{
		priceID:       cfg.StripePriceID,
		mode:          cfg.CheckoutMode,
		baseURL:       cfg.BaseURL,
		webhookSecret: cfg.StripeWebhookSecret,
	}
}

// CreateCheckoutSession opens a hosted checkout for the configured price,
// stamping the member id into session metadata. A coupon, when present, is
// forwarded unvalidated; Stripe rejects unknown codes at creation time.
func (g *StripeGateway) CreateCheckoutSession(memberID uuid.UUID, email, coupon string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(g.mode),
		CustomerEmail: stripe.String(email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(g.priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(g.baseURL + "/thanks"),
		CancelURL:  stripe.String(g.baseURL + "/membership?canceled=1"),
	}
	params.AddMetadata(MetadataMemberID, memberID.String())

	if coupon != "" {
		params.Discounts = []*stripe.CheckoutSessionDiscountParams{
			{Coupon: stripe.String(coupon)},
		}
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe session create: %w", err)
	}

	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// VerifyEvent checks the Stripe-Signature header against the raw payload.
// API version mismatches are tolerated; the dashboard's webhook version need
// not track the SDK's pinned version.
func (g *StripeGateway) VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, sigHeader, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}

// CompletedCheckout extracts the member id and payment-customer reference
// from a verified checkout.session.completed event.
func CompletedCheckout(event stripe.Event) (uuid.UUID, string, error) {
	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return uuid.Nil, "", fmt.Errorf("decode checkout session: %w", err)
	}

	raw, ok := cs.Metadata[MetadataMemberID]
	if !ok || raw == "" {
		return uuid.Nil, "", ErrNoMemberID
	}

	memberID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("%w: %q", ErrBadMemberID, raw)
	}

	var customer string
	if cs.Customer != nil {
		customer = cs.Customer.ID
	}
	return memberID, customer, nil
}
