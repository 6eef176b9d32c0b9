package webhookevent

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/lumenworks/storefront/internal/app/service/gateway"
	"github.com/lumenworks/storefront/internal/platform/paypal"
	"github.com/lumenworks/storefront/pkg/types"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// ErrInvalidSignature means the delivery failed verification and must be
// rejected with a non-2xx status. Every other parse outcome gets acked.
var ErrInvalidSignature = errors.New("webhook signature verification failed")

// Event is one verified gateway delivery. Confirmed is nil for event types
// the dispatcher does not act on; those are acked and logged as ignored.
type Event struct {
	Gateway   types.PaymentGateway
	EventID   string
	EventType string
	Confirmed *types.PaymentConfirmed
}

// Parser verifies and normalizes one gateway's webhook deliveries.
type Parser interface {
	Gateway() types.PaymentGateway
	Parse(header http.Header, body []byte) (*Event, error)
}

// StripeParser verifies Stripe-Signature headers and extracts completed
// checkout sessions.
type StripeParser struct {
	signingSecret string
}

func NewStripeParser(signingSecret string) *StripeParser {
	return &StripeParser{signingSecret: signingSecret}
}

func (p *StripeParser) Gateway() types.PaymentGateway { return types.PaymentGatewayStripe }

func (p *StripeParser) Parse(header http.Header, body []byte) (*Event, error) {
	stripeEvent, err := webhook.ConstructEventWithOptions(
		body,
		header.Get("Stripe-Signature"),
		p.signingSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	ev := &Event{
		Gateway:   types.PaymentGatewayStripe,
		EventID:   stripeEvent.ID,
		EventType: string(stripeEvent.Type),
	}
	if string(stripeEvent.Type) != "checkout.session.completed" {
		return ev, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(stripeEvent.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session payload: %w", err)
	}
	confirmed, err := gateway.ConfirmedFromCheckoutSession(&sess)
	if err != nil {
		if errors.Is(err, gateway.ErrPaymentNotCompleted) {
			// completed event for an unpaid session (e.g. delayed payment
			// methods); nothing to fulfill yet
			return ev, nil
		}
		return nil, err
	}
	ev.Confirmed = confirmed
	return ev, nil
}

// PayPalParser verifies deliveries with an HMAC-SHA256 shared secret over the
// raw body and extracts completed orders.
type PayPalParser struct {
	sharedSecret string
}

func NewPayPalParser(sharedSecret string) *PayPalParser {
	return &PayPalParser{sharedSecret: sharedSecret}
}

func (p *PayPalParser) Gateway() types.PaymentGateway { return types.PaymentGatewayPayPal }

const paypalSignatureHeader = "Paypal-Transmission-Sig"

// Signature computes the hex HMAC-SHA256 of a body under the shared secret.
// Exported for the transmission tooling that replays stored deliveries.
func (p *PayPalParser) Signature(body []byte) string {
	mac := hmac.New(sha256.New, []byte(p.sharedSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

type paypalEnvelope struct {
	ID           string          `json:"id"`
	EventType    string          `json:"event_type"`
	ResourceType string          `json:"resource_type"`
	Resource     json.RawMessage `json:"resource"`
}

const paypalOrderCompleted = "CHECKOUT.ORDER.COMPLETED"

func (p *PayPalParser) Parse(header http.Header, body []byte) (*Event, error) {
	got := header.Get(paypalSignatureHeader)
	want := p.Signature(body)
	if got == "" || !hmac.Equal([]byte(got), []byte(want)) {
		return nil, ErrInvalidSignature
	}

	var env paypalEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode paypal webhook envelope: %w", err)
	}

	ev := &Event{
		Gateway:   types.PaymentGatewayPayPal,
		EventID:   env.ID,
		EventType: env.EventType,
	}
	if env.EventType != paypalOrderCompleted {
		return ev, nil
	}

	var order paypal.Order
	if err := json.Unmarshal(env.Resource, &order); err != nil {
		return nil, fmt.Errorf("failed to decode paypal order resource: %w", err)
	}
	confirmed, err := gateway.ConfirmedFromOrder(&order)
	if err != nil {
		if errors.Is(err, gateway.ErrPaymentNotCompleted) {
			return ev, nil
		}
		return nil, err
	}
	ev.Confirmed = confirmed
	return ev, nil
}
