package gateway

import (
	"context"
	"errors"
	"strings"

	"github.com/lumenworks/storefront/pkg/types"
)

var (
	// ErrPaymentNotCompleted is returned when the gateway reports any status
	// other than its completed sentinel. The checkout UI treats it as "try
	// again"; nothing is retried automatically.
	ErrPaymentNotCompleted = errors.New("gateway did not report the payment as completed")

	ErrInvalidIntent = errors.New("payment intent must reference deliverables, a plan, or a cancellation amount")
)

// PaymentIntentRequest is built once per checkout and consumed once to open a
// gateway-specific order or session. Items and Plan are resolved server-side
// from the catalog; cancellation legs carry an explicit amount instead.
type PaymentIntentRequest struct {
	CustomerEmail string
	CustomerName  string

	Items []*types.Deliverable
	Plan  *types.SubscriptionPlan

	Purpose types.PaymentPurpose
	// SubscriptionID tags cancellation-fee legs with the subscription they settle.
	SubscriptionID string
	// Amount/Currency are only set for cancellation legs (prorated fee).
	Amount   int64
	Currency string
}

func (r *PaymentIntentRequest) IsSubscription() bool {
	return r != nil && r.Plan != nil
}

// StartPaymentResult carries the gateway handle (order or session id) the
// buyer continues with. ProjectKey and ChannelName preview the workspace
// names fulfillment will derive; they are set only when the handle is also
// the confirmed transaction id. The capture gateway leaves them empty, since
// its names come from the capture id, not the order id.
type StartPaymentResult struct {
	Handle      string `json:"handle"`
	RedirectURL string `json:"redirect_url,omitempty"`
	ProjectKey  string `json:"project_key,omitempty"`
	ChannelName string `json:"channel_name,omitempty"`
}

// Adapter normalizes one payment backend into the internal contract. The
// capture adapter confirms synchronously; the redirect adapter's
// confirmations usually arrive via webhook, and ConfirmPayment doubles as an
// on-demand session lookup.
type Adapter interface {
	Gateway() types.PaymentGateway
	Kind() types.GatewayKind
	StartPayment(ctx context.Context, req *PaymentIntentRequest) (*StartPaymentResult, error)
	ConfirmPayment(ctx context.Context, handle string) (*types.PaymentConfirmed, error)
}

// Selector routes intents and confirmations to the right adapter.
type Selector struct {
	paypal Adapter
	stripe Adapter
}

func NewSelector(paypal *PayPalAdapter, stripe *StripeAdapter) *Selector {
	return &Selector{paypal: paypal, stripe: stripe}
}

// ForIntent picks the gateway for a new checkout: subscriptions sell through
// the redirect gateway, deliverables and cancellation fees through capture.
func (s *Selector) ForIntent(req *PaymentIntentRequest) Adapter {
	if req.IsSubscription() {
		return s.stripe
	}
	return s.paypal
}

func (s *Selector) ByGateway(g types.PaymentGateway) (Adapter, error) {
	switch g {
	case types.PaymentGatewayPayPal:
		return s.paypal, nil
	case types.PaymentGatewayStripe:
		return s.stripe, nil
	default:
		return nil, errors.New("unsupported gateway: " + string(g))
	}
}

// PaymentTag is the compact marker adapters attach to gateway metadata so a
// confirmation can be classified without any server-side session state.
type PaymentTag struct {
	Purpose        types.PaymentPurpose
	SubscriptionID string
}

const tagSeparator = ":"

func (t PaymentTag) Encode() string {
	if t.Purpose == types.PaymentPurposeCancellation {
		return string(types.PaymentPurposeCancellation) + tagSeparator + t.SubscriptionID
	}
	return string(types.PaymentPurposePurchase)
}

func ParsePaymentTag(s string) PaymentTag {
	if rest, ok := strings.CutPrefix(s, string(types.PaymentPurposeCancellation)+tagSeparator); ok {
		return PaymentTag{Purpose: types.PaymentPurposeCancellation, SubscriptionID: rest}
	}
	return PaymentTag{Purpose: types.PaymentPurposePurchase}
}
