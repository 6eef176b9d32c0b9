package webhookevent

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/lumenworks/storefront/pkg/types"

	"github.com/stretchr/testify/require"
)

const paypalOrderCompletedBody = `{
	"id": "WH-EVT-1",
	"event_type": "CHECKOUT.ORDER.COMPLETED",
	"resource_type": "checkout-order",
	"resource": {
		"id": "ORDER-1",
		"status": "COMPLETED",
		"purchase_units": [{
			"reference_id": "logo-design,brand-kit",
			"payments": {"captures": [{
				"id": "3XY99012AB345678C",
				"status": "COMPLETED",
				"amount": {"currency_code": "USD", "value": "650.00"},
				"custom_id": "purchase"
			}]}
		}],
		"payer": {"email_address": "buyer@example.com", "name": {"given_name": "Ada", "surname": "Byron"}}
	}
}`

func TestPayPalParserRejectsBadSignature(t *testing.T) {
	p := NewPayPalParser("topsecret")

	h := http.Header{}
	h.Set("Paypal-Transmission-Sig", "deadbeef")
	_, err := p.Parse(h, []byte(paypalOrderCompletedBody))
	require.ErrorIs(t, err, ErrInvalidSignature)

	_, err = p.Parse(http.Header{}, []byte(paypalOrderCompletedBody))
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestPayPalParserMapsCompletedOrder(t *testing.T) {
	p := NewPayPalParser("topsecret")
	body := []byte(paypalOrderCompletedBody)

	h := http.Header{}
	h.Set("Paypal-Transmission-Sig", p.Signature(body))

	ev, err := p.Parse(h, body)
	require.NoError(t, err)
	require.Equal(t, types.PaymentGatewayPayPal, ev.Gateway)
	require.Equal(t, "WH-EVT-1", ev.EventID)
	require.NotNil(t, ev.Confirmed)
	require.Equal(t, "3XY99012AB345678C", ev.Confirmed.TransactionID)
	require.Equal(t, int64(65000), ev.Confirmed.Amount)
	require.Equal(t, "USD", ev.Confirmed.Currency)
	require.Equal(t, types.PaymentPurposePurchase, ev.Confirmed.Purpose)
	require.Equal(t, []string{"logo-design", "brand-kit"}, ev.Confirmed.DeliverableIDs)
	require.Equal(t, "buyer@example.com", ev.Confirmed.CustomerEmail)
	require.Equal(t, "Ada Byron", ev.Confirmed.CustomerName)
}

func TestPayPalParserMapsCancellationTag(t *testing.T) {
	p := NewPayPalParser("topsecret")
	body := []byte(`{
		"id": "WH-EVT-2",
		"event_type": "CHECKOUT.ORDER.COMPLETED",
		"resource": {
			"id": "ORDER-2",
			"status": "COMPLETED",
			"purchase_units": [{
				"payments": {"captures": [{
					"id": "9AB12345CD678901E",
					"status": "COMPLETED",
					"amount": {"currency_code": "USD", "value": "300.00"},
					"custom_id": "cancellation:sub_123"
				}]}
			}]
		}
	}`)

	h := http.Header{}
	h.Set("Paypal-Transmission-Sig", p.Signature(body))

	ev, err := p.Parse(h, body)
	require.NoError(t, err)
	require.NotNil(t, ev.Confirmed)
	require.Equal(t, types.PaymentPurposeCancellation, ev.Confirmed.Purpose)
	require.NotNil(t, ev.Confirmed.SubscriptionID)
	require.Equal(t, "sub_123", *ev.Confirmed.SubscriptionID)
}

func TestPayPalParserIgnoresOtherEventTypes(t *testing.T) {
	p := NewPayPalParser("topsecret")
	body := []byte(`{"id": "WH-EVT-3", "event_type": "CHECKOUT.ORDER.APPROVED", "resource": {}}`)

	h := http.Header{}
	h.Set("Paypal-Transmission-Sig", p.Signature(body))

	ev, err := p.Parse(h, body)
	require.NoError(t, err)
	require.Nil(t, ev.Confirmed)
	require.Equal(t, "CHECKOUT.ORDER.APPROVED", ev.EventType)
}

// stripeSign builds a Stripe-Signature header value for a payload.
func stripeSign(secret string, body []byte, at time.Time) string {
	ts := fmt.Sprintf("%d", at.Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(body)
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

const stripeCheckoutCompletedBody = `{
	"id": "evt_1",
	"type": "checkout.session.completed",
	"api_version": "2025-04-30",
	"data": {"object": {
		"id": "cs_test_a1B2c3D4",
		"payment_status": "paid",
		"amount_total": 10000,
		"currency": "usd",
		"metadata": {"purpose": "purchase", "plan_id": "retainer", "customer_name": "Ada Byron"},
		"customer_details": {"email": "buyer@example.com", "name": "Ada Byron"},
		"subscription": {"id": "sub_123"}
	}}
}`

func TestStripeParserRejectsBadSignature(t *testing.T) {
	p := NewStripeParser("whsec_test")

	h := http.Header{}
	h.Set("Stripe-Signature", stripeSign("whsec_other", []byte(stripeCheckoutCompletedBody), time.Now()))
	_, err := p.Parse(h, []byte(stripeCheckoutCompletedBody))
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestStripeParserMapsCompletedSession(t *testing.T) {
	p := NewStripeParser("whsec_test")
	body := []byte(stripeCheckoutCompletedBody)

	h := http.Header{}
	h.Set("Stripe-Signature", stripeSign("whsec_test", body, time.Now()))

	ev, err := p.Parse(h, body)
	require.NoError(t, err)
	require.Equal(t, types.PaymentGatewayStripe, ev.Gateway)
	require.Equal(t, "evt_1", ev.EventID)
	require.NotNil(t, ev.Confirmed)
	require.Equal(t, "cs_test_a1B2c3D4", ev.Confirmed.TransactionID)
	require.Equal(t, int64(10000), ev.Confirmed.Amount)
	require.Equal(t, "USD", ev.Confirmed.Currency)
	require.NotNil(t, ev.Confirmed.SubscriptionID)
	require.Equal(t, "sub_123", *ev.Confirmed.SubscriptionID)
	require.Equal(t, "retainer", ev.Confirmed.PlanID)
	require.Equal(t, "buyer@example.com", ev.Confirmed.CustomerEmail)
}

func TestStripeParserIgnoresOtherEventTypes(t *testing.T) {
	p := NewStripeParser("whsec_test")
	body := []byte(`{"id": "evt_2", "type": "invoice.paid", "data": {"object": {}}}`)

	h := http.Header{}
	h.Set("Stripe-Signature", stripeSign("whsec_test", body, time.Now()))

	ev, err := p.Parse(h, body)
	require.NoError(t, err)
	require.Nil(t, ev.Confirmed)
	require.Equal(t, "invoice.paid", ev.EventType)
}
