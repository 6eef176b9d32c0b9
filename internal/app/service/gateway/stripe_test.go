package gateway

import (
	"testing"

	"github.com/lumenworks/storefront/pkg/types"

	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
)

func paidSession() *stripe.CheckoutSession {
	return &stripe.CheckoutSession{
		ID:            "cs_test_123",
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		AmountTotal:   9900,
		Currency:      stripe.CurrencyUSD,
		CustomerEmail: "buyer@example.com",
		Metadata:      map[string]string{"customer_name": "Grace Hopper"},
	}
}

func TestConfirmedFromCheckoutSession_Subscription(t *testing.T) {
	sess := paidSession()
	sess.Subscription = &stripe.Subscription{ID: "sub_456"}
	sess.Metadata["plan_id"] = "plan-pro"

	ev, err := ConfirmedFromCheckoutSession(sess)
	require.NoError(t, err)
	require.Equal(t, "cs_test_123", ev.TransactionID)
	require.Equal(t, types.PaymentGatewayStripe, ev.Gateway)
	require.Equal(t, types.GatewayKindRedirect, ev.Kind)
	require.NotNil(t, ev.SubscriptionID)
	require.Equal(t, "sub_456", *ev.SubscriptionID)
	require.Equal(t, "plan-pro", ev.PlanID)
	require.Equal(t, int64(9900), ev.Amount)
	require.Equal(t, "USD", ev.Currency)
	require.Equal(t, "Grace Hopper", ev.CustomerName)
}

func TestConfirmedFromCheckoutSession_Deliverables(t *testing.T) {
	sess := paidSession()
	sess.Metadata["deliverable_ids"] = "svc-1,svc-2"

	ev, err := ConfirmedFromCheckoutSession(sess)
	require.NoError(t, err)
	require.Nil(t, ev.SubscriptionID)
	require.Equal(t, []string{"svc-1", "svc-2"}, ev.DeliverableIDs)
}

func TestConfirmedFromCheckoutSession_RejectsUnpaid(t *testing.T) {
	sess := paidSession()
	sess.PaymentStatus = stripe.CheckoutSessionPaymentStatusUnpaid

	_, err := ConfirmedFromCheckoutSession(sess)
	require.ErrorIs(t, err, ErrPaymentNotCompleted)
}
