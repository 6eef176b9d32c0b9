package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lumenworks/storefront/internal/platform/paypal"
	"github.com/lumenworks/storefront/pkg/types"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func capturedOrder(customID, referenceID string) *paypal.Order {
	return &paypal.Order{
		ID:     "ORD-1",
		Status: paypal.OrderStatusCompleted,
		PurchaseUnits: []paypal.PurchaseUnit{{
			ReferenceID: referenceID,
			Payments: &paypal.Payments{Captures: []paypal.Capture{{
				ID:       "CAP-1",
				Status:   paypal.OrderStatusCompleted,
				Amount:   paypal.Amount{CurrencyCode: "USD", Value: "300.00"},
				CustomID: customID,
			}}},
		}},
		Payer: &paypal.Payer{
			EmailAddress: "buyer@example.com",
			Name:         paypal.PayerName{GivenName: "Grace", Surname: "Hopper"},
		},
	}
}

func TestConfirmedFromOrder_Deliverables(t *testing.T) {
	ev, err := ConfirmedFromOrder(capturedOrder("purchase", "svc-1,svc-2"))
	require.NoError(t, err)
	require.Equal(t, "CAP-1", ev.TransactionID)
	require.Equal(t, types.PaymentGatewayPayPal, ev.Gateway)
	require.Equal(t, types.GatewayKindCapture, ev.Kind)
	require.Equal(t, types.PaymentPurposePurchase, ev.Purpose)
	require.Equal(t, int64(30000), ev.Amount)
	require.Equal(t, "USD", ev.Currency)
	require.Equal(t, []string{"svc-1", "svc-2"}, ev.DeliverableIDs)
	require.Nil(t, ev.SubscriptionID)
	require.Equal(t, "buyer@example.com", ev.CustomerEmail)
	require.Equal(t, "Grace Hopper", ev.CustomerName)
}

func TestConfirmedFromOrder_CancellationLeg(t *testing.T) {
	ev, err := ConfirmedFromOrder(capturedOrder("cancellation:sub-42", ""))
	require.NoError(t, err)
	require.Equal(t, types.PaymentPurposeCancellation, ev.Purpose)
	require.NotNil(t, ev.SubscriptionID)
	require.Equal(t, "sub-42", *ev.SubscriptionID)
	require.Empty(t, ev.DeliverableIDs)
}

func TestConfirmedFromOrder_RejectsIncompleteCapture(t *testing.T) {
	order := capturedOrder("purchase", "svc-1")
	order.PurchaseUnits[0].Payments.Captures[0].Status = "PENDING"
	_, err := ConfirmedFromOrder(order)
	require.ErrorIs(t, err, ErrPaymentNotCompleted)
}

func TestPaymentTagRoundTrip(t *testing.T) {
	tag := PaymentTag{Purpose: types.PaymentPurposeCancellation, SubscriptionID: "sub-9"}
	require.Equal(t, tag, ParsePaymentTag(tag.Encode()))

	require.Equal(t, PaymentTag{Purpose: types.PaymentPurposePurchase}, ParsePaymentTag("purchase"))
	require.Equal(t, PaymentTag{Purpose: types.PaymentPurposePurchase}, ParsePaymentTag(""))
}

func newOrdersAdapter(t *testing.T) *PayPalAdapter {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok-1", "expires_in": 3600})
	})
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(paypal.Order{ID: "ORD-1", Status: "CREATED"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	cli := paypal.New(paypal.Options{
		BaseURL:      srv.URL,
		ClientID:     "cid",
		ClientSecret: "csecret",
		HTTPClient:   srv.Client(),
	}, zap.NewNop().Sugar())
	return NewPayPalAdapter(cli, zap.NewNop().Sugar())
}

// The order id is not the transaction id the workspace names derive from, so
// the capture gateway must not preview them at checkout.
func TestStartPayment_NoWorkspacePreviewOnCapturePath(t *testing.T) {
	adapter := newOrdersAdapter(t)

	res, err := adapter.StartPayment(context.Background(), &PaymentIntentRequest{
		CustomerEmail: "buyer@example.com",
		Purpose:       types.PaymentPurposePurchase,
		Items:         []*types.Deliverable{{ID: "svc-1", Name: "Design", Price: 15000, Currency: "USD"}},
	})
	require.NoError(t, err)
	require.Equal(t, "ORD-1", res.Handle)
	require.Empty(t, res.ProjectKey)
	require.Empty(t, res.ChannelName)
}
