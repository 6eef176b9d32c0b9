package paypal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "cid", user)
		require.Equal(t, "csecret", pass)
		tokenCalls++
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok-1", "expires_in": 3600})
	})
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "CAPTURE", body["intent"])
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Order{ID: "ORD-123", Status: "CREATED"})
	})
	mux.HandleFunc("/v2/checkout/orders/ORD-123/capture", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Order{
			ID:     "ORD-123",
			Status: OrderStatusCompleted,
			PurchaseUnits: []PurchaseUnit{{
				Payments: &Payments{Captures: []Capture{{
					ID:       "CAP-9",
					Status:   OrderStatusCompleted,
					Amount:   Amount{CurrencyCode: "USD", Value: "150.00"},
					CustomID: "purchase",
				}}},
			}},
			Payer: &Payer{EmailAddress: "buyer@example.com", Name: PayerName{GivenName: "Ada", Surname: "Lovelace"}},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &tokenCalls
}

func newTestClient(t *testing.T) (*Client, *int) {
	srv, tokenCalls := newTestServer(t)
	cli := New(Options{
		BaseURL:      srv.URL,
		ClientID:     "cid",
		ClientSecret: "csecret",
		HTTPClient:   srv.Client(),
	}, zap.NewNop().Sugar())
	return cli, tokenCalls
}

func TestCreateAndCaptureOrder(t *testing.T) {
	cli, _ := newTestClient(t)

	order, err := cli.CreateOrder(context.Background(), &CreateOrderRequest{
		ReferenceID: "design,build",
		CustomID:    "purchase",
		Amount:      15000,
		Currency:    "USD",
	})
	require.NoError(t, err)
	require.Equal(t, "ORD-123", order.ID)

	captured, err := cli.CaptureOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, OrderStatusCompleted, captured.Status)
	require.Equal(t, "CAP-9", captured.PurchaseUnits[0].Payments.Captures[0].ID)
	require.Equal(t, "buyer@example.com", captured.Payer.EmailAddress)
}

func TestTokenIsCached(t *testing.T) {
	cli, tokenCalls := newTestClient(t)

	_, err := cli.CreateOrder(context.Background(), &CreateOrderRequest{Amount: 100, Currency: "USD"})
	require.NoError(t, err)
	_, err = cli.CaptureOrder(context.Background(), "ORD-123")
	require.NoError(t, err)
	require.Equal(t, 1, *tokenCalls)
}

func TestAmountConversions(t *testing.T) {
	require.Equal(t, "150.00", FormatAmount(15000))
	require.Equal(t, "0.05", FormatAmount(5))

	minor, err := MinorUnits("150.00")
	require.NoError(t, err)
	require.Equal(t, int64(15000), minor)

	_, err = MinorUnits("not-a-number")
	require.Error(t, err)
}
