package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lumenworks/storefront/internal/app/service/webhookevent"
	"github.com/lumenworks/storefront/pkg/types"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type stubDispatcher struct {
	err      error
	gateways []types.PaymentGateway
}

func (d *stubDispatcher) Dispatch(_ context.Context, g types.PaymentGateway, _ http.Header, _ []byte) error {
	d.gateways = append(d.gateways, g)
	return d.err
}

func TestWebhookEndpointAcksVerifiedDeliveries(t *testing.T) {
	gin.SetMode(gin.TestMode)
	d := &stubDispatcher{}

	r := gin.New()
	r.POST("/webhooks/paypal", ApiPayPalWebhook(d))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/paypal", strings.NewReader(`{"id":"WH-1"}`))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"received": true}`, w.Body.String())
	require.Equal(t, []types.PaymentGateway{types.PaymentGatewayPayPal}, d.gateways)
}

func TestWebhookEndpointRejectsInvalidSignature(t *testing.T) {
	gin.SetMode(gin.TestMode)
	d := &stubDispatcher{err: webhookevent.ErrInvalidSignature}

	r := gin.New()
	r.POST("/webhooks/stripe", ApiStripeWebhook(d))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(`{}`))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
