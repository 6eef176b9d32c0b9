package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/lumenworks/storefront/internal/app/service/webhookevent"
	"github.com/lumenworks/storefront/pkg/types"

	"github.com/gin-gonic/gin"
)

// webhookEndpoint acks every verified delivery with 200 {"received": true}.
// Only signature failures and unreadable bodies get a non-2xx status; handler
// failures are logged server-side and still acked so the gateway does not
// retry forever.
func webhookEndpoint(dispatcher webhookevent.Dispatcher, g types.PaymentGateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
			return
		}

		if err := dispatcher.Dispatch(c.Request.Context(), g, c.Request.Header, body); err != nil {
			if errors.Is(err, webhookevent.ErrInvalidSignature) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "signature verification failed"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

// @Summary      Stripe webhook
// @Description  Receives signed Stripe events; completed checkout sessions trigger fulfillment.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]bool
// @Router       /webhooks/stripe [post]
func ApiStripeWebhook(dispatcher webhookevent.Dispatcher) gin.HandlerFunc {
	return webhookEndpoint(dispatcher, types.PaymentGatewayStripe)
}

// @Summary      PayPal webhook
// @Description  Receives signed PayPal events; completed orders trigger fulfillment or cancellation settlement.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]bool
// @Router       /webhooks/paypal [post]
func ApiPayPalWebhook(dispatcher webhookevent.Dispatcher) gin.HandlerFunc {
	return webhookEndpoint(dispatcher, types.PaymentGatewayPayPal)
}

func RegisterWebhookRoutes(r gin.IRouter, deps RouteDeps) {
	r.POST("/webhooks/stripe", ApiStripeWebhook(deps.Dispatcher))
	r.POST("/webhooks/paypal", ApiPayPalWebhook(deps.Dispatcher))
}
