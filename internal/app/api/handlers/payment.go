package handlers

import (
	"errors"
	"net/http"

	"github.com/lumenworks/storefront/internal/app/service/fulfillment"
	"github.com/lumenworks/storefront/internal/app/service/gateway"
	"github.com/lumenworks/storefront/internal/app/service/subscription"
	"github.com/lumenworks/storefront/internal/models"
	"github.com/lumenworks/storefront/pkg/response"
	"github.com/lumenworks/storefront/pkg/types"

	"github.com/gin-gonic/gin"
)

type CaptureRequest struct {
	OrderID string `json:"order_id" binding:"required"`
}

// @Summary      Capture payment
// @Description  Captures an approved order on the synchronous gateway and runs fulfillment.
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        request body handlers.CaptureRequest true "Capture request"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/payments/capture [post]
func ApiCapturePayment(selector *gateway.Selector, orchestrator fulfillment.Orchestrator, subs subscription.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CaptureRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		adapter, err := selector.ByGateway(types.PaymentGatewayPayPal)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}

		confirmed, err := adapter.ConfirmPayment(c.Request.Context(), req.OrderID)
		if err != nil {
			if errors.Is(err, gateway.ErrPaymentNotCompleted) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}

		if confirmed.Purpose == types.PaymentPurposeCancellation {
			sub, err := subs.SettleCancellation(c.Request.Context(), confirmed)
			if err != nil {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.OKT(sub))
			return
		}

		result, err := orchestrator.Fulfill(c.Request.Context(), confirmed)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(result))
	}
}

type CancelSubscriptionRequest struct {
	SubscriptionID string `json:"subscription_id" binding:"required"`
	CustomerEmail  string `json:"customer_email" binding:"omitempty,email"`
}

// @Summary      Request subscription cancellation
// @Description  Quotes the prorated fee for the remaining commitment and opens the payment to collect it.
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Param        request body handlers.CancelSubscriptionRequest true "Cancellation request"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/payments/cancel-subscription [post]
func ApiCancelSubscription(subs subscription.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CancelSubscriptionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		quote, err := subs.RequestCancellation(c.Request.Context(), req.SubscriptionID, req.CustomerEmail)
		if err != nil {
			switch {
			case errors.Is(err, subscription.ErrSubscriptionNotFound),
				errors.Is(err, subscription.ErrSubscriptionInactive),
				errors.Is(err, subscription.ErrNoCommitmentRemaining):
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			default:
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			}
			return
		}
		c.JSON(http.StatusOK, response.OKT(quote))
	}
}

type FinalizeCancellationRequest struct {
	OrderID string `json:"order_id" binding:"required"`
}

// @Summary      Finalize subscription cancellation
// @Description  Captures the cancellation-fee payment and deactivates the subscription.
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Param        request body handlers.FinalizeCancellationRequest true "Finalize request"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/payments/finalize-cancellation [post]
func ApiFinalizeCancellation(subs subscription.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req FinalizeCancellationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		sub, err := subs.FinalizeCancellation(c.Request.Context(), req.OrderID)
		if err != nil {
			if errors.Is(err, subscription.ErrCancellationNotSettled) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespSubscription wraps a subscription row in the standard envelope.
type RespSubscription struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.Subscription      `json:"data"`
}

func RegisterPaymentRoutes(r gin.IRouter, deps RouteDeps) {
	r.POST("/checkout", ApiCheckout(deps.Config, deps.Selector))
	r.POST("/payments/capture", ApiCapturePayment(deps.Selector, deps.Orchestrator, deps.Subscriptions))
	r.POST("/payments/cancel-subscription", ApiCancelSubscription(deps.Subscriptions))
	r.POST("/payments/finalize-cancellation", ApiFinalizeCancellation(deps.Subscriptions))
}
