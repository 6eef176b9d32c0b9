package handlers

import (
	"net/http"

	"github.com/lumenworks/storefront/internal/app/service/gateway"
	"github.com/lumenworks/storefront/pkg/config"
	"github.com/lumenworks/storefront/pkg/response"
	"github.com/lumenworks/storefront/pkg/types"

	"github.com/gin-gonic/gin"
)

// CheckoutRequest opens a payment for either a set of catalog deliverables or
// one subscription plan, never both.
type CheckoutRequest struct {
	CustomerEmail      string   `json:"customer_email" binding:"required,email"`
	CustomerName       string   `json:"customer_name"`
	SelectedServices   []string `json:"selected_services"`
	SubscriptionPlanID string   `json:"subscription_plan_id"`
}

type CheckoutResponse struct {
	Gateway     types.PaymentGateway `json:"gateway"`
	OrderID     string               `json:"order_id"`
	RedirectURL string               `json:"redirect_url,omitempty"`
	Amount      int64                `json:"amount"`
	Currency    string               `json:"currency"`
	ProjectKey  string               `json:"project_key,omitempty"`
	ChannelName string               `json:"channel_name,omitempty"`
}

// RespCheckout wraps CheckoutResponse in the standard envelope.
type RespCheckout struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    CheckoutResponse         `json:"data"`
}

// @Summary      Start checkout
// @Description  Opens a gateway order or session for the selected deliverables or subscription plan.
// @Tags         Checkout
// @Accept       json
// @Produce      json
// @Param        request body handlers.CheckoutRequest true "Checkout request"
// @Success      200  {object}  handlers.RespCheckout
// @Router       /api/v1/checkout [post]
func ApiCheckout(cfg *config.Config, selector *gateway.Selector) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if (len(req.SelectedServices) == 0) == (req.SubscriptionPlanID == "") {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest,
				"exactly one of selected_services or subscription_plan_id is required"))
			return
		}

		intent := &gateway.PaymentIntentRequest{
			CustomerEmail: req.CustomerEmail,
			CustomerName:  req.CustomerName,
			Purpose:       types.PaymentPurposePurchase,
		}

		var amount int64
		var currency string
		if req.SubscriptionPlanID != "" {
			plan := cfg.GetPlanByID(req.SubscriptionPlanID)
			if plan == nil {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest,
					"unknown subscription plan: "+req.SubscriptionPlanID))
				return
			}
			intent.Plan = plan
			amount, currency = plan.MonthlyPrice, plan.Currency
		} else {
			for _, id := range req.SelectedServices {
				d := cfg.GetDeliverableByID(id)
				if d == nil {
					c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest,
						"unknown service: "+id))
					return
				}
				if currency != "" && currency != d.Currency {
					c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest,
						"selected services must share one currency"))
					return
				}
				currency = d.Currency
				amount += d.Price
				intent.Items = append(intent.Items, d)
			}
		}

		adapter := selector.ForIntent(intent)
		res, err := adapter.StartPayment(c.Request.Context(), intent)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}

		c.JSON(http.StatusOK, response.OKT(CheckoutResponse{
			Gateway:     adapter.Gateway(),
			OrderID:     res.Handle,
			RedirectURL: res.RedirectURL,
			Amount:      amount,
			Currency:    currency,
			ProjectKey:  res.ProjectKey,
			ChannelName: res.ChannelName,
		}))
	}
}
