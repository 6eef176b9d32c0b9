package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/lumenworks/storefront/internal/app/service/fulfillment"
	"github.com/lumenworks/storefront/internal/app/service/payment"
	"github.com/lumenworks/storefront/internal/app/service/project"
	"github.com/lumenworks/storefront/internal/app/service/statistics"
	"github.com/lumenworks/storefront/internal/app/service/subscription"
	"github.com/lumenworks/storefront/internal/models"
	"github.com/lumenworks/storefront/pkg/response"

	"github.com/gin-gonic/gin"
)

// RespScanTransactions wraps the transaction scan result in the standard envelope.
type RespScanTransactions struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    payment.ScanResponse     `json:"data"`
}

// @Summary      Scan transactions
// @Description  Paginated payment-ledger listing with filters, for admin pages.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body payment.ScanRequest true "Scan request"
// @Success      200  {object}  handlers.RespScanTransactions
// @Router       /api/v1/admin/transactions/scan [post]
func ApiScanTransactions(payments payment.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payment.ScanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := payments.Scan(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

type listProjectsResponse struct {
	Items []*models.Project `json:"items"`
	Total int64             `json:"total"`
}

// @Summary      List projects
// @Description  Paginated project listing for admin pages.
// @Tags         Admin
// @Produce      json
// @Param        from query int false "Offset"
// @Param        size query int false "Page size"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/projects [get]
func ApiListProjects(projects project.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, _ := strconv.Atoi(c.DefaultQuery("from", "0"))
		size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

		items, total, err := projects.List(c.Request.Context(), from, size)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(listProjectsResponse{Items: items, Total: total}))
	}
}

// @Summary      Get subscription
// @Description  Returns one subscription by its gateway id.
// @Tags         Admin
// @Produce      json
// @Param        id path string true "Subscription id"
// @Success      200  {object}  handlers.RespSubscription
// @Router       /api/v1/admin/subscriptions/{id} [get]
func ApiGetSubscription(subs subscription.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, err := subs.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, subscription.ErrSubscriptionNotFound) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

// @Summary      Re-run fulfillment
// @Description  Retries the failed provisioning steps for a recorded transaction.
// @Tags         Admin
// @Produce      json
// @Param        transactionID path string true "Transaction id"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/fulfillment/{transactionID}/refulfill [post]
func ApiRefulfill(orchestrator fulfillment.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := orchestrator.Refulfill(c.Request.Context(), c.Param("transactionID"))
		if err != nil {
			if errors.Is(err, fulfillment.ErrProvisioningNotFound) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(result))
	}
}

// @Summary      Statistics summary
// @Description  One-shot dashboard snapshot of the payment ledger, subscriptions and projects.
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/statistics/summary [get]
func ApiStatisticsSummary(stats *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := stats.GetSummary(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(out))
	}
}

// @Summary      Daily statistics
// @Description  Per-day transaction count or revenue series.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body statistics.DailyRequest true "Series request"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/statistics/daily [post]
func ApiStatisticsDaily(stats *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.DailyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		items, err := stats.GetDaily(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(items))
	}
}

func RegisterAdminRoutes(r gin.IRouter, deps RouteDeps) {
	r.POST("/transactions/scan", ApiScanTransactions(deps.Payments))
	r.GET("/projects", ApiListProjects(deps.Projects))
	r.GET("/subscriptions/:id", ApiGetSubscription(deps.Subscriptions))
	r.POST("/fulfillment/:transactionID/refulfill", ApiRefulfill(deps.Orchestrator))
	r.GET("/statistics/summary", ApiStatisticsSummary(deps.Stats))
	r.POST("/statistics/daily", ApiStatisticsDaily(deps.Stats))
}
