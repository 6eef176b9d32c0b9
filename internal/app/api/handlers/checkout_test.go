package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lumenworks/storefront/pkg/config"
	"github.com/lumenworks/storefront/pkg/response"
	"github.com/lumenworks/storefront/pkg/types"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func checkoutEngine(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// selector is only reached after validation passes; these tests stop earlier
	r.POST("/checkout", ApiCheckout(cfg, nil))
	return r
}

func postCheckout(t *testing.T, r *gin.Engine, body string) *response.APIResponse[json.RawMessage] {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var out response.APIResponse[json.RawMessage]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return &out
}

func TestCheckoutRejectsNeitherServicesNorPlan(t *testing.T) {
	r := checkoutEngine(&config.Config{})
	out := postCheckout(t, r, `{"customer_email": "buyer@example.com"}`)
	require.Equal(t, response.APIResponseCodeBadRequest, out.Code)
}

func TestCheckoutRejectsBothServicesAndPlan(t *testing.T) {
	r := checkoutEngine(&config.Config{})
	out := postCheckout(t, r, `{
		"customer_email": "buyer@example.com",
		"selected_services": ["logo-design"],
		"subscription_plan_id": "retainer"
	}`)
	require.Equal(t, response.APIResponseCodeBadRequest, out.Code)
}

func TestCheckoutRejectsUnknownService(t *testing.T) {
	r := checkoutEngine(&config.Config{
		Deliverables: []*types.Deliverable{{ID: "logo-design", Name: "Logo Design", Price: 50000, Currency: "USD"}},
	})
	out := postCheckout(t, r, `{
		"customer_email": "buyer@example.com",
		"selected_services": ["nonexistent"]
	}`)
	require.Equal(t, response.APIResponseCodeBadRequest, out.Code)
}

func TestCheckoutRejectsMixedCurrencies(t *testing.T) {
	r := checkoutEngine(&config.Config{
		Deliverables: []*types.Deliverable{
			{ID: "logo-design", Name: "Logo Design", Price: 50000, Currency: "USD"},
			{ID: "brand-kit", Name: "Brand Kit", Price: 15000, Currency: "EUR"},
		},
	})
	out := postCheckout(t, r, `{
		"customer_email": "buyer@example.com",
		"selected_services": ["logo-design", "brand-kit"]
	}`)
	require.Equal(t, response.APIResponseCodeBadRequest, out.Code)
}

func TestCheckoutRejectsUnknownPlan(t *testing.T) {
	r := checkoutEngine(&config.Config{})
	out := postCheckout(t, r, `{
		"customer_email": "buyer@example.com",
		"subscription_plan_id": "nonexistent"
	}`)
	require.Equal(t, response.APIResponseCodeBadRequest, out.Code)
}
