package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderStatusCompleted is the gateway-reported status a capture must carry
// to count as paid. Anything else is not a completed payment.
const OrderStatusCompleted = "COMPLETED"

const tokenExpirySkew = 60 * time.Second

type Options struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	// HTTPClient overrides the default client (tests point it at a fake server).
	HTTPClient *http.Client
}

// Client is a minimal PayPal Orders v2 REST client: client-credentials token
// with caching, order creation and synchronous capture.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	log          *zap.SugaredLogger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func New(opts Options, log *zap.SugaredLogger) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		httpClient:   hc,
		log:          log,
	}
}

type Amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type Capture struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Amount   Amount `json:"amount"`
	CustomID string `json:"custom_id,omitempty"`
}

type Payments struct {
	Captures []Capture `json:"captures,omitempty"`
}

type PurchaseUnit struct {
	ReferenceID string    `json:"reference_id,omitempty"`
	CustomID    string    `json:"custom_id,omitempty"`
	Description string    `json:"description,omitempty"`
	Amount      *Amount   `json:"amount,omitempty"`
	Payments    *Payments `json:"payments,omitempty"`
}

type PayerName struct {
	GivenName string `json:"given_name,omitempty"`
	Surname   string `json:"surname,omitempty"`
}

type Payer struct {
	EmailAddress string    `json:"email_address,omitempty"`
	Name         PayerName `json:"name,omitempty"`
}

type Order struct {
	ID            string         `json:"id"`
	Status        string         `json:"status"`
	PurchaseUnits []PurchaseUnit `json:"purchase_units,omitempty"`
	Payer         *Payer         `json:"payer,omitempty"`
}

type CreateOrderRequest struct {
	ReferenceID string
	CustomID    string
	Description string
	Amount      int64 // minor units
	Currency    string
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("paypal token request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("paypal token request returned %d: %s", resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("failed to decode paypal token response: %w", err)
	}
	c.accessToken = tr.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - tokenExpirySkew)
	return c.accessToken, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	tok, err := c.token(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("paypal %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("paypal %s %s returned %d: %s", method, path, resp.StatusCode, string(b))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode paypal response: %w", err)
	}
	return nil
}

// CreateOrder opens a CAPTURE-intent order for buyer approval.
func (c *Client) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*Order, error) {
	payload := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []PurchaseUnit{{
			ReferenceID: req.ReferenceID,
			CustomID:    req.CustomID,
			Description: req.Description,
			Amount: &Amount{
				CurrencyCode: req.Currency,
				Value:        FormatAmount(req.Amount),
			},
		}},
	}
	var order Order
	if err := c.doJSON(ctx, http.MethodPost, "/v2/checkout/orders", payload, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// CaptureOrder performs the synchronous capture after buyer approval.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*Order, error) {
	var order Order
	if err := c.doJSON(ctx, http.MethodPost, "/v2/checkout/orders/"+orderID+"/capture", nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrder fetches an order without side effects.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	var order Order
	if err := c.doJSON(ctx, http.MethodGet, "/v2/checkout/orders/"+orderID, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// FormatAmount renders minor units as the decimal string PayPal expects.
func FormatAmount(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}

// MinorUnits parses a PayPal decimal amount string into minor units.
func MinorUnits(value string) (int64, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return d.Shift(2).IntPart(), nil
}
