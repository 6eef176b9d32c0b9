package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Options struct {
	BaseURL     string
	APIToken    string
	FromAddress string
	HTTPClient  *http.Client
}

// Client sends transactional mail through the external mail collaborator.
type Client struct {
	baseURL     string
	apiToken    string
	fromAddress string
	httpClient  *http.Client
	log         *zap.SugaredLogger
}

func New(opts Options, log *zap.SugaredLogger) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		apiToken:    opts.APIToken,
		fromAddress: opts.FromAddress,
		httpClient:  hc,
		log:         log,
	}
}

type sendRequest struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	TextBody string `json:"text_body"`
}

// SendInvite mails the buyer their workspace links after provisioning.
func (c *Client) SendInvite(ctx context.Context, email, name, trackerURL, chatURL string) error {
	text := fmt.Sprintf(
		"Hi %s,\n\nYour project workspace is ready.\n\nIssue tracker: %s\nChat channel: %s\n",
		name, trackerURL, chatURL,
	)
	body, err := json.Marshal(sendRequest{
		From:     c.fromAddress,
		To:       email,
		Subject:  "Your project workspace is ready",
		TextBody: text,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/send", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mailer send failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mailer send returned %d: %s", resp.StatusCode, string(b))
	}
	return nil
}
