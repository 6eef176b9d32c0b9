package chat

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
	BaseURL    string
	APIToken   string
	HTTPClient *http.Client
}

// Client provisions chat channels on the external chat collaborator.
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
	log        *zap.SugaredLogger
}

func New(opts Options, log *zap.SugaredLogger) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiToken:   opts.APIToken,
		httpClient: hc,
		log:        log,
	}
}

type createChannelRequest struct {
	Name string `json:"name"`
}

type createChannelResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// CreateChannel creates a channel and returns its URL. Name collisions are
// treated as success: the channel was provisioned by an earlier run.
func (c *Client) CreateChannel(ctx context.Context, name string) (string, error) {
	body, err := json.Marshal(createChannelRequest{Name: name})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/channels", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat create channel failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusConflict:
		return c.ChannelURL(name), nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("chat create channel returned %d: %s", resp.StatusCode, string(b))
	}

	var out createChannelResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if out.URL != "" {
		return out.URL, nil
	}
	return c.ChannelURL(name), nil
}

// ChannelURL is the deterministic URL for a channel name.
func (c *Client) ChannelURL(name string) string {
	return c.baseURL + "/channels/" + name
}
