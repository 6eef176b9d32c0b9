package tracker

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

// Client talks to the external issue tracker. The tracker is an opaque REST
// service: project creation is best-effort and callers decide what a failure
// means for their workflow.
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

type createProjectRequest struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type createProjectResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// CreateProject creates a tracker project under the given key and returns its
// browse URL. Creating an already-existing key is treated as success so saga
// re-runs stay idempotent.
func (c *Client) CreateProject(ctx context.Context, key, name string) (string, error) {
	body, err := json.Marshal(createProjectRequest{Key: key, Name: name})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/projects", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("tracker create project failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusConflict:
		// already provisioned on a previous run
		return c.ProjectURL(key), nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("tracker create project returned %d: %s", resp.StatusCode, string(b))
	}

	var out createProjectResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode tracker response: %w", err)
	}
	if out.URL != "" {
		return out.URL, nil
	}
	return c.ProjectURL(key), nil
}

// ProjectURL is the deterministic browse URL for a project key.
func (c *Client) ProjectURL(key string) string {
	return c.baseURL + "/projects/" + key
}
