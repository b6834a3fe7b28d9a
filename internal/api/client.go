package api

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/colthorp/holidate/internal/core"
	"github.com/colthorp/holidate/internal/logging"
)

// maxErrorBody caps how much of an error response ends up in APIError.Message.
const maxErrorBody = 512

// Client is the HTTP wrapper around the Nager.Date REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient creates a new API client. An empty baseURL selects the public
// API and a zero timeout selects core.DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration, logger *logging.Logger) *Client {
	if baseURL == "" {
		baseURL = core.APIBaseURL
	}
	if timeout <= 0 {
		timeout = core.DefaultTimeout * time.Second
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Client{
		baseURL: fmt.Sprintf("%s/api/%s", strings.TrimRight(baseURL, "/"), core.APIVersion),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.WithComponent("api"),
	}
}

// Request performs a single GET request and returns the response body.
// There are no retries: a failed request is reported to the caller, which
// decides whether cached data can stand in.
func (c *Client) Request(endpoint string) ([]byte, error) {
	urlStr := fmt.Sprintf("%s/%s", c.baseURL, strings.TrimLeft(endpoint, "/"))

	c.logger.Debug().Str("url", urlStr).Msg("GET")

	req, err := http.NewRequest(http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "holidate/"+core.Version)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug().
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := string(body)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	return body, nil
}

// BaseURL returns the versioned API root this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}
