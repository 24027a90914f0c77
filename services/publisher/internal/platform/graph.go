package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/ratelimit"
)

const maxGraphBody = 1 << 20

// GraphError carries a Graph API error body verbatim.
type GraphError struct {
	StatusCode int
	Type       string
	Code       int
	Message    string
	Body       string
}

func (e *GraphError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("graph api returned status %d: %s", e.StatusCode, e.Body)
	}
	if e.Type != "" {
		return fmt.Sprintf("%s: %s (code %d, status %d)", e.Type, e.Message, e.Code, e.StatusCode)
	}
	return fmt.Sprintf("%s (code %d, status %d)", e.Message, e.Code, e.StatusCode)
}

type graphErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// GraphClient is a small Graph API client shared by the Instagram and Facebook publishers.
// All outbound calls go through one limiter.
type GraphClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    ratelimit.Limiter
}

func NewGraphClient(baseURL string, rps int, httpClient *http.Client) *GraphClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	limiter := ratelimit.NewUnlimited()
	if rps > 0 {
		limiter = ratelimit.New(rps)
	}
	return &GraphClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		limiter:    limiter,
	}
}

func (c *GraphClient) Get(ctx context.Context, path string, params url.Values, out interface{}) (string, error) {
	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(req, out)
}

func (c *GraphClient) PostForm(ctx context.Context, path string, params url.Values, out interface{}) (string, error) {
	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

// do returns the raw body alongside any error so callers can audit what the platform said.
func (c *GraphClient) do(req *http.Request, out interface{}) (string, error) {
	c.limiter.Take()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("graph request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxGraphBody))
	if err != nil {
		return "", fmt.Errorf("failed to read graph response: %w", err)
	}
	body := string(data)

	if resp.StatusCode >= 400 {
		graphErr := &GraphError{StatusCode: resp.StatusCode, Body: body}
		var parsed graphErrorBody
		if json.Unmarshal(data, &parsed) == nil {
			graphErr.Message = parsed.Error.Message
			graphErr.Type = parsed.Error.Type
			graphErr.Code = parsed.Error.Code
		}
		return body, graphErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return body, fmt.Errorf("failed to decode graph response: %w", err)
		}
	}
	return body, nil
}
