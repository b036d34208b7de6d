package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	internal_errors "github.com/itchan-dev/nanashi/shared/errors"
	"github.com/itchan-dev/nanashi/shared/utils"
)

const defaultTimeout = 10 * time.Second

// APIClient struct handles all communication with the backend API.
type APIClient struct {
	BaseURL    string
	HttpClient *http.Client
}

// New creates a client for the api mounted at baseURL (including /v1).
func New(baseURL string) *APIClient {
	return &APIClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HttpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// do is the single helper for api requests. A non-empty clientIP is sent as
// X-Forwarded-For so the api attributes posts and rate limits to the visitor;
// the api believes it only from peers on its trusted_proxies.api list.
func (c *APIClient) do(ctx context.Context, method, path string, body any, clientIP string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create API request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if clientIP != "" {
		req.Header.Set("X-Forwarded-For", clientIP)
	}

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend unavailable: %w", err)
	}
	return resp, nil
}

// doJSON performs a request and decodes a response with the wanted status.
func (c *APIClient) doJSON(ctx context.Context, method, path string, body any, clientIP string, want int, out any) error {
	resp, err := c.do(ctx, method, path, body, clientIP)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return errorFromResponse(resp)
	}
	if err := utils.Decode(resp.Body, out); err != nil {
		return fmt.Errorf("cannot decode %s %s response: %w", method, path, err)
	}
	return nil
}

// errorFromResponse turns an api error body (plain text from http.Error)
// back into the shared error kinds so handlers can use errors.Is.
func errorFromResponse(resp *http.Response) error {
	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(bodyBytes))
	if msg == "" {
		msg = fmt.Sprintf("backend returned status %d", resp.StatusCode)
	}

	var kind error
	switch resp.StatusCode {
	case http.StatusNotFound:
		kind = internal_errors.ErrNotFound
	case http.StatusConflict:
		kind = internal_errors.ErrCapacityExceeded
	case http.StatusTooManyRequests:
		kind = internal_errors.ErrRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = internal_errors.ErrUnauthorized
	}
	return &internal_errors.ErrorWithStatusCode{Message: msg, StatusCode: resp.StatusCode, Kind: kind}
}
