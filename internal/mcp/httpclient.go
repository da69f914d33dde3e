package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/meltforce/liftplan/internal/history"
	"github.com/meltforce/liftplan/internal/progression"
)

// HTTPClient implements DataSource by calling the liftplan REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// saved programs live on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("httpclient: %s: %w", path, history.ErrNotFound)
	case resp.StatusCode == http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", progression.ErrBadConfig, errorText(data))
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, errorText(data))
	}
	return data, nil
}

// errorText extracts the message of a {"error": "..."} body.
func errorText(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}

func (c *HTTPClient) Save(ctx context.Context, _ int, cfg progression.Config) (*Generated, error) {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("httpclient: encode config: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, "/api/v1/programs/"+string(cfg.Program())+"?save=true", payload)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Program progression.Program `json:"program"`
		Config  json.RawMessage     `json:"config"`
		Result  json.RawMessage     `json:"result"`
		Entry   *history.Entry      `json:"entry"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode program: %w", err)
	}
	saved, err := progression.DecodeConfig(resp.Program, resp.Config)
	if err != nil {
		return nil, fmt.Errorf("httpclient: decode program config: %w", err)
	}
	return &Generated{Program: resp.Program, Config: saved, Result: resp.Result, Entry: resp.Entry}, nil
}

func (c *HTTPClient) History(ctx context.Context, _ int) ([]history.Entry, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/history", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Entries []history.Entry `json:"entries"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode history: %w", err)
	}
	return resp.Entries, nil
}

func (c *HTTPClient) Latest(ctx context.Context, _ int, p progression.Program) (*history.SavedProgram, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/programs/"+string(p)+"/latest", nil)
	if err != nil {
		return nil, err
	}

	var saved history.SavedProgram
	if err := json.Unmarshal(body, &saved); err != nil {
		return nil, fmt.Errorf("httpclient: decode saved program: %w", err)
	}
	return &saved, nil
}
