package everify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"idverify/pkg/platform/sentinel"
)

const (
	checkPath   = "/api/pub/qr/check"
	profilePath = "/api/pub/qr/egov_ph"
)

// Client talks to the public eVerify registry.
type Client struct {
	base string
	http *http.Client
	log  *slog.Logger
}

func NewClient(base string, log *slog.Logger) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 15 * time.Second},
		log:  log,
	}
}

// Check submits a scanned token to the registry's check endpoint. The body
// is decoded into a generic map because its shape varies by payload type;
// the HTTP status is returned alongside so callers can distinguish upstream
// rejection from transport failure.
func (c *Client) Check(ctx context.Context, value string) (map[string]any, int, error) {
	body, err := json.Marshal(map[string]string{"value": strings.TrimSpace(value)})
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+checkPath, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("everify check: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("everify check response: %w", sentinel.ErrUnavailable)
	}
	return raw, resp.StatusCode, nil
}

// Profile fetches the consent-gated eGovPH profile for a tracking number.
func (c *Client) Profile(ctx context.Context, tracking string) (map[string]any, int, error) {
	u := c.base + profilePath + "?tracking_number=" + url.QueryEscape(tracking)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("everify profile: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("everify profile response: %w", sentinel.ErrUnavailable)
	}
	return raw, resp.StatusCode, nil
}
