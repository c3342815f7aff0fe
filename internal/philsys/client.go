package philsys

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"idverify/internal/credential"
	"idverify/internal/philsys/session"
	"idverify/internal/platform/metrics"
	"idverify/pkg/platform/sentinel"
)

// The portal rejects requests that do not look like a mobile browser, so
// the bootstrap mirrors the publicly observed header set.
const defaultUserAgent = "Mozilla/5.0 (Linux; Android 10; Mobile) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"

// Client talks to the PhilSys verification portal: it bootstraps the session
// cookie the portal requires and submits canonical credentials for an
// activation/revocation verdict.
type Client struct {
	http    *http.Client
	log     *slog.Logger
	metrics *metrics.Metrics

	verifyURL    string
	apiURL       string
	staticCookie string
	cache        session.Cache
}

// Options configures a Client. StaticCookie, when set by the operator,
// bypasses bootstrapping entirely.
type Options struct {
	VerifyURL    string
	APIURL       string
	StaticCookie string
	Cache        session.Cache
	Metrics      *metrics.Metrics
}

func NewClient(opts Options, log *slog.Logger) *Client {
	return &Client{
		http:         &http.Client{Timeout: 20 * time.Second},
		log:          log,
		metrics:      opts.Metrics,
		verifyURL:    opts.VerifyURL,
		apiURL:       opts.APIURL,
		staticCookie: strings.TrimSpace(opts.StaticCookie),
		cache:        opts.Cache,
	}
}

// cookie resolves the session cookie: operator override first, then the
// cache, then a fresh bootstrap. An empty return means the online check
// proceeds cookie-less and lets the upstream decide.
func (c *Client) cookie(ctx context.Context) string {
	if c.staticCookie != "" {
		return c.staticCookie
	}
	if value, ok := c.cache.Get(ctx); ok {
		return value
	}

	var value string
	bootstrap := func() error {
		v, err := c.bootstrap(ctx)
		if err != nil {
			return err
		}
		value = v
		return nil
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(bootstrap, policy); err != nil {
		c.metrics.ObserveCookieBootstrap("fail")
		c.log.WarnContext(ctx, "cookie bootstrap failed", "error", err)
		return ""
	}
	c.metrics.ObserveCookieBootstrap("ok")
	return value
}

// bootstrap performs the portal GET that yields Set-Cookie headers and
// caches the joined name=value pairs.
func (c *Client) bootstrap(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.verifyURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("portal bootstrap: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("portal bootstrap status %d: %w", resp.StatusCode, sentinel.ErrUnavailable)
	}

	value := buildCookieString(resp.Header.Values("Set-Cookie"))
	if value == "" {
		return "", fmt.Errorf("portal sent no cookies: %w", sentinel.ErrUnavailable)
	}

	c.cache.Set(ctx, value)
	return value, nil
}

// buildCookieString strips cookie attributes and joins the name=value pairs
// into a Cookie header value.
func buildCookieString(setCookies []string) string {
	parts := make([]string, 0, len(setCookies))
	for _, raw := range setCookies {
		pair := strings.TrimSpace(strings.SplitN(raw, ";", 2)[0])
		if pair != "" {
			parts = append(parts, pair)
		}
	}
	return strings.Join(parts, "; ")
}

// VerifyOnline posts the canonical credential to the registry and returns
// the upstream HTTP status. A 2xx means the credential is activated;
// anything else means revoked. Transport failures surface as an error with
// status 0.
func (c *Client) VerifyOnline(ctx context.Context, cred *credential.Credential) (int, error) {
	body, err := json.Marshal(cred)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Referer", c.verifyURL)
	req.Header.Set("User-Agent", defaultUserAgent)
	if cookie := c.cookie(ctx); cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.ObserveOnlineCheck(time.Since(start))
	if err != nil {
		return 0, fmt.Errorf("online verification: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	// The portal rotates its verify token on every call; keep the cache warm.
	if refreshed := buildCookieString(resp.Header.Values("Set-Cookie")); refreshed != "" && c.staticCookie == "" {
		c.cache.Set(ctx, refreshed)
	}

	return resp.StatusCode, nil
}
