// Package verify talks to a siteverify-style human-verification authority.
package verify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"
)

// DefaultURL is the hCaptcha siteverify endpoint.
const DefaultURL = "https://api.hcaptcha.com/siteverify"

var (
	// ErrRejected means the authority answered and refused the proof.
	ErrRejected = errors.New("proof rejected")

	// ErrUnavailable covers transport failures, non-2xx answers and unparseable bodies.
	ErrUnavailable = errors.New("verification authority unavailable")

	// ErrNotConfigured is returned by Disabled.
	ErrNotConfigured = errors.New("verification is not configured")
)

// maxResponseBytes caps how much of the authority's answer is read.
const maxResponseBytes = 64 << 10

// Config configures a SiteVerifier.
type Config struct {
	URL     string
	Secret  string
	SiteKey string
	// RPS throttles outbound calls. Zero disables throttling.
	RPS   float64
	Burst int
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
	Hostname   string   `json:"hostname"`
}

// SiteVerifier posts proofs to the authority as a form and reads its JSON verdict.
type SiteVerifier struct {
	client  *http.Client
	url     string
	secret  string
	siteKey string
	limiter *rate.Limiter
}

// NewSiteVerifier builds a verifier. A nil client falls back to http.DefaultClient.
func NewSiteVerifier(cfg Config, client *http.Client) *SiteVerifier {
	if client == nil {
		client = http.DefaultClient
	}

	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), max(1, cfg.Burst))
	}

	return &SiteVerifier{
		client:  client,
		url:     cfg.URL,
		secret:  cfg.Secret,
		siteKey: cfg.SiteKey,
		limiter: limiter,
	}
}

// Verify returns nil only when the authority reports success.
func (v *SiteVerifier) Verify(ctx context.Context, proof, remoteIP string) error {
	if err := v.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: throttled: %w", ErrUnavailable, err)
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", proof)

	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	if v.siteKey != "" {
		form.Set("sitekey", v.siteKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var verdict siteverifyResponse
	if err = json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&verdict); err != nil {
		return fmt.Errorf("%w: decode: %w", ErrUnavailable, err)
	}

	if !verdict.Success {
		return fmt.Errorf("%w: %s", ErrRejected, strings.Join(verdict.ErrorCodes, ","))
	}

	return nil
}

// Disabled refuses every proof. It stands in when no secret is configured so gated links
// fail closed.
type Disabled struct{}

func (Disabled) Verify(context.Context, string, string) error {
	return ErrNotConfigured
}

// Func adapts a function to the verifier interface.
type Func func(ctx context.Context, proof, remoteIP string) error

func (f Func) Verify(ctx context.Context, proof, remoteIP string) error {
	return f(ctx, proof, remoteIP)
}
