// Package license verifies Gumroad license keys. Only a boolean outcome
// leaves this package: keys are checked per activation and never stored.
package license

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"freightsnap/internal/config"
	"freightsnap/internal/domain"
)

// GumroadClient verifies license keys against the Gumroad licenses API.
type GumroadClient struct {
	endpoint         string
	productPermalink string
	client           *http.Client
}

// NewGumroadClient creates a client from configuration.
func NewGumroadClient(cfg config.LicenseConfig) *GumroadClient {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &GumroadClient{
		endpoint:         cfg.Endpoint,
		productPermalink: cfg.ProductPermalink,
		client:           &http.Client{Timeout: timeout},
	}
}

// verifyResponse mirrors the fields of the Gumroad verify reply that the
// purchase-state checks need.
type verifyResponse struct {
	Success  bool `json:"success"`
	Uses     int  `json:"uses"`
	Purchase struct {
		Refunded                bool    `json:"refunded"`
		Chargebacked            bool    `json:"chargebacked"`
		SubscriptionCancelledAt *string `json:"subscription_cancelled_at"`
		SubscriptionFailedAt    *string `json:"subscription_failed_at"`
		SubscriptionEndedAt     *string `json:"subscription_ended_at"`
	} `json:"purchase"`
}

// Verify checks a license key and returns its use count. A key is valid
// only when Gumroad reports success and the purchase is neither refunded,
// charged back, nor attached to a lapsed subscription.
func (g *GumroadClient) Verify(ctx context.Context, licenseKey string) (int, error) {
	if strings.TrimSpace(licenseKey) == "" {
		return 0, domain.ErrInvalidLicense
	}

	form := url.Values{}
	form.Set("product_permalink", g.productPermalink)
	form.Set("license_key", licenseKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, fmt.Errorf("build license request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("license verification request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("read license response: %w", err)
	}

	// Gumroad answers 404 for unknown keys; treat it as an invalid key
	// rather than a transport failure.
	if resp.StatusCode == http.StatusNotFound {
		return 0, domain.ErrInvalidLicense
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("license verification returned status %d", resp.StatusCode)
	}

	var vr verifyResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		return 0, fmt.Errorf("decode license response: %w", err)
	}

	if !vr.Success {
		return 0, domain.ErrInvalidLicense
	}
	p := vr.Purchase
	if p.Refunded || p.Chargebacked {
		return 0, domain.ErrInvalidLicense
	}
	if p.SubscriptionCancelledAt != nil || p.SubscriptionFailedAt != nil || p.SubscriptionEndedAt != nil {
		return 0, domain.ErrInvalidLicense
	}

	return vr.Uses, nil
}
