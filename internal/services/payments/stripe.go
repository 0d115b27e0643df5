// Package payments talks to Stripe's REST API for subscription checkout and
// webhook verification. Only the small slice of the API this service needs is
// covered; everything else about billing lives on Stripe's side.
package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pivot2ai/jobplans/internal/config"
)

const stripeAPIBase = "https://api.stripe.com/v1"

// Event is the decoded slice of a webhook payload the service cares about.
type Event struct {
	Type          string
	CustomerEmail string
}

// Client is a minimal Stripe API client.
type Client struct {
	secretKey     string
	priceID       string
	webhookSecret string
	httpClient    *http.Client
}

// NewClient creates a Stripe client from configuration. Returns an error when
// the secret key or price id is missing so the caller can run without
// payments instead of failing requests later.
func NewClient(cfg config.PaymentsConfig) (*Client, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY is not configured")
	}
	if cfg.PriceID == "" {
		return nil, fmt.Errorf("STRIPE_SUBSCRIPTION_PRICE_ID is not configured")
	}
	return &Client{
		secretKey:     cfg.SecretKey,
		priceID:       cfg.PriceID,
		webhookSecret: cfg.WebhookSecret,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// CreateCheckoutSession opens a subscription checkout session and returns the
// hosted payment page URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, successURL, cancelURL string) (string, error) {
	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][price]", c.priceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)
	form.Set("allow_promotion_codes", "true")
	form.Set("billing_address_collection", "required")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, stripeAPIBase+"/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build checkout request: %w", err)
	}
	req.SetBasicAuth(c.secretKey, "")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read checkout response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("stripe returned %d: %s", resp.StatusCode, body)
	}

	var session struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &session); err != nil {
		return "", fmt.Errorf("decode checkout response: %w", err)
	}
	if session.URL == "" {
		return "", fmt.Errorf("stripe returned no checkout URL")
	}
	return session.URL, nil
}

// VerifyWebhook checks the Stripe-Signature header against the webhook
// secret and decodes the event. Signature scheme: the header carries
// t=<unix>,v1=<hex hmac-sha256 of "<t>.<payload>">.
func (c *Client) VerifyWebhook(payload []byte, signature string) (*Event, error) {
	if c.webhookSecret == "" {
		return nil, fmt.Errorf("STRIPE_WEBHOOK_SECRET is not configured")
	}

	var timestamp string
	var candidates []string
	for _, part := range strings.Split(signature, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			candidates = append(candidates, kv[1])
		}
	}
	if timestamp == "" || len(candidates) == 0 {
		return nil, fmt.Errorf("malformed signature header")
	}

	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	valid := false
	for _, cand := range candidates {
		if hmac.Equal([]byte(expected), []byte(cand)) {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("signature mismatch")
	}

	var event struct {
		Type string `json:"type"`
		Data struct {
			Object struct {
				CustomerDetails struct {
					Email string `json:"email"`
				} `json:"customer_details"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("decode webhook event: %w", err)
	}

	return &Event{
		Type:          event.Type,
		CustomerEmail: event.Data.Object.CustomerDetails.Email,
	}, nil
}
