package billing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-inventory-cloud/internal/apperr"
)

// Provider creates checkout and customer-portal sessions against the
// payment provider's HTTP API and returns the redirect URL.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, customerID string, orgID uuid.UUID, priceID, returnURL string) (string, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
}

type httpProvider struct {
	baseURL   string
	secretKey string
	httpc     *http.Client
}

type ProviderOption func(*httpProvider)

// WithBaseURL overrides the provider API URL (used by tests).
func WithBaseURL(u string) ProviderOption {
	return func(p *httpProvider) { p.baseURL = u }
}

func NewProvider(secretKey string, opts ...ProviderOption) Provider {
	p := &httpProvider{
		baseURL:   "https://api.stripe.com",
		secretKey: secretKey,
		httpc:     &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type sessionResponse struct {
	URL   string `json:"url"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *httpProvider) CreateCheckoutSession(ctx context.Context, customerID string, orgID uuid.UUID, priceID, returnURL string) (string, error) {
	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("line_items[0][price]", priceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", returnURL)
	form.Set("cancel_url", returnURL)
	form.Set("subscription_data[metadata][organization_id]", orgID.String())
	if customerID != "" {
		form.Set("customer", customerID)
	}

	return p.post(ctx, "/v1/checkout/sessions", form)
}

func (p *httpProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	form := url.Values{}
	form.Set("customer", customerID)
	form.Set("return_url", returnURL)

	return p.post(ctx, "/v1/billing_portal/sessions", form)
}

func (p *httpProvider) post(ctx context.Context, path string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpc.Do(req)
	if err != nil {
		return "", apperr.Wrap(apperr.KindUpstream, "payment provider unreachable", err)
	}
	defer resp.Body.Close()

	var body sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", apperr.Wrap(apperr.KindUpstream, "unexpected payment provider response", err)
	}

	if resp.StatusCode != http.StatusOK || body.URL == "" {
		msg := body.Error.Message
		if msg == "" {
			msg = "payment provider request failed"
		}
		return "", apperr.New(apperr.KindUpstream, msg)
	}

	return body.URL, nil
}
