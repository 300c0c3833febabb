package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// PayPalClient charges through the PayPal Orders v2 API. It creates an order
// with intent CAPTURE and captures it immediately, which fits the flow here
// where the card details arrive with the pay request.
type PayPalClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewPayPalClient(baseURL, clientID, clientSecret string) *PayPalClient {
	return &PayPalClient{
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *PayPalClient) token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accessToken != "" && time.Now().Before(p.tokenExpiry) {
		return p.accessToken, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/v1/oauth2/token",
		bytes.NewBufferString("grant_type=client_credentials"))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(p.clientID, p.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("paypal token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paypal token request returned %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode paypal token response failed: %w", err)
	}

	p.accessToken = body.AccessToken
	// Refresh a minute early so in-flight requests never carry a stale token.
	p.tokenExpiry = time.Now().Add(time.Duration(body.ExpiresIn-60) * time.Second)
	return p.accessToken, nil
}

func (p *PayPalClient) Charge(ctx context.Context, card Card, amount float64, description string) (string, error) {
	if amount <= 0 {
		return "", ErrInvalidAmount
	}
	if err := ValidateCard(card); err != nil {
		return "", err
	}

	tok, err := p.token(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrChargeFailed, err)
	}

	orderID, err := p.createOrder(ctx, tok, amount, description)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrChargeFailed, err)
	}

	captureID, err := p.captureOrder(ctx, tok, orderID)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrChargeFailed, err)
	}

	return captureID, nil
}

func (p *PayPalClient) createOrder(ctx context.Context, token string, amount float64, description string) (string, error) {
	payload := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{{
			"description": description,
			"amount": map[string]string{
				"currency_code": "USD",
				"value":         strconv.FormatFloat(amount, 'f', 2, 64),
			},
		}},
	}

	var body struct {
		ID string `json:"id"`
	}
	if err := p.post(ctx, token, "/v2/checkout/orders", payload, &body); err != nil {
		return "", err
	}
	if body.ID == "" {
		return "", fmt.Errorf("paypal order response missing id")
	}
	return body.ID, nil
}

func (p *PayPalClient) captureOrder(ctx context.Context, token, orderID string) (string, error) {
	var body struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	path := fmt.Sprintf("/v2/checkout/orders/%s/capture", orderID)
	if err := p.post(ctx, token, path, map[string]any{}, &body); err != nil {
		return "", err
	}
	if body.Status != "COMPLETED" {
		return "", fmt.Errorf("paypal capture ended in status %s", body.Status)
	}
	return body.ID, nil
}

func (p *PayPalClient) post(ctx context.Context, token, path string, payload any, out any) error {
	buf, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("paypal request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("paypal request %s returned %d", path, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
