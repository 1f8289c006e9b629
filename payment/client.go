package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client creates orders on the payment gateway.
type Client interface {
	CreateOrder(ctx context.Context, req CheckoutRequest) (GatewayOrder, error)
}

// HTTPClient talks to the gateway's order API with key/secret basic
// auth, the gateway's server-side convention.
type HTTPClient struct {
	baseURL   string
	keyID     string
	keySecret string
	client    *http.Client
}

func NewHTTPClient(baseURL, keyID, keySecret string) *HTTPClient {
	return &HTTPClient{
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPClient) CreateOrder(ctx context.Context, checkout CheckoutRequest) (GatewayOrder, error) {
	body, err := json.Marshal(checkout)
	if err != nil {
		return GatewayOrder{}, err
	}

	url := fmt.Sprintf("%s/v1/orders", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return GatewayOrder{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.client.Do(req)
	if err != nil {
		return GatewayOrder{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return GatewayOrder{}, fmt.Errorf("payment gateway returned %d", resp.StatusCode)
	}

	var order GatewayOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return GatewayOrder{}, err
	}
	if order.ID == "" {
		return GatewayOrder{}, fmt.Errorf("payment gateway returned order without id")
	}
	return order, nil
}
