package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spec-kit/org-service/internal/domain"
)

// OrderState is the gateway's view of an order.
type OrderState struct {
	No            string              `json:"no"`
	OrderStatus   *domain.OrderStatus `json:"orderStatus"`
	PaymentStatus *string             `json:"paymentStatus"`
	IsExpired     *bool               `json:"isExpired"`
}

// Gateway is the payment gateway contract used by the reconciliation loop.
// GetOrder returns (nil, nil) when the gateway does not know the order.
type Gateway interface {
	GetOrder(ctx context.Context, no string) (*OrderState, error)
}

// HTTPGateway talks to the remote payment gateway's order channel.
type HTTPGateway struct {
	baseURL string
	http    *http.Client
}

// NewHTTPGateway builds a gateway client.
func NewHTTPGateway(baseURL string) *HTTPGateway {
	return &HTTPGateway{baseURL: baseURL, http: http.DefaultClient}
}

// GetOrder fetches the order state by its gateway number.
func (g *HTTPGateway) GetOrder(ctx context.Context, no string) (*OrderState, error) {
	endpoint := g.baseURL + "/order/" + url.PathEscape(no)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	var state OrderState
	if err := json.Unmarshal(body, &state); err != nil {
		return nil, fmt.Errorf("decode order state: %w", err)
	}
	return &state, nil
}
