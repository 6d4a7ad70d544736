package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// HTTPChecker calls the inventory service over HTTP:
//
//	GET {baseURL}/v1/availability/{productId} -> {"available": bool}
type HTTPChecker struct {
	baseURL string
	client  *http.Client
}

// NewHTTPChecker builds a checker against the inventory base URL.
func NewHTTPChecker(baseURL string, timeout time.Duration) *HTTPChecker {
	return &HTTPChecker{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type availabilityResponse struct {
	Available bool `json:"available"`
}

// CheckAvailability implements Checker.
func (c *HTTPChecker) CheckAvailability(ctx context.Context, productID uuid.UUID) (bool, error) {
	endpoint, err := url.JoinPath(c.baseURL, "v1", "availability", productID.String())
	if err != nil {
		return false, fmt.Errorf("building availability url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("building availability request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("calling inventory service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("inventory service returned status %d", resp.StatusCode)
	}
	var body availabilityResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("decoding availability response: %w", err)
	}
	return body.Available, nil
}
