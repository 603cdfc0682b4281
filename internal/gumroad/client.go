// Package gumroad implements the remote license verifier.
package gumroad

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/calmmom/calmmom/internal/domain"
)

// Verification is the normalized outcome of a license check. A refunded or
// chargebacked purchase is reported as invalid even when the vendor's own
// success flag is true.
type Verification struct {
	Valid    bool
	Refunded bool
	Purchase *domain.Purchase
}

// Client verifies license keys against the licensing vendor with a
// server-held product identifier.
type Client struct {
	baseURL    string
	productID  string
	httpClient *http.Client
}

// New creates a verifier client.
func New(baseURL, productID string) *Client {
	return &Client{
		baseURL:    baseURL,
		productID:  productID,
		httpClient: &http.Client{},
	}
}

type verifyResponse struct {
	Success  bool `json:"success"`
	Purchase *struct {
		Email         string `json:"email"`
		SaleTimestamp string `json:"sale_timestamp"`
		Refunded      bool   `json:"refunded"`
		Chargebacked  bool   `json:"chargebacked"`
	} `json:"purchase"`
}

// Verify checks a license key with the vendor. A network or vendor-side
// failure is returned as an error; an invalid key is a nil error with
// Valid=false.
func (c *Client) Verify(ctx context.Context, licenseKey string) (*Verification, error) {
	form := url.Values{}
	form.Set("product_id", c.productID)
	form.Set("license_key", licenseKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v2/licenses/verify", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call license API: %w", err)
	}
	defer resp.Body.Close()

	var parsed verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode verify response: %w", err)
	}

	if !parsed.Success || parsed.Purchase == nil {
		return &Verification{}, nil
	}
	if parsed.Purchase.Refunded || parsed.Purchase.Chargebacked {
		return &Verification{Refunded: true}, nil
	}
	return &Verification{
		Valid: true,
		Purchase: &domain.Purchase{
			Email:         parsed.Purchase.Email,
			SaleTimestamp: parsed.Purchase.SaleTimestamp,
		},
	}, nil
}
