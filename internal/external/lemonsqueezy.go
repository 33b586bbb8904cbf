package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"saasterkit/internal/types"
)

// lemonSqueezyAPIBase is the default billing API base URL.
// Overridable in tests via LemonSqueezyClientConfig.BaseURL.
const lemonSqueezyAPIBase = "https://api.lemonsqueezy.com"

// PriceFetcher abstracts the billing provider's price endpoint. The
// reconciler depends on this interface rather than the concrete client.
type PriceFetcher interface {
	// GetPrice returns price data for the given price id.
	GetPrice(ctx context.Context, priceID int64) (*types.PriceInfo, error)
}

// LemonSqueezyClientConfig holds the configuration for creating a
// LemonSqueezyClient.
type LemonSqueezyClientConfig struct {
	APIKey  string
	BaseURL string // Override for testing; defaults to lemonSqueezyAPIBase
	Logger  *slog.Logger
}

// LemonSqueezyClient implements PriceFetcher by making direct HTTP calls to
// the billing provider's JSON:API through BaseClient, routing all requests
// through the circuit breaker and making testing with httptest
// straightforward.
type LemonSqueezyClient struct {
	base    *BaseClient
	apiKey  string
	baseURL string
	logger  *slog.Logger
}

// NewLemonSqueezyClient creates a new LemonSqueezyClient.
func NewLemonSqueezyClient(httpClient *http.Client, cfg LemonSqueezyClientConfig) *LemonSqueezyClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = lemonSqueezyAPIBase
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}

	return &LemonSqueezyClient{
		base:    NewBaseClient(httpClient, "lemonsqueezy", "SaasterKit/1.0"),
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// priceResponse mirrors the JSON:API envelope of GET /v1/prices/{id}.
type priceResponse struct {
	Data struct {
		Attributes types.PriceInfo `json:"attributes"`
	} `json:"data"`
}

// GetPrice fetches current price data for a subscription item's price id.
// A non-2xx response or transport failure returns an error; callers on the
// reconciliation path degrade it to a recorded processing error.
func (c *LemonSqueezyClient) GetPrice(ctx context.Context, priceID int64) (*types.PriceInfo, error) {
	url := fmt.Sprintf("%s/v1/prices/%d", c.baseURL, priceID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building price request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.api+json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.WarnContext(ctx, "price lookup rejected",
			"price_id", priceID,
			"status", resp.StatusCode,
			"body", string(body),
		)
		return nil, types.NewAppError(
			types.ErrCodeUpstreamBilling,
			fmt.Sprintf("price lookup returned %d", resp.StatusCode),
			nil,
		)
	}

	var out priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding price response: %w", err)
	}
	return &out.Data.Attributes, nil
}
