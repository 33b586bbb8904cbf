// Package external provides the anti-corruption layer between SaasterKit
// domain logic and third-party vendor APIs. All outbound HTTP calls are
// routed through the BaseClient, which enforces consistent resilience
// patterns: circuit breaking, trace propagation, and error mapping.
//
// The BaseClient deliberately does NOT retry failed calls. A failed
// outbound call either degrades to a recorded processing error (billing
// reconciliation) or propagates as an HTTP error; redelivery is the
// provider's job.
package external

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker/v2"

	"saasterkit/internal/types"
)

// BaseClient wraps an *http.Client and a circuit breaker to enforce
// consistent failure isolation on all outbound HTTP calls. Provider
// clients embed BaseClient to inherit this behavior.
type BaseClient struct {
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker[*http.Response]
	userAgent string
}

// NewBaseClient creates a BaseClient with the given http client, circuit
// breaker name, and user agent string.
func NewBaseClient(httpClient *http.Client, breakerName string, userAgent string) *BaseClient {
	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
	})

	return &BaseClient{
		client:    httpClient,
		breaker:   cb,
		userAgent: userAgent,
	}
}

// Do executes the HTTP request with:
//  1. User-Agent header injection
//  2. Circuit breaker wrapping
//  3. Error mapping to types.AppError (transport failures and 5xx map to
//     upstream_billing_unavailable)
//
// On 2xx-4xx (other than 5xx), Do returns the response as-is. The caller
// is responsible for closing the response body.
func (c *BaseClient) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			return nil, fmt.Errorf("upstream returned %d", resp.StatusCode)
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, types.NewAppError(
				types.ErrCodeUpstreamBilling,
				"upstream circuit open",
				err,
			)
		}
		return nil, types.NewAppError(
			types.ErrCodeUpstreamBilling,
			"upstream request failed",
			err,
		)
	}

	return resp, nil
}
