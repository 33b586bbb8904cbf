package external

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saasterkit/internal/types"
)

func newTestLemonSqueezyClient(t *testing.T, handler http.HandlerFunc) *LemonSqueezyClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewLemonSqueezyClient(server.Client(), LemonSqueezyClientConfig{
		APIKey:  "ls-api-key",
		BaseURL: server.URL,
	})
}

func TestLemonSqueezyClient_GetPrice_Success(t *testing.T) {
	client := newTestLemonSqueezyClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/prices/42", r.URL.Path)
		assert.Equal(t, "Bearer ls-api-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.api+json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/vnd.api+json")
		w.Write([]byte(`{"data":{"attributes":{"unit_price":1999,"unit_price_decimal":null}}}`))
	})

	price, err := client.GetPrice(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, price.UnitPrice)
	assert.Equal(t, int64(1999), *price.UnitPrice)
	assert.Nil(t, price.UnitPriceDecimal)
}

func TestLemonSqueezyClient_GetPrice_UsageBasedDecimal(t *testing.T) {
	client := newTestLemonSqueezyClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"attributes":{"unit_price":null,"unit_price_decimal":"0.05"}}}`))
	})

	price, err := client.GetPrice(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, price.UnitPrice)
	require.NotNil(t, price.UnitPriceDecimal)
	assert.Equal(t, "0.05", *price.UnitPriceDecimal)
}

func TestLemonSqueezyClient_GetPrice_NotFound(t *testing.T) {
	client := newTestLemonSqueezyClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"errors":[{"status":"404"}]}`))
	})

	price, err := client.GetPrice(context.Background(), 999)
	require.Error(t, err)
	assert.Nil(t, price)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeUpstreamBilling, appErr.Code)
}

func TestLemonSqueezyClient_GetPrice_ServerError(t *testing.T) {
	client := newTestLemonSqueezyClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.GetPrice(context.Background(), 1)
	require.Error(t, err)
}

func TestLemonSqueezyClient_DefaultBaseURL(t *testing.T) {
	client := NewLemonSqueezyClient(nil, LemonSqueezyClientConfig{APIKey: "k"})
	assert.Equal(t, lemonSqueezyAPIBase, client.baseURL)
}
