package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSessionRequest() *SessionRequest {
	return &SessionRequest{
		AmountMinor:    42000,
		Currency:       "sek",
		PaymentMethods: []string{"klarna", "card"},
		SuccessURL:     "https://shop.example/success",
		CancelURL:      "https://shop.example/cancel",
		LineItem:       LineItem{Name: "Flower order", AmountMinor: 42000, Quantity: 1},
	}
}

func TestClient_CreateSession_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req SessionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(42000), req.AmountMinor)
		assert.Equal(t, []string{"klarna", "card"}, req.PaymentMethods)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "cs_live_1", "url": "https://pay.example/cs_live_1"}`))
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{
		BaseURL:   server.URL,
		SecretKey: "sk_test_123",
	}, zerolog.Nop())
	require.NoError(t, err)

	session, err := client.CreateSession(context.Background(), testSessionRequest())

	require.NoError(t, err)
	assert.Equal(t, "cs_live_1", session.ID)
	assert.Equal(t, "https://pay.example/cs_live_1", session.URL)
}

func TestClient_CreateSession_ProviderRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("payment method not available in this region"))
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{BaseURL: server.URL, SecretKey: "sk"}, zerolog.Nop())
	require.NoError(t, err)

	session, err := client.CreateSession(context.Background(), testSessionRequest())

	assert.Nil(t, session)
	var providerErr *ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, http.StatusBadRequest, providerErr.Status)
	assert.Contains(t, providerErr.Body, "not available")
	assert.False(t, IsTimeout(err))
}

func TestClient_CreateSession_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(`{"id": "cs", "url": "u"}`))
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{
		BaseURL:   server.URL,
		SecretKey: "sk",
		Timeout:   50 * time.Millisecond,
	}, zerolog.Nop())
	require.NoError(t, err)

	session, err := client.CreateSession(context.Background(), testSessionRequest())

	assert.Nil(t, session)
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
}

func TestClient_CreateSession_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": ""}`))
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{BaseURL: server.URL, SecretKey: "sk"}, zerolog.Nop())
	require.NoError(t, err)

	session, err := client.CreateSession(context.Background(), testSessionRequest())

	assert.Nil(t, session)
	assert.Error(t, err)
}

func TestNewClient_RequiresConfig(t *testing.T) {
	_, err := NewClient(ClientConfig{}, zerolog.Nop())
	assert.Error(t, err)

	_, err = NewClient(ClientConfig{BaseURL: "https://api.example"}, zerolog.Nop())
	assert.Error(t, err)
}
