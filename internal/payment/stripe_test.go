package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePaymentIntent(t *testing.T) {
	var gotForm map[string][]string
	var gotIdempotencyKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		gotIdempotencyKey = r.Header.Get("Idempotency-Key")

		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"pi_123","client_secret":"pi_123_secret_abc"}`))
	}))
	defer srv.Close()

	client := NewStripeClient(srv.URL, "sk_test_123")

	intent, err := client.CreatePaymentIntent(context.Background(), CreateIntentParams{
		AmountMinor: 556,
		Currency:    "eur",
		Metadata: map[string]string{
			"userId":   "buyer-1",
			"sellerId": "seller-1",
		},
		IdempotencyKey: "key-1",
	})

	require.NoError(t, err)
	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "pi_123_secret_abc", intent.ClientSecret)
	assert.Equal(t, "556", gotForm["amount"][0])
	assert.Equal(t, "eur", gotForm["currency"][0])
	assert.Equal(t, "buyer-1", gotForm["metadata[userId]"][0])
	assert.Equal(t, "seller-1", gotForm["metadata[sellerId]"][0])
	assert.Equal(t, "key-1", gotIdempotencyKey)
}

func TestCreatePaymentIntent_NoIdempotencyHeaderWhenKeyEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Idempotency-Key"))
		w.Write([]byte(`{"id":"pi_1","client_secret":"cs"}`))
	}))
	defer srv.Close()

	client := NewStripeClient(srv.URL, "sk_test_123")

	_, err := client.CreatePaymentIntent(context.Background(), CreateIntentParams{
		AmountMinor: 100,
		Currency:    "eur",
	})
	require.NoError(t, err)
}

func TestCreateCheckoutSession(t *testing.T) {
	var gotForm map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm

		w.Write([]byte(`{"id":"cs_123","url":"https://checkout.example/cs_123"}`))
	}))
	defer srv.Close()

	client := NewStripeClient(srv.URL, "sk_test_123")

	session, err := client.CreateCheckoutSession(context.Background(), CreateSessionParams{
		LineItems: []LineItem{
			{Name: "Sneakers", UnitAmountMinor: 2500, Quantity: 2, Currency: "eur"},
		},
		SuccessURL: "https://shop.example/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  "https://shop.example/cancel",
		Metadata: map[string]string{
			"orderId":  "order-1",
			"sellerId": "seller-1",
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "cs_123", session.ID)
	assert.Equal(t, "https://checkout.example/cs_123", session.URL)

	assert.Equal(t, "payment", gotForm["mode"][0])
	assert.Equal(t, "card", gotForm["payment_method_types[0]"][0])
	assert.Equal(t, "Sneakers", gotForm["line_items[0][price_data][product_data][name]"][0])
	assert.Equal(t, "2500", gotForm["line_items[0][price_data][unit_amount]"][0])
	assert.Equal(t, "2", gotForm["line_items[0][quantity]"][0])
	assert.Equal(t, "order-1", gotForm["metadata[orderId]"][0])
	assert.Equal(t, "seller-1", gotForm["metadata[sellerId]"][0])
}

func TestGetCheckoutSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/checkout/sessions/cs_123", r.URL.Path)

		w.Write([]byte(`{"id":"cs_123","metadata":{"orderId":"order-1","sellerId":"seller-1"}}`))
	}))
	defer srv.Close()

	client := NewStripeClient(srv.URL, "sk_test_123")

	session, err := client.GetCheckoutSession(context.Background(), "cs_123")

	require.NoError(t, err)
	assert.Equal(t, "order-1", session.Metadata["orderId"])
	assert.Equal(t, "seller-1", session.Metadata["sellerId"])
}

func TestErrorResponseSurfacesProviderMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"type":"card_error","message":"Your card was declined."}}`))
	}))
	defer srv.Close()

	client := NewStripeClient(srv.URL, "sk_test_123")

	_, err := client.CreatePaymentIntent(context.Background(), CreateIntentParams{AmountMinor: 100, Currency: "eur"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Your card was declined.")
}
