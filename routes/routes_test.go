package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/craftandcart/storefront/cart"
	"github.com/craftandcart/storefront/checkout"
	"github.com/craftandcart/storefront/config"
	"github.com/craftandcart/storefront/events"
	"github.com/craftandcart/storefront/identity"
	"github.com/craftandcart/storefront/logger"
	"github.com/craftandcart/storefront/orders"
	"github.com/craftandcart/storefront/payment"
	"github.com/craftandcart/storefront/store"
	"github.com/craftandcart/storefront/wishlist"
)

const testSecret = "test-secret"

type stubGateway struct {
	mu sync.Mutex
	n  int
}

func (s *stubGateway) CreateOrder(ctx context.Context, req payment.CheckoutRequest) (payment.GatewayOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return payment.GatewayOrder{ID: fmt.Sprintf("gw_%d", s.n), Amount: req.Amount, Currency: req.Currency}, nil
}

type env struct {
	router *gin.Engine
	bridge *payment.Bridge
	repo   *orders.MemoryHistoryRepository
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.Initialize("development")

	backend := store.NewMemoryBackend()
	notifier := store.NewMemoryNotifier()
	cartManager := cart.NewManager(backend, notifier)
	wishlistManager := wishlist.NewManager(backend, notifier)
	bridge := payment.NewBridge(&stubGateway{}, "INR", "Craft & Cart", zap.NewNop())
	repo := orders.NewMemoryHistoryRepository()
	writer := orders.NewWriter(repo, events.Noop{}, "INR", zap.NewNop())
	registry := checkout.NewRegistry(cartManager, bridge, writer, zap.NewNop())
	provider := identity.NewJWTProvider([]byte(testSecret), "/auth/login")

	router := gin.New()
	Register(router, Deps{
		Cart:     cartManager,
		Wishlist: wishlistManager,
		Registry: registry,
		Bridge:   bridge,
		Orders:   repo,
		Identity: provider,
		Config:   config.Config{StoreURL: "http://store.example"},
	})
	return &env{router: router, bridge: bridge, repo: repo}
}

func (e *env) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func sessionHeaders() map[string]string {
	return map[string]string{"X-Session-ID": "sess-1"}
}

func bearerFor(t *testing.T, email string) map[string]string {
	t.Helper()
	claims := identity.Claims{
		Email: email,
		Name:  "Alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func product(id string, price int64) map[string]any {
	return map[string]any{"id": id, "title": "Item " + id, "price": price}
}

func TestCartRoutes(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/cart/", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "owner header is required")

	rec = e.do(t, http.MethodPost, "/cart/add", product("p1", 500), sessionHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	rec = e.do(t, http.MethodPost, "/cart/add", product("p1", 500), sessionHeaders())
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, float64(1000), body["total"])
	assert.Equal(t, float64(2), body["item_count"])

	rec = e.do(t, http.MethodPatch, "/cart/items/p1", map[string]any{"quantity": 5}, sessionHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2500), decode(t, rec)["total"])

	rec = e.do(t, http.MethodDelete, "/cart/remove/p1", nil, sessionHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decode(t, rec)["total"])

	// sessions are isolated
	rec = e.do(t, http.MethodGet, "/cart/", nil, map[string]string{"X-Session-ID": "other"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decode(t, rec)["item_count"])
}

func TestWishlistRoutes(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/wishlist/toggle", product("p1", 500), sessionHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["in_wishlist"])

	rec = e.do(t, http.MethodPost, "/wishlist/toggle", product("p1", 500), sessionHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["in_wishlist"])

	e.do(t, http.MethodPost, "/wishlist/toggle", product("p2", 900), sessionHeaders())
	rec = e.do(t, http.MethodPost, "/wishlist/move-to-cart", nil, sessionHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(900), decode(t, rec)["total"])

	rec = e.do(t, http.MethodGet, "/wishlist/share", nil, sessionHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode(t, rec)["url"], "http://store.example")
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/checkout/", nil, sessionHeaders())
	require.Equal(t, http.StatusConflict, rec.Code)

	// rendered by the error middleware from the cart-empty sentinel
	body := decode(t, rec)
	assert.Equal(t, float64(http.StatusConflict), body["code"])
	assert.Equal(t, "Cart is empty", body["message"])
}

func TestUnknownCheckoutRendersErrorEnvelope(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/checkout/nope", nil, sessionHeaders())
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(http.StatusNotFound), body["code"])
	assert.Equal(t, "Not found", body["message"])
}

func TestCheckoutHappyPathOverHTTP(t *testing.T) {
	e := newEnv(t)
	headers := sessionHeaders()

	e.do(t, http.MethodPost, "/cart/add", product("p1", 1500), headers)

	rec := e.do(t, http.MethodPost, "/checkout/", nil, headers)
	require.Equal(t, http.StatusCreated, rec.Code)
	checkoutID := decode(t, rec)["checkout_id"].(string)

	// missing fields block the information step
	rec = e.do(t, http.MethodPost, "/checkout/"+checkoutID+"/information", map[string]any{"email": "alice@example.com"}, headers)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	fieldErrors := decode(t, rec)["field_errors"].(map[string]any)
	assert.NotEmpty(t, fieldErrors["city"])

	draft := map[string]any{
		"email": "alice@example.com", "first_name": "Alice", "last_name": "Stone",
		"phone": "5550100", "street": "1 Pottery Lane", "city": "Jaipur",
		"state": "RJ", "postal_code": "302001", "country": "IN",
	}
	rec = e.do(t, http.MethodPost, "/checkout/"+checkoutID+"/information", draft, headers)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "review", decode(t, rec)["state"])

	rec = e.do(t, http.MethodPost, "/checkout/"+checkoutID+"/review", nil, headers)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodPost, "/checkout/"+checkoutID+"/pay", nil, headers)
	require.Equal(t, http.StatusOK, rec.Code)
	order := decode(t, rec)["gateway_order"].(map[string]any)
	gatewayOrderID := order["id"].(string)
	assert.Equal(t, float64(150000), order["amount"], "amount is in minor units")

	rec = e.do(t, http.MethodPost, "/payments/callback/success", map[string]any{
		"gateway_payment_id": "pay_77",
		"gateway_order_id":   gatewayOrderID,
		"signature":          "sig",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// the callback resolves asynchronously; wait for completion
	deadline := time.Now().Add(2 * time.Second)
	for {
		rec = e.do(t, http.MethodGet, "/checkout/"+checkoutID, nil, headers)
		require.Equal(t, http.StatusOK, rec.Code)
		if decode(t, rec)["state"] == "completed" {
			break
		}
		require.False(t, time.Now().After(deadline), "checkout never completed")
		time.Sleep(time.Millisecond)
	}

	conf := decode(t, rec)["confirmation"].(map[string]any)
	assert.Equal(t, "pay_77", conf["payment_id"])
	assert.NotEmpty(t, conf["order_number"])

	// a second callback for the same session is rejected
	rec = e.do(t, http.MethodPost, "/payments/callback/success", map[string]any{
		"gateway_payment_id": "pay_78",
		"gateway_order_id":   gatewayOrderID,
	}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// the cart was cleared on completion
	rec = e.do(t, http.MethodGet, "/cart/", nil, headers)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decode(t, rec)["item_count"])
}

func TestDismissedCallbackKeepsCheckoutOpen(t *testing.T) {
	e := newEnv(t)
	headers := sessionHeaders()

	e.do(t, http.MethodPost, "/cart/add", product("p1", 1500), headers)
	rec := e.do(t, http.MethodPost, "/checkout/", nil, headers)
	require.Equal(t, http.StatusCreated, rec.Code)
	checkoutID := decode(t, rec)["checkout_id"].(string)

	draft := map[string]any{
		"email": "alice@example.com", "first_name": "Alice", "last_name": "Stone",
		"phone": "5550100", "street": "1 Pottery Lane", "city": "Jaipur",
		"state": "RJ", "postal_code": "302001", "country": "IN",
	}
	e.do(t, http.MethodPost, "/checkout/"+checkoutID+"/information", draft, headers)
	e.do(t, http.MethodPost, "/checkout/"+checkoutID+"/review", nil, headers)

	rec = e.do(t, http.MethodPost, "/checkout/"+checkoutID+"/pay", nil, headers)
	require.Equal(t, http.StatusOK, rec.Code)
	gatewayOrderID := decode(t, rec)["gateway_order"].(map[string]any)["id"].(string)

	rec = e.do(t, http.MethodPost, "/payments/callback/dismissed", map[string]any{
		"gateway_order_id": gatewayOrderID,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	deadline := time.Now().Add(2 * time.Second)
	for {
		rec = e.do(t, http.MethodPost, "/checkout/"+checkoutID+"/pay", nil, headers)
		if rec.Code == http.StatusOK {
			break
		}
		require.False(t, time.Now().After(deadline), "flow never accepted a retry")
		time.Sleep(time.Millisecond)
	}
}

func TestOrdersRequireIdentity(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/orders/", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, decode(t, rec)["sign_in_url"], "/auth/login")

	rec = e.do(t, http.MethodGet, "/orders/", nil, bearerFor(t, "alice@example.com"))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(0), body["total_orders"])
}
