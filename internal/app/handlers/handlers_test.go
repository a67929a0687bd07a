package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/lylastore/storefront/internal/app/handlers"
	"github.com/lylastore/storefront/internal/auth/authmw"
	"github.com/lylastore/storefront/internal/domain/models"
	"github.com/lylastore/storefront/internal/payment"
	"github.com/lylastore/storefront/internal/service"
	"github.com/stretchr/testify/assert"
)

// fakeAuthService — фиктивная реализация для тестирования.
type fakeAuthService struct {
	token string
	err   error
}

func (f *fakeAuthService) Register(ctx context.Context, email, password, firstName, lastName, phone string) (string, error) {
	return f.token, f.err
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (string, error) {
	return f.token, f.err
}

type fakeCartService struct {
	view *service.CartView
	err  error
}

func (f *fakeCartService) GetCart(ctx context.Context, userID int64) (*service.CartView, error) {
	return f.view, f.err
}

func (f *fakeCartService) AddItem(ctx context.Context, userID, productID int64, quantity int, size *string) (*service.CartView, error) {
	return f.view, f.err
}

func (f *fakeCartService) UpdateItem(ctx context.Context, userID, itemID int64, quantity int) (*service.CartView, error) {
	return f.view, f.err
}

func (f *fakeCartService) RemoveItem(ctx context.Context, userID, itemID int64) (*service.CartView, error) {
	return f.view, f.err
}

type fakeCheckoutService struct {
	order *models.Order
	err   error

	called bool
}

func (f *fakeCheckoutService) PlaceOrder(ctx context.Context, userID int64, req service.PlaceOrderRequest) (*models.Order, error) {
	f.called = true
	return f.order, f.err
}

type fakeVerifier struct {
	verification *payment.Verification
	err          error
}

func (f *fakeVerifier) Verify(ctx context.Context, reference string) (*payment.Verification, error) {
	return f.verification, f.err
}

type fakePromoService struct {
	result *service.PromoResult
	err    error
}

func (f *fakePromoService) Validate(ctx context.Context, code string, userID int64, subtotal float64) (*service.PromoResult, error) {
	return f.result, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// authedRequest создаёт запрос с userID в контексте, как после JWT middleware.
func authedRequest(method, target, body string, userID int64) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	ctx := context.WithValue(req.Context(), authmw.UserIDKey, userID)
	return req.WithContext(ctx)
}

func TestRegisterHandler_Success(t *testing.T) {
	fakeSvc := &fakeAuthService{token: "test-token"}
	handler := handlers.RegisterHandler(testLogger(), fakeSvc)

	reqBody := `{"email": "test@example.com", "password": "password123", "firstName": "Alice", "lastName": "Smith"}`
	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBufferString(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code, "Expected status 201 Created")

	var resp struct {
		Token string `json:"token"`
	}
	err := json.NewDecoder(rr.Body).Decode(&resp)
	assert.NoError(t, err, "Response decoding should succeed")
	assert.Equal(t, "test-token", resp.Token, "Returned token should match fake token")
}

func TestRegisterHandler_ValidationError(t *testing.T) {
	handler := handlers.RegisterHandler(testLogger(), &fakeAuthService{})

	// Пароль короче восьми символов
	reqBody := `{"email": "test@example.com", "password": "short", "firstName": "Alice", "lastName": "Smith"}`
	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "Expected status 400 for validation error")
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	fakeSvc := &fakeAuthService{err: service.ErrInvalidCredentials}
	handler := handlers.LoginHandler(testLogger(), fakeSvc)

	reqBody := `{"email": "test@example.com", "password": "password123"}`
	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "Expected status 401 for bad credentials")
}

func TestAddCartItemHandler_Unauthorized(t *testing.T) {
	handler := handlers.AddCartItemHandler(testLogger(), &fakeCartService{})

	// Запрос без userID в контексте
	reqBody := `{"productId": 10, "quantity": 1}`
	req := httptest.NewRequest("POST", "/api/cart/items", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAddCartItemHandler_Success(t *testing.T) {
	view := &service.CartView{
		Cart:     &models.Cart{ID: 1, UserID: 1},
		Items:    []*models.CartItem{{ID: 1, ProductID: 10, Quantity: 1, PriceAtAddition: 25.00}},
		Subtotal: 25.00,
	}
	handler := handlers.AddCartItemHandler(testLogger(), &fakeCartService{view: view})

	req := authedRequest("POST", "/api/cart/items", `{"productId": 10, "quantity": 1}`, 1)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp service.CartView
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, 25.00, resp.Subtotal)
}

func TestDeleteCartItemHandler_MissingQueryParam(t *testing.T) {
	handler := handlers.DeleteCartItemHandler(testLogger(), &fakeCartService{})

	req := authedRequest("DELETE", "/api/cart/items", "", 1)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "Expected status 400 without cartItemId")
}

func TestCreateOrderHandler_Success(t *testing.T) {
	checkoutSvc := &fakeCheckoutService{
		order: &models.Order{ID: 42, OrderNumber: "ord-42", Status: models.OrderStatusPending, TotalAmount: 90.00},
	}
	verifier := &fakeVerifier{verification: &payment.Verification{Success: true, Reference: "ref-123", Amount: 90.00}}
	handler := handlers.CreateOrderHandler(testLogger(), checkoutSvc, verifier)

	reqBody := `{
		"shippingInfo": {"firstName": "Alice", "lastName": "Smith", "email": "alice@example.com",
			"streetAddress": "1 Main St", "city": "Springfield", "postalCode": "12345"},
		"paymentReference": "ref-123",
		"totalAmount": 90.00,
		"promoCode": "SAVE10"
	}`
	req := authedRequest("POST", "/api/orders", reqBody, 1)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.True(t, checkoutSvc.called, "Checkout should run after payment verification")

	var resp struct {
		Order *models.Order `json:"order"`
	}
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, int64(42), resp.Order.ID)
	assert.Equal(t, models.OrderStatusPending, resp.Order.Status)
}

func TestCreateOrderHandler_PaymentNotVerified(t *testing.T) {
	checkoutSvc := &fakeCheckoutService{}
	verifier := &fakeVerifier{verification: &payment.Verification{Success: false, Reference: "ref-bad"}}
	handler := handlers.CreateOrderHandler(testLogger(), checkoutSvc, verifier)

	reqBody := `{
		"shippingInfo": {"firstName": "Alice", "lastName": "Smith", "email": "alice@example.com",
			"streetAddress": "1 Main St", "city": "Springfield", "postalCode": "12345"},
		"paymentReference": "ref-bad",
		"totalAmount": 90.00
	}`
	req := authedRequest("POST", "/api/orders", reqBody, 1)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.False(t, checkoutSvc.called, "Order must not be created when the payment is not verified")
}

func TestCreateOrderHandler_CheckoutErrorsMapTo400(t *testing.T) {
	verifier := &fakeVerifier{verification: &payment.Verification{Success: true}}
	reqBody := `{
		"shippingInfo": {"firstName": "Alice", "lastName": "Smith", "email": "alice@example.com",
			"streetAddress": "1 Main St", "city": "Springfield", "postalCode": "12345"},
		"paymentReference": "ref-123",
		"totalAmount": 90.00
	}`

	cases := []struct {
		name string
		err  error
		code int
	}{
		{"empty cart", service.ErrEmptyCart, http.StatusBadRequest},
		{"invalid promo", service.ErrInvalidPromoCode, http.StatusBadRequest},
		{"expired promo", service.ErrPromoExpired, http.StatusBadRequest},
		{"usage limit", service.ErrPromoUsageLimitExceeded, http.StatusBadRequest},
		{"total mismatch", service.ErrTotalMismatch, http.StatusBadRequest},
		{"internal failure", service.ErrOrderCreationFailed, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := handlers.CreateOrderHandler(testLogger(), &fakeCheckoutService{err: tc.err}, verifier)
			req := authedRequest("POST", "/api/orders", reqBody, 1)
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)
			assert.Equal(t, tc.code, rr.Code)

			var resp struct {
				Error string `json:"error"`
			}
			assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Equal(t, tc.err.Error(), resp.Error, "Each rejection carries its own message")
		})
	}
}

func TestCreateOrderHandler_VerifierFailure(t *testing.T) {
	checkoutSvc := &fakeCheckoutService{}
	verifier := &fakeVerifier{err: errors.New("gateway timeout")}
	handler := handlers.CreateOrderHandler(testLogger(), checkoutSvc, verifier)

	reqBody := `{
		"shippingInfo": {"firstName": "Alice", "lastName": "Smith", "email": "alice@example.com",
			"streetAddress": "1 Main St", "city": "Springfield", "postalCode": "12345"},
		"paymentReference": "ref-123",
		"totalAmount": 90.00
	}`
	req := authedRequest("POST", "/api/orders", reqBody, 1)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.False(t, checkoutSvc.called)
}

func TestValidatePromoHandler_Success(t *testing.T) {
	promoSvc := &fakePromoService{
		result: &service.PromoResult{
			Promo: &models.PromoCode{
				Code:          "SAVE10",
				DiscountType:  models.DiscountTypePercentage,
				DiscountValue: 10,
			},
			DiscountAmount: 10.00,
		},
	}
	handler := handlers.ValidatePromoHandler(testLogger(), promoSvc)

	req := authedRequest("POST", "/api/promo/validate", `{"code": "SAVE10", "orderTotal": 100.00}`, 1)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.ValidatePromoResponse
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "SAVE10", resp.Code)
	assert.Equal(t, "PERCENTAGE", resp.DiscountType)
	assert.Equal(t, 10.00, resp.DiscountAmount)
}

func TestValidatePromoHandler_InvalidCode(t *testing.T) {
	handler := handlers.ValidatePromoHandler(testLogger(), &fakePromoService{err: service.ErrInvalidPromoCode})

	req := authedRequest("POST", "/api/promo/validate", `{"code": "NOPE", "orderTotal": 100.00}`, 1)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
