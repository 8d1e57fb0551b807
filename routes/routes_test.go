package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-storefront/controllers"
	"go-storefront/models"
	"go-storefront/services"
	"go-storefront/store"
	"go-storefront/utils"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testOrigin = "http://localhost:5173"

type APISuite struct {
	suite.Suite
	store   *store.Store
	tokens  *utils.TokenMaker
	handler http.Handler
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	logger := zerolog.Nop()
	s.store = store.NewMemory().Store()

	tokens, err := utils.NewTokenMaker("test-secret", time.Hour)
	s.Require().NoError(err)
	s.tokens = tokens

	email := utils.NewEmailService(utils.NewLogMailer(logger))
	cookie := controllers.CookieConfig{TTL: time.Hour}
	auth := services.NewAuthService(s.store.Users, tokens, services.NewGoogleUserInfoClient("http://127.0.0.1:0"), logger)
	reset := services.NewPasswordResetService(s.store.Users, email, utils.NewOTPHasher("otp-secret"), 15*time.Minute, logger)
	account := services.NewAccountService(s.store, logger)
	notifier := services.NewNotifier(s.store.Notifications, nil, logger)
	orders := services.NewOrderService(s.store, nil, notifier, email, services.PermissivePolicy{}, logger)

	s.handler = NewHandler(Controllers{
		Auth:    controllers.NewAuthController(auth, reset, cookie),
		User:    controllers.NewUserController(auth, account, cookie),
		Product: controllers.NewProductController(services.NewCatalogService(s.store.Products)),
		Cart: controllers.NewCartController(
			services.NewCartService(s.store.Carts, s.store.Products),
			services.NewWishlistService(s.store.Wishlists, s.store.Products),
		),
		Order:  controllers.NewOrderController(orders),
		Review: controllers.NewReviewController(services.NewReviewService(s.store.Reviews, s.store.Orders)),
		Vendor: controllers.NewVendorController(services.NewVendorService(s.store, logger), orders),
	}, Options{
		Tokens:         tokens,
		Users:          s.store.Users,
		Logger:         logger,
		RequestTimeout: 5 * time.Second,
		AllowedOrigins: []string{testOrigin},
	})
}

func (s *APISuite) do(method, path string, body any, token string) (*httptest.ResponseRecorder, map[string]any) {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

// account creates a user directly in the store and returns it with a session token.
func (s *APISuite) account(email, role string) (*models.User, string) {
	u := &models.User{Name: role, Email: email, Role: role, CreatedAt: time.Now()}
	s.Require().NoError(s.store.Users.Create(context.Background(), u))
	token, err := s.tokens.Generate(u.ID)
	s.Require().NoError(err)
	return u, token
}

func (s *APISuite) TestHealth() {
	rec, body := s.do(http.MethodGet, "/", nil, "")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(true, body["success"])
	s.NotEmpty(rec.Header().Get("X-Request-ID"))

	rec, body = s.do(http.MethodGet, "/healthz", nil, "")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("ok", body["status"])
}

func (s *APISuite) TestUnknownRoute() {
	rec, body := s.do(http.MethodGet, "/api/nope", nil, "")
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("Route not found", body["message"])
}

func (s *APISuite) TestSignupSetsCookieAndOpensProfile() {
	rec, body := s.do(http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "Ada", "email": "Ada@Example.com", "password": "secret123",
	}, "")
	s.Require().Equal(http.StatusCreated, rec.Code, body)
	s.Equal("User registered successfully", body["message"])

	var token string
	for _, c := range rec.Result().Cookies() {
		if c.Name == "token" {
			token = c.Value
			s.True(c.HttpOnly)
		}
	}
	s.Require().NotEmpty(token)
	s.Equal(token, body["token"])

	rec, body = s.do(http.MethodGet, "/api/user/me", nil, token)
	s.Require().Equal(http.StatusOK, rec.Code)
	user := body["user"].(map[string]any)
	s.Equal("ada@example.com", user["email"])
	s.NotContains(user, "password")

	rec, body = s.do(http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "other",
	}, "")
	s.Equal(http.StatusConflict, rec.Code)
	s.Equal("User already exists with this email", body["message"])
}

func (s *APISuite) TestSignupValidation() {
	tests := []struct {
		name    string
		body    any
		message string
	}{
		{"missing fields", map[string]string{"email": "a@b.io"}, "Please provide all required fields"},
		{"bad email", map[string]string{"name": "A", "email": "nope", "password": "x"}, "Please provide a valid email"},
		{"not json", "just a string", "Invalid input"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			rec, body := s.do(http.MethodPost, "/api/auth/signup", tt.body, "")
			s.Equal(http.StatusBadRequest, rec.Code)
			s.Equal(tt.message, body["message"])
		})
	}
}

func (s *APISuite) TestProtectedRoutesNeedSession() {
	for _, path := range []string{"/api/user/me", "/api/user/cart", "/api/user/orders", "/api/user/notifications"} {
		rec, body := s.do(http.MethodGet, path, nil, "")
		s.Equal(http.StatusUnauthorized, rec.Code, path)
		s.Equal("Authentication required - No token provided", body["message"])
	}
}

func (s *APISuite) TestVendorRoutesNeedVendorRole() {
	_, buyer := s.account("buyer@x.io", models.RoleUser)

	rec, _ := s.do(http.MethodGet, "/api/vendor/products", nil, "")
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec, body := s.do(http.MethodGet, "/api/vendor/products", nil, buyer)
	s.Equal(http.StatusForbidden, rec.Code)
	s.Equal("Access denied. Vendors only.", body["message"])
}

func (s *APISuite) TestCatalogRoutes() {
	vendor, _ := s.account("v@x.io", models.RoleVendor)
	p := &models.Product{VendorID: vendor.ID, Title: "Desk Lamp", Description: "warm light", Category: "Home", Price: 20, Stock: 3}
	s.Require().NoError(s.store.Products.Create(context.Background(), p))

	rec, body := s.do(http.MethodGet, "/api/user/products", nil, "")
	s.Equal(http.StatusOK, rec.Code)
	s.EqualValues(1, body["totalProducts"])
	s.EqualValues(1, body["currentPage"])

	rec, body = s.do(http.MethodGet, "/api/user/products?page=4611686018427387904&limit=4", nil, "")
	s.Equal(http.StatusOK, rec.Code)
	s.Empty(body["products"])
	s.EqualValues(1, body["totalProducts"])

	rec, body = s.do(http.MethodGet, "/api/user/products/search?keyword=lamp", nil, "")
	s.Equal(http.StatusOK, rec.Code)
	s.EqualValues(1, body["totalProducts"])

	rec, body = s.do(http.MethodGet, "/api/user/products/category/home", nil, "")
	s.Equal(http.StatusOK, rec.Code)
	s.EqualValues(1, body["totalProducts"])

	rec, body = s.do(http.MethodGet, "/api/user/products/"+p.ID.Hex(), nil, "")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("Desk Lamp", body["product"].(map[string]any)["title"])

	rec, body = s.do(http.MethodGet, "/api/user/products/not-an-id", nil, "")
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("Invalid id", body["message"])

	rec, _ = s.do(http.MethodGet, "/api/user/products/"+primitive.NewObjectID().Hex(), nil, "")
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *APISuite) TestCheckoutAcrossVendorAndBuyer() {
	_, vendor := s.account("vendor@x.io", models.RoleVendor)
	_, buyer := s.account("buyer@x.io", models.RoleUser)

	rec, body := s.do(http.MethodPost, "/api/vendor/product", map[string]any{
		"title": "Mug", "description": "ceramic", "category": "Kitchen", "price": 12.5, "stock": 4,
	}, vendor)
	s.Require().Equal(http.StatusCreated, rec.Code, body)
	productID := body["product"].(map[string]any)["_id"].(string)

	rec, body = s.do(http.MethodPost, "/api/user/cart", map[string]any{"productId": productID, "quantity": 2}, buyer)
	s.Require().Equal(http.StatusOK, rec.Code, body)

	rec, body = s.do(http.MethodPost, "/api/user/order", nil, buyer)
	s.Require().Equal(http.StatusCreated, rec.Code, body)
	s.Equal("Order placed successfully", body["message"])
	orders := body["orders"].([]any)
	s.Require().Len(orders, 1)
	order := orders[0].(map[string]any)
	s.EqualValues(25, order["totalAmount"])
	s.Equal("Pending", order["status"])
	orderID := order["_id"].(string)

	rec, body = s.do(http.MethodGet, "/api/user/cart", nil, buyer)
	s.Equal(http.StatusOK, rec.Code)
	s.Empty(body["cart"].(map[string]any)["items"])

	rec, body = s.do(http.MethodGet, "/api/vendor/orders", nil, vendor)
	s.Equal(http.StatusOK, rec.Code)
	s.EqualValues(1, body["totalOrders"])

	rec, body = s.do(http.MethodPut, "/api/vendor/order/"+orderID+"/status", map[string]string{"status": "Bogus"}, vendor)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("Invalid status value", body["message"])

	rec, body = s.do(http.MethodPut, "/api/vendor/order/"+orderID+"/status", map[string]string{"status": "Shipped"}, vendor)
	s.Require().Equal(http.StatusOK, rec.Code, body)
	s.Equal("Shipped", body["order"].(map[string]any)["status"])

	rec, body = s.do(http.MethodPut, "/api/user/order/"+orderID+"/cancel", nil, buyer)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("Order cannot be cancelled because it is already Shipped", body["message"])

	rec, body = s.do(http.MethodGet, "/api/vendor/dashboard-stats", nil, vendor)
	s.Equal(http.StatusOK, rec.Code)
	stats := body["stats"].(map[string]any)
	s.EqualValues(1, stats["totalProducts"])
	s.EqualValues(25, stats["totalRevenue"])

	rec, body = s.do(http.MethodGet, "/api/user/notifications", nil, buyer)
	s.Equal(http.StatusOK, rec.Code)
	s.NotEmpty(body["notifications"])
}

func (s *APISuite) TestReviewsArePublicToRead() {
	vendor, _ := s.account("v@x.io", models.RoleVendor)
	p := &models.Product{VendorID: vendor.ID, Title: "Pen", Description: "blue", Category: "Office", Price: 2, Stock: 10}
	s.Require().NoError(s.store.Products.Create(context.Background(), p))
	_, buyer := s.account("b@x.io", models.RoleUser)

	rec, body := s.do(http.MethodPost, "/api/user/review", map[string]any{"productId": p.ID.Hex(), "rating": 5, "comment": "great"}, buyer)
	s.Equal(http.StatusForbidden, rec.Code, body)

	rec, body = s.do(http.MethodGet, "/api/user/reviews/"+p.ID.Hex(), nil, "")
	s.Equal(http.StatusOK, rec.Code)
	s.EqualValues(0, body["totalReviews"])
	s.EqualValues(0, body["averageRating"])
}

func (s *APISuite) TestCORSPreflight() {
	req := httptest.NewRequest(http.MethodOptions, "/api/user/cart", nil)
	req.Header.Set("Origin", testOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	s.Equal(http.StatusOK, rec.Code)
	s.Equal(testOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	s.Equal("true", rec.Header().Get("Access-Control-Allow-Credentials"))
}
