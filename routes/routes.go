package routes

import (
	"net/http"
	"time"

	"go-storefront/controllers"
	"go-storefront/middleware"
	"go-storefront/store"
	"go-storefront/utils"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Controllers groups the handlers mounted by RegisterRoutes.
type Controllers struct {
	Auth    *controllers.AuthController
	User    *controllers.UserController
	Product *controllers.ProductController
	Cart    *controllers.CartController
	Order   *controllers.OrderController
	Review  *controllers.ReviewController
	Vendor  *controllers.VendorController
}

// Options configures the middleware wrapped around the router.
type Options struct {
	Tokens         *utils.TokenMaker
	Users          store.Users
	Logger         zerolog.Logger
	RequestTimeout time.Duration
	AllowedOrigins []string
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, c Controllers, tokens *utils.TokenMaker, users store.Users) {
	auth := middleware.AuthMiddleware(tokens)
	protect := func(h http.HandlerFunc) http.Handler { return auth(h) }

	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteSuccess(w, http.StatusOK, utils.H{"message": "Server is running..."})
	}).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, utils.H{"status": "ok"})
	}).Methods(http.MethodGet)

	// Auth routes
	a := router.PathPrefix("/api/auth").Subrouter()
	a.HandleFunc("/signup", c.Auth.Signup).Methods(http.MethodPost)
	a.HandleFunc("/login", c.Auth.Login).Methods(http.MethodPost)
	a.HandleFunc("/google", c.Auth.Google).Methods(http.MethodPost)
	a.HandleFunc("/logout", c.Auth.Logout).Methods(http.MethodPost)
	a.HandleFunc("/forgot-password", c.Auth.ForgotPassword).Methods(http.MethodPost)
	a.HandleFunc("/verify-otp", c.Auth.VerifyOTP).Methods(http.MethodPost)
	a.HandleFunc("/reset-password", c.Auth.ResetPassword).Methods(http.MethodPost)

	u := router.PathPrefix("/api/user").Subrouter()

	// Account
	u.Handle("/me", protect(c.User.GetProfile)).Methods(http.MethodGet)
	u.Handle("/me", protect(c.User.UpdateProfile)).Methods(http.MethodPut)
	u.Handle("/me", protect(c.User.DeleteAccount)).Methods(http.MethodDelete)
	u.Handle("/addresses", protect(c.User.GetAddresses)).Methods(http.MethodGet)
	u.Handle("/address", protect(c.User.AddAddress)).Methods(http.MethodPost)
	u.Handle("/address/{id}", protect(c.User.UpdateAddress)).Methods(http.MethodPut)
	u.Handle("/address/{id}", protect(c.User.DeleteAddress)).Methods(http.MethodDelete)
	u.Handle("/notifications", protect(c.User.GetNotifications)).Methods(http.MethodGet)
	u.Handle("/notifications/read", protect(c.User.MarkNotificationsRead)).Methods(http.MethodPut)

	// Catalog, public. Fixed paths go before /products/{id}.
	u.HandleFunc("/products", c.Product.GetProducts).Methods(http.MethodGet)
	u.HandleFunc("/products/search", c.Product.SearchProducts).Methods(http.MethodGet)
	u.HandleFunc("/products/category/{category}", c.Product.GetProductsByCategory).Methods(http.MethodGet)
	u.HandleFunc("/products/{id}", c.Product.GetProductByID).Methods(http.MethodGet)

	// Cart Routes
	u.Handle("/cart", protect(c.Cart.GetCart)).Methods(http.MethodGet)
	u.Handle("/cart", protect(c.Cart.AddToCart)).Methods(http.MethodPost)
	u.Handle("/cart", protect(c.Cart.ClearCart)).Methods(http.MethodDelete)
	u.Handle("/cart/{id}", protect(c.Cart.UpdateCartItem)).Methods(http.MethodPut)
	u.Handle("/cart/{id}", protect(c.Cart.RemoveFromCart)).Methods(http.MethodDelete)

	// Wishlist
	u.Handle("/wishlist", protect(c.Cart.GetWishlist)).Methods(http.MethodGet)
	u.Handle("/wishlist", protect(c.Cart.AddToWishlist)).Methods(http.MethodPost)
	u.Handle("/wishlist", protect(c.Cart.ClearWishlist)).Methods(http.MethodDelete)
	u.Handle("/wishlist/{id}", protect(c.Cart.RemoveFromWishlist)).Methods(http.MethodDelete)

	// Order Routes
	u.Handle("/order", protect(c.Order.CreateOrder)).Methods(http.MethodPost)
	u.Handle("/orders", protect(c.Order.GetOrders)).Methods(http.MethodGet)
	u.Handle("/order/{id}", protect(c.Order.GetOrder)).Methods(http.MethodGet)
	u.Handle("/order/{id}/cancel", protect(c.Order.CancelOrder)).Methods(http.MethodPut)

	// Reviews
	u.Handle("/review", protect(c.Review.CreateReview)).Methods(http.MethodPost)
	u.Handle("/review/{id}", protect(c.Review.UpdateReview)).Methods(http.MethodPut)
	u.Handle("/review/{id}", protect(c.Review.DeleteReview)).Methods(http.MethodDelete)
	u.HandleFunc("/reviews/{productId}", c.Review.GetProductReviews).Methods(http.MethodGet)

	// Vendor routes
	v := router.PathPrefix("/api/vendor").Subrouter()
	v.Use(auth, middleware.VendorMiddleware(users))
	v.HandleFunc("/product", c.Vendor.CreateProduct).Methods(http.MethodPost)
	v.HandleFunc("/products", c.Vendor.GetProducts).Methods(http.MethodGet)
	v.HandleFunc("/product/{id}", c.Vendor.GetProduct).Methods(http.MethodGet)
	v.HandleFunc("/product/{id}", c.Vendor.UpdateProduct).Methods(http.MethodPut)
	v.HandleFunc("/product/{id}", c.Vendor.DeleteProduct).Methods(http.MethodDelete)
	v.HandleFunc("/orders", c.Vendor.GetOrders).Methods(http.MethodGet)
	v.HandleFunc("/order/{id}", c.Vendor.GetOrder).Methods(http.MethodGet)
	v.HandleFunc("/order/{id}/status", c.Vendor.UpdateOrderStatus).Methods(http.MethodPut)
	v.HandleFunc("/dashboard-stats", c.Vendor.GetDashboardStats).Methods(http.MethodGet)
	v.HandleFunc("/top-selling-products", c.Vendor.GetTopSellingProducts).Methods(http.MethodGet)
	v.HandleFunc("/store", c.Vendor.GetStore).Methods(http.MethodGet)
	v.HandleFunc("/store", c.Vendor.UpdateStore).Methods(http.MethodPut)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, r, utils.NotFound("Route not found"))
	})
}

// NewHandler builds the router and wraps it in the request middleware chain.
// CORS sits inside the logger so preflight requests are logged too.
func NewHandler(c Controllers, opts Options) http.Handler {
	router := mux.NewRouter()
	RegisterRoutes(router, c, opts.Tokens, opts.Users)

	cors := handlers.CORS(
		handlers.AllowedOrigins(opts.AllowedOrigins),
		handlers.AllowCredentials(),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", middleware.RequestIDHeader}),
		handlers.ExposedHeaders([]string{middleware.RequestIDHeader}),
	)

	var h http.Handler = cors(router)
	h = middleware.TimeoutMiddleware(opts.RequestTimeout)(h)
	h = middleware.RecoverMiddleware(h)
	h = middleware.LoggerMiddleware(opts.Logger)(h)
	return middleware.RequestIDMiddleware(h)
}
