// Package store holds the persistence contracts used by the services and their
// MongoDB and in-memory implementations.
package store

import (
	"context"
	"errors"
	"math"
	"time"

	"go-storefront/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when the document does not exist or is not owned by the caller.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint would be violated.
	ErrDuplicate = errors.New("duplicate")
	// ErrInsufficientStock is returned by a conditional stock decrement that would go negative.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrStaleState is returned by conditional updates whose precondition no longer holds.
	ErrStaleState = errors.New("stale state")
)

// Page selects one page of a list. Page numbers start at 1.
type Page struct {
	Page  int
	Limit int
}

// Skip returns the number of documents before the page. It saturates at math.MaxInt64
// instead of overflowing, so a page far past the end is simply empty.
func (p Page) Skip() int64 {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	before, limit := int64(p.Page-1), int64(p.Limit)
	if before > math.MaxInt64/limit {
		return math.MaxInt64
	}
	return before * limit
}

// ProductFilter narrows product listings. Zero values do not filter.
type ProductFilter struct {
	VendorID primitive.ObjectID
	// Keyword matches title or description, case-insensitive.
	Keyword string
	// Title matches the title only, case-insensitive.
	Title string
	// Category is a case-insensitive exact match.
	Category string
}

type Users interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) (*models.User, error)
	UpdateStore(ctx context.Context, id primitive.ObjectID, info models.StoreInfo) (*models.User, error)
	// LinkGoogle sets the Google identity on an account that has none.
	LinkGoogle(ctx context.Context, id primitive.ObjectID, googleID, picture string) error
	SetResetOTP(ctx context.Context, id primitive.ObjectID, otpHash string, expires time.Time) error
	// ConsumeResetOTP replaces the password hash and clears the OTP fields, provided the stored
	// OTP hash still equals otpHash. Returns ErrStaleState otherwise.
	ConsumeResetOTP(ctx context.Context, id primitive.ObjectID, otpHash, passwordHash string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Products interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindOwned(ctx context.Context, id, vendorID primitive.ObjectID) (*models.Product, error)
	List(ctx context.Context, filter ProductFilter, page Page) ([]models.Product, int64, error)
	Update(ctx context.Context, id, vendorID primitive.ObjectID, update models.ProductUpdate) (*models.Product, error)
	Delete(ctx context.Context, id, vendorID primitive.ObjectID) error
	// Reserve decrements stock by qty only if the current stock covers it.
	Reserve(ctx context.Context, id primitive.ObjectID, qty int) error
	// Restock increments stock by qty.
	Restock(ctx context.Context, id primitive.ObjectID, qty int) error
	CountByVendor(ctx context.Context, vendorID primitive.ObjectID) (int64, error)
}

type Carts interface {
	// Get returns ErrNotFound when the user has no cart yet.
	Get(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	// SetItems upserts the cart with the given items.
	SetItems(ctx context.Context, userID primitive.ObjectID, items []models.CartItem) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) (*models.Cart, error)
	Delete(ctx context.Context, userID primitive.ObjectID) error
}

type Wishlists interface {
	Get(ctx context.Context, userID primitive.ObjectID) (*models.Wishlist, error)
	// AddItem returns ErrDuplicate when the product is already present.
	AddItem(ctx context.Context, userID, productID primitive.ObjectID) (*models.Wishlist, error)
	RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) (*models.Wishlist, error)
	Clear(ctx context.Context, userID primitive.ObjectID) (*models.Wishlist, error)
	Delete(ctx context.Context, userID primitive.ObjectID) error
}

type Orders interface {
	Create(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Order, error)
	FindForVendor(ctx context.Context, id, vendorID primitive.ObjectID) (*models.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, page Page) ([]models.Order, int64, error)
	ListByVendor(ctx context.Context, vendorID primitive.ObjectID, page Page) ([]models.Order, int64, error)
	// Transition moves the order to status `to` only while its status is one of `from`.
	// Returns ErrStaleState when the precondition fails.
	Transition(ctx context.Context, id primitive.ObjectID, from []models.OrderStatus, to models.OrderStatus) (*models.Order, error)
	// HasPurchased reports whether the user has a non-cancelled order containing the product.
	HasPurchased(ctx context.Context, userID, productID primitive.ObjectID) (bool, error)
	VendorStats(ctx context.Context, vendorID primitive.ObjectID) (models.OrderStats, error)
	TopSelling(ctx context.Context, vendorID primitive.ObjectID, limit int) ([]models.ProductSales, error)
}

type Reviews interface {
	// Create returns ErrDuplicate when the user already reviewed the product.
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, id, userID primitive.ObjectID, rating *int, comment *string) (*models.Review, error)
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
	ListByProduct(ctx context.Context, productID primitive.ObjectID, page Page) ([]models.Review, int64, error)
	// AverageRating returns the unrounded mean rating, 0 when there are no reviews.
	AverageRating(ctx context.Context, productID primitive.ObjectID) (float64, error)
}

type Addresses interface {
	List(ctx context.Context, userID primitive.ObjectID) ([]models.Address, error)
	Create(ctx context.Context, address *models.Address) error
	Update(ctx context.Context, id, userID primitive.ObjectID, update models.AddressUpdate) (*models.Address, error)
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
	ClearDefault(ctx context.Context, userID primitive.ObjectID) error
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
}

type Notifications interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) error
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
}

// Store bundles every repository.
type Store struct {
	Users         Users
	Products      Products
	Carts         Carts
	Wishlists     Wishlists
	Orders        Orders
	Reviews       Reviews
	Addresses     Addresses
	Notifications Notifications
}
