package services

import (
	"context"
	"errors"

	"go-storefront/models"
	"go-storefront/store"
	"go-storefront/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartService manages the one cart each account has. The cart document is created on the
// first mutation.
type CartService struct {
	carts    store.Carts
	products store.Products
}

func NewCartService(carts store.Carts, products store.Products) *CartService {
	return &CartService{carts: carts, products: products}
}

func emptyCart(userID primitive.ObjectID) *models.Cart {
	return &models.Cart{UserID: userID, Items: []models.CartItem{}}
}

// Get returns the cart, or an empty one when none exists yet.
func (s *CartService) Get(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.carts.Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return emptyCart(userID), nil
	}
	if err != nil {
		return nil, utils.Internal(err, "load cart")
	}
	return cart, nil
}

// Add puts quantity units of the product in the cart, adding to an existing line. The
// resulting line may not exceed the product's stock.
func (s *CartService) Add(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, utils.Validation("Valid quantity (1 or more) is required")
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, storeErr(err, "Product not found", "load product")
	}
	if product.Stock < quantity {
		return nil, utils.Validation("Not enough stock available")
	}

	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if i := cart.Find(productID); i >= 0 {
		cart.Items[i].Quantity += quantity
		if cart.Items[i].Quantity > product.Stock {
			return nil, utils.Validation("Cannot exceed available stock")
		}
	} else {
		cart.Items = append(cart.Items, models.CartItem{ProductID: productID, Quantity: quantity})
	}

	saved, err := s.carts.SetItems(ctx, userID, cart.Items)
	if err != nil {
		return nil, utils.Internal(err, "save cart")
	}
	return saved, nil
}

// Update sets the quantity of a line already in the cart.
func (s *CartService) Update(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, utils.Validation("Valid quantity (1 or more) is required")
	}
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "Cart not found", "load cart")
	}
	i := cart.Find(productID)
	if i < 0 {
		return nil, utils.NotFound("Product not found in active cart")
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, storeErr(err, "Product not found", "load product")
	}
	if product.Stock < quantity {
		return nil, utils.Validation("Not enough stock available")
	}

	cart.Items[i].Quantity = quantity
	saved, err := s.carts.SetItems(ctx, userID, cart.Items)
	if err != nil {
		return nil, utils.Internal(err, "save cart")
	}
	return saved, nil
}

// Remove drops the product's line. Removing a product that is not in the cart is a no-op.
func (s *CartService) Remove(ctx context.Context, userID, productID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.carts.RemoveItem(ctx, userID, productID)
	if err != nil {
		return nil, storeErr(err, "Cart not found", "remove cart item")
	}
	return cart, nil
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.carts.SetItems(ctx, userID, []models.CartItem{})
	if err != nil {
		return nil, utils.Internal(err, "clear cart")
	}
	return cart, nil
}
