package services

import (
	"context"
	"errors"

	"go-storefront/models"
	"go-storefront/store"
	"go-storefront/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WishlistService struct {
	wishlists store.Wishlists
	products  store.Products
}

func NewWishlistService(wishlists store.Wishlists, products store.Products) *WishlistService {
	return &WishlistService{wishlists: wishlists, products: products}
}

func emptyWishlist(userID primitive.ObjectID) *models.Wishlist {
	return &models.Wishlist{UserID: userID, Items: []primitive.ObjectID{}}
}

func (s *WishlistService) Get(ctx context.Context, userID primitive.ObjectID) (*models.Wishlist, error) {
	w, err := s.wishlists.Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return emptyWishlist(userID), nil
	}
	if err != nil {
		return nil, utils.Internal(err, "load wishlist")
	}
	return w, nil
}

// Add saves an existing product. A product can appear once.
func (s *WishlistService) Add(ctx context.Context, userID, productID primitive.ObjectID) (*models.Wishlist, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, storeErr(err, "Product not found", "load product")
	}
	w, err := s.wishlists.AddItem(ctx, userID, productID)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, utils.Validation("Product is already in your wishlist")
	}
	if err != nil {
		return nil, utils.Internal(err, "add wishlist item")
	}
	return w, nil
}

func (s *WishlistService) Remove(ctx context.Context, userID, productID primitive.ObjectID) (*models.Wishlist, error) {
	w, err := s.wishlists.RemoveItem(ctx, userID, productID)
	if err != nil {
		return nil, storeErr(err, "Wishlist not found", "remove wishlist item")
	}
	return w, nil
}

func (s *WishlistService) Clear(ctx context.Context, userID primitive.ObjectID) (*models.Wishlist, error) {
	w, err := s.wishlists.Clear(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return emptyWishlist(userID), nil
	}
	if err != nil {
		return nil, utils.Internal(err, "clear wishlist")
	}
	return w, nil
}
