package controllers

import (
	"net/http"

	"go-storefront/services"
	"go-storefront/utils"
)

// CartController handles cart and wishlist requests
type CartController struct {
	Carts     *services.CartService
	Wishlists *services.WishlistService
}

func NewCartController(carts *services.CartService, wishlists *services.WishlistService) *CartController {
	return &CartController{Carts: carts, Wishlists: wishlists}
}

type addToCartRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  *int   `json:"quantity"`
}

type updateCartRequest struct {
	Quantity int `json:"quantity"`
}

type wishlistRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

// GetCart returns the user's cart
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	cart, err := cc.Carts.Get(r.Context(), userID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.H{"cart": cart})
}

// AddToCart adds a product to the user's cart. Quantity defaults to 1.
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	var req addToCartRequest
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, r, utils.Validation("Product ID is required"))
		return
	}
	productID, err := objectID(req.ProductID, "productId")
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	cart, err := cc.Carts.Add(r.Context(), userID, productID, quantity)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.H{"cart": cart})
}

// UpdateCartItem sets the quantity of the product in the path
func (cc *CartController) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	productID, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	var req updateCartRequest
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	cart, err := cc.Carts.Update(r.Context(), userID, productID, req.Quantity)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.H{"cart": cart})
}

// RemoveFromCart removes a product from the user's cart
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	productID, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	cart, err := cc.Carts.Remove(r.Context(), userID, productID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.H{"cart": cart})
}

func (cc *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	cart, err := cc.Carts.Clear(r.Context(), userID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.H{"message": "Cart cleared successfully", "cart": cart})
}

func (cc *CartController) GetWishlist(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	wishlist, err := cc.Wishlists.Get(r.Context(), userID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.H{"wishlist": wishlist})
}

func (cc *CartController) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	var req wishlistRequest
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, r, utils.Validation("Product ID is required"))
		return
	}
	productID, err := objectID(req.ProductID, "productId")
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	wishlist, err := cc.Wishlists.Add(r.Context(), userID, productID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.H{"message": "Added to wishlist", "wishlist": wishlist})
}

func (cc *CartController) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	productID, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	wishlist, err := cc.Wishlists.Remove(r.Context(), userID, productID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.H{"message": "Removed from wishlist", "wishlist": wishlist})
}

func (cc *CartController) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	wishlist, err := cc.Wishlists.Clear(r.Context(), userID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.H{"message": "Wishlist cleared successfully", "wishlist": wishlist})
}
