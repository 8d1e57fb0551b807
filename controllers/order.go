package controllers

import (
	"net/http"

	"go-storefront/services"
	"go-storefront/utils"
)

// OrderController handles the buyer's side of the order workflow
type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

// CreateOrder turns the cart into one order per vendor
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	orders, err := oc.Orders.Place(r.Context(), userID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, utils.H{"message": "Order placed successfully", "orders": orders})
}

// GetOrders lists the user's orders, newest first
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	page, err := oc.Orders.ListMine(r.Context(), userID, pageFrom(r, services.ListPageSize))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, pageFields(page, "orders", "totalOrders"))
}

func (oc *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	order, err := oc.Orders.GetMine(r.Context(), userID, id)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.H{"order": order})
}

// CancelOrder cancels a Pending or Processing order and returns its stock
func (oc *OrderController) CancelOrder(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	order, err := oc.Orders.Cancel(r.Context(), userID, id)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.H{"message": "Order cancelled successfully, stock returned", "order": order})
}
