package controllers

import (
	"net/http"

	"go-storefront/models"
	"go-storefront/services"
	"go-storefront/utils"
)

// UserController handles the signed-in user's profile, address book and notifications
type UserController struct {
	Auth    *services.AuthService
	Account *services.AccountService
	Cookie  CookieConfig
}

func NewUserController(auth *services.AuthService, account *services.AccountService, cookie CookieConfig) *UserController {
	return &UserController{Auth: auth, Account: account, Cookie: cookie}
}

type profileRequest struct {
	Name    *string `json:"name"`
	Picture *string `json:"picture"`
}

type addressRequest struct {
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required"`
	IsDefault  bool   `json:"isDefault"`
}

type addressUpdateRequest struct {
	Street     *string `json:"street"`
	City       *string `json:"city"`
	State      *string `json:"state"`
	PostalCode *string `json:"postalCode"`
	Country    *string `json:"country"`
	IsDefault  *bool   `json:"isDefault"`
}

// GetProfile retrieves the authenticated user's profile
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	user, err := uc.Auth.Profile(r.Context(), userID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.H{"user": user})
}

func (uc *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	var req profileRequest
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	user, err := uc.Account.UpdateProfile(r.Context(), userID, req.Name, req.Picture)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.H{"message": "Profile updated successfully", "user": user})
}

// DeleteAccount removes the account and ends the session
func (uc *UserController) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if err := uc.Account.DeleteAccount(r.Context(), userID); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	uc.Cookie.clear(w)
	utils.WriteSuccess(w, http.StatusOK, utils.H{"message": "Account successfully deleted"})
}

func (uc *UserController) GetAddresses(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	addresses, err := uc.Account.Addresses(r.Context(), userID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.H{"addresses": addresses})
}

func (uc *UserController) AddAddress(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	var req addressRequest
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	address, err := uc.Account.AddAddress(r.Context(), userID, models.Address{
		Street:     req.Street,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		IsDefault:  req.IsDefault,
	})
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, utils.H{"message": "Address added successfully", "address": address})
}

func (uc *UserController) UpdateAddress(w http.ResponseWriter, r *http.Request) {
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
	var req addressUpdateRequest
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	address, err := uc.Account.UpdateAddress(r.Context(), userID, id, models.AddressUpdate{
		Street:     req.Street,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		IsDefault:  req.IsDefault,
	})
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.H{"message": "Address updated", "address": address})
}

func (uc *UserController) DeleteAddress(w http.ResponseWriter, r *http.Request) {
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
	if err := uc.Account.DeleteAddress(r.Context(), userID, id); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.H{"message": "Address deleted successfully"})
}

func (uc *UserController) GetNotifications(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	inbox, err := uc.Account.Notifications(r.Context(), userID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.H{"notifications": inbox.Notifications, "unreadCount": inbox.UnreadCount})
}

func (uc *UserController) MarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if err := uc.Account.MarkNotificationsRead(r.Context(), userID); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.H{"message": "Notifications marked as read"})
}
