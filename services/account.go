package services

import (
	"context"
	"errors"
	"strings"

	"go-storefront/models"
	"go-storefront/store"
	"go-storefront/utils"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccountService covers the signed-in user's own data: profile, address book and inbox.
type AccountService struct {
	store  *store.Store
	logger zerolog.Logger
	now    Clock
}

func NewAccountService(st *store.Store, logger zerolog.Logger) *AccountService {
	return &AccountService{store: st, logger: logger, now: systemClock}
}

// UpdateProfile changes the name and/or picture. Nil fields are kept.
func (s *AccountService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, name, picture *string) (*models.User, error) {
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, utils.Validation("Name cannot be empty")
		}
		name = &trimmed
	}
	user, err := s.store.Users.UpdateProfile(ctx, userID, models.ProfileUpdate{Name: name, Picture: picture})
	if err != nil {
		return nil, storeErr(err, "User not found", "update profile")
	}
	return user, nil
}

// DeleteAccount removes the account with its cart, wishlist, addresses and notifications.
// Orders and reviews are kept for the vendors' records.
func (s *AccountService) DeleteAccount(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.store.Users.Delete(ctx, userID); err != nil {
		return storeErr(err, "User not found", "delete user")
	}

	ctx = context.WithoutCancel(ctx)
	cleanups := []struct {
		what string
		fn   func(context.Context, primitive.ObjectID) error
	}{
		{"cart", s.store.Carts.Delete},
		{"wishlist", s.store.Wishlists.Delete},
		{"addresses", s.store.Addresses.DeleteByUser},
		{"notifications", s.store.Notifications.DeleteByUser},
	}
	for _, c := range cleanups {
		if err := c.fn(ctx, userID); err != nil && !errors.Is(err, store.ErrNotFound) {
			s.logger.Error().Err(err).Str("user_id", userID.Hex()).Str("resource", c.what).Msg("failed to delete account data")
		}
	}
	s.logger.Info().Str("user_id", userID.Hex()).Msg("account deleted")
	return nil
}

// Addresses lists the address book, default first then newest.
func (s *AccountService) Addresses(ctx context.Context, userID primitive.ObjectID) ([]models.Address, error) {
	list, err := s.store.Addresses.List(ctx, userID)
	if err != nil {
		return nil, utils.Internal(err, "list addresses")
	}
	if list == nil {
		list = []models.Address{}
	}
	return list, nil
}

// AddAddress stores a new address. Marking it default clears the previous default.
func (s *AccountService) AddAddress(ctx context.Context, userID primitive.ObjectID, a models.Address) (*models.Address, error) {
	if strings.TrimSpace(a.Street) == "" || strings.TrimSpace(a.City) == "" || strings.TrimSpace(a.State) == "" ||
		strings.TrimSpace(a.PostalCode) == "" || strings.TrimSpace(a.Country) == "" {
		return nil, utils.Validation("Please provide all required fields")
	}
	if a.IsDefault {
		if err := s.store.Addresses.ClearDefault(ctx, userID); err != nil {
			return nil, utils.Internal(err, "clear default address")
		}
	}
	now := s.now()
	a.ID = primitive.NilObjectID
	a.UserID = userID
	a.CreatedAt, a.UpdatedAt = now, now
	if err := s.store.Addresses.Create(ctx, &a); err != nil {
		return nil, utils.Internal(err, "create address")
	}
	return &a, nil
}

// UpdateAddress edits one of the user's addresses.
func (s *AccountService) UpdateAddress(ctx context.Context, userID, id primitive.ObjectID, update models.AddressUpdate) (*models.Address, error) {
	if update.IsDefault != nil && *update.IsDefault {
		// Only clear the current default once the target is known to be the user's.
		owned, err := s.store.Addresses.List(ctx, userID)
		if err != nil {
			return nil, utils.Internal(err, "list addresses")
		}
		if !lo.ContainsBy(owned, func(a models.Address) bool { return a.ID == id }) {
			return nil, utils.NotFound("Address not found")
		}
		if err := s.store.Addresses.ClearDefault(ctx, userID); err != nil {
			return nil, utils.Internal(err, "clear default address")
		}
	}
	a, err := s.store.Addresses.Update(ctx, id, userID, update)
	if err != nil {
		return nil, storeErr(err, "Address not found", "update address")
	}
	return a, nil
}

func (s *AccountService) DeleteAddress(ctx context.Context, userID, id primitive.ObjectID) error {
	if err := s.store.Addresses.Delete(ctx, id, userID); err != nil {
		return storeErr(err, "Address not found", "delete address")
	}
	return nil
}

// Inbox is the user's notifications, newest first, with the number still unread.
type Inbox struct {
	Notifications []models.Notification
	UnreadCount   int64
}

func (s *AccountService) Notifications(ctx context.Context, userID primitive.ObjectID) (*Inbox, error) {
	list, err := s.store.Notifications.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.Internal(err, "list notifications")
	}
	unread, err := s.store.Notifications.CountUnread(ctx, userID)
	if err != nil {
		return nil, utils.Internal(err, "count unread notifications")
	}
	if list == nil {
		list = []models.Notification{}
	}
	return &Inbox{Notifications: list, UnreadCount: unread}, nil
}

func (s *AccountService) MarkNotificationsRead(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.store.Notifications.MarkAllRead(ctx, userID); err != nil {
		return utils.Internal(err, "mark notifications read")
	}
	return nil
}
