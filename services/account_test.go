package services

import (
	"testing"
	"time"

	"go-storefront/models"
	"go-storefront/store"
	"go-storefront/utils"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newAccountService(f *fixture) *AccountService {
	svc := NewAccountService(f.store, zerolog.Nop())
	svc.now = f.clock.Now
	return svc
}

func address(street string, isDefault bool) models.Address {
	return models.Address{Street: street, City: "Lagos", State: "LA", PostalCode: "100001", Country: "NG", IsDefault: isDefault}
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	svc := newAccountService(f)
	u := f.user(t, "ada@x.io", models.RoleUser)

	name := "  Ada L. "
	got, err := svc.UpdateProfile(f.ctx, u.ID, &name, nil)
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", got.Name)
	assert.Equal(t, u.Email, got.Email)

	blank := " "
	_, err = svc.UpdateProfile(f.ctx, u.ID, &blank, nil)
	assertKind(t, err, utils.KindValidation)
	_, err = svc.UpdateProfile(f.ctx, primitive.NewObjectID(), &name, nil)
	assertKind(t, err, utils.KindNotFound)
}

func TestDeleteAccountCascades(t *testing.T) {
	f := newFixture(t)
	svc := newAccountService(f)
	u := f.user(t, "ada@x.io", models.RoleUser)
	p := f.product(t, primitive.NewObjectID(), "Shoe", 10, 5)

	_, err := f.store.Carts.SetItems(f.ctx, u.ID, []models.CartItem{{ProductID: p.ID, Quantity: 1}})
	require.NoError(t, err)
	_, err = f.store.Wishlists.AddItem(f.ctx, u.ID, p.ID)
	require.NoError(t, err)
	_, err = svc.AddAddress(f.ctx, u.ID, address("1 Main", true))
	require.NoError(t, err)
	require.NoError(t, f.store.Notifications.Create(f.ctx, &models.Notification{UserID: u.ID, Title: "hi", Type: models.NotificationSystem}))
	order := &models.Order{UserID: u.ID, VendorID: p.VendorID, Status: models.OrderPending}
	require.NoError(t, f.store.Orders.Create(f.ctx, order))

	require.NoError(t, svc.DeleteAccount(f.ctx, u.ID))

	_, err = f.store.Users.FindByID(f.ctx, u.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = f.store.Carts.Get(f.ctx, u.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = f.store.Wishlists.Get(f.ctx, u.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	addrs, err := svc.Addresses(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, addrs)
	inbox, err := svc.Notifications(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, inbox.Notifications)

	_, err = f.store.Orders.FindForUser(f.ctx, order.ID, u.ID)
	assert.NoError(t, err, "orders are retained")

	assertKind(t, svc.DeleteAccount(f.ctx, u.ID), utils.KindNotFound)
}

func TestAddressBookKeepsOneDefault(t *testing.T) {
	f := newFixture(t)
	svc := newAccountService(f)
	u := f.user(t, "ada@x.io", models.RoleUser)
	other := f.user(t, "other@x.io", models.RoleUser)

	_, err := svc.AddAddress(f.ctx, u.ID, models.Address{Street: "1 Main"})
	assertKind(t, err, utils.KindValidation)

	home, err := svc.AddAddress(f.ctx, u.ID, address("1 Main", true))
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	work, err := svc.AddAddress(f.ctx, u.ID, address("2 Office", false))
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	cabin, err := svc.AddAddress(f.ctx, u.ID, address("3 Lake", true))
	require.NoError(t, err)

	list, err := svc.Addresses(f.ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []primitive.ObjectID{cabin.ID, work.ID, home.ID}, []primitive.ObjectID{list[0].ID, list[1].ID, list[2].ID})
	assert.True(t, list[0].IsDefault)
	assert.False(t, list[2].IsDefault, "previous default cleared")

	yes := true
	updated, err := svc.UpdateAddress(f.ctx, u.ID, work.ID, models.AddressUpdate{IsDefault: &yes})
	require.NoError(t, err)
	assert.True(t, updated.IsDefault)
	list, err = svc.Addresses(f.ctx, u.ID)
	require.NoError(t, err)
	defaults := 0
	for _, a := range list {
		if a.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)

	_, err = svc.UpdateAddress(f.ctx, other.ID, work.ID, models.AddressUpdate{IsDefault: &yes})
	assert.Equal(t, "Address not found", assertKind(t, err, utils.KindNotFound).Message)
	assertKind(t, svc.DeleteAddress(f.ctx, other.ID, work.ID), utils.KindNotFound)
	require.NoError(t, svc.DeleteAddress(f.ctx, u.ID, work.ID))
}

func TestUpdateAddressUnknownIDKeepsDefault(t *testing.T) {
	f := newFixture(t)
	svc := newAccountService(f)
	u := f.user(t, "ada@x.io", models.RoleUser)
	other := f.user(t, "other@x.io", models.RoleUser)

	home, err := svc.AddAddress(f.ctx, u.ID, address("1 Main", true))
	require.NoError(t, err)
	foreign, err := svc.AddAddress(f.ctx, other.ID, address("9 Elsewhere", false))
	require.NoError(t, err)

	yes := true
	for _, id := range []primitive.ObjectID{primitive.NewObjectID(), foreign.ID} {
		_, err = svc.UpdateAddress(f.ctx, u.ID, id, models.AddressUpdate{IsDefault: &yes})
		assertKind(t, err, utils.KindNotFound)
	}

	list, err := svc.Addresses(f.ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, home.ID, list[0].ID)
	assert.True(t, list[0].IsDefault)

	list, err = svc.Addresses(f.ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].IsDefault)
}

func TestNotificationsInbox(t *testing.T) {
	f := newOrderFixture(t, nil)
	svc := newAccountService(f.fixture)
	shoe := f.product(t, f.vendorA.ID, "Shoe", 10, 5)
	order := f.placeOne(t, shoe, 1)
	_, err := f.orders.UpdateStatus(f.ctx, f.vendorA.ID, order.ID, models.OrderProcessing)
	require.NoError(t, err)

	inbox, err := svc.Notifications(f.ctx, f.buyer.ID)
	require.NoError(t, err)
	require.Len(t, inbox.Notifications, 2)
	assert.EqualValues(t, 2, inbox.UnreadCount)

	require.NoError(t, svc.MarkNotificationsRead(f.ctx, f.buyer.ID))
	inbox, err = svc.Notifications(f.ctx, f.buyer.ID)
	require.NoError(t, err)
	assert.Zero(t, inbox.UnreadCount)
	assert.Len(t, inbox.Notifications, 2)
}
