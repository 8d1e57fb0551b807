package services

import (
	"testing"

	"go-storefront/models"
	"go-storefront/utils"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVendorProductCRUD(t *testing.T) {
	f := newFixture(t)
	svc := NewVendorService(f.store, zerolog.Nop())
	svc.now = f.clock.Now
	vendor := f.user(t, "v@x.io", models.RoleVendor)
	rival := f.user(t, "r@x.io", models.RoleVendor)

	_, err := svc.CreateProduct(f.ctx, vendor.ID, NewProduct{Title: "Shoe", Category: "Shoes", Price: 10})
	assertKind(t, err, utils.KindValidation)
	_, err = svc.CreateProduct(f.ctx, vendor.ID, NewProduct{Title: "Shoe", Description: "d", Category: "Shoes", Price: -1})
	assertKind(t, err, utils.KindValidation)

	p, err := svc.CreateProduct(f.ctx, vendor.ID, NewProduct{Title: "Shoe", Description: "d", Category: "Shoes", Price: 10, Stock: 3})
	require.NoError(t, err)
	assert.Equal(t, vendor.ID, p.VendorID)

	price := 12.5
	updated, err := svc.UpdateProduct(f.ctx, vendor.ID, p.ID, models.ProductUpdate{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 12.5, updated.Price)
	assert.Equal(t, "Shoe", updated.Title)

	negative := -3
	_, err = svc.UpdateProduct(f.ctx, vendor.ID, p.ID, models.ProductUpdate{Stock: &negative})
	assertKind(t, err, utils.KindValidation)

	_, err = svc.UpdateProduct(f.ctx, rival.ID, p.ID, models.ProductUpdate{Price: &price})
	assert.Equal(t, "Product not found or unauthorized to update/delete", assertKind(t, err, utils.KindNotFound).Message)
	assertKind(t, svc.DeleteProduct(f.ctx, rival.ID, p.ID), utils.KindNotFound)
	_, err = svc.GetProduct(f.ctx, rival.ID, p.ID)
	assertKind(t, err, utils.KindNotFound)

	got, err := svc.GetProduct(f.ctx, vendor.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	require.NoError(t, svc.DeleteProduct(f.ctx, vendor.ID, p.ID))
	_, err = svc.GetProduct(f.ctx, vendor.ID, p.ID)
	assertKind(t, err, utils.KindNotFound)
}

func TestVendorListProducts(t *testing.T) {
	f := newFixture(t)
	svc := NewVendorService(f.store, zerolog.Nop())
	vendor := f.user(t, "v@x.io", models.RoleVendor)
	rival := f.user(t, "r@x.io", models.RoleVendor)
	f.product(t, vendor.ID, "Red Shoe", 10, 1)
	f.product(t, vendor.ID, "Blue Hat", 10, 1)
	f.product(t, rival.ID, "Red Scarf", 10, 1)

	all, err := svc.ListProducts(f.ctx, vendor.ID, "", PageOf(1, 0, ListPageSize))
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Total)

	red, err := svc.ListProducts(f.ctx, vendor.ID, "red", PageOf(1, 0, ListPageSize))
	require.NoError(t, err)
	require.Len(t, red.Items, 1)
	assert.Equal(t, "Red Shoe", red.Items[0].Title)
}

func TestVendorDashboard(t *testing.T) {
	f := newOrderFixture(t, nil)
	svc := NewVendorService(f.store, zerolog.Nop())
	shoe := f.product(t, f.vendorA.ID, "Shoe", 10, 20)
	hat := f.product(t, f.vendorA.ID, "Hat", 4.25, 20)
	f.product(t, f.vendorA.ID, "Unsold", 1, 20)

	f.placeOne(t, shoe, 3)
	shipped := f.placeOne(t, hat, 2)
	_, err := f.orders.UpdateStatus(f.ctx, f.vendorA.ID, shipped.ID, models.OrderShipped)
	require.NoError(t, err)
	cancelled := f.placeOne(t, hat, 10)
	_, err = f.orders.Cancel(f.ctx, f.buyer.ID, cancelled.ID)
	require.NoError(t, err)

	stats, err := svc.DashboardStats(f.ctx, f.vendorA.ID)
	require.NoError(t, err)
	assert.Equal(t, &DashboardStats{TotalProducts: 3, TotalOrders: 3, TotalRevenue: 38.5, PendingOrders: 1}, stats)

	top, err := svc.TopSelling(f.ctx, f.vendorA.ID, 0)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, shoe.ID, top[0].ProductID)
	assert.Equal(t, 3, top[0].TotalSold)
	assert.Equal(t, "Shoe", top[0].Title)
	assert.Equal(t, 2, top[1].TotalSold, "cancelled orders do not count")

	empty, err := svc.TopSelling(f.ctx, f.vendorB.ID, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestVendorStoreInfo(t *testing.T) {
	f := newFixture(t)
	svc := NewVendorService(f.store, zerolog.Nop())
	vendor := f.user(t, "v@x.io", models.RoleVendor)

	_, err := svc.UpdateStoreInfo(f.ctx, vendor.ID, models.StoreInfo{StoreName: "  "})
	assertKind(t, err, utils.KindValidation)

	info, err := svc.UpdateStoreInfo(f.ctx, vendor.ID, models.StoreInfo{StoreName: "Ada's", Logo: "logo.png"})
	require.NoError(t, err)
	assert.Equal(t, "Ada's", info.StoreName)

	got, err := svc.StoreInfo(f.ctx, vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, info, got)
}
