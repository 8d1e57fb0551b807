package services

import (
	"context"
	"strings"

	"go-storefront/models"
	"go-storefront/store"
	"go-storefront/utils"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TopSellingLimit is the default size of the top-selling report.
const TopSellingLimit = 5

// VendorService is the vendor's back office: their products, reports and store profile.
// Callers must have checked the vendor role.
type VendorService struct {
	store  *store.Store
	logger zerolog.Logger
	now    Clock
}

func NewVendorService(st *store.Store, logger zerolog.Logger) *VendorService {
	return &VendorService{store: st, logger: logger, now: systemClock}
}

// NewProduct is the input for CreateProduct.
type NewProduct struct {
	Title       string
	Description string
	Category    string
	Price       float64
	ImageURL    string
	Stock       int
}

func (s *VendorService) CreateProduct(ctx context.Context, vendorID primitive.ObjectID, in NewProduct) (*models.Product, error) {
	in.Title, in.Description, in.Category = strings.TrimSpace(in.Title), strings.TrimSpace(in.Description), strings.TrimSpace(in.Category)
	if in.Title == "" || in.Description == "" || in.Category == "" {
		return nil, utils.Validation("Please provide all required fields")
	}
	if in.Price < 0 || in.Stock < 0 {
		return nil, utils.Validation("Price and stock cannot be negative")
	}
	now := s.now()
	p := &models.Product{
		VendorID:    vendorID,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
		Stock:       in.Stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Products.Create(ctx, p); err != nil {
		return nil, utils.Internal(err, "create product")
	}
	s.logger.Info().Str("vendor_id", vendorID.Hex()).Str("product_id", p.ID.Hex()).Msg("product created")
	return p, nil
}

func (s *VendorService) UpdateProduct(ctx context.Context, vendorID, id primitive.ObjectID, update models.ProductUpdate) (*models.Product, error) {
	if (update.Price != nil && *update.Price < 0) || (update.Stock != nil && *update.Stock < 0) {
		return nil, utils.Validation("Price and stock cannot be negative")
	}
	for _, field := range []*string{update.Title, update.Description, update.Category} {
		if field != nil && strings.TrimSpace(*field) == "" {
			return nil, utils.Validation("Title, description and category cannot be empty")
		}
	}
	p, err := s.store.Products.Update(ctx, id, vendorID, update)
	if err != nil {
		return nil, storeErr(err, "Product not found or unauthorized to update/delete", "update product")
	}
	return p, nil
}

func (s *VendorService) DeleteProduct(ctx context.Context, vendorID, id primitive.ObjectID) error {
	if err := s.store.Products.Delete(ctx, id, vendorID); err != nil {
		return storeErr(err, "Product not found or unauthorized to update/delete", "delete product")
	}
	s.logger.Info().Str("vendor_id", vendorID.Hex()).Str("product_id", id.Hex()).Msg("product deleted")
	return nil
}

func (s *VendorService) GetProduct(ctx context.Context, vendorID, id primitive.ObjectID) (*models.Product, error) {
	p, err := s.store.Products.FindOwned(ctx, id, vendorID)
	if err != nil {
		return nil, storeErr(err, "Product not found or unauthorized", "load product")
	}
	return p, nil
}

// ListProducts pages through the vendor's products, optionally matching search against the title.
func (s *VendorService) ListProducts(ctx context.Context, vendorID primitive.ObjectID, search string, page store.Page) (Paged[models.Product], error) {
	filter := store.ProductFilter{VendorID: vendorID, Title: strings.TrimSpace(search)}
	items, total, err := s.store.Products.List(ctx, filter, page)
	if err != nil {
		return Paged[models.Product]{}, utils.Internal(err, "list vendor products")
	}
	return paged(items, total, page), nil
}

// DashboardStats is the vendor dashboard summary. Revenue excludes cancelled orders.
type DashboardStats struct {
	TotalProducts int64   `json:"totalProducts"`
	TotalOrders   int64   `json:"totalOrders"`
	TotalRevenue  float64 `json:"totalRevenue"`
	PendingOrders int64   `json:"pendingOrders"`
}

func (s *VendorService) DashboardStats(ctx context.Context, vendorID primitive.ObjectID) (*DashboardStats, error) {
	products, err := s.store.Products.CountByVendor(ctx, vendorID)
	if err != nil {
		return nil, utils.Internal(err, "count products")
	}
	stats, err := s.store.Orders.VendorStats(ctx, vendorID)
	if err != nil {
		return nil, utils.Internal(err, "order stats")
	}
	return &DashboardStats{
		TotalProducts: products,
		TotalOrders:   stats.TotalOrders,
		TotalRevenue:  roundTo(stats.TotalRevenue, 2),
		PendingOrders: stats.PendingOrders,
	}, nil
}

// TopSelling ranks the vendor's products by units sold in non-cancelled orders.
func (s *VendorService) TopSelling(ctx context.Context, vendorID primitive.ObjectID, limit int) ([]models.ProductSales, error) {
	if limit < 1 {
		limit = TopSellingLimit
	}
	rows, err := s.store.Orders.TopSelling(ctx, vendorID, limit)
	if err != nil {
		return nil, utils.Internal(err, "top selling products")
	}
	if rows == nil {
		rows = []models.ProductSales{}
	}
	return rows, nil
}

// StoreInfo returns the vendor's store profile.
func (s *VendorService) StoreInfo(ctx context.Context, vendorID primitive.ObjectID) (*models.StoreInfo, error) {
	u, err := s.store.Users.FindByID(ctx, vendorID)
	if err != nil {
		return nil, storeErr(err, "Vendor profile not found", "load vendor")
	}
	return &models.StoreInfo{StoreName: u.StoreName, StoreDescription: u.StoreDescription, Logo: u.Logo, Address: u.Address}, nil
}

// UpdateStoreInfo replaces the store profile. The store name is required.
func (s *VendorService) UpdateStoreInfo(ctx context.Context, vendorID primitive.ObjectID, info models.StoreInfo) (*models.StoreInfo, error) {
	info.StoreName = strings.TrimSpace(info.StoreName)
	if info.StoreName == "" {
		return nil, utils.Validation("Store name is required")
	}
	u, err := s.store.Users.UpdateStore(ctx, vendorID, info)
	if err != nil {
		return nil, storeErr(err, "Vendor profile not found", "update store")
	}
	return &models.StoreInfo{StoreName: u.StoreName, StoreDescription: u.StoreDescription, Logo: u.Logo, Address: u.Address}, nil
}
