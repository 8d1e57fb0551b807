package services

import (
	"context"
	"strings"

	"go-storefront/models"
	"go-storefront/store"
	"go-storefront/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CatalogService is the public, read-only view of the product catalog. Listings are newest first.
type CatalogService struct {
	products store.Products
}

func NewCatalogService(products store.Products) *CatalogService {
	return &CatalogService{products: products}
}

func (s *CatalogService) list(ctx context.Context, filter store.ProductFilter, page store.Page) (Paged[models.Product], error) {
	items, total, err := s.products.List(ctx, filter, page)
	if err != nil {
		return Paged[models.Product]{}, utils.Internal(err, "list products")
	}
	return paged(items, total, page), nil
}

func (s *CatalogService) List(ctx context.Context, page store.Page) (Paged[models.Product], error) {
	return s.list(ctx, store.ProductFilter{}, page)
}

// Search matches keyword against title and description, case-insensitively.
func (s *CatalogService) Search(ctx context.Context, keyword string, page store.Page) (Paged[models.Product], error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return Paged[models.Product]{}, utils.Validation("Please provide a search keyword")
	}
	return s.list(ctx, store.ProductFilter{Keyword: keyword}, page)
}

// ByCategory is a case-insensitive exact match on the category.
func (s *CatalogService) ByCategory(ctx context.Context, category string, page store.Page) (Paged[models.Product], error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return Paged[models.Product]{}, utils.Validation("Please provide a category")
	}
	return s.list(ctx, store.ProductFilter{Category: category}, page)
}

func (s *CatalogService) Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Product not found", "load product")
	}
	return p, nil
}
