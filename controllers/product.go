package controllers

import (
	"net/http"

	"go-storefront/services"
	"go-storefront/utils"

	"github.com/gorilla/mux"
)

// ProductController serves the public catalog
type ProductController struct {
	Catalog *services.CatalogService
}

func NewProductController(catalog *services.CatalogService) *ProductController {
	return &ProductController{Catalog: catalog}
}

// GetProducts lists products, newest first
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	page, err := pc.Catalog.List(r.Context(), pageFrom(r, services.CatalogPageSize))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, pageFields(page, "products", "totalProducts"))
}

// SearchProducts matches ?keyword= against titles and descriptions
func (pc *ProductController) SearchProducts(w http.ResponseWriter, r *http.Request) {
	page, err := pc.Catalog.Search(r.Context(), r.URL.Query().Get("keyword"), pageFrom(r, services.CatalogPageSize))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, pageFields(page, "products", "totalProducts"))
}

func (pc *ProductController) GetProductsByCategory(w http.ResponseWriter, r *http.Request) {
	page, err := pc.Catalog.ByCategory(r.Context(), mux.Vars(r)["category"], pageFrom(r, services.CatalogPageSize))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, pageFields(page, "products", "totalProducts"))
}

// GetProductByID retrieves a single product
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	product, err := pc.Catalog.Get(r.Context(), id)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.H{"product": product})
}
