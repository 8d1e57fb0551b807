package controllers

import (
	"net/http"
	"strconv"

	"go-storefront/models"
	"go-storefront/services"
	"go-storefront/utils"
)

// VendorController serves the vendor back office. Routes are mounted behind the vendor role check.
type VendorController struct {
	Vendor *services.VendorService
	Orders *services.OrderService
}

func NewVendorController(vendor *services.VendorService, orders *services.OrderService) *VendorController {
	return &VendorController{Vendor: vendor, Orders: orders}
}

type productRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Category    string   `json:"category" validate:"required"`
	Price       *float64 `json:"price" validate:"required"`
	ImageURL    string   `json:"imageUrl"`
	Stock       *int     `json:"stock" validate:"required"`
}

type productUpdateRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price"`
	ImageURL    *string  `json:"imageUrl"`
	Stock       *int     `json:"stock"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type storeRequest struct {
	StoreName        string `json:"storeName" validate:"required"`
	StoreDescription string `json:"storeDescription"`
	Logo             string `json:"logo"`
	Address          string `json:"address"`
}

func (vc *VendorController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	vendorID, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	var req productRequest
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	product, err := vc.Vendor.CreateProduct(r.Context(), vendorID, services.NewProduct{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       *req.Price,
		ImageURL:    req.ImageURL,
		Stock:       *req.Stock,
	})
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, utils.H{"product": product})
}

func (vc *VendorController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	vendorID, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	var req productUpdateRequest
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	product, err := vc.Vendor.UpdateProduct(r.Context(), vendorID, id, models.ProductUpdate{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
	})
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.H{"product": product})
}

func (vc *VendorController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	vendorID, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if err := vc.Vendor.DeleteProduct(r.Context(), vendorID, id); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.H{"message": "Product deleted successfully"})
}

func (vc *VendorController) GetProduct(w http.ResponseWriter, r *http.Request) {
	vendorID, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	product, err := vc.Vendor.GetProduct(r.Context(), vendorID, id)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.H{"product": product})
}

// GetProducts lists the vendor's products; ?search= filters by title
func (vc *VendorController) GetProducts(w http.ResponseWriter, r *http.Request) {
	vendorID, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	page, err := vc.Vendor.ListProducts(r.Context(), vendorID, r.URL.Query().Get("search"), pageFrom(r, services.ListPageSize))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, pageFields(page, "products", "totalProducts"))
}

func (vc *VendorController) GetOrders(w http.ResponseWriter, r *http.Request) {
	vendorID, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	page, err := vc.Orders.ListForVendor(r.Context(), vendorID, pageFrom(r, services.ListPageSize))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, pageFields(page, "orders", "totalOrders"))
}

func (vc *VendorController) GetOrder(w http.ResponseWriter, r *http.Request) {
	vendorID, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	order, err := vc.Orders.GetForVendor(r.Context(), vendorID, id)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.H{"order": order})
}

func (vc *VendorController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	vendorID, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	var req statusRequest
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, r, utils.Validation("Invalid status value"))
		return
	}
	order, err := vc.Orders.UpdateStatus(r.Context(), vendorID, id, models.OrderStatus(req.Status))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.H{"order": order})
}

func (vc *VendorController) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	vendorID, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	stats, err := vc.Vendor.DashboardStats(r.Context(), vendorID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.H{"stats": stats})
}

// GetTopSellingProducts ranks products by units sold; ?limit= defaults to 5
func (vc *VendorController) GetTopSellingProducts(w http.ResponseWriter, r *http.Request) {
	vendorID, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	top, err := vc.Vendor.TopSelling(r.Context(), vendorID, limit)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.H{"topProducts": top})
}

func (vc *VendorController) GetStore(w http.ResponseWriter, r *http.Request) {
	vendorID, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	info, err := vc.Vendor.StoreInfo(r.Context(), vendorID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.H{"store": info})
}

func (vc *VendorController) UpdateStore(w http.ResponseWriter, r *http.Request) {
	vendorID, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	var req storeRequest
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	info, err := vc.Vendor.UpdateStoreInfo(r.Context(), vendorID, models.StoreInfo{
		StoreName:        req.StoreName,
		StoreDescription: req.StoreDescription,
		Logo:             req.Logo,
		Address:          req.Address,
	})
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.H{"store": info})
}
