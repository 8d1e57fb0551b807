package controllers

import (
	"net/http"

	"go-storefront/services"
	"go-storefront/utils"
)

// ReviewController handles product reviews
type ReviewController struct {
	Reviews *services.ReviewService
}

func NewReviewController(reviews *services.ReviewService) *ReviewController {
	return &ReviewController{Reviews: reviews}
}

type reviewRequest struct {
	ProductID string `json:"productId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

type reviewUpdateRequest struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

func (rc *ReviewController) CreateReview(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	var req reviewRequest
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if req.ProductID == "" {
		utils.WriteError(w, r, utils.Validation("Product ID, rating, and comment are required"))
		return
	}
	productID, err := objectID(req.ProductID, "productId")
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	review, err := rc.Reviews.Create(r.Context(), userID, productID, req.Rating, req.Comment)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, utils.H{"message": "Review added successfully", "review": review})
}

func (rc *ReviewController) UpdateReview(w http.ResponseWriter, r *http.Request) {
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
	var req reviewUpdateRequest
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	review, err := rc.Reviews.Update(r.Context(), userID, id, req.Rating, req.Comment)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.H{"message": "Review updated successfully", "review": review})
}

func (rc *ReviewController) DeleteReview(w http.ResponseWriter, r *http.Request) {
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
	if err := rc.Reviews.Delete(r.Context(), userID, id); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.H{"message": "Review deleted successfully"})
}

// GetProductReviews is public: a page of reviews plus the product's average rating
func (rc *ReviewController) GetProductReviews(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productId")
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	result, err := rc.Reviews.ForProduct(r.Context(), productID, pageFrom(r, services.ListPageSize))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	body := pageFields(result.Paged, "reviews", "totalReviews")
	body["averageRating"] = result.AverageRating
	utils.WriteSuccess(w, http.StatusOK, body)
}
