package services

import (
	"context"
	"errors"
	"strings"

	"go-storefront/models"
	"go-storefront/store"
	"go-storefront/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReviewService lets buyers rate products they purchased.
type ReviewService struct {
	reviews store.Reviews
	orders  store.Orders
	now     Clock
}

func NewReviewService(reviews store.Reviews, orders store.Orders) *ReviewService {
	return &ReviewService{reviews: reviews, orders: orders, now: systemClock}
}

// ProductReviews is a page of a product's reviews with its average rating, rounded to one decimal.
type ProductReviews struct {
	Paged[models.Review]
	AverageRating float64
}

func validRating(r int) bool {
	return r >= 1 && r <= 5
}

// Create adds the user's review. The user needs a non-cancelled order containing the product,
// and may review each product once.
func (s *ReviewService) Create(ctx context.Context, userID, productID primitive.ObjectID, rating int, comment string) (*models.Review, error) {
	comment = strings.TrimSpace(comment)
	if productID.IsZero() || rating == 0 || comment == "" {
		return nil, utils.Validation("Product ID, rating, and comment are required")
	}
	if !validRating(rating) {
		return nil, utils.Validation("Rating must be between 1 and 5")
	}

	bought, err := s.orders.HasPurchased(ctx, userID, productID)
	if err != nil {
		return nil, utils.Internal(err, "check purchase")
	}
	if !bought {
		return nil, utils.Forbidden("You can only review products you have officially purchased")
	}

	now := s.now()
	review := &models.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, utils.Conflict("You have already reviewed this product")
		}
		return nil, utils.Internal(err, "create review")
	}
	return review, nil
}

// Update changes the author's own review. Nil fields are kept.
func (s *ReviewService) Update(ctx context.Context, userID, id primitive.ObjectID, rating *int, comment *string) (*models.Review, error) {
	if rating != nil && !validRating(*rating) {
		return nil, utils.Validation("Rating must be between 1 and 5")
	}
	if comment != nil {
		trimmed := strings.TrimSpace(*comment)
		if trimmed == "" {
			return nil, utils.Validation("Comment cannot be empty")
		}
		comment = &trimmed
	}
	review, err := s.reviews.Update(ctx, id, userID, rating, comment)
	if err != nil {
		return nil, storeErr(err, "Review not found or unauthorized to edit", "update review")
	}
	return review, nil
}

func (s *ReviewService) Delete(ctx context.Context, userID, id primitive.ObjectID) error {
	if err := s.reviews.Delete(ctx, id, userID); err != nil {
		return storeErr(err, "Review not found or unauthorized to delete", "delete review")
	}
	return nil
}

// ForProduct returns a page of reviews, newest first, and the average over all of them.
func (s *ReviewService) ForProduct(ctx context.Context, productID primitive.ObjectID, page store.Page) (*ProductReviews, error) {
	items, total, err := s.reviews.ListByProduct(ctx, productID, page)
	if err != nil {
		return nil, utils.Internal(err, "list reviews")
	}
	avg, err := s.reviews.AverageRating(ctx, productID)
	if err != nil {
		return nil, utils.Internal(err, "average rating")
	}
	return &ProductReviews{Paged: paged(items, total, page), AverageRating: roundTo(avg, 1)}, nil
}
