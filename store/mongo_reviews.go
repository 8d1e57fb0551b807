package store

import (
	"context"

	"go-storefront/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoReviews struct {
	col *mongo.Collection
}

// Create relies on the unique (userId, productId) index for ErrDuplicate.
func (r *mongoReviews) Create(ctx context.Context, review *models.Review) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, review)
	return mapErr(err)
}

func (r *mongoReviews) Update(ctx context.Context, id, userID primitive.ObjectID, rating *int, comment *string) (*models.Review, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	set := bson.M{"updatedAt": now()}
	if rating != nil {
		set["rating"] = *rating
	}
	if comment != nil {
		set["comment"] = *comment
	}
	var review models.Review
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id, "userId": userID}, bson.M{"$set": set}, returnAfter).Decode(&review)
	if err != nil {
		return nil, mapErr(err)
	}
	return &review, nil
}

func (r *mongoReviews) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoReviews) ListByProduct(ctx context.Context, productID primitive.ObjectID, page Page) ([]models.Review, int64, error) {
	return findPage[models.Review](ctx, r.col, bson.M{"productId": productID}, page, bson.D{{Key: "createdAt", Value: -1}})
}

func (r *mongoReviews) AverageRating(ctx context.Context, productID primitive.ObjectID) (float64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cur, err := r.col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"productId": productID}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "avg": bson.M{"$avg": "$rating"}}}},
	})
	if err != nil {
		return 0, err
	}
	rows, err := decodeAll[struct {
		Avg float64 `bson:"avg"`
	}](ctx, cur)
	if err != nil || len(rows) == 0 {
		return 0, err
	}
	return rows[0].Avg, nil
}
