package store

import (
	"context"

	"go-storefront/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoCarts struct {
	col *mongo.Collection
}

func (r *mongoCarts) Get(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var cart models.Cart
	if err := r.col.FindOne(ctx, bson.M{"userId": userID}).Decode(&cart); err != nil {
		return nil, mapErr(err)
	}
	return &cart, nil
}

func (r *mongoCarts) SetItems(ctx context.Context, userID primitive.ObjectID, items []models.CartItem) (*models.Cart, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if items == nil {
		items = []models.CartItem{}
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var cart models.Cart
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"items": items, "updatedAt": now()}},
		opts,
	).Decode(&cart)
	if err != nil {
		return nil, mapErr(err)
	}
	return &cart, nil
}

func (r *mongoCarts) RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) (*models.Cart, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var cart models.Cart
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"userId": userID},
		bson.M{
			"$pull": bson.M{"items": bson.M{"productId": productID}},
			"$set":  bson.M{"updatedAt": now()},
		},
		returnAfter,
	).Decode(&cart)
	if err != nil {
		return nil, mapErr(err)
	}
	return &cart, nil
}

func (r *mongoCarts) Delete(ctx context.Context, userID primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.col.DeleteOne(ctx, bson.M{"userId": userID})
	return err
}

type mongoWishlists struct {
	col *mongo.Collection
}

func (r *mongoWishlists) Get(ctx context.Context, userID primitive.ObjectID) (*models.Wishlist, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var wishlist models.Wishlist
	if err := r.col.FindOne(ctx, bson.M{"userId": userID}).Decode(&wishlist); err != nil {
		return nil, mapErr(err)
	}
	return &wishlist, nil
}

func (r *mongoWishlists) AddItem(ctx context.Context, userID, productID primitive.ObjectID) (*models.Wishlist, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	// The filter only matches a wishlist that lacks the product; upserting on a miss either
	// creates the wishlist or collides with the unique userId index when the product is present.
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var wishlist models.Wishlist
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"userId": userID, "items": bson.M{"$ne": productID}},
		bson.M{
			"$push": bson.M{"items": productID},
			"$set":  bson.M{"updatedAt": now()},
		},
		opts,
	).Decode(&wishlist)
	if err != nil {
		return nil, mapErr(err)
	}
	return &wishlist, nil
}

func (r *mongoWishlists) RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) (*models.Wishlist, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var wishlist models.Wishlist
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"userId": userID},
		bson.M{"$pull": bson.M{"items": productID}, "$set": bson.M{"updatedAt": now()}},
		returnAfter,
	).Decode(&wishlist)
	if err != nil {
		return nil, mapErr(err)
	}
	return &wishlist, nil
}

func (r *mongoWishlists) Clear(ctx context.Context, userID primitive.ObjectID) (*models.Wishlist, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var wishlist models.Wishlist
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"items": bson.A{}, "updatedAt": now()}},
		returnAfter,
	).Decode(&wishlist)
	if err != nil {
		return nil, mapErr(err)
	}
	return &wishlist, nil
}

func (r *mongoWishlists) Delete(ctx context.Context, userID primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.col.DeleteOne(ctx, bson.M{"userId": userID})
	return err
}
