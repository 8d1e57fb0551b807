package store

import (
	"context"
	"regexp"

	"go-storefront/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoProducts struct {
	col *mongo.Collection
}

func (r *mongoProducts) Create(ctx context.Context, product *models.Product) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, product)
	return mapErr(err)
}

func (r *mongoProducts) findOne(ctx context.Context, filter bson.M) (*models.Product, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var product models.Product
	if err := r.col.FindOne(ctx, filter).Decode(&product); err != nil {
		return nil, mapErr(err)
	}
	return &product, nil
}

func (r *mongoProducts) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoProducts) FindOwned(ctx context.Context, id, vendorID primitive.ObjectID) (*models.Product, error) {
	return r.findOne(ctx, bson.M{"_id": id, "vendorId": vendorID})
}

func ciContains(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
}

func (f ProductFilter) query() bson.M {
	filter := bson.M{}
	if !f.VendorID.IsZero() {
		filter["vendorId"] = f.VendorID
	}
	if f.Keyword != "" {
		filter["$or"] = bson.A{
			bson.M{"title": ciContains(f.Keyword)},
			bson.M{"description": ciContains(f.Keyword)},
		}
	}
	if f.Title != "" {
		filter["title"] = ciContains(f.Title)
	}
	if f.Category != "" {
		filter["category"] = bson.M{"$regex": "^" + regexp.QuoteMeta(f.Category) + "$", "$options": "i"}
	}
	return filter
}

func (r *mongoProducts) List(ctx context.Context, filter ProductFilter, page Page) ([]models.Product, int64, error) {
	return findPage[models.Product](ctx, r.col, filter.query(), page, bson.D{{Key: "createdAt", Value: -1}})
}

func (r *mongoProducts) Update(ctx context.Context, id, vendorID primitive.ObjectID, update models.ProductUpdate) (*models.Product, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	set := bson.M{"updatedAt": now()}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Category != nil {
		set["category"] = *update.Category
	}
	if update.Price != nil {
		set["price"] = *update.Price
	}
	if update.ImageURL != nil {
		set["imageUrl"] = *update.ImageURL
	}
	if update.Stock != nil {
		set["stock"] = *update.Stock
	}

	var product models.Product
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id, "vendorId": vendorID}, bson.M{"$set": set}, returnAfter).Decode(&product)
	if err != nil {
		return nil, mapErr(err)
	}
	return &product, nil
}

func (r *mongoProducts) Delete(ctx context.Context, id, vendorID primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "vendorId": vendorID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoProducts) Reserve(ctx context.Context, id primitive.ObjectID, qty int) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"stock": -qty}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *mongoProducts) Restock(ctx context.Context, id primitive.ObjectID, qty int) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"stock": qty}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoProducts) CountByVendor(ctx context.Context, vendorID primitive.ObjectID) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return r.col.CountDocuments(ctx, bson.M{"vendorId": vendorID})
}
