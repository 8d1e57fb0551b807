package store

import (
	"context"
	"errors"
	"math"

	"go-storefront/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoOrders struct {
	col      *mongo.Collection
	products *mongo.Collection
}

func (r *mongoOrders) Create(ctx context.Context, order *models.Order) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, order)
	return mapErr(err)
}

func (r *mongoOrders) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *mongoOrders) findOne(ctx context.Context, filter bson.M) (*models.Order, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var order models.Order
	if err := r.col.FindOne(ctx, filter).Decode(&order); err != nil {
		return nil, mapErr(err)
	}
	return &order, nil
}

func (r *mongoOrders) FindForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Order, error) {
	return r.findOne(ctx, bson.M{"_id": id, "userId": userID})
}

func (r *mongoOrders) FindForVendor(ctx context.Context, id, vendorID primitive.ObjectID) (*models.Order, error) {
	return r.findOne(ctx, bson.M{"_id": id, "vendorId": vendorID})
}

var newestOrders = bson.D{{Key: "createdAt", Value: -1}}

func (r *mongoOrders) ListByUser(ctx context.Context, userID primitive.ObjectID, page Page) ([]models.Order, int64, error) {
	return findPage[models.Order](ctx, r.col, bson.M{"userId": userID}, page, newestOrders)
}

func (r *mongoOrders) ListByVendor(ctx context.Context, vendorID primitive.ObjectID, page Page) ([]models.Order, int64, error) {
	return findPage[models.Order](ctx, r.col, bson.M{"vendorId": vendorID}, page, newestOrders)
}

func (r *mongoOrders) Transition(ctx context.Context, id primitive.ObjectID, from []models.OrderStatus, to models.OrderStatus) (*models.Order, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{"_id": id}
	if len(from) > 0 {
		filter["status"] = bson.M{"$in": from}
	}
	var order models.Order
	err := r.col.FindOneAndUpdate(ctx, filter,
		bson.M{"$set": bson.M{"status": to, "updatedAt": now()}}, returnAfter).Decode(&order)
	if err == nil {
		return &order, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	// Tell a missing order apart from one whose status moved on.
	n, cerr := r.col.CountDocuments(ctx, bson.M{"_id": id})
	if cerr != nil {
		return nil, cerr
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrStaleState
}

func (r *mongoOrders) HasPurchased(ctx context.Context, userID, productID primitive.ObjectID) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{
		"userId":          userID,
		"items.productId": productID,
		"status":          bson.M{"$ne": models.OrderCancelled},
	})
	return n > 0, err
}

func (r *mongoOrders) VendorStats(ctx context.Context, vendorID primitive.ObjectID) (models.OrderStats, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"vendorId": vendorID}}},
		{{Key: "$group", Value: bson.M{
			"_id":         nil,
			"totalOrders": bson.M{"$sum": 1},
			"pendingOrders": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$status", models.OrderPending}}, 1, 0},
			}},
			"totalRevenue": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$ne": bson.A{"$status", models.OrderCancelled}}, "$totalAmount", 0},
			}},
		}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return models.OrderStats{}, err
	}
	rows, err := decodeAll[struct {
		TotalOrders   int64   `bson:"totalOrders"`
		PendingOrders int64   `bson:"pendingOrders"`
		TotalRevenue  float64 `bson:"totalRevenue"`
	}](ctx, cur)
	if err != nil || len(rows) == 0 {
		return models.OrderStats{}, err
	}
	return models.OrderStats{
		TotalOrders:   rows[0].TotalOrders,
		PendingOrders: rows[0].PendingOrders,
		TotalRevenue:  math.Round(rows[0].TotalRevenue*100) / 100,
	}, nil
}

func (r *mongoOrders) TopSelling(ctx context.Context, vendorID primitive.ObjectID, limit int) ([]models.ProductSales, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"vendorId": vendorID, "status": bson.M{"$ne": models.OrderCancelled}}}},
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$group", Value: bson.M{
			"_id":          "$items.productId",
			"totalSold":    bson.M{"$sum": "$items.quantity"},
			"totalRevenue": bson.M{"$sum": bson.M{"$multiply": bson.A{"$items.price", "$items.quantity"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "totalSold", Value: -1}}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         r.products.Name(),
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "product",
		}}},
		bson.D{{Key: "$unwind", Value: "$product"}},
		bson.D{{Key: "$project", Value: bson.M{
			"totalSold":    1,
			"totalRevenue": 1,
			"title":        "$product.title",
			"imageUrl":     "$product.imageUrl",
			"price":        "$product.price",
			"stock":        "$product.stock",
		}}},
	)

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.ProductSales](ctx, cur)
}
