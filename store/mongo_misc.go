package store

import (
	"context"

	"go-storefront/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoAddresses struct {
	col *mongo.Collection
}

func (r *mongoAddresses) List(ctx context.Context, userID primitive.ObjectID) ([]models.Address, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "isDefault", Value: -1}, {Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Address](ctx, cur)
}

func (r *mongoAddresses) Create(ctx context.Context, address *models.Address) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if address.ID.IsZero() {
		address.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, address)
	return mapErr(err)
}

func (r *mongoAddresses) Update(ctx context.Context, id, userID primitive.ObjectID, update models.AddressUpdate) (*models.Address, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	set := bson.M{"updatedAt": now()}
	if update.Street != nil {
		set["street"] = *update.Street
	}
	if update.City != nil {
		set["city"] = *update.City
	}
	if update.State != nil {
		set["state"] = *update.State
	}
	if update.PostalCode != nil {
		set["postalCode"] = *update.PostalCode
	}
	if update.Country != nil {
		set["country"] = *update.Country
	}
	if update.IsDefault != nil {
		set["isDefault"] = *update.IsDefault
	}
	var address models.Address
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id, "userId": userID}, bson.M{"$set": set}, returnAfter).Decode(&address)
	if err != nil {
		return nil, mapErr(err)
	}
	return &address, nil
}

func (r *mongoAddresses) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
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

func (r *mongoAddresses) ClearDefault(ctx context.Context, userID primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.col.UpdateMany(ctx, bson.M{"userId": userID, "isDefault": true}, bson.M{"$set": bson.M{"isDefault": false}})
	return err
}

func (r *mongoAddresses) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.col.DeleteMany(ctx, bson.M{"userId": userID})
	return err
}

type mongoNotifications struct {
	col *mongo.Collection
}

func (r *mongoNotifications) Create(ctx context.Context, n *models.Notification) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, n)
	return err
}

func (r *mongoNotifications) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"userId": userID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Notification](ctx, cur)
}

func (r *mongoNotifications) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return r.col.CountDocuments(ctx, bson.M{"userId": userID, "isRead": false})
}

func (r *mongoNotifications) MarkAllRead(ctx context.Context, userID primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.col.UpdateMany(ctx, bson.M{"userId": userID, "isRead": false}, bson.M{"$set": bson.M{"isRead": true}})
	return err
}

func (r *mongoNotifications) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.col.DeleteMany(ctx, bson.M{"userId": userID})
	return err
}
