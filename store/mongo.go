package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names
const (
	UsersCollection         = "users"
	ProductsCollection      = "products"
	CartsCollection         = "carts"
	WishlistsCollection     = "wishlists"
	OrdersCollection        = "orders"
	ReviewsCollection       = "reviews"
	AddressesCollection     = "addresses"
	NotificationsCollection = "notifications"
)

// opTimeout bounds every single database call.
const opTimeout = 5 * time.Second

// ConnectDB opens a MongoDB client and checks the connection with a ping.
func ConnectDB(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// NewMongo returns the repositories backed by the given database.
func NewMongo(db *mongo.Database) *Store {
	return &Store{
		Users:         &mongoUsers{col: db.Collection(UsersCollection)},
		Products:      &mongoProducts{col: db.Collection(ProductsCollection)},
		Carts:         &mongoCarts{col: db.Collection(CartsCollection)},
		Wishlists:     &mongoWishlists{col: db.Collection(WishlistsCollection)},
		Orders:        &mongoOrders{col: db.Collection(OrdersCollection), products: db.Collection(ProductsCollection)},
		Reviews:       &mongoReviews{col: db.Collection(ReviewsCollection)},
		Addresses:     &mongoAddresses{col: db.Collection(AddressesCollection)},
		Notifications: &mongoNotifications{col: db.Collection(NotificationsCollection)},
	}
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, opTimeout)
}

// mapErr converts driver errors into the package sentinels.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}

func findOptions(page Page, sort bson.D) *options.FindOptions {
	opts := options.Find().SetSort(sort)
	if page.Limit > 0 {
		opts.SetSkip(page.Skip()).SetLimit(int64(page.Limit))
	}
	return opts
}

func decodeAll[T any](ctx context.Context, cur *mongo.Cursor) ([]T, error) {
	defer cur.Close(ctx)
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// findPage runs a filtered, sorted, paged find together with the total count of the filter.
func findPage[T any](ctx context.Context, col *mongo.Collection, filter bson.M, page Page, sort bson.D) ([]T, int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	cur, err := col.Find(ctx, filter, findOptions(page, sort))
	if err != nil {
		return nil, 0, err
	}
	items, err := decodeAll[T](ctx, cur)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

var returnAfter = options.FindOneAndUpdate().SetReturnDocument(options.After)

func now() time.Time {
	return time.Now().UTC()
}
