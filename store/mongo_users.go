package store

import (
	"context"
	"regexp"
	"time"

	"go-storefront/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoUsers struct {
	col *mongo.Collection
}

func (r *mongoUsers) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, user)
	return mapErr(err)
}

func (r *mongoUsers) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var user models.User
	if err := r.col.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}

func (r *mongoUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByEmail matches the address case-insensitively. Emails are stored lower-cased on signup.
func (r *mongoUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": bson.M{"$regex": "^" + regexp.QuoteMeta(email) + "$", "$options": "i"}})
}

func (r *mongoUsers) update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	set["updatedAt"] = now()
	var user models.User
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, returnAfter).Decode(&user)
	if err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}

func (r *mongoUsers) UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) (*models.User, error) {
	set := bson.M{}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Picture != nil {
		set["picture"] = *update.Picture
	}
	return r.update(ctx, id, set)
}

func (r *mongoUsers) UpdateStore(ctx context.Context, id primitive.ObjectID, info models.StoreInfo) (*models.User, error) {
	return r.update(ctx, id, bson.M{
		"storeName":        info.StoreName,
		"storeDescription": info.StoreDescription,
		"logo":             info.Logo,
		"address":          info.Address,
	})
}

func (r *mongoUsers) LinkGoogle(ctx context.Context, id primitive.ObjectID, googleID, picture string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{"_id": id, "googleId": bson.M{"$exists": false}}
	set := bson.M{"googleId": googleID, "updatedAt": now()}
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	if picture != "" {
		_, err = r.col.UpdateOne(ctx, bson.M{"_id": id, "picture": bson.M{"$in": bson.A{nil, ""}}},
			bson.M{"$set": bson.M{"picture": picture}})
	}
	return mapErr(err)
}

func (r *mongoUsers) SetResetOTP(ctx context.Context, id primitive.ObjectID, otpHash string, expires time.Time) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"resetPasswordOTP":        otpHash,
		"resetPasswordOTPExpires": expires,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUsers) ConsumeResetOTP(ctx context.Context, id primitive.ObjectID, otpHash, passwordHash string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "resetPasswordOTP": otpHash},
		bson.M{
			"$set":   bson.M{"password": passwordHash, "updatedAt": now()},
			"$unset": bson.M{"resetPasswordOTP": "", "resetPasswordOTPExpires": ""},
		})
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return ErrStaleState
	}
	return nil
}

func (r *mongoUsers) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
