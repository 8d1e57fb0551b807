package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account roles
const (
	RoleUser   = "user"
	RoleVendor = "vendor"
	RoleAdmin  = "admin"
)

// User represents an account in the system. Vendors carry their store profile on the same document.
type User struct {
	ID                      primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name                    string             `bson:"name" json:"name"`
	Email                   string             `bson:"email" json:"email"`
	Password                string             `bson:"password,omitempty" json:"-"`
	GoogleID                string             `bson:"googleId,omitempty" json:"googleId,omitempty"`
	Picture                 string             `bson:"picture,omitempty" json:"picture,omitempty"`
	Role                    string             `bson:"role" json:"role"` // "user", "vendor" or "admin"
	StoreName               string             `bson:"storeName,omitempty" json:"storeName,omitempty"`
	StoreDescription        string             `bson:"storeDescription,omitempty" json:"storeDescription,omitempty"`
	Logo                    string             `bson:"logo,omitempty" json:"logo,omitempty"`
	Address                 string             `bson:"address,omitempty" json:"address,omitempty"`
	ResetPasswordOTP        string             `bson:"resetPasswordOTP,omitempty" json:"-"`
	ResetPasswordOTPExpires *time.Time         `bson:"resetPasswordOTPExpires,omitempty" json:"-"`
	CreatedAt               time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt               time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// HasPassword reports whether the account can log in with a password.
func (u *User) HasPassword() bool {
	return u.Password != ""
}

// StoreInfo is the vendor-editable part of a vendor account.
type StoreInfo struct {
	StoreName        string `bson:"storeName" json:"storeName"`
	StoreDescription string `bson:"storeDescription" json:"storeDescription"`
	Logo             string `bson:"logo" json:"logo"`
	Address          string `bson:"address" json:"address"`
}

// ProfileUpdate holds the optional profile fields a user may change.
type ProfileUpdate struct {
	Name    *string
	Picture *string
}
