// Package model contains the bson document models persisted in mongo and
// their mappings to domain entities. Entities stay free of driver types.
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"chatline/internal/domain/entity"
)

// User is the bson document stored in the users collection. Field names
// mirror the store schema the rest of the product reads.
type User struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty"`
	Username       string               `bson:"username"`
	Email          string               `bson:"email"`
	Password       string               `bson:"password"`
	OTP            string               `bson:"otp"`
	IsVerified     bool                 `bson:"isVerified"`
	Avatar         string               `bson:"avatar"`
	Status         string               `bson:"status"`
	LastSeen       time.Time            `bson:"lastSeen"`
	Friends        []primitive.ObjectID `bson:"friends"`
	FriendRequests []primitive.ObjectID `bson:"friendRequests"`
	CreatedAt      time.Time            `bson:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt"`
}

// FromUserEntity maps a domain user onto its document model. References that
// are not valid object ids are dropped rather than corrupting the document.
func FromUserEntity(user *entity.User) (*User, error) {
	doc := &User{
		Username:       user.Username,
		Email:          user.Email,
		Password:       user.PasswordHash,
		OTP:            user.OTPHash,
		IsVerified:     user.IsVerified,
		Avatar:         user.Avatar,
		Status:         string(user.Status),
		LastSeen:       user.LastSeen,
		Friends:        toObjectIDs(user.Friends),
		FriendRequests: toObjectIDs(user.FriendRequests),
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}

	if user.ID != "" {
		id, err := primitive.ObjectIDFromHex(user.ID)
		if err != nil {
			return nil, err
		}
		doc.ID = id
	}

	return doc, nil
}

// ToEntity maps the document model back to the domain entity.
func (u *User) ToEntity() *entity.User {
	return &entity.User{
		ID:             u.ID.Hex(),
		Username:       u.Username,
		Email:          u.Email,
		PasswordHash:   u.Password,
		OTPHash:        u.OTP,
		IsVerified:     u.IsVerified,
		Avatar:         u.Avatar,
		Status:         entity.PresenceStatus(u.Status),
		LastSeen:       u.LastSeen,
		Friends:        fromObjectIDs(u.Friends),
		FriendRequests: fromObjectIDs(u.FriendRequests),
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func toObjectIDs(refs []string) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(refs))
	for _, ref := range refs {
		id, err := primitive.ObjectIDFromHex(ref)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	return ids
}

func fromObjectIDs(ids []primitive.ObjectID) []string {
	refs := make([]string, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, id.Hex())
	}

	return refs
}
