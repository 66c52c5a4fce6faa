package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID             primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	FirstName      string               `json:"firstName" bson:"first_name"`
	LastName       string               `json:"lastName" bson:"last_name"`
	Email          string               `json:"email" bson:"email"`
	PasswordHash   string               `json:"-" bson:"password_hash,omitempty"`
	GoogleID       string               `json:"-" bson:"google_id,omitempty"`
	ProfilePicture string               `json:"profilePicture,omitempty" bson:"profile_picture,omitempty"`
	Friends        []primitive.ObjectID `json:"friends" bson:"friends"`
	FriendRequests []primitive.ObjectID `json:"friendRequests" bson:"friend_requests"`
	CreatedAt      time.Time            `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time            `json:"updatedAt" bson:"updated_at"`
}

// UserSummary is the public projection embedded in posts, comments and lists
type UserSummary struct {
	ID             primitive.ObjectID `json:"id"`
	FirstName      string             `json:"firstName"`
	LastName       string             `json:"lastName"`
	ProfilePicture string             `json:"profilePicture,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:             u.ID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		ProfilePicture: u.ProfilePicture,
	}
}

func (u *User) IsFriend(id primitive.ObjectID) bool {
	return containsID(u.Friends, id)
}

func (u *User) HasPendingRequestFrom(id primitive.ObjectID) bool {
	return containsID(u.FriendRequests, id)
}

// UserUpdate holds the profile fields a user may change; nil means unchanged
type UserUpdate struct {
	FirstName      *string
	LastName       *string
	Email          *string
	PasswordHash   *string
	ProfilePicture *string
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
