package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestRejected FriendRequestStatus = "rejected"
)

type FriendRequest struct {
	ID        primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Requester primitive.ObjectID  `json:"requester" bson:"requester"`
	Recipient primitive.ObjectID  `json:"recipient" bson:"recipient"`
	Status    FriendRequestStatus `json:"status" bson:"status"`
	// PairKey identifies the unordered pair; unique among pending requests.
	PairKey   string    `json:"-" bson:"pair_key"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// PairKey orders the two ids so (a, b) and (b, a) share a key
func PairKey(a, b primitive.ObjectID) string {
	x, y := a.Hex(), b.Hex()
	if x > y {
		x, y = y, x
	}
	return x + ":" + y
}

type FriendshipState string

const (
	FriendshipNone    FriendshipState = "none"
	FriendshipPending FriendshipState = "pending"
	FriendshipFriends FriendshipState = "friends"
)

type FriendshipStatus struct {
	Status    FriendshipState     `json:"status"`
	Requester *primitive.ObjectID `json:"requester,omitempty"`
}

// FriendRequestView is an incoming request with the requester's profile
type FriendRequestView struct {
	FriendRequest
	RequesterProfile *UserSummary `json:"requesterProfile,omitempty"`
}
