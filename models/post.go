package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MaxPostLength    = 2000
	MaxCommentLength = 1000
)

type Post struct {
	ID        primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Content   string               `json:"content" bson:"content"`
	Author    primitive.ObjectID   `json:"author" bson:"author"`
	Likes     []primitive.ObjectID `json:"likes" bson:"likes"`
	CreatedAt time.Time            `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time            `json:"updatedAt" bson:"updated_at"`
}

func (p *Post) LikedBy(id primitive.ObjectID) bool {
	return containsID(p.Likes, id)
}

// PostView is a post as returned by listings
type PostView struct {
	Post
	AuthorProfile *UserSummary `json:"authorProfile,omitempty"`
	LikeCount     int          `json:"likeCount"`
	IsLiked       bool         `json:"isLiked"`
}

type Comment struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Content   string             `json:"content" bson:"content"`
	Author    primitive.ObjectID `json:"author" bson:"author"`
	Post      primitive.ObjectID `json:"post" bson:"post"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updated_at"`
}

type CommentView struct {
	Comment
	AuthorProfile *UserSummary `json:"authorProfile,omitempty"`
}

// ListOptions pages through a listing
type ListOptions struct {
	Limit int64
	Skip  int64
}
