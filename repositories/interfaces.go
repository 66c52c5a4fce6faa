// Package repositories defines the persistence contracts of the service layer
// and their MongoDB implementations. Lookups of a missing document return an
// error matching errors.ErrNotFound; unique-index violations return one
// matching errors.ErrConflict.
package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"socialnet/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, update models.UserUpdate) (*models.User, error)
	LinkGoogleID(ctx context.Context, id primitive.ObjectID, googleID string) error
	Search(ctx context.Context, query string, opts models.ListOptions) ([]models.User, error)
	Count(ctx context.Context) (int64, error)

	AddFriendRequest(ctx context.Context, recipient, requester primitive.ObjectID) error
	RemoveFriendRequest(ctx context.Context, recipient, requester primitive.ObjectID) error
	AddFriend(ctx context.Context, user, friend primitive.ObjectID) error
	// RemoveReferences pulls id out of every other user's friends and friend requests
	RemoveReferences(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type FriendRequestRepository interface {
	Create(ctx context.Context, req *models.FriendRequest) error
	// FindPending returns the pending request between a and b in either direction
	FindPending(ctx context.Context, a, b primitive.ObjectID) (*models.FriendRequest, error)
	// Resolve moves the pending request requester -> recipient to status.
	// It only matches a request that is still pending.
	Resolve(ctx context.Context, requester, recipient primitive.ObjectID, status models.FriendRequestStatus) (*models.FriendRequest, error)
	ListPendingFor(ctx context.Context, recipient primitive.ObjectID) ([]models.FriendRequest, error)
	ListPendingFrom(ctx context.Context, requester primitive.ObjectID) ([]models.FriendRequest, error)
	DeleteByUser(ctx context.Context, user primitive.ObjectID) (int64, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	// List returns posts newest first; a nil authors slice means all authors
	List(ctx context.Context, authors []primitive.ObjectID, opts models.ListOptions) ([]models.Post, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*models.Post, error)
	ToggleLike(ctx context.Context, id, user primitive.ObjectID) (*models.Post, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// DeleteByAuthor removes the author's posts and returns their ids
	DeleteByAuthor(ctx context.Context, author primitive.ObjectID) ([]primitive.ObjectID, error)
	RemoveLikesBy(ctx context.Context, user primitive.ObjectID) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	ListByPost(ctx context.Context, post primitive.ObjectID) ([]models.Comment, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*models.Comment, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByPosts(ctx context.Context, posts []primitive.ObjectID) (int64, error)
	DeleteByAuthor(ctx context.Context, author primitive.ObjectID) (int64, error)
}

// Store bundles the repositories of one backend
type Store struct {
	Users          UserRepository
	FriendRequests FriendRequestRepository
	Posts          PostRepository
	Comments       CommentRepository
}
