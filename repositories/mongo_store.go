package repositories

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"socialnet/models"
	"socialnet/utils/errors"
)

const (
	usersCollection          = "users"
	friendRequestsCollection = "friend_requests"
	postsCollection          = "posts"
	commentsCollection       = "comments"
)

// NewMongoStore wires the Mongo repositories onto db and makes sure the
// indexes they rely on exist.
func NewMongoStore(ctx context.Context, db *mongo.Database) (*Store, error) {
	if err := EnsureIndexes(ctx, db); err != nil {
		return nil, err
	}
	return &Store{
		Users:          NewMongoUserRepository(db.Collection(usersCollection)),
		FriendRequests: NewMongoFriendRequestRepository(db.Collection(friendRequestsCollection)),
		Posts:          NewMongoPostRepository(db.Collection(postsCollection)),
		Comments:       NewMongoCommentRepository(db.Collection(commentsCollection)),
	}, nil
}

func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "google_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetSparse(true),
			},
		},
		friendRequestsCollection: {
			{
				// One outstanding request per unordered pair
				Keys: bson.D{{Key: "pair_key", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.M{"status": models.FriendRequestPending}),
			},
			{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "requester", Value: 1}}},
		},
		postsCollection: {
			{Keys: bson.D{{Key: "author", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		commentsCollection: {
			{Keys: bson.D{{Key: "post", Value: 1}, {Key: "created_at", Value: 1}}},
			{Keys: bson.D{{Key: "author", Value: 1}}},
		},
	}
	for coll, idx := range indexes {
		names, err := db.Collection(coll).Indexes().CreateMany(ctx, idx)
		if err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
		logrus.WithFields(logrus.Fields{"collection": coll, "indexes": names}).Debug("Indexes ensured")
	}
	return nil
}

// dbError maps driver errors onto the API taxonomy
func dbError(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, mongo.ErrNoDocuments):
		return errors.NotFound(notFound)
	default:
		return errors.Internal(err, "Database error")
	}
}

func findOptions(opts models.ListOptions) *options.FindOptions {
	fo := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if opts.Limit > 0 {
		fo.SetLimit(opts.Limit)
	}
	if opts.Skip > 0 {
		fo.SetSkip(opts.Skip)
	}
	return fo
}

func after() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

var (
	_ UserRepository          = (*MongoUserRepository)(nil)
	_ FriendRequestRepository = (*MongoFriendRequestRepository)(nil)
	_ PostRepository          = (*MongoPostRepository)(nil)
	_ CommentRepository       = (*MongoCommentRepository)(nil)
)
