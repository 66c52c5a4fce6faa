package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"socialnet/models"
	"socialnet/utils/errors"
)

type MongoFriendRequestRepository struct {
	collection *mongo.Collection
}

func NewMongoFriendRequestRepository(collection *mongo.Collection) *MongoFriendRequestRepository {
	return &MongoFriendRequestRepository{collection: collection}
}

func (r *MongoFriendRequestRepository) Create(ctx context.Context, req *models.FriendRequest) error {
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	req.CreatedAt, req.UpdatedAt = now, now
	req.Status = models.FriendRequestPending
	req.PairKey = models.PairKey(req.Requester, req.Recipient)

	_, err := r.collection.InsertOne(ctx, req)
	if mongo.IsDuplicateKeyError(err) {
		return errors.Conflict("Friend request already pending")
	}
	return dbError(err, "")
}

func (r *MongoFriendRequestRepository) FindPending(ctx context.Context, a, b primitive.ObjectID) (*models.FriendRequest, error) {
	var req models.FriendRequest
	filter := bson.M{"pair_key": models.PairKey(a, b), "status": models.FriendRequestPending}
	if err := r.collection.FindOne(ctx, filter).Decode(&req); err != nil {
		return nil, dbError(err, "Friend request not found")
	}
	return &req, nil
}

// Resolve is a single conditional update: a request already moved out of
// pending by a concurrent call no longer matches and yields NotFound.
func (r *MongoFriendRequestRepository) Resolve(ctx context.Context, requester, recipient primitive.ObjectID, status models.FriendRequestStatus) (*models.FriendRequest, error) {
	filter := bson.M{
		"requester": requester,
		"recipient": recipient,
		"status":    models.FriendRequestPending,
	}
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}}

	var req models.FriendRequest
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, after()).Decode(&req); err != nil {
		return nil, dbError(err, "Friend request not found")
	}
	return &req, nil
}

func (r *MongoFriendRequestRepository) ListPendingFor(ctx context.Context, recipient primitive.ObjectID) ([]models.FriendRequest, error) {
	return r.listPending(ctx, bson.M{"recipient": recipient, "status": models.FriendRequestPending})
}

func (r *MongoFriendRequestRepository) ListPendingFrom(ctx context.Context, requester primitive.ObjectID) ([]models.FriendRequest, error) {
	return r.listPending(ctx, bson.M{"requester": requester, "status": models.FriendRequestPending})
}

func (r *MongoFriendRequestRepository) listPending(ctx context.Context, filter bson.M) ([]models.FriendRequest, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, dbError(err, "")
	}
	defer cursor.Close(ctx)

	requests := []models.FriendRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, dbError(err, "")
	}
	return requests, nil
}

func (r *MongoFriendRequestRepository) DeleteByUser(ctx context.Context, user primitive.ObjectID) (int64, error) {
	filter := bson.M{"$or": bson.A{bson.M{"requester": user}, bson.M{"recipient": user}}}
	res, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, dbError(err, "")
	}
	return res.DeletedCount, nil
}
