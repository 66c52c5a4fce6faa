package repositories

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"socialnet/models"
	"socialnet/utils/errors"
)

type MongoUserRepository struct {
	collection *mongo.Collection
}

func NewMongoUserRepository(collection *mongo.Collection) *MongoUserRepository {
	return &MongoUserRepository{collection: collection}
}

func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	if user.Friends == nil {
		user.Friends = []primitive.ObjectID{}
	}
	if user.FriendRequests == nil {
		user.FriendRequests = []primitive.ObjectID{}
	}

	_, err := r.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return errors.Conflict("User already exists")
	}
	return dbError(err, "")
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) FindByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"google_id": googleID})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, dbError(err, "User not found")
	}
	return &user, nil
}

func (r *MongoUserRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, dbError(err, "")
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, dbError(err, "")
	}
	return users, nil
}

func (r *MongoUserRepository) Update(ctx context.Context, id primitive.ObjectID, update models.UserUpdate) (*models.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if update.FirstName != nil {
		set["first_name"] = *update.FirstName
	}
	if update.LastName != nil {
		set["last_name"] = *update.LastName
	}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.PasswordHash != nil {
		set["password_hash"] = *update.PasswordHash
	}
	if update.ProfilePicture != nil {
		set["profile_picture"] = *update.ProfilePicture
	}

	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, after()).Decode(&user)
	if mongo.IsDuplicateKeyError(err) {
		return nil, errors.Conflict("Email already in use")
	}
	if err != nil {
		return nil, dbError(err, "User not found")
	}
	return &user, nil
}

func (r *MongoUserRepository) LinkGoogleID(ctx context.Context, id primitive.ObjectID, googleID string) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"google_id": googleID, "updated_at": time.Now().UTC()}})
}

// Search matches q case-insensitively against names and email
func (r *MongoUserRepository) Search(ctx context.Context, query string, opts models.ListOptions) ([]models.User, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"first_name": pattern},
		bson.M{"last_name": pattern},
		bson.M{"email": pattern},
	}}
	fo := options.Find().SetSort(bson.D{{Key: "first_name", Value: 1}, {Key: "last_name", Value: 1}, {Key: "_id", Value: 1}})
	if opts.Limit > 0 {
		fo.SetLimit(opts.Limit)
	}
	if opts.Skip > 0 {
		fo.SetSkip(opts.Skip)
	}

	cursor, err := r.collection.Find(ctx, filter, fo)
	if err != nil {
		return nil, dbError(err, "")
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, dbError(err, "")
	}
	return users, nil
}

func (r *MongoUserRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{})
	return n, dbError(err, "")
}

func (r *MongoUserRepository) AddFriendRequest(ctx context.Context, recipient, requester primitive.ObjectID) error {
	return r.updateOne(ctx, recipient, bson.M{"$addToSet": bson.M{"friend_requests": requester}})
}

func (r *MongoUserRepository) RemoveFriendRequest(ctx context.Context, recipient, requester primitive.ObjectID) error {
	return r.updateOne(ctx, recipient, bson.M{"$pull": bson.M{"friend_requests": requester}})
}

func (r *MongoUserRepository) AddFriend(ctx context.Context, user, friend primitive.ObjectID) error {
	return r.updateOne(ctx, user, bson.M{"$addToSet": bson.M{"friends": friend}})
}

func (r *MongoUserRepository) RemoveReferences(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"$or": bson.A{bson.M{"friends": id}, bson.M{"friend_requests": id}}}
	update := bson.M{"$pull": bson.M{"friends": id, "friend_requests": id}}
	_, err := r.collection.UpdateMany(ctx, filter, update)
	return dbError(err, "")
}

func (r *MongoUserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return dbError(err, "")
	}
	if res.DeletedCount == 0 {
		return errors.NotFound("User not found")
	}
	return nil
}

func (r *MongoUserRepository) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return dbError(err, "")
	}
	if res.MatchedCount == 0 {
		return errors.NotFound("User not found")
	}
	return nil
}
