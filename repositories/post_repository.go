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

type MongoPostRepository struct {
	collection *mongo.Collection
}

func NewMongoPostRepository(collection *mongo.Collection) *MongoPostRepository {
	return &MongoPostRepository{collection: collection}
}

func (r *MongoPostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	post.CreatedAt, post.UpdatedAt = now, now
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	return dbError(err, "")
}

func (r *MongoPostRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, dbError(err, "Post not found")
	}
	return &post, nil
}

func (r *MongoPostRepository) List(ctx context.Context, authors []primitive.ObjectID, opts models.ListOptions) ([]models.Post, error) {
	filter := bson.M{}
	if authors != nil {
		filter["author"] = bson.M{"$in": authors}
	}
	cursor, err := r.collection.Find(ctx, filter, findOptions(opts))
	if err != nil {
		return nil, dbError(err, "")
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, dbError(err, "")
	}
	return posts, nil
}

func (r *MongoPostRepository) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*models.Post, error) {
	update := bson.M{"$set": bson.M{"content": content, "updated_at": time.Now().UTC()}}
	var post models.Post
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, after()).Decode(&post); err != nil {
		return nil, dbError(err, "Post not found")
	}
	return &post, nil
}

// ToggleLike flips user's membership in likes inside one pipeline update,
// so concurrent toggles never lose a write.
func (r *MongoPostRepository) ToggleLike(ctx context.Context, id, user primitive.ObjectID) (*models.Post, error) {
	likes := bson.D{{Key: "$ifNull", Value: bson.A{"$likes", bson.A{}}}}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{{Key: "likes", Value: bson.D{{Key: "$cond", Value: bson.A{
			bson.D{{Key: "$in", Value: bson.A{user, likes}}},
			bson.D{{Key: "$filter", Value: bson.D{
				{Key: "input", Value: likes},
				{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this", user}}}},
			}}},
			bson.D{{Key: "$concatArrays", Value: bson.A{likes, bson.A{user}}}},
		}}}}}}},
	}

	var post models.Post
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, after()).Decode(&post); err != nil {
		return nil, dbError(err, "Post not found")
	}
	return &post, nil
}

func (r *MongoPostRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return dbError(err, "")
	}
	if res.DeletedCount == 0 {
		return errors.NotFound("Post not found")
	}
	return nil
}

func (r *MongoPostRepository) DeleteByAuthor(ctx context.Context, author primitive.ObjectID) ([]primitive.ObjectID, error) {
	filter := bson.M{"author": author}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, dbError(err, "")
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, dbError(err, "")
	}
	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	if len(ids) == 0 {
		return ids, nil
	}

	if _, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return nil, dbError(err, "")
	}
	return ids, nil
}

func (r *MongoPostRepository) RemoveLikesBy(ctx context.Context, user primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx, bson.M{"likes": user}, bson.M{"$pull": bson.M{"likes": user}})
	return dbError(err, "")
}
