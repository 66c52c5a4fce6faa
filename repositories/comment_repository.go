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

type MongoCommentRepository struct {
	collection *mongo.Collection
}

func NewMongoCommentRepository(collection *mongo.Collection) *MongoCommentRepository {
	return &MongoCommentRepository{collection: collection}
}

func (r *MongoCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	comment.CreatedAt, comment.UpdatedAt = now, now
	_, err := r.collection.InsertOne(ctx, comment)
	return dbError(err, "")
}

func (r *MongoCommentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&comment); err != nil {
		return nil, dbError(err, "Comment not found")
	}
	return &comment, nil
}

// ListByPost returns a post's comments oldest first
func (r *MongoCommentRepository) ListByPost(ctx context.Context, post primitive.ObjectID) ([]models.Comment, error) {
	fo := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"post": post}, fo)
	if err != nil {
		return nil, dbError(err, "")
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, dbError(err, "")
	}
	return comments, nil
}

func (r *MongoCommentRepository) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*models.Comment, error) {
	update := bson.M{"$set": bson.M{"content": content, "updated_at": time.Now().UTC()}}
	var comment models.Comment
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, after()).Decode(&comment); err != nil {
		return nil, dbError(err, "Comment not found")
	}
	return &comment, nil
}

func (r *MongoCommentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return dbError(err, "")
	}
	if res.DeletedCount == 0 {
		return errors.NotFound("Comment not found")
	}
	return nil
}

func (r *MongoCommentRepository) DeleteByPosts(ctx context.Context, posts []primitive.ObjectID) (int64, error) {
	if len(posts) == 0 {
		return 0, nil
	}
	res, err := r.collection.DeleteMany(ctx, bson.M{"post": bson.M{"$in": posts}})
	if err != nil {
		return 0, dbError(err, "")
	}
	return res.DeletedCount, nil
}

func (r *MongoCommentRepository) DeleteByAuthor(ctx context.Context, author primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"author": author})
	if err != nil {
		return 0, dbError(err, "")
	}
	return res.DeletedCount, nil
}
