package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"socialnet/models"
	"socialnet/monitoring"
	"socialnet/repositories"
	"socialnet/utils/errors"
)

// CommentService manages comments scoped to their parent post
type CommentService struct {
	users    *UserService
	posts    repositories.PostRepository
	comments repositories.CommentRepository
}

func NewCommentService(users *UserService, store *repositories.Store) *CommentService {
	return &CommentService{users: users, posts: store.Posts, comments: store.Comments}
}

func (s *CommentService) Add(ctx context.Context, postID, author primitive.ObjectID, content string) (*models.Comment, error) {
	content, err := checkContent(content, models.MaxCommentLength)
	if err != nil {
		return nil, err
	}
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		return nil, err
	}

	comment := &models.Comment{Content: content, Author: author, Post: postID}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	monitoring.CommentsCreated.Inc()
	return comment, nil
}

// List returns the post's comments oldest first, with author profiles
func (s *CommentService) List(ctx context.Context, postID primitive.ObjectID) ([]models.CommentView, error) {
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.Author)
	}
	profiles, err := s.users.summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.CommentView, 0, len(comments))
	for _, c := range comments {
		view := models.CommentView{Comment: c}
		if p, ok := profiles[c.Author]; ok {
			view.AuthorProfile = &p
		}
		views = append(views, view)
	}
	return views, nil
}

// owned loads a comment of postID and checks that requester wrote it. A
// comment that belongs to another post is reported as missing.
func (s *CommentService) owned(ctx context.Context, postID, commentID, requester primitive.ObjectID) (*models.Comment, error) {
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.Post != postID {
		return nil, errors.NotFound("Comment not found")
	}
	if comment.Author != requester {
		return nil, errors.Forbidden("User not authorized")
	}
	return comment, nil
}

func (s *CommentService) Update(ctx context.Context, postID, commentID, requester primitive.ObjectID, content string) (*models.Comment, error) {
	content, err := checkContent(content, models.MaxCommentLength)
	if err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, postID, commentID, requester); err != nil {
		return nil, err
	}
	return s.comments.UpdateContent(ctx, commentID, content)
}

func (s *CommentService) Delete(ctx context.Context, postID, commentID, requester primitive.ObjectID) error {
	if _, err := s.owned(ctx, postID, commentID, requester); err != nil {
		return err
	}
	return s.comments.Delete(ctx, commentID)
}
