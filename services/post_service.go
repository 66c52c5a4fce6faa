package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"socialnet/models"
	"socialnet/monitoring"
	"socialnet/repositories"
	"socialnet/utils/errors"
)

type PostService struct {
	users    *UserService
	posts    repositories.PostRepository
	comments repositories.CommentRepository
}

func NewPostService(users *UserService, store *repositories.Store) *PostService {
	return &PostService{users: users, posts: store.Posts, comments: store.Comments}
}

// checkContent enforces the 1..max character bound on post and comment bodies
func checkContent(content string, max int) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", errors.Validation(errors.FieldError{Field: "content", Message: "Content is required"})
	}
	if utf8.RuneCountInString(trimmed) > max {
		return "", errors.Validation(errors.FieldError{
			Field:   "content",
			Message: fmt.Sprintf("Content must be between 1 and %d characters", max),
		})
	}
	return trimmed, nil
}

func (s *PostService) Create(ctx context.Context, author primitive.ObjectID, content string) (*models.Post, error) {
	content, err := checkContent(content, models.MaxPostLength)
	if err != nil {
		return nil, err
	}
	post := &models.Post{Content: content, Author: author}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	monitoring.PostsCreated.Inc()
	return post, nil
}

func (s *PostService) Get(ctx context.Context, id, viewer primitive.ObjectID) (*models.PostView, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.decorate(ctx, []models.Post{*post}, viewer)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns every post, newest first
func (s *PostService) List(ctx context.Context, viewer primitive.ObjectID, opts models.ListOptions) ([]models.PostView, error) {
	posts, err := s.posts.List(ctx, nil, opts)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, posts, viewer)
}

// Feed returns the posts of viewer and viewer's friends, newest first
func (s *PostService) Feed(ctx context.Context, viewer primitive.ObjectID, opts models.ListOptions) ([]models.PostView, error) {
	user, err := s.users.GetUser(ctx, viewer)
	if err != nil {
		return nil, err
	}
	authors := append([]primitive.ObjectID{viewer}, user.Friends...)
	posts, err := s.posts.List(ctx, authors, opts)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, posts, viewer)
}

func (s *PostService) decorate(ctx context.Context, posts []models.Post, viewer primitive.ObjectID) ([]models.PostView, error) {
	authorIDs := make([]primitive.ObjectID, 0, len(posts))
	for _, p := range posts {
		authorIDs = append(authorIDs, p.Author)
	}
	profiles, err := s.users.summaries(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.PostView, 0, len(posts))
	for _, p := range posts {
		view := models.PostView{
			Post:      p,
			LikeCount: len(p.Likes),
			IsLiked:   p.LikedBy(viewer),
		}
		if profile, ok := profiles[p.Author]; ok {
			view.AuthorProfile = &profile
		}
		views = append(views, view)
	}
	return views, nil
}

// owned loads a post and checks that requester wrote it
func (s *PostService) owned(ctx context.Context, id, requester primitive.ObjectID) (*models.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Author != requester {
		return nil, errors.Forbidden("User not authorized")
	}
	return post, nil
}

func (s *PostService) Update(ctx context.Context, id, requester primitive.ObjectID, content string) (*models.Post, error) {
	content, err := checkContent(content, models.MaxPostLength)
	if err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, id, requester); err != nil {
		return nil, err
	}
	return s.posts.UpdateContent(ctx, id, content)
}

// Delete removes the post, then its comments
func (s *PostService) Delete(ctx context.Context, id, requester primitive.ObjectID) error {
	if _, err := s.owned(ctx, id, requester); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	n, err := s.comments.DeleteByPosts(ctx, []primitive.ObjectID{id})
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"post_id": id.Hex(), "comments": n}).Info("Post deleted")
	return nil
}

// ToggleLike adds user to the post's likes, or removes them if present
func (s *PostService) ToggleLike(ctx context.Context, id, user primitive.ObjectID) (*models.Post, error) {
	return s.posts.ToggleLike(ctx, id, user)
}
