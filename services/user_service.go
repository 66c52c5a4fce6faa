package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"socialnet/cache"
	"socialnet/models"
	"socialnet/repositories"
	"socialnet/utils/errors"
)

type UserService struct {
	store      *repositories.Store
	cache      cache.UserCache
	bcryptCost int
}

func NewUserService(store *repositories.Store, userCache cache.UserCache, bcryptCost int) *UserService {
	if userCache == nil {
		userCache = cache.Noop{}
	}
	return &UserService{store: store, cache: userCache, bcryptCost: bcryptCost}
}

// GetUser retrieves a user from the cache or the store
func (s *UserService) GetUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	if user, ok := s.cache.Get(ctx, userID.Hex()); ok {
		return user, nil
	}

	user, err := s.store.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, user)
	return user, nil
}

// summaries loads the public profiles of ids keyed by id
func (s *UserService) summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error) {
	users, err := s.store.Users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[primitive.ObjectID]models.UserSummary, len(users))
	for i := range users {
		out[users[i].ID] = users[i].Summary()
	}
	return out, nil
}

type ProfileUpdate struct {
	FirstName      *string
	LastName       *string
	Email          *string
	Password       *string
	ProfilePicture *string
}

// UpdateProfile applies the provided fields; a new password is hashed first
func (s *UserService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, in ProfileUpdate) (*models.User, error) {
	update := models.UserUpdate{
		FirstName:      trimmed(in.FirstName),
		LastName:       trimmed(in.LastName),
		ProfilePicture: trimmed(in.ProfilePicture),
	}
	if update.FirstName != nil && *update.FirstName == "" {
		return nil, errors.Validation(errors.FieldError{Field: "firstName", Message: "firstName is required"})
	}
	if update.LastName != nil && *update.LastName == "" {
		return nil, errors.Validation(errors.FieldError{Field: "lastName", Message: "lastName is required"})
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		update.Email = &email
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), s.bcryptCost)
		if err != nil {
			return nil, errors.Internal(err, "Failed to hash password")
		}
		h := string(hash)
		update.PasswordHash = &h
	}

	user, err := s.store.Users.Update(ctx, userID, update)
	if err != nil {
		return nil, err
	}
	s.cache.Delete(ctx, userID.Hex())
	logrus.WithField("user_id", userID.Hex()).Info("Profile updated")
	return user, nil
}

func (s *UserService) Search(ctx context.Context, query string, opts models.ListOptions) ([]models.UserSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.Validation(errors.FieldError{Field: "q", Message: "Search query is required"})
	}
	users, err := s.store.Users.Search(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserSummary, 0, len(users))
	for i := range users {
		out = append(out, users[i].Summary())
	}
	return out, nil
}

// DeleteAccount removes the user and then everything that only exists in
// reference to them: their posts and the comments on those posts, their own
// comments, friend requests in either role, their likes, and their id in
// other users' friends and pending requests.
func (s *UserService) DeleteAccount(ctx context.Context, userID primitive.ObjectID) error {
	user, err := s.store.Users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	sent, err := s.store.FriendRequests.ListPendingFrom(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.store.Users.Delete(ctx, userID); err != nil {
		return err
	}

	postIDs, err := s.store.Posts.DeleteByAuthor(ctx, userID)
	if err != nil {
		return err
	}
	onPosts, err := s.store.Comments.DeleteByPosts(ctx, postIDs)
	if err != nil {
		return err
	}
	authored, err := s.store.Comments.DeleteByAuthor(ctx, userID)
	if err != nil {
		return err
	}
	requests, err := s.store.FriendRequests.DeleteByUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.store.Posts.RemoveLikesBy(ctx, userID); err != nil {
		return err
	}
	if err := s.store.Users.RemoveReferences(ctx, userID); err != nil {
		return err
	}

	affected := []string{userID.Hex()}
	for _, id := range user.Friends {
		affected = append(affected, id.Hex())
	}
	for _, id := range user.FriendRequests {
		affected = append(affected, id.Hex())
	}
	for _, req := range sent {
		affected = append(affected, req.Recipient.Hex())
	}
	s.cache.Delete(ctx, affected...)

	logrus.WithFields(logrus.Fields{
		"user_id":         userID.Hex(),
		"posts":           len(postIDs),
		"comments":        onPosts + authored,
		"friend_requests": requests,
	}).Info("Account deleted")
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
