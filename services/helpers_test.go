package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"socialnet/models"
	"socialnet/repositories"
	"socialnet/repositories/memstore"
)

type testEnv struct {
	store    *repositories.Store
	tokens   *TokenService
	users    *UserService
	auth     *AuthService
	friends  *FriendService
	posts    *PostService
	comments *CommentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memstore.NewStore()
	tokens := NewTokenService("test-secret", time.Hour)
	users := NewUserService(store, nil, bcrypt.MinCost)
	return &testEnv{
		store:    store,
		tokens:   tokens,
		users:    users,
		auth:     NewAuthService(store.Users, tokens, bcrypt.MinCost),
		friends:  NewFriendService(users, store),
		posts:    NewPostService(users, store),
		comments: NewCommentService(users, store),
	}
}

func (e *testEnv) register(t *testing.T, firstName, email string) *models.User {
	t.Helper()
	_, user, err := e.auth.Register(context.Background(), RegisterInput{
		FirstName: firstName,
		LastName:  "Doe",
		Email:     email,
		Password:  "password123",
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) befriend(t *testing.T, a, b *models.User) {
	t.Helper()
	ctx := context.Background()
	_, err := e.friends.SendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)
	require.NoError(t, e.friends.AcceptRequest(ctx, b.ID, a.ID))
}
