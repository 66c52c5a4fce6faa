package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"socialnet/models"
	"socialnet/utils/errors"
)

func TestUsers_UniqueEmailAndCopies(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	user := &models.User{FirstName: "Alice", Email: "alice@example.com"}
	require.NoError(t, store.Users.Create(ctx, user))
	assert.False(t, user.ID.IsZero())
	assert.NotNil(t, user.Friends)

	err := store.Users.Create(ctx, &models.User{Email: "alice@example.com"})
	assert.ErrorIs(t, err, errors.ErrConflict)

	// Mutating a returned value must not leak into the store
	got, err := store.Users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	got.Friends = append(got.Friends, primitive.NewObjectID())
	again, err := store.Users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Friends)
}

func TestFriendRequests_OnePendingPerPair(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	a, b := primitive.NewObjectID(), primitive.NewObjectID()

	require.NoError(t, store.FriendRequests.Create(ctx, &models.FriendRequest{Requester: a, Recipient: b}))
	err := store.FriendRequests.Create(ctx, &models.FriendRequest{Requester: b, Recipient: a})
	assert.ErrorIs(t, err, errors.ErrConflict)

	found, err := store.FriendRequests.FindPending(ctx, b, a)
	require.NoError(t, err)
	assert.Equal(t, a, found.Requester)

	// Only the recipient side resolves
	_, err = store.FriendRequests.Resolve(ctx, b, a, models.FriendRequestAccepted)
	assert.ErrorIs(t, err, errors.ErrNotFound)

	resolved, err := store.FriendRequests.Resolve(ctx, a, b, models.FriendRequestRejected)
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestRejected, resolved.Status)

	_, err = store.FriendRequests.Resolve(ctx, a, b, models.FriendRequestAccepted)
	assert.ErrorIs(t, err, errors.ErrNotFound)

	// A resolved request no longer blocks a new one
	require.NoError(t, store.FriendRequests.Create(ctx, &models.FriendRequest{Requester: b, Recipient: a}))

	n, err := store.FriendRequests.DeleteByUser(ctx, a)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestPosts_OrderingAndPaging(t *testing.T) {
	db := New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	// A frozen clock still yields strictly increasing timestamps
	db.now = func() time.Time { return base }
	store := db.Store()
	ctx := context.Background()
	author := primitive.NewObjectID()

	var ids []primitive.ObjectID
	for i := 0; i < 5; i++ {
		p := &models.Post{Content: "p", Author: author}
		require.NoError(t, store.Posts.Create(ctx, p))
		ids = append(ids, p.ID)
	}

	page1, err := store.Posts.List(ctx, nil, models.ListOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, ids[4], page1[0].ID)
	assert.Equal(t, ids[3], page1[1].ID)

	last, err := store.Posts.List(ctx, nil, models.ListOptions{Limit: 2, Skip: 4})
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, ids[0], last[0].ID)

	none, err := store.Posts.List(ctx, []primitive.ObjectID{}, models.ListOptions{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPosts_ToggleLikeAndRemoveLikes(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	user := primitive.NewObjectID()
	post := &models.Post{Content: "p", Author: primitive.NewObjectID()}
	require.NoError(t, store.Posts.Create(ctx, post))

	liked, err := store.Posts.ToggleLike(ctx, post.ID, user)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{user}, liked.Likes)

	require.NoError(t, store.Posts.RemoveLikesBy(ctx, user))
	got, err := store.Posts.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Likes)
}

func TestUsers_RemoveReferences(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	alice := &models.User{Email: "alice@example.com"}
	bob := &models.User{Email: "bob@example.com"}
	require.NoError(t, store.Users.Create(ctx, alice))
	require.NoError(t, store.Users.Create(ctx, bob))

	require.NoError(t, store.Users.AddFriend(ctx, bob.ID, alice.ID))
	require.NoError(t, store.Users.AddFriendRequest(ctx, bob.ID, alice.ID))
	require.NoError(t, store.Users.RemoveReferences(ctx, alice.ID))

	got, err := store.Users.FindByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Friends)
	assert.Empty(t, got.FriendRequests)
}
