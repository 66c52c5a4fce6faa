package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialnet/utils/errors"
)

func TestRegister_ReturnsUsableToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	token, user, err := env.auth.Register(ctx, RegisterInput{
		FirstName: " John ",
		LastName:  "Doe",
		Email:     "John@Example.com",
		Password:  "password123",
	})
	require.NoError(t, err)

	assert.Equal(t, "John", user.FirstName)
	assert.Equal(t, "john@example.com", user.Email)
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.Equal(t, GravatarURL("john@example.com", 200), user.ProfilePicture)

	id, err := env.tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "John", "john@example.com")

	_, _, err := env.auth.Register(context.Background(), RegisterInput{
		FirstName: "Other",
		LastName:  "Person",
		Email:     "JOHN@example.com",
		Password:  "password123",
	})
	require.ErrorIs(t, err, errors.ErrConflict)

	apiErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, "User already exists", apiErr.Message)
	assert.Equal(t, 400, apiErr.Status)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "John", "john@example.com")
	ctx := context.Background()

	token, err := env.auth.Login(ctx, " John@example.com", "password123")
	require.NoError(t, err)
	id, err := env.tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	_, err = env.auth.Login(ctx, "john@example.com", "wrong")
	assert.ErrorIs(t, err, errors.ErrInvalidCredential)

	_, err = env.auth.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, errors.ErrInvalidCredential)
}

func TestLoginWithIdentity_CreatesThenReuses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	identity := &ExternalIdentity{
		ID:        "google-123",
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Roe",
		Picture:   "https://example.com/jane.png",
	}

	_, first, err := env.auth.LoginWithIdentity(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, "google-123", first.GoogleID)
	assert.Equal(t, "https://example.com/jane.png", first.ProfilePicture)
	assert.Empty(t, first.PasswordHash)

	_, second, err := env.auth.LoginWithIdentity(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	count, err := env.store.Users.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// No password was ever set, so local login must fail
	_, err = env.auth.Login(ctx, "jane@example.com", "")
	assert.ErrorIs(t, err, errors.ErrInvalidCredential)
}

func TestLoginWithIdentity_LinksExistingEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	existing := env.register(t, "John", "john@example.com")

	_, user, err := env.auth.LoginWithIdentity(ctx, &ExternalIdentity{ID: "google-9", Email: "John@example.com"})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID)

	stored, err := env.store.Users.FindByGoogleID(ctx, "google-9")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, stored.ID)
}

func TestLoginWithIdentity_RequiresSubject(t *testing.T) {
	env := newTestEnv(t)
	_, _, err := env.auth.LoginWithIdentity(context.Background(), &ExternalIdentity{Email: "a@example.com"})
	assert.ErrorIs(t, err, errors.ErrInvalidCredential)
}

func TestGravatarURL(t *testing.T) {
	assert.Equal(t,
		"https://www.gravatar.com/avatar/0bc83cb571cd1c50ba6f3e8a78ef1346?s=200",
		GravatarURL(" MyEmailAddress@example.com ", 200))
}
