package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"socialnet/handlers"
	"socialnet/models"
	"socialnet/repositories/memstore"
	"socialnet/services"
	"socialnet/utils/errors"
)

type fakeProvider struct {
	identity *services.ExternalIdentity
}

func (p fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example/o/oauth2/auth?state=" + url.QueryEscape(state)
}

func (p fakeProvider) Exchange(_ context.Context, code string) (*services.ExternalIdentity, error) {
	if code != "good-code" {
		return nil, errors.ErrInvalidCredential.WithMessage("Google authentication failed")
	}
	return p.identity, nil
}

type testAPI struct {
	t      *testing.T
	router *mux.Router
}

func newTestAPI(t *testing.T, provider services.IdentityProvider, frontendURL string) *testAPI {
	t.Helper()
	store := memstore.NewStore()
	tokens := services.NewTokenService("test-secret", time.Hour)
	users := services.NewUserService(store, nil, bcrypt.MinCost)
	auth := services.NewAuthService(store.Users, tokens, bcrypt.MinCost)

	router := SetupRoutes(Handlers{
		Auth:     handlers.NewAuthHandler(auth, provider, []byte("0123456789abcdef0123456789abcdef"), frontendURL),
		Users:    handlers.NewUserHandler(users, services.NewFriendService(users, store)),
		Posts:    handlers.NewPostHandler(services.NewPostService(users, store)),
		Comments: handlers.NewCommentHandler(services.NewCommentService(users, store)),
		System:   handlers.NewSystemHandler(nil),
	}, tokens, []string{"http://localhost:3000"})
	return &testAPI{t: t, router: router}
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

// register creates an account and returns its token and id
func (a *testAPI) register(first, email string) (string, string) {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/auth/register", "", map[string]string{
		"firstName": first,
		"lastName":  "Doe",
		"email":     email,
		"password":  "password123",
	})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	token := decode[map[string]string](a.t, rec)["token"]

	me := a.do(http.MethodGet, "/users/me", token, nil)
	require.Equal(a.t, http.StatusOK, me.Code)
	return token, decode[map[string]any](a.t, me)["id"].(string)
}

func TestRegisterTwice(t *testing.T) {
	api := newTestAPI(t, nil, "")
	body := map[string]string{
		"firstName": "John",
		"lastName":  "Doe",
		"email":     "john@example.com",
		"password":  "password123",
	}

	rec := api.do(http.MethodPost, "/auth/register", "", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[map[string]string](t, rec)["token"])

	rec = api.do(http.MethodPost, "/auth/register", "", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	apiErr := decode[errors.APIError](t, rec)
	assert.Equal(t, "CONFLICT", apiErr.Code)
	assert.Equal(t, "User already exists", apiErr.Message)
}

func TestRegisterValidation(t *testing.T) {
	api := newTestAPI(t, nil, "")
	rec := api.do(http.MethodPost, "/auth/register", "", map[string]string{
		"firstName": "John",
		"email":     "not-an-email",
		"password":  "123",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	apiErr := decode[errors.APIError](t, rec)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)

	fields := map[string]string{}
	for _, fe := range apiErr.Errors {
		fields[fe.Field] = fe.Message
	}
	assert.Equal(t, "lastName is required", fields["lastName"])
	assert.Equal(t, "Please include a valid email", fields["email"])
	assert.Equal(t, "password must be at least 6 characters", fields["password"])

	rec = api.do(http.MethodPost, "/auth/register", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginAndAuthGate(t *testing.T) {
	api := newTestAPI(t, nil, "")
	api.register("John", "john@example.com")

	rec := api.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "john@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[map[string]string](t, rec)["token"]

	rec = api.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "john@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIAL", decode[errors.APIError](t, rec).Code)

	rec = api.do(http.MethodGet, "/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHENTICATED", decode[errors.APIError](t, rec).Code)

	rec = api.do(http.MethodGet, "/users/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIAL", decode[errors.APIError](t, rec).Code)

	rec = api.do(http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[map[string]any](t, rec)
	assert.Equal(t, "john@example.com", me["email"])
	assert.NotContains(t, me, "passwordHash")
	assert.NotContains(t, me, "password_hash")
}

func TestFriendRequestFlow(t *testing.T) {
	api := newTestAPI(t, nil, "")
	aliceToken, aliceID := api.register("Alice", "alice@example.com")
	bobToken, bobID := api.register("Bob", "bob@example.com")

	rec := api.do(http.MethodPost, "/users/friend-request", aliceToken, map[string]string{"recipientId": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, "/users/friend-request", aliceToken, map[string]string{"recipientId": bobID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodPost, "/users/friend-request", aliceToken, map[string]string{"recipientId": bobID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodGet, "/users/friend-status/"+aliceID, bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[models.FriendshipStatus](t, rec)
	assert.Equal(t, models.FriendshipPending, status.Status)
	require.NotNil(t, status.Requester)
	assert.Equal(t, aliceID, status.Requester.Hex())

	rec = api.do(http.MethodGet, "/users/friend-requests", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = api.do(http.MethodPost, "/users/accept-friend-request", bobToken, map[string]string{"requesterId": aliceID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodPost, "/users/reject-friend-request", bobToken, map[string]string{"requesterId": aliceID})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodGet, "/users/friends", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	friends := decode[[]map[string]any](t, rec)
	require.Len(t, friends, 1)
	assert.Equal(t, bobID, friends[0]["id"])

	rec = api.do(http.MethodGet, "/users/friend-status/"+bobID, aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.FriendshipFriends, decode[models.FriendshipStatus](t, rec).Status)

	rec = api.do(http.MethodGet, "/users/search?q=bo", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = api.do(http.MethodGet, "/users/profile/not-an-id", aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostsAndComments(t *testing.T) {
	api := newTestAPI(t, nil, "")
	aliceToken, _ := api.register("Alice", "alice@example.com")
	bobToken, _ := api.register("Bob", "bob@example.com")

	rec := api.do(http.MethodPost, "/posts", aliceToken, map[string]string{"content": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, "/posts", aliceToken, map[string]string{"content": strings.Repeat("x", 2001)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, "/posts", aliceToken, map[string]string{"content": "hello world"})
	require.Equal(t, http.StatusCreated, rec.Code)
	postID := decode[map[string]any](t, rec)["id"].(string)

	rec = api.do(http.MethodPut, "/posts/"+postID, bobToken, map[string]string{"content": "mine now"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "User not authorized", decode[errors.APIError](t, rec).Message)

	rec = api.do(http.MethodPost, "/posts/"+postID+"/toggle-like", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[map[string]any](t, rec)["likes"], 1)

	rec = api.do(http.MethodGet, "/posts/"+postID, bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[map[string]any](t, rec)
	assert.Equal(t, "hello world", view["content"])
	assert.Equal(t, true, view["isLiked"])

	rec = api.do(http.MethodPost, "/posts/"+postID+"/toggle-like", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[map[string]any](t, rec)["likes"])

	rec = api.do(http.MethodGet, "/posts/feed", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = api.do(http.MethodGet, "/posts?limit=0", aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, "/posts/"+postID+"/comments", bobToken, map[string]string{"content": "nice"})
	require.Equal(t, http.StatusCreated, rec.Code)
	commentID := decode[map[string]any](t, rec)["id"].(string)

	rec = api.do(http.MethodDelete, "/posts/"+postID+"/comments/"+commentID, aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodPut, "/posts/"+postID+"/comments/"+commentID, bobToken, map[string]string{"content": "very nice"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodGet, "/posts/"+postID+"/comments", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	comments := decode[[]map[string]any](t, rec)
	require.Len(t, comments, 1)
	assert.Equal(t, "very nice", comments[0]["content"])

	rec = api.do(http.MethodDelete, "/posts/"+postID, aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodGet, "/posts/"+postID+"/comments", aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodGet, "/posts/not-an-id", aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteMe(t *testing.T) {
	api := newTestAPI(t, nil, "")
	aliceToken, aliceID := api.register("Alice", "alice@example.com")
	bobToken, _ := api.register("Bob", "bob@example.com")

	rec := api.do(http.MethodPost, "/posts", aliceToken, map[string]string{"content": "bye"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(http.MethodDelete, "/users/me", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodGet, "/users/profile/"+aliceID, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodGet, "/posts", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]map[string]any](t, rec))
}

func TestUpdateMe(t *testing.T) {
	api := newTestAPI(t, nil, "")
	token, _ := api.register("Alice", "alice@example.com")

	rec := api.do(http.MethodPut, "/users/me", token, map[string]string{"lastName": "Smith", "password": "short"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPut, "/users/me", token, map[string]string{"lastName": "Smith"})
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[map[string]any](t, rec)
	assert.Equal(t, "Smith", me["lastName"])
	assert.Equal(t, "Alice", me["firstName"])
}

func TestGoogleOAuth(t *testing.T) {
	identity := &services.ExternalIdentity{ID: "g-1", Email: "jane@example.com", FirstName: "Jane", LastName: "Roe"}
	api := newTestAPI(t, fakeProvider{identity: identity}, "https://app.example")

	rec := api.do(http.MethodGet, "/auth/google", "", nil)
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	state := location.Query().Get("state")
	require.NotEmpty(t, state)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	callback := func(state, code string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state="+url.QueryEscape(state)+"&code="+code, nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		api.router.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, callback(state, "good-code").Code, "missing cookie")
	assert.Equal(t, http.StatusUnauthorized, callback("forged", "good-code", cookies...).Code)
	assert.Equal(t, http.StatusUnauthorized, callback(state, "bad-code", cookies...).Code)

	rec = callback(state, "good-code", cookies...)
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	redirect, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "app.example", redirect.Host)
	assert.Equal(t, "/auth/success", redirect.Path)
	token := redirect.Query().Get("token")
	require.NotEmpty(t, token)

	rec = api.do(http.MethodGet, "/auth/success?token="+url.QueryEscape(token), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, token, decode[map[string]string](t, rec)["token"])

	rec = api.do(http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jane@example.com", decode[map[string]any](t, rec)["email"])
}

func TestGoogleOAuth_Disabled(t *testing.T) {
	api := newTestAPI(t, nil, "")
	rec := api.do(http.MethodGet, "/auth/google", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSystemRoutes(t *testing.T) {
	api := newTestAPI(t, nil, "")

	rec := api.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]any](t, rec)["status"])

	api.do(http.MethodGet, "/healthz", "", nil)
	rec = api.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/healthz"`)

	rec = api.do(http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode[errors.APIError](t, rec).Code)

	req := httptest.NewRequest(http.MethodOptions, "/users/me", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec = httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
