package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"socialnet/handlers"
	"socialnet/middleware"
	"socialnet/monitoring"
)

// Handlers groups everything the router dispatches to
type Handlers struct {
	Auth     *handlers.AuthHandler
	Users    *handlers.UserHandler
	Posts    *handlers.PostHandler
	Comments *handlers.CommentHandler
	System   *handlers.SystemHandler
}

// SetupRoutes initializes all the application routes
func SetupRoutes(h Handlers, tokens middleware.TokenParser, allowedOrigins []string) *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(handlers.NotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(handlers.MethodNotAllowed)

	// Outermost first; instrumentation runs after matching so it sees the route template
	router.Use(middleware.ErrorMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(allowedOrigins))
	router.Use(monitoring.InstrumentHandler)

	// System routes
	router.HandleFunc("/healthz", h.System.Health).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Auth routes
	authRouter := router.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", h.Auth.RegisterUser).Methods(http.MethodPost, http.MethodOptions)
	authRouter.HandleFunc("/login", h.Auth.LoginUser).Methods(http.MethodPost, http.MethodOptions)
	authRouter.HandleFunc("/google", h.Auth.GoogleLogin).Methods(http.MethodGet)
	authRouter.HandleFunc("/google/callback", h.Auth.GoogleCallback).Methods(http.MethodGet)
	authRouter.HandleFunc("/success", h.Auth.AuthSuccess).Methods(http.MethodGet)

	// User routes
	userRouter := router.PathPrefix("/users").Subrouter()
	userRouter.Use(middleware.JWTMiddleware(tokens))
	userRouter.HandleFunc("/me", h.Users.GetMe).Methods(http.MethodGet, http.MethodOptions)
	userRouter.HandleFunc("/me", h.Users.UpdateMe).Methods(http.MethodPut)
	userRouter.HandleFunc("/me", h.Users.DeleteMe).Methods(http.MethodDelete)
	userRouter.HandleFunc("/profile/{id}", h.Users.GetProfile).Methods(http.MethodGet, http.MethodOptions)
	userRouter.HandleFunc("/friend-request", h.Users.SendFriendRequest).Methods(http.MethodPost, http.MethodOptions)
	userRouter.HandleFunc("/accept-friend-request", h.Users.AcceptFriendRequest).Methods(http.MethodPost, http.MethodOptions)
	userRouter.HandleFunc("/reject-friend-request", h.Users.RejectFriendRequest).Methods(http.MethodPost, http.MethodOptions)
	userRouter.HandleFunc("/friend-requests", h.Users.GetFriendRequests).Methods(http.MethodGet, http.MethodOptions)
	userRouter.HandleFunc("/friends", h.Users.GetFriends).Methods(http.MethodGet, http.MethodOptions)
	userRouter.HandleFunc("/friend-status/{id}", h.Users.GetFriendStatus).Methods(http.MethodGet, http.MethodOptions)
	userRouter.HandleFunc("/search", h.Users.SearchUsers).Methods(http.MethodGet, http.MethodOptions)

	// Post routes; /feed is registered before /{id} so it is not taken for an id
	postRouter := router.PathPrefix("/posts").Subrouter()
	postRouter.Use(middleware.JWTMiddleware(tokens))
	postRouter.HandleFunc("", h.Posts.CreatePost).Methods(http.MethodPost, http.MethodOptions)
	postRouter.HandleFunc("", h.Posts.ListPosts).Methods(http.MethodGet)
	postRouter.HandleFunc("/feed", h.Posts.GetFeed).Methods(http.MethodGet, http.MethodOptions)
	postRouter.HandleFunc("/{id}", h.Posts.GetPost).Methods(http.MethodGet, http.MethodOptions)
	postRouter.HandleFunc("/{id}", h.Posts.UpdatePost).Methods(http.MethodPut)
	postRouter.HandleFunc("/{id}", h.Posts.DeletePost).Methods(http.MethodDelete)
	postRouter.HandleFunc("/{id}/toggle-like", h.Posts.ToggleLike).Methods(http.MethodPost, http.MethodOptions)

	// Comment routes
	postRouter.HandleFunc("/{postId}/comments", h.Comments.AddComment).Methods(http.MethodPost, http.MethodOptions)
	postRouter.HandleFunc("/{postId}/comments", h.Comments.ListComments).Methods(http.MethodGet)
	postRouter.HandleFunc("/{postId}/comments/{commentId}", h.Comments.UpdateComment).Methods(http.MethodPut, http.MethodOptions)
	postRouter.HandleFunc("/{postId}/comments/{commentId}", h.Comments.DeleteComment).Methods(http.MethodDelete)

	return router
}
