package handlers

import (
	"net/http"

	"socialnet/middleware"
	"socialnet/services"
)

type PostHandler struct {
	postService *services.PostService
}

func NewPostHandler(postService *services.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// Length limits are checked by the service so that trimming applies first
type contentRequest struct {
	Content string `json:"content"`
}

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	var input contentRequest
	if err := decode(r, &input); err != nil {
		middleware.WriteError(w, err)
		return
	}
	post, err := h.postService.Create(r.Context(), userID, input.Content)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	opts, err := listOptions(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	posts, err := h.postService.List(r.Context(), userID, opts)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	opts, err := listOptions(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	posts, err := h.postService.Feed(r.Context(), userID, opts)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	id, err := pathID(r, "id", "Post not found")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	post, err := h.postService.Get(r.Context(), id, userID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	id, err := pathID(r, "id", "Post not found")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	var input contentRequest
	if err := decode(r, &input); err != nil {
		middleware.WriteError(w, err)
		return
	}
	post, err := h.postService.Update(r.Context(), id, userID, input.Content)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	id, err := pathID(r, "id", "Post not found")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if err := h.postService.Delete(r.Context(), id, userID); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Post removed"})
}

func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	id, err := pathID(r, "id", "Post not found")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	post, err := h.postService.ToggleLike(r.Context(), id, userID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}
