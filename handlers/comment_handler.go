package handlers

import (
	"net/http"

	"socialnet/middleware"
	"socialnet/services"
)

type CommentHandler struct {
	commentService *services.CommentService
}

func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

func (h *CommentHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	postID, err := pathID(r, "postId", "Post not found")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	var input contentRequest
	if err := decode(r, &input); err != nil {
		middleware.WriteError(w, err)
		return
	}
	comment, err := h.commentService.Add(r.Context(), postID, userID, input.Content)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postId", "Post not found")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	comments, err := h.commentService.List(r.Context(), postID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (h *CommentHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	postID, err := pathID(r, "postId", "Post not found")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	commentID, err := pathID(r, "commentId", "Comment not found")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	var input contentRequest
	if err := decode(r, &input); err != nil {
		middleware.WriteError(w, err)
		return
	}
	comment, err := h.commentService.Update(r.Context(), postID, commentID, userID, input.Content)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	postID, err := pathID(r, "postId", "Post not found")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	commentID, err := pathID(r, "commentId", "Comment not found")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if err := h.commentService.Delete(r.Context(), postID, commentID, userID); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Comment removed"})
}
