package handlers

import (
	"net/http"

	"socialnet/middleware"
	"socialnet/services"
)

type UserHandler struct {
	userService   *services.UserService
	friendService *services.FriendService
}

func NewUserHandler(userService *services.UserService, friendService *services.FriendService) *UserHandler {
	return &UserHandler{
		userService:   userService,
		friendService: friendService,
	}
}

type updateProfileRequest struct {
	FirstName      *string `json:"firstName" validate:"omitnil,notblank,max=50"`
	LastName       *string `json:"lastName" validate:"omitnil,notblank,max=50"`
	Email          *string `json:"email" validate:"omitnil,email"`
	Password       *string `json:"password" validate:"omitnil,min=6"`
	ProfilePicture *string `json:"profilePicture" validate:"omitnil,url"`
}

type recipientRequest struct {
	RecipientID string `json:"recipientId" validate:"required,mongodb"`
}

type requesterRequest struct {
	RequesterID string `json:"requesterId" validate:"required,mongodb"`
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	var input updateProfileRequest
	if err := decode(r, &input); err != nil {
		middleware.WriteError(w, err)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, services.ProfileUpdate{
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Email:          input.Email,
		Password:       input.Password,
		ProfilePicture: input.ProfilePicture,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if err := h.userService.DeleteAccount(r.Context(), userID); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "User deleted"})
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "User not found")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	user, err := h.userService.GetUser(r.Context(), id)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) SendFriendRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	var input recipientRequest
	if err := decode(r, &input); err != nil {
		middleware.WriteError(w, err)
		return
	}
	recipient, err := bodyID("recipientId", input.RecipientID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	if _, err := h.friendService.SendRequest(r.Context(), userID, recipient); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Friend request sent"})
}

func (h *UserHandler) AcceptFriendRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	var input requesterRequest
	if err := decode(r, &input); err != nil {
		middleware.WriteError(w, err)
		return
	}
	requester, err := bodyID("requesterId", input.RequesterID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	if err := h.friendService.AcceptRequest(r.Context(), userID, requester); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Friend request accepted"})
}

func (h *UserHandler) RejectFriendRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	var input requesterRequest
	if err := decode(r, &input); err != nil {
		middleware.WriteError(w, err)
		return
	}
	requester, err := bodyID("requesterId", input.RequesterID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	if err := h.friendService.RejectRequest(r.Context(), userID, requester); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Friend request rejected"})
}

func (h *UserHandler) GetFriendRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	requests, err := h.friendService.ListRequests(r.Context(), userID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

func (h *UserHandler) GetFriends(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	friends, err := h.friendService.ListFriends(r.Context(), userID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, friends)
}

func (h *UserHandler) GetFriendStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	other, err := pathID(r, "id", "User not found")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	status, err := h.friendService.Status(r.Context(), userID, other)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *UserHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	users, err := h.userService.Search(r.Context(), r.URL.Query().Get("q"), opts)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
