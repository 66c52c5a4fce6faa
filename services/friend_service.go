package services

import (
	"context"
	stderrors "errors"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"socialnet/models"
	"socialnet/monitoring"
	"socialnet/repositories"
	"socialnet/utils/errors"
)

// FriendService drives the friend-request lifecycle for a pair of users:
// none -> pending(requester) -> friends, or back to none on reject.
// State checks read the store directly rather than the user cache.
type FriendService struct {
	users    *UserService
	userRepo repositories.UserRepository
	requests repositories.FriendRequestRepository
}

func NewFriendService(users *UserService, store *repositories.Store) *FriendService {
	return &FriendService{
		users:    users,
		userRepo: store.Users,
		requests: store.FriendRequests,
	}
}

func (s *FriendService) SendRequest(ctx context.Context, from, to primitive.ObjectID) (*models.FriendRequest, error) {
	if from == to {
		return nil, errors.InvalidInput("Cannot send a friend request to yourself")
	}

	sender, err := s.userRepo.FindByID(ctx, from)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.FindByID(ctx, to); err != nil {
		return nil, err
	}

	if sender.IsFriend(to) {
		return nil, errors.Conflict("Already friends")
	}
	_, err = s.requests.FindPending(ctx, from, to)
	if err == nil {
		return nil, errors.Conflict("Friend request already sent")
	}
	if !stderrors.Is(err, errors.ErrNotFound) {
		return nil, err
	}

	// The pending-pair unique index makes a racing duplicate fail here
	req := &models.FriendRequest{Requester: from, Recipient: to}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}
	if err := s.userRepo.AddFriendRequest(ctx, to, from); err != nil {
		return nil, err
	}
	s.users.cache.Delete(ctx, to.Hex())

	monitoring.FriendRequests.WithLabelValues("sent").Inc()
	logrus.WithFields(logrus.Fields{"requester": from.Hex(), "recipient": to.Hex()}).Info("Friend request sent")
	return req, nil
}

func (s *FriendService) AcceptRequest(ctx context.Context, recipient, requester primitive.ObjectID) error {
	if _, err := s.userRepo.FindByID(ctx, requester); err != nil {
		return err
	}
	if _, err := s.requests.Resolve(ctx, requester, recipient, models.FriendRequestAccepted); err != nil {
		return err
	}

	if err := s.userRepo.AddFriend(ctx, recipient, requester); err != nil {
		return err
	}
	if err := s.userRepo.AddFriend(ctx, requester, recipient); err != nil {
		return err
	}
	if err := s.userRepo.RemoveFriendRequest(ctx, recipient, requester); err != nil {
		return err
	}
	s.users.cache.Delete(ctx, recipient.Hex(), requester.Hex())

	monitoring.FriendRequests.WithLabelValues("accepted").Inc()
	logrus.WithFields(logrus.Fields{"requester": requester.Hex(), "recipient": recipient.Hex()}).Info("Friend request accepted")
	return nil
}

func (s *FriendService) RejectRequest(ctx context.Context, recipient, requester primitive.ObjectID) error {
	if _, err := s.requests.Resolve(ctx, requester, recipient, models.FriendRequestRejected); err != nil {
		return err
	}
	if err := s.userRepo.RemoveFriendRequest(ctx, recipient, requester); err != nil {
		return err
	}
	s.users.cache.Delete(ctx, recipient.Hex())

	monitoring.FriendRequests.WithLabelValues("rejected").Inc()
	logrus.WithFields(logrus.Fields{"requester": requester.Hex(), "recipient": recipient.Hex()}).Info("Friend request rejected")
	return nil
}

// Status reports the relation between a and b without changing it
func (s *FriendService) Status(ctx context.Context, a, b primitive.ObjectID) (*models.FriendshipStatus, error) {
	if a == b {
		return nil, errors.InvalidInput("Cannot query friendship status with yourself")
	}
	user, err := s.userRepo.FindByID(ctx, a)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.FindByID(ctx, b); err != nil {
		return nil, err
	}

	if user.IsFriend(b) {
		return &models.FriendshipStatus{Status: models.FriendshipFriends}, nil
	}
	req, err := s.requests.FindPending(ctx, a, b)
	if stderrors.Is(err, errors.ErrNotFound) {
		return &models.FriendshipStatus{Status: models.FriendshipNone}, nil
	}
	if err != nil {
		return nil, err
	}
	requester := req.Requester
	return &models.FriendshipStatus{Status: models.FriendshipPending, Requester: &requester}, nil
}

// ListRequests returns the pending requests addressed to user, newest first
func (s *FriendService) ListRequests(ctx context.Context, user primitive.ObjectID) ([]models.FriendRequestView, error) {
	requests, err := s.requests.ListPendingFor(ctx, user)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(requests))
	for _, r := range requests {
		ids = append(ids, r.Requester)
	}
	profiles, err := s.users.summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.FriendRequestView, 0, len(requests))
	for _, r := range requests {
		view := models.FriendRequestView{FriendRequest: r}
		if p, ok := profiles[r.Requester]; ok {
			view.RequesterProfile = &p
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *FriendService) ListFriends(ctx context.Context, user primitive.ObjectID) ([]models.UserSummary, error) {
	u, err := s.users.GetUser(ctx, user)
	if err != nil {
		return nil, err
	}
	friends, err := s.userRepo.FindByIDs(ctx, u.Friends)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserSummary, 0, len(friends))
	for i := range friends {
		out = append(out, friends[i].Summary())
	}
	return out, nil
}
