package memstore

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"socialnet/models"
	"socialnet/utils/errors"
)

// ---- friend requests

type friendRequestRepo DB

func (r *friendRequestRepo) db() *DB { return (*DB)(r) }

func (r *friendRequestRepo) Create(_ context.Context, req *models.FriendRequest) error {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()

	key := models.PairKey(req.Requester, req.Recipient)
	for _, existing := range db.friendRequests {
		if existing.PairKey == key && existing.Status == models.FriendRequestPending {
			return errors.Conflict("Friend request already pending")
		}
	}
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	now := db.tick()
	req.CreatedAt, req.UpdatedAt = now, now
	req.Status = models.FriendRequestPending
	req.PairKey = key
	db.friendRequests[req.ID] = *req
	return nil
}

func (r *friendRequestRepo) FindPending(_ context.Context, a, b primitive.ObjectID) (*models.FriendRequest, error) {
	db := r.db()
	db.mu.RLock()
	defer db.mu.RUnlock()

	key := models.PairKey(a, b)
	for _, req := range db.friendRequests {
		if req.PairKey == key && req.Status == models.FriendRequestPending {
			return &req, nil
		}
	}
	return nil, errors.NotFound("Friend request not found")
}

func (r *friendRequestRepo) Resolve(_ context.Context, requester, recipient primitive.ObjectID, status models.FriendRequestStatus) (*models.FriendRequest, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()

	for id, req := range db.friendRequests {
		if req.Requester == requester && req.Recipient == recipient && req.Status == models.FriendRequestPending {
			req.Status = status
			req.UpdatedAt = db.tick()
			db.friendRequests[id] = req
			return &req, nil
		}
	}
	return nil, errors.NotFound("Friend request not found")
}

func (r *friendRequestRepo) ListPendingFor(_ context.Context, recipient primitive.ObjectID) ([]models.FriendRequest, error) {
	return r.listPending(func(req models.FriendRequest) bool { return req.Recipient == recipient }), nil
}

func (r *friendRequestRepo) ListPendingFrom(_ context.Context, requester primitive.ObjectID) ([]models.FriendRequest, error) {
	return r.listPending(func(req models.FriendRequest) bool { return req.Requester == requester }), nil
}

func (r *friendRequestRepo) listPending(match func(models.FriendRequest) bool) []models.FriendRequest {
	db := r.db()
	db.mu.RLock()
	defer db.mu.RUnlock()

	requests := []models.FriendRequest{}
	for _, req := range db.friendRequests {
		if match(req) && req.Status == models.FriendRequestPending {
			requests = append(requests, req)
		}
	}
	sort.Slice(requests, func(i, j int) bool { return requests[i].CreatedAt.After(requests[j].CreatedAt) })
	return requests
}

func (r *friendRequestRepo) DeleteByUser(_ context.Context, user primitive.ObjectID) (int64, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()

	var n int64
	for id, req := range db.friendRequests {
		if req.Requester == user || req.Recipient == user {
			delete(db.friendRequests, id)
			n++
		}
	}
	return n, nil
}

// ---- posts

type postRepo DB

func (r *postRepo) db() *DB { return (*DB)(r) }

func copyPost(p models.Post) *models.Post {
	p.Likes = cloneIDs(p.Likes)
	return &p
}

func (r *postRepo) Create(_ context.Context, post *models.Post) error {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()

	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	now := db.tick()
	post.CreatedAt, post.UpdatedAt = now, now
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	db.posts[post.ID] = *copyPost(*post)
	return nil
}

func (r *postRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	db := r.db()
	db.mu.RLock()
	defer db.mu.RUnlock()

	p, ok := db.posts[id]
	if !ok {
		return nil, errors.NotFound("Post not found")
	}
	return copyPost(p), nil
}

func (r *postRepo) List(_ context.Context, authors []primitive.ObjectID, opts models.ListOptions) ([]models.Post, error) {
	db := r.db()
	db.mu.RLock()
	defer db.mu.RUnlock()

	var allowed map[primitive.ObjectID]bool
	if authors != nil {
		allowed = make(map[primitive.ObjectID]bool, len(authors))
		for _, a := range authors {
			allowed[a] = true
		}
	}
	posts := []models.Post{}
	for _, p := range db.posts {
		if allowed == nil || allowed[p.Author] {
			posts = append(posts, *copyPost(p))
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return page(posts, opts), nil
}

func (r *postRepo) UpdateContent(_ context.Context, id primitive.ObjectID, content string) (*models.Post, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.posts[id]
	if !ok {
		return nil, errors.NotFound("Post not found")
	}
	p.Content = content
	p.UpdatedAt = db.tick()
	db.posts[id] = p
	return copyPost(p), nil
}

func (r *postRepo) ToggleLike(_ context.Context, id, user primitive.ObjectID) (*models.Post, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.posts[id]
	if !ok {
		return nil, errors.NotFound("Post not found")
	}
	if p.LikedBy(user) {
		p.Likes = removeID(p.Likes, user)
	} else {
		p.Likes = addID(p.Likes, user)
	}
	db.posts[id] = p
	return copyPost(p), nil
}

func (r *postRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.posts[id]; !ok {
		return errors.NotFound("Post not found")
	}
	delete(db.posts, id)
	return nil
}

func (r *postRepo) DeleteByAuthor(_ context.Context, author primitive.ObjectID) ([]primitive.ObjectID, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()

	ids := []primitive.ObjectID{}
	for id, p := range db.posts {
		if p.Author == author {
			ids = append(ids, id)
			delete(db.posts, id)
		}
	}
	return ids, nil
}

func (r *postRepo) RemoveLikesBy(_ context.Context, user primitive.ObjectID) error {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()

	for id, p := range db.posts {
		if p.LikedBy(user) {
			p.Likes = removeID(p.Likes, user)
			db.posts[id] = p
		}
	}
	return nil
}

// ---- comments

type commentRepo DB

func (r *commentRepo) db() *DB { return (*DB)(r) }

func (r *commentRepo) Create(_ context.Context, comment *models.Comment) error {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()

	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	now := db.tick()
	comment.CreatedAt, comment.UpdatedAt = now, now
	db.comments[comment.ID] = *comment
	return nil
}

func (r *commentRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	db := r.db()
	db.mu.RLock()
	defer db.mu.RUnlock()

	c, ok := db.comments[id]
	if !ok {
		return nil, errors.NotFound("Comment not found")
	}
	return &c, nil
}

func (r *commentRepo) ListByPost(_ context.Context, post primitive.ObjectID) ([]models.Comment, error) {
	db := r.db()
	db.mu.RLock()
	defer db.mu.RUnlock()

	comments := []models.Comment{}
	for _, c := range db.comments {
		if c.Post == post {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].CreatedAt.Before(comments[j].CreatedAt) })
	return comments, nil
}

func (r *commentRepo) UpdateContent(_ context.Context, id primitive.ObjectID, content string) (*models.Comment, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()

	c, ok := db.comments[id]
	if !ok {
		return nil, errors.NotFound("Comment not found")
	}
	c.Content = content
	c.UpdatedAt = db.tick()
	db.comments[id] = c
	return &c, nil
}

func (r *commentRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.comments[id]; !ok {
		return errors.NotFound("Comment not found")
	}
	delete(db.comments, id)
	return nil
}

func (r *commentRepo) DeleteByPosts(_ context.Context, posts []primitive.ObjectID) (int64, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()

	targets := make(map[primitive.ObjectID]bool, len(posts))
	for _, p := range posts {
		targets[p] = true
	}
	var n int64
	for id, c := range db.comments {
		if targets[c.Post] {
			delete(db.comments, id)
			n++
		}
	}
	return n, nil
}

func (r *commentRepo) DeleteByAuthor(_ context.Context, author primitive.ObjectID) (int64, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()

	var n int64
	for id, c := range db.comments {
		if c.Author == author {
			delete(db.comments, id)
			n++
		}
	}
	return n, nil
}
