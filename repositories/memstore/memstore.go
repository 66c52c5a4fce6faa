// Package memstore is an in-process implementation of the repositories,
// used for local development (STORAGE_BACKEND=memory) and tests. Every
// method takes one lock, which gives it the same single-document atomicity
// the Mongo implementations get from the server.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"socialnet/models"
	"socialnet/repositories"
	"socialnet/utils/errors"
)

type DB struct {
	mu             sync.RWMutex
	users          map[primitive.ObjectID]models.User
	friendRequests map[primitive.ObjectID]models.FriendRequest
	posts          map[primitive.ObjectID]models.Post
	comments       map[primitive.ObjectID]models.Comment
	now            func() time.Time
	last           time.Time
}

func New() *DB {
	return &DB{
		users:          map[primitive.ObjectID]models.User{},
		friendRequests: map[primitive.ObjectID]models.FriendRequest{},
		posts:          map[primitive.ObjectID]models.Post{},
		comments:       map[primitive.ObjectID]models.Comment{},
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// NewStore returns a Store whose repositories share one fresh DB
func NewStore() *repositories.Store {
	db := New()
	return db.Store()
}

func (db *DB) Store() *repositories.Store {
	return &repositories.Store{
		Users:          (*userRepo)(db),
		FriendRequests: (*friendRequestRepo)(db),
		Posts:          (*postRepo)(db),
		Comments:       (*commentRepo)(db),
	}
}

// tick returns a timestamp strictly after any previously issued one so
// newest-first ordering is stable within a test.
func (db *DB) tick() time.Time {
	t := db.now()
	if !t.After(db.last) {
		t = db.last.Add(time.Microsecond)
	}
	db.last = t
	return t
}

func cloneIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, len(ids))
	copy(out, ids)
	return out
}

func addID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, v := range ids {
		if v == id {
			return ids
		}
	}
	return append(cloneIDs(ids), id)
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func page[T any](items []T, opts models.ListOptions) []T {
	if opts.Skip > 0 {
		if opts.Skip >= int64(len(items)) {
			return []T{}
		}
		items = items[opts.Skip:]
	}
	if opts.Limit > 0 && opts.Limit < int64(len(items)) {
		items = items[:opts.Limit]
	}
	return items
}

// ---- users

type userRepo DB

func (r *userRepo) db() *DB { return (*DB)(r) }

func copyUser(u models.User) *models.User {
	u.Friends = cloneIDs(u.Friends)
	u.FriendRequests = cloneIDs(u.FriendRequests)
	return &u
}

func (r *userRepo) Create(_ context.Context, user *models.User) error {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, existing := range db.users {
		if existing.Email == user.Email {
			return errors.Conflict("User already exists")
		}
		if user.GoogleID != "" && existing.GoogleID == user.GoogleID {
			return errors.Conflict("User already exists")
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := db.tick()
	user.CreatedAt, user.UpdatedAt = now, now
	if user.Friends == nil {
		user.Friends = []primitive.ObjectID{}
	}
	if user.FriendRequests == nil {
		user.FriendRequests = []primitive.ObjectID{}
	}
	db.users[user.ID] = *copyUser(*user)
	return nil
}

func (r *userRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	db := r.db()
	db.mu.RLock()
	defer db.mu.RUnlock()

	u, ok := db.users[id]
	if !ok {
		return nil, errors.NotFound("User not found")
	}
	return copyUser(u), nil
}

func (r *userRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	db := r.db()
	db.mu.RLock()
	defer db.mu.RUnlock()

	users := []models.User{}
	seen := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		if u, ok := db.users[id]; ok && !seen[id] {
			seen[id] = true
			users = append(users, *copyUser(u))
		}
	}
	return users, nil
}

func (r *userRepo) findBy(match func(models.User) bool) (*models.User, error) {
	db := r.db()
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, u := range db.users {
		if match(u) {
			return copyUser(u), nil
		}
	}
	return nil, errors.NotFound("User not found")
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return r.findBy(func(u models.User) bool { return u.Email == email })
}

func (r *userRepo) FindByGoogleID(_ context.Context, googleID string) (*models.User, error) {
	return r.findBy(func(u models.User) bool { return googleID != "" && u.GoogleID == googleID })
}

func (r *userRepo) Update(_ context.Context, id primitive.ObjectID, update models.UserUpdate) (*models.User, error) {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()

	u, ok := db.users[id]
	if !ok {
		return nil, errors.NotFound("User not found")
	}
	if update.Email != nil {
		for otherID, other := range db.users {
			if otherID != id && other.Email == *update.Email {
				return nil, errors.Conflict("Email already in use")
			}
		}
		u.Email = *update.Email
	}
	if update.FirstName != nil {
		u.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		u.LastName = *update.LastName
	}
	if update.PasswordHash != nil {
		u.PasswordHash = *update.PasswordHash
	}
	if update.ProfilePicture != nil {
		u.ProfilePicture = *update.ProfilePicture
	}
	u.UpdatedAt = db.tick()
	db.users[id] = u
	return copyUser(u), nil
}

func (r *userRepo) LinkGoogleID(_ context.Context, id primitive.ObjectID, googleID string) error {
	return r.mutate(id, func(u *models.User) { u.GoogleID = googleID })
}

func (r *userRepo) Search(_ context.Context, query string, opts models.ListOptions) ([]models.User, error) {
	db := r.db()
	db.mu.RLock()
	defer db.mu.RUnlock()

	q := strings.ToLower(query)
	users := []models.User{}
	for _, u := range db.users {
		if strings.Contains(strings.ToLower(u.FirstName), q) ||
			strings.Contains(strings.ToLower(u.LastName), q) ||
			strings.Contains(strings.ToLower(u.Email), q) {
			users = append(users, *copyUser(u))
		}
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].FirstName != users[j].FirstName {
			return users[i].FirstName < users[j].FirstName
		}
		if users[i].LastName != users[j].LastName {
			return users[i].LastName < users[j].LastName
		}
		return users[i].ID.Hex() < users[j].ID.Hex()
	})
	return page(users, opts), nil
}

func (r *userRepo) Count(context.Context) (int64, error) {
	db := r.db()
	db.mu.RLock()
	defer db.mu.RUnlock()
	return int64(len(db.users)), nil
}

func (r *userRepo) mutate(id primitive.ObjectID, fn func(u *models.User)) error {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()

	u, ok := db.users[id]
	if !ok {
		return errors.NotFound("User not found")
	}
	fn(&u)
	db.users[id] = u
	return nil
}

func (r *userRepo) AddFriendRequest(_ context.Context, recipient, requester primitive.ObjectID) error {
	return r.mutate(recipient, func(u *models.User) { u.FriendRequests = addID(u.FriendRequests, requester) })
}

func (r *userRepo) RemoveFriendRequest(_ context.Context, recipient, requester primitive.ObjectID) error {
	return r.mutate(recipient, func(u *models.User) { u.FriendRequests = removeID(u.FriendRequests, requester) })
}

func (r *userRepo) AddFriend(_ context.Context, user, friend primitive.ObjectID) error {
	return r.mutate(user, func(u *models.User) { u.Friends = addID(u.Friends, friend) })
}

func (r *userRepo) RemoveReferences(_ context.Context, id primitive.ObjectID) error {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()

	for uid, u := range db.users {
		u.Friends = removeID(u.Friends, id)
		u.FriendRequests = removeID(u.FriendRequests, id)
		db.users[uid] = u
	}
	return nil
}

func (r *userRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	db := r.db()
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.users[id]; !ok {
		return errors.NotFound("User not found")
	}
	delete(db.users, id)
	return nil
}

var (
	_ repositories.UserRepository          = (*userRepo)(nil)
	_ repositories.FriendRequestRepository = (*friendRequestRepo)(nil)
	_ repositories.PostRepository          = (*postRepo)(nil)
	_ repositories.CommentRepository       = (*commentRepo)(nil)
)
