package user

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryRepository struct {
	mu     sync.RWMutex
	users  map[int64]User
	nextID int64
}

// NewMemoryRepository builds an in-memory user store for tests and for
// running without a database.
func NewMemoryRepository() Repository {
	return &memoryRepository{users: make(map[int64]User), nextID: 1}
}

func (r *memoryRepository) Create(_ context.Context, u User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email && !existing.IsDeleted {
			return User{}, ErrEmailTaken
		}
	}
	u.ID = r.nextID
	r.nextID++
	r.users[u.ID] = u
	return u, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id int64) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok || u.IsDeleted {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email && !u.IsDeleted {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *memoryRepository) List(_ context.Context) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := []User{}
	for _, u := range r.users {
		if !u.IsDeleted {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *memoryRepository) Update(_ context.Context, u User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[u.ID]
	if !ok || existing.IsDeleted {
		return User{}, ErrNotFound
	}
	now := time.Now().UTC()
	existing.Name = u.Name
	existing.Blocked = u.Blocked
	existing.UpdatedAt = &now
	existing.UpdatedBy = u.UpdatedBy
	r.users[u.ID] = existing
	return existing, nil
}

func (r *memoryRepository) SoftDelete(_ context.Context, id int64, actor string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.IsDeleted {
		return ErrNotFound
	}
	now := time.Now().UTC()
	u.IsDeleted = true
	u.DeletedAt = &now
	u.DeletedBy = actor
	r.users[id] = u
	return nil
}
