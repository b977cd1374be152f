package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lukian/user-api/internal/domain/entity"
	"github.com/lukian/user-api/internal/domain/repository"
)

// UserRepository is an in-memory implementation of the user repository.
// It mirrors the Postgres semantics, including the active-only filter on
// every read, so tests exercise the same contract the service sees in
// production.
type UserRepository struct {
	mu     sync.RWMutex
	nextID int64
	store  map[int64]*entity.User
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{
		nextID: 1,
		store:  make(map[int64]*entity.User),
	}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.store {
		if !existing.IsDeleted && existing.Email == u.Email {
			return repository.ErrEmailTaken
		}
	}

	now := time.Now().UTC()
	u.ID = r.nextID
	u.CreatedAt = now
	u.UpdatedAt = now
	r.nextID++

	cp := *u
	r.store[cp.ID] = &cp
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.store[id]
	if !ok || u.IsDeleted {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.store[u.ID]
	if !ok || existing.IsDeleted {
		return repository.ErrNotFound
	}
	for id, other := range r.store {
		if id != u.ID && !other.IsDeleted && other.Email == u.Email {
			return repository.ErrEmailTaken
		}
	}

	u.UpdatedAt = time.Now().UTC()
	cp := *u
	r.store[cp.ID] = &cp
	return nil
}

func (r *UserRepository) SoftDelete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.store[id]
	if !ok || u.IsDeleted {
		return repository.ErrNotFound
	}
	u.IsDeleted = true
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *UserRepository) FindByBirthDateBetween(ctx context.Context, from, to time.Time) ([]*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*entity.User, 0)
	for _, u := range r.store {
		if u.IsDeleted {
			continue
		}
		if u.BirthDate.Before(from) || u.BirthDate.After(to) {
			continue
		}
		cp := *u
		result = append(result, &cp)
	}
	// primary-key order, same as the SQL implementation
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Raw returns the stored row regardless of its deletion flag. It bypasses
// the active-only contract and exists so tests can verify that a deleted
// row still physically exists.
func (r *UserRepository) Raw(id int64) (*entity.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.store[id]
	if !ok {
		return nil, false
	}
	cp := *u
	return &cp, true
}
