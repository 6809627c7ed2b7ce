package category

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wichananm65/storefront-api/internal/pagination"
)

var ErrNotFound = errors.New("category not found")

type Repository interface {
	List(ctx context.Context, search string, p pagination.Params) ([]Category, int, error)
	GetByID(ctx context.Context, id int64) (Category, error)
	Create(ctx context.Context, c Category) (Category, error)
	Update(ctx context.Context, c Category) (Category, error)
	Delete(ctx context.Context, id int64) error
	// NameTaken reports whether another category (not exceptID) uses name.
	NameTaken(ctx context.Context, name string, exceptID int64) (bool, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Category
	nextID  int64
}

func NewInMemoryRepository(seed []Category) *InMemoryRepository {
	r := &InMemoryRepository{
		storage: make([]Category, 0, len(seed)),
		nextID:  1,
	}

	var maxID int64
	for _, c := range seed {
		r.storage = append(r.storage, c)
		if c.ID > maxID {
			maxID = c.ID
		}
	}

	r.nextID = maxID + 1
	return r
}

func (r *InMemoryRepository) List(_ context.Context, search string, p pagination.Params) ([]Category, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	term := strings.ToLower(search)
	matched := make([]Category, 0, len(r.storage))
	for _, c := range r.storage {
		if term == "" || strings.Contains(strings.ToLower(c.Name), term) ||
			(c.Note != nil && strings.Contains(strings.ToLower(*c.Note), term)) {
			matched = append(matched, c)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	page, total := pagination.Slice(matched, p)
	return page, total, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int64) (Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.storage {
		if c.ID == id {
			return c, nil
		}
	}
	return Category{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, c Category) (Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	c.ID = r.nextID
	c.CreatedAt, c.UpdatedAt = now, now
	r.nextID++
	r.storage = append(r.storage, c)
	return c, nil
}

func (r *InMemoryRepository) Update(_ context.Context, c Category) (Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == c.ID {
			c.CreatedAt = r.storage[i].CreatedAt
			c.UpdatedAt = time.Now().UTC()
			r.storage[i] = c
			return c, nil
		}
	}
	return Category{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			r.storage = append(r.storage[:i], r.storage[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) NameTaken(_ context.Context, name string, exceptID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.storage {
		if c.Name == name && c.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryRepository) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := r.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}
