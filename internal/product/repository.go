package product

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wichananm65/storefront-api/internal/pagination"
)

var ErrNotFound = errors.New("product not found")

type Repository interface {
	List(ctx context.Context, f Filter, p pagination.Params) ([]Product, int, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]Product, error)
	GetByID(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, p Product) (Product, error)
	Delete(ctx context.Context, id int64) error
	NameTaken(ctx context.Context, name string, exceptID int64) (bool, error)
	// ExistingIDs returns the subset of ids that belong to a product.
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

// InMemoryRepository is a simple in-memory implementation useful for tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Product
	nextID  int64
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	r := &InMemoryRepository{
		storage: make([]Product, 0, len(seed)),
		nextID:  1,
	}

	var maxID int64
	for _, p := range seed {
		r.storage = append(r.storage, p)
		if p.ID > maxID {
			maxID = p.ID
		}
	}

	r.nextID = maxID + 1
	return r
}

func (r *InMemoryRepository) List(_ context.Context, f Filter, p pagination.Params) ([]Product, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	term := strings.ToLower(f.Search)
	matched := make([]Product, 0, len(r.storage))
	for _, pr := range r.storage {
		if term != "" && !strings.Contains(strings.ToLower(pr.Name), term) &&
			(pr.Description == nil || !strings.Contains(strings.ToLower(*pr.Description), term)) {
			continue
		}
		if f.CategoryID != nil && (pr.CategoryID == nil || *pr.CategoryID != *f.CategoryID) {
			continue
		}
		if f.Available && pr.Quantity <= 0 {
			continue
		}
		matched = append(matched, pr)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	page, total := pagination.Slice(matched, p)
	return page, total, nil
}

func (r *InMemoryRepository) ListByCategory(_ context.Context, categoryID int64) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Product, 0)
	for _, p := range r.storage {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int64) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.storage {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	p.ID = r.nextID
	p.CreatedAt, p.UpdatedAt = now, now
	r.nextID++
	r.storage = append(r.storage, p)
	return p, nil
}

func (r *InMemoryRepository) Update(_ context.Context, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == p.ID {
			p.CreatedAt = r.storage[i].CreatedAt
			p.UpdatedAt = time.Now().UTC()
			r.storage[i] = p
			return p, nil
		}
	}
	return Product{}, ErrNotFound
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
	for _, p := range r.storage {
		if p.Name == name && p.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryRepository) ExistingIDs(_ context.Context, ids []int64) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	known := make(map[int64]struct{}, len(r.storage))
	for _, p := range r.storage {
		known[p.ID] = struct{}{}
	}
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := known[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

// ByIDs returns the stored products for ids keyed by id.
func (r *InMemoryRepository) ByIDs(ids []int64) map[int64]Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make(map[int64]Product, len(ids))
	for _, p := range r.storage {
		if _, ok := want[p.ID]; ok {
			out[p.ID] = p
		}
	}
	return out
}
