package favorite

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/wichananm65/storefront-api/internal/pagination"
	"github.com/wichananm65/storefront-api/internal/product"
)

var ErrNotFound = errors.New("favorite not found")

// Repository loads favorites with their product attached.
type Repository interface {
	ListByUser(ctx context.Context, userID int64, p pagination.Params) ([]Favorite, int, error)
	GetByID(ctx context.Context, id int64) (Favorite, error)
	Find(ctx context.Context, userID, productID int64) (Favorite, error)
	// FirstOrCreate returns the existing (user, product) row or inserts one.
	FirstOrCreate(ctx context.Context, userID, productID int64) (Favorite, bool, error)
	Update(ctx context.Context, f Favorite) (Favorite, error)
	Delete(ctx context.Context, id int64) error
	PairTaken(ctx context.Context, userID, productID, exceptID int64) (bool, error)
}

// ProductSource resolves products for the in-memory repository.
type ProductSource interface {
	ByIDs(ids []int64) map[int64]product.Product
}

// InMemoryRepository is used by tests and local experiments.
type InMemoryRepository struct {
	mu       sync.RWMutex
	rows     []Favorite
	nextID   int64
	products ProductSource
}

func NewInMemoryRepository(seed []Favorite, products ProductSource) *InMemoryRepository {
	r := &InMemoryRepository{rows: make([]Favorite, 0, len(seed)), nextID: 1, products: products}
	for _, f := range seed {
		r.rows = append(r.rows, f)
		if f.ID >= r.nextID {
			r.nextID = f.ID + 1
		}
	}
	return r
}

func (r *InMemoryRepository) ListByUser(_ context.Context, userID int64, p pagination.Params) ([]Favorite, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mine := make([]Favorite, 0)
	for _, f := range r.rows {
		if f.UserID == userID {
			mine = append(mine, f)
		}
	}
	sort.Slice(mine, func(i, j int) bool { return mine[i].ID > mine[j].ID })

	page, total := pagination.Slice(mine, p)
	r.attach(page)
	return page, total, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int64) (Favorite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.rows {
		if f.ID == id {
			out := []Favorite{f}
			r.attach(out)
			return out[0], nil
		}
	}
	return Favorite{}, ErrNotFound
}

func (r *InMemoryRepository) Find(_ context.Context, userID, productID int64) (Favorite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.rows {
		if f.UserID == userID && f.ProductID == productID {
			return f, nil
		}
	}
	return Favorite{}, ErrNotFound
}

func (r *InMemoryRepository) FirstOrCreate(_ context.Context, userID, productID int64) (Favorite, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.rows {
		if f.UserID == userID && f.ProductID == productID {
			return f, false, nil
		}
	}

	now := time.Now()
	f := Favorite{ID: r.nextID, UserID: userID, ProductID: productID, CreatedAt: now, UpdatedAt: now}
	r.nextID++
	r.rows = append(r.rows, f)
	return f, true, nil
}

func (r *InMemoryRepository) Update(_ context.Context, f Favorite) (Favorite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == f.ID {
			r.rows[i].UserID = f.UserID
			r.rows[i].ProductID = f.ProductID
			r.rows[i].UpdatedAt = time.Now()
			return r.rows[i], nil
		}
	}
	return Favorite{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, f := range r.rows {
		if f.ID == id {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) PairTaken(_ context.Context, userID, productID, exceptID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.rows {
		if f.UserID == userID && f.ProductID == productID && f.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

// attach expects the read lock to be held.
func (r *InMemoryRepository) attach(favs []Favorite) {
	if r.products == nil || len(favs) == 0 {
		return
	}
	found := r.products.ByIDs(productIDs(favs))
	for i := range favs {
		if p, ok := found[favs[i].ProductID]; ok {
			favs[i].Product = &p
		}
	}
}

func productIDs(favs []Favorite) []int64 {
	ids := make([]int64, 0, len(favs))
	for _, f := range favs {
		ids = append(ids, f.ProductID)
	}
	return ids
}
