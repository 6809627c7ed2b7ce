package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wichananm65/storefront-api/internal/pagination"
	"github.com/wichananm65/storefront-api/internal/product"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrUnknownProduct is returned by the in-memory store where the
	// database would fail the order_items foreign key.
	ErrUnknownProduct = errors.New("unknown product")
)

// Store is the set of writes available inside an order transaction.
type Store interface {
	InsertOrder(ctx context.Context, o Order) (Order, error)
	UpdateOrder(ctx context.Context, o Order) (Order, error)
	InsertItem(ctx context.Context, orderID int64, in ItemInput) (Item, error)
	DeleteItems(ctx context.Context, orderID int64) error
}

type Repository interface {
	// WithinTx runs fn in one transaction. Nothing fn wrote survives when it
	// returns an error.
	WithinTx(ctx context.Context, fn func(Store) error) error
	// GetByID returns the order with its items and their products.
	GetByID(ctx context.Context, id int64) (Order, error)
	ListByUser(ctx context.Context, userID int64, p pagination.Params) ([]Order, int, error)
	// Delete removes the order; its items go with it.
	Delete(ctx context.Context, id int64) error
}

// ProductSource resolves products for the in-memory repository.
type ProductSource interface {
	ByIDs(ids []int64) map[int64]product.Product
}

type memState struct {
	orders    []Order
	items     []Item
	nextOrder int64
	nextItem  int64
}

func (s memState) clone() memState {
	c := s
	c.orders = append([]Order(nil), s.orders...)
	c.items = append([]Item(nil), s.items...)
	return c
}

// InMemoryRepository keeps orders in memory. A transaction works on a copy
// of the state that becomes the live state only on success.
type InMemoryRepository struct {
	mu       sync.RWMutex
	state    memState
	products ProductSource
}

func NewInMemoryRepository(products ProductSource) *InMemoryRepository {
	return &InMemoryRepository{
		state:    memState{nextOrder: 1, nextItem: 1},
		products: products,
	}
}

func (r *InMemoryRepository) WithinTx(_ context.Context, fn func(Store) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	work := &memStore{state: r.state.clone(), products: r.products}
	if err := fn(work); err != nil {
		return err
	}
	r.state = work.state
	return nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int64) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.state.orders {
		if o.ID == id {
			out := []Order{o}
			r.attach(out)
			return out[0], nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) ListByUser(_ context.Context, userID int64, p pagination.Params) ([]Order, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mine := make([]Order, 0)
	for _, o := range r.state.orders {
		if o.UserID == userID {
			mine = append(mine, o)
		}
	}
	sort.Slice(mine, func(i, j int) bool { return mine[i].ID > mine[j].ID })

	page, total := pagination.Slice(mine, p)
	r.attach(page)
	return page, total, nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, o := range r.state.orders {
		if o.ID == id {
			r.state.orders = append(r.state.orders[:i], r.state.orders[i+1:]...)
			r.state.items = dropItems(r.state.items, id)
			return nil
		}
	}
	return ErrNotFound
}

// ItemCount reports how many item rows exist across all orders.
func (r *InMemoryRepository) ItemCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.state.items)
}

// attach expects the read lock to be held.
func (r *InMemoryRepository) attach(orders []Order) {
	var productIDs []int64
	for i := range orders {
		orders[i].Items = make([]Item, 0)
		for _, it := range r.state.items {
			if it.OrderID == orders[i].ID {
				orders[i].Items = append(orders[i].Items, it)
				productIDs = append(productIDs, it.ProductID)
			}
		}
	}
	if r.products == nil || len(productIDs) == 0 {
		return
	}
	found := r.products.ByIDs(productIDs)
	for i := range orders {
		for j := range orders[i].Items {
			if p, ok := found[orders[i].Items[j].ProductID]; ok {
				orders[i].Items[j].Product = &p
			}
		}
	}
}

type memStore struct {
	state    memState
	products ProductSource
}

func (s *memStore) InsertOrder(_ context.Context, o Order) (Order, error) {
	now := time.Now()
	o.ID = s.state.nextOrder
	o.CreatedAt, o.UpdatedAt = now, now
	o.Items = nil
	s.state.nextOrder++
	s.state.orders = append(s.state.orders, o)
	return o, nil
}

func (s *memStore) UpdateOrder(_ context.Context, o Order) (Order, error) {
	for i := range s.state.orders {
		if s.state.orders[i].ID == o.ID {
			o.CreatedAt = s.state.orders[i].CreatedAt
			o.UpdatedAt = time.Now()
			o.Items = nil
			s.state.orders[i] = o
			return o, nil
		}
	}
	return Order{}, ErrNotFound
}

func (s *memStore) InsertItem(_ context.Context, orderID int64, in ItemInput) (Item, error) {
	if s.products != nil {
		if _, ok := s.products.ByIDs([]int64{in.ProductID})[in.ProductID]; !ok {
			return Item{}, fmt.Errorf("insert order item: %w: %d", ErrUnknownProduct, in.ProductID)
		}
	}
	now := time.Now()
	it := Item{
		ID:        s.state.nextItem,
		OrderID:   orderID,
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		UnitPrice: in.UnitPrice,
		Subtotal:  in.Subtotal,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.state.nextItem++
	s.state.items = append(s.state.items, it)
	return it, nil
}

func (s *memStore) DeleteItems(_ context.Context, orderID int64) error {
	s.state.items = dropItems(s.state.items, orderID)
	return nil
}

func dropItems(items []Item, orderID int64) []Item {
	kept := items[:0:0]
	for _, it := range items {
		if it.OrderID != orderID {
			kept = append(kept, it)
		}
	}
	return kept
}
