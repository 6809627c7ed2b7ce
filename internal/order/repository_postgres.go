package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/wichananm65/storefront-api/internal/database"
	"github.com/wichananm65/storefront-api/internal/pagination"
	"github.com/wichananm65/storefront-api/internal/product"
)

const (
	orderColumns = `id, user_id, order_number, total_amount, status, notes, created_at, updated_at`
	itemColumns  = `id, order_id, product_id, quantity, unit_price, subtotal, created_at, updated_at`

	insertOrderQuery = `
		INSERT INTO orders (user_id, order_number, total_amount, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING ` + orderColumns
	updateOrderQuery = `
		UPDATE orders SET total_amount = $1, status = $2, notes = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING ` + orderColumns
	insertItemQuery = `
		INSERT INTO order_items (order_id, product_id, quantity, unit_price, subtotal, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING ` + itemColumns
	deleteItemsQuery = `DELETE FROM order_items WHERE order_id = $1`

	getOrderQuery      = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	countByUserQuery   = `SELECT COUNT(*) FROM orders WHERE user_id = $1`
	listByUserQuery    = `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY id DESC LIMIT $2 OFFSET $3`
	itemsByOrdersQuery = `SELECT ` + itemColumns + ` FROM order_items WHERE order_id = ANY($1::BIGINT[]) ORDER BY id`
	deleteOrderQuery   = `DELETE FROM orders WHERE id = $1`
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) WithinTx(ctx context.Context, fn func(Store) error) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return fn(&txStore{tx: tx})
	})
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (Order, error) {
	var o Order
	if err := r.db.GetContext(ctx, &o, getOrderQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("get order %d: %w", id, err)
	}

	one := []Order{o}
	if err := r.attach(ctx, one); err != nil {
		return Order{}, err
	}
	return one[0], nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64, p pagination.Params) ([]Order, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, countByUserQuery, userID); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	out := make([]Order, 0, p.Limit())
	if err := r.db.SelectContext(ctx, &out, listByUserQuery, userID, p.Limit(), p.Offset()); err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	if err := r.attach(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteOrderQuery, id)
	if err != nil {
		return fmt.Errorf("delete order %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// attach loads the items of orders and the product of every item with one
// query each.
func (r *PostgresRepository) attach(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	var items []Item
	if err := r.db.SelectContext(ctx, &items, itemsByOrdersQuery, pq.Array(ids)); err != nil {
		return fmt.Errorf("load order items: %w", err)
	}

	productIDs := make([]int64, 0, len(items))
	for _, it := range items {
		productIDs = append(productIDs, it.ProductID)
	}
	products, err := product.FetchByIDs(ctx, r.db, productIDs)
	if err != nil {
		return err
	}

	byOrder := make(map[int64][]Item, len(orders))
	for _, it := range items {
		if p, ok := products[it.ProductID]; ok {
			it.Product = &p
		}
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}
	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = make([]Item, 0)
		}
	}
	return nil
}

type txStore struct {
	tx *sqlx.Tx
}

func (s *txStore) InsertOrder(ctx context.Context, o Order) (Order, error) {
	var created Order
	err := s.tx.QueryRowxContext(ctx, insertOrderQuery,
		o.UserID, o.OrderNumber, o.TotalAmount, o.Status, o.Notes,
	).StructScan(&created)
	if err != nil {
		return Order{}, fmt.Errorf("insert order: %w", err)
	}
	return created, nil
}

func (s *txStore) UpdateOrder(ctx context.Context, o Order) (Order, error) {
	var updated Order
	err := s.tx.QueryRowxContext(ctx, updateOrderQuery, o.TotalAmount, o.Status, o.Notes, o.ID).StructScan(&updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("update order %d: %w", o.ID, err)
	}
	return updated, nil
}

func (s *txStore) InsertItem(ctx context.Context, orderID int64, in ItemInput) (Item, error) {
	var it Item
	err := s.tx.QueryRowxContext(ctx, insertItemQuery,
		orderID, in.ProductID, in.Quantity, in.UnitPrice, in.Subtotal,
	).StructScan(&it)
	if err != nil {
		return Item{}, fmt.Errorf("insert order item: %w", err)
	}
	return it, nil
}

func (s *txStore) DeleteItems(ctx context.Context, orderID int64) error {
	if _, err := s.tx.ExecContext(ctx, deleteItemsQuery, orderID); err != nil {
		return fmt.Errorf("delete items of order %d: %w", orderID, err)
	}
	return nil
}
