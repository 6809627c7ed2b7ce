package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/wichananm65/storefront-api/internal/database"
	"github.com/wichananm65/storefront-api/internal/pagination"
)

const (
	productColumns = `id, name, description, price, quantity, type, image, user_add_id, category_id, created_at, updated_at`

	productFilter = `
		($1 = '' OR name ILIKE $2 OR description ILIKE $2)
		AND ($3::BIGINT IS NULL OR category_id = $3)
		AND (NOT $4 OR quantity > 0)`

	countProductsQuery = `SELECT COUNT(*) FROM products WHERE ` + productFilter
	listProductsQuery  = `
		SELECT ` + productColumns + `
		FROM products
		WHERE ` + productFilter + `
		ORDER BY id DESC
		LIMIT $5 OFFSET $6`
	listByCategoryQuery = `SELECT ` + productColumns + ` FROM products WHERE category_id = $1 ORDER BY id`
	getProductQuery     = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	productsByIDsQuery  = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1::BIGINT[])`
	existingIDsQuery    = `SELECT id FROM products WHERE id = ANY($1::BIGINT[])`
	insertProductQuery  = `
		INSERT INTO products (name, description, price, quantity, type, image, user_add_id, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING ` + productColumns
	updateProductQuery = `
		UPDATE products
		SET name = $1, description = $2, price = $3, quantity = $4, type = $5, image = $6, category_id = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING ` + productColumns
	deleteProductQuery    = `DELETE FROM products WHERE id = $1`
	productNameTakenQuery = `SELECT EXISTS (SELECT 1 FROM products WHERE name = $1 AND id <> $2)`
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, f Filter, p pagination.Params) ([]Product, int, error) {
	pattern := database.LikePattern(f.Search)

	var total int
	if err := r.db.GetContext(ctx, &total, countProductsQuery, f.Search, pattern, f.CategoryID, f.Available); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	out := make([]Product, 0, p.Limit())
	err := r.db.SelectContext(ctx, &out, listProductsQuery, f.Search, pattern, f.CategoryID, f.Available, p.Limit(), p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return out, total, nil
}

func (r *PostgresRepository) ListByCategory(ctx context.Context, categoryID int64) ([]Product, error) {
	out := make([]Product, 0)
	if err := r.db.SelectContext(ctx, &out, listByCategoryQuery, categoryID); err != nil {
		return nil, fmt.Errorf("list products of category %d: %w", categoryID, err)
	}
	return out, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (Product, error) {
	var p Product
	if err := r.db.GetContext(ctx, &p, getProductQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p Product) (Product, error) {
	var created Product
	err := r.db.QueryRowxContext(ctx, insertProductQuery,
		p.Name, p.Description, p.Price, p.Quantity, p.Type, p.Image, p.UserAddID, p.CategoryID,
	).StructScan(&created)
	if err != nil {
		return Product{}, fmt.Errorf("insert product: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) Update(ctx context.Context, p Product) (Product, error) {
	var updated Product
	err := r.db.QueryRowxContext(ctx, updateProductQuery,
		p.Name, p.Description, p.Price, p.Quantity, p.Type, p.Image, p.CategoryID, p.ID,
	).StructScan(&updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("update product %d: %w", p.ID, err)
	}
	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteProductQuery, id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
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

func (r *PostgresRepository) NameTaken(ctx context.Context, name string, exceptID int64) (bool, error) {
	var taken bool
	if err := r.db.GetContext(ctx, &taken, productNameTakenQuery, name, exceptID); err != nil {
		return false, fmt.Errorf("check product name: %w", err)
	}
	return taken, nil
}

func (r *PostgresRepository) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	out := make([]int64, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.db.SelectContext(ctx, &out, existingIDsQuery, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("check product ids: %w", err)
	}
	return out, nil
}

// FetchByIDs loads the products for ids keyed by id. Other packages use it to
// attach products to their own rows.
func FetchByIDs(ctx context.Context, q sqlx.QueryerContext, ids []int64) (map[int64]Product, error) {
	out := make(map[int64]Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []Product
	if err := sqlx.SelectContext(ctx, q, &rows, productsByIDsQuery, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}
