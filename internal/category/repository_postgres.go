package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/wichananm65/storefront-api/internal/database"
	"github.com/wichananm65/storefront-api/internal/pagination"
)

const (
	categoryColumns = `id, name, note, image, user_add_id, created_at, updated_at`

	searchFilter = `($1 = '' OR name ILIKE $2 OR note ILIKE $2)`

	countCategoriesQuery = `SELECT COUNT(*) FROM categories WHERE ` + searchFilter
	listCategoriesQuery  = `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE ` + searchFilter + `
		ORDER BY id DESC
		LIMIT $3 OFFSET $4`
	getCategoryQuery    = `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	insertCategoryQuery = `
		INSERT INTO categories (name, note, image, user_add_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING ` + categoryColumns
	updateCategoryQuery = `
		UPDATE categories
		SET name = $1, note = $2, image = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING ` + categoryColumns
	deleteCategoryQuery    = `DELETE FROM categories WHERE id = $1`
	categoryNameTakenQuery = `SELECT EXISTS (SELECT 1 FROM categories WHERE name = $1 AND id <> $2)`
	categoryExistsQuery    = `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, search string, p pagination.Params) ([]Category, int, error) {
	pattern := database.LikePattern(search)

	var total int
	if err := r.db.GetContext(ctx, &total, countCategoriesQuery, search, pattern); err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}

	out := make([]Category, 0, p.Limit())
	if err := r.db.SelectContext(ctx, &out, listCategoriesQuery, search, pattern, p.Limit(), p.Offset()); err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	return out, total, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (Category, error) {
	var c Category
	if err := r.db.GetContext(ctx, &c, getCategoryQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Category{}, ErrNotFound
		}
		return Category{}, fmt.Errorf("get category %d: %w", id, err)
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, c Category) (Category, error) {
	var created Category
	err := r.db.QueryRowxContext(ctx, insertCategoryQuery, c.Name, c.Note, c.Image, c.UserAddID).StructScan(&created)
	if err != nil {
		return Category{}, fmt.Errorf("insert category: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) Update(ctx context.Context, c Category) (Category, error) {
	var updated Category
	err := r.db.QueryRowxContext(ctx, updateCategoryQuery, c.Name, c.Note, c.Image, c.ID).StructScan(&updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Category{}, ErrNotFound
		}
		return Category{}, fmt.Errorf("update category %d: %w", c.ID, err)
	}
	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteCategoryQuery, id)
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
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
	if err := r.db.GetContext(ctx, &taken, categoryNameTakenQuery, name, exceptID); err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return taken, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, categoryExistsQuery, id); err != nil {
		return false, fmt.Errorf("check category %d: %w", id, err)
	}
	return exists, nil
}
