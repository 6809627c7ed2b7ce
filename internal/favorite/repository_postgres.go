package favorite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/wichananm65/storefront-api/internal/pagination"
	"github.com/wichananm65/storefront-api/internal/product"
)

const (
	favoriteColumns = `id, user_id, product_id, created_at, updated_at`

	countByUserQuery = `SELECT COUNT(*) FROM favorites WHERE user_id = $1`
	listByUserQuery  = `
		SELECT ` + favoriteColumns + `
		FROM favorites
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2 OFFSET $3`
	getFavoriteQuery  = `SELECT ` + favoriteColumns + ` FROM favorites WHERE id = $1`
	findFavoriteQuery = `SELECT ` + favoriteColumns + ` FROM favorites WHERE user_id = $1 AND product_id = $2`
	// ON CONFLICT DO NOTHING returns no row when the pair exists, which the
	// caller resolves with findFavoriteQuery.
	insertFavoriteQuery = `
		INSERT INTO favorites (user_id, product_id, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (user_id, product_id) DO NOTHING
		RETURNING ` + favoriteColumns
	updateFavoriteQuery = `
		UPDATE favorites SET user_id = $1, product_id = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING ` + favoriteColumns
	deleteFavoriteQuery = `DELETE FROM favorites WHERE id = $1`
	pairTakenQuery      = `SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id = $1 AND product_id = $2 AND id <> $3)`
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64, p pagination.Params) ([]Favorite, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, countByUserQuery, userID); err != nil {
		return nil, 0, fmt.Errorf("count favorites: %w", err)
	}

	out := make([]Favorite, 0, p.Limit())
	if err := r.db.SelectContext(ctx, &out, listByUserQuery, userID, p.Limit(), p.Offset()); err != nil {
		return nil, 0, fmt.Errorf("list favorites: %w", err)
	}
	if err := r.attach(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (Favorite, error) {
	var f Favorite
	if err := r.db.GetContext(ctx, &f, getFavoriteQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Favorite{}, ErrNotFound
		}
		return Favorite{}, fmt.Errorf("get favorite %d: %w", id, err)
	}

	one := []Favorite{f}
	if err := r.attach(ctx, one); err != nil {
		return Favorite{}, err
	}
	return one[0], nil
}

func (r *PostgresRepository) Find(ctx context.Context, userID, productID int64) (Favorite, error) {
	var f Favorite
	if err := r.db.GetContext(ctx, &f, findFavoriteQuery, userID, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Favorite{}, ErrNotFound
		}
		return Favorite{}, fmt.Errorf("find favorite: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) FirstOrCreate(ctx context.Context, userID, productID int64) (Favorite, bool, error) {
	var f Favorite
	err := r.db.QueryRowxContext(ctx, insertFavoriteQuery, userID, productID).StructScan(&f)
	if err == nil {
		return f, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Favorite{}, false, fmt.Errorf("insert favorite: %w", err)
	}

	existing, err := r.Find(ctx, userID, productID)
	if err != nil {
		return Favorite{}, false, err
	}
	return existing, false, nil
}

func (r *PostgresRepository) Update(ctx context.Context, f Favorite) (Favorite, error) {
	var updated Favorite
	err := r.db.QueryRowxContext(ctx, updateFavoriteQuery, f.UserID, f.ProductID, f.ID).StructScan(&updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Favorite{}, ErrNotFound
		}
		return Favorite{}, fmt.Errorf("update favorite %d: %w", f.ID, err)
	}
	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteFavoriteQuery, id)
	if err != nil {
		return fmt.Errorf("delete favorite %d: %w", id, err)
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

func (r *PostgresRepository) PairTaken(ctx context.Context, userID, productID, exceptID int64) (bool, error) {
	var taken bool
	if err := r.db.GetContext(ctx, &taken, pairTakenQuery, userID, productID, exceptID); err != nil {
		return false, fmt.Errorf("check favorite pair: %w", err)
	}
	return taken, nil
}

func (r *PostgresRepository) attach(ctx context.Context, favs []Favorite) error {
	if len(favs) == 0 {
		return nil
	}
	found, err := product.FetchByIDs(ctx, r.db, productIDs(favs))
	if err != nil {
		return err
	}
	for i := range favs {
		if p, ok := found[favs[i].ProductID]; ok {
			favs[i].Product = &p
		}
	}
	return nil
}
