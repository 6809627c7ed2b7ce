package favorite

import (
	"time"

	"github.com/wichananm65/storefront-api/internal/product"
)

type Favorite struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	ProductID int64     `db:"product_id" json:"product_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Product *product.Product `db:"-" json:"product,omitempty"`
}

// Changes re-points a favorite. Nil fields keep their current value.
type Changes struct {
	UserID    *int64
	ProductID *int64
}

// Status answers whether a product is among a user's favorites.
type Status struct {
	ProductID  int64  `json:"product_id"`
	IsFavorite bool   `json:"is_favorite"`
	FavoriteID *int64 `json:"favorite_id,omitempty"`
}
