package category

import (
	"time"

	"github.com/wichananm65/storefront-api/internal/storage"
)

type Category struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Note      *string   `json:"note" db:"note"`
	Image     *string   `json:"image" db:"image"`
	UserAddID *int64    `json:"user_add_id" db:"user_add_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewCategory is the input for creating a category. Only an uploaded image is
// stored; categories never take a plain image path.
type NewCategory struct {
	Name  string
	Note  *string
	Image *storage.Upload
}

// Changes lists the fields to update. Nil means leave unchanged; an empty
// note clears it.
type Changes struct {
	Name  *string
	Note  *string
	Image *storage.Upload
}
