package order

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront-api/internal/product"
)

// OrderNumberPrefix starts every generated order number.
const OrderNumberPrefix = "ORD-"

// Order is a purchase placed by a user. TotalAmount is stored as supplied
// and never derived from the items.
type Order struct {
	ID          int64           `db:"id" json:"id"`
	UserID      int64           `db:"user_id" json:"user_id"`
	OrderNumber string          `db:"order_number" json:"order_number"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount"`
	Status      *string         `db:"status" json:"status"`
	Notes       *string         `db:"notes" json:"notes"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`

	Items []Item `db:"-" json:"items"`
}

type Item struct {
	ID        int64           `db:"id" json:"id"`
	OrderID   int64           `db:"order_id" json:"order_id"`
	ProductID int64           `db:"product_id" json:"product_id"`
	Quantity  int             `db:"quantity" json:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`
	Subtotal  decimal.Decimal `db:"subtotal" json:"subtotal"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`

	Product *product.Product `db:"-" json:"product,omitempty"`
}

// ItemInput is one line of an order as supplied by the caller.
type ItemInput struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

type NewOrder struct {
	TotalAmount decimal.Decimal
	Status      *string
	Notes       *string
	Items       []ItemInput
}

// Changes is a partial order update. A nil Items leaves the current items
// in place; a non-nil one replaces all of them.
type Changes struct {
	TotalAmount *decimal.Decimal
	Status      *string
	Notes       *string
	Items       []ItemInput
}

// NewOrderNumber returns ORD- followed by a ULID. Uniqueness is not
// enforced by the schema.
func NewOrderNumber() string {
	return OrderNumberPrefix + ulid.Make().String()
}
