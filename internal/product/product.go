package product

import (
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront-api/internal/category"
	"github.com/wichananm65/storefront-api/internal/storage"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Type is how a product is sold.
type Type int

const (
	TypeUnspecified Type = 0
	TypeWeight      Type = 1
	TypeUnit        Type = 2
)

func (t Type) Valid() bool {
	return t == TypeUnspecified || t == TypeWeight || t == TypeUnit
}

func (t Type) Name() string {
	switch t {
	case TypeWeight:
		return "kilogram"
	case TypeUnit:
		return "piece"
	default:
		return "unspecified"
	}
}

type Product struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description *string         `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Type        Type            `json:"type" db:"type"`
	Image       string          `json:"image" db:"image"`
	UserAddID   *int64          `json:"user_add_id" db:"user_add_id"`
	CategoryID  *int64          `json:"category_id" db:"category_id"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`

	ImageURL string             `json:"image_url" db:"-"`
	TypeName string             `json:"type_name" db:"-"`
	Category *category.Category `json:"category,omitempty" db:"-"`
}

// NewProduct is the input for creating a product. Exactly one of Upload and
// ImagePath provides the image.
type NewProduct struct {
	Name        string
	Description *string
	Price       decimal.Decimal
	Quantity    int
	Type        Type
	CategoryID  *int64
	Upload      *storage.Upload
	ImagePath   string
}

// Changes lists the fields to update; nil leaves a field as it is. An empty
// description clears it.
type Changes struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Quantity    *int
	Type        *Type
	CategoryID  *int64
	Upload      *storage.Upload
	ImagePath   *string
}

// Filter narrows a product listing.
type Filter struct {
	Search     string
	CategoryID *int64
	// Available keeps only products with stock left.
	Available bool
}

// NormalizeName trims the name and upper-cases the first letter of each word,
// leaving the other letters alone.
func NormalizeName(name string) string {
	return cases.Title(language.Und, cases.NoLower).String(strings.TrimSpace(name))
}

// NormalizePrice rounds to cents.
func NormalizePrice(price decimal.Decimal) decimal.Decimal {
	return price.Round(2)
}

// Presenter fills the derived fields of products on their way out.
type Presenter struct {
	BaseURL string
}

func (pr Presenter) Present(p *Product) {
	p.ImageURL = ImageURL(p.Image, pr.BaseURL)
	p.TypeName = p.Type.Name()
}

func (pr Presenter) PresentAll(ps []Product) {
	for i := range ps {
		pr.Present(&ps[i])
	}
}

// ImageURL resolves a stored image reference to a public URL.
func ImageURL(image, baseURL string) string {
	baseURL = strings.TrimRight(baseURL, "/")
	image = strings.TrimSpace(image)
	switch {
	case image == "":
		return baseURL + "/images/default-product.png"
	case isAbsoluteURL(image):
		return image
	default:
		return baseURL + "/storage/products/" + strings.TrimLeft(image, "/")
	}
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}
