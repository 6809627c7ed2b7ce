package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type lineRequest struct {
	ProductID *int64           `json:"product_id" validate:"required"`
	Quantity  *int             `json:"quantity" validate:"required,gte=1"`
	UnitPrice *decimal.Decimal `json:"unit_price" validate:"required,gte=0"`
}

type basketRequest struct {
	Name  string            `json:"name" validate:"required,max=5"`
	Total *decimal.Decimal  `json:"total_amount" validate:"required,gte=0,lte=99999999.99"`
	Kind  *int              `json:"type" validate:"required,oneof=0 1 2"`
	Items []lineRequest     `json:"items" validate:"required,min=1,dive"`
	Notes *string           `json:"notes" validate:"omitempty,max=10"`
	Extra map[string]string `json:"-"`
}

func ptr[T any](v T) *T { return &v }

func TestStruct_Valid(t *testing.T) {
	v := New()
	zero := decimal.Zero

	errs := v.Struct(basketRequest{
		Name:  "bowl",
		Total: &zero,
		Kind:  ptr(0),
		Items: []lineRequest{{ProductID: ptr(int64(1)), Quantity: ptr(1), UnitPrice: &zero}},
	})

	assert.True(t, errs.Empty())
	assert.NotNil(t, errs)
}

func TestStruct_FieldKeysAndMessages(t *testing.T) {
	v := New()
	negative := decimal.NewFromInt(-1)

	errs := v.Struct(basketRequest{
		Name:  "far too long",
		Total: &negative,
		Kind:  ptr(7),
		Items: []lineRequest{{ProductID: ptr(int64(1)), Quantity: ptr(0)}},
	})

	assert.Equal(t, "the name field must not be greater than 5 characters", errs["name"])
	assert.Equal(t, "the total amount field must be at least 0", errs["total_amount"])
	assert.Equal(t, "the selected type is invalid", errs["type"])
	assert.Equal(t, "the quantity field must be at least 1", errs["items[0].quantity"])
	assert.Equal(t, "the unit price field is required", errs["items[0].unit_price"])
	assert.NotContains(t, errs, "notes")
}

func TestStruct_EmptyItems(t *testing.T) {
	v := New()
	one := decimal.NewFromInt(1)

	errs := v.Struct(basketRequest{Name: "a", Total: &one, Kind: ptr(1), Items: []lineRequest{}})

	assert.Equal(t, "the items field must have at least 1 items", errs["items"])
}

func TestErrors_AddKeepsFirstMessage(t *testing.T) {
	errs := Errors{}
	errs.Add("name", "first")
	errs.Add("name", "second")

	assert.Equal(t, "first", errs["name"])
}
