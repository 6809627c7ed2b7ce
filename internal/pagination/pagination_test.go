package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name             string
		page, perPage    int
		wantPage, wantPP int
	}{
		{"defaults", 0, 0, 1, 10},
		{"negative page", -3, 5, 1, 5},
		{"clamped per page", 2, 500, 2, MaxPerPage},
		{"explicit", 3, 20, 3, 20},
		{"clamped page", 922337203685477581, 100, MaxPage, 100},
		{"max page", MaxPage, 100, MaxPage, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Normalize(tt.page, tt.perPage, 10)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPP, p.PerPage)
		})
	}
}

func TestNew_LastPage(t *testing.T) {
	p := Params{Page: 2, PerPage: 10}

	assert.Equal(t, 3, New([]int{1}, p, 21).LastPage)
	assert.Equal(t, 2, New([]int{1}, p, 20).LastPage)

	empty := New[int](nil, Params{Page: 1, PerPage: 10}, 0)
	assert.Equal(t, 1, empty.LastPage)
	assert.NotNil(t, empty.Data)
}

func TestSlice(t *testing.T) {
	all := []int{1, 2, 3, 4, 5}

	got, total := Slice(all, Params{Page: 2, PerPage: 2})
	assert.Equal(t, []int{3, 4}, got)
	assert.Equal(t, 5, total)

	got, _ = Slice(all, Params{Page: 3, PerPage: 2})
	assert.Equal(t, []int{5}, got)

	got, _ = Slice(all, Params{Page: 9, PerPage: 2})
	assert.Empty(t, got)
}

func TestSlice_HugePageIsEmpty(t *testing.T) {
	all := []int{1, 2, 3}

	p := Normalize(922337203685477581, 100, 10)
	assert.Positive(t, p.Offset())

	got, total := Slice(all, p)
	assert.Empty(t, got)
	assert.Equal(t, 3, total)

	got, _ = Slice(all, Params{Page: 922337203685477581, PerPage: 100})
	assert.Empty(t, got)
}

func TestFromQuery(t *testing.T) {
	app := fiber.New()
	var got Params
	app.Get("/", func(c *fiber.Ctx) error {
		got = FromQuery(c, 15)
		return c.SendStatus(fiber.StatusNoContent)
	})

	_, err := app.Test(httptest.NewRequest("GET", "/?page=4&per_page=abc", nil))
	require.NoError(t, err)
	assert.Equal(t, Params{Page: 4, PerPage: 15}, got)
}
