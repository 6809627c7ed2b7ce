package product

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/storefront-api/internal/category"
	"github.com/wichananm65/storefront-api/internal/pagination"
	"github.com/wichananm65/storefront-api/internal/result"
	"github.com/wichananm65/storefront-api/internal/storage"
)

const baseURL = "http://localhost:8080"

func ptr[T any](v T) *T { return &v }

func newTestService(seed []Product, cats []category.Category) (*Service, *storage.Store) {
	log, _ := test.NewNullLogger()
	files := storage.New(afero.NewMemMapFs(), baseURL)
	svc := NewService(NewInMemoryRepository(seed), category.NewInMemoryRepository(cats), files, Presenter{BaseURL: baseURL}, log)
	return svc, files
}

func TestService_CreateWithImagePath(t *testing.T) {
	svc, _ := newTestService(nil, nil)

	res := svc.Create(context.Background(), 2, NewProduct{
		Name:        "premium dog food",
		Description: ptr(""),
		Price:       decimal.RequireFromString("19.999"),
		Quantity:    3,
		Type:        TypeWeight,
		ImagePath:   "dog.png",
	})

	require.True(t, res.Succeeded())
	p, _ := res.Value()
	assert.Equal(t, "Premium Dog Food", p.Name)
	assert.Nil(t, p.Description)
	assert.Equal(t, "20", p.Price.String())
	assert.Equal(t, "dog.png", p.Image)
	assert.Equal(t, baseURL+"/storage/products/dog.png", p.ImageURL)
	assert.Equal(t, "kilogram", p.TypeName)
	assert.Equal(t, int64(2), *p.UserAddID)
}

func TestService_CreateWithUpload(t *testing.T) {
	svc, files := newTestService(nil, nil)

	res := svc.Create(context.Background(), 1, NewProduct{
		Name:   "Bowl",
		Price:  decimal.NewFromInt(5),
		Upload: &storage.Upload{Filename: "Big Bowl.jpg", Content: strings.NewReader("jpg")},
	})

	require.True(t, res.Succeeded())
	p, _ := res.Value()
	assert.Contains(t, p.Image, baseURL+"/assets/images/big-bowl_")
	assert.Equal(t, p.Image, p.ImageURL)
	assert.True(t, files.Exists(p.Image))
}

func TestService_UpdatePartialAndImageReplacement(t *testing.T) {
	svc, files := newTestService(nil, nil)
	ctx := context.Background()

	created, _ := svc.Create(ctx, 1, NewProduct{
		Name:        "Leash",
		Description: ptr("red"),
		Price:       decimal.NewFromInt(12),
		Quantity:    4,
		Type:        TypeUnit,
		Upload:      &storage.Upload{Filename: "leash.png", Content: strings.NewReader("v1")},
	}).Value()

	res := svc.Update(ctx, created.ID, Changes{
		Quantity: ptr(0),
		Upload:   &storage.Upload{Filename: "leash-v2.png", Content: strings.NewReader("v2")},
	})

	require.True(t, res.Succeeded())
	p, _ := res.Value()
	assert.Equal(t, "Leash", p.Name)
	assert.Equal(t, "red", *p.Description)
	assert.Equal(t, 0, p.Quantity)
	assert.Equal(t, TypeUnit, p.Type)
	assert.NotEqual(t, created.Image, p.Image)
	assert.False(t, files.Exists(created.Image))
	assert.True(t, files.Exists(p.Image))
}

func TestService_UpdateWithImagePathRemovesStoredUpload(t *testing.T) {
	svc, files := newTestService(nil, nil)
	ctx := context.Background()

	created, _ := svc.Create(ctx, 1, NewProduct{
		Name:   "Collar",
		Upload: &storage.Upload{Filename: "collar.png", Content: strings.NewReader("v1")},
	}).Value()
	require.True(t, files.Exists(created.Image))

	res := svc.Update(ctx, created.ID, Changes{ImagePath: ptr("  https://cdn.example.com/b.png ")})

	require.True(t, res.Succeeded())
	p, _ := res.Value()
	assert.Equal(t, "https://cdn.example.com/b.png", p.Image)
	assert.False(t, files.Exists(created.Image))
}

func TestService_UpdateWithSameImagePathKeepsFile(t *testing.T) {
	svc, files := newTestService(nil, nil)
	ctx := context.Background()

	created, _ := svc.Create(ctx, 1, NewProduct{
		Name:   "Crate",
		Upload: &storage.Upload{Filename: "crate.png", Content: strings.NewReader("v1")},
	}).Value()

	res := svc.Update(ctx, created.ID, Changes{ImagePath: ptr(created.Image)})

	require.True(t, res.Succeeded())
	p, _ := res.Value()
	assert.Equal(t, created.Image, p.Image)
	assert.True(t, files.Exists(created.Image))
}

func TestService_ImageCleanupLeavesOtherFoldersAlone(t *testing.T) {
	svc, files := newTestService(nil, nil)
	ctx := context.Background()

	categoryRef, err := files.Save(storage.CategoryFolder, storage.Upload{Filename: "toys.png", Content: strings.NewReader("c")})
	require.NoError(t, err)

	created, _ := svc.Create(ctx, 1, NewProduct{Name: "Rope", ImagePath: categoryRef}).Value()

	res := svc.Update(ctx, created.ID, Changes{ImagePath: ptr("https://cdn.example.com/rope.png")})
	require.True(t, res.Succeeded())
	assert.True(t, files.Exists(categoryRef))

	other, _ := svc.Create(ctx, 1, NewProduct{Name: "Ring", ImagePath: categoryRef}).Value()
	require.True(t, svc.Delete(ctx, other.ID).Succeeded())
	assert.True(t, files.Exists(categoryRef))
}

func TestService_GetAttachesCategory(t *testing.T) {
	svc, _ := newTestService(
		[]Product{{ID: 1, Name: "Bowl", CategoryID: ptr(int64(5))}, {ID: 2, Name: "Ball", CategoryID: ptr(int64(77))}},
		[]category.Category{{ID: 5, Name: "Feeding"}},
	)

	p, ok := svc.Get(context.Background(), 1).Value()
	require.True(t, ok)
	require.NotNil(t, p.Category)
	assert.Equal(t, "Feeding", p.Category.Name)

	p, ok = svc.Get(context.Background(), 2).Value()
	require.True(t, ok)
	assert.Nil(t, p.Category)

	assert.Equal(t, result.KindNotFound, svc.Get(context.Background(), 3).Kind())
}

func TestService_DeleteRemovesUploadedImage(t *testing.T) {
	svc, files := newTestService(nil, nil)
	ctx := context.Background()

	created, _ := svc.Create(ctx, 1, NewProduct{
		Name:   "Brush",
		Upload: &storage.Upload{Filename: "brush.png", Content: strings.NewReader("x")},
	}).Value()

	require.True(t, svc.Delete(ctx, created.ID).Succeeded())
	assert.False(t, files.Exists(created.Image))
	assert.True(t, svc.Delete(ctx, created.ID).IsNotFound())
}

func TestService_DeleteWithMissingImageFile(t *testing.T) {
	svc, files := newTestService(nil, nil)
	ctx := context.Background()

	created, _ := svc.Create(ctx, 1, NewProduct{
		Name:   "Comb",
		Upload: &storage.Upload{Filename: "comb.png", Content: strings.NewReader("x")},
	}).Value()
	require.NoError(t, files.Delete(created.Image))
	require.False(t, files.Exists(created.Image))

	res := svc.Delete(ctx, created.ID)

	require.True(t, res.Succeeded())
	assert.True(t, svc.Get(ctx, created.ID).IsNotFound())
}

func TestService_ListFilters(t *testing.T) {
	svc, _ := newTestService([]Product{
		{ID: 1, Name: "Dog Food", Quantity: 0, CategoryID: ptr(int64(1))},
		{ID: 2, Name: "Cat Food", Quantity: 5, CategoryID: ptr(int64(2))},
		{ID: 3, Name: "Ball", Description: ptr("smells like food"), Quantity: 1, CategoryID: ptr(int64(1))},
	}, nil)
	ctx := context.Background()
	p := pagination.Params{Page: 1, PerPage: 10}

	page, _ := svc.List(ctx, Filter{Search: "food"}, p).Value()
	assert.Equal(t, 3, page.Total)

	page, _ = svc.List(ctx, Filter{Search: "food", Available: true}, p).Value()
	assert.Equal(t, 2, page.Total)

	page, _ = svc.List(ctx, Filter{CategoryID: ptr(int64(1)), Available: true}, p).Value()
	require.Len(t, page.Data, 1)
	assert.Equal(t, int64(3), page.Data[0].ID)
	assert.Equal(t, "unspecified", page.Data[0].TypeName)

	items, _ := svc.ListByCategory(ctx, 1).Value()
	assert.Len(t, items, 2)
}

func TestService_MissingIDs(t *testing.T) {
	svc, _ := newTestService([]Product{{ID: 1}, {ID: 2}}, nil)

	missing, err := svc.MissingIDs(context.Background(), []int64{2, 9, 1, 10})
	require.NoError(t, err)
	assert.Equal(t, []int64{9, 10}, missing)
}
