package product

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/storefront-api/internal/pagination"
)

var productCols = []string{"id", "name", "description", "price", "quantity", "type", "image", "user_add_id", "category_id", "created_at", "updated_at"}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "pgx"), mock
}

func TestPostgres_ListWithFilter(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)
	now := time.Now()
	catID := int64(3)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM products").
		WithArgs("", "%%", catID, true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("FROM products").
		WithArgs("", "%%", catID, true, 10, 0).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(4, "Kibble", "dry", "12.50", 3, 1, "k.png", nil, 3, now, now))

	items, total, err := repo.List(context.Background(), Filter{CategoryID: &catID, Available: true}, pagination.Params{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "12.5", items[0].Price.String())
	assert.Equal(t, TypeWeight, items[0].Type)
	assert.Equal(t, "dry", *items[0].Description)
	assert.Nil(t, items[0].UserAddID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("FROM products WHERE id = ").WithArgs(int64(5)).WillReturnRows(sqlmock.NewRows(productCols))

	_, err := repo.GetByID(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ExistingIDs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("SELECT id FROM products WHERE id = ANY").
		WithArgs(pq.Array([]int64{1, 2, 3})).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(3))

	ids, err := repo.ExistingIDs(context.Background(), []int64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids)

	none, err := repo.ExistingIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, none)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchByIDs(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()

	mock.ExpectQuery("FROM products WHERE id = ANY").
		WithArgs(pq.Array([]int64{7, 8})).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(7, "Ball", nil, "2.00", 1, 2, "b.png", 1, nil, now, now))

	got, err := FetchByIDs(context.Background(), db, []int64{7, 8})
	require.NoError(t, err)
	require.Contains(t, got, int64(7))
	assert.NotContains(t, got, int64(8))
	assert.Equal(t, "Ball", got[7].Name)

	assert.NoError(t, mock.ExpectationsWereMet())
}
