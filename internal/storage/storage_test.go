package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() (*Store, afero.Fs) {
	fs := afero.NewMemMapFs()
	s := New(fs, "http://localhost:8080/")
	s.now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC) }
	return s, fs
}

func TestSave_NamesFileWithSlugAndTimestamp(t *testing.T) {
	s, fs := newTestStore()

	ref, err := s.Save(ProductFolder, Upload{Filename: "Dog Food Deluxe.PNG", Content: strings.NewReader("png")})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/assets/images/dog-food-deluxe_20240309_140507.png", ref)
	data, err := afero.ReadFile(fs, "assets/images/dog-food-deluxe_20240309_140507.png")
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
}

func TestSave_AvoidsOverwritingSameSecondUploads(t *testing.T) {
	s, _ := newTestStore()

	first, err := s.Save(CategoryFolder, Upload{Filename: "cats.jpg", Content: strings.NewReader("a")})
	require.NoError(t, err)
	second, err := s.Save(CategoryFolder, Upload{Filename: "cats.jpg", Content: strings.NewReader("b")})
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasSuffix(second, "cats_20240309_140507_1.jpg"))
}

func TestDelete(t *testing.T) {
	s, fs := newTestStore()

	ref, err := s.Save(CategoryFolder, Upload{Filename: "toys.webp", Content: strings.NewReader("x")})
	require.NoError(t, err)
	require.True(t, s.Exists(ref))

	require.NoError(t, s.Delete(ref))
	assert.False(t, s.Exists(ref))

	// already gone
	assert.NoError(t, s.Delete(ref))
	// not ours
	assert.NoError(t, s.Delete("https://cdn.example.com/assets/images/a.png"))
	assert.NoError(t, s.Delete(""))

	ok, err := afero.DirExists(fs, CategoryFolder)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPathOf_StaysInsideRoot(t *testing.T) {
	s, _ := newTestStore()

	assert.Equal(t, "etc/passwd", s.pathOf("../../etc/passwd"))
	assert.Equal(t, "storage/products/a.png", s.pathOf("http://localhost:8080/storage/products/a.png"))
	assert.Equal(t, "", s.pathOf("http://evil.example.com/storage/products/a.png"))
}

func TestWithin(t *testing.T) {
	s, _ := newTestStore()

	assert.True(t, s.Within(ProductFolder, "http://localhost:8080/assets/images/a.png"))
	assert.True(t, s.Within(ProductFolder, "assets/images/a.png"))
	assert.False(t, s.Within(ProductFolder, "http://localhost:8080/assets/categories/a.png"))
	assert.False(t, s.Within(ProductFolder, "http://localhost:8080/assets/images/../categories/a.png"))
	assert.False(t, s.Within(ProductFolder, "https://cdn.example.com/assets/images/a.png"))
	assert.False(t, s.Within(ProductFolder, "http://localhost:8080/assets/images"))
	assert.False(t, s.Within(ProductFolder, ""))
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("a.PNG"))
	assert.True(t, IsImage("photo.jpeg"))
	assert.False(t, IsImage("notes.txt"))
	assert.False(t, IsImage("noext"))
}
