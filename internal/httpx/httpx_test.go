package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/storefront-api/internal/result"
	"github.com/wichananm65/storefront-api/internal/storage"
	"github.com/wichananm65/storefront-api/internal/validation"
)

type item struct {
	ID int `json:"id"`
}

func decode(t *testing.T, body io.Reader) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestWrite_StatusMapping(t *testing.T) {
	app := fiber.New()
	app.Get("/ok", func(c *fiber.Ctx) error {
		return Write(c, result.OK("created", item{ID: 1}), fiber.StatusCreated)
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return Write(c, result.NotFound[item]("item not found"), fiber.StatusOK)
	})
	app.Get("/failed", func(c *fiber.Ctx) error {
		return Write(c, result.Fail[item]("failed to create item"), fiber.StatusCreated)
	})

	tests := []struct {
		path   string
		status int
		ok     bool
	}{
		{"/ok", fiber.StatusCreated, true},
		{"/missing", fiber.StatusNotFound, false},
		{"/failed", fiber.StatusBadRequest, false},
	}
	for _, tt := range tests {
		res, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
		require.NoError(t, err)
		assert.Equal(t, tt.status, res.StatusCode, tt.path)
		assert.Equal(t, tt.ok, decode(t, res.Body)["status"], tt.path)
	}
}

func TestShow_ReturnsBareRecord(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return Show(c, result.OK("item found", item{ID: 9}))
	})

	res, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Equal(t, map[string]any{"id": float64(9)}, decode(t, res.Body))
}

func TestValidationFailed(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		return ValidationFailed(c, validation.Errors{"name": "the name field is required"})
	})

	res, err := app.Test(httptest.NewRequest("POST", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, res.StatusCode)
	body := decode(t, res.Body)
	assert.Equal(t, false, body["status"])
	assert.Equal(t, "Validation errors", body["message"])
	assert.Equal(t, map[string]any{"name": "the name field is required"}, body["errors"])
}

func TestParamID(t *testing.T) {
	app := fiber.New()
	app.Get("/things/:id", func(c *fiber.Ctx) error {
		id, err := ParamID(c, "id")
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"id": id})
	})

	res, err := app.Test(httptest.NewRequest("GET", "/things/12", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	res, err = app.Test(httptest.NewRequest("GET", "/things/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
}

type priced struct {
	Name  string           `json:"name" form:"name"`
	Price *decimal.Decimal `json:"price" form:"price"`
}

func TestBindAndFormUpload_Multipart(t *testing.T) {
	RegisterFormDecoders()

	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		var in priced
		if err := Bind(c, &in); err != nil {
			return err
		}
		up, closeFn, err := FormUpload(c, "image")
		if err != nil {
			return err
		}
		defer closeFn()
		if up == nil {
			return fiber.NewError(fiber.StatusBadRequest, "missing upload")
		}
		content, _ := io.ReadAll(up.Content)
		return c.JSON(fiber.Map{"name": in.Name, "price": in.Price.String(), "file": up.Filename, "content": string(content)})
	})

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("name", "Catnip"))
	require.NoError(t, w.WriteField("price", "12.50"))
	fw, err := w.CreateFormFile("image", "catnip.png")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("img"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	res, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	body := decode(t, res.Body)
	assert.Equal(t, "Catnip", body["name"])
	assert.Equal(t, "12.5", body["price"])
	assert.Equal(t, "catnip.png", body["file"])
	assert.Equal(t, "img", body["content"])
}

func TestBind_EmptyBody(t *testing.T) {
	app := fiber.New()
	app.Patch("/", func(c *fiber.Ctx) error {
		var in priced
		if err := Bind(c, &in); err != nil {
			return err
		}
		up, _, _ := FormUpload(c, "image")
		return c.JSON(fiber.Map{"has_price": in.Price != nil, "has_upload": up != nil})
	})

	res, err := app.Test(httptest.NewRequest("PATCH", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"has_price": false, "has_upload": false}, decode(t, res.Body))
}

func TestErrorHandler(t *testing.T) {
	log, hook := test.NewNullLogger()
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(log)})
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("db down") })
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })

	res, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, res.StatusCode)
	assert.Equal(t, "internal server error", decode(t, res.Body)["message"])
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)

	res, err = app.Test(httptest.NewRequest("GET", "/teapot", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, res.StatusCode)
	assert.Equal(t, "short and stout", decode(t, res.Body)["message"])
	assert.Len(t, hook.Entries, 1)
}

func TestCheckImage(t *testing.T) {
	errs := validation.Errors{}

	CheckImage(errs, "image", nil)
	CheckImage(errs, "image", &storage.Upload{Filename: "ok.png"})
	assert.True(t, errs.Empty())

	CheckImage(errs, "image", &storage.Upload{Filename: "virus.exe"})
	assert.Equal(t, "the image must be a file of type: jpeg, jpg, png, gif, svg, webp", errs["image"])
}
