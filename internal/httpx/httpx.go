package httpx

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/wichananm65/storefront-api/internal/result"
	"github.com/wichananm65/storefront-api/internal/storage"
	"github.com/wichananm65/storefront-api/internal/validation"
)

// Write maps a service result onto the response: successStatus for OK, 404
// for not found and 400 for failures.
func Write[T any](c *fiber.Ctx, r result.Result[T], successStatus int) error {
	switch r.Kind() {
	case result.KindOK:
		return c.Status(successStatus).JSON(r.Envelope())
	case result.KindNotFound:
		return c.Status(fiber.StatusNotFound).JSON(r.Envelope())
	default:
		return c.Status(fiber.StatusBadRequest).JSON(r.Envelope())
	}
}

// Show writes the bare record on success and the envelope otherwise.
func Show[T any](c *fiber.Ctx, r result.Result[T]) error {
	if v, ok := r.Value(); ok && r.Succeeded() {
		return c.JSON(v)
	}
	return Write(c, r, fiber.StatusOK)
}

func ValidationFailed(c *fiber.Ctx, errs validation.Errors) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"status":  false,
		"message": "Validation errors",
		"errors":  errs,
	})
}

func Message(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(result.Envelope{Status: false, Message: message})
}

// Bind decodes a JSON or multipart body into out. An empty body is not an
// error so partial updates may send nothing.
func Bind(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return c.BodyParser(out)
}

// ParamID reads a positive integer route parameter.
func ParamID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// FormUpload returns the file sent under field. A request without one yields
// a nil upload. The returned func closes the file.
func FormUpload(c *fiber.Ctx, field string) (*storage.Upload, func(), error) {
	noop := func() {}
	fh, err := c.FormFile(field)
	if err != nil || fh == nil {
		return nil, noop, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, noop, err
	}
	return &storage.Upload{Filename: fh.Filename, Content: f}, func() { f.Close() }, nil
}

// CheckImage records a validation error when upload is not an accepted image.
func CheckImage(errs validation.Errors, field string, upload *storage.Upload) {
	if upload == nil || storage.IsImage(upload.Filename) {
		return
	}
	exts := make([]string, 0, len(storage.ImageExtensions))
	for _, e := range storage.ImageExtensions {
		exts = append(exts, strings.TrimPrefix(e, "."))
	}
	errs.Add(field, "the "+field+" must be a file of type: "+strings.Join(exts, ", "))
}

// RegisterFormDecoders teaches the multipart form decoder about money.
func RegisterFormDecoders() {
	fiber.SetParserDecoder(fiber.ParserConfig{
		IgnoreUnknownKeys: true,
		ParserType: []fiber.ParserType{{
			Customtype: decimal.Decimal{},
			Converter: func(s string) reflect.Value {
				d, err := decimal.NewFromString(s)
				if err != nil {
					return reflect.Value{}
				}
				return reflect.ValueOf(d)
			},
		}},
	})
}

// ErrorHandler renders errors that escape handlers as an envelope and logs
// server-side ones.
func ErrorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}

		if code >= fiber.StatusInternalServerError {
			log.WithError(err).WithFields(logrus.Fields{
				"method":     c.Method(),
				"path":       c.Path(),
				"request_id": c.GetRespHeader(fiber.HeaderXRequestID),
			}).Error("request failed")
		}

		return c.Status(code).JSON(result.Envelope{Status: false, Message: message})
	}
}
