package category

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/wichananm65/storefront-api/internal/httpx"
	"github.com/wichananm65/storefront-api/internal/pagination"
	"github.com/wichananm65/storefront-api/internal/storage"
	"github.com/wichananm65/storefront-api/internal/user"
	"github.com/wichananm65/storefront-api/internal/validation"
)

type Handler struct {
	service   *Service
	validator *validation.Validator
	log       logrus.FieldLogger
	perPage   int
}

func NewHandler(s *Service, v *validation.Validator, log logrus.FieldLogger, perPage int) *Handler {
	return &Handler{service: s, validator: v, log: log.WithField("handler", "category"), perPage: perPage}
}

// categoryRequest serves both create and update. On create name is required;
// on update every field is optional.
type categoryRequest struct {
	Name  *string `json:"name" form:"name" validate:"omitempty,min=1,max=255"`
	Note  *string `json:"note" form:"note"`
	Image *string `json:"image" form:"image" validate:"omitempty,max=255"`
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Get("/categories", h.list)
	r.Post("/categories", h.create)
	r.Get("/categories/:id", h.show)
	r.Put("/categories/:id", h.update)
	r.Patch("/categories/:id", h.update)
	r.Delete("/categories/:id", h.destroy)
}

func (h *Handler) list(c *fiber.Ctx) error {
	p := pagination.FromQuery(c, h.perPage)
	res := h.service.List(c.UserContext(), c.Query("search"), p)
	if page, ok := res.Value(); ok {
		return c.JSON(page)
	}
	return httpx.Write(c, res, fiber.StatusOK)
}

func (h *Handler) show(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	return httpx.Show(c, h.service.Get(c.UserContext(), id))
}

func (h *Handler) create(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return httpx.Message(c, fiber.StatusUnauthorized, "Unauthenticated.")
	}

	payload, upload, closeUpload, errs, err := h.bind(c, 0, true)
	if err != nil {
		return err
	}
	defer closeUpload()
	if !errs.Empty() {
		return httpx.ValidationFailed(c, errs)
	}

	res := h.service.Create(c.UserContext(), userID, NewCategory{
		Name:  *payload.Name,
		Note:  payload.Note,
		Image: upload,
	})
	return httpx.Write(c, res, fiber.StatusCreated)
}

func (h *Handler) update(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}

	payload, upload, closeUpload, errs, err := h.bind(c, id, false)
	if err != nil {
		return err
	}
	defer closeUpload()
	if !errs.Empty() {
		return httpx.ValidationFailed(c, errs)
	}

	res := h.service.Update(c.UserContext(), id, Changes{
		Name:  payload.Name,
		Note:  payload.Note,
		Image: upload,
	})
	return httpx.Write(c, res, fiber.StatusOK)
}

func (h *Handler) destroy(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	return httpx.Write(c, h.service.Delete(c.UserContext(), id), fiber.StatusOK)
}

// bind parses and validates a category payload. selfID excludes the category
// being updated from the unique-name check.
func (h *Handler) bind(c *fiber.Ctx, selfID int64, creating bool) (*categoryRequest, *storage.Upload, func(), validation.Errors, error) {
	noop := func() {}
	payload := new(categoryRequest)
	if err := httpx.Bind(c, payload); err != nil {
		return nil, nil, noop, nil, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if payload.Name != nil {
		trimmed := strings.TrimSpace(*payload.Name)
		payload.Name = &trimmed
	}

	errs := h.validator.Struct(payload)
	if creating && payload.Name == nil {
		errs.Add("name", "the name field is required")
	}

	if _, bad := errs["name"]; !bad && payload.Name != nil {
		taken, err := h.service.NameTaken(c.UserContext(), *payload.Name, selfID)
		if err != nil {
			h.log.WithError(err).Error("category name check failed")
			return nil, nil, noop, nil, fiber.NewError(fiber.StatusBadRequest, "failed to validate category")
		}
		if taken {
			errs.Add("name", "the name has already been taken")
		}
	}

	upload, closeUpload, err := httpx.FormUpload(c, "image")
	if err != nil {
		return nil, nil, noop, nil, fiber.NewError(fiber.StatusBadRequest, "failed to read uploaded image")
	}
	httpx.CheckImage(errs, "image", upload)

	return payload, upload, closeUpload, errs, nil
}
