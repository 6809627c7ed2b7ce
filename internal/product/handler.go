package product

import (
	"context"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/wichananm65/storefront-api/internal/httpx"
	"github.com/wichananm65/storefront-api/internal/pagination"
	"github.com/wichananm65/storefront-api/internal/user"
	"github.com/wichananm65/storefront-api/internal/validation"
)

// CategoryChecker backs the category_id rule.
type CategoryChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type Handler struct {
	service    *Service
	categories CategoryChecker
	validator  *validation.Validator
	log        logrus.FieldLogger
	perPage    int
}

func NewHandler(s *Service, categories CategoryChecker, v *validation.Validator, log logrus.FieldLogger, perPage int) *Handler {
	return &Handler{
		service:    s,
		categories: categories,
		validator:  v,
		log:        log.WithField("handler", "product"),
		perPage:    perPage,
	}
}

type createProductRequest struct {
	Name        string           `json:"name" form:"name" validate:"required,max=255"`
	Description *string          `json:"description" form:"description"`
	Price       *decimal.Decimal `json:"price" form:"price" validate:"required,gte=0,lte=99999999.99"`
	Quantity    *int             `json:"quantity" form:"quantity" validate:"required,gte=0"`
	Type        *int             `json:"type" form:"type" validate:"required,oneof=0 1 2"`
	Image       *string          `json:"image" form:"image" validate:"omitempty,max=255"`
	CategoryID  *int64           `json:"category_id" form:"category_id" validate:"omitempty,gte=1"`
}

type updateProductRequest struct {
	Name        *string          `json:"name" form:"name" validate:"omitempty,min=1,max=255"`
	Description *string          `json:"description" form:"description"`
	Price       *decimal.Decimal `json:"price" form:"price" validate:"omitempty,gte=0,lte=99999999.99"`
	Quantity    *int             `json:"quantity" form:"quantity" validate:"omitempty,gte=0"`
	Type        *int             `json:"type" form:"type" validate:"omitempty,oneof=0 1 2"`
	Image       *string          `json:"image" form:"image" validate:"omitempty,max=255"`
	CategoryID  *int64           `json:"category_id" form:"category_id" validate:"omitempty,gte=1"`
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Get("/products", h.list)
	r.Post("/products", h.create)
	r.Get("/products/:id", h.show)
	r.Put("/products/:id", h.update)
	r.Patch("/products/:id", h.update)
	r.Delete("/products/:id", h.destroy)
	r.Get("/products-by-category/:categoryId", h.byCategory)
}

func (h *Handler) list(c *fiber.Ctx) error {
	f := Filter{
		Search:    c.Query("search"),
		Available: c.QueryBool("available", false),
	}
	if v := c.Query("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid category_id")
		}
		f.CategoryID = &id
	}

	res := h.service.List(c.UserContext(), f, pagination.FromQuery(c, h.perPage))
	if page, ok := res.Value(); ok {
		return c.JSON(page)
	}
	return httpx.Write(c, res, fiber.StatusOK)
}

func (h *Handler) byCategory(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "categoryId")
	if err != nil {
		return err
	}
	return httpx.Write(c, h.service.ListByCategory(c.UserContext(), id), fiber.StatusOK)
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

	payload := new(createProductRequest)
	if err := httpx.Bind(c, payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	payload.Name = strings.TrimSpace(payload.Name)

	upload, closeUpload, err := httpx.FormUpload(c, "image")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "failed to read uploaded image")
	}
	defer closeUpload()

	errs := h.validator.Struct(payload)
	if upload == nil && (payload.Image == nil || strings.TrimSpace(*payload.Image) == "") {
		errs.Add("image", "the image field is required")
	}
	httpx.CheckImage(errs, "image", upload)
	if err := h.checkReferences(c, errs, &payload.Name, payload.CategoryID, 0); err != nil {
		return err
	}
	if !errs.Empty() {
		return httpx.ValidationFailed(c, errs)
	}

	in := NewProduct{
		Name:        payload.Name,
		Description: payload.Description,
		Price:       *payload.Price,
		Quantity:    *payload.Quantity,
		Type:        Type(*payload.Type),
		CategoryID:  payload.CategoryID,
		Upload:      upload,
	}
	if upload == nil {
		in.ImagePath = *payload.Image
	}
	return httpx.Write(c, h.service.Create(c.UserContext(), userID, in), fiber.StatusCreated)
}

func (h *Handler) update(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}

	payload := new(updateProductRequest)
	if err := httpx.Bind(c, payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if payload.Name != nil {
		trimmed := strings.TrimSpace(*payload.Name)
		payload.Name = &trimmed
	}

	upload, closeUpload, err := httpx.FormUpload(c, "image")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "failed to read uploaded image")
	}
	defer closeUpload()

	errs := h.validator.Struct(payload)
	httpx.CheckImage(errs, "image", upload)
	if err := h.checkReferences(c, errs, payload.Name, payload.CategoryID, id); err != nil {
		return err
	}
	if !errs.Empty() {
		return httpx.ValidationFailed(c, errs)
	}

	ch := Changes{
		Name:        payload.Name,
		Description: payload.Description,
		Price:       payload.Price,
		Quantity:    payload.Quantity,
		CategoryID:  payload.CategoryID,
		Upload:      upload,
		ImagePath:   payload.Image,
	}
	if payload.Type != nil {
		t := Type(*payload.Type)
		ch.Type = &t
	}
	return httpx.Write(c, h.service.Update(c.UserContext(), id, ch), fiber.StatusOK)
}

func (h *Handler) destroy(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	return httpx.Write(c, h.service.Delete(c.UserContext(), id), fiber.StatusOK)
}

// checkReferences applies the rules that need the database: a unique name
// (ignoring selfID) and an existing category.
func (h *Handler) checkReferences(c *fiber.Ctx, errs validation.Errors, name *string, categoryID *int64, selfID int64) error {
	ctx := c.UserContext()

	if _, bad := errs["name"]; !bad && name != nil && *name != "" {
		taken, err := h.service.NameTaken(ctx, *name, selfID)
		if err != nil {
			h.log.WithError(err).Error("product name check failed")
			return fiber.NewError(fiber.StatusBadRequest, "failed to validate product")
		}
		if taken {
			errs.Add("name", "the name has already been taken")
		}
	}

	if _, bad := errs["category_id"]; !bad && categoryID != nil {
		ok, err := h.categories.Exists(ctx, *categoryID)
		if err != nil {
			h.log.WithError(err).Error("category check failed")
			return fiber.NewError(fiber.StatusBadRequest, "failed to validate product")
		}
		if !ok {
			errs.Add("category_id", "the selected category id is invalid")
		}
	}
	return nil
}
