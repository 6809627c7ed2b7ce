package favorite

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/wichananm65/storefront-api/internal/httpx"
	"github.com/wichananm65/storefront-api/internal/pagination"
	"github.com/wichananm65/storefront-api/internal/user"
	"github.com/wichananm65/storefront-api/internal/validation"
)

// ProductChecker backs the product_id rule.
type ProductChecker interface {
	MissingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

// UserChecker backs the user_id rule on update.
type UserChecker interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
}

type Handler struct {
	service   *Service
	products  ProductChecker
	users     UserChecker
	validator *validation.Validator
	log       logrus.FieldLogger
	perPage   int
}

func NewHandler(s *Service, products ProductChecker, users UserChecker, v *validation.Validator, log logrus.FieldLogger, perPage int) *Handler {
	return &Handler{
		service:   s,
		products:  products,
		users:     users,
		validator: v,
		log:       log.WithField("handler", "favorite"),
		perPage:   perPage,
	}
}

type favoriteRequest struct {
	UserID    *int64 `json:"user_id" form:"user_id" validate:"omitempty,gte=1"`
	ProductID *int64 `json:"product_id" form:"product_id" validate:"required,gte=1"`
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Get("/favorites", h.list)
	r.Post("/favorites", h.create)
	r.Get("/favorites/check/:productId", h.check)
	r.Delete("/favorites/product/:productId", h.removeByProduct)
	r.Get("/favorites/:id", h.show)
	r.Put("/favorites/:id", h.update)
	r.Patch("/favorites/:id", h.update)
	r.Delete("/favorites/:id", h.destroy)
}

func (h *Handler) list(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthenticated.")
	}

	res := h.service.List(c.UserContext(), userID, pagination.FromQuery(c, h.perPage))
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
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthenticated.")
	}

	payload, errs, err := h.bind(c, 0)
	if err != nil {
		return err
	}
	if !errs.Empty() {
		return httpx.ValidationFailed(c, errs)
	}
	return httpx.Write(c, h.service.Create(c.UserContext(), userID, *payload.ProductID), fiber.StatusCreated)
}

func (h *Handler) update(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}

	payload, errs, err := h.bind(c, id)
	if err != nil {
		return err
	}
	if !errs.Empty() {
		return httpx.ValidationFailed(c, errs)
	}
	ch := Changes{UserID: payload.UserID, ProductID: payload.ProductID}
	return httpx.Write(c, h.service.Update(c.UserContext(), id, ch), fiber.StatusOK)
}

func (h *Handler) destroy(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	return httpx.Write(c, h.service.Delete(c.UserContext(), id), fiber.StatusOK)
}

func (h *Handler) check(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthenticated.")
	}
	productID, err := httpx.ParamID(c, "productId")
	if err != nil {
		return err
	}
	return httpx.Write(c, h.service.Check(c.UserContext(), userID, productID), fiber.StatusOK)
}

func (h *Handler) removeByProduct(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthenticated.")
	}
	productID, err := httpx.ParamID(c, "productId")
	if err != nil {
		return err
	}
	return httpx.Write(c, h.service.RemoveByProduct(c.UserContext(), userID, productID), fiber.StatusOK)
}

// bind parses and validates a favorite payload. On update (selfID > 0) a
// pair already held by another row is rejected; on create it is not, the
// service simply returns the existing row.
func (h *Handler) bind(c *fiber.Ctx, selfID int64) (*favoriteRequest, validation.Errors, error) {
	payload := new(favoriteRequest)
	if err := httpx.Bind(c, payload); err != nil {
		return nil, nil, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	ctx := c.UserContext()
	errs := h.validator.Struct(payload)

	if _, bad := errs["product_id"]; !bad {
		missing, err := h.products.MissingIDs(ctx, []int64{*payload.ProductID})
		if err != nil {
			h.log.WithError(err).Error("product check failed")
			return nil, nil, fiber.NewError(fiber.StatusBadRequest, "failed to validate favorite")
		}
		if len(missing) > 0 {
			errs.Add("product_id", "the selected product id is invalid")
		}
	}

	if _, bad := errs["user_id"]; !bad && payload.UserID != nil {
		if _, err := h.users.GetByID(ctx, *payload.UserID); err != nil {
			if !errors.Is(err, user.ErrNotFound) {
				h.log.WithError(err).Error("user check failed")
				return nil, nil, fiber.NewError(fiber.StatusBadRequest, "failed to validate favorite")
			}
			errs.Add("user_id", "the selected user id is invalid")
		}
	}

	if selfID > 0 && errs.Empty() {
		owner := payload.UserID
		if owner == nil {
			current, ok := h.service.Get(ctx, selfID).Value()
			if !ok {
				return payload, errs, nil
			}
			owner = &current.UserID
		}
		taken, err := h.service.PairTaken(ctx, *owner, *payload.ProductID, selfID)
		if err != nil {
			h.log.WithError(err).Error("favorite pair check failed")
			return nil, nil, fiber.NewError(fiber.StatusBadRequest, "failed to validate favorite")
		}
		if taken {
			errs.Add("user_id", "this product is already in the user's favorites")
		}
	}
	return payload, errs, nil
}
