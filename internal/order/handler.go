package order

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/wichananm65/storefront-api/internal/httpx"
	"github.com/wichananm65/storefront-api/internal/pagination"
	"github.com/wichananm65/storefront-api/internal/user"
	"github.com/wichananm65/storefront-api/internal/validation"
)

// ProductChecker backs the items.*.product_id rule.
type ProductChecker interface {
	MissingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

type Handler struct {
	service   *Service
	products  ProductChecker
	validator *validation.Validator
	log       logrus.FieldLogger
	perPage   int
}

func NewHandler(s *Service, products ProductChecker, v *validation.Validator, log logrus.FieldLogger, perPage int) *Handler {
	return &Handler{
		service:   s,
		products:  products,
		validator: v,
		log:       log.WithField("handler", "order"),
		perPage:   perPage,
	}
}

type itemRequest struct {
	ProductID *int64           `json:"product_id" validate:"required,gte=1"`
	Quantity  *int             `json:"quantity" validate:"required,gte=1"`
	UnitPrice *decimal.Decimal `json:"unit_price" validate:"required,gte=0"`
	Subtotal  *decimal.Decimal `json:"subtotal" validate:"required,gte=0"`
}

type createOrderRequest struct {
	TotalAmount *decimal.Decimal `json:"total_amount" validate:"required,gte=0"`
	Status      *string          `json:"status" validate:"omitempty,max=255"`
	Notes       *string          `json:"notes"`
	Items       []itemRequest    `json:"items" validate:"required,min=1,dive"`
}

// Items uses omitnil so that an explicit empty list is rejected instead of
// wiping the order.
type updateOrderRequest struct {
	TotalAmount *decimal.Decimal `json:"total_amount" validate:"omitempty,gte=0"`
	Status      *string          `json:"status" validate:"omitempty,max=255"`
	Notes       *string          `json:"notes"`
	Items       []itemRequest    `json:"items" validate:"omitnil,min=1,dive"`
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Get("/orders", h.list)
	r.Post("/orders", h.create)
	r.Get("/orders/:id", h.show)
	r.Put("/orders/:id", h.update)
	r.Patch("/orders/:id", h.update)
	r.Delete("/orders/:id", h.destroy)
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

	payload := new(createOrderRequest)
	if err := c.BodyParser(payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	errs := h.validator.Struct(payload)
	if err := h.checkProducts(c.UserContext(), errs, payload.Items); err != nil {
		return err
	}
	if !errs.Empty() {
		return httpx.ValidationFailed(c, errs)
	}

	in := NewOrder{
		TotalAmount: *payload.TotalAmount,
		Status:      payload.Status,
		Notes:       payload.Notes,
		Items:       toItemInputs(payload.Items),
	}
	return httpx.Write(c, h.service.Create(c.UserContext(), userID, in), fiber.StatusCreated)
}

func (h *Handler) update(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}

	payload := new(updateOrderRequest)
	if err := httpx.Bind(c, payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	errs := h.validator.Struct(payload)
	if err := h.checkProducts(c.UserContext(), errs, payload.Items); err != nil {
		return err
	}
	if !errs.Empty() {
		return httpx.ValidationFailed(c, errs)
	}

	ch := Changes{
		TotalAmount: payload.TotalAmount,
		Status:      payload.Status,
		Notes:       payload.Notes,
	}
	if payload.Items != nil {
		ch.Items = toItemInputs(payload.Items)
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

// checkProducts flags every item whose product does not exist.
func (h *Handler) checkProducts(ctx context.Context, errs validation.Errors, items []itemRequest) error {
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		if it.ProductID != nil {
			ids = append(ids, *it.ProductID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	missing, err := h.products.MissingIDs(ctx, ids)
	if err != nil {
		h.log.WithError(err).Error("product check failed")
		return fiber.NewError(fiber.StatusBadRequest, "failed to validate order")
	}
	if len(missing) == 0 {
		return nil
	}

	unknown := make(map[int64]struct{}, len(missing))
	for _, id := range missing {
		unknown[id] = struct{}{}
	}
	for i, it := range items {
		if it.ProductID == nil {
			continue
		}
		if _, ok := unknown[*it.ProductID]; ok {
			errs.Add(fmt.Sprintf("items[%d].product_id", i), "the selected product id is invalid")
		}
	}
	return nil
}

func toItemInputs(items []itemRequest) []ItemInput {
	out := make([]ItemInput, 0, len(items))
	for _, it := range items {
		out = append(out, ItemInput{
			ProductID: *it.ProductID,
			Quantity:  *it.Quantity,
			UnitPrice: *it.UnitPrice,
			Subtotal:  *it.Subtotal,
		})
	}
	return out
}
