package user

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/wichananm65/storefront-api/internal/httpx"
	"github.com/wichananm65/storefront-api/internal/result"
	"github.com/wichananm65/storefront-api/internal/validation"
)

type Handler struct {
	service   *Service
	validator *validation.Validator
	log       logrus.FieldLogger
	secret    string
	ttl       time.Duration
}

type registerRequest struct {
	Name     string `json:"name" form:"name" validate:"required,max=255"`
	Email    string `json:"email" form:"email" validate:"required,email,max=255"`
	Password string `json:"password" form:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

func NewHandler(s *Service, v *validation.Validator, log logrus.FieldLogger, secret string, ttl time.Duration) *Handler {
	return &Handler{service: s, validator: v, log: log.WithField("handler", "user"), secret: secret, ttl: ttl}
}

func (h *Handler) RegisterPublicRoutes(r fiber.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Get("/user", h.me)
	r.Post("/logout", h.logout)
}

func (h *Handler) register(c *fiber.Ctx) error {
	payload := new(registerRequest)
	if err := httpx.Bind(c, payload); err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, "invalid request body")
	}
	payload.Name = strings.TrimSpace(payload.Name)
	payload.Email = strings.TrimSpace(payload.Email)

	errs := h.validator.Struct(payload)
	if _, bad := errs["email"]; !bad && payload.Email != "" {
		taken, err := h.service.EmailTaken(c.UserContext(), payload.Email)
		if err != nil {
			h.log.WithError(err).Error("email lookup failed")
			return httpx.Message(c, fiber.StatusBadRequest, "registration failed")
		}
		if taken {
			errs.Add("email", "the email has already been taken")
		}
	}
	if !errs.Empty() {
		return httpx.ValidationFailed(c, errs)
	}

	created, err := h.service.Register(c.UserContext(), payload.Name, payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return httpx.ValidationFailed(c, validation.Errors{"email": "the email has already been taken"})
		}
		h.log.WithError(err).Error("registration failed")
		return httpx.Message(c, fiber.StatusBadRequest, "registration failed")
	}

	return h.respondWithToken(c, fiber.StatusCreated, "user registered successfully", created)
}

func (h *Handler) login(c *fiber.Ctx) error {
	payload := new(loginRequest)
	if err := httpx.Bind(c, payload); err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, "invalid request body")
	}
	if errs := h.validator.Struct(payload); !errs.Empty() {
		return httpx.ValidationFailed(c, errs)
	}

	u, err := h.service.Authenticate(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return httpx.Message(c, fiber.StatusUnauthorized, "Invalid email or password")
	}

	return h.respondWithToken(c, fiber.StatusOK, "login successful", u)
}

func (h *Handler) me(c *fiber.Ctx) error {
	userID, err := GetUserIDFromCtx(c)
	if err != nil {
		return httpx.Message(c, fiber.StatusUnauthorized, "Unauthenticated.")
	}

	u, err := h.service.GetByID(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return httpx.Message(c, fiber.StatusNotFound, "user not found")
		}
		h.log.WithError(err).WithField("user_id", userID).Error("load current user failed")
		return httpx.Message(c, fiber.StatusBadRequest, "failed to load user")
	}

	return c.JSON(u)
}

// logout acknowledges the caller. Tokens are stateless so the client drops
// its own copy and the token stays valid until it expires.
func (h *Handler) logout(c *fiber.Ctx) error {
	userID, err := GetUserIDFromCtx(c)
	if err != nil {
		return httpx.Message(c, fiber.StatusUnauthorized, "Unauthenticated.")
	}
	h.log.WithField("user_id", userID).Info("user logged out")
	return c.JSON(result.Envelope{Status: true, Message: "logged out successfully"})
}

func (h *Handler) respondWithToken(c *fiber.Ctx, status int, message string, u User) error {
	token, err := IssueToken(u, h.secret, h.ttl)
	if err != nil {
		h.log.WithError(err).Error("sign token failed")
		return httpx.Message(c, fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.Status(status).JSON(fiber.Map{
		"status":  true,
		"message": message,
		"data": fiber.Map{
			"user":       u,
			"token":      token,
			"token_type": "Bearer",
		},
	})
}
